package cpu

// Keyboard supplies the value the RKEY instruction stores into its target
// register. The CPU treats it as a synchronous call; an interactive
// implementation is free to block until input arrives.
type Keyboard interface {
	ReadKey() uint8
}

// KeyQueue is a Keyboard fed by buffered key presses, for front-ends that
// collect input asynchronously (the desktop window). Values are masked to
// the 0-15 hex-digit range the D5700 keypad produces.
type KeyQueue struct {
	buf []uint8
}

func (q *KeyQueue) Push(val uint8) {
	q.buf = append(q.buf, val&0x0F)
}

// ReadKey pops the oldest queued digit, or returns 0 when the queue is
// empty.
func (q *KeyQueue) ReadKey() uint8 {
	if len(q.buf) == 0 {
		return 0
	}
	val := q.buf[0]
	q.buf = q.buf[1:]
	return val
}

func (q *KeyQueue) Len() int {
	return len(q.buf)
}
