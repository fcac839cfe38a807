package cpu

import "fmt"

// MemorySize is the capacity of each memory bank in bytes.
const MemorySize = 4096

// Memory is a fixed-size byte-addressable store. The machine owns two
// banks: RAM (writable) and ROM (write-protected unless unlocked).
type Memory struct {
	cells    []byte
	writable bool
}

func NewRAM() *Memory {
	return &Memory{cells: make([]byte, MemorySize), writable: true}
}

func NewROM() *Memory {
	return &Memory{cells: make([]byte, MemorySize)}
}

func (m *Memory) Size() int {
	return len(m.cells)
}

func (m *Memory) Writable() bool {
	return m.writable
}

func (m *Memory) SetWritable(on bool) {
	m.writable = on
}

// Read returns the byte at addr, rejecting out-of-range addresses.
func (m *Memory) Read(addr int) (uint8, error) {
	if addr < 0 || addr >= len(m.cells) {
		return 0, fmt.Errorf("%w: 0x%04X", ErrOutOfRange, addr)
	}
	return m.cells[addr], nil
}

// ReadTolerant returns the byte at addr, or 0 for any address past the
// end of the store. The CPU's address-indirect READ path uses this; the
// strict Read is for callers that want the error.
func (m *Memory) ReadTolerant(addr int) uint8 {
	if addr < 0 || addr >= len(m.cells) {
		return 0
	}
	return m.cells[addr]
}

// Write stores value (0-255) at addr. Writing a write-protected bank is a
// distinct failure from an out-of-range write.
func (m *Memory) Write(addr, value int) error {
	if addr < 0 || addr >= len(m.cells) {
		return fmt.Errorf("%w: 0x%04X", ErrOutOfRange, addr)
	}
	if value < 0 || value > 0xFF {
		return fmt.Errorf("%w: %d", ErrValueRange, value)
	}
	if !m.writable {
		return fmt.Errorf("%w: write to 0x%04X", ErrReadOnly, addr)
	}
	m.cells[addr] = uint8(value)
	return nil
}

// Load replaces the whole bank: zero-fill, then copy data from offset 0.
// Load ignores the write-protect flag; it models reflashing the bank, not
// a program-visible write.
func (m *Memory) Load(data []byte) error {
	if len(data) > len(m.cells) {
		return fmt.Errorf("%w: %d bytes > %d bytes", ErrTooLarge, len(data), len(m.cells))
	}
	m.Clear()
	copy(m.cells, data)
	return nil
}

func (m *Memory) Clear() {
	for i := range m.cells {
		m.cells[i] = 0
	}
}
