package cpu

import "fmt"

// Status is the user-visible machine state.
type Status uint8

const (
	Running Status = iota
	Halted
)

// StopCause classifies why the machine stopped. CausePCReset and
// CauseEndOfProgram are the D5700's normal "program halted" signals, not
// failures; CauseStepLimit means Run hit its instruction bound and the
// machine can keep stepping.
type StopCause uint8

const (
	CauseNone StopCause = iota
	CausePCReset
	CauseEndOfProgram
	CauseStepLimit
	CauseFault
)

func (c StopCause) String() string {
	switch c {
	case CauseNone:
		return "running"
	case CausePCReset:
		return "terminated: PC reached 0"
	case CauseEndOfProgram:
		return "terminated: out of bounds"
	case CauseStepLimit:
		return "instruction limit reached"
	case CauseFault:
		return "terminated: fault"
	}
	return "unknown"
}

// CPU is the D5700 machine: the register file it owns exclusively, the
// RAM/ROM banks and the screen it mutates, and the keyboard it consults
// for RKEY. A nil Keyboard reads as 0.
type CPU struct {
	Regs     Registers
	RAM      *Memory
	ROM      *Memory
	Screen   *Screen
	Keyboard Keyboard

	programLen int
	executed   uint64
	halted     bool
	cause      StopCause
	err        error
}

func NewCPU() *CPU {
	return &CPU{
		RAM:    NewRAM(),
		ROM:    NewROM(),
		Screen: NewScreen(),
	}
}

// LoadProgram flashes a byte sequence of big-endian 2-byte instructions
// into ROM at offset 0 and resets the whole machine.
func (c *CPU) LoadProgram(data []byte) error {
	if err := c.ROM.Load(data); err != nil {
		return err
	}
	c.programLen = len(data)
	c.Reset()
	return nil
}

// Reset zeroes the register file, clears RAM and the screen and makes the
// machine runnable again. ROM contents survive; use LoadProgram to replace
// them.
func (c *CPU) Reset() {
	c.Regs.Reset()
	c.RAM.Clear()
	c.Screen.Clear()
	c.executed = 0
	c.halted = false
	c.cause = CauseNone
	c.err = nil
}

// ProgramLen is the byte length of the most recently loaded program.
func (c *CPU) ProgramLen() int {
	return c.programLen
}

// Executed is the number of instructions executed since the last reset.
func (c *CPU) Executed() uint64 {
	return c.executed
}

func (c *CPU) Status() Status {
	if c.halted {
		return Halted
	}
	return Running
}

func (c *CPU) Cause() StopCause {
	return c.cause
}

// Err returns the fault that terminated the program, or nil for normal
// termination.
func (c *CPU) Err() error {
	return c.err
}

// TickTimer decrements the timer toward zero. The engine never ticks the
// timer on its own; the run-loop collaborator calls this at whatever
// cadence it paces the machine at (nominally 60 Hz).
func (c *CPU) TickTimer() {
	if c.Regs.timer > 0 {
		c.Regs.timer--
	}
}

func (c *CPU) stop(cause StopCause, err error) {
	c.halted = true
	c.cause = cause
	c.err = err
}

// Step executes one fetch-decode-execute cycle. Once the machine halts,
// further calls are no-ops that keep reporting Halted.
func (c *CPU) Step() Status {
	if c.halted {
		return Halted
	}

	// A PC back at 0 after the program has moved means it ran off its
	// natural end; a PC past the loaded program means the same.
	if c.executed > 0 && c.Regs.pc == 0 {
		c.stop(CausePCReset, nil)
		return Halted
	}
	if int(c.Regs.pc) >= c.programLen {
		c.stop(CauseEndOfProgram, nil)
		return Halted
	}

	word, err := c.fetch()
	if err != nil {
		c.stop(CauseFault, err)
		return Halted
	}

	in := Decode(word)

	advance, err := c.execute(in)
	if err != nil {
		c.stop(CauseFault, fmt.Errorf("0x%04X at 0x%04X: %w", in.Raw, c.Regs.pc, err))
		return Halted
	}
	c.Regs.pc += uint16(advance)

	c.executed++
	return Running
}

// Run steps until the machine halts or maxSteps instructions have executed
// in this call. Hitting the bound leaves the machine runnable and is
// reported as CauseStepLimit.
func (c *CPU) Run(maxSteps uint64) StopCause {
	for steps := uint64(0); steps < maxSteps; steps++ {
		if c.Step() == Halted {
			return c.cause
		}
	}
	if c.halted {
		return c.cause
	}
	return CauseStepLimit
}

func (c *CPU) fetch() (uint16, error) {
	pc := int(c.Regs.pc)
	if pc%2 != 0 {
		return 0, fmt.Errorf("fetch: %w: pc 0x%04X", ErrOddAddress, pc)
	}
	hi, err := c.ROM.Read(pc)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	lo, err := c.ROM.Read(pc + 1)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// dataMemory resolves the bank address-indirect instructions target.
func (c *CPU) dataMemory() *Memory {
	if c.Regs.useROM {
		return c.ROM
	}
	return c.RAM
}

// execute runs one decoded instruction and returns the PC advance. RKEY,
// SETT and DRAW touch state outside the register/memory model (keyboard,
// timer, screen), so they are intercepted ahead of the generic dispatch
// and advance the PC by 2 themselves.
func (c *CPU) execute(in Instruction) (int, error) {
	handled, err := c.execSpecial(in)
	if err != nil {
		return 0, err
	}
	if handled {
		return 2, nil
	}
	return c.dispatch(in)
}

func (c *CPU) execSpecial(in Instruction) (bool, error) {
	switch in.Opcode {
	case OpRKEY:
		idx, err := regIndex(in.Op1)
		if err != nil {
			return false, err
		}
		if err := wantZero(in.Op2, in.Op3); err != nil {
			return false, err
		}
		var val uint8
		if c.Keyboard != nil {
			val = c.Keyboard.ReadKey()
		}
		c.Regs.gp[idx] = val
		return true, nil

	case OpSETT:
		if err := wantZero(in.Op3); err != nil {
			return false, err
		}
		c.Regs.timer = in.Byte
		return true, nil

	case OpDRAW:
		idx, err := regIndex(in.Op1)
		if err != nil {
			return false, err
		}
		if err := c.Screen.Draw(int(c.Regs.gp[idx]), int(in.Op2), int(in.Op3)); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (c *CPU) dispatch(in Instruction) (int, error) {
	switch in.Opcode {
	case OpSTORE:
		idx, err := regIndex(in.Op1)
		if err != nil {
			return 0, err
		}
		c.Regs.gp[idx] = in.Byte
		return 2, nil

	case OpADD, OpSUB:
		src1, err := regIndex(in.Op1)
		if err != nil {
			return 0, err
		}
		src2, err := regIndex(in.Op2)
		if err != nil {
			return 0, err
		}
		dst, err := regIndex(in.Op3)
		if err != nil {
			return 0, err
		}
		if in.Opcode == OpADD {
			c.Regs.gp[dst] = c.Regs.gp[src1] + c.Regs.gp[src2]
		} else {
			c.Regs.gp[dst] = c.Regs.gp[src1] - c.Regs.gp[src2]
		}
		return 2, nil

	case OpREAD:
		idx, err := regIndex(in.Op1)
		if err != nil {
			return 0, err
		}
		if err := wantZero(in.Op2, in.Op3); err != nil {
			return 0, err
		}
		c.Regs.gp[idx] = c.dataMemory().ReadTolerant(int(c.Regs.addr))
		return 2, nil

	case OpWRITE:
		idx, err := regIndex(in.Op1)
		if err != nil {
			return 0, err
		}
		if err := wantZero(in.Op2, in.Op3); err != nil {
			return 0, err
		}
		if err := c.dataMemory().Write(int(c.Regs.addr), int(c.Regs.gp[idx])); err != nil {
			return 0, err
		}
		return 2, nil

	case OpJUMP:
		if in.Addr%2 != 0 {
			return 0, fmt.Errorf("jump: %w: 0x%03X", ErrOddAddress, in.Addr)
		}
		c.Regs.pc = in.Addr
		return 0, nil

	case OpSWMEM:
		if err := wantZero(in.Op1, in.Op2, in.Op3); err != nil {
			return 0, err
		}
		c.Regs.useROM = !c.Regs.useROM
		return 2, nil

	case OpSKEQ, OpSKNE:
		src1, err := regIndex(in.Op1)
		if err != nil {
			return 0, err
		}
		src2, err := regIndex(in.Op2)
		if err != nil {
			return 0, err
		}
		if err := wantZero(in.Op3); err != nil {
			return 0, err
		}
		equal := c.Regs.gp[src1] == c.Regs.gp[src2]
		if equal == (in.Opcode == OpSKEQ) {
			return 4, nil
		}
		return 2, nil

	case OpSETA:
		c.Regs.addr = in.Addr
		return 2, nil

	case OpRDT:
		idx, err := regIndex(in.Op1)
		if err != nil {
			return 0, err
		}
		if err := wantZero(in.Op2, in.Op3); err != nil {
			return 0, err
		}
		c.Regs.gp[idx] = c.Regs.timer
		return 2, nil

	case OpDEC:
		idx, err := regIndex(in.Op1)
		if err != nil {
			return 0, err
		}
		if err := wantZero(in.Op2, in.Op3); err != nil {
			return 0, err
		}
		val := int(c.Regs.gp[idx])
		mem := c.dataMemory()
		addr := int(c.Regs.addr)
		digits := [3]int{val / 100, (val / 10) % 10, val % 10}
		for i, d := range digits {
			if err := mem.Write(addr+i, d); err != nil {
				return 0, err
			}
		}
		return 2, nil

	case OpHEXA:
		src, err := regIndex(in.Op1)
		if err != nil {
			return 0, err
		}
		dst, err := regIndex(in.Op2)
		if err != nil {
			return 0, err
		}
		if err := wantZero(in.Op3); err != nil {
			return 0, err
		}
		digit := c.Regs.gp[src]
		if digit > 0xF {
			return 0, fmt.Errorf("%w: 0x%02X", ErrNotHexDigit, digit)
		}
		if digit < 10 {
			c.Regs.gp[dst] = '0' + digit
		} else {
			c.Regs.gp[dst] = 'A' + digit - 10
		}
		return 2, nil
	}

	// Unreachable: Opcode is a 4-bit field and all 16 values have cases.
	return 0, fmt.Errorf("unknown opcode 0x%X", in.Opcode)
}

// regIndex validates an operand nibble used as a register index.
func regIndex(nib uint8) (int, error) {
	if nib > 7 {
		return 0, fmt.Errorf("%w: r%d", ErrBadRegister, nib)
	}
	return int(nib), nil
}

// wantZero rejects instructions whose unused operand nibbles are set.
func wantZero(nibs ...uint8) error {
	for _, n := range nibs {
		if n != 0 {
			return fmt.Errorf("%w: 0x%X", ErrReservedNibble, n)
		}
	}
	return nil
}
