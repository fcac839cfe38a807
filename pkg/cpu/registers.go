package cpu

import "fmt"

// Registers is the D5700 register file: eight general-purpose 8-bit
// registers, the 16-bit program counter, the 8-bit timer, the 16-bit
// address register and the RAM/ROM select flag.
type Registers struct {
	gp     [8]uint8
	pc     uint16
	timer  uint8
	addr   uint16
	useROM bool
}

// General returns the value of general register idx (0-7).
func (r *Registers) General(idx int) (uint8, error) {
	if idx < 0 || idx > 7 {
		return 0, fmt.Errorf("%w: r%d", ErrBadRegister, idx)
	}
	return r.gp[idx], nil
}

// SetGeneral stores value (0-255) into general register idx (0-7).
func (r *Registers) SetGeneral(idx, value int) error {
	if idx < 0 || idx > 7 {
		return fmt.Errorf("%w: r%d", ErrBadRegister, idx)
	}
	if value < 0 || value > 0xFF {
		return fmt.Errorf("%w: %d", ErrValueRange, value)
	}
	r.gp[idx] = uint8(value)
	return nil
}

func (r *Registers) PC() uint16 {
	return r.pc
}

// SetPC sets the program counter. The D5700 fetches 2-byte instructions,
// so the PC must stay even.
func (r *Registers) SetPC(value int) error {
	if value < 0 || value > 0xFFFF {
		return fmt.Errorf("%w: 0x%X", ErrValueRange, value)
	}
	if value%2 != 0 {
		return fmt.Errorf("%w: 0x%04X", ErrOddAddress, value)
	}
	r.pc = uint16(value)
	return nil
}

func (r *Registers) Timer() uint8 {
	return r.timer
}

func (r *Registers) SetTimer(value int) error {
	if value < 0 || value > 0xFF {
		return fmt.Errorf("%w: %d", ErrValueRange, value)
	}
	r.timer = uint8(value)
	return nil
}

func (r *Registers) Address() uint16 {
	return r.addr
}

func (r *Registers) SetAddress(value int) error {
	if value < 0 || value > 0xFFFF {
		return fmt.Errorf("%w: 0x%X", ErrValueRange, value)
	}
	r.addr = uint16(value)
	return nil
}

// ROMSelected reports whether address-indirect instructions target ROM
// instead of RAM.
func (r *Registers) ROMSelected() bool {
	return r.useROM
}

func (r *Registers) SelectROM(on bool) {
	r.useROM = on
}

// Reset zeroes every register and selects RAM.
func (r *Registers) Reset() {
	*r = Registers{}
}
