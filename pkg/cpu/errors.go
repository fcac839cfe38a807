package cpu

import "errors"

var (
	// Memory errors
	ErrOutOfRange = errors.New("address out of range")
	ErrValueRange = errors.New("value out of range")
	ErrReadOnly   = errors.New("memory is read-only")
	ErrTooLarge   = errors.New("program too large")

	// Screen errors
	ErrInvalidChar = errors.New("character is not ASCII")
	ErrOutOfBounds = errors.New("coordinates out of bounds")

	// Register errors
	ErrBadRegister = errors.New("register index out of range")
	ErrOddAddress  = errors.New("address is not even")

	// Instruction faults
	ErrReservedNibble = errors.New("reserved nibble must be zero")
	ErrNotHexDigit    = errors.New("value is not a hex digit")
)
