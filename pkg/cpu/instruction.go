package cpu

const (
	OpSTORE uint8 = 0x0
	OpADD   uint8 = 0x1
	OpSUB   uint8 = 0x2
	OpREAD  uint8 = 0x3
	OpWRITE uint8 = 0x4
	OpJUMP  uint8 = 0x5
	OpRKEY  uint8 = 0x6
	OpSWMEM uint8 = 0x7
	OpSKEQ  uint8 = 0x8
	OpSKNE  uint8 = 0x9
	OpSETA  uint8 = 0xA
	OpSETT  uint8 = 0xB
	OpRDT   uint8 = 0xC
	OpDEC   uint8 = 0xD
	OpHEXA  uint8 = 0xE
	OpDRAW  uint8 = 0xF
)

// Instruction is a decoded 16-bit D5700 instruction word. Every field is a
// pure derivation of Raw; nothing here is validated, the engine's dispatch
// decides which fields an opcode actually uses.
type Instruction struct {
	Raw    uint16
	Opcode uint8  // bits 15:12
	Op1    uint8  // bits 11:8
	Op2    uint8  // bits 7:4
	Op3    uint8  // bits 3:0
	Byte   uint8  // bits 7:0
	Addr   uint16 // bits 11:0, (Op1 << 8) | Byte
}

// Decode splits a raw instruction word into its operand fields.
func Decode(raw uint16) Instruction {
	return Instruction{
		Raw:    raw,
		Opcode: uint8(raw >> 12),
		Op1:    uint8(raw>>8) & 0x0F,
		Op2:    uint8(raw>>4) & 0x0F,
		Op3:    uint8(raw) & 0x0F,
		Byte:   uint8(raw),
		Addr:   raw & 0x0FFF,
	}
}

// EncodeInstruction packs an opcode and three operand nibbles into an
// instruction word.
func EncodeInstruction(opcode, op1, op2, op3 uint8) uint16 {
	return uint16(opcode&0x0F)<<12 | uint16(op1&0x0F)<<8 | uint16(op2&0x0F)<<4 | uint16(op3&0x0F)
}

// EncodeByteInstruction packs an opcode, a register nibble and an 8-bit
// literal (STORE, SETT).
func EncodeByteInstruction(opcode, op1, value uint8) uint16 {
	return uint16(opcode&0x0F)<<12 | uint16(op1&0x0F)<<8 | uint16(value)
}

// EncodeAddressInstruction packs an opcode and a 12-bit address (JUMP, SETA).
func EncodeAddressInstruction(opcode uint8, addr uint16) uint16 {
	return uint16(opcode&0x0F)<<12 | addr&0x0FFF
}
