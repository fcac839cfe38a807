package cpu

import "testing"

func TestDecode(t *testing.T) {
	in := Decode(0xABCD)

	if in.Raw != 0xABCD {
		t.Errorf("Raw: expected 0xABCD, got 0x%04X", in.Raw)
	}
	if in.Opcode != 0xA {
		t.Errorf("Opcode: expected 0xA, got 0x%X", in.Opcode)
	}
	if in.Op1 != 0xB || in.Op2 != 0xC || in.Op3 != 0xD {
		t.Errorf("operands: expected B/C/D, got %X/%X/%X", in.Op1, in.Op2, in.Op3)
	}
	if in.Byte != 0xCD {
		t.Errorf("Byte: expected 0xCD, got 0x%02X", in.Byte)
	}
	if in.Addr != 0xBCD {
		t.Errorf("Addr: expected 0xBCD, got 0x%03X", in.Addr)
	}
}

func TestDecodeZero(t *testing.T) {
	in := Decode(0x0000)
	if in.Opcode != 0 || in.Op1 != 0 || in.Op2 != 0 || in.Op3 != 0 || in.Byte != 0 || in.Addr != 0 {
		t.Errorf("Decode(0): expected all-zero fields, got %+v", in)
	}
}

func TestEncodeDecodeAgree(t *testing.T) {
	word := EncodeInstruction(OpADD, 1, 2, 3)
	if word != 0x1123 {
		t.Errorf("EncodeInstruction: expected 0x1123, got 0x%04X", word)
	}
	in := Decode(word)
	if in.Opcode != OpADD || in.Op1 != 1 || in.Op2 != 2 || in.Op3 != 3 {
		t.Errorf("decode of encoded ADD: got %+v", in)
	}

	word = EncodeByteInstruction(OpSTORE, 7, 0xFE)
	if word != 0x07FE {
		t.Errorf("EncodeByteInstruction: expected 0x07FE, got 0x%04X", word)
	}
	if in := Decode(word); in.Op1 != 7 || in.Byte != 0xFE {
		t.Errorf("decode of encoded STORE: got %+v", in)
	}

	word = EncodeAddressInstruction(OpJUMP, 0x2A4)
	if word != 0x52A4 {
		t.Errorf("EncodeAddressInstruction: expected 0x52A4, got 0x%04X", word)
	}
	if in := Decode(word); in.Addr != 0x2A4 {
		t.Errorf("decode of encoded JUMP: got %+v", in)
	}
}
