// Package asm implements a two-pass assembler for the D5700 instruction
// set. Pass 1 collects label addresses, pass 2 emits big-endian machine
// code.
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"d5700/pkg/cpu"
)

var zeroOperandOps = map[string]uint8{
	"SWMEM": cpu.OpSWMEM,
}

var oneRegisterOps = map[string]uint8{
	"READ":  cpu.OpREAD,
	"WRITE": cpu.OpWRITE,
	"RKEY":  cpu.OpRKEY,
	"RDT":   cpu.OpRDT,
	"DEC":   cpu.OpDEC,
}

var twoRegisterOps = map[string]uint8{
	"SKEQ": cpu.OpSKEQ,
	"SKNE": cpu.OpSKNE,
	"HEXA": cpu.OpHEXA,
}

var threeRegisterOps = map[string]uint8{
	"ADD": cpu.OpADD,
	"SUB": cpu.OpSUB,
}

var regAndByteOps = map[string]uint8{
	"STORE": cpu.OpSTORE,
}

var byteOnlyOps = map[string]uint8{
	"SETT": cpu.OpSETT,
}

var addressOps = map[string]uint8{
	"JUMP": cpu.OpJUMP,
	"SETA": cpu.OpSETA,
}

type Assembler struct {
	labels map[string]uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]uint16),
	}
}

func Assemble(code string) ([]byte, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

// Assemble turns D5700 assembly source into a ROM image. The second
// return value maps byte offsets to source line numbers.
func (a *Assembler) Assemble(code string) ([]byte, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

func (a *Assembler) pass1(lines []string) error {
	var address int

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			if address > 0xFFF {
				return fmt.Errorf("label '%s' on line %d points past addressable ROM", lbl, lineNo)
			}
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = uint16(address)
		}

		if p.mnemonic == "" {
			continue
		}

		length, err := a.lineLength(p)
		if err != nil {
			return err
		}

		if p.mnemonic == ".ORG" {
			target, err := parseOrigin(p, address)
			if err != nil {
				return err
			}
			address = target
			continue
		}

		if address+length > cpu.MemorySize {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
		address += length
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]byte, map[uint16]int, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		if p.mnemonic == ".ORG" {
			target, err := parseOrigin(p, len(program))
			if err != nil {
				return nil, nil, err
			}
			program = append(program, make([]byte, target-len(program))...)
			continue
		}

		sourceMap[uint16(len(program))] = lineNo

		if p.mnemonic == ".WORD" {
			if len(p.operands) != 1 {
				return nil, nil, fmt.Errorf(".WORD expects exactly one operand on line %d", lineNo)
			}
			val, err := a.parseImmediate(p.operands[0], 0xFFFF, lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = appendWord(program, val)
			continue
		}

		if p.mnemonic == ".STRING" {
			if len(p.operands) != 1 {
				return nil, nil, fmt.Errorf(".STRING expects exactly one string operand on line %d", lineNo)
			}
			program = append(program, p.operands[0]...)
			program = append(program, 0x00)
			continue
		}

		word, err := a.encodeLine(p)
		if err != nil {
			return nil, nil, err
		}
		program = appendWord(program, word)
	}

	if len(program) > cpu.MemorySize {
		return nil, nil, fmt.Errorf("program too large: %d bytes", len(program))
	}

	return program, sourceMap, nil
}

func (a *Assembler) encodeLine(p parsedLine) (uint16, error) {
	mnemonic := p.mnemonic
	ops := p.operands
	lineNo := p.lineNo

	if opcode, ok := zeroOperandOps[mnemonic]; ok {
		if len(ops) != 0 {
			return 0, fmt.Errorf("%s expects 0 operands on line %d", mnemonic, lineNo)
		}
		return cpu.EncodeInstruction(opcode, 0, 0, 0), nil
	}

	if opcode, ok := oneRegisterOps[mnemonic]; ok {
		if len(ops) != 1 {
			return 0, fmt.Errorf("%s expects 1 operand on line %d", mnemonic, lineNo)
		}
		reg, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		return cpu.EncodeInstruction(opcode, reg, 0, 0), nil
	}

	if opcode, ok := twoRegisterOps[mnemonic]; ok {
		if len(ops) != 2 {
			return 0, fmt.Errorf("%s expects 2 operands on line %d", mnemonic, lineNo)
		}
		regA, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		regB, err := parseRegister(ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		return cpu.EncodeInstruction(opcode, regA, regB, 0), nil
	}

	if opcode, ok := threeRegisterOps[mnemonic]; ok {
		if len(ops) != 3 {
			return 0, fmt.Errorf("%s expects 3 operands on line %d", mnemonic, lineNo)
		}
		regA, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		regB, err := parseRegister(ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		regC, err := parseRegister(ops[2], lineNo)
		if err != nil {
			return 0, err
		}
		return cpu.EncodeInstruction(opcode, regA, regB, regC), nil
	}

	if opcode, ok := regAndByteOps[mnemonic]; ok {
		if len(ops) != 2 {
			return 0, fmt.Errorf("%s expects 2 operands on line %d", mnemonic, lineNo)
		}
		reg, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		val, err := a.parseImmediate(ops[1], 0xFF, lineNo)
		if err != nil {
			return 0, err
		}
		return cpu.EncodeByteInstruction(opcode, reg, uint8(val)), nil
	}

	if opcode, ok := byteOnlyOps[mnemonic]; ok {
		if len(ops) != 1 {
			return 0, fmt.Errorf("%s expects 1 operand on line %d", mnemonic, lineNo)
		}
		val, err := a.parseImmediate(ops[0], 0xFF, lineNo)
		if err != nil {
			return 0, err
		}
		// The low nibble of a SETT word is a reserved field.
		if val&0x0F != 0 {
			return 0, fmt.Errorf("SETT value 0x%02X has a non-zero low nibble on line %d", val, lineNo)
		}
		return cpu.EncodeByteInstruction(opcode, 0, uint8(val)), nil
	}

	if opcode, ok := addressOps[mnemonic]; ok {
		if len(ops) != 1 {
			return 0, fmt.Errorf("%s expects 1 operand on line %d", mnemonic, lineNo)
		}
		addr, err := a.parseImmediate(ops[0], 0xFFF, lineNo)
		if err != nil {
			return 0, err
		}
		if opcode == cpu.OpJUMP && addr%2 != 0 {
			return 0, fmt.Errorf("JUMP target 0x%03X is odd on line %d", addr, lineNo)
		}
		return cpu.EncodeAddressInstruction(opcode, addr), nil
	}

	if mnemonic == "DRAW" {
		if len(ops) != 3 {
			return 0, fmt.Errorf("DRAW expects 3 operands on line %d", lineNo)
		}
		reg, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		row, err := a.parseImmediate(ops[1], 7, lineNo)
		if err != nil {
			return 0, err
		}
		col, err := a.parseImmediate(ops[2], 7, lineNo)
		if err != nil {
			return 0, err
		}
		return cpu.EncodeInstruction(cpu.OpDRAW, reg, uint8(row), uint8(col)), nil
	}

	return 0, fmt.Errorf("unknown instruction on line %d: %s", lineNo, mnemonic)
}

// lineLength returns the byte length a parsed line occupies in ROM.
func (a *Assembler) lineLength(p parsedLine) (int, error) {
	switch p.mnemonic {
	case ".ORG":
		return 0, nil
	case ".WORD":
		return 2, nil
	case ".STRING":
		if len(p.operands) != 1 {
			return 0, fmt.Errorf(".STRING expects exactly one string operand on line %d", p.lineNo)
		}
		return len(p.operands[0]) + 1, nil
	}

	if !knownMnemonic(p.mnemonic) {
		return 0, fmt.Errorf("unknown instruction on line %d: %s", p.lineNo, p.mnemonic)
	}
	// Every D5700 instruction is one 2-byte word.
	return 2, nil
}

func knownMnemonic(mnemonic string) bool {
	if mnemonic == "DRAW" {
		return true
	}
	for _, m := range []map[string]uint8{
		zeroOperandOps, oneRegisterOps, twoRegisterOps,
		threeRegisterOps, regAndByteOps, byteOnlyOps, addressOps,
	} {
		if _, ok := m[mnemonic]; ok {
			return true
		}
	}
	return false
}

func parseOrigin(p parsedLine, current int) (int, error) {
	if len(p.operands) != 1 {
		return 0, fmt.Errorf(".ORG expects exactly one operand on line %d", p.lineNo)
	}
	target, err := strconv.ParseUint(p.operands[0], 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid .ORG value on line %d: %s", p.lineNo, p.operands[0])
	}
	if target > cpu.MemorySize {
		return 0, fmt.Errorf(".ORG out of range on line %d: %s", p.lineNo, p.operands[0])
	}
	if target%2 != 0 {
		return 0, fmt.Errorf(".ORG value 0x%X is odd on line %d", target, p.lineNo)
	}
	if int(target) < current {
		return 0, fmt.Errorf("cannot move origin backward on line %d", p.lineNo)
	}
	return int(target), nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	// .STRING operands may contain spaces, commas and comment markers, so
	// the quoted content has to come out of the raw line before any other
	// splitting happens.
	if idx := strings.Index(strings.ToUpper(raw), ".STRING"); idx != -1 {
		pre := raw[:idx]
		if colon := strings.Index(pre, ":"); colon != -1 {
			label := strings.TrimSpace(pre[:colon])
			if label != "" {
				p.labels = append(p.labels, label)
			}
		}

		opening := strings.Index(raw, "\"")
		closing := strings.LastIndex(raw, "\"")
		if opening == -1 || closing == opening {
			return p, fmt.Errorf("invalid string literal on line %d", lineNo)
		}
		p.mnemonic = ".STRING"
		content := raw[opening+1 : closing]
		if unquoted, err := strconv.Unquote(`"` + content + `"`); err == nil {
			p.operands = []string{unquoted}
		} else {
			p.operands = []string{content}
		}
		return p, nil
	}

	line := strings.TrimSpace(raw)
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if beforeColon == "" {
			return p, fmt.Errorf("invalid label on line %d", lineNo)
		}

		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	line = stripComments(line)
	line = strings.TrimSpace(line)
	if line == "" {
		return p, nil
	}

	line = normalizeInstructionText(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}

	return p, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

func normalizeInstructionText(line string) string {
	replacer := strings.NewReplacer(",", " ", "[", " ", "]", " ")
	return replacer.Replace(line)
}

func parseRegister(token string, lineNo int) (uint8, error) {
	up := strings.ToUpper(token)
	if len(up) == 2 && up[0] == 'R' && up[1] >= '0' && up[1] <= '7' {
		return up[1] - '0', nil
	}
	return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
}

func (a *Assembler) parseImmediate(token string, max uint64, lineNo int) (uint16, error) {
	if value, err := strconv.ParseUint(token, 0, 32); err == nil {
		if value > max {
			return 0, fmt.Errorf("immediate out of range on line %d: %s", lineNo, token)
		}
		return uint16(value), nil
	}

	label := normalizeLabel(token)
	if addr, ok := a.labels[label]; ok {
		if uint64(addr) > max {
			return 0, fmt.Errorf("label '%s' out of range on line %d", token, lineNo)
		}
		return addr, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
}

// appendWord emits a machine word big-endian, high byte first.
func appendWord(program []byte, word uint16) []byte {
	return append(program, byte(word>>8), byte(word&0xFF))
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
