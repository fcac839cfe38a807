// Package loader reads D5700 program files. Two formats exist: a
// line-oriented hex listing (one 4-hex-digit instruction per line) and a
// raw binary image. Both produce the flat byte sequence the machine's
// LoadProgram consumes.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"d5700/pkg/cpu"
)

var ErrBadLine = errors.New("malformed instruction line")

// ParseHex reads the hex listing format. Blank lines and lines starting
// with '#' are ignored; every other line must be exactly four hex digits
// forming one big-endian instruction word.
func ParseHex(r io.Reader) ([]byte, error) {
	var program []byte

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if len(line) != 4 {
			return nil, fmt.Errorf("%w: line %d: %q", ErrBadLine, lineNo, line)
		}
		word, err := strconv.ParseUint(line, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %q", ErrBadLine, lineNo, line)
		}
		program = append(program, byte(word>>8), byte(word))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return program, nil
}

// WriteHex emits the hex listing format, one instruction word per line.
// An odd trailing byte is padded with zero, matching how the machine
// would fetch it.
func WriteHex(w io.Writer, program []byte) error {
	for i := 0; i < len(program); i += 2 {
		hi := program[i]
		var lo byte
		if i+1 < len(program) {
			lo = program[i+1]
		}
		if _, err := fmt.Fprintf(w, "%02X%02X\n", hi, lo); err != nil {
			return err
		}
	}
	return nil
}

// ReadBinary reads a raw program image. Only the first ROM-sized chunk is
// used; the returned flag reports whether trailing bytes were dropped.
func ReadBinary(r io.Reader) ([]byte, bool, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false, err
	}
	if len(data) > cpu.MemorySize {
		return data[:cpu.MemorySize], true, nil
	}
	return data, false, nil
}

// LoadFile loads a program file, picking the format from the extension:
// ".hex" is the hex listing, everything else is raw binary.
func LoadFile(path string) ([]byte, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".hex") {
		program, err := ParseHex(f)
		return program, false, err
	}
	return ReadBinary(f)
}
