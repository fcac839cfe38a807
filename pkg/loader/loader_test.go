package loader

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"d5700/pkg/cpu"
)

func TestParseHex(t *testing.T) {
	assert := assert.New(t)

	input := strings.Join([]string{
		"# store 42 into r0",
		"002A",
		"",
		"  0108  ",
		"1012",
	}, "\n")

	program, err := ParseHex(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal([]byte{0x00, 0x2A, 0x01, 0x08, 0x10, 0x12}, program)
}

func TestParseHexBadLines(t *testing.T) {
	for _, input := range []string{"12", "12345", "xyzw", "00 2A"} {
		_, err := ParseHex(strings.NewReader(input))
		assert.ErrorIs(t, err, ErrBadLine, "input %q", input)
	}
}

func TestParseHexLineNumberInError(t *testing.T) {
	_, err := ParseHex(strings.NewReader("002A\n\n# ok\nbroken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")
}

func TestWriteHexRoundTrip(t *testing.T) {
	program := []byte{0x00, 0x2A, 0xF0, 0x35, 0x50, 0x02}

	var buf bytes.Buffer
	require.NoError(t, WriteHex(&buf, program))
	assert.Equal(t, "002A\nF035\n5002\n", buf.String())

	parsed, err := ParseHex(&buf)
	require.NoError(t, err)
	assert.Equal(t, program, parsed)
}

func TestWriteHexPadsOddByte(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHex(&buf, []byte{0xAB}))
	assert.Equal(t, "AB00\n", buf.String())
}

func TestReadBinary(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	program, truncated, err := ReadBinary(bytes.NewReader(data))
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Equal(t, data, program)
}

func TestReadBinaryTruncates(t *testing.T) {
	data := make([]byte, cpu.MemorySize+10)
	data[0] = 0x42

	program, truncated, err := ReadBinary(bytes.NewReader(data))
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Len(t, program, cpu.MemorySize)
	assert.EqualValues(t, 0x42, program[0])
}

func TestLoadFilePicksFormat(t *testing.T) {
	dir := t.TempDir()

	hexPath := filepath.Join(dir, "prog.hex")
	require.NoError(t, os.WriteFile(hexPath, []byte("002A\n0108\n"), 0o644))
	program, truncated, err := LoadFile(hexPath)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Equal(t, []byte{0x00, 0x2A, 0x01, 0x08}, program)

	binPath := filepath.Join(dir, "prog.bin")
	require.NoError(t, os.WriteFile(binPath, []byte{0x00, 0x2A}, 0o644))
	program, truncated, err = LoadFile(binPath)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Equal(t, []byte{0x00, 0x2A}, program)

	_, _, err = LoadFile(filepath.Join(dir, "missing.hex"))
	assert.Error(t, err)
}
