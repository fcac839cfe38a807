package cpu

import (
	"fmt"
	"strings"
)

const (
	ScreenRows = 8
	ScreenCols = 8
)

// Screen is the D5700's 8x8 character display. Cells hold ASCII codes and
// are addressed row-major as row*8+col.
type Screen struct {
	cells [ScreenRows * ScreenCols]uint8
}

func NewScreen() *Screen {
	s := &Screen{}
	s.Clear()
	return s
}

// Draw stores the ASCII code char (0-0x7F) at row, col (each 0-7).
func (s *Screen) Draw(char, row, col int) error {
	if char < 0 || char > 0x7F {
		return fmt.Errorf("%w: 0x%X", ErrInvalidChar, char)
	}
	if row < 0 || row >= ScreenRows || col < 0 || col >= ScreenCols {
		return fmt.Errorf("%w: row %d col %d", ErrOutOfBounds, row, col)
	}
	s.cells[row*ScreenCols+col] = uint8(char)
	return nil
}

// Clear fills every cell with the space character.
func (s *Screen) Clear() {
	for i := range s.cells {
		s.cells[i] = ' '
	}
}

// Cells returns a copy of the raw cell values, row-major.
func (s *Screen) Cells() [ScreenRows * ScreenCols]uint8 {
	return s.cells
}

// Render produces the textual form of the display: 8 lines of 8 glyphs.
// Printable ASCII (33-126) is emitted verbatim; spaces and non-printable
// bytes become '#' so the screen edges stay visible in a terminal.
func (s *Screen) Render() string {
	var b strings.Builder
	for row := 0; row < ScreenRows; row++ {
		for col := 0; col < ScreenCols; col++ {
			c := s.cells[row*ScreenCols+col]
			if c >= 33 && c <= 126 {
				b.WriteByte(c)
			} else {
				b.WriteByte('#')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
