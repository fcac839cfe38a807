package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"d5700/pkg/cpu"
	"d5700/pkg/grid"
	"d5700/pkg/loader"
)

const (
	cellSize   = 16
	screenSize = cpu.ScreenCols * cellSize
	statusBar  = 16
)

var face = text.NewGoXFace(basicfont.Face7x13)

type Game struct {
	vm            *cpu.CPU
	keys          *cpu.KeyQueue
	stepsPerFrame int
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	// The D5700 keypad produces hex digits 0-F.
	for _, r := range ebiten.AppendInputChars(nil) {
		if d, ok := hexDigit(r); ok {
			g.keys.Push(d)
		}
	}

	// Update runs at 60 Hz, which is exactly the timer's nominal decay
	// rate.
	g.vm.TickTimer()

	for i := 0; i < g.stepsPerFrame; i++ {
		if g.vm.Step() == cpu.Halted {
			break
		}
	}

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	for i, c := range g.vm.Screen.Cells() {
		if c == ' ' {
			continue
		}
		if c < 33 || c > 126 {
			c = '#'
		}
		x, y := grid.GetGridCoords(i, cpu.ScreenCols)

		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(x*cellSize+4), float64(y*cellSize+2))
		op.ColorScale.ScaleWithColor(color.White)
		text.Draw(screen, string(rune(c)), face, op)
	}

	status := "running"
	if g.vm.Status() == cpu.Halted {
		status = g.vm.Cause().String()
	}
	ebitenutil.DebugPrintAt(screen, status, 2, screenSize+1)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenSize, screenSize + statusBar
}

func hexDigit(r rune) (uint8, bool) {
	switch {
	case r >= '0' && r <= '9':
		return uint8(r - '0'), true
	case r >= 'a' && r <= 'f':
		return uint8(r-'a') + 10, true
	case r >= 'A' && r <= 'F':
		return uint8(r-'A') + 10, true
	}
	return 0, false
}

func main() {
	stepsPerFrame := flag.Int("steps-per-frame", 100, "instructions executed per display frame")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: desktop [flags] <program.hex|program.bin>")
		os.Exit(2)
	}

	program, truncated, err := loader.LoadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to load program: %v", err)
	}
	if truncated {
		fmt.Fprintln(os.Stderr, "warning: program larger than ROM, excess bytes ignored")
	}

	vm := cpu.NewCPU()
	keys := &cpu.KeyQueue{}
	vm.Keyboard = keys
	if err := vm.LoadProgram(program); err != nil {
		log.Fatalf("Failed to load program: %v", err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenSize*4, (screenSize+statusBar)*4)
	ebiten.SetWindowTitle("D5700 Desktop")

	game := &Game{vm: vm, keys: keys, stepsPerFrame: *stepsPerFrame}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
