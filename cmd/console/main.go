package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"d5700/pkg/cpu"
	"d5700/pkg/loader"
)

// promptKeyboard satisfies cpu.Keyboard by asking the user for a key on
// every RKEY. Input is parsed as hex first, then decimal, then as a raw
// character code; empty input or a read error reads as 0.
type promptKeyboard struct {
	in  *bufio.Reader
	out io.Writer
}

func (k *promptKeyboard) ReadKey() uint8 {
	fmt.Fprint(k.out, "key? ")
	line, err := k.in.ReadString('\n')
	if err != nil {
		return 0
	}
	text := strings.TrimSpace(line)
	if text == "" {
		return 0
	}
	if v, err := strconv.ParseUint(text, 16, 64); err == nil {
		return uint8(v)
	}
	if v, err := strconv.ParseUint(text, 10, 64); err == nil {
		return uint8(v)
	}
	return text[0]
}

func main() {
	maxSteps := flag.Uint64("max-steps", 1_000_000, "stop after this many instructions")
	hz := flag.Int("hz", 0, "pace execution at this many instructions per second (0 = unpaced)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: console [flags] <program.hex|program.bin>")
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
	vm.Keyboard = &promptKeyboard{in: bufio.NewReader(os.Stdin), out: os.Stdout}
	if err := vm.LoadProgram(program); err != nil {
		log.Fatalf("Failed to load program: %v", err)
	}

	cause := run(vm, *maxSteps, *hz)

	fmt.Print(vm.Screen.Render())
	switch cause {
	case cpu.CausePCReset, cpu.CauseEndOfProgram:
		fmt.Printf("program completed after %d instructions\n", vm.Executed())
	case cpu.CauseStepLimit:
		fmt.Printf("instruction limit reached after %d instructions\n", vm.Executed())
	case cpu.CauseFault:
		fmt.Printf("program crashed: %v\n", vm.Err())
		os.Exit(1)
	}
}

// run drives the machine, decaying the timer at 60 Hz from a wall-clock
// ticker. The core never ticks its own timer.
func run(vm *cpu.CPU, maxSteps uint64, hz int) cpu.StopCause {
	timer := time.NewTicker(time.Second / 60)
	defer timer.Stop()

	var pace *time.Ticker
	if hz > 0 {
		pace = time.NewTicker(time.Second / time.Duration(hz))
		defer pace.Stop()
	}

	for steps := uint64(0); steps < maxSteps; steps++ {
		select {
		case <-timer.C:
			vm.TickTimer()
		default:
		}
		if pace != nil {
			<-pace.C
		}

		if vm.Step() == cpu.Halted {
			return vm.Cause()
		}
	}
	if vm.Status() == cpu.Halted {
		return vm.Cause()
	}
	return cpu.CauseStepLimit
}
