//go:build !js

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"d5700/pkg/asm"
	"d5700/pkg/cpu"
	"d5700/pkg/loader"
)

func main() {
	inPath := flag.String("in", "", "input assembly file path")
	outPath := flag.String("out", "", "output file path (default: input with .bin/.hex extension)")
	format := flag.String("format", "bin", "output format: bin or hex")
	runProgram := flag.Bool("run", false, "run the generated program on the virtual CPU")
	runBinPath := flag.String("run-bin", "", "run an existing program file on the virtual CPU")
	maxSteps := flag.Uint64("max-steps", 1_000_000, "instruction bound for -run/-run-bin")
	flag.Parse()

	if *runProgram && *runBinPath != "" {
		fmt.Fprintln(os.Stderr, "use either -run or -run-bin, not both")
		os.Exit(2)
	}
	if *format != "bin" && *format != "hex" {
		fmt.Fprintf(os.Stderr, "unknown output format %q\n", *format)
		os.Exit(2)
	}

	assembledOutput := ""
	if *inPath != "" {
		source, err := os.ReadFile(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", *inPath, err)
			os.Exit(1)
		}

		code, _, err := asm.Assemble(string(source))
		if err != nil {
			fmt.Fprintf(os.Stderr, "assembly failed: %v\n", err)
			os.Exit(1)
		}

		output := *outPath
		if output == "" {
			output = defaultOutputPath(*inPath, *format)
		}

		if err := writeProgram(output, code, *format); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write output file %q: %v\n", output, err)
			os.Exit(1)
		}

		fmt.Printf("assembled %d bytes -> %s\n", len(code), output)
		assembledOutput = output
	}

	if *inPath == "" && *runBinPath == "" && !*runProgram {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in to assemble, -run to run assembled output, or -run-bin <file> to run an existing program")
		flag.Usage()
		os.Exit(2)
	}

	runTarget := ""
	switch {
	case *runBinPath != "":
		runTarget = *runBinPath
	case *runProgram:
		if assembledOutput == "" {
			fmt.Fprintln(os.Stderr, "-run requires -in, or use -run-bin <file>")
			os.Exit(2)
		}
		runTarget = assembledOutput
	default:
		return
	}

	if err := runFile(runTarget, *maxSteps); err != nil {
		fmt.Fprintf(os.Stderr, "run failed for %q: %v\n", runTarget, err)
		os.Exit(1)
	}
}

func defaultOutputPath(inPath, format string) string {
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + "." + format
	}
	return strings.TrimSuffix(inPath, ext) + "." + format
}

func writeProgram(path string, code []byte, format string) error {
	if format == "hex" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return loader.WriteHex(f, code)
	}
	return os.WriteFile(path, code, 0o644)
}

func runFile(path string, maxSteps uint64) error {
	program, truncated, err := loader.LoadFile(path)
	if err != nil {
		return err
	}
	if truncated {
		fmt.Fprintf(os.Stderr, "warning: %q is larger than ROM, excess bytes ignored\n", path)
	}

	vm := cpu.NewCPU()
	if err := vm.LoadProgram(program); err != nil {
		return err
	}

	cause := vm.Run(maxSteps)

	fmt.Print(vm.Screen.Render())
	fmt.Printf(
		"run complete (%s): %s, %d instructions, PC=0x%04X A=0x%04X T=%d\n",
		path, cause, vm.Executed(), vm.Regs.PC(), vm.Regs.Address(), vm.Regs.Timer(),
	)
	if err := vm.Err(); err != nil {
		return err
	}
	return nil
}
