// main.go - interactive debugger for the pdp16e core engine
//
// Grounded on the S370 console's flag parsing (getopt) and REPL loop
// (peterh/liner, aborting cleanly on Ctrl-C / EOF). Commands drive the
// same host API spec.md §6 names: step, run, disassemble, inspect
// registers, toggle breakpoints.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	getopt "github.com/pborman/getopt/v2"

	pdp16e "github.com/coldiron/pdp16e"
)

func main() {
	optROM := getopt.StringLong("rom", 'r', "", "ROM image to load (raw little-endian words)")
	optLog := getopt.StringLong("log", 'l', "", "Log file (defaults to stderr)")
	optSnapshots := getopt.StringLong("snapshots", 's', "./snapshots", "Directory for PNG video snapshots")
	optScale := getopt.IntLong("scale", 'x', 2, "Snapshot pixel scale factor")
	optHelp := getopt.BoolLong("help", 'h', false, "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}
	if *optROM == "" {
		fmt.Fprintln(os.Stderr, "pdp16debug: --rom is required")
		os.Exit(1)
	}

	var logOut io.Writer
	if *optLog != "" {
		f, err := os.Create(*optLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pdp16debug: %v\n", err)
			os.Exit(1)
		}
		logOut = f
		defer f.Close()
	}
	logger := pdp16e.NewLogger(logOut, false)

	cfg := pdp16e.NewEngineConfig()
	eng, err := pdp16e.NewEngine(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdp16debug: %v\n", err)
		os.Exit(1)
	}

	words, err := loadROMFile(*optROM)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdp16debug: %v\n", err)
		os.Exit(1)
	}
	if err := eng.Memory().LoadROM(words); err != nil {
		fmt.Fprintf(os.Stderr, "pdp16debug: %v\n", err)
		os.Exit(1)
	}

	presenter := newPNGPresenter(*optSnapshots, *optScale)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	kb := newTermKeyboard()
	go func() {
		if err := kb.Run(ctx, eng.Keyboard().Push); err != nil {
			logger.Error("keyboard producer stopped", slog.String("err", err.Error()))
		}
	}()

	runREPL(eng, presenter)
}

// loadROMFile reads a raw binary of little-endian 16-bit words.
func loadROMFile(path string) ([]pdp16e.Word, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("rom file %s has odd length", path)
	}
	words := make([]pdp16e.Word, len(raw)/2)
	for i := range words {
		words[i] = pdp16e.Word(raw[2*i]) | pdp16e.Word(raw[2*i+1])<<8
	}
	return words, nil
}

func runREPL(eng *pdp16e.Engine, presenter *pngPresenter) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("pdp16debug — type 'help' for commands")
	for {
		input, err := line.Prompt("pdp16> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			return
		}
		line.AppendHistory(input)
		if quit := dispatch(eng, presenter, strings.TrimSpace(input)); quit {
			return
		}
	}
}

func dispatch(eng *pdp16e.Engine, presenter *pngPresenter, cmd string) (quit bool) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "help":
		printHelp()
	case "quit", "q", "exit":
		return true
	case "step", "s":
		if err := eng.Step(); err != nil {
			fmt.Println("halted:", err)
		}
		printRegs(eng)
	case "run":
		max := 0
		if len(fields) > 1 {
			max, _ = strconv.Atoi(fields[1])
		}
		if err := eng.Run(max); err != nil {
			fmt.Println("halted:", err)
		}
	case "break", "b":
		if len(fields) < 2 {
			fmt.Println("usage: break ADDR")
			break
		}
		addr := parseAddr(fields[1])
		on := eng.ToggleBreakpoint(addr)
		fmt.Printf("breakpoint at %s: %v\n", fields[1], on)
	case "regs", "r":
		printRegs(eng)
	case "disasm", "d":
		rest := fields[1:]
		octal := false
		if len(rest) > 0 && (rest[0] == "octal" || rest[0] == "o") {
			octal = true
			rest = rest[1:]
		}
		addr := eng.PC()
		count := 10
		if len(rest) > 0 {
			addr = parseAddr(rest[0])
		}
		if len(rest) > 1 {
			count, _ = strconv.Atoi(rest[1])
		}
		var lines []pdp16e.DisasmLine
		if octal {
			lines = eng.DisasmRangeOctal(addr, count)
		} else {
			lines = eng.DisasmRange(addr, count)
		}
		for _, l := range lines {
			marker := " "
			if eng.Breakpoint(l.Addr) {
				marker = "*"
			}
			fmt.Printf("%s%s  %s\n", marker, pdp16eOctal(l.Addr), l.Text)
		}
	case "stats":
		ic, dc := eng.CacheStats()
		cycles, instr, ipc := eng.PipelineStats()
		fmt.Printf("icache hits=%d misses=%d  dcache hits=%d misses=%d\n", ic.Hits, ic.Misses, dc.Hits, dc.Misses)
		fmt.Printf("cycles=%d instructions=%d ipc=%.3f\n", cycles, instr, ipc)
	case "snapshot":
		if err := presenter.Present(eng.Video().Image()); err != nil {
			fmt.Println("snapshot failed:", err)
		} else {
			fmt.Println("snapshot written")
		}
	default:
		fmt.Println("unknown command:", fields[0])
	}
	return false
}

func printHelp() {
	fmt.Println(`commands:
  step, s              execute until the next instruction begins
  run [N]              run until halted or N instructions retire (0 = unbounded)
  break, b ADDR        toggle a breakpoint at ADDR (hex, 0x optional; octal with a leading 0)
  regs, r              print registers and PSW
  disasm, d [octal] [ADDR] [N]
                       disassemble N instructions starting at ADDR, or
                       dump N raw octal words with "octal"/"o"
  stats                print cache and pipeline statistics
  snapshot             write the current video framebuffer as a PNG
  quit, q              exit`)
}

func printRegs(eng *pdp16e.Engine) {
	regs := eng.Registers()
	for i := 0; i < pdp16e.NumRegisters; i++ {
		_, v := regs.ReadWord(i)
		fmt.Printf("R%d=%s ", i, pdp16eOctal(v))
	}
	fmt.Println()
	psw := eng.PSW()
	fmt.Printf("PSW N=%v Z=%v V=%v C=%v\n", psw.N, psw.Z, psw.V, psw.C)
}

func pdp16eOctal(w pdp16e.Word) string { return pdp16e.OctalWord(w) }

func parseAddr(s string) pdp16e.Word {
	hex := strings.HasPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0x")
	base := 16
	if !hex && strings.HasPrefix(strings.TrimSpace(s), "0") && len(s) > 1 {
		base = 8
	}
	v, _ := strconv.ParseUint(s, base, 16)
	return pdp16e.Word(v)
}
