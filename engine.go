// engine.go - top-level machine: the host-facing API over the pipeline
//
// Engine owns every piece of architectural state (registers, PSW,
// memory, the two caches, the devices) and the Pipeline that drives
// them. Everything outside this package talks to the machine only
// through Engine's methods.

package pdp16e

import (
	"fmt"
	"log/slog"
)

// Engine is one PDP-16e core: registers, condition codes, the
// instruction and data caches, memory-mapped devices, and the pipeline
// that steps them all forward one cycle at a time.
type Engine struct {
	cfg *EngineConfig

	regs *RegisterFile
	psw  PSW

	mem      *Memory
	icache   *Cache
	dcache   *Cache
	video    *VideoChip
	keyboard *Keyboard

	pipeline *Pipeline

	logger *slog.Logger

	breakpoints map[Word]bool

	stopped   bool
	lastFault error
}

// NewEngine constructs a machine from cfg, wiring a fresh video chip,
// keyboard, memory, and a pair of caches (one instruction-side, one
// data-side, both sitting in front of the same Memory, matching
// spec.md §4.5's "two independent caches"). Fetching starts at
// cfg.ROMStart, the conventional reset vector for this machine; the PC
// register itself is written only as instructions retire, so PC()
// reads 0 until the first one does.
func NewEngine(cfg *EngineConfig, logger *slog.Logger) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = discardLogger()
	}

	video := NewVideoChip(cfg)
	keyboard := NewKeyboard(cfg)
	mem := NewMemory(cfg, video, keyboard)

	eng := &Engine{
		cfg:         cfg,
		regs:        NewRegisterFile(cfg.StackLowerBound, cfg.StackUpperBound),
		mem:         mem,
		icache:      NewCache(cfg, mem),
		dcache:      NewCache(cfg, mem),
		video:       video,
		keyboard:    keyboard,
		logger:      logger,
		breakpoints: make(map[Word]bool),
	}
	if err := eng.regs.WriteWord(RegSP, cfg.StackUpperBound); err != nil {
		return nil, err
	}
	eng.resetPC(cfg.ROMStart)
	return eng, nil
}

func (e *Engine) resetPC(pc Word) {
	e.pipeline = newPipeline(e, pc)
}

// fail records a halting fault, surfacing it through Err. The pipeline
// calls this when an instruction's fault isn't recoverable.
func (e *Engine) fail(err error) {
	if e.stopped {
		return
	}
	e.stopped = true
	e.lastFault = err
	if f, ok := err.(*Fault); ok {
		logFault(e.logger, "pipeline", f, e.pipeline.cycles)
	} else {
		e.logger.Error("fault", slog.String("op", "pipeline"), slog.String("err", err.Error()))
	}
}

// Err returns the fault that halted the engine, or nil while running.
func (e *Engine) Err() error { return e.lastFault }

// Stopped reports whether a fault has halted the engine.
func (e *Engine) Stopped() bool { return e.stopped }

// Step checks for a pending keyboard interrupt and, if one fires,
// drains the pipeline and vectors to the handler as the entire step;
// otherwise it runs the pipeline until one new instruction has been
// issued (not necessarily retired — a cache-stalled instruction still
// counts as "stepped" once IF has issued it) or the engine halts.
func (e *Engine) Step() error {
	if e.stopped {
		return e.lastFault
	}
	if e.checkInterrupt() {
		return e.lastFault
	}
	e.pipeline.Step()
	return e.lastFault
}

// Run steps the engine until it halts on a fault or hits an armed
// breakpoint at the current PC, whichever comes first. maxInstructions
// caps runaway loops in host tooling; 0 means unbounded.
func (e *Engine) Run(maxInstructions int) error {
	n := 0
	for !e.stopped {
		if e.breakpoints[e.PC()] && n > 0 {
			return nil
		}
		if err := e.Step(); err != nil {
			return err
		}
		n++
		if maxInstructions > 0 && n >= maxInstructions {
			return nil
		}
	}
	return e.lastFault
}

// ToggleBreakpoint flips the armed state of a breakpoint at addr,
// returning the new state.
func (e *Engine) ToggleBreakpoint(addr Word) bool {
	on := !e.breakpoints[addr]
	if on {
		e.breakpoints[addr] = true
	} else {
		delete(e.breakpoints, addr)
	}
	return on
}

// Breakpoint reports whether addr currently has an armed breakpoint.
func (e *Engine) Breakpoint(addr Word) bool { return e.breakpoints[addr] }

// Memory exposes the flat address space for host tooling (loaders,
// disassembly, memory-dump views).
func (e *Engine) Memory() *Memory { return e.mem }

// Registers exposes the register file.
func (e *Engine) Registers() *RegisterFile { return e.regs }

// PSW returns the current condition codes.
func (e *Engine) PSW() PSW { return e.psw }

// PC returns the current program counter, honoring the scoreboard the
// same way any other register read does (always non-blocked in
// practice, since the pipeline never parks an instruction mid-PC-write
// without retiring).
func (e *Engine) PC() Word {
	_, pc := e.regs.ReadWord(RegPC)
	return pc
}

// CacheStats returns the instruction- and data-cache hit/miss
// snapshots, spec.md §8 invariant 4.
func (e *Engine) CacheStats() (icache, dcache CacheStats) {
	return e.icache.Stats(), e.dcache.Stats()
}

// PipelineStats reports cycles elapsed, instructions issued (counted as
// each one enters IF), and the resulting IPC.
func (e *Engine) PipelineStats() (cycles, instructions uint64, ipc float64) {
	return e.pipeline.cycles, e.pipeline.instructions, e.pipeline.IPC()
}

// Keyboard exposes the keyboard device for host input producers.
func (e *Engine) Keyboard() *Keyboard { return e.keyboard }

// Video exposes the video chip for host presenters.
func (e *Engine) Video() *VideoChip { return e.video }

// Disasm renders the instruction at addr as its mnemonic-and-operands
// text, with no address prefix, plus the word count consumed, per
// spec.md §4.8. A word that fails to decode renders as "ADDR: ???"
// alongside the decode error. Reads go through RawWord so the
// ROM range is readable without tripping device side effects.
func (e *Engine) Disasm(addr Word) (text string, words int, err error) {
	opcode := e.mem.RawWord(addr)
	cmd, err := Decode(opcode)
	if err != nil {
		return fmt.Sprintf("0%06o: ???", addr), 1, err
	}
	extra := cmd.extraWords()
	operandWords := make([]Word, extra)
	for i := 0; i < extra; i++ {
		operandWords[i] = e.mem.RawWord(addr + Word(2*(i+1)))
	}
	return disasmText(cmd, addr, operandWords), 1 + extra, nil
}
