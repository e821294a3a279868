// pipeline.go - five-stage pipeline with scoreboard interlocks
//
// IF, ID, OF, ALU, WB each hold at most one in-flight instruction.
// Every cycle() call advances the stages in last-to-first order (WB,
// ALU, OF, ID, IF) so a stage that frees a resource this cycle is
// immediately visible to the stage behind it, per spec.md §5's
// "deterministic pass" rule. A stage whose current op needs the cache
// and finds it busy parks in WAIT_DATA/WAIT_INSTR and is retried next
// cycle; it does not block the stages ahead of it in the pass.

package pdp16e

// stageName identifies a pipeline stage, used for Micro-op routing
// documentation (MicroOpKind.stage) and for WAIT_DATA/WAIT_INSTR
// bookkeeping.
type stageName int

const (
	stageIF stageName = iota
	stageID
	stageOF
	stageALU
	stageWB
)

// slotState mirrors spec.md §3's PipelineStage states.
type slotState int

const (
	stateWaitNext slotState = iota
	stateInProgress
	stateWaitData
	stateWaitInstr
	stateFinished
)

// stageSlot is one pipeline register: at most one instruction's worth
// of state, plus a cursor into whichever op list this stage owns.
type stageSlot struct {
	cmd    *Command
	ctx    *execContext
	cursor int
	state  slotState

	cyclesRemaining int // ALU-stage per-op latency countdown

	waitAddr Word
	waitDir  accessDirection
}

func (s *stageSlot) empty() bool { return s.cmd == nil }

func (s *stageSlot) clear() { *s = stageSlot{} }

// Pipeline is the engine's single cooperative scheduler: cycle() is the
// only entry point that advances machine state.
type Pipeline struct {
	eng *Engine

	wb, alu, of, id, ifs stageSlot

	fetchPC Word // next address IF will read; equals PC except mid-flight

	branchInFlight bool

	cycles       uint64
	instructions uint64
}

func newPipeline(eng *Engine, startPC Word) *Pipeline {
	return &Pipeline{eng: eng, fetchPC: startPC}
}

// IPC reports instructions issued (entered into IF) per cycle elapsed, 0 if no cycles
// have run yet.
func (p *Pipeline) IPC() float64 {
	if p.cycles == 0 {
		return 0
	}
	return float64(p.instructions) / float64(p.cycles)
}

// Cycle runs one tick of the virtual clock.
func (p *Pipeline) Cycle() {
	p.cycles++
	p.eng.icache.Tick()
	p.eng.dcache.Tick()

	p.stepWB()
	if p.wb.empty() && p.alu.state == stateFinished {
		p.wb = p.alu
		p.wb.state = stateInProgress
		p.wb.cursor = 0
		p.alu.clear()
	}

	p.stepALU()
	if p.alu.empty() && p.of.state == stateFinished {
		p.alu = p.of
		p.alu.state = stateInProgress
		p.alu.cursor = 0
		if len(p.alu.cmd.ALUOps) > 0 {
			p.alu.cyclesRemaining = p.alu.cmd.ALUOps[0].Cycles
		}
		p.of.clear()
	}

	p.stepOF()
	if p.of.empty() && p.id.state == stateFinished {
		if p.tryAcquireLocks(p.id.cmd, p.id.ctx) {
			p.of = p.id
			p.of.state = stateInProgress
			p.of.cursor = 0
			p.id.clear()
		}
	}

	p.stepID()
	if p.id.empty() && p.ifs.state == stateFinished {
		p.id = p.ifs
		p.id.state = stateFinished // ID is a one-cycle pass-through: decode already ran in IF
		p.ifs.clear()
	}

	p.stepIF()
}

// destRegisters returns the registers cmd's WB stage will write,
// excluding PC (covered by branchInFlight instead of the scoreboard).
func destRegisters(cmd *Command) []int {
	seen := map[int]bool{}
	var regs []int
	add := func(r int) {
		if r != RegPC && !seen[r] {
			seen[r] = true
			regs = append(regs, r)
		}
	}
	for _, op := range cmd.WBOps {
		if op.Kind == OpStoreRegister {
			add(op.Reg)
		}
	}
	return regs
}

// tryAcquireLocks blocks cmd's destination registers if none of them
// are already held by an earlier in-flight instruction; returns false
// (and blocks nothing) if any are busy, applying OF-entry backpressure.
func (p *Pipeline) tryAcquireLocks(cmd *Command, ctx *execContext) bool {
	regs := destRegisters(cmd)
	for _, r := range regs {
		if p.eng.regs.IsBlocked(r) {
			return false
		}
	}
	for _, r := range regs {
		p.eng.regs.Block(r, true)
	}
	ctx.lockedRegs = regs
	return true
}

func (p *Pipeline) stepIF() {
	if p.ifs.state == stateFinished {
		return // waiting for ID to pull this instruction
	}
	if p.ifs.empty() {
		if p.branchInFlight {
			return
		}
		ok, opcode := p.eng.icache.Load(p.fetchPC, AccessWord)
		if !ok {
			return
		}
		cmd, err := Decode(opcode)
		if err != nil {
			p.eng.fail(err)
			return
		}
		ctx := newExecContext(p.eng, p.fetchPC, opcode)
		ctx.totalExtraWords = cmd.extraWords()
		p.fetchPC += 2
		p.ifs = stageSlot{cmd: cmd, ctx: ctx, state: stateInProgress}
		if cmd.Kind == KindBranch || cmd.Kind == KindJump {
			p.branchInFlight = true
		}
		p.instructions++
		return
	}
	if p.ifs.cursor >= len(p.ifs.cmd.IFOps) {
		p.ifs.state = stateFinished
		return
	}
	op := p.ifs.cmd.IFOps[p.ifs.cursor]
	ok, v := p.eng.icache.Load(p.fetchPC, op.Width)
	if !ok {
		p.ifs.state = stateWaitInstr
		p.ifs.waitAddr = p.fetchPC
		return
	}
	p.fetchPC += 2
	op.Result(p.ifs.ctx, v)
	p.ifs.cursor++
	p.ifs.state = stateInProgress
	if p.ifs.cursor >= len(p.ifs.cmd.IFOps) {
		p.ifs.state = stateFinished
	}
}

func (p *Pipeline) stepID() {
	// Decode already ran during IF; ID exists purely as a pipeline
	// register so an instruction spends a cycle here before OF, as
	// spec.md §4.6 describes.
}

func (p *Pipeline) stepOF() {
	if p.of.empty() || p.of.state == stateFinished {
		return
	}
	ops := p.of.cmd.OFOps
	for p.of.cursor < len(ops) {
		op := ops[p.of.cursor]
		switch op.Kind {
		case OpFetchRegister:
			ok, v := p.eng.regs.ReadWord(op.Reg)
			if !ok {
				p.of.state = stateInProgress
				return
			}
			op.Result(p.of.ctx, v)
		case OpIncReg:
			if err := p.eng.regs.Inc(op.Reg, op.Step); err != nil {
				p.of.ctx.fail(err)
				p.of.state = stateFinished
				return
			}
		case OpDecReg:
			if err := p.eng.regs.Dec(op.Reg, op.Step); err != nil {
				p.of.ctx.fail(err)
				p.of.state = stateFinished
				return
			}
		case OpFetchAddress:
			addr := op.AddrFn(p.of.ctx)
			ok, v := p.eng.dcache.Load(addr, op.Width)
			if !ok {
				p.of.state = stateWaitData
				p.of.waitAddr = addr
				p.of.waitDir = accessLoad
				return
			}
			op.Result(p.of.ctx, v)
		}
		p.of.cursor++
	}
	p.pinDestinations(p.of.cmd, p.of.ctx)
	p.of.state = stateFinished
}

// pinDestinations blocks the cache line(s) cmd's WB stage will store
// into, resolving each StoreAddress op's address now that OF has fully
// populated ctx.
func (p *Pipeline) pinDestinations(cmd *Command, ctx *execContext) {
	for _, op := range cmd.WBOps {
		if op.Kind == OpStoreAddress {
			addr := op.AddrFn(ctx)
			if p.eng.dcache.Block(addr, true) {
				ctx.pinnedAddrs = append(ctx.pinnedAddrs, addr)
			}
		}
	}
}

func (p *Pipeline) stepALU() {
	if p.alu.empty() || p.alu.state == stateFinished {
		return
	}
	ops := p.alu.cmd.ALUOps
	for p.alu.cursor < len(ops) {
		if p.alu.cyclesRemaining > 0 {
			p.alu.cyclesRemaining--
			return
		}
		op := ops[p.alu.cursor]
		if err := op.Run(p.alu.ctx); err != nil {
			if err == errStall {
				return
			}
			p.alu.ctx.fail(err)
			p.alu.state = stateFinished
			return
		}
		p.alu.cursor++
		if p.alu.cursor < len(ops) {
			p.alu.cyclesRemaining = ops[p.alu.cursor].Cycles
		}
	}
	p.alu.state = stateFinished
}

func (p *Pipeline) stepWB() {
	if p.wb.empty() {
		return
	}
	ctx := p.wb.ctx
	cmd := p.wb.cmd
	if ctx.fault == nil {
		ops := cmd.WBOps
		for p.wb.cursor < len(ops) {
			op := ops[p.wb.cursor]
			switch op.Kind {
			case OpStoreRegister:
				v := op.ValueFn(ctx)
				var err error
				if op.Width == AccessByte {
					err = p.eng.regs.WriteByte(op.Reg, LowByte(v))
				} else {
					err = p.eng.regs.WriteWord(op.Reg, v)
				}
				if err != nil {
					ctx.fail(err)
					p.retire()
					return
				}
				if op.Reg == RegPC {
					ctx.pcWritten = true
				}
			case OpStoreAddress:
				addr := op.AddrFn(ctx)
				v := op.ValueFn(ctx)
				ok := p.eng.dcache.Store(addr, op.Width, v)
				if !ok {
					p.wb.state = stateWaitData
					p.wb.waitAddr = addr
					p.wb.waitDir = accessStore
					return
				}
				p.unpin(ctx, addr)
			case OpBranchIf:
				if op.CondFn(ctx) {
					target := ctx.pcAfterFetch() + Word(int16(op.Offset))
					if err := p.eng.regs.WriteWord(RegPC, target); err != nil {
						ctx.fail(err)
						p.retire()
						return
					}
					ctx.pcWritten = true
				}
			case OpExecute:
				if err := op.Run(ctx); err != nil {
					if err == errStall {
						return
					}
					ctx.fail(err)
					p.retire()
					return
				}
			}
			p.wb.cursor++
		}
	}
	if !ctx.pcWritten && ctx.fault == nil {
		newPC := ctx.startPC + Word(2*cmd.Length)
		if err := p.eng.regs.WriteWord(RegPC, newPC); err != nil {
			ctx.fail(err)
		}
	}
	p.retire()
}

func (p *Pipeline) unpin(ctx *execContext, addr Word) {
	for i, a := range ctx.pinnedAddrs {
		if a == addr {
			p.eng.dcache.Block(addr, false)
			ctx.pinnedAddrs = append(ctx.pinnedAddrs[:i], ctx.pinnedAddrs[i+1:]...)
			return
		}
	}
}

// retire releases cmd's locks and marks WB empty. Any unresolved fault
// is surfaced to the engine before the slot clears.
func (p *Pipeline) retire() {
	ctx := p.wb.ctx
	cmd := p.wb.cmd
	for _, r := range ctx.lockedRegs {
		p.eng.regs.Block(r, false)
	}
	for _, a := range ctx.pinnedAddrs {
		p.eng.dcache.Block(a, false)
	}
	if cmd.Kind == KindBranch || cmd.Kind == KindJump {
		p.branchInFlight = false
	}
	if ctx.fault != nil {
		p.eng.fail(ctx.fault)
	}
	p.wb.clear()
}

// Quiescent reports whether every stage is idle (WAIT_NEXT), spec.md
// §8 invariant 6's barrier postcondition.
func (p *Pipeline) Quiescent() bool {
	return p.wb.empty() && p.alu.empty() && p.of.empty() && p.id.empty() && p.ifs.empty()
}

// Barrier runs cycles until the pipeline drains completely, returning
// the cycle count consumed. Used by the keyboard-interrupt entry path.
func (p *Pipeline) Barrier() int {
	n := 0
	for !p.Quiescent() {
		p.Cycle()
		n++
		if p.eng.stopped {
			break
		}
	}
	return n
}

// Redirect sets the next fetch address, used by interrupt entry to
// vector into the handler once the pipeline has drained.
func (p *Pipeline) Redirect(pc Word) { p.fetchPC = pc }

// Step runs cycles until a new instruction is enqueued into IF, or the
// engine halts.
func (p *Pipeline) Step() {
	startCount := p.instructions
	for p.instructions == startCount && !p.eng.stopped {
		p.Cycle()
	}
}
