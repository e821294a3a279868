// execcontext.go - per-instruction scratch state threaded through micro-ops
//
// One execContext is allocated when an instruction is decoded and lives
// until it retires in WB. It plays the role of the source engine's
// operand-owned scratch registers/addresses, but as plain fields on a
// struct rather than captured closure state.

package pdp16e

// execContext carries the mutable scratch state a Command's micro-ops
// read and write as an instruction flows through the pipeline.
type execContext struct {
	eng *Engine

	startPC Word // address the instruction began at
	opcode  Word

	// totalExtraWords is the count of instruction words consumed beyond
	// the opcode itself (0, 1, or 2), fixed by IF before OF runs. It lets
	// OF compute "PC as the running program would see it" for PC-relative
	// addressing without reading the architectural PC register, which
	// WB hasn't advanced yet.
	totalExtraWords int

	// Addressing-mode scratch, per operand (0 = src/single, 1 = dest).
	scratchReg  [2]Word // register used as the addressing base
	scratchAddr [2]Word // resolved effective address, if any
	fetchedVal  [2]Word // value loaded from the operand, if fetched
	nextWord    [2]Word // extra instruction word(s) consumed by this operand

	// ALU dataflow. result holds the primary outcome a WB store op
	// writes back. resultLow additionally holds MUL's low half when the
	// full 32-bit product must land in a register pair.
	result   Word
	resultLow Word

	// Branch/jump outcome, applied in WB.
	branchTaken bool
	newPC       Word
	pcWritten   bool

	// Scoreboard bookkeeping the pipeline fills in at OF and drains at
	// retire: registers OF blocked for this instruction's WB stores, and
	// cache lines pinned for its pending OpStoreAddress writes.
	lockedRegs  []int
	pinnedAddrs []Word

	fault error
}

func newExecContext(eng *Engine, pc, opcode Word) *execContext {
	return &execContext{eng: eng, startPC: pc, opcode: opcode}
}

func (c *execContext) fail(err error) {
	if c.fault == nil {
		c.fault = err
	}
}

// pcAfterFetch returns the value the program counter holds once every
// word of this instruction has been fetched — the value PC-relative
// addressing modes compute against.
func (c *execContext) pcAfterFetch() Word {
	return c.startPC + 2*(1+Word(c.totalExtraWords))
}
