// operand.go - addressing-mode operand descriptors and micro-op builders
//
// For each (reg, mode) pair the builder appends the deterministic
// micro-op sequence of spec.md §4.3: optional predecrement, optional
// next-instruction-word fetch, register load, optional postincrement,
// optional indexed-address formation, and zero/one/two memory loads
// depending on indirection. Byte-mode auto-inc/dec steps by 1 except
// when reg is SP or PC, which always step by 2.

package pdp16e

const (
	ModeRegister           = 0
	ModeRegisterDeferred   = 1
	ModeAutoIncrement      = 2
	ModeAutoIncrementDefer = 3
	ModeAutoDecrement      = 4
	ModeAutoDecrementDefer = 5
	ModeIndex              = 6
	ModeIndexDeferred      = 7
)

// Operand describes one operand of a Command: which register and
// addressing mode, and whether referencing PC requires a following
// instruction word.
type Operand struct {
	Reg             int
	Mode            int
	RequireNextWord bool
}

// NewOperand validates the PC-addressing-mode restriction of spec.md §3
// (reg=7 implies mode in {0,2,3,6,7}) and returns the built Operand.
func NewOperand(reg, mode int) (Operand, error) {
	if reg == RegPC {
		switch mode {
		case ModeRegister, ModeAutoIncrement, ModeAutoIncrementDefer, ModeIndex, ModeIndexDeferred:
		default:
			return Operand{}, newFault(KindOperandWrongPCMode, "decode", nil)
		}
	}
	req := reg == RegPC || mode == ModeIndex || mode == ModeIndexDeferred
	return Operand{Reg: reg, Mode: mode, RequireNextWord: req}, nil
}

// autoStep returns the register step for auto-inc/dec addressing:
// always 2 for SP/PC, 1 for byte-width accesses on other registers,
// else 2.
func autoStep(reg int, byteWidth bool) Word {
	if reg == RegSP || reg == RegPC {
		return 2
	}
	if byteWidth {
		return 1
	}
	return 2
}

// buildOperandOps returns the IF-stage and OF-stage micro-ops for
// resolving op into slot's scratch fields. fetchOperand is false for
// do-not-fetch destinations (JMP/JSR targets, MOV dest): the final
// value load is omitted but the effective address still lands in
// scratchAddr[slot] for the writeback step.
func buildOperandOps(slot int, op Operand, byteWidth, fetchOperand bool) (ifOps, ofOps []MicroOp) {
	if op.RequireNextWord {
		ifOps = append(ifOps, MicroOp{
			Kind: OpFetchNextInstruction, Width: AccessWord,
			Result: func(ctx *execContext, v Word) { ctx.nextWord[slot] = v },
		})
	}

	reg := op.Reg
	width := AccessWord
	if byteWidth {
		width = AccessByte
	}
	step := autoStep(reg, byteWidth)

	readReg := func(ctx *execContext) Word {
		if reg == RegPC {
			return ctx.pcAfterFetch()
		}
		_, v := ctx.eng.regs.ReadWord(reg)
		return v
	}

	switch op.Mode {
	case ModeRegister:
		if fetchOperand {
			ofOps = append(ofOps, MicroOp{Kind: OpFetchRegister, Reg: reg,
				Result: func(ctx *execContext, v Word) { ctx.fetchedVal[slot] = readReg(ctx) }})
		}

	case ModeRegisterDeferred:
		ofOps = append(ofOps, MicroOp{Kind: OpFetchRegister, Reg: reg,
			Result: func(ctx *execContext, v Word) { ctx.scratchAddr[slot] = readReg(ctx) }})
		if fetchOperand {
			ofOps = append(ofOps, fetchAt(slot, width))
		}

	case ModeAutoIncrement:
		if reg == RegPC {
			ofOps = append(ofOps, MicroOp{Kind: OpIncReg, Reg: reg, Step: step})
			if fetchOperand {
				ofOps = append(ofOps, MicroOp{Kind: OpFetchRegister, Reg: reg,
					Result: func(ctx *execContext, v Word) { ctx.fetchedVal[slot] = ctx.nextWord[slot] }})
			}
			break
		}
		ofOps = append(ofOps,
			MicroOp{Kind: OpFetchRegister, Reg: reg,
				Result: func(ctx *execContext, v Word) { ctx.scratchAddr[slot] = v }},
			MicroOp{Kind: OpIncReg, Reg: reg, Step: step},
		)
		if fetchOperand {
			ofOps = append(ofOps, fetchAt(slot, width))
		}

	case ModeAutoIncrementDefer:
		if reg == RegPC {
			ofOps = append(ofOps, MicroOp{Kind: OpIncReg, Reg: reg, Step: 2},
				MicroOp{Kind: OpFetchRegister, Reg: reg,
					Result: func(ctx *execContext, v Word) { ctx.scratchAddr[slot] = ctx.nextWord[slot] }})
			if fetchOperand {
				ofOps = append(ofOps, fetchAt(slot, width))
			}
			break
		}
		ofOps = append(ofOps,
			MicroOp{Kind: OpFetchRegister, Reg: reg,
				Result: func(ctx *execContext, v Word) { ctx.scratchAddr[slot] = v }},
			MicroOp{Kind: OpIncReg, Reg: reg, Step: 2},
			derefAt(slot),
		)
		if fetchOperand {
			ofOps = append(ofOps, fetchAt(slot, width))
		}

	case ModeAutoDecrement:
		ofOps = append(ofOps,
			MicroOp{Kind: OpDecReg, Reg: reg, Step: step},
			MicroOp{Kind: OpFetchRegister, Reg: reg,
				Result: func(ctx *execContext, v Word) { ctx.scratchAddr[slot] = v }},
		)
		if fetchOperand {
			ofOps = append(ofOps, fetchAt(slot, width))
		}

	case ModeAutoDecrementDefer:
		ofOps = append(ofOps,
			MicroOp{Kind: OpDecReg, Reg: reg, Step: 2},
			MicroOp{Kind: OpFetchRegister, Reg: reg,
				Result: func(ctx *execContext, v Word) { ctx.scratchAddr[slot] = v }},
			derefAt(slot),
		)
		if fetchOperand {
			ofOps = append(ofOps, fetchAt(slot, width))
		}

	case ModeIndex:
		ofOps = append(ofOps, MicroOp{Kind: OpFetchRegister, Reg: reg,
			Result: func(ctx *execContext, v Word) { ctx.scratchAddr[slot] = readReg(ctx) + ctx.nextWord[slot] }})
		if fetchOperand {
			ofOps = append(ofOps, fetchAt(slot, width))
		}

	case ModeIndexDeferred:
		ofOps = append(ofOps,
			MicroOp{Kind: OpFetchRegister, Reg: reg,
				Result: func(ctx *execContext, v Word) { ctx.scratchAddr[slot] = readReg(ctx) + ctx.nextWord[slot] }},
			derefAt(slot),
		)
		if fetchOperand {
			ofOps = append(ofOps, fetchAt(slot, width))
		}
	}
	return ifOps, ofOps
}

// fetchAt issues the final value load at the already-resolved effective
// address for slot.
func fetchAt(slot int, width AccessWidth) MicroOp {
	return MicroOp{
		Kind:  OpFetchAddress,
		Width: width,
		AddrFn: func(ctx *execContext) Word { return ctx.scratchAddr[slot] },
		Result: func(ctx *execContext, v Word) { ctx.fetchedVal[slot] = v },
	}
}

// derefAt resolves one level of pointer indirection: the word at the
// current effective address becomes the new effective address.
func derefAt(slot int) MicroOp {
	return MicroOp{
		Kind:  OpFetchAddress,
		Width: AccessWord,
		AddrFn: func(ctx *execContext) Word { return ctx.scratchAddr[slot] },
		Result: func(ctx *execContext, v Word) { ctx.scratchAddr[slot] = v },
	}
}

// buildStoreOps returns the WB-stage micro-ops that write result into
// op's destination: StoreRegister for mode 0, StoreAddress (at the
// effective address captured during OF) otherwise.
func buildStoreOps(slot int, op Operand, byteWidth bool, valueFn func(ctx *execContext) Word) []MicroOp {
	width := AccessWord
	if byteWidth {
		width = AccessByte
	}
	if op.Mode == ModeRegister {
		return []MicroOp{{Kind: OpStoreRegister, Reg: op.Reg, Width: width, ValueFn: valueFn}}
	}
	return []MicroOp{{
		Kind:  OpStoreAddress,
		Width: width,
		AddrFn: func(ctx *execContext) Word { return ctx.scratchAddr[slot] },
		ValueFn: valueFn,
	}}
}
