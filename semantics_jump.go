// semantics_jump.go - control-transfer opcodes: JMP, JSR, RTS, MARK, SOB
//
// Each of these touches the stack or PC directly rather than through an
// addressed operand's fetch/store pair. JMP is a plain WB-stage store
// into PC; the others are each a single WB-stage OpExecute closure per
// spec.md §4.4. A closure that needs a
// memory access returns errStall until the cache is ready; nothing it
// mutates before that point is visible, so retrying is safe.

package pdp16e

// jumpJMP writes the already-resolved destination address (captured in
// scratchAddr[destSlot] during OF) into PC.
func jumpJMP(destSlot int) MicroOp {
	return MicroOp{
		Kind: OpStoreRegister, Reg: RegPC, Width: AccessWord,
		ValueFn: func(ctx *execContext) Word { return ctx.scratchAddr[destSlot] },
	}
}

// jumpJSR pushes regSrc's current value, sets regSrc to the address
// following the instruction, and transfers control to the resolved
// destination.
func jumpJSR(regSrc, destSlot int) MicroOp {
	return MicroOp{Kind: OpExecute, Run: func(ctx *execContext) error {
		_, sp := ctx.eng.regs.ReadWord(RegSP)
		addr := sp - 2
		ok := ctx.eng.dcache.Store(addr, AccessWord, ctx.fetchedVal[0])
		if !ok {
			return errStall
		}
		if err := ctx.eng.regs.Dec(RegSP, 2); err != nil {
			return err
		}
		if err := ctx.eng.regs.WriteWord(regSrc, ctx.pcAfterFetch()); err != nil {
			return err
		}
		if err := ctx.eng.regs.WriteWord(RegPC, ctx.scratchAddr[destSlot]); err != nil {
			return err
		}
		ctx.pcWritten = true
		return nil
	}}
}

// jumpRTS loads PC from regSrc's value as OF captured it (the return
// address) and restores regSrc from the word popped off the stack.
func jumpRTS(regSrc int) MicroOp {
	return MicroOp{Kind: OpExecute, Run: func(ctx *execContext) error {
		_, sp := ctx.eng.regs.ReadWord(RegSP)
		ok, popped := ctx.eng.dcache.Load(sp, AccessWord)
		if !ok {
			return errStall
		}
		if err := ctx.eng.regs.Inc(RegSP, 2); err != nil {
			return err
		}
		if err := ctx.eng.regs.WriteWord(RegPC, ctx.fetchedVal[0]); err != nil {
			return err
		}
		if err := ctx.eng.regs.WriteWord(regSrc, popped); err != nil {
			return err
		}
		ctx.pcWritten = true
		return nil
	}}
}

// jumpMARK discards n argument words, loads PC from R5's current
// value, and restores R5 by popping the stack slot the discard
// uncovered.
func jumpMARK(n int) MicroOp {
	return MicroOp{Kind: OpExecute, Run: func(ctx *execContext) error {
		_, sp := ctx.eng.regs.ReadWord(RegSP)
		addr := sp + Word(2*n)
		ok, popped := ctx.eng.dcache.Load(addr, AccessWord)
		if !ok {
			return errStall
		}
		_, oldR5 := ctx.eng.regs.ReadWord(5)
		if err := ctx.eng.regs.Inc(RegSP, Word(2*n+2)); err != nil {
			return err
		}
		if err := ctx.eng.regs.WriteWord(5, popped); err != nil {
			return err
		}
		if err := ctx.eng.regs.WriteWord(RegPC, oldR5); err != nil {
			return err
		}
		ctx.pcWritten = true
		return nil
	}}
}

// jumpSOB decrements reg and, if it's still nonzero, subtracts 2*off6
// from PC. Pure register arithmetic, no memory access.
func jumpSOB(reg int, off6 int32) MicroOp {
	return MicroOp{Kind: OpExecute, Run: func(ctx *execContext) error {
		if err := ctx.eng.regs.Dec(reg, 1); err != nil {
			return err
		}
		_, v := ctx.eng.regs.ReadWord(reg)
		if v != 0 {
			pc := ctx.pcAfterFetch()
			if err := ctx.eng.regs.WriteWord(RegPC, pc-Word(2*off6)); err != nil {
				return err
			}
			ctx.pcWritten = true
		}
		return nil
	}}
}
