// interrupt.go - keyboard interrupt entry
//
// checkInterrupt is polled at the start of every Step: if the
// keyboard's permitted bit is set and a key is waiting, it drains the
// pipeline, pushes PSW and PC, and vectors to the fixed keyboard
// handler address, per spec.md §4.7. The drain it performs makes it
// safe to call regardless of what the pipeline was doing.

package pdp16e

// checkInterrupt services one pending key if the keyboard currently
// permits interrupts. Steps (i)-(vi) of spec.md §4.7, in order. Reports
// whether an interrupt was actually delivered, so Step can treat
// delivery as the entire step rather than also issuing a new fetch.
func (e *Engine) checkInterrupt() bool {
	if !e.keyboard.InterruptPermitted() {
		return false
	}
	code, ok := e.keyboard.pop()
	if !ok {
		return false
	}

	e.keyboard.clearInterruptPermitted()
	e.keyboard.setLastKey(code)

	e.pipeline.Barrier()

	if err := e.pushWord(Word(e.psw.Get())); err != nil {
		e.fail(err)
		return true
	}
	if err := e.pushWord(e.PC()); err != nil {
		e.fail(err)
		return true
	}

	newPC := e.mem.RawWord(InterruptVectorPC)
	newPSW := e.mem.RawWord(InterruptVectorPSW)
	if err := e.regs.WriteWord(RegPC, newPC); err != nil {
		e.fail(err)
		return true
	}
	e.psw.Set(LowByte(newPSW))

	e.pipeline.Redirect(newPC)
	return true
}

// pushWord predecrements SP by 2 and stores v at the new SP, retrying
// the store across cache-busy cycles the way an in-pipeline WB store
// would. Used only by interrupt entry, which runs with the pipeline
// already drained.
func (e *Engine) pushWord(v Word) error {
	if err := e.regs.Dec(RegSP, 2); err != nil {
		return err
	}
	_, sp := e.regs.ReadWord(RegSP)
	for !e.dcache.Store(sp, AccessWord, v) {
		e.dcache.Tick()
	}
	return nil
}
