package pdp16e

import "testing"

func TestNewOperandPCModeRestriction(t *testing.T) {
	allowed := map[int]bool{
		ModeRegister: true, ModeRegisterDeferred: false, ModeAutoIncrement: true,
		ModeAutoIncrementDefer: true, ModeAutoDecrement: false, ModeAutoDecrementDefer: false,
		ModeIndex: true, ModeIndexDeferred: true,
	}
	for mode, want := range allowed {
		_, err := NewOperand(RegPC, mode)
		if want && err != nil {
			t.Errorf("NewOperand(PC, mode=%d) = %v, want no error", mode, err)
		}
		if !want {
			if err == nil {
				t.Errorf("NewOperand(PC, mode=%d) succeeded, want KindOperandWrongPCMode fault", mode)
				continue
			}
			if f, ok := err.(*Fault); !ok || f.Kind != KindOperandWrongPCMode {
				t.Errorf("NewOperand(PC, mode=%d) = %v, want a KindOperandWrongPCMode fault", mode, err)
			}
		}
	}
}

func TestNewOperandNonPCRegisterAnyMode(t *testing.T) {
	for mode := ModeRegister; mode <= ModeIndexDeferred; mode++ {
		if _, err := NewOperand(2, mode); err != nil {
			t.Errorf("NewOperand(R2, mode=%d) = %v, want no error", mode, err)
		}
	}
}

func TestNewOperandRequireNextWord(t *testing.T) {
	cases := []struct {
		reg, mode int
		want      bool
	}{
		{2, ModeRegister, false},
		{2, ModeAutoIncrement, false},
		{2, ModeIndex, true},
		{2, ModeIndexDeferred, true},
		{RegPC, ModeRegister, true},
		{RegPC, ModeAutoIncrement, true},
	}
	for _, c := range cases {
		op, err := NewOperand(c.reg, c.mode)
		if err != nil {
			t.Fatalf("NewOperand(%d, %d): %v", c.reg, c.mode, err)
		}
		if op.RequireNextWord != c.want {
			t.Errorf("NewOperand(%d, %d).RequireNextWord = %v, want %v", c.reg, c.mode, op.RequireNextWord, c.want)
		}
	}
}

func TestAutoStep(t *testing.T) {
	if got := autoStep(RegSP, true); got != 2 {
		t.Errorf("autoStep(SP, byte) = %d, want 2", got)
	}
	if got := autoStep(RegPC, true); got != 2 {
		t.Errorf("autoStep(PC, byte) = %d, want 2", got)
	}
	if got := autoStep(2, true); got != 1 {
		t.Errorf("autoStep(R2, byte) = %d, want 1", got)
	}
	if got := autoStep(2, false); got != 2 {
		t.Errorf("autoStep(R2, word) = %d, want 2", got)
	}
}

func TestBuildOperandOpsRegisterModeFetch(t *testing.T) {
	op, _ := NewOperand(3, ModeRegister)
	ifOps, ofOps := buildOperandOps(1, op, false, true)
	if len(ifOps) != 0 {
		t.Errorf("register mode should not consume an instruction word, got %d IFOps", len(ifOps))
	}
	if len(ofOps) != 1 || ofOps[0].Kind != OpFetchRegister {
		t.Errorf("register mode with fetchOperand=true should emit one OpFetchRegister, got %+v", ofOps)
	}
}

func TestBuildOperandOpsRegisterModeNoFetch(t *testing.T) {
	op, _ := NewOperand(3, ModeRegister)
	_, ofOps := buildOperandOps(1, op, false, false)
	if len(ofOps) != 0 {
		t.Errorf("register mode with fetchOperand=false should emit no OF ops, got %+v", ofOps)
	}
}

func TestBuildOperandOpsRegisterModePCReadsPostFetchValue(t *testing.T) {
	cfg := NewEngineConfig()
	eng, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	op, err := NewOperand(RegPC, ModeRegister)
	if err != nil {
		t.Fatalf("NewOperand(PC, ModeRegister): %v", err)
	}
	_, ofOps := buildOperandOps(0, op, false, true)
	if len(ofOps) != 1 || ofOps[0].Kind != OpFetchRegister {
		t.Fatalf("want a single OpFetchRegister op, got %+v", ofOps)
	}

	ctx := newExecContext(eng, 0x8000, 0)
	ctx.totalExtraWords = 1 // RequireNextWord, as NewOperand sets for PC

	// The architectural PC register still holds the stale pre-retire
	// value here (WB hasn't advanced it yet); the Result callback must
	// ignore the raw fetched value and substitute pcAfterFetch().
	ofOps[0].Result(ctx, 0x8000)

	if want := ctx.pcAfterFetch(); ctx.fetchedVal[0] != want {
		t.Errorf("fetchedVal[0] = 0x%04X, want pcAfterFetch() = 0x%04X", ctx.fetchedVal[0], want)
	}
}

func TestBuildOperandOpsIndexEmitsNextInstructionFetch(t *testing.T) {
	op, _ := NewOperand(1, ModeIndex)
	ifOps, ofOps := buildOperandOps(0, op, false, true)
	if len(ifOps) != 1 || ifOps[0].Kind != OpFetchNextInstruction {
		t.Errorf("index mode should emit exactly one OpFetchNextInstruction, got %+v", ifOps)
	}
	if len(ofOps) == 0 {
		t.Error("index mode should emit at least one OF micro-op to form the effective address")
	}
}

func TestBuildOperandOpsAutoIncrementDeferEmitsDeref(t *testing.T) {
	op, _ := NewOperand(2, ModeAutoIncrementDefer)
	_, ofOps := buildOperandOps(1, op, false, true)
	var sawDeref, sawFetch bool
	for _, mo := range ofOps {
		if mo.Kind == OpFetchAddress {
			if !sawDeref {
				sawDeref = true
			} else {
				sawFetch = true
			}
		}
	}
	if !sawDeref || !sawFetch {
		t.Errorf("auto-increment-deferred should dereference once then fetch the operand, got %+v", ofOps)
	}
}

func TestBuildStoreOpsRegisterMode(t *testing.T) {
	op, _ := NewOperand(4, ModeRegister)
	ops := buildStoreOps(1, op, false, func(ctx *execContext) Word { return 0 })
	if len(ops) != 1 || ops[0].Kind != OpStoreRegister || ops[0].Reg != 4 {
		t.Errorf("got %+v, want a single OpStoreRegister targeting reg 4", ops)
	}
}

func TestBuildStoreOpsMemoryMode(t *testing.T) {
	op, _ := NewOperand(4, ModeRegisterDeferred)
	ops := buildStoreOps(1, op, false, func(ctx *execContext) Word { return 0 })
	if len(ops) != 1 || ops[0].Kind != OpStoreAddress {
		t.Errorf("got %+v, want a single OpStoreAddress", ops)
	}
}
