package pdp16e

import "testing"

func TestDoubleMOV(t *testing.T) {
	eng := newSemanticsTestEngine(t)
	ctx := newSemanticsCtx(eng)
	ctx.fetchedVal[0] = 0x1234
	if err := doubleMOV(false)(ctx); err != nil {
		t.Fatalf("doubleMOV: %v", err)
	}
	if ctx.result != 0x1234 {
		t.Errorf("result = 0x%04X, want 0x1234", ctx.result)
	}
	if eng.psw.V {
		t.Error("MOV always clears V")
	}
}

func TestDoubleCMPOrdinary(t *testing.T) {
	eng := newSemanticsTestEngine(t)
	ctx := newSemanticsCtx(eng)
	ctx.fetchedVal[0], ctx.fetchedVal[1] = 5, 3 // src=5, dest=3
	if err := doubleCMP(false)(ctx); err != nil {
		t.Fatalf("doubleCMP: %v", err)
	}
	if !eng.psw.C {
		t.Error("CMP 5,3: C should be set (5 >= 3)")
	}
	if eng.psw.V {
		t.Error("CMP 5,3 should not overflow")
	}
}

func TestDoubleCMPOverflow(t *testing.T) {
	eng := newSemanticsTestEngine(t)
	ctx := newSemanticsCtx(eng)
	ctx.fetchedVal[0], ctx.fetchedVal[1] = 0x8000, 0x7FFF
	if err := doubleCMP(false)(ctx); err != nil {
		t.Fatalf("doubleCMP: %v", err)
	}
	if !eng.psw.V {
		t.Error("CMP of a most-negative minus a largest-positive operand should overflow")
	}
}

func TestDoubleBIT(t *testing.T) {
	eng := newSemanticsTestEngine(t)
	ctx := newSemanticsCtx(eng)
	ctx.fetchedVal[0], ctx.fetchedVal[1] = 0b1010, 0b1100
	if err := doubleBIT(false)(ctx); err != nil {
		t.Fatalf("doubleBIT: %v", err)
	}
	if eng.psw.V {
		t.Error("BIT always clears V")
	}
	if eng.psw.Z {
		t.Error("0b1010 & 0b1100 = 0b1000, should not be zero")
	}
}

func TestDoubleBIC(t *testing.T) {
	eng := newSemanticsTestEngine(t)
	ctx := newSemanticsCtx(eng)
	ctx.fetchedVal[0], ctx.fetchedVal[1] = 0b0011, 0b1111
	if err := doubleBIC(false)(ctx); err != nil {
		t.Fatalf("doubleBIC: %v", err)
	}
	if ctx.result != 0b1100 {
		t.Errorf("BIC(src=0b0011, dest=0b1111) = %#b, want 0b1100", ctx.result)
	}
}

func TestDoubleBIS(t *testing.T) {
	eng := newSemanticsTestEngine(t)
	ctx := newSemanticsCtx(eng)
	ctx.fetchedVal[0], ctx.fetchedVal[1] = 0b0011, 0b1100
	if err := doubleBIS(false)(ctx); err != nil {
		t.Fatalf("doubleBIS: %v", err)
	}
	if ctx.result != 0b1111 {
		t.Errorf("BIS(0b0011, 0b1100) = %#b, want 0b1111", ctx.result)
	}
}

func TestDoubleADDOverflow(t *testing.T) {
	eng := newSemanticsTestEngine(t)
	ctx := newSemanticsCtx(eng)
	ctx.fetchedVal[1], ctx.fetchedVal[0] = 0x7FFF, 1 // dest=max positive, src=1
	if err := doubleADD()(ctx); err != nil {
		t.Fatalf("doubleADD: %v", err)
	}
	if ctx.result != 0x8000 {
		t.Errorf("result = 0x%04X, want 0x8000", ctx.result)
	}
	if !eng.psw.V {
		t.Error("adding 1 to 0x7FFF should overflow into a negative result")
	}
	if eng.psw.C {
		t.Error("this addition should not carry out of bit 15")
	}
}

func TestDoubleADDCarry(t *testing.T) {
	eng := newSemanticsTestEngine(t)
	ctx := newSemanticsCtx(eng)
	ctx.fetchedVal[1], ctx.fetchedVal[0] = 0xFFFF, 1
	if err := doubleADD()(ctx); err != nil {
		t.Fatalf("doubleADD: %v", err)
	}
	if ctx.result != 0 {
		t.Errorf("0xFFFF+1 wraps to 0, got 0x%04X", ctx.result)
	}
	if !eng.psw.C {
		t.Error("0xFFFF+1 should carry out")
	}
	if eng.psw.V {
		t.Error("opposite-signed operands never overflow")
	}
}

func TestDoubleSUBOverflow(t *testing.T) {
	eng := newSemanticsTestEngine(t)
	ctx := newSemanticsCtx(eng)
	ctx.fetchedVal[1], ctx.fetchedVal[0] = 0x8000, 1 // dest=most negative, src=1
	if err := doubleSUB()(ctx); err != nil {
		t.Fatalf("doubleSUB: %v", err)
	}
	if ctx.result != 0x7FFF {
		t.Errorf("result = 0x%04X, want 0x7FFF", ctx.result)
	}
	if !eng.psw.V {
		t.Error("subtracting a positive from the most negative value should overflow")
	}
	if !eng.psw.C {
		t.Error("C should be set (no borrow: 0x8000 >= 1)")
	}
}

func TestDoubleSUBOrdinary(t *testing.T) {
	eng := newSemanticsTestEngine(t)
	ctx := newSemanticsCtx(eng)
	ctx.fetchedVal[1], ctx.fetchedVal[0] = 5, 3
	if err := doubleSUB()(ctx); err != nil {
		t.Fatalf("doubleSUB: %v", err)
	}
	if ctx.result != 2 {
		t.Errorf("5-3 = %d, want 2", ctx.result)
	}
	if eng.psw.V {
		t.Error("5-3 should not overflow")
	}
}
