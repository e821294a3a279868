// semantics_double.go - ALU effects for double-operand opcodes
//
// Reads ctx.fetchedVal[0] (src) and ctx.fetchedVal[1] (dest, where
// applicable) and leaves the result in ctx.result. MOV's byte-into-
// register sign-extension rule is a decode-time special case (see
// buildDoubleOperandCommand), not something this ALU step decides.

package pdp16e

func doubleMOV(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		v := maskWidth(ctx.fetchedVal[0], byteWidth)
		ctx.result = v
		p := &ctx.eng.psw
		p.SetFromWord(v, byteWidth)
		p.V = false
		return nil
	}
}

func doubleCMP(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		a := ctx.fetchedVal[0]
		b := ctx.fetchedVal[1]
		res := maskWidth(a-b, byteWidth)
		p := &ctx.eng.psw
		p.SetFromWord(res, byteWidth)
		p.V = signBit(a, byteWidth) != signBit(b, byteWidth) && signBit(a, byteWidth) != signBit(res, byteWidth)
		p.C = uint32(maskWidth(a, byteWidth)) >= uint32(maskWidth(b, byteWidth))
		return nil
	}
}

func doubleBIT(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		res := maskWidth(ctx.fetchedVal[0]&ctx.fetchedVal[1], byteWidth)
		p := &ctx.eng.psw
		p.SetFromWord(res, byteWidth)
		p.V = false
		return nil
	}
}

func doubleBIC(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		res := maskWidth(ctx.fetchedVal[1]&^ctx.fetchedVal[0], byteWidth)
		ctx.result = res
		p := &ctx.eng.psw
		p.SetFromWord(res, byteWidth)
		p.V = false
		return nil
	}
}

func doubleBIS(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		res := maskWidth(ctx.fetchedVal[1]|ctx.fetchedVal[0], byteWidth)
		ctx.result = res
		p := &ctx.eng.psw
		p.SetFromWord(res, byteWidth)
		p.V = false
		return nil
	}
}

func doubleADD() func(*execContext) error {
	return func(ctx *execContext) error {
		a := ctx.fetchedVal[1]
		b := ctx.fetchedVal[0]
		res := a + b
		ctx.result = res
		p := &ctx.eng.psw
		p.SetFromWord(res, false)
		p.V = signBit(a, false) == signBit(b, false) && signBit(a, false) != signBit(res, false)
		p.C = uint32(a)+uint32(b) > 0xFFFF
		return nil
	}
}

func doubleSUB() func(*execContext) error {
	return func(ctx *execContext) error {
		a := ctx.fetchedVal[1]
		b := ctx.fetchedVal[0]
		res := a - b
		ctx.result = res
		p := &ctx.eng.psw
		p.SetFromWord(res, false)
		p.V = signBit(a, false) != signBit(b, false) && signBit(a, false) != signBit(res, false)
		p.C = uint32(a) >= uint32(b)
		return nil
	}
}
