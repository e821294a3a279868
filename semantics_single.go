// semantics_single.go - ALU effects for single-operand opcodes
//
// Each function returns the ALU-stage Run closure for one mnemonic,
// reading ctx.fetchedVal[0] (the resolved operand) and leaving the
// result in ctx.result for the writeback step to store. PSW updates
// happen here, per spec.md §4.2.

package pdp16e

func maxSigned(byteWidth bool) int32 {
	if byteWidth {
		return 1<<7 - 1
	}
	return 1<<15 - 1
}

func minSigned(byteWidth bool) int32 {
	if byteWidth {
		return -(1 << 7)
	}
	return -(1 << 15)
}

func maskWidth(v Word, byteWidth bool) Word {
	if byteWidth {
		return v & 0xFF
	}
	return v
}

func singleCLR(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		ctx.result = 0
		p := &ctx.eng.psw
		p.N, p.Z, p.V, p.C = false, true, false, false
		return nil
	}
}

func singleCOM(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		v := ctx.fetchedVal[0]
		res := maskWidth(^v, byteWidth)
		ctx.result = res
		p := &ctx.eng.psw
		p.SetFromWord(res, byteWidth)
		p.V = false
		p.C = true
		return nil
	}
}

func singleINC(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		v := ctx.fetchedVal[0]
		res := maskWidth(v+1, byteWidth)
		ctx.result = res
		p := &ctx.eng.psw
		p.SetFromWord(res, byteWidth)
		p.V = SignedWord(maskWidth(v, byteWidth)) == maxSigned(byteWidth)
		return nil
	}
}

func singleDEC(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		v := ctx.fetchedVal[0]
		res := maskWidth(v-1, byteWidth)
		ctx.result = res
		p := &ctx.eng.psw
		p.SetFromWord(res, byteWidth)
		p.V = SignedWord(maskWidth(v, byteWidth)) == minSigned(byteWidth)
		return nil
	}
}

func singleNEG(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		v := ctx.fetchedVal[0]
		res := maskWidth(-v, byteWidth)
		ctx.result = res
		p := &ctx.eng.psw
		p.SetFromWord(res, byteWidth)
		p.V = SignedWord(maskWidth(v, byteWidth)) == minSigned(byteWidth)
		p.C = v != 0
		return nil
	}
}

func singleTST(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		v := ctx.fetchedVal[0]
		p := &ctx.eng.psw
		p.SetFromWord(v, byteWidth)
		p.V = false
		p.C = false
		return nil
	}
}

func singleASR(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		v := ctx.fetchedVal[0]
		var out Word
		var carry bool
		if byteWidth {
			b := LowByte(v)
			carry = b&1 != 0
			out = Word(byte(int8(b) >> 1))
		} else {
			carry = v&1 != 0
			out = Word(int16(v) >> 1)
		}
		ctx.result = maskWidth(out, byteWidth)
		p := &ctx.eng.psw
		p.SetFromWord(ctx.result, byteWidth)
		p.C = carry
		p.V = p.C != p.N
		return nil
	}
}

func singleASL(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		v := ctx.fetchedVal[0]
		var carry bool
		var out Word
		if byteWidth {
			b := LowByte(v)
			carry = b&ByteSignBit != 0
			out = Word(b) << 1
		} else {
			carry = v&WordSignBit != 0
			out = v << 1
		}
		ctx.result = maskWidth(out, byteWidth)
		p := &ctx.eng.psw
		p.SetFromWord(ctx.result, byteWidth)
		p.C = carry
		p.V = p.C != p.N
		return nil
	}
}

func singleROR(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		v := ctx.fetchedVal[0]
		p := &ctx.eng.psw
		oldCarry := p.C
		var carry bool
		var out Word
		if byteWidth {
			b := LowByte(v)
			carry = b&1 != 0
			out = Word(b) >> 1
			if oldCarry {
				out |= ByteSignBit
			}
		} else {
			carry = v&1 != 0
			out = v >> 1
			if oldCarry {
				out |= WordSignBit
			}
		}
		ctx.result = maskWidth(out, byteWidth)
		p.SetFromWord(ctx.result, byteWidth)
		p.C = carry
		p.V = p.C != p.N
		return nil
	}
}

func singleROL(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		v := ctx.fetchedVal[0]
		p := &ctx.eng.psw
		oldCarry := p.C
		var carry bool
		var out Word
		if byteWidth {
			b := LowByte(v)
			carry = b&ByteSignBit != 0
			out = Word(b) << 1
			if oldCarry {
				out |= 1
			}
		} else {
			carry = v&WordSignBit != 0
			out = v << 1
			if oldCarry {
				out |= 1
			}
		}
		ctx.result = maskWidth(out, byteWidth)
		p.SetFromWord(ctx.result, byteWidth)
		p.C = carry
		p.V = p.C != p.N
		return nil
	}
}

func singleADC(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		v := ctx.fetchedVal[0]
		p := &ctx.eng.psw
		var add Word
		if p.C {
			add = 1
		}
		res := maskWidth(v+add, byteWidth)
		ctx.result = res
		oldSign := signBit(v, byteWidth)
		newSign := signBit(res, byteWidth)
		p.SetFromWord(res, byteWidth)
		p.V = add == 1 && oldSign == signBit(add, byteWidth) && oldSign != newSign
		p.C = add == 1 && maskWidth(v, byteWidth) == widthMax(byteWidth)
		return nil
	}
}

func singleSBC(byteWidth bool) func(*execContext) error {
	return func(ctx *execContext) error {
		v := ctx.fetchedVal[0]
		p := &ctx.eng.psw
		var sub Word
		if p.C {
			sub = 1
		}
		res := maskWidth(v-sub, byteWidth)
		ctx.result = res
		p.SetFromWord(res, byteWidth)
		p.V = sub == 1 && maskWidth(v, byteWidth) == Word(1<<(widthBits(byteWidth)-1))
		p.C = sub == 1 && v == 0
		return nil
	}
}

func singleSWAB(ctx *execContext) error {
	v := ctx.fetchedVal[0]
	res := Swab(v)
	ctx.result = res
	p := &ctx.eng.psw
	p.N = LowByte(res)&ByteSignBit != 0
	p.Z = LowByte(res) == 0
	p.V = false
	p.C = false
	return nil
}

func singleSXT(ctx *execContext) error {
	p := &ctx.eng.psw
	if p.N {
		ctx.result = 0xFFFF
	} else {
		ctx.result = 0
	}
	p.Z = !p.N
	p.V = false
	return nil
}

func signBit(v Word, byteWidth bool) bool {
	if byteWidth {
		return LowByte(v)&ByteSignBit != 0
	}
	return v&WordSignBit != 0
}

func widthMax(byteWidth bool) Word {
	if byteWidth {
		return 0xFF
	}
	return 0xFFFF
}

func widthBits(byteWidth bool) int {
	if byteWidth {
		return 8
	}
	return 16
}
