// decoder.go - opcode pattern table and instruction decode
//
// Decode matches a 16-bit instruction word against a fixed ordered
// table of (mask, match) pairs, spec.md §4.4 and §9 ("a compiled table
// of (mask, match, constructor) tuples ... an ordered linear scan").
// The first match wins; ties are impossible since every mask/match
// combination below identifies a disjoint bit pattern, inherited
// directly from the real PDP-11 encoding this machine's ISA is drawn
// from.

package pdp16e

func decodeMode(field Word) int { return int((field >> 3) & 7) }
func decodeReg(field Word) int  { return int(field & 7) }

type singleOpDef struct {
	mnemonic string
	match    Word
	hasByte  bool
	stores   bool
	sem      func(byteWidth bool) func(*execContext) error
}

var singleOpTable = []singleOpDef{
	{"CLR", 0x0A00, true, true, singleCLR},
	{"COM", 0x0A40, true, true, singleCOM},
	{"INC", 0x0A80, true, true, singleINC},
	{"DEC", 0x0AC0, true, true, singleDEC},
	{"NEG", 0x0B00, true, true, singleNEG},
	{"ADC", 0x0B40, true, true, singleADC},
	{"SBC", 0x0B80, true, true, singleSBC},
	{"TST", 0x0BC0, true, false, singleTST},
	{"ROR", 0x0C00, true, true, singleROR},
	{"ROL", 0x0C40, true, true, singleROL},
	{"ASR", 0x0C80, true, true, singleASR},
	{"ASL", 0x0CC0, true, true, singleASL},
}

type doubleOpDef struct {
	mnemonic   string
	match      Word
	hasByte    bool
	stores     bool
	fetchDest  bool
	sem        func(byteWidth bool) func(*execContext) error
}

var doubleOpTable = []doubleOpDef{
	{"MOV", 0x1000, true, true, false, doubleMOV},
	{"CMP", 0x2000, true, false, true, doubleCMP},
	{"BIT", 0x3000, true, false, true, doubleBIT},
	{"BIC", 0x4000, true, true, true, doubleBIC},
	{"BIS", 0x5000, true, true, true, doubleBIS},
}

var branchTable = []struct {
	mnemonic string
	match    Word
}{
	{"BR", 0x0100}, {"BNE", 0x0200}, {"BEQ", 0x0300},
	{"BGE", 0x0400}, {"BLT", 0x0500}, {"BGT", 0x0600}, {"BLE", 0x0700},
	{"BPL", 0x8000}, {"BMI", 0x8100}, {"BHI", 0x8200}, {"BLOS", 0x8300},
	{"BVC", 0x8400}, {"BVS", 0x8500}, {"BCC", 0x8600}, {"BCS", 0x8700},
}

const (
	jmpMatch  Word = 0x0040
	rtsMatch  Word = 0x0080
	markMatch Word = 0x0D00
	jsrMatch  Word = 0x0800
	mulMatch  Word = 0x7000
	xorMatch  Word = 0x7800
	sobMatch  Word = 0x7E00
	addMatch  Word = 0x6000
	subMatch  Word = 0xE000
)

// Decode matches opcode and builds the corresponding Command, resolving
// its operands' addressing-mode micro-ops. It takes no fetch address:
// PC arithmetic happens at execution time via execContext.pcAfterFetch.
func Decode(opcode Word) (*Command, error) {
	if cmd, ok, err := decodeDoubleOperand(opcode); ok {
		return cmd, err
	}
	if cmd, ok, err := decodeSingleOperand(opcode); ok {
		return cmd, err
	}
	if cmd, err := decodeSwabSxt(opcode); cmd != nil || err != nil {
		return cmd, err
	}
	if cmd, ok, err := decodeBranch(opcode); ok {
		return cmd, err
	}
	if opcode&0xFFC0 == jmpMatch {
		return decodeJMP(opcode)
	}
	if opcode&0xFFF8 == rtsMatch {
		return decodeRTS(opcode)
	}
	if opcode&0xFFC0 == markMatch {
		return decodeMARK(opcode)
	}
	if opcode&0xFE00 == jsrMatch {
		return decodeJSR(opcode)
	}
	if opcode&0xFE00 == mulMatch {
		return decodeMUL(opcode)
	}
	if opcode&0xFE00 == xorMatch {
		return decodeXOR(opcode)
	}
	if opcode&0xFE00 == sobMatch {
		return decodeSOB(opcode)
	}
	if opcode&0xF000 == addMatch {
		return decodeAddSub("ADD", doubleADD(), opcode)
	}
	if opcode&0xF000 == subMatch {
		return decodeAddSub("SUB", doubleSUB(), opcode)
	}
	return nil, newFault(KindUnknownOpcode, "decode", nil)
}

func decodeSingleOperand(opcode Word) (*Command, bool, error) {
	for _, def := range singleOpTable {
		mask := Word(0xFFC0)
		base := def.match
		candidates := []Word{base}
		if def.hasByte {
			candidates = append(candidates, base|0x8000)
		}
		for _, m := range candidates {
			if opcode&mask != m {
				continue
			}
			onByte := m&0x8000 != 0
			field := opcode & 0x3F
			dest, err := NewOperand(decodeReg(field), decodeMode(field))
			if err != nil {
				return nil, true, err
			}
			return buildSingleOperandCommand(def, onByte, dest), true, nil
		}
	}
	return nil, false, nil
}

func buildSingleOperandCommand(def singleOpDef, onByte bool, dest Operand) *Command {
	ifOps, ofOps := buildOperandOps(1, dest, onByte, true)
	cmd := &Command{
		Mnemonic: def.mnemonic, Kind: KindSingleOperand, OnByte: onByte,
		Dest: dest, Operands: 1,
		IFOps: ifOps, OFOps: ofOps,
	}
	cycles := 1
	if onByte && (def.mnemonic == "ASR" || def.mnemonic == "ASL" || def.mnemonic == "ROR" || def.mnemonic == "ROL") {
		cycles = 2
	}
	cmd.ALUOps = []MicroOp{{Kind: OpAlu, Run: def.sem(onByte), Cycles: cycles}}
	if def.stores {
		cmd.WBOps = buildStoreOps(1, dest, onByte, func(ctx *execContext) Word { return ctx.result })
	}
	cmd.Length = 1 + cmd.extraWords()
	return cmd
}

func decodeSwabSxt(opcode Word) (*Command, error) {
	if opcode&0xFFC0 == 0x00C0 {
		field := opcode & 0x3F
		dest, err := NewOperand(decodeReg(field), decodeMode(field))
		if err != nil {
			return nil, err
		}
		ifOps, ofOps := buildOperandOps(1, dest, false, true)
		cmd := &Command{Mnemonic: "SWAB", Kind: KindSingleOperand, Dest: dest, Operands: 1, IFOps: ifOps, OFOps: ofOps}
		cmd.ALUOps = []MicroOp{{Kind: OpAlu, Run: singleSWAB, Cycles: 1}}
		cmd.WBOps = buildStoreOps(1, dest, false, func(ctx *execContext) Word { return ctx.result })
		cmd.Length = 1 + cmd.extraWords()
		return cmd, nil
	}
	if opcode&0xFFC0 == 0x0DC0 {
		field := opcode & 0x3F
		dest, err := NewOperand(decodeReg(field), decodeMode(field))
		if err != nil {
			return nil, err
		}
		ifOps, ofOps := buildOperandOps(1, dest, false, false)
		cmd := &Command{Mnemonic: "SXT", Kind: KindSingleOperand, Dest: dest, Operands: 1, IFOps: ifOps, OFOps: ofOps}
		cmd.ALUOps = []MicroOp{{Kind: OpAlu, Run: singleSXT, Cycles: 1}}
		cmd.WBOps = buildStoreOps(1, dest, false, func(ctx *execContext) Word { return ctx.result })
		cmd.Length = 1 + cmd.extraWords()
		return cmd, nil
	}
	return nil, nil
}

func decodeDoubleOperand(opcode Word) (*Command, bool, error) {
	for _, def := range doubleOpTable {
		mask := Word(0xF000)
		candidates := []Word{def.match}
		if def.hasByte {
			candidates = append(candidates, def.match|0x8000)
		}
		for _, m := range candidates {
			if opcode&mask != m {
				continue
			}
			onByte := m&0x8000 != 0
			srcField := (opcode >> 6) & 0x3F
			destField := opcode & 0x3F
			src, err := NewOperand(decodeReg(srcField), decodeMode(srcField))
			if err != nil {
				return nil, true, err
			}
			dest, err := NewOperand(decodeReg(destField), decodeMode(destField))
			if err != nil {
				return nil, true, err
			}
			return buildDoubleOperandCommand(def, onByte, src, dest), true, nil
		}
	}
	return nil, false, nil
}

func buildDoubleOperandCommand(def doubleOpDef, onByte bool, src, dest Operand) *Command {
	ifSrc, ofSrc := buildOperandOps(0, src, onByte, true)
	ifDst, ofDst := buildOperandOps(1, dest, onByte, def.fetchDest)
	cmd := &Command{
		Mnemonic: def.mnemonic, Kind: KindDoubleOperand, OnByte: onByte,
		Src: src, Dest: dest, Operands: 2,
		IFOps: append(ifSrc, ifDst...),
		OFOps: append(ofSrc, ofDst...),
	}
	cmd.ALUOps = []MicroOp{{Kind: OpAlu, Run: def.sem(onByte), Cycles: 1}}
	if def.stores {
		if def.mnemonic == "MOV" && onByte && dest.Mode == ModeRegister {
			cmd.WBOps = []MicroOp{{
				Kind: OpStoreRegister, Reg: dest.Reg, Width: AccessWord,
				ValueFn: func(ctx *execContext) Word { return SignExtendByte(LowByte(ctx.result)) },
			}}
		} else {
			cmd.WBOps = buildStoreOps(1, dest, onByte, func(ctx *execContext) Word { return ctx.result })
		}
	}
	cmd.Length = 1 + cmd.extraWords()
	return cmd
}

func decodeAddSub(mnemonic string, sem func(*execContext) error, opcode Word) (*Command, error) {
	srcField := (opcode >> 6) & 0x3F
	destField := opcode & 0x3F
	src, err := NewOperand(decodeReg(srcField), decodeMode(srcField))
	if err != nil {
		return nil, err
	}
	dest, err := NewOperand(decodeReg(destField), decodeMode(destField))
	if err != nil {
		return nil, err
	}
	ifSrc, ofSrc := buildOperandOps(0, src, false, true)
	ifDst, ofDst := buildOperandOps(1, dest, false, true)
	cmd := &Command{
		Mnemonic: mnemonic, Kind: KindDoubleOperand,
		Src: src, Dest: dest, Operands: 2,
		IFOps: append(ifSrc, ifDst...),
		OFOps: append(ofSrc, ofDst...),
	}
	cmd.ALUOps = []MicroOp{{Kind: OpAlu, Run: sem, Cycles: 1}}
	cmd.WBOps = buildStoreOps(1, dest, false, func(ctx *execContext) Word { return ctx.result })
	cmd.Length = 1 + cmd.extraWords()
	return cmd, nil
}

func decodeBranch(opcode Word) (*Command, bool, error) {
	for _, def := range branchTable {
		if opcode&0xFF00 != def.match {
			continue
		}
		offset := int32(int8(opcode & 0xFF))
		cond := branchConditions[def.mnemonic]
		cmd := &Command{
			Mnemonic: def.mnemonic, Kind: KindBranch, Operands: 0,
			BranchOffset: offset,
		}
		cmd.WBOps = []MicroOp{{
			Kind:   OpBranchIf,
			CondFn: func(ctx *execContext) bool { return cond(ctx.eng.psw) },
			Offset: offset * 2,
		}}
		cmd.Length = 1
		return cmd, true, nil
	}
	return nil, false, nil
}

func decodeJMP(opcode Word) (*Command, error) {
	field := opcode & 0x3F
	dest, err := NewOperand(decodeReg(field), decodeMode(field))
	if err != nil {
		return nil, err
	}
	if dest.Mode == ModeRegister {
		return nil, newFault(KindJumpToRegister, "decode", nil)
	}
	ifOps, ofOps := buildOperandOps(1, dest, false, false)
	cmd := &Command{Mnemonic: "JMP", Kind: KindJump, Dest: dest, Operands: 1, IFOps: ifOps, OFOps: ofOps}
	cmd.WBOps = []MicroOp{jumpJMP(1)}
	cmd.Length = 1 + cmd.extraWords()
	return cmd, nil
}

func decodeRTS(opcode Word) (*Command, error) {
	reg := decodeReg(opcode & 7)
	ofOps := []MicroOp{{Kind: OpFetchRegister, Reg: reg,
		Result: func(ctx *execContext, v Word) { ctx.fetchedVal[0] = v }}}
	cmd := &Command{Mnemonic: "RTS", Kind: KindJump, RegSrc: reg, Operands: 1, OFOps: ofOps}
	cmd.WBOps = []MicroOp{jumpRTS(reg)}
	cmd.Length = 1
	return cmd, nil
}

func decodeMARK(opcode Word) (*Command, error) {
	n := int(opcode & 0x3F)
	cmd := &Command{Mnemonic: "MARK", Kind: KindJump, Number: n}
	cmd.WBOps = []MicroOp{jumpMARK(n)}
	cmd.Length = 1
	return cmd, nil
}

func decodeJSR(opcode Word) (*Command, error) {
	reg := int((opcode >> 6) & 7)
	field := opcode & 0x3F
	dest, err := NewOperand(decodeReg(field), decodeMode(field))
	if err != nil {
		return nil, err
	}
	if dest.Mode == ModeRegister {
		return nil, newFault(KindJumpToRegister, "decode", nil)
	}
	ifOps, ofOps := buildOperandOps(1, dest, false, false)
	ofOps = append(ofOps, MicroOp{Kind: OpFetchRegister, Reg: reg,
		Result: func(ctx *execContext, v Word) { ctx.fetchedVal[0] = v }})
	cmd := &Command{Mnemonic: "JSR", Kind: KindJump, RegSrc: reg, Dest: dest, Operands: 1, IFOps: ifOps, OFOps: ofOps}
	cmd.WBOps = []MicroOp{jumpJSR(reg, 1)}
	cmd.Length = 1 + cmd.extraWords()
	return cmd, nil
}

func decodeMUL(opcode Word) (*Command, error) {
	reg := int((opcode >> 6) & 7)
	field := opcode & 0x3F
	dest, err := NewOperand(decodeReg(field), decodeMode(field))
	if err != nil {
		return nil, err
	}
	ifOps, ofOps := buildOperandOps(1, dest, false, true)
	cmd := &Command{Mnemonic: "MUL", Kind: KindRegisterSource, RegSrc: reg, Dest: dest, Operands: 1, IFOps: ifOps, OFOps: ofOps}
	cmd.ALUOps = []MicroOp{{Kind: OpAlu, Run: regSrcMUL(reg), Cycles: 1}}
	if reg%2 == 0 {
		cmd.WBOps = []MicroOp{
			{Kind: OpStoreRegister, Reg: reg, Width: AccessWord, ValueFn: func(ctx *execContext) Word { return ctx.result }},
			{Kind: OpStoreRegister, Reg: reg + 1, Width: AccessWord, ValueFn: func(ctx *execContext) Word { return ctx.resultLow }},
		}
	} else {
		cmd.WBOps = []MicroOp{
			{Kind: OpStoreRegister, Reg: reg, Width: AccessWord, ValueFn: func(ctx *execContext) Word { return ctx.resultLow }},
		}
	}
	cmd.Length = 1 + cmd.extraWords()
	return cmd, nil
}

func decodeXOR(opcode Word) (*Command, error) {
	reg := int((opcode >> 6) & 7)
	field := opcode & 0x3F
	dest, err := NewOperand(decodeReg(field), decodeMode(field))
	if err != nil {
		return nil, err
	}
	ifOps, ofOps := buildOperandOps(1, dest, false, true)
	cmd := &Command{Mnemonic: "XOR", Kind: KindRegisterSource, RegSrc: reg, Dest: dest, Operands: 1, IFOps: ifOps, OFOps: ofOps}
	cmd.ALUOps = []MicroOp{{Kind: OpAlu, Run: regSrcXOR(reg), Cycles: 1}}
	cmd.WBOps = buildStoreOps(1, dest, false, func(ctx *execContext) Word { return ctx.result })
	cmd.Length = 1 + cmd.extraWords()
	return cmd, nil
}

func decodeSOB(opcode Word) (*Command, error) {
	reg := int((opcode >> 6) & 7)
	off := int32(opcode & 0x3F)
	cmd := &Command{Mnemonic: "SOB", Kind: KindJump, RegSrc: reg, SobReg: reg, BranchOffset: off, Operands: 0}
	cmd.WBOps = []MicroOp{jumpSOB(reg, off)}
	cmd.Length = 1
	return cmd, nil
}

// disasmMnemonic renders the mnemonic with its byte suffix, used by the
// disassembler.
func disasmMnemonic(cmd *Command) string {
	if cmd.OnByte {
		return cmd.Mnemonic + "B"
	}
	return cmd.Mnemonic
}
