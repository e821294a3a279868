// disassembler.go - textual rendition of decoded instructions
//
// disasmText turns a Command plus its trailing operand words into the
// mnemonic-and-operands form a listing window shows. DisasmRange walks
// a ROM window the way the UI's listing pane does: each instruction's
// trailing words are marked PART_OF_PREVIOUS rather than re-decoded,
// and a word that fails to decode becomes a NOT_AN_INSTRUCTION line
// instead of aborting the scan.

package pdp16e

import "fmt"

// DisasmLine is one row of a listing window.
type DisasmLine struct {
	Addr           Word
	Text           string
	PartOfPrevious bool
	NotInstruction bool
}

// operandText renders op's addressing mode using word (the trailing
// instruction word it consumed, if RequireNextWord) for index/absolute
// display.
func operandText(op Operand, word Word) string {
	reg := fmt.Sprintf("R%d", op.Reg)
	if op.Reg == RegSP {
		reg = "SP"
	}
	if op.Reg == RegPC {
		reg = "PC"
	}
	switch op.Mode {
	case ModeRegister:
		return reg
	case ModeRegisterDeferred:
		return fmt.Sprintf("(%s)", reg)
	case ModeAutoIncrement:
		if op.Reg == RegPC {
			return fmt.Sprintf("#0%06o", word)
		}
		return fmt.Sprintf("(%s)+", reg)
	case ModeAutoIncrementDefer:
		if op.Reg == RegPC {
			return fmt.Sprintf("@#0%06o", word)
		}
		return fmt.Sprintf("@(%s)+", reg)
	case ModeAutoDecrement:
		return fmt.Sprintf("-(%s)", reg)
	case ModeAutoDecrementDefer:
		return fmt.Sprintf("@-(%s)", reg)
	case ModeIndex:
		return fmt.Sprintf("0%06o(%s)", word, reg)
	case ModeIndexDeferred:
		return fmt.Sprintf("@0%06o(%s)", word, reg)
	default:
		return reg
	}
}

// disasmText renders cmd as it would appear fetched from addr, with
// trailing operands supplied in program order (src's extra word, if
// any, before dest's).
func disasmText(cmd *Command, addr Word, operandWords []Word) string {
	mnemonic := disasmMnemonic(cmd)
	next := 0
	take := func() Word {
		if next >= len(operandWords) {
			return 0
		}
		w := operandWords[next]
		next++
		return w
	}

	switch cmd.Kind {
	case KindSingleOperand:
		var w Word
		if cmd.Dest.RequireNextWord {
			w = take()
		}
		return fmt.Sprintf("%s %s", mnemonic, operandText(cmd.Dest, w))

	case KindDoubleOperand:
		var srcWord, destWord Word
		if cmd.Src.RequireNextWord {
			srcWord = take()
		}
		if cmd.Dest.RequireNextWord {
			destWord = take()
		}
		return fmt.Sprintf("%s %s,%s", mnemonic, operandText(cmd.Src, srcWord), operandText(cmd.Dest, destWord))

	case KindRegisterSource:
		var w Word
		if cmd.Dest.RequireNextWord {
			w = take()
		}
		return fmt.Sprintf("%s R%d,%s", mnemonic, cmd.RegSrc, operandText(cmd.Dest, w))

	case KindBranch:
		target := addr + 2 + Word(cmd.BranchOffset*2)
		return fmt.Sprintf("%s 0%06o", mnemonic, target)

	case KindJump:
		switch cmd.Mnemonic {
		case "RTS":
			return fmt.Sprintf("RTS R%d", cmd.RegSrc)
		case "MARK":
			return fmt.Sprintf("MARK #%d", cmd.Number)
		case "SOB":
			return fmt.Sprintf("SOB R%d,0%06o", cmd.SobReg, addr+2-Word(cmd.BranchOffset*2))
		case "JSR":
			var w Word
			if cmd.Dest.RequireNextWord {
				w = take()
			}
			return fmt.Sprintf("JSR R%d,%s", cmd.RegSrc, operandText(cmd.Dest, w))
		default: // JMP
			var w Word
			if cmd.Dest.RequireNextWord {
				w = take()
			}
			return fmt.Sprintf("JMP %s", operandText(cmd.Dest, w))
		}
	}
	return mnemonic
}

// OctalWord formats w as a 6-digit octal literal, the raw view the
// listing window falls back to when decode fails or the user asks for
// an undecoded dump.
func OctalWord(w Word) string {
	return fmt.Sprintf("0%06o", w)
}

// DisasmRangeOctal walks exactly count consecutive words beginning at
// start, one line per word, with no decode attempt at all: the listing
// window's raw octal-dump view, independent of instruction boundaries,
// for words a user wants to inspect without the decoder's opinion about
// where instructions start (e.g. data embedded in a ROM image, or a
// region that doesn't decode cleanly).
func (e *Engine) DisasmRangeOctal(start Word, count int) []DisasmLine {
	lines := make([]DisasmLine, 0, count)
	addr := start
	for i := 0; i < count; i++ {
		lines = append(lines, DisasmLine{Addr: addr, Text: OctalWord(e.mem.RawWord(addr)), NotInstruction: true})
		addr += 2
	}
	return lines
}

// DisasmRange produces count listing lines beginning at start, the way
// the listing window populates itself: a word that decodes
// consumes 1+extraWords lines (the trailing ones flagged
// PartOfPrevious), a word that fails to decode consumes exactly one
// NotInstruction line.
func (e *Engine) DisasmRange(start Word, count int) []DisasmLine {
	lines := make([]DisasmLine, 0, count)
	addr := start
	for len(lines) < count {
		opcode := e.mem.RawWord(addr)
		cmd, err := Decode(opcode)
		if err != nil {
			lines = append(lines, DisasmLine{Addr: addr, Text: OctalWord(opcode), NotInstruction: true})
			addr += 2
			continue
		}
		extra := cmd.extraWords()
		operandWords := make([]Word, extra)
		for i := 0; i < extra; i++ {
			operandWords[i] = e.mem.RawWord(addr + Word(2*(i+1)))
		}
		lines = append(lines, DisasmLine{Addr: addr, Text: disasmText(cmd, addr, operandWords)})
		addr += 2
		for i := 0; i < extra && len(lines) < count; i++ {
			lines = append(lines, DisasmLine{Addr: addr, Text: OctalWord(operandWords[i]), PartOfPrevious: true})
			addr += 2
		}
	}
	return lines
}
