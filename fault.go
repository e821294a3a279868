// fault.go - typed fault/error kinds for the PDP-16e core engine
//
// Grounded on the VideoError pattern used for video-layer error context
// in the reference engine: a struct carrying an operation label, a
// detail string, and an optional wrapped error, implementing error and
// Unwrap so callers can use errors.Is/errors.As against the Kind values
// below.

package pdp16e

import "fmt"

// Kind identifies which row of the error table this Fault represents.
type Kind int

const (
	KindNone Kind = iota
	KindWrongBitCount
	KindUnknownOpcode
	KindOperandWrongPCMode
	KindJumpToRegister
	KindMemoryIndexOutOfBound
	KindOddAddressing
	KindRegisterOddValue
	KindStackOverflow
	KindCacheUnblock
	KindCacheDoubleBlock
	KindRegisterScoreboard
	KindWrongMemoryLayout
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindWrongBitCount:
		return "wrong bit count"
	case KindUnknownOpcode:
		return "unknown opcode"
	case KindOperandWrongPCMode:
		return "operand wrong PC mode"
	case KindJumpToRegister:
		return "jump to register"
	case KindMemoryIndexOutOfBound:
		return "memory index out of bound"
	case KindOddAddressing:
		return "odd addressing"
	case KindRegisterOddValue:
		return "register odd value"
	case KindStackOverflow:
		return "stack overflow"
	case KindCacheUnblock:
		return "cache unblock of non-blocked line"
	case KindCacheDoubleBlock:
		return "cache block of already-blocked line"
	case KindRegisterScoreboard:
		return "register scoreboard misuse"
	case KindWrongMemoryLayout:
		return "wrong memory layout"
	default:
		return "unknown fault kind"
	}
}

// Fault is the engine's error type. Decode returns Faults synchronously;
// runtime Faults are captured on the Engine and halt execution.
type Fault struct {
	Kind Kind
	Op   string // operation being attempted, e.g. "decode", "store word"
	Addr *Word  // address involved, if any
	Err  error  // wrapped underlying error, if any
}

func (f *Fault) Error() string {
	if f.Addr != nil {
		if f.Err != nil {
			return fmt.Sprintf("%s: %s at 0%06o: %v", f.Op, f.Kind, *f.Addr, f.Err)
		}
		return fmt.Sprintf("%s: %s at 0%06o", f.Op, f.Kind, *f.Addr)
	}
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Op, f.Kind, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Op, f.Kind)
}

func (f *Fault) Unwrap() error { return f.Err }

// newFault builds a Fault with no address.
func newFault(kind Kind, op string, err error) *Fault {
	return &Fault{Kind: kind, Op: op, Err: err}
}

// newFaultAt builds a Fault tagged with the offending address.
func newFaultAt(kind Kind, op string, addr Word, err error) *Fault {
	return &Fault{Kind: kind, Op: op, Addr: &addr, Err: err}
}
