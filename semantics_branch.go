// semantics_branch.go - branch condition table, spec.md §4.4
//
// Each predicate reads the PSW captured at WB time (branches never
// touch PSW themselves) and reports whether the branch is taken. The
// pipeline's WB stage adds offset*2 to PC when taken, otherwise leaves
// PC at its sequential-advance value.

package pdp16e

func condBR(p PSW) bool    { return true }
func condBNE(p PSW) bool   { return !p.Z }
func condBEQ(p PSW) bool   { return p.Z }
func condBPL(p PSW) bool   { return !p.N }
func condBMI(p PSW) bool   { return p.N }
func condBVC(p PSW) bool   { return !p.V }
func condBVS(p PSW) bool   { return p.V }
func condBCC(p PSW) bool   { return !p.C }
func condBCS(p PSW) bool   { return p.C }
func condBGE(p PSW) bool   { return !(p.N != p.V) }
func condBLT(p PSW) bool   { return p.N != p.V }
func condBGT(p PSW) bool   { return !(p.Z || (p.N != p.V)) }
func condBLE(p PSW) bool   { return p.Z || (p.N != p.V) }
func condBHI(p PSW) bool   { return !p.C && !p.Z }
func condBLOS(p PSW) bool  { return p.C || p.Z }

// branchConditions maps every branch mnemonic to its predicate.
var branchConditions = map[string]func(PSW) bool{
	"BR": condBR, "BNE": condBNE, "BEQ": condBEQ,
	"BPL": condBPL, "BMI": condBMI,
	"BVC": condBVC, "BVS": condBVS,
	"BCC": condBCC, "BCS": condBCS,
	"BGE": condBGE, "BLT": condBLT,
	"BGT": condBGT, "BLE": condBLE,
	"BHI": condBHI, "BLOS": condBLOS,
}
