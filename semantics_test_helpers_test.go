package pdp16e

import "testing"

// newSemanticsTestEngine builds a minimal, fully-wired Engine for testing
// ALU/branch/jump semantics directly, bypassing the pipeline and decoder.
func newSemanticsTestEngine(t *testing.T) *Engine {
	eng, err := NewEngine(NewEngineConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng
}

func newSemanticsCtx(eng *Engine) *execContext {
	return &execContext{eng: eng}
}
