package pdp16e

import "testing"

func TestNewEngineConfigDefaults(t *testing.T) {
	c := NewEngineConfig()
	if err := c.validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if c.RAMStart != DefaultRAMStart || c.ROMStart != DefaultROMStart {
		t.Errorf("unexpected defaults: RAM=0x%04X ROM=0x%04X", c.RAMStart, c.ROMStart)
	}
}

func TestEngineConfigOptions(t *testing.T) {
	c := NewEngineConfig(
		WithStackBounds(0x1000, 0x2000),
		WithCacheGeometry(8, 4, 2),
		WithBusCycleRatio(3),
	)
	if c.StackLowerBound != 0x1000 || c.StackUpperBound != 0x2000 {
		t.Errorf("stack bounds not applied: %+v", c)
	}
	if c.CacheSets != 8 || c.CacheWays != 4 || c.WordsPerLine != 2 {
		t.Errorf("cache geometry not applied: %+v", c)
	}
	if c.CPUCyclesPerBusCycle != 3 {
		t.Errorf("bus ratio not applied: %+v", c)
	}
	if err := c.validate(); err != nil {
		t.Fatalf("overridden config should still validate, got %v", err)
	}
}

func TestEngineConfigValidateOverlap(t *testing.T) {
	c := NewEngineConfig()
	c.VRAMStart = c.RAMStart // now overlaps RAM
	if err := c.validate(); err == nil {
		t.Fatal("overlapping RAM/VRAM ranges should fail validation")
	}
}

func TestEngineConfigValidateOutOfBounds(t *testing.T) {
	c := NewEngineConfig()
	c.ROMStart = 0xFF00
	c.ROMSize = 0x200 // runs past 0x10000
	if err := c.validate(); err == nil {
		t.Fatal("a range extending past the address space should fail validation")
	}
}

func TestEngineConfigValidateBadCacheGeometry(t *testing.T) {
	c := NewEngineConfig()
	c.CacheWays = 0
	if err := c.validate(); err == nil {
		t.Fatal("zero cache ways should fail validation")
	}
}
