package pdp16e

import "testing"

// tick runs cache.Tick followed by the access fn until it reports ready
// (ok==true) or bound cycles pass, returning the final value and whether
// it completed in time. Mirrors the pipeline's own retry-on-busy loop.
func tickUntilReady(c *Cache, bound int, access func() (bool, Word)) (Word, bool) {
	if ok, v := access(); ok {
		return v, true
	}
	for i := 0; i < bound; i++ {
		c.Tick()
		if ok, v := access(); ok {
			return v, true
		}
	}
	return 0, false
}

func newTestCache() (*Cache, *Memory) {
	cfg := NewEngineConfig()
	mem := NewMemory(cfg, nil, nil)
	return NewCache(cfg, mem), mem
}

func TestCacheColdMissThenHit(t *testing.T) {
	c, mem := newTestCache()
	if err := mem.StoreWord(0x0040, 0x5678); err != nil {
		t.Fatal(err)
	}

	v, ok := tickUntilReady(c, 200, func() (bool, Word) { return c.Load(0x0040, AccessWord) })
	if !ok {
		t.Fatal("cold load never completed within the cycle bound")
	}
	if v != 0x5678 {
		t.Errorf("loaded 0x%04X, want 0x5678", v)
	}
	if c.Stats().Misses != 1 {
		t.Errorf("Misses = %d, want 1", c.Stats().Misses)
	}

	v2, ok2 := tickUntilReady(c, 200, func() (bool, Word) { return c.Load(0x0040, AccessWord) })
	if !ok2 || v2 != 0x5678 {
		t.Fatalf("second load = (0x%04X, %v), want (0x5678, true)", v2, ok2)
	}
	if c.Stats().Hits != 1 {
		t.Errorf("Hits = %d, want 1", c.Stats().Hits)
	}
}

func TestCacheStoreWriteBack(t *testing.T) {
	c, _ := newTestCache()
	_, ok := tickUntilReady(c, 200, func() (bool, Word) { return c.Store(0x0040, AccessWord, 0x1111), 0 })
	if !ok {
		t.Fatal("store never completed")
	}
	v, ok := tickUntilReady(c, 200, func() (bool, Word) { return c.Load(0x0040, AccessWord) })
	if !ok || v != 0x1111 {
		t.Fatalf("readback after store = (0x%04X, %v)", v, ok)
	}
}

func TestCacheBlockPinning(t *testing.T) {
	c, _ := newTestCache()
	if ok := c.Block(0x0040, true); !ok {
		t.Fatal("Block(addr, true) on an unpinned address should succeed")
	}
	if ok := c.Block(0x0040, true); ok {
		t.Error("double-pinning should report false")
	}
	if !c.blockedByOther(0x0080) {
		t.Error("a different address should be blockedByOther while anything is pinned")
	}
	if c.blockedByOther(0x0040) {
		t.Error("the pinned address itself should not be blockedByOther")
	}
	if ok := c.Block(0x0040, false); !ok {
		t.Fatal("unpinning a pinned address should succeed")
	}
	if c.blockedByOther(0x0080) {
		t.Error("nothing should be blockedByOther once the pin is released")
	}
}

func TestCacheAccessBlockedByOtherPin(t *testing.T) {
	c, mem := newTestCache()
	if err := mem.StoreWord(0x0080, 0x9999); err != nil {
		t.Fatal(err)
	}
	c.Block(0x0040, true)
	ok, _ := c.Load(0x0080, AccessWord)
	if ok {
		t.Error("an address should be held busy while a different address is pinned")
	}
}
