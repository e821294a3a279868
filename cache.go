// cache.go - 2-way set-associative write-back cache with LRU and a bus timer
//
// Address layout (16 bits, high to low): 7 tag | 6 set | 3 offset. A
// line is 8 bytes (4 words). Misses start a BusRequest that counts down
// in CPU cycles (grouped into bus cycles at CPUCyclesPerBusCycle); while
// a refill is in flight every address is busy, including the one that
// owns it, and Tick resolves it. A device-bypass request is finished by
// its owning (address, direction) pair's retry. Completion marks the
// refilled line valid and clean but flags it "missed" so the caller's
// retry — which is what actually performs the read/write — is counted
// as a miss rather than a hit.

package pdp16e

const (
	cacheTagBits    = 7
	cacheSetBits    = 6
	cacheOffsetBits = 3

	cacheLRUEjecting = -1
)

// CacheLine is one line of one set.
type CacheLine struct {
	tag     int
	valid   bool
	modified bool
	missed  bool // flagged after refill so the next access counts as a miss
	lruRank int  // 0..K-1, or cacheLRUEjecting while a refill owns this line
	data    []byte
}

// accessDirection distinguishes a load from a store for bus-request
// ownership matching.
type accessDirection int

const (
	accessLoad accessDirection = iota
	accessStore
)

// busRequest is the single in-flight refill or device-bypass access.
type busRequest struct {
	addr         Word
	dir          accessDirection
	isDevice     bool
	cyclesLeft   int // remaining bus cycles
	cpuSubCycle  int // CPU cycles elapsed within the current bus cycle
	set, way     int // target line, meaningless for isDevice
	evictedDirty bool
}

// CacheStats is a hit/miss snapshot, spec.md §8 invariant 4.
type CacheStats struct {
	Hits, Misses uint64
}

// Cache is a 2-way set-associative write-back cache sitting in front of
// a Memory and the memory-mapped devices it owns.
type Cache struct {
	cfg  *EngineConfig
	mem  *Memory
	sets [][]CacheLine

	pending *busRequest

	pinned map[Word]bool

	stats CacheStats
}

// NewCache constructs a cache of cfg.CacheSets sets x cfg.CacheWays ways
// sitting in front of mem.
func NewCache(cfg *EngineConfig, mem *Memory) *Cache {
	sets := make([][]CacheLine, cfg.CacheSets)
	for i := range sets {
		lines := make([]CacheLine, cfg.CacheWays)
		for w := range lines {
			lines[w] = CacheLine{lruRank: w, data: make([]byte, cfg.WordsPerLine*2)}
		}
		sets[i] = lines
	}
	return &Cache{cfg: cfg, mem: mem, sets: sets, pinned: make(map[Word]bool)}
}

func (c *Cache) setIndex(addr Word) int {
	return int((addr >> cacheOffsetBits) & (1<<cacheSetBits - 1))
}

func (c *Cache) tag(addr Word) int {
	return int(addr >> (cacheOffsetBits + cacheSetBits))
}

func (c *Cache) lineOffset(addr Word) int {
	return int(addr) & (1<<cacheOffsetBits - 1)
}

func (c *Cache) lookup(set, tag int) int {
	for way, l := range c.sets[set] {
		if l.valid && l.tag == tag {
			return way
		}
	}
	return -1
}

// touch updates LRU ranks after a hit on way: it becomes MRU (rank 0),
// every other valid rank shifts up by one, renormalized to stay
// contiguous.
func (c *Cache) touch(set, way int) {
	old := c.sets[set][way].lruRank
	for w := range c.sets[set] {
		if w == way {
			continue
		}
		if c.sets[set][w].lruRank != cacheLRUEjecting && c.sets[set][w].lruRank < old {
			c.sets[set][w].lruRank++
		}
	}
	c.sets[set][way].lruRank = 0
}

// victimWay picks the highest-ranked non-ejecting line in set.
func (c *Cache) victimWay(set int) (int, bool) {
	best := -1
	bestRank := -1
	for w, l := range c.sets[set] {
		if l.lruRank == cacheLRUEjecting {
			continue
		}
		if l.lruRank > bestRank {
			bestRank = l.lruRank
			best = w
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

func (c *Cache) isDeviceMapped(addr Word) bool {
	return c.mem.deviceFor(addr) != nil
}

// Block pins addr's owning line so no other address may evict or fill
// it until Unblocked — used by the pipeline to reserve a destination
// line between operand fetch and writeback. Like RegisterFile.Block, it
// reports whether the pin state changed: double-blocking an address, or
// unblocking one that is not pinned, returns false and raises no Fault.
func (c *Cache) Block(addr Word, blocked bool) bool {
	if c.pinned[addr] == blocked {
		return false
	}
	if blocked {
		c.pinned[addr] = true
	} else {
		delete(c.pinned, addr)
	}
	return true
}

func (c *Cache) blockedByOther(addr Word) bool {
	if len(c.pinned) == 0 {
		return false
	}
	return !c.pinned[addr]
}

// ClearStatistics resets the hit/miss counters.
func (c *Cache) ClearStatistics() { c.stats = CacheStats{} }

// Stats returns the current hit/miss snapshot.
func (c *Cache) Stats() CacheStats { return c.stats }

// Tick advances any in-flight bus request by one CPU cycle. The
// pipeline calls this once per cycle, before stages retry their
// pending accesses. A cache-line refill is fully resolved here; a
// device-bypass request is only marked ready — its owner's retry
// performs the actual device read/write and then clears it.
func (c *Cache) Tick() {
	if c.pending == nil {
		return
	}
	req := c.pending
	if req.cyclesLeft <= 0 {
		return // device request sitting ready for its owner's retry
	}
	req.cpuSubCycle++
	if req.cpuSubCycle < c.cfg.CPUCyclesPerBusCycle {
		return
	}
	req.cpuSubCycle = 0
	req.cyclesLeft--
	if req.cyclesLeft > 0 {
		return
	}
	if req.isDevice {
		return // leave pending in place, cyclesLeft==0 signals "ready"
	}
	c.completeRequest(req)
	c.pending = nil
}

func (c *Cache) completeRequest(req *busRequest) {
	if req.isDevice {
		return
	}
	line := &c.sets[req.set][req.way]
	base := Word(req.set<<cacheOffsetBits) | (Word(line.tag) << (cacheOffsetBits + cacheSetBits))
	// tag was already set to the new target's tag when the request started
	for i := range line.data {
		line.data[i] = byte(c.mem.RawByte(base + Word(i)))
	}
	line.valid = true
	line.modified = false
	line.missed = true
	line.lruRank = 0
	for w := range c.sets[req.set] {
		if w != req.way {
			c.sets[req.set][w].lruRank++
		}
	}
}

// startMiss begins a refill for addr in set, evicting the LRU line.
// Returns false if the victim line is already EJECTING (a concurrent
// refill owns it) — the caller must retry next cycle.
func (c *Cache) startMiss(addr Word, dir accessDirection, set, tagVal int) bool {
	way, ok := c.victimWay(set)
	if !ok {
		return false
	}
	line := &c.sets[set][way]
	if line.lruRank == cacheLRUEjecting {
		return false
	}

	cost := cacheEvictionCost(c.cfg.WordsPerLine)
	if line.valid && line.modified {
		base := Word(set<<cacheOffsetBits) | (Word(line.tag) << (cacheOffsetBits + cacheSetBits))
		for i, b := range line.data {
			_ = c.mem.StoreByte(base+Word(i), Byte(b))
		}
		cost += cacheEvictionCost(c.cfg.WordsPerLine)
	}

	line.tag = tagVal
	line.valid = false
	line.lruRank = cacheLRUEjecting

	c.pending = &busRequest{addr: addr, dir: dir, cyclesLeft: cost, set: set, way: way}
	return true
}

func cacheEvictionCost(wordsPerLine int) int {
	return DefaultEvictionBaseCost + wordsPerLine
}

// Load reads width bits at addr. ok is false while the access is still
// pending (busy) and must be retried next cycle.
func (c *Cache) Load(addr Word, width AccessWidth) (ok bool, value Word) {
	return c.access(addr, width, accessLoad, 0)
}

// Store writes value (width bits) at addr.
func (c *Cache) Store(addr Word, width AccessWidth, value Word) (ok bool) {
	ok, _ = c.access(addr, width, accessStore, value)
	return ok
}

// AccessWidth distinguishes byte and word accesses.
type AccessWidth int

const (
	AccessByte AccessWidth = iota
	AccessWord
)

func (c *Cache) access(addr Word, width AccessWidth, dir accessDirection, storeVal Word) (bool, Word) {
	if c.blockedByOther(addr) {
		return false, 0
	}

	if c.isDeviceMapped(addr) {
		return c.accessDevice(addr, width, dir, storeVal)
	}

	if c.pending != nil {
		// A refill is in flight; every address is busy until it drains,
		// including the one that owns it (Tick resolves it, not access).
		return false, 0
	}

	set := c.setIndex(addr)
	tagVal := c.tag(addr)
	way := c.lookup(set, tagVal)
	if way == -1 {
		c.startMiss(addr, dir, set, tagVal)
		return false, 0
	}

	line := &c.sets[set][way]
	countedMiss := line.missed
	line.missed = false
	c.touch(set, way)

	off := c.lineOffset(addr)
	var val Word
	if dir == accessStore {
		if width == AccessByte {
			line.data[off] = byte(storeVal)
		} else {
			line.data[off] = byte(storeVal)
			line.data[off+1] = byte(storeVal >> 8)
		}
		line.modified = true
	} else {
		if width == AccessByte {
			val = Word(line.data[off])
		} else {
			val = MakeWord(Byte(line.data[off+1]), Byte(line.data[off]))
		}
	}

	if countedMiss {
		c.stats.Misses++
	} else {
		c.stats.Hits++
	}
	return true, val
}

func (c *Cache) accessDevice(addr Word, width AccessWidth, dir accessDirection, storeVal Word) (bool, Word) {
	if c.pending == nil {
		c.pending = &busRequest{addr: addr, dir: dir, isDevice: true, cyclesLeft: c.cfg.DeviceBusCycles}
		return false, 0
	}
	if c.pending.addr != addr || c.pending.dir != dir || !c.pending.isDevice {
		return false, 0
	}
	if c.pending.cyclesLeft > 0 {
		return false, 0
	}
	// Timer drained: this retry performs the actual device transfer.
	c.pending = nil
	if dir == accessStore {
		if width == AccessByte {
			_ = c.mem.StoreByte(addr, Byte(storeVal))
		} else {
			_ = c.mem.StoreWord(addr, storeVal)
		}
		c.stats.Misses++
		return true, 0
	}
	if width == AccessByte {
		v, _ := c.mem.LoadByte(addr)
		c.stats.Misses++
		return true, Word(v)
	}
	v, _ := c.mem.LoadWord(addr)
	c.stats.Misses++
	return true, v
}
