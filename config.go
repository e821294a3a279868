// config.go - engine configuration and functional options
//
// All spec-mandated layout constants (memory map, cache geometry, bus
// ratio) become configurable fields with the spec's own values as
// defaults, so tests can exercise degenerate geometries without
// touching engine internals.

package pdp16e

// Memory map constants (bytes), spec.md §6.
const (
	DefaultRAMStart  Word = 0x0000
	DefaultRAMSize   Word = 0x4000
	DefaultVRAMStart Word = 0x4000
	DefaultVRAMSize  Word = 0x4000
	DefaultROMStart  Word = 0x8000
	DefaultROMSize   Word = 0x4000

	DefaultVideoModeReg   Word = 0xFFFC
	DefaultVideoOffsetReg Word = 0xFFFE
	DefaultKeyboardReg    Word = 0xFFFA

	DefaultStackLowerBound Word = 0x0200
	DefaultStackUpperBound Word = 0x3FFE

	InterruptVectorPC  Word = 0x0000
	InterruptVectorPSW Word = 0x0002
)

// Cache geometry constants, spec.md §4.5.
const (
	DefaultCacheSetBits     = 6
	DefaultCacheSets        = 1 << DefaultCacheSetBits
	DefaultCacheWays        = 2
	DefaultWordsPerLine     = 4
	DefaultBusCycleRatio    = 5
	DefaultDeviceBusCycles  = 2
	DefaultEvictionBaseCost = 2
)

// EngineConfig gathers every spec-mandated constant as a configurable
// field. NewEngineConfig returns the spec's own defaults; use the
// With* options to override individual fields before constructing an
// Engine.
type EngineConfig struct {
	RAMStart, RAMSize   Word
	VRAMStart, VRAMSize Word
	ROMStart, ROMSize   Word

	VideoModeReg   Word
	VideoOffsetReg Word
	KeyboardReg    Word

	StackLowerBound Word
	StackUpperBound Word

	CacheSets            int
	CacheWays            int
	WordsPerLine         int
	CPUCyclesPerBusCycle int
	DeviceBusCycles      int
}

// Option mutates an EngineConfig under construction.
type Option func(*EngineConfig)

// NewEngineConfig returns the spec's default memory map and cache
// geometry, then applies opts in order.
func NewEngineConfig(opts ...Option) *EngineConfig {
	c := &EngineConfig{
		RAMStart: DefaultRAMStart, RAMSize: DefaultRAMSize,
		VRAMStart: DefaultVRAMStart, VRAMSize: DefaultVRAMSize,
		ROMStart: DefaultROMStart, ROMSize: DefaultROMSize,
		VideoModeReg:   DefaultVideoModeReg,
		VideoOffsetReg: DefaultVideoOffsetReg,
		KeyboardReg:    DefaultKeyboardReg,

		StackLowerBound: DefaultStackLowerBound,
		StackUpperBound: DefaultStackUpperBound,

		CacheSets:            DefaultCacheSets,
		CacheWays:            DefaultCacheWays,
		WordsPerLine:         DefaultWordsPerLine,
		CPUCyclesPerBusCycle: DefaultBusCycleRatio,
		DeviceBusCycles:      DefaultDeviceBusCycles,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithStackBounds overrides the SP trap range.
func WithStackBounds(lower, upper Word) Option {
	return func(c *EngineConfig) {
		c.StackLowerBound = lower
		c.StackUpperBound = upper
	}
}

// WithCacheGeometry overrides the set-associative cache shape.
func WithCacheGeometry(sets, ways, wordsPerLine int) Option {
	return func(c *EngineConfig) {
		c.CacheSets = sets
		c.CacheWays = ways
		c.WordsPerLine = wordsPerLine
	}
}

// WithBusCycleRatio overrides the CPU:bus cycle ratio.
func WithBusCycleRatio(ratio int) Option {
	return func(c *EngineConfig) { c.CPUCyclesPerBusCycle = ratio }
}

// validate checks for the overlaps spec.md §7 calls WrongMemoryLayout.
func (c *EngineConfig) validate() error {
	ranges := []struct {
		name        string
		start, size Word
	}{
		{"RAM", c.RAMStart, c.RAMSize},
		{"VRAM", c.VRAMStart, c.VRAMSize},
		{"ROM", c.ROMStart, c.ROMSize},
	}
	for i, a := range ranges {
		aEnd := uint32(a.start) + uint32(a.size)
		if aEnd > 0x10000 {
			return newFault(KindWrongMemoryLayout, "config", nil)
		}
		for j, b := range ranges {
			if i == j {
				continue
			}
			bEnd := uint32(b.start) + uint32(b.size)
			if uint32(a.start) < bEnd && uint32(b.start) < aEnd {
				return newFault(KindWrongMemoryLayout, "config", nil)
			}
		}
	}
	if c.CacheWays <= 0 || c.CacheSets <= 0 || c.WordsPerLine <= 0 {
		return newFault(KindWrongMemoryLayout, "config", nil)
	}
	return nil
}
