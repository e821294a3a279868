// memory.go - flat 64 KiB address space with device-mapped ranges
//
// The low range is RAM, the next VRAM (device-routed), the next ROM
// (writable only during setup), and the top of the address space holds
// the video mode/offset registers and the keyboard register. Loads and
// stores to device ranges bypass the RAM backing array entirely.

package pdp16e

// device is anything mapped into the address space that intercepts
// loads/stores instead of going through the flat RAM array.
type device interface {
	// covers reports whether addr falls in this device's range.
	covers(addr Word) bool
	loadByte(addr Word) Byte
	storeByte(addr Word, v Byte)
}

// Memory is the 64 KiB byte-addressable address space described in
// spec.md §3 and §6.
type Memory struct {
	cfg  *EngineConfig
	ram  []byte
	video   *VideoChip
	keyboard *Keyboard
}

// NewMemory constructs a zeroed 64 KiB memory, wiring the video and
// keyboard devices into their mapped ranges.
func NewMemory(cfg *EngineConfig, video *VideoChip, keyboard *Keyboard) *Memory {
	return &Memory{
		cfg:      cfg,
		ram:      make([]byte, 1<<16),
		video:    video,
		keyboard: keyboard,
	}
}

func (m *Memory) inRange(addr Word, start, size Word) bool {
	return addr >= start && uint32(addr) < uint32(start)+uint32(size)
}

// deviceFor returns the device owning addr, or nil for plain RAM/ROM.
func (m *Memory) deviceFor(addr Word) device {
	if m.video != nil {
		if addr == m.cfg.VideoModeReg || addr == m.cfg.VideoModeReg+1 ||
			addr == m.cfg.VideoOffsetReg || addr == m.cfg.VideoOffsetReg+1 ||
			m.inRange(addr, m.cfg.VRAMStart, m.cfg.VRAMSize) {
			return m.video
		}
	}
	if m.keyboard != nil && (addr == m.cfg.KeyboardReg || addr == m.cfg.KeyboardReg+1) {
		return m.keyboard
	}
	return nil
}

// LoadByte reads one byte, routing to a device if addr falls in a
// device-mapped range.
func (m *Memory) LoadByte(addr Word) (Byte, error) {
	if int(addr) >= len(m.ram) {
		return 0, newFaultAt(KindMemoryIndexOutOfBound, "load byte", addr, nil)
	}
	if d := m.deviceFor(addr); d != nil {
		return d.loadByte(addr), nil
	}
	return Byte(m.ram[addr]), nil
}

// LoadWord reads a word. Word accesses must be even-aligned; the
// logical word order is big-endian at this API even though the backing
// byte array is little-endian internally, per spec.md §3.
func (m *Memory) LoadWord(addr Word) (Word, error) {
	if !IsEven(addr) {
		return 0, newFaultAt(KindOddAddressing, "load word", addr, nil)
	}
	lo, err := m.LoadByte(addr)
	if err != nil {
		return 0, err
	}
	hi, err := m.LoadByte(addr + 1)
	if err != nil {
		return 0, err
	}
	return MakeWord(hi, lo), nil
}

// StoreByte writes one byte, leaving the adjacent byte intact, and
// routes to a device if addr falls in a device-mapped range. A store to
// the video mode register reconfigures the video device.
func (m *Memory) StoreByte(addr Word, v Byte) error {
	if int(addr) >= len(m.ram) {
		return newFaultAt(KindMemoryIndexOutOfBound, "store byte", addr, nil)
	}
	if d := m.deviceFor(addr); d != nil {
		d.storeByte(addr, v)
		return nil
	}
	m.ram[addr] = byte(v)
	return nil
}

// StoreWord writes a word at an even address, little-endian within the
// backing array.
func (m *Memory) StoreWord(addr Word, v Word) error {
	if !IsEven(addr) {
		return newFaultAt(KindOddAddressing, "store word", addr, nil)
	}
	if err := m.StoreByte(addr, LowByte(v)); err != nil {
		return err
	}
	return m.StoreByte(addr+1, HighByte(v))
}

// LoadROM writes words into the ROM range during setup, bypassing the
// "ROM is read-only by convention" rule that otherwise applies once the
// engine starts executing.
func (m *Memory) LoadROM(words []Word) error {
	base := m.cfg.ROMStart
	if uint32(base)+uint32(len(words))*2 > uint32(base)+uint32(m.cfg.ROMSize) {
		return newFaultAt(KindMemoryIndexOutOfBound, "load rom", base, nil)
	}
	for i, w := range words {
		addr := base + Word(i*2)
		m.ram[addr] = byte(LowByte(w))
		m.ram[addr+1] = byte(HighByte(w))
	}
	return nil
}

// RawByte reads a byte directly from the backing RAM array, bypassing
// device routing. Used by the disassembler, which must be able to read
// through the ROM range without tripping device side effects.
func (m *Memory) RawByte(addr Word) Byte { return Byte(m.ram[addr]) }

// RawWord reads a word directly from the backing RAM array.
func (m *Memory) RawWord(addr Word) Word {
	return MakeWord(Byte(m.ram[addr+1]), Byte(m.ram[addr]))
}
