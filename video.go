// video.go - memory-mapped indexed-color video device
//
// MODE_0 is the single defined mode: 256x256 pixels, 1 bit per pixel.
// A 16-bit word address maps to pixel coordinates via
// rel = addr - VRAMStartReg; pixel = rel*8/depth; y = pixel/width;
// x = pixel mod width, with 8/depth consecutive pixels packed MSB-first
// into each byte. A vertical offset register shifts the displayed
// image by N scanlines; its top bit clears the image.

package pdp16e

import "sync"

const (
	VideoMode0 = 0

	Mode0Width  = 256
	Mode0Height = 256
	Mode0Depth  = 1

	videoOffsetClearBit = 1 << 15
	videoOffsetMask     = (1 << 15) - 1
	videoModeShift      = 14
	videoModeMask       = 0x3
	videoStartMask      = (1 << 14) - 1
)

// VideoImage is a 2-D grid of palette indices, width x height, with a
// fixed bit depth. Color index 0 is black, 1 is white in MODE_0.
type VideoImage struct {
	Width, Height int
	Depth         int
	Pixels        []byte // one byte per pixel index, row-major
}

// At returns the palette index at (x, y).
func (v *VideoImage) At(x, y int) byte {
	if x < 0 || y < 0 || x >= v.Width || y >= v.Height {
		return 0
	}
	return v.Pixels[y*v.Width+x]
}

// VideoChip is the memory-mapped video device: a VRAM-backed
// framebuffer plus the mode/VRAM-start register and the vertical
// offset register.
type VideoChip struct {
	mu sync.RWMutex

	cfg     *EngineConfig
	vram    []byte
	mode    byte
	vramReg Word // absolute address of pixel (0,0), from the mode register

	offsetReg Word // bits 14..0: vertical scanline offset
}

// NewVideoChip constructs a video device backed by cfg.VRAMSize bytes,
// defaulting to MODE_0 with VRAM_start at cfg.VRAMStart.
func NewVideoChip(cfg *EngineConfig) *VideoChip {
	return &VideoChip{
		cfg:     cfg,
		vram:    make([]byte, cfg.VRAMSize),
		mode:    VideoMode0,
		vramReg: cfg.VRAMStart,
	}
}

func (v *VideoChip) covers(addr Word) bool {
	return addr == v.cfg.VideoModeReg || addr == v.cfg.VideoModeReg+1 ||
		addr == v.cfg.VideoOffsetReg || addr == v.cfg.VideoOffsetReg+1 ||
		(addr >= v.cfg.VRAMStart && uint32(addr) < uint32(v.cfg.VRAMStart)+uint32(v.cfg.VRAMSize))
}

func (v *VideoChip) vramOffset(addr Word) int {
	return int(addr) - int(v.cfg.VRAMStart)
}

func (v *VideoChip) loadByte(addr Word) Byte {
	v.mu.RLock()
	defer v.mu.RUnlock()
	switch {
	case addr == v.cfg.VideoModeReg:
		return Byte(v.modeRegWord() >> 8)
	case addr == v.cfg.VideoModeReg+1:
		return Byte(v.modeRegWord())
	case addr == v.cfg.VideoOffsetReg:
		return Byte(v.offsetReg >> 8)
	case addr == v.cfg.VideoOffsetReg+1:
		return Byte(v.offsetReg)
	default:
		off := v.vramOffset(addr)
		if off < 0 || off >= len(v.vram) {
			return 0
		}
		return Byte(v.vram[off])
	}
}

func (v *VideoChip) storeByte(addr Word, val Byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case addr == v.cfg.VideoModeReg:
		v.setModeRegWord(ReplaceHighByte(v.modeRegWord(), val))
	case addr == v.cfg.VideoModeReg+1:
		v.setModeRegWord(ReplaceLowByte(v.modeRegWord(), val))
	case addr == v.cfg.VideoOffsetReg:
		v.offsetReg = ReplaceHighByte(v.offsetReg, val)
		v.applyOffsetSideEffects()
	case addr == v.cfg.VideoOffsetReg+1:
		v.offsetReg = ReplaceLowByte(v.offsetReg, val)
		v.applyOffsetSideEffects()
	default:
		off := v.vramOffset(addr)
		if off >= 0 && off < len(v.vram) {
			v.vram[off] = byte(val)
		}
	}
}

func (v *VideoChip) modeRegWord() Word {
	return Word(v.mode)<<videoModeShift | (v.vramReg / 4 & videoStartMask)
}

func (v *VideoChip) setModeRegWord(w Word) {
	v.mode = byte((w >> videoModeShift) & videoModeMask)
	v.vramReg = (w & videoStartMask) * 4
}

// applyOffsetSideEffects clears the image when the top bit of the
// offset register is set.
func (v *VideoChip) applyOffsetSideEffects() {
	if v.offsetReg&videoOffsetClearBit != 0 {
		for i := range v.vram {
			v.vram[i] = 0
		}
	}
}

// VerticalOffset returns the currently configured scanline shift.
func (v *VideoChip) VerticalOffset() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return int(v.offsetReg & videoOffsetMask)
}

// Image renders the current VRAM contents into a VideoImage, applying
// the vertical scroll offset. Only MODE_0 is defined; other mode values
// render as a blank 256x256 image.
func (v *VideoChip) Image() VideoImage {
	v.mu.RLock()
	defer v.mu.RUnlock()

	img := VideoImage{Width: Mode0Width, Height: Mode0Height, Depth: Mode0Depth,
		Pixels: make([]byte, Mode0Width*Mode0Height)}
	if v.mode != VideoMode0 {
		return img
	}

	pixelsPerByte := 8 / Mode0Depth
	offset := int(v.offsetReg & videoOffsetMask)
	startOff := int(v.vramReg) - int(v.cfg.VRAMStart)

	for i, b := range v.vram {
		rel := i - startOff
		if rel < 0 {
			continue
		}
		basePixel := rel * pixelsPerByte
		for bit := 0; bit < pixelsPerByte; bit++ {
			pixel := basePixel + bit
			y := pixel / Mode0Width
			x := pixel % Mode0Width
			if y >= Mode0Height {
				continue
			}
			shiftedY := (y + offset) % Mode0Height
			shift := 7 - bit // MSB first
			val := (b >> uint(shift)) & 1
			img.Pixels[shiftedY*Mode0Width+x] = val
		}
	}
	return img
}
