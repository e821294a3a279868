// collaborators.go - host-side interfaces the engine depends on but does not implement
//
// The core engine never touches a font sheet, an assembler, a display
// surface, or a terminal: it only needs bytes in ROM and a place to
// push key codes. These interfaces name the seams a debugger UI plugs
// into; reference implementations for cmd/pdp16debug live outside this
// package.

package pdp16e

import "context"

// GlyphMetadata describes a fixed-size glyph sheet: Count glyphs of
// GlyphWidth x GlyphHeight pixels at BitsPerPixel each.
type GlyphMetadata struct {
	GlyphWidth, GlyphHeight int
	Count                   int
	BitsPerPixel            int
}

// GlyphProducer supplies a font glyph sheet for a text-mode listing or
// character overlay; the core engine has no opinion on its source.
type GlyphProducer interface {
	Glyphs() (data []byte, meta GlyphMetadata, err error)
}

// Assembler turns source text into ROM-loadable words. The core engine
// only consumes []Word via Memory.LoadROM, so it never depends on this
// interface directly; it exists for host tooling that wants to accept
// assembly source instead of raw words.
type Assembler interface {
	Assemble(src string) ([]Word, error)
}

// Presenter consumes a rendered video frame, e.g. to a window, a PNG
// file, or a terminal-graphics sink.
type Presenter interface {
	Present(img VideoImage) error
}

// KeyboardProducer drives Keyboard.Push from some input source (a
// terminal in raw mode, a scripted test harness) until ctx is done.
type KeyboardProducer interface {
	Run(ctx context.Context, push func(code byte)) error
}
