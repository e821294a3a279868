// glyph.go - PNG glyph-sheet reference implementation
//
// Grounded on the reference engine's tools/font2rgba.go: decode a PNG
// with image/png and slice it into fixed-size cells. Unlike that tool
// (which converts once, offline, into a blitter asset), this decodes
// at load time and hands the UI raw 1-bit-per-pixel glyph data sized
// by the sheet's own dimensions.

package main

import (
	"fmt"
	"image/png"
	"os"

	pdp16e "github.com/coldiron/pdp16e"
)

// pngGlyphProducer slices a PNG sheet of glyphW x glyphH cells into a
// flat 1-bit-per-pixel buffer, implementing pdp16e.GlyphProducer.
type pngGlyphProducer struct {
	path           string
	glyphW, glyphH int
}

func newPNGGlyphProducer(path string, glyphW, glyphH int) *pngGlyphProducer {
	return &pngGlyphProducer{path: path, glyphW: glyphW, glyphH: glyphH}
}

// Glyphs decodes the sheet and packs each cell's pixels into one bit
// per pixel (MSB-first per row, matching the video chip's own packing
// convention), rows major, glyphs major left-to-right then top-to-bottom.
func (g *pngGlyphProducer) Glyphs() ([]byte, pdp16e.GlyphMetadata, error) {
	f, err := os.Open(g.path)
	if err != nil {
		return nil, pdp16e.GlyphMetadata{}, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, pdp16e.GlyphMetadata{}, err
	}

	bounds := img.Bounds()
	cols := bounds.Dx() / g.glyphW
	rows := bounds.Dy() / g.glyphH
	if cols == 0 || rows == 0 {
		return nil, pdp16e.GlyphMetadata{}, fmt.Errorf("pdp16debug: glyph sheet smaller than one cell")
	}
	count := cols * rows

	bytesPerRow := (g.glyphW + 7) / 8
	data := make([]byte, count*bytesPerRow*g.glyphH)

	idx := 0
	for gy := 0; gy < rows; gy++ {
		for gx := 0; gx < cols; gx++ {
			base := idx * bytesPerRow * g.glyphH
			for py := 0; py < g.glyphH; py++ {
				for px := 0; px < g.glyphW; px++ {
					sx := bounds.Min.X + gx*g.glyphW + px
					sy := bounds.Min.Y + gy*g.glyphH + py
					r, gc, b, _ := img.At(sx, sy).RGBA()
					lit := r > 0x7FFF || gc > 0x7FFF || b > 0x7FFF
					if lit {
						byteIdx := base + py*bytesPerRow + px/8
						data[byteIdx] |= 1 << (7 - uint(px%8))
					}
				}
			}
			idx++
		}
	}

	return data, pdp16e.GlyphMetadata{
		GlyphWidth: g.glyphW, GlyphHeight: g.glyphH, Count: count, BitsPerPixel: 1,
	}, nil
}
