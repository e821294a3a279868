// presenter.go - PNG-snapshot video presenter
//
// Grounded on the reference engine's tools/font2rgba.go for the
// image/png and image/draw idiom: scale the machine's 1-bit indexed
// framebuffer up into an RGBA canvas with golang.org/x/image/draw,
// then encode it to a numbered file in the output directory.

package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	pdp16e "github.com/coldiron/pdp16e"
)

// pngPresenter writes each presented frame as a scaled PNG file,
// implementing pdp16e.Presenter.
type pngPresenter struct {
	dir   string
	scale int
	n     int
}

func newPNGPresenter(dir string, scale int) *pngPresenter {
	if scale < 1 {
		scale = 1
	}
	return &pngPresenter{dir: dir, scale: scale}
}

// Present renders img (palette index 0 = black, 1 = white) into an
// RGBA canvas scaled by p.scale, then writes it as frame-NNNN.png.
func (p *pngPresenter) Present(img pdp16e.VideoImage) error {
	src := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			if img.At(x, y) != 0 {
				src.SetGray(x, y, color.Gray{Y: 0xFF})
			}
		}
	}

	dstW, dstH := img.Width*p.scale, img.Height*p.scale
	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(p.dir, fmt.Sprintf("frame-%04d.png", p.n))
	p.n++

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, dst)
}
