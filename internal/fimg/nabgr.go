// Package fimg provides image types in the pixel layouts used by
// scanout buffers.
package fimg

import (
	"image"
	"image/color"
)

// NABGR is a non-premultiplied image stored as A, B, G, R bytes.
type NABGR struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

func NewNABGR(r image.Rectangle) *NABGR {
	return &NABGR{
		Pix:    make([]byte, 4*r.Dx()*r.Dy()),
		Stride: 4 * r.Dx(),
		Rect:   r,
	}
}

func (p *NABGR) PixOffset(x, y int) int {
	return ((y - p.Rect.Min.Y) * p.Stride) + (x-p.Rect.Min.X)*4
}

func (p *NABGR) Bounds() image.Rectangle {
	return p.Rect
}

func (p *NABGR) ColorModel() color.Model {
	return color.NRGBAModel
}

func (p *NABGR) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.NRGBA{}
	}

	i := p.PixOffset(x, y)
	return color.NRGBA{p.Pix[i+3], p.Pix[i+2], p.Pix[i+1], p.Pix[i]}
}

func (p *NABGR) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}

	i := p.PixOffset(x, y)
	p.setAt(i, color.NRGBAModel.Convert(c).(color.NRGBA))
}

func (p *NABGR) setAt(i int, c color.NRGBA) {
	p.Pix[i] = c.A
	p.Pix[i+1] = c.B
	p.Pix[i+2] = c.G
	p.Pix[i+3] = c.R
}

// Fill sets every pixel of the image to c.
func (p *NABGR) Fill(c color.Color) {
	if p.Rect.Empty() {
		return
	}

	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	row := p.Pix[:4*p.Rect.Dx()]
	for i := 0; i < len(row); i += 4 {
		p.setAt(i, nc)
	}
	for y := 1; y < p.Rect.Dy(); y++ {
		copy(p.Pix[y*p.Stride:], row)
	}
}
