package headless

import (
	"errors"
	"fmt"
	"image/color"

	"deedles.dev/scanout/internal/drm"
	"deedles.dev/scanout/internal/fimg"
	"deedles.dev/scanout/output"
	"deedles.dev/ximage/geom"
)

var (
	ErrAllocatorDestroyed = errors.New("allocator destroyed")
	ErrFormat             = errors.New("unsupported buffer format")
)

// renderFormat is the only layout the renderer can draw into.
const renderFormat = drm.FormatABGR8888 | drm.FormatBigEndian

// Buffer is a scanout buffer in memory.
type Buffer struct {
	*fimg.NABGR
	Format drm.Format
}

func (buf *Buffer) Size() geom.Point[int] {
	return geom.Pt(buf.Rect.Dx(), buf.Rect.Dy())
}

// Allocator hands out memory buffers. The pixel layout of fimg.NABGR is
// ABGR8888 in big endian order.
type Allocator struct {
	destroyed bool
}

func NewAllocator() *Allocator {
	return new(Allocator)
}

func (a *Allocator) Allocate(size geom.Point[int]) (*Buffer, error) {
	if a.destroyed {
		return nil, ErrAllocatorDestroyed
	}
	if (size.X <= 0) || (size.Y <= 0) {
		return nil, fmt.Errorf("invalid buffer size %vx%v", size.X, size.Y)
	}

	return &Buffer{
		NABGR:  fimg.NewNABGR(geom.Rt(0, 0, size.X, size.Y).ImageRect()),
		Format: renderFormat,
	}, nil
}

func (a *Allocator) Destroy() {
	a.destroyed = true
}

// Renderer draws into the back buffers of headless devices.
type Renderer struct {
	dev    *Device
	target *Buffer

	destroyed bool
}

func NewRenderer() *Renderer {
	return new(Renderer)
}

func (r *Renderer) Attach(d output.Device) error {
	if r.destroyed {
		return errors.New("renderer destroyed")
	}

	dev, ok := d.(*Device)
	if !ok {
		return ErrForeign
	}
	if dev.renderer != r {
		return ErrUnbound
	}

	buf, err := dev.backBuffer()
	if err != nil {
		return err
	}
	if buf.Format != renderFormat {
		return fmt.Errorf("%w: %v", ErrFormat, buf.Format)
	}

	r.dev = dev
	r.target = buf
	dev.attached = true
	return nil
}

// Begin starts a render pass on the attached buffer. size is the
// device's effective resolution, which only differs from the buffer
// size under a scale or transform. It panics if no buffer is attached.
func (r *Renderer) Begin(d output.Device, size geom.Point[int]) {
	if (r.target == nil) || (output.Device(r.dev) != d) {
		panic(fmt.Errorf("begin render on %v without attached buffer", d.Name()))
	}
}

// Clear fills the whole buffer, regardless of the size passed to
// Begin.
func (r *Renderer) Clear(c color.Color) {
	r.target.Fill(c)
}

func (r *Renderer) End() {
	r.dev.drawn = true
	r.dev = nil
	r.target = nil
}

func (r *Renderer) Destroy() {
	r.destroyed = true
}
