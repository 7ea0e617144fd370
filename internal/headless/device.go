package headless

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync/atomic"
	"time"

	"deedles.dev/scanout/output"
	"deedles.dev/ximage/geom"
	"golang.org/x/exp/slices"
	"golang.org/x/image/draw"
)

const defaultRefresh = 60000

var (
	ErrNotBound  = errors.New("device not bound to a renderer")
	ErrModeset   = errors.New("modeset rejected")
	ErrNoBuffer  = errors.New("no buffer available")
	ErrForeign   = errors.New("device belongs to another backend")
	ErrUnbound   = errors.New("device bound to another renderer")
	ErrDestroyed = errors.New("device destroyed")
)

// Transform rotates a device's output counter-clockwise.
type Transform int

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
)

func (t Transform) swapsAxes() bool {
	return (t == Transform90) || (t == Transform270)
}

// Device is a virtual output.
type Device struct {
	backend *Backend
	id      output.DeviceID
	cfg     OutputConfig

	name    string
	mode    output.Mode
	pending *output.Mode
	enabled bool
	enable  *bool

	allocator *Allocator
	renderer  *Renderer

	front, back *Buffer
	attached    bool
	drawn       bool
	commits     int
	presented   int

	ticker   chan struct{}
	inFlight atomic.Bool
	removed  bool

	frame  signal[output.Device]
	remove signal[output.Device]
}

func newDevice(b *Backend, id output.DeviceID, cfg OutputConfig) *Device {
	dev := Device{
		backend: b,
		id:      id,
		cfg:     cfg,
		name:    cfg.Name,
	}
	if dev.name == "" {
		dev.name = fmt.Sprintf("HEADLESS-%v", id)
	}
	if len(cfg.Modes) == 0 {
		// Outputs without modes have a fixed size and are always on.
		dev.mode = output.Mode{Width: cfg.Size.X, Height: cfg.Size.Y, Refresh: cfg.Refresh}
		dev.enabled = true
	}
	return &dev
}

func (dev *Device) ID() output.DeviceID { return dev.id }
func (dev *Device) Name() string        { return dev.name }

func (dev *Device) Modes() []output.Mode {
	return slices.Clone(dev.cfg.Modes)
}

func (dev *Device) PreferredMode() (output.Mode, bool) {
	i := slices.IndexFunc(dev.cfg.Modes, func(m output.Mode) bool { return m.Preferred })
	if i < 0 {
		return output.Mode{}, false
	}
	return dev.cfg.Modes[i], true
}

// Mode is the currently applied mode.
func (dev *Device) Mode() output.Mode {
	return dev.mode
}

func (dev *Device) Enabled() bool {
	return dev.enabled
}

// SetMode stages m for the next commit.
func (dev *Device) SetMode(m output.Mode) {
	dev.pending = &m
}

// Enable stages the enabled state for the next commit.
func (dev *Device) Enable(enable bool) {
	dev.enable = &enable
}

func (dev *Device) InitRender(a output.Allocator, r output.Renderer) error {
	alloc, ok := a.(*Allocator)
	if !ok {
		return fmt.Errorf("unsupported allocator %T", a)
	}
	renderer, ok := r.(*Renderer)
	if !ok {
		return fmt.Errorf("unsupported renderer %T", r)
	}

	dev.allocator = alloc
	dev.renderer = renderer
	dev.schedule()
	return nil
}

// Commit applies staged state. If a frame was rendered since the last
// commit, it is presented.
func (dev *Device) Commit() error {
	if dev.removed {
		return ErrDestroyed
	}
	if dev.allocator == nil {
		return ErrNotBound
	}

	if dev.pending != nil {
		if dev.cfg.FailModeset {
			dev.pending, dev.enable = nil, nil
			return ErrModeset
		}
		if !slices.Contains(dev.cfg.Modes, *dev.pending) {
			m := *dev.pending
			dev.pending, dev.enable = nil, nil
			return fmt.Errorf("%w: unsupported mode %v", ErrModeset, m)
		}
		dev.mode = *dev.pending
		dev.pending = nil
		dev.front, dev.back = nil, nil
		dev.stopTicker()
	}
	if dev.enable != nil {
		dev.enabled = *dev.enable
		dev.enable = nil
	}
	dev.commits++

	if dev.attached && dev.drawn {
		dev.front, dev.back = dev.back, dev.front
		dev.presented++
	}
	dev.attached, dev.drawn = false, false

	dev.schedule()
	return nil
}

// EffectiveResolution is the mode size, rotated by the transform and
// divided by the scale.
func (dev *Device) EffectiveResolution() geom.Point[int] {
	w, h := dev.mode.Width, dev.mode.Height
	if dev.cfg.Transform.swapsAxes() {
		w, h = h, w
	}

	scale := dev.cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	return geom.Pt(
		int(math.Round(float64(w)/scale)),
		int(math.Round(float64(h)/scale)),
	)
}

func (dev *Device) OnFrame(f func(output.Device)) output.Subscription {
	return dev.frame.add(f)
}

func (dev *Device) OnRemove(f func(output.Device)) output.Subscription {
	return dev.remove.add(f)
}

// Commits is the number of successful commits, including modesets.
func (dev *Device) Commits() int {
	return dev.commits
}

// Presented is the number of rendered frames that were shown.
func (dev *Device) Presented() int {
	return dev.presented
}

// Snapshot copies the most recently presented frame. It returns nil if
// nothing has been presented.
func (dev *Device) Snapshot() *image.RGBA {
	if dev.front == nil {
		return nil
	}

	img := image.NewRGBA(dev.front.Bounds())
	draw.Draw(img, img.Bounds(), dev.front, dev.front.Bounds().Min, draw.Src)
	return img
}

// backBuffer returns a buffer to render into, allocating one if the
// current one doesn't match the device's size.
func (dev *Device) backBuffer() (*Buffer, error) {
	if !dev.enabled {
		return nil, ErrNoBuffer
	}

	size := geom.Pt(dev.mode.Width, dev.mode.Height)
	if (dev.back != nil) && (dev.back.Size() == size) {
		return dev.back, nil
	}

	buf, err := dev.allocator.Allocate(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoBuffer, err)
	}
	dev.back = buf
	return buf, nil
}

func (dev *Device) refresh() time.Duration {
	mhz := dev.mode.Refresh
	if mhz <= 0 {
		mhz = defaultRefresh
	}
	return time.Duration(float64(time.Second) * 1000 / float64(mhz))
}

// schedule starts the frame timer once the device is bound and enabled
// and stops it when the device is disabled.
func (dev *Device) schedule() {
	running := dev.ticker != nil
	want := dev.enabled && (dev.allocator != nil) && !dev.removed

	switch {
	case want && !running:
		dev.ticker = make(chan struct{})
		go dev.tick(dev.ticker, dev.refresh())
	case !want && running:
		dev.stopTicker()
	}
}

func (dev *Device) stopTicker() {
	if dev.ticker == nil {
		return
	}
	close(dev.ticker)
	dev.ticker = nil
}

func (dev *Device) tick(stop <-chan struct{}, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if !dev.inFlight.CompareAndSwap(false, true) {
				continue
			}
			if !dev.backend.display.Post(dev.emitFrame) {
				return
			}
		}
	}
}

func (dev *Device) emitFrame() {
	dev.inFlight.Store(false)
	if dev.removed || !dev.enabled {
		return
	}
	dev.frame.emit(dev)
}

func (dev *Device) destroy() {
	if dev.removed {
		return
	}
	dev.removed = true
	dev.schedule()
	dev.backend.forget(dev)

	dev.remove.emit(dev)
}

// EmitFrame delivers a frame event immediately, independently of the
// frame timer.
func (dev *Device) EmitFrame() {
	dev.emitFrame()
}
