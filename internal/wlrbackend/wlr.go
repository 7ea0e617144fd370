// Package wlrbackend drives real outputs through wlroots.
package wlrbackend

import (
	"errors"
	"fmt"
	"image/color"

	"deedles.dev/scanout/output"
	"deedles.dev/wlr"
	"deedles.dev/ximage/geom"
	"deedles.dev/xiter"
)

const compositorVersion = 5

var (
	ErrNoDisplay   = errors.New("create display")
	ErrNoBackend   = errors.New("create backend")
	ErrNoRenderer  = errors.New("create renderer")
	ErrNoAllocator = errors.New("create allocator")
	ErrModeset     = errors.New("mode not applied")
)

// Open creates the wlroots display, backend, renderer and allocator.
// If any of them can't be created, the ones that were are destroyed
// again and the returned Env is empty.
func Open() (output.Env, error) {
	wlr.InitLog(wlr.Debug, nil)

	display := wlr.CreateDisplay()
	if display == (wlr.Display{}) {
		return output.Env{}, ErrNoDisplay
	}

	backend := wlr.AutocreateBackend(display)
	if !backend.Valid() {
		display.Destroy()
		return output.Env{}, ErrNoBackend
	}

	renderer := wlr.AutocreateRenderer(backend)
	if renderer == (wlr.Renderer{}) {
		backend.Destroy()
		display.Destroy()
		return output.Env{}, ErrNoRenderer
	}
	renderer.InitWLDisplay(display)

	allocator := wlr.AutocreateAllocator(backend, renderer)
	if !allocator.Valid() {
		renderer.Destroy()
		backend.Destroy()
		display.Destroy()
		return output.Env{}, ErrNoAllocator
	}

	wlr.CreateCompositor(display, compositorVersion, renderer)

	return output.Env{
		Display:   &Display{display: display},
		Backend:   &Backend{backend: backend},
		Renderer:  &Renderer{renderer: renderer},
		Allocator: &Allocator{allocator: allocator},
	}, nil
}

// listener adapts a wlroots signal registration to output.Subscription.
type listener struct {
	l wlr.Listener
}

func (l listener) Cancel() { l.l.Destroy() }

type Display struct {
	display wlr.Display
}

func (d *Display) AddSocketAuto() (string, error) {
	return d.display.AddSocketAuto()
}

func (d *Display) Run()       { d.display.Run() }
func (d *Display) Terminate() { d.display.Terminate() }

func (d *Display) Destroy() {
	d.display.DestroyClients()
	d.display.Destroy()
}

type Backend struct {
	backend wlr.Backend
	nextID  output.DeviceID
}

func (b *Backend) OnNewDevice(f func(output.Device)) output.Subscription {
	return listener{b.backend.OnNewOutput(func(out wlr.Output) {
		b.nextID++
		f(&Device{id: b.nextID, output: out})
	})}
}

func (b *Backend) Start() error {
	return b.backend.Start()
}

type Allocator struct {
	allocator wlr.Allocator
}

func (a *Allocator) Destroy() { a.allocator.Destroy() }

type Renderer struct {
	renderer wlr.Renderer
}

func (r *Renderer) Attach(dev output.Device) error {
	_, err := dev.(*Device).output.AttachRender()
	return err
}

func (r *Renderer) Begin(dev output.Device, size geom.Point[int]) {
	r.renderer.Begin(dev.(*Device).output, size.X, size.Y)
}

func (r *Renderer) Clear(c color.Color) { r.renderer.Clear(c) }
func (r *Renderer) End()                { r.renderer.End() }
func (r *Renderer) Destroy()            { r.renderer.Destroy() }

// Device wraps a wlroots output.
//
// wlroots reports the result of a commit only through its return
// value, which the binding discards. Commit instead checks that a
// staged mode's size took effect. A rejected enable with an unchanged
// mode can't be detected this way.
type Device struct {
	id      output.DeviceID
	output  wlr.Output
	pending *wlr.OutputMode
}

func (dev *Device) ID() output.DeviceID { return dev.id }
func (dev *Device) Name() string        { return dev.output.Name() }

func (dev *Device) Modes() []output.Mode {
	preferred := dev.output.PreferredMode()

	var modes []output.Mode
	for m := range dev.output.Modes() {
		modes = append(modes, convertMode(m, m == preferred))
	}
	return modes
}

func convertMode(m wlr.OutputMode, preferred bool) output.Mode {
	return output.Mode{
		Width:     int(m.Width()),
		Height:    int(m.Height()),
		Refresh:   int(m.RefreshRate()),
		Preferred: preferred,
	}
}

func sameMode(m wlr.OutputMode, om output.Mode) bool {
	return (int(m.Width()) == om.Width) &&
		(int(m.Height()) == om.Height) &&
		(int(m.RefreshRate()) == om.Refresh)
}

func (dev *Device) PreferredMode() (output.Mode, bool) {
	mode := dev.output.PreferredMode()
	if !mode.Valid() {
		return output.Mode{}, false
	}
	return convertMode(mode, true), true
}

func (dev *Device) SetMode(m output.Mode) {
	mode, ok := xiter.Find(dev.output.Modes(), func(mode wlr.OutputMode) bool {
		return sameMode(mode, m)
	})
	if !ok {
		return
	}
	dev.output.SetMode(mode)
	dev.pending = &mode
}

func (dev *Device) Enable(enable bool) { dev.output.Enable(enable) }

func (dev *Device) Commit() error {
	dev.output.Commit()

	pending := dev.pending
	dev.pending = nil
	if pending == nil {
		return nil
	}

	w, h := dev.output.Width(), dev.output.Height()
	if (w != int(pending.Width())) || (h != int(pending.Height())) {
		return fmt.Errorf("%w: output is %vx%v", ErrModeset, w, h)
	}
	return nil
}

func (dev *Device) EffectiveResolution() geom.Point[int] {
	w, h := dev.output.EffectiveResolution()
	return geom.Pt(w, h)
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

	dev.output.InitRender(alloc.allocator, renderer.renderer)
	return nil
}

func (dev *Device) OnFrame(f func(output.Device)) output.Subscription {
	return listener{dev.output.OnFrame(func(wlr.Output) { f(dev) })}
}

func (dev *Device) OnRemove(f func(output.Device)) output.Subscription {
	return listener{dev.output.OnDestroy(func(wlr.Output) { f(dev) })}
}
