package output

import (
	"errors"
	"image/color"
	"io"
	"sort"
	"time"

	"deedles.dev/ximage/geom"
	"github.com/sirupsen/logrus"
)

type fakeSignal struct {
	next     int
	handlers map[int]func(Device)
	cancels  int
}

func (s *fakeSignal) add(f func(Device)) Subscription {
	if s.handlers == nil {
		s.handlers = make(map[int]func(Device))
	}
	id := s.next
	s.next++
	s.handlers[id] = f
	return &fakeSub{signal: s, id: id}
}

func (s *fakeSignal) emit(dev Device) {
	ids := make([]int, 0, len(s.handlers))
	for id := range s.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		if f, ok := s.handlers[id]; ok {
			f(dev)
		}
	}
}

func (s *fakeSignal) len() int {
	return len(s.handlers)
}

type fakeSub struct {
	signal *fakeSignal
	id     int
}

func (sub *fakeSub) Cancel() {
	sub.signal.cancels++
	delete(sub.signal.handlers, sub.id)
}

type fakeDevice struct {
	id        DeviceID
	name      string
	modes     []Mode
	size      geom.Point[int]
	bindErr   error
	commitErr error

	bound   bool
	enabled bool
	mode    Mode
	commits int

	frame  fakeSignal
	remove fakeSignal
}

func (dev *fakeDevice) ID() DeviceID  { return dev.id }
func (dev *fakeDevice) Name() string  { return dev.name }
func (dev *fakeDevice) Modes() []Mode { return dev.modes }

func (dev *fakeDevice) PreferredMode() (Mode, bool) {
	for _, m := range dev.modes {
		if m.Preferred {
			return m, true
		}
	}
	return Mode{}, false
}

func (dev *fakeDevice) SetMode(m Mode) { dev.mode = m }
func (dev *fakeDevice) Enable(e bool)  { dev.enabled = e }

func (dev *fakeDevice) Commit() error {
	if dev.commitErr != nil {
		return dev.commitErr
	}
	dev.commits++
	return nil
}

func (dev *fakeDevice) EffectiveResolution() geom.Point[int] {
	if dev.mode.Width != 0 {
		return geom.Pt(dev.mode.Width, dev.mode.Height)
	}
	return dev.size
}

func (dev *fakeDevice) InitRender(Allocator, Renderer) error {
	if dev.bindErr != nil {
		return dev.bindErr
	}
	dev.bound = true
	return nil
}

func (dev *fakeDevice) OnFrame(f func(Device)) Subscription  { return dev.frame.add(f) }
func (dev *fakeDevice) OnRemove(f func(Device)) Subscription { return dev.remove.add(f) }

// subscribed reports whether both of the device's events have a
// handler.
func (dev *fakeDevice) subscribed() bool {
	return (dev.frame.len() == 1) && (dev.remove.len() == 1)
}

type renderCall struct {
	dev   DeviceID
	size  geom.Point[int]
	color color.Color
}

type fakeRenderer struct {
	attachErr map[DeviceID]error
	current   *renderCall
	calls     []renderCall
	destroyed int
}

func (r *fakeRenderer) Attach(dev Device) error {
	return r.attachErr[dev.ID()]
}

func (r *fakeRenderer) Begin(dev Device, size geom.Point[int]) {
	r.current = &renderCall{dev: dev.ID(), size: size}
}

func (r *fakeRenderer) Clear(c color.Color) {
	r.current.color = c
}

func (r *fakeRenderer) End() {
	r.calls = append(r.calls, *r.current)
	r.current = nil
}

func (r *fakeRenderer) Destroy() { r.destroyed++ }

type fakeAllocator struct {
	destroyed int
}

func (a *fakeAllocator) Destroy() { a.destroyed++ }

type fakeBackend struct {
	newDevice fakeSignal
	startErr  error
	devices   []*fakeDevice
}

func (b *fakeBackend) OnNewDevice(f func(Device)) Subscription {
	return b.newDevice.add(f)
}

func (b *fakeBackend) Start() error {
	if b.startErr != nil {
		return b.startErr
	}
	for _, dev := range b.devices {
		b.newDevice.emit(dev)
	}
	return nil
}

type fakeDisplay struct {
	socketErr error
	run       func()
	destroyed int
}

func (d *fakeDisplay) AddSocketAuto() (string, error) {
	if d.socketErr != nil {
		return "", d.socketErr
	}
	return "wayland-test", nil
}

func (d *fakeDisplay) Run() {
	if d.run != nil {
		d.run()
	}
}

func (d *fakeDisplay) Terminate() {}
func (d *fakeDisplay) Destroy()   { d.destroyed++ }

// fakeClock advances by one millisecond every time it's read.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

type fixture struct {
	backend   *fakeBackend
	renderer  *fakeRenderer
	allocator *fakeAllocator
	clock     *fakeClock
	server    *Server
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newFixture() *fixture {
	f := fixture{
		backend:   new(fakeBackend),
		renderer:  &fakeRenderer{attachErr: make(map[DeviceID]error)},
		allocator: new(fakeAllocator),
		clock:     &fakeClock{t: time.Unix(1000, 0)},
	}

	server, err := NewServer(f.backend, f.renderer, f.allocator, Config{
		Log: quietLogger(),
		Now: f.clock.Now,
	})
	if err != nil {
		panic(err)
	}
	f.server = server

	return &f
}

func (f *fixture) add(dev *fakeDevice) {
	f.backend.newDevice.emit(dev)
}

var errFake = errors.New("fake failure")
