package headless

import (
	"errors"

	"deedles.dev/scanout/internal/util"
	"deedles.dev/scanout/output"
	"golang.org/x/exp/slices"
)

var ErrStarted = errors.New("backend already started")

// Backend manages a set of virtual devices. Apart from AddOutput and
// RemoveOutput, its methods must be called on the display's event loop
// or before it runs.
type Backend struct {
	display *Display
	configs []OutputConfig

	nextID  output.DeviceID
	devices []*Device
	started bool

	newDevice signal[output.Device]
}

// NewBackend returns a backend that announces one device per config
// when it is started.
func NewBackend(display *Display, configs ...OutputConfig) *Backend {
	return &Backend{
		display: display,
		configs: configs,
	}
}

func (b *Backend) OnNewDevice(f func(output.Device)) output.Subscription {
	return b.newDevice.add(f)
}

func (b *Backend) Start() error {
	if b.started {
		return ErrStarted
	}
	b.started = true

	for _, cfg := range b.configs {
		b.addOutput(cfg)
	}
	return nil
}

// AddOutput hotplugs a new device. It may be called from any goroutine.
func (b *Backend) AddOutput(cfg OutputConfig) {
	b.display.Post(func() { b.addOutput(cfg) })
}

// RemoveOutput unplugs the named device. It may be called from any
// goroutine.
func (b *Backend) RemoveOutput(name string) {
	b.display.Post(func() {
		dev, ok := b.Device(name)
		if ok {
			dev.destroy()
		}
	})
}

func (b *Backend) Device(name string) (*Device, bool) {
	return util.FindFunc(b.devices, func(dev *Device) bool {
		return dev.name == name
	})
}

func (b *Backend) Devices() []*Device {
	return slices.Clone(b.devices)
}

// Destroy unplugs every device. Frame timers are stopped, so the
// display can be torn down afterwards.
func (b *Backend) Destroy() {
	for _, dev := range slices.Clone(b.devices) {
		dev.destroy()
	}
}

func (b *Backend) addOutput(cfg OutputConfig) {
	b.nextID++
	dev := newDevice(b, b.nextID, cfg)
	b.devices = append(b.devices, dev)

	b.newDevice.emit(dev)
}

func (b *Backend) forget(dev *Device) {
	i := slices.IndexFunc(b.devices, util.Match(dev))
	if i >= 0 {
		b.devices = slices.Delete(b.devices, i, i+1)
	}
}
