package output

import (
	"fmt"
	"image/color"

	"deedles.dev/ximage/geom"
)

// DeviceID is a stable key identifying a device for as long as the
// backend keeps it alive. IDs are never reused by a backend.
type DeviceID uint64

// Mode is one operating mode of a device. Refresh is in mHz and may be
// zero if the backend doesn't know it.
type Mode struct {
	Width, Height int
	Refresh       int
	Preferred     bool
}

func (m Mode) String() string {
	if m.Refresh == 0 {
		return fmt.Sprintf("%vx%v", m.Width, m.Height)
	}
	return fmt.Sprintf("%vx%v@%.3f", m.Width, m.Height, float64(m.Refresh)/1000)
}

// Subscription is an active registration for a backend event. Cancel
// stops delivery to the registered handler.
type Subscription interface {
	Cancel()
}

// Device is a single physical or virtual output owned by a backend.
type Device interface {
	ID() DeviceID
	Name() string

	Modes() []Mode
	PreferredMode() (Mode, bool)
	SetMode(Mode)
	Enable(bool)
	Commit() error

	// EffectiveResolution is the presentation size after the device's
	// transform and scale have been applied.
	EffectiveResolution() geom.Point[int]

	// InitRender binds the device to a renderer and allocator. It must
	// be called once before the first commit.
	InitRender(Allocator, Renderer) error

	OnFrame(func(Device)) Subscription
	OnRemove(func(Device)) Subscription
}

// Renderer draws into a device's next presentable buffer.
type Renderer interface {
	// Attach makes the device's next buffer the render target. An error
	// means no buffer is available right now.
	Attach(Device) error
	Begin(dev Device, size geom.Point[int])
	Clear(color.Color)
	End()
	Destroy()
}

// Allocator creates the buffers that a Renderer draws into.
type Allocator interface {
	Destroy()
}

// Backend announces devices.
type Backend interface {
	OnNewDevice(func(Device)) Subscription
	Start() error
}

// Display owns the event dispatch loop. Run blocks until Terminate is
// called and delivers every backend event on the calling goroutine.
type Display interface {
	AddSocketAuto() (string, error)
	Run()
	Terminate()
	Destroy()
}
