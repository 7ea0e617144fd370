package output

import (
	"fmt"
	"time"
)

// Output is the per-device state of the server. It is in the server's
// registry exactly as long as both of its subscriptions are active.
type Output struct {
	Device Device

	lastFrame time.Time
	frames    uint64
	removed   bool

	frame  *listener
	remove *listener
}

func (out *Output) ID() DeviceID {
	return out.Device.ID()
}

// LastFrame is the time of the most recent completed render cycle, or
// of activation if none has completed yet.
func (out *Output) LastFrame() time.Time {
	return out.lastFrame
}

// Frames is the number of completed render cycles.
func (out *Output) Frames() uint64 {
	return out.frames
}

func (out *Output) String() string {
	return out.Device.Name()
}

// newOutput activates dev and adds it to the registry. If it returns an
// error, nothing was registered or subscribed.
func (server *Server) newOutput(dev Device) (*Output, error) {
	if server.outputs.Contains(dev.ID()) {
		return nil, fmt.Errorf("%w: %v", ErrDuplicate, dev.ID())
	}

	err := dev.InitRender(server.allocator, server.renderer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBind, err)
	}

	err = server.setOutputMode(dev)
	if err != nil {
		return nil, err
	}

	out := Output{
		Device:    dev,
		lastFrame: server.cfg.Now(),
	}
	err = server.outputs.Add(&out)
	if err != nil {
		return nil, err
	}

	out.remove = listen(dev.OnRemove(func(Device) {
		server.onRemove(&out)
	}))
	out.frame = listen(dev.OnFrame(func(Device) {
		server.onFrame(&out)
	}))

	return &out, nil
}

// setOutputMode applies the device's preferred mode. Devices without
// modes are usable as-is.
func (server *Server) setOutputMode(dev Device) error {
	modes := dev.Modes()
	if len(modes) == 0 {
		return nil
	}

	mode, ok := dev.PreferredMode()
	if !ok {
		mode = modes[0]
	}

	dev.SetMode(mode)
	dev.Enable(true)
	err := dev.Commit()
	if err != nil {
		return fmt.Errorf("%w %v: %w", ErrModeCommit, mode, err)
	}

	server.cfg.Log.WithField("output", dev.Name()).WithField("mode", mode).Debug("mode set")
	return nil
}

func (server *Server) onRemove(out *Output) {
	if !server.removeOutput(out) {
		return
	}

	server.cfg.Log.WithField("output", out.Device.Name()).Info("output removed")
}

// removeOutput cancels the output's subscriptions and drops it from
// the registry. It reports false if removal had already begun.
func (server *Server) removeOutput(out *Output) bool {
	if out.removed {
		return false
	}
	out.removed = true

	out.frame.Release()
	out.remove.Release()
	server.outputs.Remove(out.ID())
	return true
}
