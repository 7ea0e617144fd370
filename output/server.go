package output

import (
	"image/color"
	"iter"
	"time"

	"github.com/sirupsen/logrus"
)

var DefaultColor = color.NRGBA{0xFF, 0x0, 0x0, 0xFF}

// Config holds the knobs of a Server. The zero value is usable.
type Config struct {
	// Color fills every output on every frame.
	Color color.Color

	Log logrus.FieldLogger

	// Now is the clock used for frame timestamps.
	Now func() time.Time
}

func (cfg Config) withDefaults() Config {
	if cfg.Color == nil {
		cfg.Color = DefaultColor
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return cfg
}

// Server owns the renderer, the allocator and every live output. All of
// its methods must be called from the display's dispatch goroutine.
type Server struct {
	cfg Config

	backend   Backend
	renderer  Renderer
	allocator Allocator

	outputs *Registry

	newDevice *listener
	closed    bool
}

// NewServer creates a Server and subscribes it to new devices from
// backend. Devices announced before NewServer returns are missed, so it
// must be called before backend.Start.
func NewServer(backend Backend, renderer Renderer, allocator Allocator, cfg Config) (*Server, error) {
	switch {
	case backend == nil:
		return nil, ErrNoBackend
	case renderer == nil:
		return nil, ErrNoRenderer
	case allocator == nil:
		return nil, ErrNoAllocator
	}

	server := Server{
		cfg:       cfg.withDefaults(),
		backend:   backend,
		renderer:  renderer,
		allocator: allocator,
		outputs:   NewRegistry(),
	}
	server.newDevice = listen(backend.OnNewDevice(server.onNewDevice))

	return &server, nil
}

// Outputs yields the live outputs in the order they were added.
func (server *Server) Outputs() iter.Seq[*Output] {
	return server.outputs.All()
}

func (server *Server) Output(id DeviceID) (*Output, bool) {
	return server.outputs.Get(id)
}

func (server *Server) Len() int {
	return server.outputs.Len()
}

// Shutdown drops every output and releases the renderer and allocator.
// Event delivery must already have stopped.
func (server *Server) Shutdown() {
	if server.closed {
		return
	}
	server.closed = true

	server.newDevice.Release()
	for out := range server.outputs.All() {
		server.removeOutput(out)
	}

	server.allocator.Destroy()
	server.renderer.Destroy()
}

func (server *Server) onNewDevice(dev Device) {
	if server.closed {
		return
	}

	log := server.cfg.Log.WithField("output", dev.Name())

	out, err := server.newOutput(dev)
	if err != nil {
		log.WithError(err).Warn("output not activated")
		return
	}

	log.WithField("size", out.Device.EffectiveResolution()).Info("output added")
}
