package output

import (
	"fmt"
	"os"
)

// Env is the set of handles acquired by the process before output
// management starts.
type Env struct {
	Display   Display
	Backend   Backend
	Renderer  Renderer
	Allocator Allocator
}

// Run starts output management and runs the display's event loop until
// it is terminated. It returns early only if startup fails, in which
// case the error wraps one of ErrNoDisplay, ErrNoBackend, ErrNoRenderer,
// ErrNoAllocator, ErrNoSocket or ErrBackendStart.
func Run(env Env, cfg Config) error {
	if env.Display == nil {
		return ErrNoDisplay
	}

	server, err := NewServer(env.Backend, env.Renderer, env.Allocator, cfg)
	if err != nil {
		env.Display.Destroy()
		return err
	}
	log := server.cfg.Log

	socket, err := env.Display.AddSocketAuto()
	if err != nil {
		server.Shutdown()
		env.Display.Destroy()
		return fmt.Errorf("%w: %w", ErrNoSocket, err)
	}

	err = env.Backend.Start()
	if err != nil {
		server.Shutdown()
		env.Display.Destroy()
		return fmt.Errorf("%w: %w", ErrBackendStart, err)
	}

	err = os.Setenv("WAYLAND_DISPLAY", socket)
	if err != nil {
		log.WithError(err).Warn("set WAYLAND_DISPLAY")
	}

	log.WithField("WAYLAND_DISPLAY", socket).Info("running")
	env.Display.Run()

	server.Shutdown()
	env.Display.Destroy()
	return nil
}
