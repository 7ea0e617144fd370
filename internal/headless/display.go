// Package headless is a backend without any hardware. Its devices are
// virtual, it renders into memory and it delivers frame events from
// timers at each device's refresh rate.
package headless

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
)

const maxSockets = 32

var ErrNoRuntimeDir = errors.New("XDG_RUNTIME_DIR is not set")

// Display is a single-goroutine event loop. Events may be posted from
// any goroutine but are only ever run by Run.
type Display struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once

	listener net.Listener
}

func NewDisplay() *Display {
	return &Display{
		queue: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Post queues f to be run by the event loop. It reports false if the
// display has been terminated, in which case f will never run.
func (d *Display) Post(f func()) bool {
	select {
	case <-d.done:
		return false
	default:
	}

	select {
	case d.queue <- f:
		return true
	case <-d.done:
		return false
	}
}

// Sync runs f on the event loop and waits for it to finish.
func (d *Display) Sync(f func()) bool {
	ran := make(chan struct{})
	ok := d.Post(func() {
		defer close(ran)
		f()
	})
	if !ok {
		return false
	}

	select {
	case <-ran:
		return true
	case <-d.done:
		return false
	}
}

func (d *Display) Run() {
	for {
		select {
		case f := <-d.queue:
			f()
		case <-d.done:
			return
		}
	}
}

func (d *Display) Terminate() {
	d.once.Do(func() { close(d.done) })
}

// AddSocketAuto binds the first free wayland-N socket in
// XDG_RUNTIME_DIR and returns its name.
func (d *Display) AddSocketAuto() (string, error) {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		return "", ErrNoRuntimeDir
	}

	for i := 0; i < maxSockets; i++ {
		name := fmt.Sprintf("wayland-%v", i)
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}

		lis, err := net.Listen("unix", path)
		if err != nil {
			continue
		}
		d.listener = lis
		return name, nil
	}

	return "", fmt.Errorf("no free socket in %v", dir)
}

func (d *Display) Destroy() {
	d.Terminate()
	if d.listener != nil {
		d.listener.Close()
		d.listener = nil
	}
}
