package headless

import "golang.org/x/exp/slices"

type signal[T any] struct {
	handlers []*handler[T]
}

type handler[T any] struct {
	signal *signal[T]
	f      func(T)
}

func (s *signal[T]) add(f func(T)) *handler[T] {
	h := handler[T]{signal: s, f: f}
	s.handlers = append(s.handlers, &h)
	return &h
}

// emit calls every handler registered when emit was called, skipping
// those cancelled by an earlier handler.
func (s *signal[T]) emit(v T) {
	for _, h := range slices.Clone(s.handlers) {
		if !slices.Contains(s.handlers, h) {
			continue
		}
		h.f(v)
	}
}

func (s *signal[T]) len() int {
	return len(s.handlers)
}

func (h *handler[T]) Cancel() {
	i := slices.Index(h.signal.handlers, h)
	if i < 0 {
		return
	}
	h.signal.handlers = slices.Delete(h.signal.handlers, i, i+1)
}
