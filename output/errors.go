package output

import "errors"

var (
	ErrNoDisplay    = errors.New("no display")
	ErrNoBackend    = errors.New("no backend")
	ErrNoRenderer   = errors.New("no renderer")
	ErrNoAllocator  = errors.New("no allocator")
	ErrNoSocket     = errors.New("add display socket")
	ErrBackendStart = errors.New("start backend")

	ErrBind       = errors.New("bind output to renderer")
	ErrModeCommit = errors.New("commit output mode")
	ErrDuplicate  = errors.New("output already registered")
)
