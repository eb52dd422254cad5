package audio

import (
	"fmt"
	"sync"
)

// Opener connects to a backend on first acquisition.
type Opener func() (Backend, error)

// Handle shares one Backend among its owners. The backend is opened on the
// first Acquire and closed when the last owner releases it.
type Handle struct {
	open Opener

	mu      sync.Mutex
	backend Backend
	refs    int
}

func NewHandle(open Opener) *Handle {
	return &Handle{open: open}
}

// Acquire returns the shared backend, opening it when no owner holds it.
func (h *Handle) Acquire() (Backend, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.refs == 0 {
		backend, err := h.open()
		if err != nil {
			return nil, err
		}
		h.backend = backend
	}
	h.refs++
	return h.backend, nil
}

// Release drops one ownership. Releasing more than acquired is an error.
func (h *Handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.refs == 0 {
		return fmt.Errorf("audio handle released without owner")
	}
	h.refs--
	if h.refs > 0 {
		return nil
	}

	backend := h.backend
	h.backend = nil
	if err := backend.Close(); err != nil {
		return fmt.Errorf("close %s backend: %w", backend.Name(), err)
	}
	return nil
}
