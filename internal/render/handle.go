package render

import (
	"context"
)

// Handle is the pending result of a render. Renders without an image
// settle before Render returns; image renders settle once the image has been
// fetched and drawn.
type Handle struct {
	done chan struct{}
	err  error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

func settled(err error) *Handle {
	h := newHandle()
	h.settle(err)
	return h
}

func (h *Handle) settle(err error) {
	h.err = err
	close(h.done)
}

// Done is closed when the render has finished or failed.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err returns the render error once Done is closed, and nil before.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Wait blocks until the render settles or ctx is done. Giving up on the wait
// does not stop the render.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pending reports whether the render is still running.
func (h *Handle) pending() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}
