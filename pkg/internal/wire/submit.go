package wire

import (
	"context"
	"errors"
)

// ErrClosed is returned by Submit once Stop has been called.
var ErrClosed = errors.New("wire: submit on stopped wire")

// Submit enqueues an element, blocking until it is accepted or a context is done.
func (w *Wire[T]) Submit(ctx context.Context, elem T) error {
	w.closeLock.RLock()
	defer w.closeLock.RUnlock()
	if w.isClosed {
		return ErrClosed
	}

	select {
	case w.inChan <- elem:
		if w.observed() {
			w.notifySubmit(elem)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-w.ctx.Done():
		return w.ctx.Err()
	}
}
