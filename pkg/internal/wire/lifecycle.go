package wire

import (
	"context"
	"sync/atomic"
)

// Start launches the worker pool. Calling Start on a running wire is a no-op.
func (w *Wire[T]) Start(ctx context.Context) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if !atomic.CompareAndSwapInt32(&w.started, 0, 1) {
		return nil
	}

	w.notifyStart()

	for i := 0; i < w.maxConcurrency; i++ {
		w.wg.Add(1)
		go w.worker()
	}
	return nil
}

// Stop closes the input, waits for in-flight elements to be emitted and then closes the
// output and error channels. Callers must keep draining both channels until they close.
func (w *Wire[T]) Stop() error {
	w.stopOnce.Do(func() {
		w.closeLock.Lock()
		w.isClosed = true
		close(w.inChan)
		w.closeLock.Unlock()

		if atomic.LoadInt32(&w.started) == 1 {
			w.wg.Wait()
			w.notifyComplete()
		}
		close(w.outputChan)
		close(w.errorChan)
		w.cancel()
		atomic.StoreInt32(&w.started, 0)
	})
	return nil
}
