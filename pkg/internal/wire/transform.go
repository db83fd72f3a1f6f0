package wire

import (
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

func (w *Wire[T]) worker() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case elem, ok := <-w.inChan:
			if !ok {
				return
			}
			w.processElement(elem)
		}
	}
}

func (w *Wire[T]) processElement(elem T) {
	out, err := w.transformElement(elem)
	if err != nil {
		w.notifyElementTransformError(elem, err)
		select {
		case w.errorChan <- types.ElementError[T]{Err: err, Elem: elem}:
		case <-w.ctx.Done():
		}
		return
	}

	if w.observed() {
		w.notifyElementProcessed(out)
	}
	select {
	case w.outputChan <- out:
	case <-w.ctx.Done():
	}
}

// transformElement runs the transformer chain, stopping at the first error.
func (w *Wire[T]) transformElement(elem T) (T, error) {
	for _, tf := range w.transformations {
		var err error
		elem, err = tf(elem)
		if err != nil {
			return elem, err
		}
	}
	return elem, nil
}
