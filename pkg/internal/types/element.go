package types

// ElementError couples a processing error with the element that produced it.
type ElementError[T any] struct {
	Err  error // The error encountered during the processing of the element.
	Elem T     // The element associated with the error.
}
