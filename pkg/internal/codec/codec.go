// Package codec holds the binary and text encodings tremor persists: the waveform container
// read by the reference corpus reader, the compressed checkpoint blob and NDJSON records.
package codec

import (
	"io"
)

// Decoder reads one value of type T from a stream.
type Decoder[T any] interface {
	Decode(io.Reader) (T, error)
}

// Encoder writes one value of type T to a stream.
type Encoder[T any] interface {
	Encode(io.Writer, T) error
}
