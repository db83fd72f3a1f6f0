package builder

import (
	"github.com/joeydtaylor/tremor/pkg/internal/codec"
)

type Compression = codec.Compression

const (
	CompressNone   = codec.CompressNone
	CompressGzip   = codec.CompressGzip
	CompressSnappy = codec.CompressSnappy
	CompressZstd   = codec.CompressZstd
	CompressBrotli = codec.CompressBrotli
	CompressLZ4    = codec.CompressLZ4
)

// ParseCompression maps a name such as "zstd" to its Compression.
func ParseCompression(name string) (Compression, error) {
	return codec.ParseCompression(name)
}

// NewJSONEncoder creates a new JSONEncoder.
func NewJSONEncoder[T any]() *codec.JSONEncoder[T] {
	return codec.NewJSONEncoder[T]()
}

// NewJSONDecoder creates a new JSONDecoder.
func NewJSONDecoder[T any]() *codec.JSONDecoder[T] {
	return codec.NewJSONDecoder[T]()
}

// NewWaveformCodec creates the binary waveform file codec.
func NewWaveformCodec() *codec.WaveformCodec {
	return codec.NewWaveformCodec()
}

// NewCheckpointCodec creates a checkpoint codec compressing payloads with c.
func NewCheckpointCodec(c Compression) *codec.CheckpointCodec {
	return codec.NewCheckpointCodec(c)
}
