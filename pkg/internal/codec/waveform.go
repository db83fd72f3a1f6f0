package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// Waveform container layout, little-endian:
//
//	magic "TRWF" | version uint16 | id length uint16 | id bytes |
//	sampling rate float64 | start unix nanos int64 | sample count uint32 | samples float64...
const (
	waveformMagic   = "TRWF"
	waveformVersion = 1
	maxWaveformLen  = 1 << 26
)

// ErrBadMagic is returned when a stream does not start with the expected container magic.
var ErrBadMagic = errors.New("codec: bad magic")

// WaveformCodec encodes and decodes types.Waveform in the binary waveform container.
type WaveformCodec struct{}

func NewWaveformCodec() *WaveformCodec {
	return &WaveformCodec{}
}

// Encode writes wave to w.
func (c *WaveformCodec) Encode(w io.Writer, wave types.Waveform) error {
	if len(wave.ID) > math.MaxUint16 {
		return fmt.Errorf("codec: waveform id too long (%d bytes)", len(wave.ID))
	}
	if len(wave.Samples) > maxWaveformLen {
		return fmt.Errorf("codec: waveform too long (%d samples)", len(wave.Samples))
	}
	if _, err := io.WriteString(w, waveformMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(waveformVersion)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(wave.ID))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, wave.ID); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, wave.SamplingRate); err != nil {
		return err
	}
	var startNanos int64
	if !wave.Start.IsZero() {
		startNanos = wave.Start.UnixNano()
	}
	if err := binary.Write(w, binary.LittleEndian, startNanos); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(wave.Samples))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, wave.Samples)
}

// Decode reads one waveform from r.
func (c *WaveformCodec) Decode(r io.Reader) (types.Waveform, error) {
	var wave types.Waveform

	magic := make([]byte, len(waveformMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return wave, err
	}
	if string(magic) != waveformMagic {
		return wave, ErrBadMagic
	}
	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return wave, err
	}
	if version != waveformVersion {
		return wave, fmt.Errorf("codec: unsupported waveform version %d", version)
	}

	var idLen uint16
	if err := binary.Read(r, binary.LittleEndian, &idLen); err != nil {
		return wave, err
	}
	id := make([]byte, idLen)
	if _, err := io.ReadFull(r, id); err != nil {
		return wave, err
	}
	wave.ID = string(id)

	if err := binary.Read(r, binary.LittleEndian, &wave.SamplingRate); err != nil {
		return wave, err
	}
	var startNanos int64
	if err := binary.Read(r, binary.LittleEndian, &startNanos); err != nil {
		return wave, err
	}
	if startNanos != 0 {
		wave.Start = time.Unix(0, startNanos).UTC()
	}

	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return wave, err
	}
	if n > maxWaveformLen {
		return wave, fmt.Errorf("codec: waveform sample count %d exceeds limit", n)
	}
	wave.Samples = make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, wave.Samples); err != nil {
		return wave, err
	}
	return wave, nil
}
