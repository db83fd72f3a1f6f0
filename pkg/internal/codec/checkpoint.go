package codec

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// Checkpoint blob layout: magic "TRMK" | format version uint16 | compression uint8 |
// payload length uint32 | compressed gob payload.
const (
	checkpointMagic  = "TRMK"
	checkpointFormat = 1
)

// CheckpointCodec serialises types.Checkpoint with an optional compression algorithm.
type CheckpointCodec struct {
	compression Compression
}

// NewCheckpointCodec returns a codec that compresses new blobs with c. Decoding accepts any
// supported algorithm.
func NewCheckpointCodec(c Compression) *CheckpointCodec {
	return &CheckpointCodec{compression: c}
}

// Encode writes ckpt to w.
func (c *CheckpointCodec) Encode(w io.Writer, ckpt types.Checkpoint) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(ckpt); err != nil {
		return fmt.Errorf("codec: encode checkpoint: %w", err)
	}
	data, err := compressData(payload.Bytes(), c.compression)
	if err != nil {
		return fmt.Errorf("codec: compress checkpoint (%s): %w", c.compression, err)
	}

	if _, err := io.WriteString(w, checkpointMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(checkpointFormat)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(c.compression)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Decode reads a checkpoint blob from r.
func (c *CheckpointCodec) Decode(r io.Reader) (types.Checkpoint, error) {
	var ckpt types.Checkpoint

	magic := make([]byte, len(checkpointMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return ckpt, err
	}
	if string(magic) != checkpointMagic {
		return ckpt, ErrBadMagic
	}
	var format uint16
	if err := binary.Read(r, binary.LittleEndian, &format); err != nil {
		return ckpt, err
	}
	if format != checkpointFormat {
		return ckpt, fmt.Errorf("codec: unsupported checkpoint format %d", format)
	}
	var algo uint8
	if err := binary.Read(r, binary.LittleEndian, &algo); err != nil {
		return ckpt, err
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return ckpt, err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return ckpt, err
	}
	raw, err := decompressData(data, Compression(algo))
	if err != nil {
		return ckpt, fmt.Errorf("codec: decompress checkpoint (%s): %w", Compression(algo), err)
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&ckpt); err != nil {
		return ckpt, fmt.Errorf("codec: decode checkpoint: %w", err)
	}
	if ckpt.Version != types.CheckpointVersion {
		return ckpt, fmt.Errorf("codec: unsupported checkpoint version %d", ckpt.Version)
	}
	return ckpt, nil
}
