package trainer

import (
	"bytes"
	"context"

	"github.com/joeydtaylor/tremor/pkg/internal/codec"
	"github.com/joeydtaylor/tremor/pkg/internal/store"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// CheckpointStore persists the best checkpoint of a run.
type CheckpointStore interface {
	Save(ctx context.Context, c types.Checkpoint) error
	Load(ctx context.Context) (types.Checkpoint, error)
}

// ObjectCheckpointStore writes checkpoints to a single key of an object store.
type ObjectCheckpointStore struct {
	objects store.ObjectStore
	key     string
	codec   *codec.CheckpointCodec
}

// NewCheckpointStore returns a store writing key with the given blob compression.
func NewCheckpointStore(objects store.ObjectStore, key string, compression codec.Compression) *ObjectCheckpointStore {
	return &ObjectCheckpointStore{objects: objects, key: key, codec: codec.NewCheckpointCodec(compression)}
}

// Key returns the object key.
func (s *ObjectCheckpointStore) Key() string { return s.key }

func (s *ObjectCheckpointStore) Save(ctx context.Context, c types.Checkpoint) error {
	var buf bytes.Buffer
	if err := s.codec.Encode(&buf, c); err != nil {
		return err
	}
	return s.objects.Put(ctx, s.key, buf.Bytes())
}

func (s *ObjectCheckpointStore) Load(ctx context.Context) (types.Checkpoint, error) {
	b, err := s.objects.Get(ctx, s.key)
	if err != nil {
		return types.Checkpoint{}, err
	}
	return s.codec.Decode(bytes.NewReader(b))
}
