package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	parquet "github.com/parquet-go/parquet-go"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// FeatureRow is one example in a partition table. Rows carry the file, the label and the
// features together so the three arrays cannot drift apart.
type FeatureRow struct {
	File        string    `parquet:"file"`
	ArrivalTime float64   `parquet:"arrival_time"`
	Parent      string    `parquet:"parent"`
	Features    []float64 `parquet:"features,list"`
}

// FeatureStore writes and reads per-partition parquet tables through an ObjectStore.
type FeatureStore struct {
	objects     ObjectStore
	prefix      string
	compression string
}

// NewFeatureStore returns a store writing under prefix with the named parquet compression
// (snappy, zstd, gzip or none).
func NewFeatureStore(objects ObjectStore, prefix, compression string) *FeatureStore {
	return &FeatureStore{objects: objects, prefix: strings.Trim(prefix, "/"), compression: compression}
}

// Key returns the object key of a partition table.
func (s *FeatureStore) Key(name types.PartitionName) string {
	if s.prefix == "" {
		return string(name) + ".parquet"
	}
	return s.prefix + "/" + string(name) + ".parquet"
}

// Save writes the partition table in example order.
func (s *FeatureStore) Save(ctx context.Context, p types.Partition) error {
	rows := make([]FeatureRow, len(p.Examples))
	for i, ex := range p.Examples {
		rows[i] = FeatureRow{File: ex.ID, ArrivalTime: ex.Label, Parent: ex.Parent, Features: ex.Features}
	}
	data, err := EncodeRows(rows, s.compression)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", p.Name, err)
	}
	return s.objects.Put(ctx, s.Key(p.Name), data)
}

// LoadRows reads a partition table.
func (s *FeatureStore) LoadRows(ctx context.Context, name types.PartitionName) ([]FeatureRow, error) {
	data, err := s.objects.Get(ctx, s.Key(name))
	if err != nil {
		return nil, err
	}
	return DecodeRows(data)
}

// Load returns the index-aligned features, labels and files of a partition.
func (s *FeatureStore) Load(ctx context.Context, name types.PartitionName) ([][]float64, []float64, []string, error) {
	rows, err := s.LoadRows(ctx, name)
	if err != nil {
		return nil, nil, nil, err
	}
	features := make([][]float64, len(rows))
	labels := make([]float64, len(rows))
	files := make([]string, len(rows))
	for i, r := range rows {
		features[i], labels[i], files[i] = r.Features, r.ArrivalTime, r.File
	}
	return features, labels, files, nil
}

// EncodeRows serialises rows as a parquet file.
func EncodeRows(rows []FeatureRow, compression string) ([]byte, error) {
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[FeatureRow](&buf, parquetCompression(compression))
	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeRows parses a parquet file written by EncodeRows.
func DecodeRows(data []byte) ([]FeatureRow, error) {
	r := parquet.NewGenericReader[FeatureRow](bytes.NewReader(data))
	defer r.Close()

	out := make([]FeatureRow, 0, r.NumRows())
	batch := make([]FeatureRow, 256)
	for {
		n, err := r.Read(batch)
		for i := 0; i < n; i++ {
			row := batch[i]
			row.Features = append([]float64(nil), row.Features...)
			out = append(out, row)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parquetCompression(name string) parquet.WriterOption {
	switch strings.ToLower(name) {
	case "zstd":
		return parquet.Compression(&parquet.Zstd)
	case "gzip", "gz":
		return parquet.Compression(&parquet.Gzip)
	case "none", "uncompressed":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		return parquet.Compression(&parquet.Snappy)
	}
}
