// Package publish delivers final absolute picks to downstream consumers, either as a CSV
// deliverable in an object store or as one Kafka message per pick.
package publish

import (
	"bytes"
	"context"
	"fmt"

	"github.com/joeydtaylor/tremor/pkg/internal/store"
)

// Publisher delivers picks.
type Publisher interface {
	Publish(ctx context.Context, rows []store.DeliverableRow) error
	Close() error
}

// CSVPublisher writes the file,lec_p deliverable to a single object.
type CSVPublisher struct {
	objects store.ObjectStore
	key     string
}

// NewCSVPublisher writes to key in objects.
func NewCSVPublisher(objects store.ObjectStore, key string) *CSVPublisher {
	return &CSVPublisher{objects: objects, key: key}
}

// Publish replaces the deliverable with rows.
func (p *CSVPublisher) Publish(ctx context.Context, rows []store.DeliverableRow) error {
	var buf bytes.Buffer
	if err := store.WriteDeliverable(&buf, rows); err != nil {
		return fmt.Errorf("publish: encode deliverable: %w", err)
	}
	return p.objects.Put(ctx, p.key, buf.Bytes())
}

func (p *CSVPublisher) Close() error { return nil }
