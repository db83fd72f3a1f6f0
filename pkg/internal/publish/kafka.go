package publish

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/joeydtaylor/tremor/pkg/internal/codec"
	"github.com/joeydtaylor/tremor/pkg/internal/store"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/internal/utils"
)

// Pick is the Kafka message body for one absolute arrival.
type Pick struct {
	File        string    `json:"file"`
	LecP        float64   `json:"lec_p"`
	RunID       string    `json:"run_id,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// MessageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter returns a synchronous, fully acknowledged writer hashing on the message key
// so every pick for a file lands on the same partition. A nil transport uses kafka-go's default.
func NewKafkaWriter(brokers []string, topic string, transport *kafka.Transport) *kafka.Writer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           200 * time.Millisecond,
		BatchBytes:             int64(1 << 20),
		BatchSize:              1000,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	if transport != nil {
		w.Transport = transport
	}
	return w
}

// KafkaPublisher produces one NDJSON message per pick keyed by file.
type KafkaPublisher struct {
	componentMetadata types.ComponentMetadata
	writer            MessageWriter
	encoder           *codec.JSONEncoder[Pick]
	runID             string
	batchSize         int
	now               func() time.Time
	loggers           []types.Logger
}

// NewKafkaPublisher wraps w.
func NewKafkaPublisher(w MessageWriter, options ...types.Option[*KafkaPublisher]) (*KafkaPublisher, error) {
	if w == nil {
		return nil, fmt.Errorf("publish: kafka writer is required")
	}
	p := &KafkaPublisher{
		componentMetadata: types.ComponentMetadata{ID: utils.GenerateUniqueHash(), Type: "KAFKA_PUBLISHER"},
		writer:            w,
		encoder:           codec.NewJSONEncoder[Pick](),
		batchSize:         500,
		now:               func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// WithRunID stamps messages with the training run that produced them.
func WithRunID(id string) types.Option[*KafkaPublisher] {
	return func(p *KafkaPublisher) { p.runID = id }
}

// WithBatchSize sets how many messages are written per call.
func WithBatchSize(n int) types.Option[*KafkaPublisher] {
	return func(p *KafkaPublisher) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithLogger attaches loggers.
func WithLogger(loggers ...types.Logger) types.Option[*KafkaPublisher] {
	return func(p *KafkaPublisher) {
		for _, l := range loggers {
			if l != nil {
				p.loggers = append(p.loggers, l)
			}
		}
	}
}

// Publish writes rows in batches, in order.
func (p *KafkaPublisher) Publish(ctx context.Context, rows []store.DeliverableRow) error {
	now := p.now()
	msgs := make([]kafka.Message, 0, min(len(rows), p.batchSize))
	flush := func() error {
		if len(msgs) == 0 {
			return nil
		}
		if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("publish: write %d messages: %w", len(msgs), err)
		}
		msgs = msgs[:0]
		return nil
	}
	for _, r := range rows {
		var buf bytes.Buffer
		if err := p.encoder.Encode(&buf, Pick{File: r.File, LecP: r.LecP, RunID: p.runID, PublishedAt: now}); err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(r.File),
			Value:   buf.Bytes(),
			Headers: []kafka.Header{{Key: "content-type", Value: []byte("application/x-ndjson")}},
		})
		if len(msgs) == p.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	for _, l := range p.loggers {
		l.Info("Picks published", "component", p.componentMetadata, "event", "Publish", "result", "SUCCESS",
			"picks", len(rows), "run_id", p.runID)
	}
	return nil
}

// Close closes the underlying writer.
func (p *KafkaPublisher) Close() error { return p.writer.Close() }
