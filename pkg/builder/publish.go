package builder

import (
	"crypto/tls"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"

	"github.com/joeydtaylor/tremor/pkg/internal/publish"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

type KafkaSecurity = publish.Security

type KafkaPublisher = publish.KafkaPublisher

type CSVPublisher = publish.CSVPublisher

type Pick = publish.Pick

// TLSFromCAFiles loads a TLS 1.2+ config trusting the first existing CA file.
func TLSFromCAFiles(candidates []string, serverName string) (*tls.Config, error) {
	return publish.TLSFromCAFiles(candidates, serverName)
}

// SASLSCRAM returns a SCRAM-SHA-256 or SCRAM-SHA-512 mechanism.
func SASLSCRAM(user, pass, mech string) (sasl.Mechanism, error) {
	return publish.SASLSCRAM(user, pass, mech)
}

// NewKafkaWriter returns a fully acknowledged, key-hashing writer. transport may be nil.
func NewKafkaWriter(brokers []string, topic string, transport *kafka.Transport) *kafka.Writer {
	return publish.NewKafkaWriter(brokers, topic, transport)
}

// NewKafkaPublisher publishes picks as keyed NDJSON messages through w.
func NewKafkaPublisher(w publish.MessageWriter, options ...types.Option[*KafkaPublisher]) (*KafkaPublisher, error) {
	return publish.NewKafkaPublisher(w, options...)
}

// KafkaPublisherWithRunID stamps messages with the producing run.
func KafkaPublisherWithRunID(id string) types.Option[*KafkaPublisher] {
	return publish.WithRunID(id)
}

// KafkaPublisherWithBatchSize sets how many messages are written per call.
func KafkaPublisherWithBatchSize(n int) types.Option[*KafkaPublisher] {
	return publish.WithBatchSize(n)
}

// KafkaPublisherWithLogger attaches loggers.
func KafkaPublisherWithLogger(loggers ...types.Logger) types.Option[*KafkaPublisher] {
	return publish.WithLogger(loggers...)
}

// NewCSVPublisher writes the deliverable table to key in objects.
func NewCSVPublisher(objects ObjectStore, key string) *CSVPublisher {
	return publish.NewCSVPublisher(objects, key)
}
