package pipeline

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/joeydtaylor/tremor/pkg/internal/config"
	"github.com/joeydtaylor/tremor/pkg/internal/internallogger"
	"github.com/joeydtaylor/tremor/pkg/internal/publish"
	"github.com/joeydtaylor/tremor/pkg/internal/store"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// NewLogger builds the process logger from the log section, stamping every line with runID.
// A configured file gets its own JSON sink next to stdout.
func NewLogger(cfg config.Log, runID string) (*internallogger.ZapLoggerAdapter, error) {
	l := internallogger.NewLogger(
		internallogger.LoggerWithLevel(cfg.Level),
		internallogger.LoggerWithDevelopment(cfg.Development),
		internallogger.LoggerWithConsole(cfg.Format == "console"),
		internallogger.LoggerWithRunID(runID),
	)
	if cfg.File != "" {
		if err := l.AddSink("file", types.SinkConfig{Type: string(types.FileSink), Config: map[string]interface{}{"path": cfg.File}}); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// NewObjectStore opens the configured storage backend.
func NewObjectStore(ctx context.Context, cfg config.Storage, loggers ...types.Logger) (store.ObjectStore, error) {
	switch cfg.Backend {
	case "local":
		return store.NewLocalStore(cfg.Root)
	case "s3":
		var (
			cli store.S3API
			err error
		)
		if cfg.RoleARN != "" {
			cli, err = store.NewS3ClientAssumeRole(ctx, cfg.Region, cfg.RoleARN, "tremor", time.Hour, "", nil, cfg.Endpoint, cfg.ForcePathStyle)
		} else {
			cli, err = store.NewS3ClientStatic(ctx, cfg.Region, cfg.AccessKey, cfg.SecretKey, "", cfg.Endpoint, cfg.ForcePathStyle)
		}
		if err != nil {
			return nil, err
		}
		opts := []types.Option[*store.S3Store]{store.WithS3Logger(loggers...)}
		if cfg.SSE != "" {
			opts = append(opts, store.WithSSE(cfg.SSE, cfg.KMSKey))
		}
		return store.NewS3Store(cli, cfg.Bucket, cfg.Prefix, opts...)
	default:
		return nil, &types.ConfigurationError{Field: "storage.backend", Reason: "unknown backend " + cfg.Backend}
	}
}

// NewPublisher builds the configured pick sink. The "none" sink returns a nil Publisher.
func NewPublisher(cfg config.Publish, objects store.ObjectStore, runID string, loggers ...types.Logger) (publish.Publisher, error) {
	switch cfg.Sink {
	case "", "none":
		return nil, nil
	case "csv":
		return publish.NewCSVPublisher(objects, cfg.Key), nil
	case "kafka":
		sec := publish.Security{
			CAFiles:    cfg.CAFiles,
			ServerName: cfg.ServerName,
			User:       cfg.SASLUser,
			Password:   cfg.SASLPassword,
			Mechanism:  cfg.SASLMechanism,
			ClientID:   cfg.ClientID,
		}
		var transport *kafka.Transport
		if sec.Enabled() {
			t, err := sec.Transport()
			if err != nil {
				return nil, &types.ConfigurationError{Field: "publish", Reason: err.Error()}
			}
			transport = t
		}
		kp, err := publish.NewKafkaPublisher(publish.NewKafkaWriter(cfg.Brokers, cfg.Topic, transport),
			publish.WithRunID(runID), publish.WithLogger(loggers...))
		if err != nil {
			return nil, err
		}
		return kp, nil
	default:
		return nil, &types.ConfigurationError{Field: "publish.sink", Reason: "unknown sink " + cfg.Sink}
	}
}
