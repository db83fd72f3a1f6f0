// Package wire provides the concurrent processing stage used for corpus-wide batch work.
//
// A Wire accepts elements through Submit, runs them through its transformer chain on a
// bounded pool of workers, and emits each result exactly once: successes on the output
// channel, failures on the error channel. A failing element never stops the wire, so a
// caller can collect a complete per-item outcome set for a batch.
package wire

import (
	"context"
	"sync"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/internal/utils"
)

// Wire is a worker-pool stage over elements of type T.
type Wire[T any] struct {
	componentMetadata types.ComponentMetadata
	ctx               context.Context
	cancel            context.CancelFunc

	inChan     chan T
	outputChan chan T
	errorChan  chan types.ElementError[T]

	transformations []types.Transformer[T]

	loggers     []types.Logger
	loggersLock sync.Mutex
	loggerCount int32

	sensors     []types.Sensor[T]
	sensorLock  sync.Mutex
	sensorCount int32

	maxBufferSize  int
	maxConcurrency int

	wg        sync.WaitGroup
	started   int32
	closeLock sync.RWMutex
	isClosed  bool
	stopOnce  sync.Once
}

// NewWire creates a Wire configured with the provided options. Defaults are a buffer of
// 1000 elements and 8 workers.
func NewWire[T any](ctx context.Context, options ...types.Option[types.Wire[T]]) types.Wire[T] {
	ctx, cancel := context.WithCancel(ctx)
	w := &Wire[T]{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "WIRE",
		},
		ctx:            ctx,
		cancel:         cancel,
		maxBufferSize:  1000,
		maxConcurrency: 8,
	}

	for _, opt := range options {
		opt(w)
	}

	w.allocateChannels()
	return w
}

func (w *Wire[T]) allocateChannels() {
	w.inChan = make(chan T, w.maxBufferSize)
	w.outputChan = make(chan T, w.maxBufferSize)
	w.errorChan = make(chan types.ElementError[T], w.maxBufferSize)
}
