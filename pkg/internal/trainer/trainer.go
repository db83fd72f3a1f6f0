// Package trainer fits a model.Hybrid with mini-batch Adam, keeps the checkpoint with the
// lowest validation loss and stops early when validation stops improving.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/joeydtaylor/tremor/pkg/internal/model"
	"github.com/joeydtaylor/tremor/pkg/internal/nn"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/internal/utils"
)

// EpochStats summarises one epoch.
type EpochStats struct {
	Epoch     int
	TrainLoss float64
	ValLoss   float64
	Improved  bool
	Elapsed   time.Duration
}

// Result is the outcome of Fit.
type Result struct {
	RunID        string
	BestEpoch    int
	BestValLoss  float64
	Best         types.Checkpoint
	History      []EpochStats
	StoppedEarly bool
}

// Trainer runs training loops. A Trainer runs one Fit at a time.
type Trainer struct {
	componentMetadata types.ComponentMetadata
	cfg               Config
	checkpoints       CheckpointStore
	runID             string
	state             atomic.Int32

	loggers     []types.Logger
	loggersLock sync.Mutex
	sensors     []types.Sensor[EpochStats]
}

// NewTrainer validates cfg. checkpoints may be nil, in which case the best checkpoint is kept
// in memory only.
func NewTrainer(cfg Config, checkpoints CheckpointStore, options ...types.Option[*Trainer]) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Trainer{
		componentMetadata: types.ComponentMetadata{ID: utils.GenerateUniqueHash(), Type: "TRAINER"},
		cfg:               cfg,
		checkpoints:       checkpoints,
		runID:             uuid.NewString(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	return t, nil
}

// WithLogger attaches loggers.
func WithLogger(loggers ...types.Logger) types.Option[*Trainer] {
	return func(t *Trainer) {
		t.loggersLock.Lock()
		defer t.loggersLock.Unlock()
		for _, l := range loggers {
			if l != nil {
				t.loggers = append(t.loggers, l)
			}
		}
	}
}

// WithSensor attaches sensors notified at start, after every epoch and on completion.
func WithSensor(sensors ...types.Sensor[EpochStats]) types.Option[*Trainer] {
	return func(t *Trainer) {
		for _, s := range sensors {
			if s != nil {
				t.sensors = append(t.sensors, s)
			}
		}
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) types.Option[*Trainer] {
	return func(t *Trainer) {
		if id != "" {
			t.runID = id
		}
	}
}

// State returns the current lifecycle state.
func (t *Trainer) State() State { return State(t.state.Load()) }

// RunID returns the run identifier stamped on checkpoints.
func (t *Trainer) RunID() string { return t.runID }

// GetComponentMetadata returns the component metadata.
func (t *Trainer) GetComponentMetadata() types.ComponentMetadata { return t.componentMetadata }

func (t *Trainer) setState(s State) { t.state.Store(int32(s)) }

// Fit trains m on train, validating on val after every epoch. The feature scaler is fitted
// on train and installed on m first. On return m holds the parameters of the best epoch.
// Cancelling ctx stops training between batches; the partial result is returned with the
// context error.
func (t *Trainer) Fit(ctx context.Context, m *model.Hybrid, train, val []model.Sample) (Result, error) {
	t.setState(StateInit)
	defer t.setState(StateStopped)

	res := Result{RunID: t.runID, BestValLoss: math.Inf(1)}
	if len(train) == 0 || len(val) == 0 {
		return res, fmt.Errorf("trainer: need non-empty train and validation sets, got %d and %d", len(train), len(val))
	}
	loss, err := nn.LossByName(t.cfg.Loss, t.cfg.HuberDelta)
	if err != nil {
		return res, err
	}
	feats := make([][]float64, len(train))
	for i, s := range train {
		feats[i] = s.Features
	}
	scaler, err := model.FitScaler(feats)
	if err != nil {
		return res, err
	}
	if err := m.SetScaler(scaler); err != nil {
		return res, err
	}

	opt := nn.NewAdam(t.cfg.LearningRate)
	for _, s := range t.sensors {
		s.InvokeOnStart(t.componentMetadata)
	}
	t.notify(types.InfoLevel, "Training started", "event", "Fit", "result", "STARTED",
		"run_id", t.runID, "train", len(train), "val", len(val), "params", m.NumParams(), "loss", loss.Name())

	stale := 0
	batch := make([]model.Sample, 0, t.cfg.BatchSize)
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		start := time.Now()
		t.setState(StateTrainEpoch)

		order := t.order(epoch, len(train))
		var trainSum float64
		for lo := 0; lo < len(order); lo += t.cfg.BatchSize {
			if err := ctx.Err(); err != nil {
				return t.finish(m, res, err)
			}
			hi := min(lo+t.cfg.BatchSize, len(order))
			batch = batch[:0]
			for _, i := range order[lo:hi] {
				batch = append(batch, train[i])
			}
			l, grads := m.Gradients(batch, loss, t.cfg.Workers)
			opt.Step(m.Params(), grads)
			trainSum += l * float64(len(batch))
		}

		t.setState(StateValidateEpoch)
		stats := EpochStats{
			Epoch:     epoch,
			TrainLoss: trainSum / float64(len(train)),
			ValLoss:   m.MeanLoss(val, loss, t.cfg.Workers),
		}
		if stats.ValLoss < res.BestValLoss {
			stats.Improved = true
			res.BestValLoss, res.BestEpoch = stats.ValLoss, epoch
			res.Best = m.Checkpoint(t.runID, epoch, stats.ValLoss)
			if t.checkpoints != nil {
				if err := t.checkpoints.Save(ctx, res.Best); err != nil {
					return t.finish(m, res, fmt.Errorf("trainer: save checkpoint: %w", err))
				}
			}
			stale = 0
		} else {
			stale++
		}
		stats.Elapsed = time.Since(start)
		res.History = append(res.History, stats)

		for _, s := range t.sensors {
			s.InvokeOnElementProcessed(t.componentMetadata, stats)
		}
		t.notify(types.InfoLevel, "Epoch complete", "event", "Epoch", "result", "SUCCESS",
			"run_id", t.runID, "epoch", epoch, "train_loss", stats.TrainLoss, "val_loss", stats.ValLoss,
			"improved", stats.Improved, "elapsed", stats.Elapsed.String())

		if t.cfg.Patience > 0 && stale >= t.cfg.Patience {
			res.StoppedEarly = true
			break
		}
	}
	return t.finish(m, res, nil)
}

// finish restores the best parameters into m and reports completion.
func (t *Trainer) finish(m *model.Hybrid, res Result, cause error) (Result, error) {
	if res.BestEpoch > 0 {
		if err := m.Restore(res.Best); err != nil {
			cause = errors.Join(cause, err)
		}
	}
	for _, s := range t.sensors {
		s.InvokeOnComplete(t.componentMetadata)
	}
	result := "SUCCESS"
	if cause != nil {
		result = "STOPPED"
	}
	t.notify(types.InfoLevel, "Training finished", "event", "Fit", "result", result, "run_id", t.runID,
		"epochs", len(res.History), "best_epoch", res.BestEpoch, "best_val_loss", res.BestValLoss,
		"stopped_early", res.StoppedEarly, "error", cause)
	return res, cause
}

// order returns the visiting order of the training samples for epoch.
func (t *Trainer) order(epoch, n int) []int {
	if t.cfg.Shuffle {
		return rand.New(rand.NewPCG(t.cfg.Seed, uint64(epoch))).Perm(n)
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func (t *Trainer) notify(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	t.loggersLock.Lock()
	loggers := append([]types.Logger(nil), t.loggers...)
	t.loggersLock.Unlock()
	kv := append([]interface{}{"component", t.componentMetadata}, keysAndValues...)
	for _, l := range loggers {
		if l.GetLevel() > level {
			continue
		}
		switch level {
		case types.DebugLevel:
			l.Debug(msg, kv...)
		case types.WarnLevel:
			l.Warn(msg, kv...)
		case types.ErrorLevel:
			l.Error(msg, kv...)
		default:
			l.Info(msg, kv...)
		}
	}
}
