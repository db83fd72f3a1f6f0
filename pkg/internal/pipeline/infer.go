package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/joeydtaylor/tremor/pkg/internal/meter"
	"github.com/joeydtaylor/tremor/pkg/internal/model"
	"github.com/joeydtaylor/tremor/pkg/internal/sensor"
	"github.com/joeydtaylor/tremor/pkg/internal/store"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/internal/utils"
	"github.com/joeydtaylor/tremor/pkg/internal/wire"
)

// inference is the element moved through the inference wire.
type inference struct {
	ID        string
	Wave      types.Waveform
	Waveform  []float64
	Features  []float64
	Predicted float64
}

// Infer predicts arrival times for unlabeled sources on corpus.workers workers. Sources that
// cannot be read or conditioned are skipped and counted. Rows are sorted by identity.
func (p *Pipeline) Infer(ctx context.Context, m *model.Hybrid, ids []string) ([]store.PredictionRow, types.BatchReport, error) {
	meterOpts := []types.Option[*meter.Meter]{
		meter.WithLogger(p.loggers...),
		meter.WithResourceSampling(p.sampleResources),
	}
	if p.progress != nil {
		meterOpts = append(meterOpts, meter.WithProgress(p.progress))
	}
	mt := meter.NewMeter("pipeline.infer", meterOpts...)
	ids = utils.SortedUnique(ids)
	mt.SetTotal(len(ids))

	s := sensor.NewSensor[inference](sensor.WithMeter[inference](mt))
	w := wire.NewWire[inference](ctx,
		wire.WithComponentMetadata[inference]("pipeline.infer", ""),
		wire.WithConcurrencyControl[inference](256, p.cfg.Corpus.Workers),
		wire.WithLogger[inference](p.loggers...),
		wire.WithSensor[inference](s),
		wire.WithTransformer[inference](p.readSource(ctx), p.conditionSource, p.featurizeSource, predictWith(m)),
	)
	if err := w.Start(ctx); err != nil {
		mt.Close()
		return nil, mt.Report(), err
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		rows    []store.PredictionRow
		skipped int
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		for in := range w.GetOutputChannel() {
			mu.Lock()
			rows = append(rows, store.PredictionRow{File: in.ID, PredictedTime: in.Predicted})
			mu.Unlock()
		}
	}()
	go func() {
		defer wg.Done()
		for fail := range w.GetErrorChannel() {
			se := types.AsSkip(fail.Elem.ID, fail.Err)
			p.notify(types.DebugLevel, "Source skipped", "event", "Infer", "result", "SKIP",
				"source", fail.Elem.ID, "kind", string(se.Kind), "error", se.Err)
			mu.Lock()
			skipped++
			mu.Unlock()
		}
	}()

	var submitErr error
	for _, id := range ids {
		if err := w.Submit(ctx, inference{ID: id}); err != nil {
			submitErr = err
			break
		}
	}
	_ = w.Stop()
	wg.Wait()
	mt.Close()
	report := mt.Report()

	if submitErr != nil {
		return nil, report, submitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}
	if len(rows)+skipped != len(ids) {
		return nil, report, fmt.Errorf("pipeline: %d of %d sources produced no outcome", len(ids)-len(rows)-skipped, len(ids))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].File < rows[j].File })
	return rows, report, nil
}

func (p *Pipeline) readSource(ctx context.Context) types.Transformer[inference] {
	return func(in inference) (inference, error) {
		w, err := p.reader.Read(ctx, in.ID)
		if err != nil {
			return in, types.NewSkip(types.ReadFailure, in.ID, err)
		}
		in.Wave = w
		return in, nil
	}
}

func (p *Pipeline) conditionSource(in inference) (inference, error) {
	x, err := p.conditioner.ConditionWaveform(in.Wave)
	if err != nil {
		return in, err
	}
	in.Waveform, in.Wave.Samples = x, nil
	return in, nil
}

func (p *Pipeline) featurizeSource(in inference) (inference, error) {
	f, err := p.features.Extract(in.Waveform)
	if err != nil {
		return in, types.NewSkip(types.FilterError, in.ID, err)
	}
	in.Features = f
	return in, nil
}

func predictWith(m *model.Hybrid) types.Transformer[inference] {
	return func(in inference) (inference, error) {
		in.Predicted = m.Predict(in.Waveform, in.Features)
		return in, nil
	}
}
