package main

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/joeydtaylor/tremor/pkg/builder"
)

type Window struct {
	Wave        builder.Waveform
	Conditioned []float64
	Features    builder.FeatureVector
}

func synthetic(i int, rng *rand.Rand) builder.Waveform {
	const fs = 100.0
	x := make([]float64, 8000)
	arrival := 10 + rng.Float64()*50
	for k := range x {
		t := float64(k) / fs
		x[k] = 0.05 * rng.NormFloat64()
		if t >= arrival {
			x[k] += math.Exp(-(t-arrival)/3) * math.Sin(2*math.Pi*6*(t-arrival))
		}
	}
	return builder.Waveform{ID: fmt.Sprintf("win-%03d", i), Samples: x, SamplingRate: fs, Start: time.Unix(0, 0).UTC()}
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := builder.DefaultConfig()
	logger := builder.NewLogger(builder.LoggerWithLevel("info"))
	defer func() { _ = logger.Flush() }()

	cond, err := builder.NewConditioner(cfg, logger)
	if err != nil {
		panic(err)
	}
	fe, err := builder.NewFeatureExtractor(cfg)
	if err != nil {
		panic(err)
	}

	meter := builder.NewMeter("conditioning", builder.MeterWithLogger(logger))
	sensor := builder.NewSensor(
		builder.SensorWithMeter[Window](meter),
		builder.SensorWithOnErrorFunc(func(c builder.ComponentMetadata, err error, w Window) {
			fmt.Printf("skipped %s: %v\n", w.Wave.ID, err)
		}),
	)

	condition := func(w Window) (Window, error) {
		x, err := cond.ConditionWaveform(w.Wave)
		w.Conditioned = x
		return w, err
	}
	featurize := func(w Window) (Window, error) {
		f, err := fe.Extract(w.Conditioned)
		w.Features = f
		return w, err
	}

	wire := builder.NewWire(
		ctx,
		builder.WireWithLogger[Window](logger),
		builder.WireWithSensor[Window](sensor),
		builder.WireWithConcurrencyControl[Window](16, 4),
		builder.WireWithTransformer(builder.NewTransformerSequence(condition, featurize)...),
	)
	if err := wire.Start(ctx); err != nil {
		panic(err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for w := range wire.GetOutputChannel() {
			fmt.Printf("%s: %d samples, %d features, first=%.4f\n", w.Wave.ID, len(w.Conditioned), len(w.Features), w.Features[0])
		}
	}()
	go func() {
		defer wg.Done()
		for range wire.GetErrorChannel() {
		}
	}()

	rng := rand.New(rand.NewPCG(1, 2))
	const total = 32
	meter.SetTotal(total)
	for i := 0; i < total; i++ {
		wave := synthetic(i, rng)
		if i == 7 {
			wave.SamplingRate = 0
		}
		if err := wire.Submit(ctx, Window{Wave: wave}); err != nil {
			fmt.Printf("submit: %v\n", err)
			break
		}
	}
	_ = wire.Stop()
	wg.Wait()
	meter.Close()

	r := meter.Report()
	fmt.Printf("processed=%d skipped=%d elapsed=%s\n", r.Processed, r.Skipped, r.Elapsed)
}
