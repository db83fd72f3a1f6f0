// Package config holds the single configuration object passed to every pipeline stage.
// Values come from built-in defaults, then an optional YAML file, then TREMOR_* environment
// variables, and are checked by Validate before anything runs.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/joeydtaylor/tremor/pkg/internal/augment"
	"github.com/joeydtaylor/tremor/pkg/internal/codec"
	"github.com/joeydtaylor/tremor/pkg/internal/conditioner"
	"github.com/joeydtaylor/tremor/pkg/internal/features"
	"github.com/joeydtaylor/tremor/pkg/internal/model"
	"github.com/joeydtaylor/tremor/pkg/internal/publish"
	"github.com/joeydtaylor/tremor/pkg/internal/splitter"
	"github.com/joeydtaylor/tremor/pkg/internal/trainer"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

type Signal struct {
	Length int     `yaml:"length"`
	LowHz  float64 `yaml:"low_hz"`
	HighHz float64 `yaml:"high_hz"`
}

type Wavelet struct {
	Name   string `yaml:"name"`
	Levels int    `yaml:"levels"`
}

type Split struct {
	TestFraction float64 `yaml:"test_fraction"`
	ValFraction  float64 `yaml:"val_fraction"`
	Seed         uint64  `yaml:"seed"`
}

type Augment struct {
	Policy        string   `yaml:"policy"`
	FixedShift    float64  `yaml:"fixed_shift"`
	MinShift      float64  `yaml:"min_shift"`
	MaxShift      float64  `yaml:"max_shift"`
	Variants      int      `yaml:"variants"`
	AllowNegative bool     `yaml:"allow_negative"`
	Seed          uint64   `yaml:"seed"`
	Partitions    []string `yaml:"partitions"`
}

type Model struct {
	ConvChannels   []int  `yaml:"conv_channels"`
	ConvKernels    []int  `yaml:"conv_kernels"`
	PoolSize       int    `yaml:"pool_size"`
	TemporalEmbed  int    `yaml:"temporal_embed"`
	SpectralHidden int    `yaml:"spectral_hidden"`
	SpectralEmbed  int    `yaml:"spectral_embed"`
	FusionHidden   int    `yaml:"fusion_hidden"`
	InitSeed       uint64 `yaml:"init_seed"`
}

type Train struct {
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
	LearningRate float64 `yaml:"learning_rate"`
	Loss         string  `yaml:"loss"`
	HuberDelta   float64 `yaml:"huber_delta"`
	Patience     int     `yaml:"patience"`
	Shuffle      bool    `yaml:"shuffle"`
	Seed         uint64  `yaml:"seed"`
	Workers      int     `yaml:"workers"`
}

// Eval configures timestamp reconstruction. Year has no default: file names carry no year,
// so it must be supplied before absolute picks can be produced.
type Eval struct {
	Year   int    `yaml:"year"`
	Layout string `yaml:"layout"`
}

type Corpus struct {
	DataDir     string `yaml:"data_dir"`
	LabelsFile  string `yaml:"labels_file"`
	CatalogFile string `yaml:"catalog_file"`
	Extension   string `yaml:"extension"`
	Workers     int    `yaml:"workers"`
	LedgerPath  string `yaml:"ledger_path"`
	Progress    bool   `yaml:"progress"`
}

type Storage struct {
	Backend               string `yaml:"backend"` // local | s3
	Root                  string `yaml:"root"`
	Bucket                string `yaml:"bucket"`
	Prefix                string `yaml:"prefix"`
	Region                string `yaml:"region"`
	Endpoint              string `yaml:"endpoint"`
	AccessKey             string `yaml:"access_key"`
	SecretKey             string `yaml:"secret_key"`
	RoleARN               string `yaml:"role_arn"`
	ForcePathStyle        bool   `yaml:"force_path_style"`
	SSE                   string `yaml:"sse"`
	KMSKey                string `yaml:"kms_key"`
	TableCompression      string `yaml:"table_compression"`
	CheckpointCompression string `yaml:"checkpoint_compression"`
}

type Publish struct {
	Sink    string   `yaml:"sink"` // none | csv | kafka
	Key     string   `yaml:"key"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`

	ClientID      string   `yaml:"client_id"`
	CAFiles       []string `yaml:"ca_files"`
	ServerName    string   `yaml:"server_name"`
	SASLUser      string   `yaml:"sasl_user"`
	SASLPassword  string   `yaml:"sasl_password"`
	SASLMechanism string   `yaml:"sasl_mechanism"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
	Format      string `yaml:"format"` // json | console
}

// Config is the full pipeline configuration.
type Config struct {
	Signal  Signal  `yaml:"signal"`
	Wavelet Wavelet `yaml:"wavelet"`
	Split   Split   `yaml:"split"`
	Augment Augment `yaml:"augment"`
	Model   Model   `yaml:"model"`
	Train   Train   `yaml:"train"`
	Eval    Eval    `yaml:"eval"`
	Corpus  Corpus  `yaml:"corpus"`
	Storage Storage `yaml:"storage"`
	Publish Publish `yaml:"publish"`
	Log     Log     `yaml:"log"`
}

// Default returns the reference configuration.
func Default() Config {
	sig := conditioner.DefaultConfig()
	wav := features.DefaultConfig()
	spl := splitter.DefaultConfig()
	aug := augment.DefaultConfig()
	spec := model.DefaultSpec(sig.Length, wav.Dim())
	tr := trainer.DefaultConfig()
	return Config{
		Signal:  Signal{Length: sig.Length, LowHz: sig.LowHz, HighHz: sig.HighHz},
		Wavelet: Wavelet{Name: wav.Wavelet, Levels: wav.Levels},
		Split:   Split{TestFraction: spl.TestFraction, ValFraction: spl.ValFraction, Seed: spl.Seed},
		Augment: Augment{
			Policy: string(aug.Policy), FixedShift: aug.FixedShift, MinShift: aug.MinShift,
			MaxShift: aug.MaxShift, Variants: aug.Variants, Seed: aug.Seed,
			Partitions: []string{string(types.PartitionTrain)},
		},
		Model: Model{
			ConvChannels: spec.ConvChannels, ConvKernels: spec.ConvKernels, PoolSize: spec.PoolSize,
			TemporalEmbed: spec.TemporalEmbed, SpectralHidden: spec.SpectralHidden,
			SpectralEmbed: spec.SpectralEmbed, FusionHidden: spec.FusionHidden, InitSeed: spec.InitSeed,
		},
		Train: Train{
			Epochs: tr.Epochs, BatchSize: tr.BatchSize, LearningRate: tr.LearningRate, Loss: tr.Loss,
			HuberDelta: tr.HuberDelta, Patience: tr.Patience, Shuffle: tr.Shuffle, Seed: tr.Seed, Workers: tr.Workers,
		},
		Eval:    Eval{Layout: "0102150405"},
		Corpus:  Corpus{Extension: "mseed", Workers: runtime.NumCPU()},
		Storage: Storage{Backend: "local", Root: "artifacts", Region: "us-east-1", TableCompression: "snappy", CheckpointCompression: "zstd"},
		Publish: Publish{Sink: "csv", Key: "deliverable/picks.csv"},
		Log:     Log{Level: "info"},
	}
}

// Load reads path (if non-empty) over the defaults, applies the environment and validates.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := cfg.Merge(b); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Merge decodes YAML over c. Unknown keys are rejected.
func (c *Config) Merge(b []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return &types.ConfigurationError{Field: "yaml", Reason: err.Error()}
	}
	return nil
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) { return yaml.Marshal(c) }

// Validate checks every section, returning the first ConfigurationError.
func (c Config) Validate() error {
	if err := c.ConditionerConfig().Validate(); err != nil {
		return err
	}
	if _, err := features.NewExtractor(c.FeaturesConfig()); err != nil {
		return err
	}
	if err := c.SplitterConfig().Validate(); err != nil {
		return err
	}
	if err := c.AugmentConfig().Validate(); err != nil {
		return err
	}
	if err := model.ValidateSpec(c.ModelSpec()); err != nil {
		return err
	}
	if err := c.TrainerConfig().Validate(); err != nil {
		return err
	}
	if c.Eval.Year != 0 && (c.Eval.Year < 1900 || c.Eval.Year > 9999) {
		return &types.ConfigurationError{Field: "eval.year", Reason: fmt.Sprintf("must be within 1900-9999, got %d", c.Eval.Year)}
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return &types.ConfigurationError{Field: "log.format", Reason: fmt.Sprintf("unknown format %q", c.Log.Format)}
	}
	if c.Corpus.Workers < 1 {
		return &types.ConfigurationError{Field: "corpus.workers", Reason: "must be at least 1"}
	}
	switch c.Storage.Backend {
	case "local":
		if c.Storage.Root == "" {
			return &types.ConfigurationError{Field: "storage.root", Reason: "required for the local backend"}
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return &types.ConfigurationError{Field: "storage.bucket", Reason: "required for the s3 backend"}
		}
	default:
		return &types.ConfigurationError{Field: "storage.backend", Reason: fmt.Sprintf("unknown backend %q", c.Storage.Backend)}
	}
	if _, err := codec.ParseCompression(c.Storage.CheckpointCompression); err != nil {
		return &types.ConfigurationError{Field: "storage.checkpoint_compression", Reason: err.Error()}
	}
	switch c.Publish.Sink {
	case "none":
	case "csv":
		if c.Publish.Key == "" {
			return &types.ConfigurationError{Field: "publish.key", Reason: "required for the csv sink"}
		}
	case "kafka":
		if len(c.Publish.Brokers) == 0 || c.Publish.Topic == "" {
			return &types.ConfigurationError{Field: "publish.brokers", Reason: "the kafka sink needs brokers and a topic"}
		}
		if c.Publish.SASLUser != "" {
			if _, err := publish.SASLSCRAM(c.Publish.SASLUser, c.Publish.SASLPassword, c.Publish.SASLMechanism); err != nil {
				return &types.ConfigurationError{Field: "publish.sasl_mechanism", Reason: err.Error()}
			}
		}
	default:
		return &types.ConfigurationError{Field: "publish.sink", Reason: fmt.Sprintf("unknown sink %q", c.Publish.Sink)}
	}
	return nil
}

// RequireYear checks that a reference year is set, for operations producing absolute times.
func (c Config) RequireYear() error {
	if c.Eval.Year == 0 {
		return &types.ConfigurationError{Field: "eval.year", Reason: "a reference year is required to reconstruct absolute times"}
	}
	return nil
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *types.ConfigurationError
	return errors.As(err, &ce)
}

func (c Config) ConditionerConfig() conditioner.Config {
	return conditioner.Config{Length: c.Signal.Length, LowHz: c.Signal.LowHz, HighHz: c.Signal.HighHz}
}

func (c Config) FeaturesConfig() features.Config {
	return features.Config{Wavelet: c.Wavelet.Name, Levels: c.Wavelet.Levels}
}

func (c Config) SplitterConfig() splitter.Config {
	return splitter.Config{TestFraction: c.Split.TestFraction, ValFraction: c.Split.ValFraction, Seed: c.Split.Seed}
}

func (c Config) AugmentConfig() augment.Config {
	parts := make([]types.PartitionName, len(c.Augment.Partitions))
	for i, p := range c.Augment.Partitions {
		parts[i] = types.PartitionName(p)
	}
	return augment.Config{
		Policy:        augment.Policy(c.Augment.Policy),
		FixedShift:    c.Augment.FixedShift,
		MinShift:      c.Augment.MinShift,
		MaxShift:      c.Augment.MaxShift,
		Variants:      c.Augment.Variants,
		AllowNegative: c.Augment.AllowNegative,
		Seed:          c.Augment.Seed,
		Partitions:    parts,
		WindowLength:  c.Signal.Length,
	}
}

// ModelSpec returns the architecture implied by the signal, wavelet and model sections.
func (c Config) ModelSpec() types.ModelSpec {
	return types.ModelSpec{
		InputLength:    c.Signal.Length,
		FeatureDim:     c.FeaturesConfig().Dim(),
		ConvChannels:   append([]int(nil), c.Model.ConvChannels...),
		ConvKernels:    append([]int(nil), c.Model.ConvKernels...),
		PoolSize:       c.Model.PoolSize,
		TemporalEmbed:  c.Model.TemporalEmbed,
		SpectralHidden: c.Model.SpectralHidden,
		SpectralEmbed:  c.Model.SpectralEmbed,
		FusionHidden:   c.Model.FusionHidden,
		InitSeed:       c.Model.InitSeed,
		Wavelet:        c.Wavelet.Name,
		WaveletLevels:  c.Wavelet.Levels,
	}
}

func (c Config) TrainerConfig() trainer.Config {
	return trainer.Config{
		Epochs: c.Train.Epochs, BatchSize: c.Train.BatchSize, LearningRate: c.Train.LearningRate,
		Loss: c.Train.Loss, HuberDelta: c.Train.HuberDelta, Patience: c.Train.Patience,
		Shuffle: c.Train.Shuffle, Seed: c.Train.Seed, Workers: c.Train.Workers,
	}
}
