package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// EnvOr returns the trimmed env value or def when empty.
func EnvOr(key, def string) string {
	v := strings.TrimSpace(strings.Trim(os.Getenv(key), `"`))
	if v == "" {
		return def
	}
	return v
}

// EnvIntOr returns the parsed int env value or def on empty/parse failure.
func EnvIntOr(key string, def int) int {
	n, err := strconv.Atoi(EnvOr(key, ""))
	if err != nil {
		return def
	}
	return n
}

// EnvFloatOr returns the parsed float env value or def on empty/parse failure.
func EnvFloatOr(key string, def float64) float64 {
	f, err := strconv.ParseFloat(EnvOr(key, ""), 64)
	if err != nil {
		return def
	}
	return f
}

// envSource reads overrides from a lookup function. Unlike the Env*Or helpers it keeps the
// first malformed value so that a typo fails startup instead of being ignored.
type envSource struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envSource) raw(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(strings.Trim(v, `"`))
	return v, v != ""
}

func (e *envSource) fail(key, v string, err error) {
	if e.err == nil {
		e.err = &types.ConfigurationError{Field: key, Reason: fmt.Sprintf("cannot parse %q: %v", v, err)}
	}
}

func (e *envSource) str(key string, dst *string) {
	if v, ok := e.raw(key); ok {
		*dst = v
	}
}

func (e *envSource) int(key string, dst *int) {
	if v, ok := e.raw(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envSource) uint64(key string, dst *uint64) {
	if v, ok := e.raw(key); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envSource) float(key string, dst *float64) {
	if v, ok := e.raw(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (e *envSource) bool(key string, dst *bool) {
	if v, ok := e.raw(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = b
	}
}

func (e *envSource) list(key string, dst *[]string) {
	if v, ok := e.raw(key); ok {
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		*dst = out
	}
}

// ApplyEnv overrides c from TREMOR_* variables read through lookup (os.LookupEnv in
// production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	e := &envSource{lookup: lookup}

	e.int("TREMOR_SIGNAL_LENGTH", &c.Signal.Length)
	e.float("TREMOR_SIGNAL_LOW_HZ", &c.Signal.LowHz)
	e.float("TREMOR_SIGNAL_HIGH_HZ", &c.Signal.HighHz)
	e.str("TREMOR_WAVELET", &c.Wavelet.Name)
	e.int("TREMOR_WAVELET_LEVELS", &c.Wavelet.Levels)

	e.float("TREMOR_SPLIT_TEST_FRACTION", &c.Split.TestFraction)
	e.float("TREMOR_SPLIT_VAL_FRACTION", &c.Split.ValFraction)
	e.uint64("TREMOR_SPLIT_SEED", &c.Split.Seed)

	e.str("TREMOR_AUGMENT_POLICY", &c.Augment.Policy)
	e.int("TREMOR_AUGMENT_VARIANTS", &c.Augment.Variants)
	e.float("TREMOR_AUGMENT_MIN_SHIFT", &c.Augment.MinShift)
	e.float("TREMOR_AUGMENT_MAX_SHIFT", &c.Augment.MaxShift)
	e.uint64("TREMOR_AUGMENT_SEED", &c.Augment.Seed)

	e.int("TREMOR_TRAIN_EPOCHS", &c.Train.Epochs)
	e.int("TREMOR_TRAIN_BATCH_SIZE", &c.Train.BatchSize)
	e.float("TREMOR_TRAIN_LEARNING_RATE", &c.Train.LearningRate)
	e.str("TREMOR_TRAIN_LOSS", &c.Train.Loss)
	e.int("TREMOR_TRAIN_PATIENCE", &c.Train.Patience)
	e.int("TREMOR_TRAIN_WORKERS", &c.Train.Workers)
	e.uint64("TREMOR_TRAIN_SEED", &c.Train.Seed)

	e.int("TREMOR_EVAL_YEAR", &c.Eval.Year)
	e.str("TREMOR_EVAL_LAYOUT", &c.Eval.Layout)

	e.str("TREMOR_DATA_DIR", &c.Corpus.DataDir)
	e.str("TREMOR_LABELS_FILE", &c.Corpus.LabelsFile)
	e.str("TREMOR_CATALOG_FILE", &c.Corpus.CatalogFile)
	e.int("TREMOR_WORKERS", &c.Corpus.Workers)
	e.str("TREMOR_LEDGER_PATH", &c.Corpus.LedgerPath)
	e.bool("TREMOR_PROGRESS", &c.Corpus.Progress)

	e.str("TREMOR_STORAGE_BACKEND", &c.Storage.Backend)
	e.str("TREMOR_STORAGE_ROOT", &c.Storage.Root)
	e.str("TREMOR_S3_BUCKET", &c.Storage.Bucket)
	e.str("TREMOR_S3_PREFIX", &c.Storage.Prefix)
	e.str("TREMOR_S3_REGION", &c.Storage.Region)
	e.str("TREMOR_S3_ENDPOINT", &c.Storage.Endpoint)
	e.str("TREMOR_S3_ACCESS_KEY", &c.Storage.AccessKey)
	e.str("TREMOR_S3_SECRET_KEY", &c.Storage.SecretKey)
	e.str("TREMOR_S3_ROLE_ARN", &c.Storage.RoleARN)
	e.bool("TREMOR_S3_FORCE_PATH_STYLE", &c.Storage.ForcePathStyle)

	e.str("TREMOR_PUBLISH_SINK", &c.Publish.Sink)
	e.list("TREMOR_KAFKA_BROKERS", &c.Publish.Brokers)
	e.str("TREMOR_KAFKA_TOPIC", &c.Publish.Topic)
	e.str("TREMOR_KAFKA_CLIENT_ID", &c.Publish.ClientID)
	e.list("TREMOR_KAFKA_CA_FILES", &c.Publish.CAFiles)
	e.str("TREMOR_KAFKA_SERVER_NAME", &c.Publish.ServerName)
	e.str("TREMOR_KAFKA_SASL_USER", &c.Publish.SASLUser)
	e.str("TREMOR_KAFKA_SASL_PASSWORD", &c.Publish.SASLPassword)
	e.str("TREMOR_KAFKA_SASL_MECHANISM", &c.Publish.SASLMechanism)

	e.str("TREMOR_LOG_LEVEL", &c.Log.Level)
	e.bool("TREMOR_LOG_DEVELOPMENT", &c.Log.Development)
	e.str("TREMOR_LOG_FILE", &c.Log.File)
	e.str("TREMOR_LOG_FORMAT", &c.Log.Format)

	return e.err
}
