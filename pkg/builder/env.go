package builder

import "github.com/joeydtaylor/tremor/pkg/internal/config"

// EnvOr returns the trimmed env value or def when empty.
func EnvOr(key, def string) string { return config.EnvOr(key, def) }

// EnvIntOr returns the parsed int env value or def on empty/parse failure.
func EnvIntOr(key string, def int) int { return config.EnvIntOr(key, def) }

// EnvFloatOr returns the parsed float env value or def on empty/parse failure.
func EnvFloatOr(key string, def float64) float64 { return config.EnvFloatOr(key, def) }
