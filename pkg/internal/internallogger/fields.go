package internallogger

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/logschema"
)

type componentObject types.ComponentMetadata

func (c componentObject) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", c.ID)
	enc.AddString("type", c.Type)
	if c.Name != "" {
		enc.AddString("name", c.Name)
	}
	return nil
}

type reportObject types.BatchReport

func (r reportObject) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("component", r.Component)
	enc.AddInt("submitted", r.Submitted)
	enc.AddInt("processed", r.Processed)
	enc.AddInt("skipped", r.Skipped)
	enc.AddInt("resumed", r.Resumed)
	enc.AddDuration("elapsed", r.Elapsed)
	if len(r.SkipReasons) > 0 {
		return enc.AddObject("skip_reasons", skipObject(r.SkipReasons))
	}
	return nil
}

type skipObject map[types.SkipKind]int

func (s skipObject) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	kinds := make([]string, 0, len(s))
	for k := range s {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		enc.AddInt(k, s[types.SkipKind(k)])
	}
	return nil
}

// toField renders one key/value pair. Component metadata and batch reports become nested
// objects and errors use zap's error encoding.
func toField(key string, value interface{}) zap.Field {
	switch v := value.(type) {
	case types.ComponentMetadata:
		return zap.Object(key, componentObject(v))
	case *types.ComponentMetadata:
		if v == nil {
			return zap.Skip()
		}
		return zap.Object(key, componentObject(*v))
	case types.BatchReport:
		return zap.Object(key, reportObject(v))
	case types.SkipKind:
		return zap.String(key, string(v))
	case error:
		return zap.NamedError(key, v)
	default:
		return zap.Any(key, v)
	}
}

// pairFields converts alternating keys and values. Non-string keys are printed; a trailing
// value without a key is kept under the extra field.
func pairFields(keysAndValues []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2+1)
	i := 0
	for ; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields = append(fields, toField(key, keysAndValues[i+1]))
	}
	if i < len(keysAndValues) {
		fields = append(fields, zap.Any(logschema.FieldExtra, keysAndValues[i]))
	}
	return fields
}

func mapFields(fields map[string]interface{}) []zap.Field {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, toField(k, fields[k]))
	}
	return out
}
