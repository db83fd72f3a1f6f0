// Package logschema names the fields of tremor's JSON log lines so that batch reports, skips
// and training progress can be queried across runs.
package logschema

import (
	"encoding/json"
	"fmt"
)

const (
	SchemaID    = "tremor.log.v1"
	FieldSchema = "log_schema"
)

// Envelope fields written by the encoder.
const (
	FieldTimestamp = "ts"
	FieldLevel     = "level"
	FieldMessage   = "msg"
	FieldLogger    = "logger"
	FieldCaller    = "caller"
	FieldStack     = "stack"
)

// Context fields written by components.
const (
	FieldComponent = "component"
	FieldEvent     = "event"
	FieldResult    = "result"
	FieldError     = "error"
	FieldSource    = "source"
	FieldKind      = "kind"
	FieldRunID     = "run_id"
	FieldEpoch     = "epoch"
	FieldPartition = "partition"
	FieldReport    = "report"
	FieldExtra     = "extra"
)

// Result values.
const (
	ResultSuccess = "SUCCESS"
	ResultSkip    = "SKIP"
	ResultFailure = "FAILURE"
)

// Required lists the fields every tremor log line carries.
var Required = []string{FieldSchema, FieldTimestamp, FieldLevel, FieldMessage}

// LogRecord is a decoded log line.
type LogRecord map[string]interface{}

// ParseRecord decodes one JSON log line and checks its schema and required fields.
func ParseRecord(line []byte) (LogRecord, error) {
	var rec LogRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, fmt.Errorf("logschema: %w", err)
	}
	for _, f := range Required {
		if _, ok := rec[f]; !ok {
			return nil, fmt.Errorf("logschema: missing field %q", f)
		}
	}
	if rec[FieldSchema] != SchemaID {
		return nil, fmt.Errorf("logschema: unexpected schema %v", rec[FieldSchema])
	}
	return rec, nil
}

// String returns a string field, or "" when absent or not a string.
func (r LogRecord) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Component returns the component type of the line, if present.
func (r LogRecord) Component() string {
	c, _ := r[FieldComponent].(map[string]interface{})
	s, _ := c["type"].(string)
	return s
}
