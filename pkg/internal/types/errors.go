package types

import (
	"errors"
	"fmt"
)

// SkipKind classifies why an item was excluded from a batch.
type SkipKind string

const (
	ReadFailure     SkipKind = "read_failure"
	FilterError     SkipKind = "filter_error"
	LabelMismatch   SkipKind = "label_mismatch"
	LabelOutOfRange SkipKind = "label_out_of_range"
	ShiftRejected   SkipKind = "shift_rejected"
)

// SkipError marks a per-item failure that excludes the item from all aligned artifacts
// without aborting the batch.
type SkipError struct {
	Kind SkipKind
	ID   string
	Err  error
}

func (e *SkipError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.ID)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.ID, e.Err)
}

func (e *SkipError) Unwrap() error { return e.Err }

// NewSkip builds a SkipError.
func NewSkip(kind SkipKind, id string, err error) *SkipError {
	return &SkipError{Kind: kind, ID: id, Err: err}
}

// AsSkip classifies err. Errors that are not SkipErrors are reported as read failures,
// the most common cause of an unexpected per-item error.
func AsSkip(id string, err error) *SkipError {
	if err == nil {
		return nil
	}
	var se *SkipError
	if errors.As(err, &se) {
		if se.ID == "" {
			return &SkipError{Kind: se.Kind, ID: id, Err: se.Err}
		}
		return se
	}
	return &SkipError{Kind: ReadFailure, ID: id, Err: err}
}

// ConfigurationError reports a missing or invalid setting. It is fatal at startup.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}
