package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned by single-record lookups for an unknown employee.
	ErrNotFound = errors.New("employee not found")
	// ErrBlobNotFound is returned by a BlobStore for a name that was never written.
	ErrBlobNotFound = errors.New("blob not found")
)

// TransportError is a network failure, a non-success response, or an empty
// answer from the directory or the text-generation backend.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

const (
	ValidationStageInput  = "input"
	ValidationStageOutput = "output"
)

// ValidationError reports suggestion input or output that does not match its schema.
type ValidationError struct {
	Stage  string
	Fields map[string]string
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("invalid suggestion %s: %v", e.Stage, e.Err)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" - "+e.Fields[k])
	}
	return fmt.Sprintf("invalid suggestion %s: %s", e.Stage, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
