package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for errors.Is matching. The typed errors below match these.
var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrMetricNotFound = errors.New("metric not found")
	ErrTransientStore = errors.New("transient store error")
	ErrInvalidAlias   = errors.New("invalid alias")
	ErrInvalidInput   = errors.New("invalid input")
)

// NotFoundError is returned when a model, version, or alias does not exist.
// Stage is set when no version of the model holds the requested stage.
type NotFoundError struct {
	Name    string
	Version int
	Alias   string
	Stage   Stage
}

func (e *NotFoundError) Error() string {
	switch {
	case e.Stage != "":
		return fmt.Sprintf("no version of registered model %q in stage %s", e.Name, e.Stage)
	case e.Alias != "":
		return fmt.Sprintf("alias %q not found for registered model %q", e.Alias, e.Name)
	case e.Version > 0:
		return fmt.Sprintf("model version %d not found for registered model %q", e.Version, e.Name)
	default:
		return fmt.Sprintf("registered model %q not found", e.Name)
	}
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError is returned when a RegisteredModel name is taken.
type AlreadyExistsError struct {
	Name string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("registered model %q already exists", e.Name)
}

// Is reports whether target is ErrAlreadyExists.
func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// MetricNotFoundError is returned when no candidate run carries a usable value
// for the selection metric.
type MetricNotFoundError struct {
	MetricKey  string
	Candidates int
}

func (e *MetricNotFoundError) Error() string {
	if e.Candidates == 0 {
		return fmt.Sprintf("metric %q: no candidate runs", e.MetricKey)
	}
	return fmt.Sprintf("metric %q not found on any of %d finished candidate runs", e.MetricKey, e.Candidates)
}

// Is reports whether target is ErrMetricNotFound.
func (e *MetricNotFoundError) Is(target error) bool {
	return target == ErrMetricNotFound
}

// TransientStoreError wraps a store failure that may succeed on retry.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("%s: store unavailable: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTransientStore.
func (e *TransientStoreError) Is(target error) bool {
	return target == ErrTransientStore
}

// ValidationError reports rejected input fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range sortedKeys(e.Fields) {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsRetryable reports whether err is a TransientStoreError.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientStore)
}
