package tracking

import (
	"errors"
	"fmt"
)

// Tracking errors
var (
	ErrExperimentNotFound = errors.New("experiment not found")
	ErrRunNotFound        = errors.New("run not found")
	ErrRunNotActive       = errors.New("run is not active")
	ErrParamConflict      = errors.New("param already logged with a different value")
	ErrInvalidFilter      = errors.New("invalid filter string")
	ErrInvalidOrderBy     = errors.New("invalid order_by clause")
	ErrEmptyName          = errors.New("name must not be empty")
)

// RunNotFoundError is returned when a run id does not resolve.
type RunNotFoundError struct {
	RunID string
}

func (e *RunNotFoundError) Error() string {
	return fmt.Sprintf("run %q not found", e.RunID)
}

// Is lets errors.Is match ErrRunNotFound.
func (e *RunNotFoundError) Is(target error) bool {
	return target == ErrRunNotFound
}

// ExperimentNotFoundError is returned when an experiment name or id does not resolve.
type ExperimentNotFoundError struct {
	Name string
	ID   string
}

func (e *ExperimentNotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("experiment %q not found", e.Name)
	}
	return fmt.Sprintf("experiment with id %q not found", e.ID)
}

// Is lets errors.Is match ErrExperimentNotFound.
func (e *ExperimentNotFoundError) Is(target error) bool {
	return target == ErrExperimentNotFound
}

// ParamConflictError reports an attempt to overwrite a logged param.
type ParamConflictError struct {
	RunID    string
	Key      string
	Existing string
	New      string
}

func (e *ParamConflictError) Error() string {
	return fmt.Sprintf("param %q of run %q already logged as %q, refusing %q", e.Key, e.RunID, e.Existing, e.New)
}

// Is lets errors.Is match ErrParamConflict.
func (e *ParamConflictError) Is(target error) bool {
	return target == ErrParamConflict
}
