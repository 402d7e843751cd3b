// Package registry provides the pure domain layer for the model registry.
//
// A RegisteredModel is a named, versioned family of model artifacts. Each
// ModelVersion carries a lifecycle Stage and may be bound to any number of
// aliases. The RegistryRepository port owns the concurrency-sensitive
// mutations: version numbering, archival on promotion, and alias rebinding.
package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStage is returned when a stage name is not recognized.
var ErrInvalidStage = errors.New("invalid stage")

// Stage is the lifecycle label of a ModelVersion.
// Any stage may transition to any other; there is no terminal stage.
type Stage string

const (
	// StageNone is the initial stage of every new version.
	StageNone Stage = "None"

	// StageStaging marks a version under pre-production validation.
	StageStaging Stage = "Staging"

	// StageProduction marks the version serving production traffic.
	StageProduction Stage = "Production"

	// StageArchived marks a retired version.
	StageArchived Stage = "Archived"
)

// AllStages lists every stage in lifecycle order.
var AllStages = []Stage{StageNone, StageStaging, StageProduction, StageArchived}

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// IsValid returns true if s is one of the four recognized stages.
func (s Stage) IsValid() bool {
	switch s {
	case StageNone, StageStaging, StageProduction, StageArchived:
		return true
	default:
		return false
	}
}

// IsSingletonHeld reports whether promoting into this stage may archive the
// versions currently holding it.
func (s Stage) IsSingletonHeld() bool {
	return s == StageStaging || s == StageProduction
}

// ParseStage converts a case-insensitive stage name into a Stage.
func ParseStage(s string) (Stage, error) {
	trimmed := strings.TrimSpace(s)
	for _, st := range AllStages {
		if strings.EqualFold(trimmed, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q (must be one of None, Staging, Production, Archived)", ErrInvalidStage, s)
}
