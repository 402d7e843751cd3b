package registry

import (
	"sort"
	"time"
)

// RegisteredModel is a named family of model versions.
type RegisteredModel struct {
	name          string
	description   string
	createdAt     time.Time
	lastUpdatedAt time.Time
}

// NewRegisteredModel creates a RegisteredModel timestamped now.
func NewRegisteredModel(name, description string) *RegisteredModel {
	now := time.Now()
	return &RegisteredModel{
		name:          name,
		description:   description,
		createdAt:     now,
		lastUpdatedAt: now,
	}
}

// ReconstituteRegisteredModel recreates a RegisteredModel from persisted state.
func ReconstituteRegisteredModel(name, description string, createdAt, lastUpdatedAt time.Time) *RegisteredModel {
	return &RegisteredModel{
		name:          name,
		description:   description,
		createdAt:     createdAt,
		lastUpdatedAt: lastUpdatedAt,
	}
}

// Name returns the unique model name.
func (m *RegisteredModel) Name() string { return m.name }

// Description returns the free-form description.
func (m *RegisteredModel) Description() string { return m.description }

// CreatedAt returns when the model was registered.
func (m *RegisteredModel) CreatedAt() time.Time { return m.createdAt }

// LastUpdatedAt returns when the model or one of its versions last changed.
func (m *RegisteredModel) LastUpdatedAt() time.Time { return m.lastUpdatedAt }

// ModelVersion is one registered artifact of a RegisteredModel.
type ModelVersion struct {
	name          string
	version       int
	source        string
	runID         string
	description   string
	stage         Stage
	aliases       []string
	createdAt     time.Time
	lastUpdatedAt time.Time
}

// NewModelVersion creates a version in StageNone. The version number is
// assigned by the repository at insert time.
func NewModelVersion(name, source, runID, description string) *ModelVersion {
	now := time.Now()
	return &ModelVersion{
		name:          name,
		source:        source,
		runID:         runID,
		description:   description,
		stage:         StageNone,
		aliases:       []string{},
		createdAt:     now,
		lastUpdatedAt: now,
	}
}

// ReconstituteModelVersion recreates a ModelVersion from persisted state.
func ReconstituteModelVersion(
	name string,
	version int,
	source, runID, description string,
	stage Stage,
	aliases []string,
	createdAt, lastUpdatedAt time.Time,
) *ModelVersion {
	mv := &ModelVersion{
		name:          name,
		version:       version,
		source:        source,
		runID:         runID,
		description:   description,
		stage:         stage,
		createdAt:     createdAt,
		lastUpdatedAt: lastUpdatedAt,
	}
	mv.SetAliases(aliases)
	return mv
}

// Name returns the owning RegisteredModel name.
func (v *ModelVersion) Name() string { return v.name }

// Version returns the 1-based version number.
func (v *ModelVersion) Version() int { return v.version }

// Source returns the artifact URI the version was registered from.
func (v *ModelVersion) Source() string { return v.source }

// RunID returns the producing run id, or "" if unknown.
func (v *ModelVersion) RunID() string { return v.runID }

// Description returns the version description.
func (v *ModelVersion) Description() string { return v.description }

// Stage returns the current lifecycle stage.
func (v *ModelVersion) Stage() Stage { return v.stage }

// Aliases returns a sorted copy of the aliases bound to this version.
func (v *ModelVersion) Aliases() []string {
	out := make([]string, len(v.aliases))
	copy(out, v.aliases)
	return out
}

// CreatedAt returns the creation timestamp.
func (v *ModelVersion) CreatedAt() time.Time { return v.createdAt }

// CreationTimestamp returns the creation time in epoch milliseconds.
func (v *ModelVersion) CreationTimestamp() int64 { return v.createdAt.UnixMilli() }

// LastUpdatedAt returns the last modification timestamp.
func (v *ModelVersion) LastUpdatedAt() time.Time { return v.lastUpdatedAt }

// SetVersion assigns the version number. Only repositories call this.
func (v *ModelVersion) SetVersion(n int) { v.version = n }

// SetStage changes the stage and bumps the update time.
func (v *ModelVersion) SetStage(stage Stage) {
	v.stage = stage
	v.lastUpdatedAt = time.Now()
}

// SetAliases replaces the alias set, keeping it sorted and never nil.
func (v *ModelVersion) SetAliases(aliases []string) {
	v.aliases = make([]string, len(aliases))
	copy(v.aliases, aliases)
	sort.Strings(v.aliases)
}

// HasAlias reports whether alias is bound to this version.
func (v *ModelVersion) HasAlias(alias string) bool {
	for _, a := range v.aliases {
		if a == alias {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate repository state.
func (v *ModelVersion) Clone() *ModelVersion {
	c := *v
	c.aliases = v.Aliases()
	return &c
}

// CreateVersionInput is the request to register a new version.
type CreateVersionInput struct {
	Name        string `json:"name" validate:"required,max=256"`
	Source      string `json:"source" validate:"required,artifact_uri"`
	RunID       string `json:"run_id,omitempty"`
	Description string `json:"description,omitempty" validate:"max=5000"`
}

// StageTransition is the outcome of a stage change. Archived lists the
// versions moved to StageArchived as a side effect, in version order.
type StageTransition struct {
	Version  *ModelVersion
	Archived []*ModelVersion
}
