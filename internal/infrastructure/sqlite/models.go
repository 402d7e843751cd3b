package sqlite

import (
	"database/sql"
	"math"
	"strings"

	domainreg "github.com/fkid009/MLflow-study/internal/domain/registry"
	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
)

// aliasSeparator joins aliases in GROUP_CONCAT; matches char(31) in SQL.
const aliasSeparator = "\x1f"

// RegisteredModelModel represents a row of registered_models.
// Timestamps are Unix milliseconds.
type RegisteredModelModel struct {
	Name            string
	Description     string
	CreationTime    int64
	LastUpdatedTime int64
}

func toRegisteredModelModel(m *domainreg.RegisteredModel) *RegisteredModelModel {
	return &RegisteredModelModel{
		Name:            m.Name(),
		Description:     m.Description(),
		CreationTime:    toMillis(m.CreatedAt()),
		LastUpdatedTime: toMillis(m.LastUpdatedAt()),
	}
}

func (m *RegisteredModelModel) toDomain() *domainreg.RegisteredModel {
	return domainreg.ReconstituteRegisteredModel(m.Name, m.Description, fromMillis(m.CreationTime), fromMillis(m.LastUpdatedTime))
}

// ModelVersionModel represents a row of model_versions joined with its aliases.
type ModelVersionModel struct {
	Name            string
	Version         int
	Source          string
	RunID           string
	Description     string
	CurrentStage    string
	CreationTime    int64
	LastUpdatedTime int64
	Aliases         sql.NullString // aliasSeparator-joined from GROUP_CONCAT
}

func toModelVersionModel(v *domainreg.ModelVersion) *ModelVersionModel {
	return &ModelVersionModel{
		Name:            v.Name(),
		Version:         v.Version(),
		Source:          v.Source(),
		RunID:           v.RunID(),
		Description:     v.Description(),
		CurrentStage:    string(v.Stage()),
		CreationTime:    toMillis(v.CreatedAt()),
		LastUpdatedTime: toMillis(v.LastUpdatedAt()),
	}
}

func (m *ModelVersionModel) toDomain() *domainreg.ModelVersion {
	aliases := []string{}
	if m.Aliases.Valid && m.Aliases.String != "" {
		aliases = strings.Split(m.Aliases.String, aliasSeparator)
	}
	return domainreg.ReconstituteModelVersion(
		m.Name, m.Version, m.Source, m.RunID, m.Description,
		domainreg.Stage(m.CurrentStage), aliases,
		fromMillis(m.CreationTime), fromMillis(m.LastUpdatedTime),
	)
}

// ExperimentModel represents a row of experiments.
type ExperimentModel struct {
	ID               string
	Name             string
	ArtifactLocation string
	CreatedAt        int64
}

func (m *ExperimentModel) toDomain() *domaintrack.Experiment {
	return &domaintrack.Experiment{
		ID:               m.ID,
		Name:             m.Name,
		ArtifactLocation: m.ArtifactLocation,
		CreatedAt:        fromMillis(m.CreatedAt),
	}
}

// RunModel represents a row of runs. Params, tags and metrics live in
// their own tables and are attached after the scan.
type RunModel struct {
	ID           string
	ExperimentID string
	Name         string
	Status       string
	StartTime    int64
	EndTime      *int64 // nullable
	ArtifactURI  string
}

func toRunModel(r *domaintrack.Run) *RunModel {
	m := &RunModel{
		ID:           r.ID,
		ExperimentID: r.ExperimentID,
		Name:         r.Name,
		Status:       string(r.Status),
		StartTime:    toMillis(r.StartTime),
		ArtifactURI:  r.ArtifactURI,
	}
	if r.EndTime != nil {
		end := toMillis(*r.EndTime)
		m.EndTime = &end
	}
	return m
}

func (m *RunModel) toDomain() *domaintrack.Run {
	r := &domaintrack.Run{
		ID:           m.ID,
		ExperimentID: m.ExperimentID,
		Name:         m.Name,
		Status:       domaintrack.RunStatus(m.Status),
		StartTime:    fromMillis(m.StartTime),
		ArtifactURI:  m.ArtifactURI,
		Params:       map[string]string{},
		Metrics:      map[string]float64{},
		Tags:         map[string]string{},
	}
	if m.EndTime != nil {
		end := fromMillis(*m.EndTime)
		r.EndTime = &end
	}
	return r
}

// metricValue maps NaN to NULL since SQLite has no REAL NaN.
func metricValue(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func metricFromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
