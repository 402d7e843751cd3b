// Package presentation converts domain records to their JSON and terminal
// representations for the CLI and the HTTP API.
package presentation

import (
	appreg "github.com/fkid009/MLflow-study/internal/application/registry"
	domainreg "github.com/fkid009/MLflow-study/internal/domain/registry"
	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
)

// RegisteredModelDTO represents a registered model for presentation
type RegisteredModelDTO struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	CreationTimestamp    int64  `json:"creation_timestamp"`
	LastUpdatedTimestamp int64  `json:"last_updated_timestamp"`
}

// ModelVersionDTO represents a model version. Aliases is always present.
type ModelVersionDTO struct {
	Name                 string   `json:"name"`
	Version              int      `json:"version"`
	Source               string   `json:"source"`
	RunID                string   `json:"run_id"`
	Description          string   `json:"description"`
	CurrentStage         string   `json:"current_stage"`
	Aliases              []string `json:"aliases"`
	CreationTimestamp    int64    `json:"creation_timestamp"`
	LastUpdatedTimestamp int64    `json:"last_updated_timestamp"`
}

// StageTransitionDTO is the result of a promotion
type StageTransitionDTO struct {
	ModelVersion ModelVersionDTO   `json:"model_version"`
	Archived     []ModelVersionDTO `json:"archived"`
}

// BestTrialDTO summarizes a best-trial registration
type BestTrialDTO struct {
	ParentRunID  string            `json:"parent_run_id"`
	BestRunID    string            `json:"best_run_id"`
	Metric       string            `json:"metric"`
	MetricValue  float64           `json:"metric_value"`
	ModelCreated bool              `json:"model_created"`
	ModelVersion ModelVersionDTO   `json:"model_version"`
	Archived     []ModelVersionDTO `json:"archived,omitempty"`
	Alias        string            `json:"alias,omitempty"`
}

// ExperimentDTO represents an experiment
type ExperimentDTO struct {
	ExperimentID     string `json:"experiment_id"`
	Name             string `json:"name"`
	ArtifactLocation string `json:"artifact_location"`
	CreationTime     int64  `json:"creation_time"`
}

// RunDTO represents a tracked run
type RunDTO struct {
	RunID        string             `json:"run_id"`
	ExperimentID string             `json:"experiment_id"`
	RunName      string             `json:"run_name"`
	Status       string             `json:"status"`
	StartTime    int64              `json:"start_time"`
	EndTime      *int64             `json:"end_time,omitempty"`
	ArtifactURI  string             `json:"artifact_uri"`
	Params       map[string]string  `json:"params"`
	Metrics      map[string]float64 `json:"metrics"`
	Tags         map[string]string  `json:"tags"`
}

// ErrorDTO is the body of every non-2xx API response
type ErrorDTO struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// FromRegisteredModel converts a domain model to a DTO
func FromRegisteredModel(m *domainreg.RegisteredModel) RegisteredModelDTO {
	return RegisteredModelDTO{
		Name:                 m.Name(),
		Description:          m.Description(),
		CreationTimestamp:    m.CreatedAt().UnixMilli(),
		LastUpdatedTimestamp: m.LastUpdatedAt().UnixMilli(),
	}
}

// FromRegisteredModels converts a slice of domain models to DTOs
func FromRegisteredModels(models []*domainreg.RegisteredModel) []RegisteredModelDTO {
	dtos := make([]RegisteredModelDTO, len(models))
	for i, m := range models {
		dtos[i] = FromRegisteredModel(m)
	}
	return dtos
}

// FromModelVersion converts a domain version to a DTO
func FromModelVersion(mv *domainreg.ModelVersion) ModelVersionDTO {
	aliases := mv.Aliases()
	if aliases == nil {
		aliases = []string{}
	}
	return ModelVersionDTO{
		Name:                 mv.Name(),
		Version:              mv.Version(),
		Source:               mv.Source(),
		RunID:                mv.RunID(),
		Description:          mv.Description(),
		CurrentStage:         mv.Stage().String(),
		Aliases:              aliases,
		CreationTimestamp:    mv.CreationTimestamp(),
		LastUpdatedTimestamp: mv.LastUpdatedAt().UnixMilli(),
	}
}

// FromModelVersions converts a slice of domain versions to DTOs
func FromModelVersions(versions []*domainreg.ModelVersion) []ModelVersionDTO {
	dtos := make([]ModelVersionDTO, len(versions))
	for i, mv := range versions {
		dtos[i] = FromModelVersion(mv)
	}
	return dtos
}

// FromStageTransition converts a promotion result to a DTO
func FromStageTransition(t *domainreg.StageTransition) StageTransitionDTO {
	return StageTransitionDTO{
		ModelVersion: FromModelVersion(t.Version),
		Archived:     FromModelVersions(t.Archived),
	}
}

// FromBestTrialResult converts a registrar result to a DTO
func FromBestTrialResult(res *appreg.BestTrialResult) BestTrialDTO {
	dto := BestTrialDTO{
		ParentRunID:  res.ParentRun.ID,
		BestRunID:    res.BestRun.ID,
		Metric:       res.MetricKey,
		MetricValue:  res.MetricValue,
		ModelCreated: res.ModelCreated,
		ModelVersion: FromModelVersion(res.Version),
		Alias:        res.Alias,
	}
	if res.Transition != nil {
		dto.Archived = FromModelVersions(res.Transition.Archived)
	}
	return dto
}

// FromExperiment converts an experiment to a DTO
func FromExperiment(exp *domaintrack.Experiment) ExperimentDTO {
	return ExperimentDTO{
		ExperimentID:     exp.ID,
		Name:             exp.Name,
		ArtifactLocation: exp.ArtifactLocation,
		CreationTime:     exp.CreatedAt.UnixMilli(),
	}
}

// FromRun converts a run to a DTO. Nil maps become empty objects.
func FromRun(r *domaintrack.Run) RunDTO {
	dto := RunDTO{
		RunID:        r.ID,
		ExperimentID: r.ExperimentID,
		RunName:      r.Name,
		Status:       r.Status.String(),
		StartTime:    r.StartTime.UnixMilli(),
		ArtifactURI:  r.ArtifactURI,
		Params:       r.Params,
		Metrics:      r.Metrics,
		Tags:         r.Tags,
	}
	if r.EndTime != nil {
		end := r.EndTime.UnixMilli()
		dto.EndTime = &end
	}
	if dto.Params == nil {
		dto.Params = map[string]string{}
	}
	if dto.Metrics == nil {
		dto.Metrics = map[string]float64{}
	}
	if dto.Tags == nil {
		dto.Tags = map[string]string{}
	}
	return dto
}

// FromRuns converts runs to DTOs, keeping their order
func FromRuns(runs []*domaintrack.Run) []RunDTO {
	out := make([]RunDTO, 0, len(runs))
	for _, r := range runs {
		out = append(out, FromRun(r))
	}
	return out
}
