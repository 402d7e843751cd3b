package presentation

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appreg "github.com/fkid009/MLflow-study/internal/application/registry"
	domainreg "github.com/fkid009/MLflow-study/internal/domain/registry"
	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
)

func version(n int, stage domainreg.Stage, aliases ...string) *domainreg.ModelVersion {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return domainreg.ReconstituteModelVersion("iris", n, "file:///tmp/mlruns/1/r/artifacts/model", "run-"+string(rune('a'+n)), "", stage, aliases, created, created)
}

func TestFromModelVersion_AliasesNeverNil(t *testing.T) {
	dto := FromModelVersion(version(1, domainreg.StageNone))
	require.NotNil(t, dto.Aliases)

	data, err := json.Marshal(dto)
	require.NoError(t, err)
	require.Contains(t, string(data), `"aliases":[]`)
	require.Contains(t, string(data), `"current_stage":"None"`)
	require.Contains(t, string(data), `"creation_timestamp":1714564800000`)
}

func TestFromStageTransition(t *testing.T) {
	dto := FromStageTransition(&domainreg.StageTransition{
		Version:  version(3, domainreg.StageProduction),
		Archived: []*domainreg.ModelVersion{version(1, domainreg.StageArchived), version(2, domainreg.StageArchived)},
	})
	require.Equal(t, 3, dto.ModelVersion.Version)
	require.Len(t, dto.Archived, 2)
	require.Equal(t, "Archived", dto.Archived[0].CurrentStage)

	empty := FromStageTransition(&domainreg.StageTransition{Version: version(1, domainreg.StageStaging)})
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	require.Contains(t, string(data), `"archived":[]`)
}

func TestFromBestTrialResult(t *testing.T) {
	res := &appreg.BestTrialResult{
		ParentRun:    &domaintrack.Run{ID: "parent"},
		BestRun:      &domaintrack.Run{ID: "trial-b"},
		MetricKey:    "val_f1_macro",
		MetricValue:  0.93,
		ModelCreated: true,
		Version:      version(1, domainreg.StageProduction, "champion"),
		Transition:   &domainreg.StageTransition{Version: version(1, domainreg.StageProduction)},
		Alias:        "champion",
	}
	dto := FromBestTrialResult(res)
	assert.Equal(t, "parent", dto.ParentRunID)
	assert.Equal(t, "trial-b", dto.BestRunID)
	assert.Equal(t, []string{"champion"}, dto.ModelVersion.Aliases)
	assert.NotNil(t, dto.Archived)
}

func TestFromRun(t *testing.T) {
	end := time.UnixMilli(2000)
	dto := FromRun(&domaintrack.Run{ID: "r1", Status: domaintrack.RunStatusFinished, StartTime: time.UnixMilli(1000), EndTime: &end})
	require.Equal(t, int64(1000), dto.StartTime)
	require.Equal(t, int64(2000), *dto.EndTime)
	require.NotNil(t, dto.Params)
	require.NotNil(t, dto.Metrics)
	require.NotNil(t, dto.Tags)

	running := FromRun(&domaintrack.Run{ID: "r2", Status: domaintrack.RunStatusRunning})
	data, err := json.Marshal(running)
	require.NoError(t, err)
	require.NotContains(t, string(data), "end_time")
}

func TestFormatter_FormatJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)
	require.NoError(t, f.FormatVersions(FromModelVersions([]*domainreg.ModelVersion{version(1, domainreg.StageNone)})))

	var got []ModelVersionDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "iris", got[0].Name)
	require.True(t, strings.HasPrefix(buf.String(), "[\n  {"), "output is indented")
}

func TestRenderVersionTable(t *testing.T) {
	out := RenderVersionTable(FromModelVersions([]*domainreg.ModelVersion{
		version(1, domainreg.StageArchived),
		version(2, domainreg.StageProduction, "challenger", "champion"),
	}))

	for _, header := range []string{"VER", "STAGE", "ALIAS", "CREATED", "RUN_ID"} {
		assert.Contains(t, out, header)
	}
	assert.Contains(t, out, "Production")
	assert.Contains(t, out, "challenger,champion")
	assert.Contains(t, out, "run-c")

	var archivedLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Archived") {
			archivedLine = line
		}
	}
	require.NotEmpty(t, archivedLine)
	assert.Contains(t, archivedLine, " - ", "versions without aliases show a dash")
}

func TestRenderVersionTable_Empty(t *testing.T) {
	out := RenderVersionTable(nil)
	assert.Contains(t, out, "VER")
}

func TestRenderRunTable(t *testing.T) {
	runs := FromRuns([]*domaintrack.Run{
		{ID: "run-b", Name: "trial-1", Status: domaintrack.RunStatusFinished, StartTime: time.UnixMilli(2000),
			Metrics: map[string]float64{"val_f1_macro": 0.9512, "loss": 0.25}},
		{ID: "run-a", Name: "trial-0", Status: domaintrack.RunStatusFailed, StartTime: time.UnixMilli(1000)},
	})
	require.Equal(t, "run-b", runs[0].RunID, "order is kept")

	out := RenderRunTable(runs)
	for _, header := range []string{"RUN_ID", "NAME", "STATUS", "STARTED", "METRICS"} {
		assert.Contains(t, out, header)
	}
	assert.Contains(t, out, "loss=0.25 val_f1_macro=0.9512")
	assert.Less(t, strings.Index(out, "run-b"), strings.Index(out, "run-a"))

	var failedLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "FAILED") {
			failedLine = line
		}
	}
	assert.Contains(t, failedLine, " - ", "runs without metrics show a dash")
}
