package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/fkid009/MLflow-study/internal/evaluation"
	"github.com/fkid009/MLflow-study/internal/presentation"
)

// inTempProject runs the test from an empty directory with no user config.
func inTempProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MODEL_URI", "")
	t.Setenv("ALIAS", "")
	return dir
}

// resetFlags restores every flag to its default so commands can run again
// in the same process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	_, err := rootCmd.ExecuteC()
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err, "mlstudy %s", strings.Join(args, " "))
	return out
}

func decodeOut[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestExperimentSetup_IsIdempotent(t *testing.T) {
	dir := inTempProject(t)

	first := strings.TrimSpace(mustExecute(t, "experiment:setup", "iris-tutorial"))
	second := strings.TrimSpace(mustExecute(t, "experiment:setup", "iris-tutorial"))
	require.NotEmpty(t, first)
	require.Equal(t, first, second)

	_, err := os.Stat(filepath.Join(dir, ".mlstudy", "config.yaml"))
	require.NoError(t, err, "default config is written on first use")
	_, err = os.Stat(filepath.Join(dir, ".mlstudy", "mlstudy.db"))
	require.NoError(t, err)

	exp := decodeOut[presentation.ExperimentDTO](t, mustExecute(t, "experiment:setup", "iris-tutorial", "--json"))
	require.Equal(t, first, exp.ExperimentID)
	require.Equal(t, "iris-tutorial", exp.Name)
}

func TestRunLog_RecordsEverything(t *testing.T) {
	dir := inTempProject(t)
	expID := strings.TrimSpace(mustExecute(t, "experiment:setup", "iris"))

	out := mustExecute(t, "run:log", "--experiment", "iris", "--name", "baseline",
		"--param", "C=1.0", "--param", "max_iter=200",
		"--metric", "val_f1_macro=0.93", "--metric", "loss=0.5@1", "--metric", "loss=0.4@2",
		"--tag", "stage=baseline",
		"--text", "notes.txt=first try",
		"--json")
	run := decodeOut[presentation.RunDTO](t, out)

	require.Equal(t, expID, run.ExperimentID)
	require.Equal(t, "baseline", run.RunName)
	require.Equal(t, "FINISHED", run.Status)
	require.NotNil(t, run.EndTime)
	require.Equal(t, "1.0", run.Params["C"])
	require.Equal(t, "200", run.Params["max_iter"])
	require.InDelta(t, 0.93, run.Metrics["val_f1_macro"], 1e-9)
	require.InDelta(t, 0.4, run.Metrics["loss"], 1e-9, "latest step wins")
	require.Equal(t, "baseline", run.Tags["stage"])

	data, err := os.ReadFile(filepath.Join(dir, ".mlstudy", "mlruns", expID, run.RunID, "artifacts", "notes.txt"))
	require.NoError(t, err)
	require.Equal(t, "first try", string(data))
}

func TestRunLog_CopiesFiles(t *testing.T) {
	dir := inTempProject(t)
	src := filepath.Join(dir, "model.pkl")
	require.NoError(t, os.WriteFile(src, []byte("weights"), 0o644))

	out := mustExecute(t, "run:log", "--experiment", "iris", "--file", src+":model", "--json")
	run := decodeOut[presentation.RunDTO](t, out)

	data, err := os.ReadFile(filepath.Join(dir, ".mlstudy", "mlruns", run.ExperimentID, run.RunID, "artifacts", "model", "model.pkl"))
	require.NoError(t, err)
	require.Equal(t, "weights", string(data))
}

func TestRunLog_RejectsBadFlags(t *testing.T) {
	inTempProject(t)

	_, err := execute(t, "run:log", "--param", "novalue")
	require.ErrorContains(t, err, "--param")

	_, err = execute(t, "run:log", "--metric", "loss=high")
	require.ErrorContains(t, err, "must be a number")

	_, err = execute(t, "run:log", "--experiment", "iris", "--parent", "does-not-exist")
	require.Error(t, err)
}

func TestRunLatest(t *testing.T) {
	inTempProject(t)

	_, err := execute(t, "run:latest", "--experiment", "missing")
	require.Error(t, err)

	_ = mustExecute(t, "run:log", "--experiment", "iris", "--name", "first")
	second := strings.TrimSpace(mustExecute(t, "run:log", "--experiment", "iris", "--name", "second"))

	out := mustExecute(t, "run:latest", "--experiment", "iris")
	require.Equal(t, "runs:/"+second+"/model\n", out)

	out = mustExecute(t, "run:latest", "--experiment", "iris", "--artifact-path", "sklearn-model")
	require.Equal(t, "runs:/"+second+"/sklearn-model\n", out)

	t.Setenv("MODEL_URI", "models:/iris@champion")
	out = mustExecute(t, "run:latest", "--experiment", "iris")
	require.Equal(t, "models:/iris@champion\n", out)
}

func TestRunSearch(t *testing.T) {
	inTempProject(t)

	logRun := func(name, f1, stage string) string {
		return strings.TrimSpace(mustExecute(t, "run:log", "--experiment", "iris", "--name", name,
			"--metric", "val_f1_macro="+f1, "--tag", "stage="+stage))
	}
	low := logRun("low", "0.81", "tuning")
	high := logRun("high", "0.95", "tuning")
	mid := logRun("mid", "0.90", "tuning")
	other := logRun("baseline", "0.99", "baseline")

	all := decodeOut[[]presentation.RunDTO](t, mustExecute(t, "run:search", "--experiment", "iris", "--json"))
	require.Len(t, all, 4)
	require.Equal(t, other, all[0].RunID, "newest first by default")

	ranked := decodeOut[[]presentation.RunDTO](t, mustExecute(t, "run:search", "--experiment", "iris", "--json",
		"--filter", "tags.stage = 'tuning' and metrics.val_f1_macro >= 0.85",
		"--order-by", "metrics.val_f1_macro DESC"))
	require.Len(t, ranked, 2)
	require.Equal(t, high, ranked[0].RunID)
	require.Equal(t, mid, ranked[1].RunID)

	top := decodeOut[[]presentation.RunDTO](t, mustExecute(t, "run:search", "--experiment", "iris", "--json",
		"--order-by", "metrics.val_f1_macro ASC", "--max-results", "1"))
	require.Len(t, top, 1)
	require.Equal(t, low, top[0].RunID)

	table := mustExecute(t, "run:search", "--experiment", "iris", "--filter", "attributes.run_name = 'mid'")
	require.Contains(t, table, "RUN_ID")
	require.Contains(t, table, mid)
	require.NotContains(t, table, high)

	_, err := execute(t, "run:search", "--experiment", "iris", "--filter", "metrics.val_f1_macro == 0.9")
	require.ErrorContains(t, err, "invalid filter")
	_, err = execute(t, "run:search", "--experiment", "iris", "--order-by", "metrics.val_f1_macro SIDEWAYS")
	require.Error(t, err)
	_, err = execute(t, "run:search", "--experiment", "iris", "--max-results", "-1")
	require.ErrorContains(t, err, "must not be negative")
	_, err = execute(t, "run:search", "--experiment", "nope")
	require.Error(t, err)
}

func TestRegistryWorkflow(t *testing.T) {
	inTempProject(t)

	run1 := strings.TrimSpace(mustExecute(t, "run:log", "--experiment", "iris", "--name", "r1"))
	run2 := strings.TrimSpace(mustExecute(t, "run:log", "--experiment", "iris", "--name", "r2"))

	v1 := decodeOut[presentation.ModelVersionDTO](t, mustExecute(t, "model:register", "--experiment", "iris", "--run", run1, "--model", "iris-clf"))
	v2 := decodeOut[presentation.ModelVersionDTO](t, mustExecute(t, "model:register", "--experiment", "iris", "--run", run2, "--model", "iris-clf"))
	require.Equal(t, 1, v1.Version)
	require.Equal(t, 2, v2.Version)
	require.Equal(t, run2, v2.RunID)
	require.True(t, strings.HasSuffix(v2.Source, "/"+run2+"/artifacts/model"), v2.Source)
	require.Equal(t, "None", v2.CurrentStage)

	_ = mustExecute(t, "version:promote", "--model", "iris-clf", "--version", "1", "--stage", "Production")
	tr := decodeOut[presentation.StageTransitionDTO](t, mustExecute(t, "version:promote",
		"--model", "iris-clf", "--version", "2", "--stage", "production", "--alias", "champion"))
	require.Equal(t, "Production", tr.ModelVersion.CurrentStage)
	require.Equal(t, []string{"champion"}, tr.ModelVersion.Aliases)
	require.Len(t, tr.Archived, 1)
	require.Equal(t, 1, tr.Archived[0].Version)

	versions := decodeOut[[]presentation.ModelVersionDTO](t, mustExecute(t, "version:list", "--model", "iris-clf", "--json"))
	require.Len(t, versions, 2)
	require.Equal(t, "Archived", versions[0].CurrentStage)
	require.Equal(t, "Production", versions[1].CurrentStage)

	table := mustExecute(t, "version:list", "--model", "iris-clf")
	require.Contains(t, table, "VER")
	require.Contains(t, table, "RUN_ID")
	require.Contains(t, table, "champion")
	require.Contains(t, table, run1)

	resolved := decodeOut[presentation.ModelVersionDTO](t, mustExecute(t, "model:resolve", "models:/iris-clf@champion"))
	require.Equal(t, 2, resolved.Version)

	out := mustExecute(t, "alias:set", "--model", "iris-clf", "--alias", "challenger", "--version", "1")
	require.Equal(t, []string{"challenger"}, decodeOut[presentation.ModelVersionDTO](t, out).Aliases)

	out = mustExecute(t, "alias:delete", "--model", "iris-clf", "--alias", "champion")
	require.Contains(t, out, "deleted alias")

	_, err := execute(t, "model:resolve", "models:/iris-clf@champion")
	require.Error(t, err)

	_, err = execute(t, "alias:set", "--model", "iris-clf", "--alias", "latest", "--version", "1")
	require.ErrorContains(t, err, "reserved")
}

func TestVersionPromote_NoArchiveExisting(t *testing.T) {
	inTempProject(t)
	run := strings.TrimSpace(mustExecute(t, "run:log", "--experiment", "iris"))
	_ = mustExecute(t, "model:register", "--experiment", "iris", "--run", run, "--model", "iris-clf")
	_ = mustExecute(t, "model:register", "--experiment", "iris", "--run", run, "--model", "iris-clf")

	_ = mustExecute(t, "version:promote", "--model", "iris-clf", "--version", "1", "--stage", "Staging")
	tr := decodeOut[presentation.StageTransitionDTO](t, mustExecute(t, "version:promote",
		"--model", "iris-clf", "--version", "2", "--stage", "Staging", "--no-archive-existing"))
	require.Empty(t, tr.Archived)

	_, err := execute(t, "version:promote", "--model", "iris-clf", "--version", "2", "--stage", "Canary")
	require.ErrorContains(t, err, "invalid stage")

	_, err = execute(t, "version:promote", "--model", "iris-clf", "--version", "9", "--stage", "Staging")
	require.ErrorContains(t, err, "not found")
}

func TestModelRegister_RejectsRunFromOtherExperiment(t *testing.T) {
	inTempProject(t)
	run := strings.TrimSpace(mustExecute(t, "run:log", "--experiment", "wine"))
	_ = mustExecute(t, "experiment:setup", "iris")

	_, err := execute(t, "model:register", "--experiment", "iris", "--run", run, "--model", "iris-clf")
	require.ErrorContains(t, err, "does not belong")

	_, err = execute(t, "model:register", "--experiment", "iris")
	require.ErrorContains(t, err, "required flag")
}

func TestTrialRegister(t *testing.T) {
	inTempProject(t)
	t.Setenv("ALIAS", "champion")

	_ = mustExecute(t, "run:log", "--experiment", "iris-tuning", "--name", "optuna_tuning")
	_, err := execute(t, "trial:register", "--experiment", "iris-tuning", "--model", "iris-clf")
	require.ErrorContains(t, err, "parent run not found", "the default parent filter requires tags.stage = 'tuning'")

	parent := strings.TrimSpace(mustExecute(t, "run:log", "--experiment", "iris-tuning", "--name", "optuna_tuning", "--tag", "stage=tuning"))
	_ = mustExecute(t, "run:log", "--experiment", "iris-tuning", "--parent", parent, "--name", "trial-0", "--metric", "val_f1_macro=0.81")
	best := strings.TrimSpace(mustExecute(t, "run:log", "--experiment", "iris-tuning", "--parent", parent, "--name", "trial-1", "--metric", "val_f1_macro=0.95"))
	_ = mustExecute(t, "run:log", "--experiment", "iris-tuning", "--parent", parent, "--name", "trial-2", "--metric", "val_f1_macro=0.90")

	out := mustExecute(t, "trial:register", "--experiment", "iris-tuning", "--model", "iris-clf")
	res := decodeOut[presentation.BestTrialDTO](t, out)

	require.Equal(t, parent, res.ParentRunID)
	require.Equal(t, best, res.BestRunID)
	require.Equal(t, "val_f1_macro", res.Metric)
	require.InDelta(t, 0.95, res.MetricValue, 1e-9)
	require.True(t, res.ModelCreated)
	require.Equal(t, 1, res.ModelVersion.Version)
	require.Equal(t, "champion", res.Alias, "alias falls back to $ALIAS")

	resolved := decodeOut[presentation.ModelVersionDTO](t, mustExecute(t, "model:resolve", "models:/iris-clf/Production"))
	require.Equal(t, best, resolved.RunID)

	_, err = execute(t, "trial:register", "--experiment", "iris-tuning", "--model", "iris-clf", "--metric", "val_loss")
	require.Error(t, err)

	again := decodeOut[presentation.BestTrialDTO](t, mustExecute(t, "trial:register", "--experiment", "iris-tuning", "--model", "iris-clf", "--stage", ""))
	require.Equal(t, 2, again.ModelVersion.Version)
	require.Equal(t, "None", again.ModelVersion.CurrentStage, "empty --stage skips promotion")
}

func TestEvaluate(t *testing.T) {
	inTempProject(t)

	m := decodeOut[evaluation.Metrics](t, mustExecute(t, "evaluate", "--y-true", "0,1,2,2", "--y-pred", "0,2,2,2"))
	require.InDelta(t, 0.75, m.Accuracy, 1e-9)

	flat := decodeOut[map[string]float64](t, mustExecute(t, "evaluate", "--y-true", "0,1", "--y-pred", "0,1", "--prefix", "val_"))
	require.InDelta(t, 1.0, flat["val_f1"], 1e-9)

	_, err := execute(t, "evaluate", "--y-true", "0,1", "--y-pred", "0")
	require.Error(t, err)

	_, err = execute(t, "evaluate", "--y-true", "0,1", "--y-pred", "0,1", "--average", "harmonic")
	require.Error(t, err)
}

func TestConfigSet_ChangesDefaultExperiment(t *testing.T) {
	dir := inTempProject(t)

	out := mustExecute(t, "config:set", "tracking.default_experiment", "wine-quality")
	require.Contains(t, out, "tracking.default_experiment = wine-quality")

	data, err := os.ReadFile(filepath.Join(dir, ".mlstudy", "config.yaml"))
	require.NoError(t, err)
	require.Contains(t, string(data), "default_experiment: wine-quality")

	run := decodeOut[presentation.RunDTO](t, mustExecute(t, "run:log", "--json"))
	exp := decodeOut[presentation.ExperimentDTO](t, mustExecute(t, "experiment:setup", "wine-quality", "--json"))
	require.Equal(t, exp.ExperimentID, run.ExperimentID)
}

func TestEnvOverridesConfig(t *testing.T) {
	dir := inTempProject(t)
	t.Setenv("MLSTUDY_DB_PATH", filepath.Join(dir, "elsewhere", "env.db"))

	_ = mustExecute(t, "experiment:setup", "iris")
	_, err := os.Stat(filepath.Join(dir, "elsewhere", "env.db"))
	require.NoError(t, err)
}
