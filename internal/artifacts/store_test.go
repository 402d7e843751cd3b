package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
	"github.com/fkid009/MLflow-study/internal/infrastructure/memory"
)

func newStore(t *testing.T) (*LocalStore, *memory.RunStore) {
	t.Helper()
	runs := memory.NewRunStore()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "mlruns"), runs)
	require.NoError(t, err)
	return s, runs
}

func TestLocalStore_RunRoot(t *testing.T) {
	s, _ := newStore(t)
	uri := s.RunRoot("exp1", "run1")
	require.Equal(t, "file://"+filepath.ToSlash(filepath.Join(s.Root(), "exp1", "run1", "artifacts")), uri)
	require.Equal(t, "file://"+filepath.ToSlash(filepath.Join(s.Root(), "exp1")), s.ExperimentURI("exp1"))
}

func TestLocalStore_WriteText(t *testing.T) {
	s, _ := newStore(t)
	root := s.RunRoot("exp1", "run1")

	uri, err := s.WriteText(root, "notes/summary.txt", "accuracy 0.97\n")
	require.NoError(t, err)
	require.Equal(t, root+"/notes/summary.txt", uri)

	p, err := s.Resolve(context.Background(), uri)
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "accuracy 0.97\n", string(data))

	_, err = s.WriteText(root, "", "x")
	require.ErrorContains(t, err, "artifact path is required")
}

func TestLocalStore_WriteJSON(t *testing.T) {
	s, _ := newStore(t)
	root := s.RunRoot("exp1", "run1")

	uri, err := s.WriteJSON(root, "config.json", map[string]any{"C": 1.0, "penalty": "l2"})
	require.NoError(t, err)

	p, err := s.Resolve(context.Background(), uri)
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "l2", got["penalty"])
	assert.EqualValues(t, 1, got["C"])
}

func TestLocalStore_CopyFile(t *testing.T) {
	s, _ := newStore(t)
	root := s.RunRoot("exp1", "run1")

	src := filepath.Join(t.TempDir(), "confusion.png")
	require.NoError(t, os.WriteFile(src, []byte("png-bytes"), 0o644))

	uri, err := s.CopyFile(root, src, "plots")
	require.NoError(t, err)
	require.Equal(t, root+"/plots/confusion.png", uri)

	ok, err := s.Exists(context.Background(), uri)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = s.CopyFile(root, filepath.Join(t.TempDir(), "missing.png"), "")
	require.Error(t, err)

	_, err = s.CopyFile(root, t.TempDir(), "")
	require.ErrorContains(t, err, "is a directory")
}

func TestLocalStore_RejectsEscapingPaths(t *testing.T) {
	s, _ := newStore(t)
	root := s.RunRoot("exp1", "run1")

	for _, path := range []string{"../other.txt", "a/../../b.txt", "/etc/passwd"} {
		_, err := s.WriteText(root, path, "x")
		require.ErrorIs(t, err, ErrPathEscapesRoot, path)
	}

	uri, err := s.WriteText(root, "a/../b.txt", "x")
	require.NoError(t, err, "paths are cleaned before the check")
	require.Equal(t, root+"/b.txt", uri)
}

func TestLocalStore_ResolveRunsURI(t *testing.T) {
	s, runs := newStore(t)
	ctx := context.Background()
	require.NoError(t, runs.CreateExperiment(ctx, &domaintrack.Experiment{ID: "exp1", Name: "iris"}))
	root := s.RunRoot("exp1", "run1")
	require.NoError(t, runs.CreateRun(ctx, &domaintrack.Run{ID: "run1", ExperimentID: "exp1", ArtifactURI: root}))

	_, err := s.WriteText(root, "model/MLmodel", "flavors: {}\n")
	require.NoError(t, err)

	p, err := s.Resolve(ctx, "runs:/run1/model/MLmodel")
	require.NoError(t, err)
	want, err := s.Resolve(ctx, root+"/model/MLmodel")
	require.NoError(t, err)
	require.Equal(t, want, p)

	ok, err := s.Exists(ctx, "runs:/run1/model/MLmodel")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Exists(ctx, "runs:/run1/model/missing")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = s.Resolve(ctx, "runs:/nope/model")
	require.ErrorIs(t, err, domaintrack.ErrRunNotFound)

	_, err = s.Resolve(ctx, "runs:/run1/../../escape")
	require.ErrorIs(t, err, ErrPathEscapesRoot)
}

func TestLocalStore_ResolveUnsupported(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = s.Resolve(context.Background(), "s3://bucket/model")
	require.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = s.Resolve(context.Background(), "runs:/run1/model")
	require.ErrorIs(t, err, ErrUnsupportedScheme)
}
