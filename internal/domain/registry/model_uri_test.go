package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseModelURI(t *testing.T) {
	tests := []struct {
		uri  string
		want ModelRef
	}{
		{"models:/iris/3", ModelRef{Name: "iris", Version: 3}},
		{"models:/iris/Production", ModelRef{Name: "iris", Stage: StageProduction}},
		{"models:/iris/staging", ModelRef{Name: "iris", Stage: StageStaging}},
		{"models:/iris@champion", ModelRef{Name: "iris", Alias: "champion"}},
		{"models:/iris/latest", ModelRef{Name: "iris", Latest: true}},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := ParseModelURI(tt.uri)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseModelURI_Rejects(t *testing.T) {
	for _, uri := range []string{
		"runs:/abc/model",
		"models:/",
		"models:/iris",
		"models:/iris/",
		"models:/iris/0",
		"models:/iris/1/extra",
		"models:/@champion",
		"models:/iris@",
		"models:/a/b@c",
	} {
		_, err := ParseModelURI(uri)
		require.True(t, errors.Is(err, ErrInvalidInput), "uri %q: %v", uri, err)
	}

	_, err := ParseModelURI("models:/iris/Shadow")
	require.ErrorIs(t, err, ErrInvalidStage)
}

func TestModelRef_String(t *testing.T) {
	for _, uri := range []string{"models:/iris/3", "models:/iris/Production", "models:/iris@champion", "models:/iris/latest"} {
		ref, err := ParseModelURI(uri)
		require.NoError(t, err)
		require.Equal(t, uri, ref.String())
	}
}

func TestNotFoundError_Stage(t *testing.T) {
	err := &NotFoundError{Name: "iris", Stage: StageProduction}
	require.Equal(t, `no version of registered model "iris" in stage Production`, err.Error())
	require.ErrorIs(t, err, ErrNotFound)
}
