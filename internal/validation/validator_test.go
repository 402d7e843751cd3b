package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	domainreg "github.com/fkid009/MLflow-study/internal/domain/registry"
)

func TestGetValidator_Singleton(t *testing.T) {
	require.Same(t, GetValidator(), GetValidator())
}

func TestIsArtifactURI(t *testing.T) {
	tests := []struct {
		uri  string
		want bool
	}{
		{"file:///tmp/mlruns/1/abc/artifacts/model", true},
		{"runs:/abc123/model", true},
		{"models:/iris/Production", true},
		{"s3://bucket/key", true},
		{"gs://bucket/key", true},
		{"/var/models/iris", true},
		{"relative/path", false},
		{"file://", false},
		{"http://example.com/model", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			require.Equal(t, tt.want, IsArtifactURI(tt.uri))
		})
	}
}

func TestValidateStruct_CreateVersionInput(t *testing.T) {
	ok := domainreg.CreateVersionInput{Name: "iris", Source: "runs:/abc/model"}
	require.Nil(t, ValidateStruct(&ok))

	bad := domainreg.CreateVersionInput{Source: "model.pkl", Description: strings.Repeat("x", 5001)}
	verr := ValidateStruct(&bad)
	require.NotNil(t, verr)

	fields := verr.Fields()
	require.Equal(t, "name is required", fields["name"])
	require.Contains(t, fields["source"], "must be a file://")
	require.Equal(t, "description must be at most 5000 characters", fields["description"])
	require.Len(t, verr.Errors(), 3)
	require.Contains(t, verr.Error(), "name is required")
}

func TestValidateStruct_MissingSource(t *testing.T) {
	verr := ValidateStruct(&domainreg.CreateVersionInput{Name: "iris"})
	require.NotNil(t, verr)
	require.Equal(t, "source is required", verr.Fields()["source"])
	require.Equal(t, "required", verr.Errors()[0].Tag)
}

func TestValidateStruct_FallsBackToFieldName(t *testing.T) {
	type input struct {
		Stage string `validate:"oneof=None Staging Production Archived"`
	}
	verr := ValidateStruct(&input{Stage: "Canary"})
	require.NotNil(t, verr)
	require.Equal(t, "Stage must be one of: None Staging Production Archived", verr.Fields()["Stage"])
}
