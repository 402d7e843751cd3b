package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseKV(t *testing.T) {
	got, err := parseKV("param", []string{"C=1.0", "max_iter=200", "note=a=b", "empty="})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"C": "1.0", "max_iter": "200", "note": "a=b", "empty": ""}, got)

	_, err = parseKV("tag", []string{"novalue"})
	require.ErrorContains(t, err, "--tag")

	_, err = parseKV("tag", []string{"=v"})
	require.Error(t, err)
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    metricArg
		wantErr string
	}{
		{"val_f1_macro=0.93", metricArg{key: "val_f1_macro", value: 0.93}, ""},
		{"loss=0.41@10", metricArg{key: "loss", value: 0.41, step: 10}, ""},
		{" acc = 1 @ 2", metricArg{key: "acc", value: 1, step: 2}, ""},
		{"loss", metricArg{}, "expected key=value"},
		{"loss=abc", metricArg{}, "must be a number"},
		{"loss=0.1@x", metricArg{}, "step must be an integer"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseMetric(tt.in)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseFileSpec(t *testing.T) {
	src, dir := parseFileSpec("./model.pkl:model")
	require.Equal(t, "./model.pkl", src)
	require.Equal(t, "model", dir)

	src, dir = parseFileSpec("/tmp/report.html")
	require.Equal(t, "/tmp/report.html", src)
	require.Empty(t, dir)
}

func TestEnvBool(t *testing.T) {
	for _, raw := range []string{"true", "1", "yes", "YES", " True "} {
		t.Setenv("ARCHIVE_EXISTING", raw)
		v, ok := envBool("ARCHIVE_EXISTING")
		require.True(t, ok)
		require.True(t, v, raw)
	}
	for _, raw := range []string{"false", "0", "no", ""} {
		t.Setenv("ARCHIVE_EXISTING", raw)
		v, ok := envBool("ARCHIVE_EXISTING")
		require.True(t, ok)
		require.False(t, v, raw)
	}

	_, ok := envBool("MLSTUDY_TEST_UNSET_SWITCH")
	require.False(t, ok)
}
