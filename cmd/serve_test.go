package cmd

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/fkid009/MLflow-study/internal/log"
	"github.com/fkid009/MLflow-study/internal/metrics"
)

func TestCountLogEntries(t *testing.T) {
	log.InitWriter(io.Discard, log.LevelInfo)
	t.Cleanup(func() { log.InitWriter(io.Discard, log.LevelError) })

	ctx, cancel := context.WithCancel(context.Background())
	l := log.NewListener(ctx)
	require.NotNil(t, l)

	done := make(chan struct{})
	go func() {
		countLogEntries(l)
		close(done)
	}()

	counter := metrics.LogEntriesTotal.WithLabelValues("WARN", "registry")
	before := testutil.ToFloat64(counter)
	log.Warn(log.CatRegistry, "Alias rebound", "model", "iris")
	log.Debug(log.CatRegistry, "below min level")

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(counter) == before+1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("countLogEntries did not stop after cancel")
	}
}
