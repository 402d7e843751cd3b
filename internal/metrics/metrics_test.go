package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordRegistryOperation(t *testing.T) {
	before := testutil.ToFloat64(RegistryOperations.WithLabelValues("test_op", ResultOK))
	RecordRegistryOperation("test_op", ResultOK, 5*time.Millisecond)
	RecordRegistryOperation("test_op", ResultOK, 7*time.Millisecond)
	RecordRegistryOperation("test_op", ResultNotFound, time.Millisecond)

	require.InDelta(t, before+2, testutil.ToFloat64(RegistryOperations.WithLabelValues("test_op", ResultOK)), 0)
	require.GreaterOrEqual(t, testutil.ToFloat64(RegistryOperations.WithLabelValues("test_op", ResultNotFound)), 1.0)
}

func TestRecordVersionCreated(t *testing.T) {
	before := testutil.ToFloat64(ModelVersionsCreated.WithLabelValues("metrics-test-model"))
	RecordVersionCreated("metrics-test-model")
	require.InDelta(t, before+1, testutil.ToFloat64(ModelVersionsCreated.WithLabelValues("metrics-test-model")), 0)
}

func TestRecordStageTransition(t *testing.T) {
	beforeArchived := testutil.ToFloat64(VersionsArchived)
	beforeStage := testutil.ToFloat64(StageTransitions.WithLabelValues("Production"))

	RecordStageTransition("Production", 2)
	RecordStageTransition("Production", 0)

	require.InDelta(t, beforeStage+2, testutil.ToFloat64(StageTransitions.WithLabelValues("Production")), 0)
	require.InDelta(t, beforeArchived+2, testutil.ToFloat64(VersionsArchived), 0)
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheLookups.WithLabelValues("metrics-test", "hit"))
	misses := testutil.ToFloat64(CacheLookups.WithLabelValues("metrics-test", "miss"))

	RecordCacheLookup("metrics-test", true)
	RecordCacheLookup("metrics-test", false)
	RecordCacheLookup("metrics-test", false)

	require.InDelta(t, hits+1, testutil.ToFloat64(CacheLookups.WithLabelValues("metrics-test", "hit")), 0)
	require.InDelta(t, misses+2, testutil.ToFloat64(CacheLookups.WithLabelValues("metrics-test", "miss")), 0)
}

func TestRecordRunEndedAndAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(RunsLogged.WithLabelValues("FINISHED"))
	RecordRunEnded("FINISHED")
	require.InDelta(t, before+1, testutil.ToFloat64(RunsLogged.WithLabelValues("FINISHED")), 0)

	reqs := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/health", "200"))
	RecordAPIRequest("GET", "/health", "200", time.Millisecond)
	require.InDelta(t, reqs+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/health", "200")), 0)
}

func TestRecordLogEntry(t *testing.T) {
	before := testutil.ToFloat64(LogEntriesTotal.WithLabelValues("WARN", "api"))
	RecordLogEntry("WARN", "api")
	require.InDelta(t, before+1, testutil.ToFloat64(LogEntriesTotal.WithLabelValues("WARN", "api")), 0)
}
