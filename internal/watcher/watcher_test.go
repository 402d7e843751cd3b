package watcher_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkid009/MLflow-study/internal/watcher"
)

func newDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "mlstudy.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("db"), 0o644))
	return dbPath
}

func start(t *testing.T, dbPath string) (*watcher.Watcher, <-chan watcher.Change) {
	t.Helper()
	w, err := watcher.New(watcher.Config{DBPath: dbPath, Debounce: 50 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err)
	return w, onChange
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dbPath := newDB(t)
	_, onChange := start(t, dbPath)

	// Rapid writes should coalesce into single notification
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(dbPath, []byte(fmt.Sprintf("v%d", i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case c := <-onChange:
		require.GreaterOrEqual(t, c.Events, 2, "writes are counted in one change")
		require.Equal(t, []string{"mlstudy.db"}, c.Files)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dbPath := newDB(t)
	otherPath := filepath.Join(filepath.Dir(dbPath), "traces.jsonl")
	require.NoError(t, os.WriteFile(otherPath, []byte("initial"), 0o644))

	_, onChange := start(t, dbPath)
	require.NoError(t, os.WriteFile(otherPath, []byte("span"), 0o644))

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_WatchesWALAndJournal(t *testing.T) {
	for _, suffix := range []string{"-wal", "-journal"} {
		t.Run(suffix, func(t *testing.T) {
			dbPath := newDB(t)
			_, onChange := start(t, dbPath)

			require.NoError(t, os.WriteFile(dbPath+suffix, []byte("page"), 0o644))

			select {
			case c := <-onChange:
				require.Contains(t, c.Files, "mlstudy.db"+suffix)
			case <-time.After(500 * time.Millisecond):
				t.Fatalf("expected notification for %s write", suffix)
			}
		})
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	dbPath := newDB(t)
	w, err := watcher.New(watcher.DefaultConfig(dbPath))
	require.NoError(t, err)
	_, err = w.Start()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop())
		assert.NoError(t, w.Stop())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestWatcher_Watch(t *testing.T) {
	dbPath := newDB(t)
	w, err := watcher.New(watcher.Config{DBPath: dbPath, Debounce: 20 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(watcher.Change) {
			calls.Add(1)
			cancel()
		})
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(dbPath, []byte(time.Now().String()), 0o644)
		return calls.Load() > 0
	}, 2*time.Second, 50*time.Millisecond)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := watcher.New(watcher.Config{})
	require.ErrorContains(t, err, "database path is required")

	w, err := watcher.New(watcher.Config{DBPath: filepath.Join(t.TempDir(), "missing", "x.db")})
	require.NoError(t, err, "the directory is only needed at Start")
	require.NoError(t, w.Stop())
}

func TestWatcher_StartFailsForMissingDirectory(t *testing.T) {
	w, err := watcher.New(watcher.Config{DBPath: filepath.Join(t.TempDir(), "missing", "x.db")})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	_, err = w.Start()
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/test/mlstudy.db")
	assert.Equal(t, "/test/mlstudy.db", cfg.DBPath)
	assert.Equal(t, watcher.DefaultDebounce, cfg.Debounce)
	assert.Equal(t, watcher.DefaultMaxWait, cfg.MaxWait)
}

func TestWatcher_MaxWaitFlushesSteadyWrites(t *testing.T) {
	dbPath := newDB(t)
	w, err := watcher.New(watcher.Config{DBPath: dbPath, Debounce: 200 * time.Millisecond, MaxWait: 100 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	onChange, err := w.Start()
	require.NoError(t, err)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_ = os.WriteFile(dbPath, []byte(fmt.Sprintf("v%d", i)), 0o644)
			}
		}
	}()

	select {
	case c := <-onChange:
		require.Positive(t, c.Events)
	case <-time.After(400 * time.Millisecond):
		t.Fatal("a steady write stream never produced a change")
	}
}

func TestWatcher_UnreadChangesMerge(t *testing.T) {
	dbPath := newDB(t)
	_, onChange := start(t, dbPath)

	require.NoError(t, os.WriteFile(dbPath, []byte("one"), 0o644))
	time.Sleep(150 * time.Millisecond)
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("two"), 0o644))
	time.Sleep(150 * time.Millisecond)

	select {
	case c := <-onChange:
		require.Equal(t, []string{"mlstudy.db", "mlstudy.db-wal"}, c.Files)
	case <-time.After(time.Second):
		t.Fatal("expected a merged change")
	}

	select {
	case <-onChange:
		t.Fatal("both bursts should have been folded into one change")
	case <-time.After(150 * time.Millisecond):
	}
}
