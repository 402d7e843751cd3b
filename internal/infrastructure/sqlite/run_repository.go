package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
)

const runColumns = `id, experiment_id, name, status, start_time, end_time, artifact_uri`

// runRepository implements domaintrack.RunStore using SQLite.
type runRepository struct {
	db *sql.DB
}

func newRunRepository(db *sql.DB) *runRepository {
	return &runRepository{db: db}
}

// Ensure runRepository implements domaintrack.RunStore.
var _ domaintrack.RunStore = (*runRepository)(nil)

func scanRun(scanner interface{ Scan(...any) error }) (*RunModel, error) {
	var m RunModel
	err := scanner.Scan(&m.ID, &m.ExperimentID, &m.Name, &m.Status, &m.StartTime, &m.EndTime, &m.ArtifactURI)
	return &m, err
}

// CreateExperiment inserts an experiment. Names are unique.
func (r *runRepository) CreateExperiment(ctx context.Context, exp *domaintrack.Experiment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO experiments (id, name, artifact_location, created_at) VALUES (?, ?, ?, ?)`,
		exp.ID, exp.Name, exp.ArtifactLocation, toMillis(exp.CreatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("experiment %q already exists: %w", exp.Name, err)
	}
	return mapError("insert experiment", err)
}

// GetExperimentByName returns (nil, nil) when no experiment has that name.
func (r *runRepository) GetExperimentByName(ctx context.Context, name string) (*domaintrack.Experiment, error) {
	var m ExperimentModel
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, artifact_location, created_at FROM experiments WHERE name = ?`, name,
	).Scan(&m.ID, &m.Name, &m.ArtifactLocation, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get experiment", err)
	}
	return m.toDomain(), nil
}

// CreateRun inserts the run together with its initial params and tags.
func (r *runRepository) CreateRun(ctx context.Context, run *domaintrack.Run) error {
	m := toRunModel(run)
	return withTx(ctx, r.db, "create run", func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM experiments WHERE id = ?`, run.ExperimentID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return &domaintrack.ExperimentNotFoundError{ID: run.ExperimentID}
		}
		if err != nil {
			return mapError("check experiment", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.ExperimentID, m.Name, m.Status, m.StartTime, m.EndTime, m.ArtifactURI,
		); err != nil {
			return mapError("insert run", err)
		}
		for k, v := range run.Tags {
			if err := setTag(ctx, tx, run.ID, k, v); err != nil {
				return err
			}
		}
		for k, v := range run.Params {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO params (run_id, key, value) VALUES (?, ?, ?)`, run.ID, k, v,
			); err != nil {
				return mapError("insert param", err)
			}
		}
		return nil
	})
}

// GetRun loads a run with params, tags and latest metrics.
func (r *runRepository) GetRun(ctx context.Context, runID string) (*domaintrack.Run, error) {
	m, err := scanRun(r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domaintrack.RunNotFoundError{RunID: runID}
	}
	if err != nil {
		return nil, mapError("get run", err)
	}
	run := m.toDomain()
	if err := r.hydrate(ctx, []*domaintrack.Run{run}); err != nil {
		return nil, err
	}
	return run, nil
}

// UpdateRunStatus sets status and end time.
func (r *runRepository) UpdateRunStatus(ctx context.Context, runID string, status domaintrack.RunStatus, endTime *time.Time) error {
	var end *int64
	if endTime != nil {
		ms := toMillis(*endTime)
		end = &ms
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, end_time = ? WHERE id = ?`, string(status), end, runID,
	)
	if err != nil {
		return mapError("update run status", err)
	}
	return requireRun(result, runID)
}

// LogParam records an immutable param.
func (r *runRepository) LogParam(ctx context.Context, runID, key, value string) error {
	return withTx(ctx, r.db, "log param", func(tx *sql.Tx) error {
		if err := runExists(ctx, tx, runID); err != nil {
			return err
		}
		var existing string
		err := tx.QueryRowContext(ctx,
			`SELECT value FROM params WHERE run_id = ? AND key = ?`, runID, key,
		).Scan(&existing)
		switch {
		case err == nil:
			if existing != value {
				return &domaintrack.ParamConflictError{RunID: runID, Key: key, Existing: existing, New: value}
			}
			return nil
		case !errors.Is(err, sql.ErrNoRows):
			return mapError("read param", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO params (run_id, key, value) VALUES (?, ?, ?)`, runID, key, value,
		); err != nil {
			return mapError("insert param", err)
		}
		return nil
	})
}

// LogMetric appends one point to the metric history.
func (r *runRepository) LogMetric(ctx context.Context, runID string, metric domaintrack.Metric) error {
	if err := runExists(ctx, r.db, runID); err != nil {
		return err
	}
	ts := metric.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO metrics (run_id, key, value, step, timestamp) VALUES (?, ?, ?, ?, ?)`,
		runID, metric.Key, metricValue(metric.Value), metric.Step, toMillis(ts),
	)
	return mapError("insert metric", err)
}

// SetTag upserts a tag.
func (r *runRepository) SetTag(ctx context.Context, runID, key, value string) error {
	if err := runExists(ctx, r.db, runID); err != nil {
		return err
	}
	return setTag(ctx, r.db, runID, key, value)
}

func setTag(ctx context.Context, q querier, runID, key, value string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO tags (run_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (run_id, key) DO UPDATE SET value = excluded.value`,
		runID, key, value,
	)
	return mapError("set tag", err)
}

// GetMetricHistory returns all points for key, ordered by step then timestamp.
func (r *runRepository) GetMetricHistory(ctx context.Context, runID, key string) ([]domaintrack.Metric, error) {
	if err := runExists(ctx, r.db, runID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value, step, timestamp FROM metrics WHERE run_id = ? AND key = ? ORDER BY step, timestamp, id`,
		runID, key,
	)
	if err != nil {
		return nil, mapError("get metric history", err)
	}
	defer func() { _ = rows.Close() }()

	history := []domaintrack.Metric{}
	for rows.Next() {
		var (
			m   domaintrack.Metric
			v   sql.NullFloat64
			tms int64
		)
		if err := rows.Scan(&m.Key, &v, &m.Step, &tms); err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}
		m.Value = metricFromNull(v)
		m.Timestamp = fromMillis(tms)
		history = append(history, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metric rows: %w", err)
	}
	return history, nil
}

// SearchRuns loads the runs of the requested experiments and applies the
// filter, ordering and limit in Go. The SQL narrows by experiment and, for a
// plain status clause, by status.
func (r *runRepository) SearchRuns(ctx context.Context, q domaintrack.SearchQuery) ([]*domaintrack.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1 = 1`
	var args []any

	if len(q.ExperimentIDs) > 0 {
		query += ` AND experiment_id IN (?` + strings.Repeat(", ?", len(q.ExperimentIDs)-1) + `)`
		for _, id := range q.ExperimentIDs {
			args = append(args, id)
		}
	}
	for _, c := range q.Filter.Clauses {
		if c.Entity == domaintrack.EntityAttribute && c.Key == "status" && c.Comparator == domaintrack.CmpEqual {
			query += ` AND status = ?`
			args = append(args, c.Value)
		}
	}
	query += ` ORDER BY start_time DESC, rowid DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("search runs", err)
	}
	var runs []*domaintrack.Run
	for rows.Next() {
		m, err := scanRun(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, m.toDomain())
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}
	_ = rows.Close()

	if err := r.hydrate(ctx, runs); err != nil {
		return nil, err
	}
	return domaintrack.ApplySearch(runs, q), nil
}

// hydrate attaches params, tags and latest metrics to runs.
func (r *runRepository) hydrate(ctx context.Context, runs []*domaintrack.Run) error {
	if len(runs) == 0 {
		return nil
	}
	byID := make(map[string]*domaintrack.Run, len(runs))
	args := make([]any, 0, len(runs))
	for _, run := range runs {
		byID[run.ID] = run
		args = append(args, run.ID)
	}
	in := `(?` + strings.Repeat(", ?", len(runs)-1) + `)`

	if err := r.hydrateKV(ctx, `SELECT run_id, key, value FROM params WHERE run_id IN `+in, args, func(run *domaintrack.Run, k, v string) {
		run.Params[k] = v
	}, byID); err != nil {
		return err
	}
	if err := r.hydrateKV(ctx, `SELECT run_id, key, value FROM tags WHERE run_id IN `+in, args, func(run *domaintrack.Run, k, v string) {
		run.Tags[k] = v
	}, byID); err != nil {
		return err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, key, value, step, timestamp FROM metrics WHERE run_id IN `+in+` ORDER BY run_id, step, timestamp, id`,
		args...,
	)
	if err != nil {
		return mapError("load metrics", err)
	}
	defer func() { _ = rows.Close() }()

	history := make(map[string][]domaintrack.Metric)
	for rows.Next() {
		var (
			runID string
			m     domaintrack.Metric
			v     sql.NullFloat64
			tms   int64
		)
		if err := rows.Scan(&runID, &m.Key, &v, &m.Step, &tms); err != nil {
			return fmt.Errorf("failed to scan metric row: %w", err)
		}
		m.Value = metricFromNull(v)
		m.Timestamp = fromMillis(tms)
		history[runID] = append(history[runID], m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating metric rows: %w", err)
	}
	for id, h := range history {
		byID[id].Metrics = domaintrack.LatestMetrics(h)
	}
	return nil
}

func (r *runRepository) hydrateKV(
	ctx context.Context, query string, args []any,
	set func(run *domaintrack.Run, k, v string), byID map[string]*domaintrack.Run,
) error {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return mapError("load run attributes", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var runID, k, v string
		if err := rows.Scan(&runID, &k, &v); err != nil {
			return fmt.Errorf("failed to scan run attribute row: %w", err)
		}
		if run, ok := byID[runID]; ok {
			set(run, k, v)
		}
	}
	return rows.Err()
}

func runExists(ctx context.Context, q querier, runID string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return &domaintrack.RunNotFoundError{RunID: runID}
	}
	return mapError("check run", err)
}

func requireRun(result sql.Result, runID string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return &domaintrack.RunNotFoundError{RunID: runID}
	}
	return nil
}
