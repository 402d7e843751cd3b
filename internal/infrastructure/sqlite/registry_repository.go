package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domainreg "github.com/fkid009/MLflow-study/internal/domain/registry"
)

// versionSelect selects model_versions columns plus the joined alias list.
const versionSelect = `SELECT v.name, v.version, v.source, v.run_id, v.description, v.current_stage,
	v.creation_time, v.last_updated_time,
	(SELECT GROUP_CONCAT(a.alias, char(31)) FROM registered_model_aliases a
	 WHERE a.name = v.name AND a.version = v.version) AS aliases
	FROM model_versions v`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// registryRepository implements domainreg.RegistryRepository using SQLite.
type registryRepository struct {
	db *sql.DB
}

func newRegistryRepository(db *sql.DB) *registryRepository {
	return &registryRepository{db: db}
}

// Ensure registryRepository implements domainreg.RegistryRepository.
var _ domainreg.RegistryRepository = (*registryRepository)(nil)

// scanModelVersion scans a versionSelect row into a ModelVersionModel.
func scanModelVersion(scanner interface{ Scan(...any) error }) (*ModelVersionModel, error) {
	var m ModelVersionModel
	err := scanner.Scan(
		&m.Name, &m.Version, &m.Source, &m.RunID, &m.Description, &m.CurrentStage,
		&m.CreationTime, &m.LastUpdatedTime, &m.Aliases,
	)
	return &m, err
}

func scanRegisteredModel(scanner interface{ Scan(...any) error }) (*RegisteredModelModel, error) {
	var m RegisteredModelModel
	err := scanner.Scan(&m.Name, &m.Description, &m.CreationTime, &m.LastUpdatedTime)
	return &m, err
}

// CreateRegisteredModel inserts a new registered model.
// Returns AlreadyExistsError if the name is taken.
func (r *registryRepository) CreateRegisteredModel(ctx context.Context, model *domainreg.RegisteredModel) error {
	m := toRegisteredModelModel(model)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO registered_models (name, description, creation_time, last_updated_time) VALUES (?, ?, ?, ?)`,
		m.Name, m.Description, m.CreationTime, m.LastUpdatedTime,
	)
	if isUniqueViolation(err) {
		return &domainreg.AlreadyExistsError{Name: model.Name()}
	}
	return mapError("insert registered model", err)
}

// GetRegisteredModel retrieves a model by name.
func (r *registryRepository) GetRegisteredModel(ctx context.Context, name string) (*domainreg.RegisteredModel, error) {
	return getRegisteredModel(ctx, r.db, name)
}

func getRegisteredModel(ctx context.Context, q querier, name string) (*domainreg.RegisteredModel, error) {
	row := q.QueryRowContext(ctx,
		`SELECT name, description, creation_time, last_updated_time FROM registered_models WHERE name = ?`, name,
	)
	m, err := scanRegisteredModel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domainreg.NotFoundError{Name: name}
	}
	if err != nil {
		return nil, mapError("get registered model", err)
	}
	return m.toDomain(), nil
}

// ListRegisteredModels returns every model ordered by name.
func (r *registryRepository) ListRegisteredModels(ctx context.Context) ([]*domainreg.RegisteredModel, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, description, creation_time, last_updated_time FROM registered_models ORDER BY name`,
	)
	if err != nil {
		return nil, mapError("list registered models", err)
	}
	defer func() { _ = rows.Close() }()

	var models []*domainreg.RegisteredModel
	for rows.Next() {
		m, err := scanRegisteredModel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registered model row: %w", err)
		}
		models = append(models, m.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registered model rows: %w", err)
	}
	return models, nil
}

// CreateModelVersion assigns the next version number and inserts the row in
// one write transaction.
func (r *registryRepository) CreateModelVersion(ctx context.Context, mv *domainreg.ModelVersion) error {
	return withTx(ctx, r.db, "create model version", func(tx *sql.Tx) error {
		if _, err := getRegisteredModel(ctx, tx, mv.Name()); err != nil {
			return err
		}

		var next int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(version), 0) + 1 FROM model_versions WHERE name = ?`, mv.Name(),
		).Scan(&next); err != nil {
			return mapError("allocate version number", err)
		}
		mv.SetVersion(next)

		m := toModelVersionModel(mv)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO model_versions (name, version, source, run_id, description, current_stage, creation_time, last_updated_time)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.Name, m.Version, m.Source, m.RunID, m.Description, m.CurrentStage, m.CreationTime, m.LastUpdatedTime,
		); err != nil {
			return mapError("insert model version", err)
		}
		return touchModel(ctx, tx, mv.Name())
	})
}

// GetModelVersion retrieves one version.
func (r *registryRepository) GetModelVersion(ctx context.Context, name string, version int) (*domainreg.ModelVersion, error) {
	return getModelVersion(ctx, r.db, name, version)
}

func getModelVersion(ctx context.Context, q querier, name string, version int) (*domainreg.ModelVersion, error) {
	row := q.QueryRowContext(ctx, versionSelect+` WHERE v.name = ? AND v.version = ?`, name, version)
	m, err := scanModelVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domainreg.NotFoundError{Name: name, Version: version}
	}
	if err != nil {
		return nil, mapError("get model version", err)
	}
	return m.toDomain(), nil
}

// ListModelVersions returns all versions of a model, version ascending.
func (r *registryRepository) ListModelVersions(ctx context.Context, name string) ([]*domainreg.ModelVersion, error) {
	if _, err := getRegisteredModel(ctx, r.db, name); err != nil {
		return nil, err
	}
	return queryVersions(ctx, r.db, versionSelect+` WHERE v.name = ? ORDER BY v.version`, name)
}

func queryVersions(ctx context.Context, q querier, query string, args ...any) ([]*domainreg.ModelVersion, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list model versions", err)
	}
	defer func() { _ = rows.Close() }()

	versions := []*domainreg.ModelVersion{}
	for rows.Next() {
		m, err := scanModelVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model version row: %w", err)
		}
		versions = append(versions, m.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating model version rows: %w", err)
	}
	return versions, nil
}

// TransitionStage moves a version to stage, optionally archiving the other
// holders of that stage, in one write transaction.
func (r *registryRepository) TransitionStage(
	ctx context.Context, name string, version int, stage domainreg.Stage, archiveExisting bool,
) (*domainreg.StageTransition, error) {
	var result domainreg.StageTransition
	err := withTx(ctx, r.db, "transition stage", func(tx *sql.Tx) error {
		if _, err := getModelVersion(ctx, tx, name, version); err != nil {
			return err
		}
		now := toMillis(time.Now())

		result.Archived = []*domainreg.ModelVersion{}
		if archiveExisting {
			holders, err := queryVersions(ctx, tx,
				versionSelect+` WHERE v.name = ? AND v.current_stage = ? AND v.version != ? ORDER BY v.version`,
				name, string(stage), version,
			)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE model_versions SET current_stage = ?, last_updated_time = ?
				 WHERE name = ? AND current_stage = ? AND version != ?`,
				string(domainreg.StageArchived), now, name, string(stage), version,
			); err != nil {
				return mapError("archive existing versions", err)
			}
			for _, h := range holders {
				h.SetStage(domainreg.StageArchived)
				result.Archived = append(result.Archived, h)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE model_versions SET current_stage = ?, last_updated_time = ? WHERE name = ? AND version = ?`,
			string(stage), now, name, version,
		); err != nil {
			return mapError("update stage", err)
		}
		if err := touchModel(ctx, tx, name); err != nil {
			return err
		}

		updated, err := getModelVersion(ctx, tx, name, version)
		if err != nil {
			return err
		}
		result.Version = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SetAlias binds alias to version. The upsert on (name, alias) moves the
// alias off its previous version in the same statement.
func (r *registryRepository) SetAlias(ctx context.Context, name, alias string, version int) (*domainreg.ModelVersion, error) {
	var updated *domainreg.ModelVersion
	err := withTx(ctx, r.db, "set alias", func(tx *sql.Tx) error {
		if _, err := getModelVersion(ctx, tx, name, version); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO registered_model_aliases (name, alias, version) VALUES (?, ?, ?)
			 ON CONFLICT (name, alias) DO UPDATE SET version = excluded.version`,
			name, alias, version,
		); err != nil {
			return mapError("upsert alias", err)
		}
		if err := touchModel(ctx, tx, name); err != nil {
			return err
		}
		mv, err := getModelVersion(ctx, tx, name, version)
		updated = mv
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAlias removes an alias binding.
func (r *registryRepository) DeleteAlias(ctx context.Context, name, alias string) error {
	return withTx(ctx, r.db, "delete alias", func(tx *sql.Tx) error {
		if _, err := getRegisteredModel(ctx, tx, name); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx,
			`DELETE FROM registered_model_aliases WHERE name = ? AND alias = ?`, name, alias,
		)
		if err != nil {
			return mapError("delete alias", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			return &domainreg.NotFoundError{Name: name, Alias: alias}
		}
		return touchModel(ctx, tx, name)
	})
}

// GetVersionByAlias resolves alias to its bound version.
func (r *registryRepository) GetVersionByAlias(ctx context.Context, name, alias string) (*domainreg.ModelVersion, error) {
	var version int
	err := r.db.QueryRowContext(ctx,
		`SELECT version FROM registered_model_aliases WHERE name = ? AND alias = ?`, name, alias,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := getRegisteredModel(ctx, r.db, name); err != nil {
			return nil, err
		}
		return nil, &domainreg.NotFoundError{Name: name, Alias: alias}
	}
	if err != nil {
		return nil, mapError("resolve alias", err)
	}
	return getModelVersion(ctx, r.db, name, version)
}

func touchModel(ctx context.Context, tx *sql.Tx, name string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE registered_models SET last_updated_time = ? WHERE name = ?`, toMillis(time.Now()), name,
	); err != nil {
		return mapError("touch registered model", err)
	}
	return nil
}
