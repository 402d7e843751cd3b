// Package memory provides thread-safe in-memory implementations of the
// registry and tracking ports. They honor the same contracts as the SQLite
// repositories and back unit tests and ephemeral runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainreg "github.com/fkid009/MLflow-study/internal/domain/registry"
)

type modelEntry struct {
	model    *domainreg.RegisteredModel
	versions []*domainreg.ModelVersion // index i holds version i+1
	aliases  map[string]int
}

// RegistryRepository is an in-memory domainreg.RegistryRepository.
// Every mutation of a model runs under one exclusive lock, so version
// numbering, archival and alias rebinding are atomic.
type RegistryRepository struct {
	mu     sync.RWMutex
	models map[string]*modelEntry
}

// Ensure RegistryRepository implements domainreg.RegistryRepository.
var _ domainreg.RegistryRepository = (*RegistryRepository)(nil)

// NewRegistryRepository creates an empty repository.
func NewRegistryRepository() *RegistryRepository {
	return &RegistryRepository{models: make(map[string]*modelEntry)}
}

// update atomically modifies one model's entry. fn runs while holding the
// exclusive lock.
func (r *RegistryRepository) update(ctx context.Context, name string, fn func(e *modelEntry) error) error {
	if err := ctx.Err(); err != nil {
		return &domainreg.TransientStoreError{Op: "update", Err: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.models[name]
	if !ok {
		return &domainreg.NotFoundError{Name: name}
	}
	if err := fn(e); err != nil {
		return err
	}
	e.model = domainreg.ReconstituteRegisteredModel(e.model.Name(), e.model.Description(), e.model.CreatedAt(), time.Now())
	return nil
}

func (r *RegistryRepository) view(ctx context.Context, name string, fn func(e *modelEntry) error) error {
	if err := ctx.Err(); err != nil {
		return &domainreg.TransientStoreError{Op: "read", Err: err}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.models[name]
	if !ok {
		return &domainreg.NotFoundError{Name: name}
	}
	return fn(e)
}

// CreateRegisteredModel stores a new model.
func (r *RegistryRepository) CreateRegisteredModel(ctx context.Context, model *domainreg.RegisteredModel) error {
	if err := ctx.Err(); err != nil {
		return &domainreg.TransientStoreError{Op: "create registered model", Err: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[model.Name()]; exists {
		return &domainreg.AlreadyExistsError{Name: model.Name()}
	}
	r.models[model.Name()] = &modelEntry{model: model, aliases: map[string]int{}}
	return nil
}

// GetRegisteredModel retrieves a model by name.
func (r *RegistryRepository) GetRegisteredModel(ctx context.Context, name string) (*domainreg.RegisteredModel, error) {
	var out *domainreg.RegisteredModel
	err := r.view(ctx, name, func(e *modelEntry) error {
		out = e.model
		return nil
	})
	return out, err
}

// ListRegisteredModels returns all models sorted by name.
func (r *RegistryRepository) ListRegisteredModels(ctx context.Context) ([]*domainreg.RegisteredModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domainreg.TransientStoreError{Op: "list registered models", Err: err}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domainreg.RegisteredModel, 0, len(r.models))
	for _, e := range r.models {
		out = append(out, e.model)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

// CreateModelVersion appends a version numbered len+1.
func (r *RegistryRepository) CreateModelVersion(ctx context.Context, mv *domainreg.ModelVersion) error {
	return r.update(ctx, mv.Name(), func(e *modelEntry) error {
		mv.SetVersion(len(e.versions) + 1)
		e.versions = append(e.versions, mv.Clone())
		return nil
	})
}

// GetModelVersion retrieves one version.
func (r *RegistryRepository) GetModelVersion(ctx context.Context, name string, version int) (*domainreg.ModelVersion, error) {
	var out *domainreg.ModelVersion
	err := r.view(ctx, name, func(e *modelEntry) error {
		mv, err := e.version(name, version)
		if err != nil {
			return err
		}
		out = e.snapshot(mv)
		return nil
	})
	return out, err
}

// ListModelVersions returns every version, version ascending.
func (r *RegistryRepository) ListModelVersions(ctx context.Context, name string) ([]*domainreg.ModelVersion, error) {
	var out []*domainreg.ModelVersion
	err := r.view(ctx, name, func(e *modelEntry) error {
		out = make([]*domainreg.ModelVersion, 0, len(e.versions))
		for _, mv := range e.versions {
			out = append(out, e.snapshot(mv))
		}
		return nil
	})
	return out, err
}

// TransitionStage sets the stage, archiving other holders when asked.
func (r *RegistryRepository) TransitionStage(
	ctx context.Context, name string, version int, stage domainreg.Stage, archiveExisting bool,
) (*domainreg.StageTransition, error) {
	var result *domainreg.StageTransition
	err := r.update(ctx, name, func(e *modelEntry) error {
		target, err := e.version(name, version)
		if err != nil {
			return err
		}
		archived := []*domainreg.ModelVersion{}
		if archiveExisting {
			for _, mv := range e.versions {
				if mv.Version() != version && mv.Stage() == stage {
					mv.SetStage(domainreg.StageArchived)
					archived = append(archived, e.snapshot(mv))
				}
			}
		}
		target.SetStage(stage)
		result = &domainreg.StageTransition{Version: e.snapshot(target), Archived: archived}
		return nil
	})
	return result, err
}

// SetAlias binds alias to version, replacing any previous binding.
func (r *RegistryRepository) SetAlias(ctx context.Context, name, alias string, version int) (*domainreg.ModelVersion, error) {
	var out *domainreg.ModelVersion
	err := r.update(ctx, name, func(e *modelEntry) error {
		mv, err := e.version(name, version)
		if err != nil {
			return err
		}
		e.aliases[alias] = version
		out = e.snapshot(mv)
		return nil
	})
	return out, err
}

// DeleteAlias removes an alias binding.
func (r *RegistryRepository) DeleteAlias(ctx context.Context, name, alias string) error {
	return r.update(ctx, name, func(e *modelEntry) error {
		if _, ok := e.aliases[alias]; !ok {
			return &domainreg.NotFoundError{Name: name, Alias: alias}
		}
		delete(e.aliases, alias)
		return nil
	})
}

// GetVersionByAlias resolves alias.
func (r *RegistryRepository) GetVersionByAlias(ctx context.Context, name, alias string) (*domainreg.ModelVersion, error) {
	var out *domainreg.ModelVersion
	err := r.view(ctx, name, func(e *modelEntry) error {
		v, ok := e.aliases[alias]
		if !ok {
			return &domainreg.NotFoundError{Name: name, Alias: alias}
		}
		out = e.snapshot(e.versions[v-1])
		return nil
	})
	return out, err
}

func (e *modelEntry) version(name string, version int) (*domainreg.ModelVersion, error) {
	if version < 1 || version > len(e.versions) {
		return nil, &domainreg.NotFoundError{Name: name, Version: version}
	}
	return e.versions[version-1], nil
}

// snapshot copies mv with its current aliases attached.
func (e *modelEntry) snapshot(mv *domainreg.ModelVersion) *domainreg.ModelVersion {
	c := mv.Clone()
	aliases := []string{}
	for a, v := range e.aliases {
		if v == mv.Version() {
			aliases = append(aliases, a)
		}
	}
	c.SetAliases(aliases)
	return c
}
