package registry

import "context"

// RegistryRepository defines the persistence interface for the model registry.
//
// Implementations must serialize version-number assignment, archival on
// promotion, and alias rebinding per RegisteredModel: each of those calls is a
// single atomic unit with respect to concurrent calls on the same model.
// Store unavailability is reported as TransientStoreError.
type RegistryRepository interface {
	// CreateRegisteredModel persists a new model.
	// Returns AlreadyExistsError if the name is taken.
	CreateRegisteredModel(ctx context.Context, model *RegisteredModel) error

	// GetRegisteredModel returns NotFoundError if the model does not exist.
	GetRegisteredModel(ctx context.Context, name string) (*RegisteredModel, error)

	// ListRegisteredModels returns all models ordered by name.
	ListRegisteredModels(ctx context.Context) ([]*RegisteredModel, error)

	// CreateModelVersion assigns version = max(existing)+1 (1 for the first) and
	// persists mv with the assigned number set on it.
	// Returns NotFoundError if the model does not exist.
	CreateModelVersion(ctx context.Context, mv *ModelVersion) error

	// GetModelVersion returns NotFoundError if the model or version does not exist.
	GetModelVersion(ctx context.Context, name string, version int) (*ModelVersion, error)

	// ListModelVersions returns every version of a model in version-ascending order.
	// Returns NotFoundError if the model does not exist.
	ListModelVersions(ctx context.Context, name string) ([]*ModelVersion, error)

	// TransitionStage sets the version's stage. When archiveExisting is true,
	// every other version currently in the target stage moves to StageArchived
	// in the same atomic unit.
	TransitionStage(ctx context.Context, name string, version int, stage Stage, archiveExisting bool) (*StageTransition, error)

	// SetAlias binds alias to version, removing it from any other version of
	// the same model in the same atomic unit.
	SetAlias(ctx context.Context, name, alias string, version int) (*ModelVersion, error)

	// DeleteAlias removes the alias binding.
	// Returns NotFoundError if the alias is not bound.
	DeleteAlias(ctx context.Context, name, alias string) error

	// GetVersionByAlias resolves an alias to its version.
	// Returns NotFoundError if the alias is not bound.
	GetVersionByAlias(ctx context.Context, name, alias string) (*ModelVersion, error)
}
