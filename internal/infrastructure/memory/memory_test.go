package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	domainreg "github.com/fkid009/MLflow-study/internal/domain/registry"
	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
	"github.com/fkid009/MLflow-study/internal/testutil"
)

func TestRegistryRepository_Contract(t *testing.T) {
	testutil.RunRegistryContract(t, func(t *testing.T) domainreg.RegistryRepository {
		return NewRegistryRepository()
	})
}

func TestRunStore_Contract(t *testing.T) {
	testutil.RunRunStoreContract(t, func(t *testing.T) domaintrack.RunStore {
		return NewRunStore()
	})
}

func TestRegistryRepository_ReturnsCopies(t *testing.T) {
	repo := NewRegistryRepository()
	ctx := context.Background()
	require.NoError(t, repo.CreateRegisteredModel(ctx, domainreg.NewRegisteredModel("iris", "")))
	mv := domainreg.NewModelVersion("iris", "file:///m", "", "")
	require.NoError(t, repo.CreateModelVersion(ctx, mv))

	mv.SetStage(domainreg.StageProduction)
	got, err := repo.GetModelVersion(ctx, "iris", 1)
	require.NoError(t, err)
	require.Equal(t, domainreg.StageNone, got.Stage(), "caller mutation must not leak into the store")
}

func TestRegistryRepository_CancelledContext(t *testing.T) {
	repo := NewRegistryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetRegisteredModel(ctx, "iris")
	require.ErrorIs(t, err, domainreg.ErrTransientStore)
	require.ErrorIs(t, err, context.Canceled)
}
