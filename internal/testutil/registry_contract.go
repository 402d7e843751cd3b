package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"pgregory.net/rapid"

	domainreg "github.com/fkid009/MLflow-study/internal/domain/registry"
)

// RegistryFactory returns an empty repository owned by t.
type RegistryFactory func(t *testing.T) domainreg.RegistryRepository

// RunRegistryContract exercises the behavior every RegistryRepository must
// provide, including the per-model atomicity guarantees under concurrency.
func RunRegistryContract(t *testing.T, newRepo RegistryFactory) {
	t.Run("CreateAndGetModel", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.CreateRegisteredModel(ctx, domainreg.NewRegisteredModel("iris", "classifier")))
		got, err := repo.GetRegisteredModel(ctx, "iris")
		require.NoError(t, err)
		require.Equal(t, "iris", got.Name())
		require.Equal(t, "classifier", got.Description())

		err = repo.CreateRegisteredModel(ctx, domainreg.NewRegisteredModel("iris", ""))
		require.ErrorIs(t, err, domainreg.ErrAlreadyExists)

		_, err = repo.GetRegisteredModel(ctx, "missing")
		require.ErrorIs(t, err, domainreg.ErrNotFound)
	})

	t.Run("ListModelsSortedByName", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		for _, n := range []string{"wine", "iris", "digits"} {
			require.NoError(t, repo.CreateRegisteredModel(ctx, domainreg.NewRegisteredModel(n, "")))
		}
		models, err := repo.ListRegisteredModels(ctx)
		require.NoError(t, err)
		require.Len(t, models, 3)
		require.Equal(t, []string{"digits", "iris", "wine"}, []string{models[0].Name(), models[1].Name(), models[2].Name()})
	})

	t.Run("VersionsNumberedFromOne", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.CreateRegisteredModel(ctx, domainreg.NewRegisteredModel("iris", "")))

		for want := 1; want <= 3; want++ {
			mv := domainreg.NewModelVersion("iris", fmt.Sprintf("runs:/r%d/model", want), fmt.Sprintf("r%d", want), "")
			require.NoError(t, repo.CreateModelVersion(ctx, mv))
			require.Equal(t, want, mv.Version())
		}

		versions, err := repo.ListModelVersions(ctx, "iris")
		require.NoError(t, err)
		require.Len(t, versions, 3)
		for i, v := range versions {
			require.Equal(t, i+1, v.Version())
			require.Equal(t, domainreg.StageNone, v.Stage())
			require.NotNil(t, v.Aliases())
		}

		got, err := repo.GetModelVersion(ctx, "iris", 2)
		require.NoError(t, err)
		require.Equal(t, "runs:/r2/model", got.Source())
		require.Equal(t, "r2", got.RunID())
	})

	t.Run("VersionErrors", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.CreateModelVersion(ctx, domainreg.NewModelVersion("ghost", "file:///m", "", ""))
		require.ErrorIs(t, err, domainreg.ErrNotFound)

		_, err = repo.ListModelVersions(ctx, "ghost")
		require.ErrorIs(t, err, domainreg.ErrNotFound)

		require.NoError(t, repo.CreateRegisteredModel(ctx, domainreg.NewRegisteredModel("iris", "")))
		versions, err := repo.ListModelVersions(ctx, "iris")
		require.NoError(t, err)
		require.Empty(t, versions)

		_, err = repo.GetModelVersion(ctx, "iris", 9)
		var nf *domainreg.NotFoundError
		require.ErrorAs(t, err, &nf)
		require.Equal(t, 9, nf.Version)

		_, err = repo.TransitionStage(ctx, "iris", 9, domainreg.StageProduction, true)
		require.ErrorIs(t, err, domainreg.ErrNotFound)
		_, err = repo.SetAlias(ctx, "iris", "champion", 9)
		require.ErrorIs(t, err, domainreg.ErrNotFound)
	})

	t.Run("PromotionArchivesExistingHolders", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		seedVersions(t, repo, "iris", 3)

		_, err := repo.TransitionStage(ctx, "iris", 1, domainreg.StageProduction, false)
		require.NoError(t, err)
		_, err = repo.TransitionStage(ctx, "iris", 2, domainreg.StageProduction, false)
		require.NoError(t, err)
		require.Equal(t, 2, countInStage(t, repo, "iris", domainreg.StageProduction), "without archival both hold Production")

		res, err := repo.TransitionStage(ctx, "iris", 3, domainreg.StageProduction, true)
		require.NoError(t, err)
		require.Equal(t, 3, res.Version.Version())
		require.Equal(t, domainreg.StageProduction, res.Version.Stage())
		require.Len(t, res.Archived, 2)
		require.Equal(t, 1, res.Archived[0].Version())
		require.Equal(t, 2, res.Archived[1].Version())
		for _, a := range res.Archived {
			require.Equal(t, domainreg.StageArchived, a.Stage())
		}

		versions, err := repo.ListModelVersions(ctx, "iris")
		require.NoError(t, err)
		require.Equal(t, domainreg.StageArchived, versions[0].Stage())
		require.Equal(t, domainreg.StageArchived, versions[1].Stage())
		require.Equal(t, domainreg.StageProduction, versions[2].Stage())
	})

	t.Run("ReTransitionToSameStage", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		seedVersions(t, repo, "iris", 1)

		_, err := repo.TransitionStage(ctx, "iris", 1, domainreg.StageStaging, true)
		require.NoError(t, err)
		res, err := repo.TransitionStage(ctx, "iris", 1, domainreg.StageStaging, true)
		require.NoError(t, err)
		require.Empty(t, res.Archived, "a version never archives itself")
		require.Equal(t, domainreg.StageStaging, res.Version.Stage())
	})

	t.Run("AliasRebinding", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		seedVersions(t, repo, "iris", 2)

		mv, err := repo.SetAlias(ctx, "iris", "champion", 1)
		require.NoError(t, err)
		require.Equal(t, []string{"champion"}, mv.Aliases())

		mv, err = repo.SetAlias(ctx, "iris", "champion", 2)
		require.NoError(t, err)
		require.True(t, mv.HasAlias("champion"))

		v1, err := repo.GetModelVersion(ctx, "iris", 1)
		require.NoError(t, err)
		require.Empty(t, v1.Aliases(), "alias must leave its previous version")

		got, err := repo.GetVersionByAlias(ctx, "iris", "champion")
		require.NoError(t, err)
		require.Equal(t, 2, got.Version())

		_, err = repo.SetAlias(ctx, "iris", "challenger", 2)
		require.NoError(t, err)
		v2, err := repo.GetModelVersion(ctx, "iris", 2)
		require.NoError(t, err)
		require.Equal(t, []string{"challenger", "champion"}, v2.Aliases())
	})

	t.Run("DeleteAlias", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		seedVersions(t, repo, "iris", 1)

		_, err := repo.SetAlias(ctx, "iris", "champion", 1)
		require.NoError(t, err)
		require.NoError(t, repo.DeleteAlias(ctx, "iris", "champion"))

		_, err = repo.GetVersionByAlias(ctx, "iris", "champion")
		var nf *domainreg.NotFoundError
		require.ErrorAs(t, err, &nf)
		require.Equal(t, "champion", nf.Alias)

		require.ErrorIs(t, repo.DeleteAlias(ctx, "iris", "champion"), domainreg.ErrNotFound)
		require.ErrorIs(t, repo.DeleteAlias(ctx, "ghost", "champion"), domainreg.ErrNotFound)
		_, err = repo.GetVersionByAlias(ctx, "ghost", "champion")
		require.ErrorIs(t, err, domainreg.ErrNotFound)
	})

	t.Run("ConcurrentVersionCreation", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.CreateRegisteredModel(ctx, domainreg.NewRegisteredModel("iris", "")))

		const n = 16
		assigned := make([]int, n)
		var g errgroup.Group
		for i := 0; i < n; i++ {
			g.Go(func() error {
				mv := domainreg.NewModelVersion("iris", fmt.Sprintf("runs:/c%d/model", i), "", "")
				if err := repo.CreateModelVersion(ctx, mv); err != nil {
					return err
				}
				assigned[i] = mv.Version()
				return nil
			})
		}
		require.NoError(t, g.Wait())

		seen := make(map[int]bool, n)
		for _, v := range assigned {
			require.False(t, seen[v], "version %d assigned twice", v)
			seen[v] = true
		}
		for v := 1; v <= n; v++ {
			require.True(t, seen[v], "version %d missing", v)
		}
	})

	t.Run("ConcurrentPromotionLeavesSingleHolder", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		const n = 8
		seedVersions(t, repo, "iris", n)

		var g errgroup.Group
		for v := 1; v <= n; v++ {
			g.Go(func() error {
				_, err := repo.TransitionStage(ctx, "iris", v, domainreg.StageProduction, true)
				return err
			})
		}
		require.NoError(t, g.Wait())
		require.Equal(t, 1, countInStage(t, repo, "iris", domainreg.StageProduction))
		require.Equal(t, n-1, countInStage(t, repo, "iris", domainreg.StageArchived))
	})

	t.Run("ConcurrentAliasRebinding", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		const n = 8
		seedVersions(t, repo, "iris", n)

		var g errgroup.Group
		for v := 1; v <= n; v++ {
			g.Go(func() error {
				_, err := repo.SetAlias(ctx, "iris", "champion", v)
				return err
			})
		}
		require.NoError(t, g.Wait())

		bound, err := repo.GetVersionByAlias(ctx, "iris", "champion")
		require.NoError(t, err)
		versions, err := repo.ListModelVersions(ctx, "iris")
		require.NoError(t, err)
		holders := 0
		for _, v := range versions {
			if v.HasAlias("champion") {
				holders++
				require.Equal(t, bound.Version(), v.Version())
			}
		}
		require.Equal(t, 1, holders)
	})

	t.Run("RandomOperationsProperty", func(t *testing.T) {
		repo := newRepo(t)
		var counter atomic.Int64
		rapid.Check(t, func(rt *rapid.T) {
			ctx := context.Background()
			name := fmt.Sprintf("model-%d", counter.Add(1))
			if err := repo.CreateRegisteredModel(ctx, domainreg.NewRegisteredModel(name, "")); err != nil {
				rt.Fatalf("create model: %v", err)
			}

			created := 0
			aliases := map[string]int{}
			steps := rapid.IntRange(1, 25).Draw(rt, "steps")
			for i := 0; i < steps; i++ {
				switch op := rapid.IntRange(0, 2).Draw(rt, "op"); {
				case op == 0 || created == 0:
					mv := domainreg.NewModelVersion(name, "file:///m", "", "")
					if err := repo.CreateModelVersion(ctx, mv); err != nil {
						rt.Fatalf("create version: %v", err)
					}
					created++
					if mv.Version() != created {
						rt.Fatalf("version %d assigned, expected %d", mv.Version(), created)
					}
				case op == 1:
					v := rapid.IntRange(1, created).Draw(rt, "version")
					stage := rapid.SampledFrom(domainreg.AllStages).Draw(rt, "stage")
					if _, err := repo.TransitionStage(ctx, name, v, stage, stage.IsSingletonHeld()); err != nil {
						rt.Fatalf("transition: %v", err)
					}
				default:
					v := rapid.IntRange(1, created).Draw(rt, "version")
					alias := rapid.SampledFrom([]string{"champion", "challenger", "shadow"}).Draw(rt, "alias")
					if _, err := repo.SetAlias(ctx, name, alias, v); err != nil {
						rt.Fatalf("set alias: %v", err)
					}
					aliases[alias] = v
				}
			}

			versions, err := repo.ListModelVersions(ctx, name)
			if err != nil {
				rt.Fatalf("list: %v", err)
			}
			if len(versions) != created {
				rt.Fatalf("listed %d versions, created %d", len(versions), created)
			}
			holders := map[domainreg.Stage]int{}
			for i, v := range versions {
				if v.Version() != i+1 {
					rt.Fatalf("versions not ascending: position %d has %d", i, v.Version())
				}
				holders[v.Stage()]++
				for _, a := range v.Aliases() {
					if aliases[a] != v.Version() {
						rt.Fatalf("alias %s on version %d, last bound to %d", a, v.Version(), aliases[a])
					}
				}
			}
			if holders[domainreg.StageProduction] > 1 || holders[domainreg.StageStaging] > 1 {
				rt.Fatalf("singleton stage held by several versions: %v", holders)
			}
		})
	})
}

func seedVersions(t *testing.T, repo domainreg.RegistryRepository, name string, n int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.CreateRegisteredModel(ctx, domainreg.NewRegisteredModel(name, "")))
	for i := 0; i < n; i++ {
		require.NoError(t, repo.CreateModelVersion(ctx, domainreg.NewModelVersion(name, fmt.Sprintf("runs:/seed%d/model", i), "", "")))
	}
}

func countInStage(t *testing.T, repo domainreg.RegistryRepository, name string, stage domainreg.Stage) int {
	t.Helper()
	versions, err := repo.ListModelVersions(context.Background(), name)
	require.NoError(t, err)
	n := 0
	for _, v := range versions {
		if v.Stage() == stage {
			n++
		}
	}
	return n
}
