package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	appreg "github.com/fkid009/MLflow-study/internal/application/registry"
	apptrack "github.com/fkid009/MLflow-study/internal/application/tracking"
	"github.com/fkid009/MLflow-study/internal/artifacts"
	domainreg "github.com/fkid009/MLflow-study/internal/domain/registry"
	"github.com/fkid009/MLflow-study/internal/infrastructure/sqlite"
	"github.com/fkid009/MLflow-study/internal/log"
	"github.com/fkid009/MLflow-study/internal/metrics"
	"github.com/fkid009/MLflow-study/internal/pubsub"
	"github.com/fkid009/MLflow-study/internal/tracing"
)

// services is the object graph every data command runs against.
type services struct {
	db        *sqlite.DB
	tracing   *tracing.Provider
	events    *pubsub.Broker[domainreg.Event]
	coord     *appreg.Coordinator
	tracker   *apptrack.Tracker
	registrar *appreg.BestTrialRegistrar
}

// openServices opens the database and wires the registry and tracking layers.
func openServices() (*services, error) {
	provider, err := tracing.NewProvider(context.Background(), cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, fmt.Errorf("opening database %s: %w", cfg.DBPath, err)
	}

	runs := db.RunStore()
	store, err := artifacts.NewLocalStore(cfg.ArtifactRoot, runs)
	if err != nil {
		_ = db.Close()
		_ = provider.Shutdown(context.Background())
		return nil, fmt.Errorf("opening artifact store: %w", err)
	}

	events := pubsub.NewBroker[domainreg.Event](pubsub.WithDropHook(func(t pubsub.EventType) {
		metrics.RecordEventDropped(string(t))
	}))
	coord := appreg.NewCoordinator(db.RegistryRepository(),
		appreg.WithTracer(provider.Tracer()),
		appreg.WithPublisher(events),
	)
	tracker := apptrack.NewTracker(runs, store,
		apptrack.WithExperimentCacheTTL(cfg.Tracking.ExperimentCacheTTL),
		apptrack.WithTracer(provider.Tracer()),
	)

	log.Debug(log.CatCLI, "services ready", "db", db.Path(), "artifacts", store.Root(), "tracing", provider.Enabled())
	return &services{
		db:        db,
		tracing:   provider,
		events:    events,
		coord:     coord,
		tracker:   tracker,
		registrar: appreg.NewBestTrialRegistrar(runs, coord),
	}, nil
}

// Close flushes spans and closes the database.
func (s *services) Close() error {
	s.events.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(s.tracing.Shutdown(ctx), s.db.Close())
}

// withServices opens services for the duration of fn.
func withServices(fn func(s *services) error) (err error) {
	s, err := openServices()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}
