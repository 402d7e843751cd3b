package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fkid009/MLflow-study/internal/api"
	domainreg "github.com/fkid009/MLflow-study/internal/domain/registry"
	"github.com/fkid009/MLflow-study/internal/log"
	"github.com/fkid009/MLflow-study/internal/metrics"
	"github.com/fkid009/MLflow-study/internal/pubsub"
)

var (
	serveAddr        string
	serveCORSOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the model registry over HTTP",
	Long: `Serve the model registry over HTTP until interrupted.

Routes:
  POST   /registered-models
  GET    /registered-models
  GET    /registered-models/{name}
  GET    /registered-models/{name}/versions
  POST   /registered-models/{name}/versions
  GET    /registered-models/{name}/versions/{version}
  POST   /registered-models/{name}/versions/{version}/stage
  PUT    /registered-models/{name}/aliases/{alias}
  GET    /registered-models/{name}/aliases/{alias}
  DELETE /registered-models/{name}/aliases/{alias}
  GET    /model-versions/resolve?uri=models:/...
  GET    /health
  GET    /metrics

Example:
  mlstudy serve                          # Start on api.addr (127.0.0.1:5050)
  mlstudy serve --addr :8080             # Start on port 8080
  mlstudy serve --cors-origin http://localhost:3000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		apiCfg := cfg.API
		if serveAddr != "" {
			apiCfg.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withServices(func(s *services) error {
			go logRegistryEvents(ctx, s.events)
			if l := log.NewListener(ctx); l != nil {
				go countLogEntries(l)
			}

			opts := api.Options{
				Config:          apiCfg,
				CORSOrigins:     serveCORSOrigins,
				ArchiveExisting: cfg.Registry.ArchiveExisting,
			}
			if s.tracing.Enabled() {
				opts.Tracer = s.tracing.Tracer()
			}

			log.Info(log.CatAPI, "Starting API", "addr", apiCfg.Addr, "db", cfg.DBPath)
			cmd.Printf("mlstudy serving registry on http://%s\n", apiCfg.Addr)
			return api.NewServer(s.coord, opts).Run(ctx)
		})
	},
}

// logRegistryEvents writes every registry change to the log until ctx is done.
func logRegistryEvents(ctx context.Context, events pubsub.Subscriber[domainreg.Event]) {
	pubsub.Each(ctx, events, func(e pubsub.Event[domainreg.Event]) {
		p := e.Payload
		log.Info(log.CatRegistry, "Registry event",
			"kind", string(e.Type), "event", string(p.Type), "model", p.Model,
			"version", p.Version, "stage", p.Stage, "alias", p.Alias, "archived", p.Archived)
	})
}

// countLogEntries feeds mlstudy_log_entries_total until the listener ends.
func countLogEntries(l *log.LogListener) {
	for {
		ev, ok := l.Next()
		if !ok {
			return
		}
		metrics.RecordLogEntry(ev.Payload.Level.String(), string(ev.Payload.Category))
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "address to listen on (overrides api.addr)")
	serveCmd.Flags().StringSliceVar(&serveCORSOrigins, "cors-origin", nil, "allow cross-origin requests from these origins")
	rootCmd.AddCommand(serveCmd)
}
