package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	domainreg "github.com/fkid009/MLflow-study/internal/domain/registry"
	"github.com/fkid009/MLflow-study/internal/log"
	"github.com/fkid009/MLflow-study/internal/presentation"
	"github.com/fkid009/MLflow-study/internal/watcher"
)

var (
	listModel string
	listJSON  bool
	listWatch bool

	promoteModel     string
	promoteVersion   int
	promoteStage     string
	promoteAlias     string
	promoteNoArchive bool
)

var versionListCmd = &cobra.Command{
	Use:   "version:list",
	Short: "List the versions of a registered model",
	Long: `List the versions of a registered model in version order.

The table shows VER, STAGE, ALIAS, CREATED and RUN_ID; ALIAS is "-" when a
version has none. With --watch the table is redrawn whenever the database
changes, including changes made by other processes.

Examples:
  mlstudy version:list --model iris-classifier
  mlstudy version:list --model iris-classifier --json | jq '.[].current_stage'
  mlstudy version:list --model iris-classifier --watch`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *services) error {
			render := func(ctx context.Context, w io.Writer) error {
				versions, err := s.coord.SearchModelVersions(ctx, listModel)
				if err != nil {
					return err
				}
				f := presentation.NewFormatter(w)
				if listJSON {
					return f.FormatVersions(presentation.FromModelVersions(versions))
				}
				return f.FormatVersionTable(presentation.FromModelVersions(versions))
			}

			if err := render(cmd.Context(), cmd.OutOrStdout()); err != nil {
				return err
			}
			if !listWatch {
				return nil
			}
			return watchVersions(cmd.Context(), cmd.OutOrStdout(), render)
		})
	},
}

// watchVersions re-renders on every debounced database change until interrupted.
func watchVersions(ctx context.Context, out io.Writer, render func(context.Context, io.Writer) error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(watcher.DefaultConfig(cfg.DBPath))
	if err != nil {
		return fmt.Errorf("watching %s: %w", cfg.DBPath, err)
	}
	return w.Watch(ctx, func(c watcher.Change) {
		log.Debug(log.CatWatcher, "Database changed", "events", c.Events, "files", c.Files)
		_, _ = fmt.Fprintln(out)
		if err := render(ctx, out); err != nil {
			log.ErrorErr(log.CatWatcher, "Re-render failed", err)
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
		}
	})
}

var versionPromoteCmd = &cobra.Command{
	Use:   "version:promote",
	Short: "Move a model version to a lifecycle stage",
	Long: `Move a model version to a lifecycle stage: None, Staging, Production or Archived.

Promoting into Staging or Production archives the versions currently in
that stage unless --no-archive-existing is given or registry.archive_existing
is false. --alias additionally binds an alias to the promoted version.

Examples:
  mlstudy version:promote --model iris-classifier --version 3 --stage Production
  mlstudy version:promote --model iris-classifier --version 4 --stage Staging --no-archive-existing
  mlstudy version:promote --model iris-classifier --version 3 --stage Production --alias champion`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stage, err := domainreg.ParseStage(promoteStage)
		if err != nil {
			return err
		}
		archive := cfg.Registry.ArchiveExisting && !promoteNoArchive

		return withServices(func(s *services) error {
			t, err := s.coord.TransitionStage(cmd.Context(), promoteModel, promoteVersion, stage, archive)
			if err != nil {
				return err
			}
			if promoteAlias != "" {
				mv, err := s.coord.SetAlias(cmd.Context(), promoteModel, promoteAlias, promoteVersion)
				if err != nil {
					return err
				}
				t.Version = mv
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatJSON(presentation.FromStageTransition(t))
		})
	},
}

func init() {
	versionListCmd.Flags().StringVarP(&listModel, "model", "m", "", "registered model name")
	versionListCmd.Flags().BoolVar(&listJSON, "json", false, "print versions as JSON")
	versionListCmd.Flags().BoolVarP(&listWatch, "watch", "w", false, "redraw when the database changes")
	_ = versionListCmd.MarkFlagRequired("model")
	rootCmd.AddCommand(versionListCmd)

	versionPromoteCmd.Flags().StringVarP(&promoteModel, "model", "m", "", "registered model name")
	versionPromoteCmd.Flags().IntVarP(&promoteVersion, "version", "v", 0, "version number")
	versionPromoteCmd.Flags().StringVarP(&promoteStage, "stage", "s", "", "target stage: None, Staging, Production, Archived")
	versionPromoteCmd.Flags().StringVar(&promoteAlias, "alias", "", "also bind this alias to the version")
	versionPromoteCmd.Flags().BoolVar(&promoteNoArchive, "no-archive-existing", false, "keep other holders of the stage")
	_ = versionPromoteCmd.MarkFlagRequired("model")
	_ = versionPromoteCmd.MarkFlagRequired("version")
	_ = versionPromoteCmd.MarkFlagRequired("stage")
	rootCmd.AddCommand(versionPromoteCmd)
}
