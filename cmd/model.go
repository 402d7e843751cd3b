package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	appreg "github.com/fkid009/MLflow-study/internal/application/registry"
	domainreg "github.com/fkid009/MLflow-study/internal/domain/registry"
	"github.com/fkid009/MLflow-study/internal/presentation"
)

var (
	registerExperiment   string
	registerRunID        string
	registerModel        string
	registerArtifactPath string
	registerDescription  string
)

var modelRegisterCmd = &cobra.Command{
	Use:   "model:register",
	Short: "Register a run's logged model as a new model version",
	Long: `Register a run's logged model as a new model version.

The registered model is created on first use. The version's source is the
artifact path under the run's artifact root; the new version starts in
stage None.

Examples:
  mlstudy model:register --run 3f2a... --model iris-classifier
  mlstudy model:register --experiment wine --run 3f2a... --model wine --artifact-path sklearn-model`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *services) error {
			ctx := cmd.Context()
			exp, err := s.tracker.GetExperiment(ctx, experimentOrDefault(registerExperiment))
			if err != nil {
				return err
			}
			run, err := s.tracker.Store().GetRun(ctx, registerRunID)
			if err != nil {
				return err
			}
			if run.ExperimentID != exp.ID {
				return fmt.Errorf("run %s does not belong to experiment %q", run.ID, exp.Name)
			}

			if _, err := s.coord.EnsureRegisteredModel(ctx, registerModel); err != nil {
				return err
			}
			mv, err := s.coord.CreateModelVersion(ctx, domainreg.CreateVersionInput{
				Name:        registerModel,
				Source:      strings.TrimSuffix(run.ArtifactURI, "/") + "/" + strings.Trim(registerArtifactPath, "/"),
				RunID:       run.ID,
				Description: registerDescription,
			})
			if err != nil {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatJSON(presentation.FromModelVersion(mv))
		})
	},
}

var modelResolveCmd = &cobra.Command{
	Use:   "model:resolve URI",
	Short: "Resolve a models:/ URI to the version it names",
	Long: `Resolve a models:/ URI to the version it names.

Accepted forms:
  models:/<name>/<version>
  models:/<name>/<stage>     highest version currently in stage
  models:/<name>/latest      highest version
  models:/<name>@<alias>

Examples:
  mlstudy model:resolve models:/iris/Production
  mlstudy model:resolve models:/iris@champion | jq -r .source`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *services) error {
			mv, err := s.coord.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatJSON(presentation.FromModelVersion(mv))
		})
	},
}

func init() {
	modelRegisterCmd.Flags().StringVarP(&registerExperiment, "experiment", "e", "", "experiment the run belongs to (default: tracking.default_experiment)")
	modelRegisterCmd.Flags().StringVar(&registerRunID, "run", "", "run id whose artifact is registered")
	modelRegisterCmd.Flags().StringVarP(&registerModel, "model", "m", "", "registered model name")
	modelRegisterCmd.Flags().StringVar(&registerArtifactPath, "artifact-path", appreg.DefaultArtifactPath, "artifact path of the model under the run")
	modelRegisterCmd.Flags().StringVar(&registerDescription, "description", "", "version description")
	_ = modelRegisterCmd.MarkFlagRequired("run")
	_ = modelRegisterCmd.MarkFlagRequired("model")
	rootCmd.AddCommand(modelRegisterCmd)

	rootCmd.AddCommand(modelResolveCmd)
}
