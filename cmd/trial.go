package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	appreg "github.com/fkid009/MLflow-study/internal/application/registry"
	domainreg "github.com/fkid009/MLflow-study/internal/domain/registry"
	"github.com/fkid009/MLflow-study/internal/presentation"
)

var (
	trialExperiment   string
	trialParentName   string
	trialParentTags   []string
	trialMetric       string
	trialModel        string
	trialArtifactPath string
	trialStage        string
	trialAlias        string
	trialArchive      bool
)

var trialRegisterCmd = &cobra.Command{
	Use:   "trial:register",
	Short: "Register the best trial of a tuning study as a model version",
	Long: `Register the best trial of a hyperparameter tuning study as a model version.

The most recent FINISHED parent run named --parent-name and carrying every
--parent-tag is located, its FINISHED child runs are ranked by --metric
(higher is better, the most recently started run wins ties), and the
winner's model artifact becomes a new version of --model. --stage then
promotes it and --alias binds an alias to it.

Defaults come from the registry section of the config: parent run
optuna_tuning tagged stage=tuning, promoted to Production. Pass --stage ""
to register without promoting.

Environment fallbacks:
  ALIAS             used when --alias is not given
  ARCHIVE_EXISTING  true/1/yes, used when --archive-existing is not given

Examples:
  mlstudy trial:register --experiment iris-tuning --model iris-classifier
  mlstudy trial:register --parent-name optuna_tuning --metric val_f1_macro \
    --model iris-classifier --stage Production --alias champion`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		parentTags, err := parseKV("parent-tag", trialParentTags)
		if err != nil {
			return err
		}

		req := appreg.BestTrialRequest{
			Experiment:    experimentOrDefault(trialExperiment),
			ParentRunName: trialParentName,
			ParentTags:    parentTags,
			MetricKey:     trialMetric,
			ModelName:     trialModel,
			ArtifactPath:  trialArtifactPath,
			Alias:         trialAlias,
		}
		if req.ParentRunName == "" {
			req.ParentRunName = cfg.Registry.ParentRunName
		}
		if len(req.ParentTags) == 0 {
			req.ParentTags = cfg.Registry.ParentTags
		}
		if req.MetricKey == "" {
			req.MetricKey = cfg.Registry.Metric
		}
		stageName := cfg.Registry.Stage
		if cmd.Flags().Changed("stage") {
			stageName = trialStage
		}
		if !cmd.Flags().Changed("alias") {
			req.Alias = strings.TrimSpace(os.Getenv("ALIAS"))
		}

		req.ArchiveExisting = cfg.Registry.ArchiveExisting
		if cmd.Flags().Changed("archive-existing") {
			req.ArchiveExisting = trialArchive
		} else if v, ok := envBool("ARCHIVE_EXISTING"); ok {
			req.ArchiveExisting = v
		}

		if stageName != "" {
			stage, err := domainreg.ParseStage(stageName)
			if err != nil {
				return err
			}
			req.Stage = stage
		}

		return withServices(func(s *services) error {
			res, err := s.registrar.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatJSON(presentation.FromBestTrialResult(res))
		})
	},
}

func init() {
	f := trialRegisterCmd.Flags()
	f.StringVarP(&trialExperiment, "experiment", "e", "", "experiment of the tuning study (default: tracking.default_experiment)")
	f.StringVar(&trialParentName, "parent-name", "", "run name of the study's parent run (default: registry.parent_run_name)")
	f.StringArrayVar(&trialParentTags, "parent-tag", nil, "key=value tag the parent run must carry, replacing registry.parent_tags (repeatable)")
	f.StringVar(&trialMetric, "metric", "", "metric to maximize (default: registry.metric)")
	f.StringVarP(&trialModel, "model", "m", "", "registered model name")
	f.StringVar(&trialArtifactPath, "artifact-path", appreg.DefaultArtifactPath, "artifact path of the model under the best run")
	f.StringVarP(&trialStage, "stage", "s", "", "promote the new version to this stage (default: registry.stage)")
	f.StringVar(&trialAlias, "alias", "", "bind this alias to the new version (env ALIAS)")
	f.BoolVar(&trialArchive, "archive-existing", false, "archive other holders of --stage (env ARCHIVE_EXISTING, default: registry.archive_existing)")
	_ = trialRegisterCmd.MarkFlagRequired("model")
	rootCmd.AddCommand(trialRegisterCmd)
}
