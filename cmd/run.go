package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	appreg "github.com/fkid009/MLflow-study/internal/application/registry"
	apptrack "github.com/fkid009/MLflow-study/internal/application/tracking"
	"github.com/fkid009/MLflow-study/internal/presentation"
)

var (
	runExperiment string
	runName       string
	runParams     []string
	runMetrics    []string
	runTags       []string
	runTexts      []string
	runFiles      []string
	runParent     string
	runJSON       bool

	latestExperiment   string
	latestArtifactPath string
	latestJSON         bool

	searchExperiment string
	searchFilter     string
	searchOrderBy    []string
	searchMax        int
	searchJSON       bool
)

var runLogCmd = &cobra.Command{
	Use:   "run:log",
	Short: "Record one run with params, metrics, tags and artifacts",
	Long: `Record one run with params, metrics, tags and artifacts.

The run is started, everything given is logged, and the run ends FINISHED.
If any value fails to log the run ends FAILED and the error is returned.
Prints the run id.

Examples:
  mlstudy run:log --experiment iris-tutorial --name baseline \
    --param C=1.0 --param max_iter=200 \
    --metric val_f1_macro=0.93 --metric loss=0.41@10 \
    --tag stage=baseline --text notes.txt="first try"

  # Nested trial under a parent run
  mlstudy run:log --parent 3f2a... --name trial-1 --metric val_f1_macro=0.95

  # Copy a file into the run's artifacts under model/
  mlstudy run:log --file ./model.pkl:model`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseKV("param", runParams)
		if err != nil {
			return err
		}
		tags, err := parseKV("tag", runTags)
		if err != nil {
			return err
		}
		texts, err := parseKV("text", runTexts)
		if err != nil {
			return err
		}
		metrics := make([]metricArg, 0, len(runMetrics))
		for _, raw := range runMetrics {
			m, err := parseMetric(raw)
			if err != nil {
				return err
			}
			metrics = append(metrics, m)
		}

		return withServices(func(s *services) error {
			exp, err := s.tracker.SetupExperiment(cmd.Context(), experimentOrDefault(runExperiment))
			if err != nil {
				return err
			}

			var runID string
			opts := apptrack.RunOptions{Name: runName, Tags: tags, ParentRunID: runParent}
			err = s.tracker.WithRun(cmd.Context(), exp, opts, func(ctx context.Context, run *apptrack.ActiveRun) error {
				runID = run.ID()
				if err := run.LogParams(ctx, params); err != nil {
					return err
				}
				for _, m := range metrics {
					if err := run.LogMetric(ctx, m.key, m.value, m.step); err != nil {
						return err
					}
				}
				for _, path := range sortedKeys(texts) {
					if _, err := run.LogText(texts[path], path); err != nil {
						return err
					}
				}
				for _, spec := range runFiles {
					src, dir := parseFileSpec(spec)
					if _, err := run.LogFile(src, dir); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			if !runJSON {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), runID)
				return err
			}
			run, err := s.tracker.Store().GetRun(cmd.Context(), runID)
			if err != nil {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatJSON(presentation.FromRun(run))
		})
	},
}

var runLatestCmd = &cobra.Command{
	Use:   "run:latest",
	Short: "Print the model URI of the most recent run",
	Long: `Print the runs:/<run_id>/<artifact-path> URI of the most recently started
run in an experiment, for reloading the model it logged.

When MODEL_URI is set it is printed as-is and the store is not read.

Examples:
  mlstudy run:latest --experiment iris-tutorial
  MODEL_URI=models:/iris@champion mlstudy run:latest`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if uri := os.Getenv("MODEL_URI"); uri != "" && !latestJSON {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), uri)
			return err
		}

		return withServices(func(s *services) error {
			run, err := s.tracker.LatestRun(cmd.Context(), experimentOrDefault(latestExperiment))
			if err != nil {
				return err
			}
			if latestJSON {
				return presentation.NewFormatter(cmd.OutOrStdout()).FormatJSON(presentation.FromRun(run))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), run.ModelURI(latestArtifactPath))
			return err
		})
	},
}

var runSearchCmd = &cobra.Command{
	Use:   "run:search",
	Short: "Search runs with a filter string",
	Long: `Search the runs of one experiment.

--filter takes clauses joined with "and":
  attributes.status|run_name|run_id  = or != 'value'
  tags.<key>, params.<key>           = or != 'value'
  metrics.<key>                      =, !=, >, >=, <, <= number
Keys containing dots can be backquoted: tags.` + "`mlflow.parentRunId`" + `.

--order-by is repeatable, "<entity>.<key> [ASC|DESC]". Runs missing an
ordering metric sort last. Without --order-by the newest run comes first.

Examples:
  mlstudy run:search --experiment iris-tuning \
    --filter "tags.stage = 'tuning' and attributes.status = 'FINISHED'"
  mlstudy run:search --filter "metrics.val_f1_macro >= 0.9" \
    --order-by "metrics.val_f1_macro DESC" --max-results 5 --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if searchMax < 0 {
			return fmt.Errorf("--max-results must not be negative, got %d", searchMax)
		}
		orderBy := searchOrderBy
		if len(orderBy) == 0 {
			orderBy = []string{"attributes.start_time DESC"}
		}

		return withServices(func(s *services) error {
			runs, err := s.tracker.SearchRuns(cmd.Context(), experimentOrDefault(searchExperiment), searchFilter, orderBy, searchMax)
			if err != nil {
				return err
			}
			f := presentation.NewFormatter(cmd.OutOrStdout())
			if searchJSON {
				return f.FormatJSON(presentation.FromRuns(runs))
			}
			return f.FormatRunTable(presentation.FromRuns(runs))
		})
	},
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	runLogCmd.Flags().StringVarP(&runExperiment, "experiment", "e", "", "experiment name (default: tracking.default_experiment)")
	runLogCmd.Flags().StringVarP(&runName, "name", "n", "", "run name")
	runLogCmd.Flags().StringArrayVar(&runParams, "param", nil, "param key=value (repeatable)")
	runLogCmd.Flags().StringArrayVar(&runMetrics, "metric", nil, "metric key=value[@step] (repeatable)")
	runLogCmd.Flags().StringArrayVar(&runTags, "tag", nil, "tag key=value (repeatable)")
	runLogCmd.Flags().StringArrayVar(&runTexts, "text", nil, "text artifact path=content (repeatable)")
	runLogCmd.Flags().StringArrayVar(&runFiles, "file", nil, "copy a local file into the run's artifacts, src[:dir] (repeatable)")
	runLogCmd.Flags().StringVar(&runParent, "parent", "", "parent run id for nested runs")
	runLogCmd.Flags().BoolVar(&runJSON, "json", false, "print the recorded run as JSON")
	rootCmd.AddCommand(runLogCmd)

	runLatestCmd.Flags().StringVarP(&latestExperiment, "experiment", "e", "", "experiment name (default: tracking.default_experiment)")
	runLatestCmd.Flags().StringVar(&latestArtifactPath, "artifact-path", appreg.DefaultArtifactPath, "artifact path of the logged model")
	runLatestCmd.Flags().BoolVar(&latestJSON, "json", false, "print the whole run as JSON")
	rootCmd.AddCommand(runLatestCmd)

	runSearchCmd.Flags().StringVarP(&searchExperiment, "experiment", "e", "", "experiment name (default: tracking.default_experiment)")
	runSearchCmd.Flags().StringVar(&searchFilter, "filter", "", "filter string, e.g. \"metrics.acc > 0.9 and tags.stage = 'tuning'\"")
	runSearchCmd.Flags().StringArrayVar(&searchOrderBy, "order-by", nil, "sort term \"<entity>.<key> [ASC|DESC]\" (repeatable)")
	runSearchCmd.Flags().IntVar(&searchMax, "max-results", 0, "return at most this many runs (0 = all)")
	runSearchCmd.Flags().BoolVar(&searchJSON, "json", false, "print runs as JSON")
	rootCmd.AddCommand(runSearchCmd)
}
