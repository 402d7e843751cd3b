package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fkid009/MLflow-study/internal/presentation"
)

var experimentJSON bool

var experimentSetupCmd = &cobra.Command{
	Use:   "experiment:setup NAME",
	Short: "Create an experiment if it does not exist and print its id",
	Long: `Create an experiment if it does not exist and print its id.

Running it again with the same name returns the same experiment.

Examples:
  mlstudy experiment:setup iris-tutorial
  mlstudy experiment:setup iris-tutorial --json | jq -r .artifact_location`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *services) error {
			exp, err := s.tracker.SetupExperiment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if experimentJSON {
				return presentation.NewFormatter(cmd.OutOrStdout()).FormatJSON(presentation.FromExperiment(exp))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), exp.ID)
			return err
		})
	},
}

func init() {
	experimentSetupCmd.Flags().BoolVar(&experimentJSON, "json", false, "print the experiment as JSON")
	rootCmd.AddCommand(experimentSetupCmd)
}
