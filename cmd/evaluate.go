package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fkid009/MLflow-study/internal/evaluation"
	"github.com/fkid009/MLflow-study/internal/presentation"
)

var (
	evalTrue    []int
	evalPred    []int
	evalAverage string
	evalPrefix  string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Compute classification metrics from label vectors",
	Long: `Compute accuracy, precision, recall and F1 from true and predicted labels.

Averages: macro (default), weighted, micro. Classes with no predictions or
no true samples score 0 rather than failing.

Examples:
  mlstudy evaluate --y-true 0,1,2,2 --y-pred 0,2,2,2
  mlstudy evaluate --y-true 0,1,1 --y-pred 0,1,0 --average weighted --prefix val_`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := evaluation.Score(evalTrue, evalPred, evaluation.Average(evalAverage))
		if err != nil {
			return err
		}
		f := presentation.NewFormatter(cmd.OutOrStdout())
		if evalPrefix != "" {
			return f.FormatJSON(m.Map(evalPrefix))
		}
		return f.FormatJSON(m)
	},
}

func init() {
	evaluateCmd.Flags().IntSliceVar(&evalTrue, "y-true", nil, "true labels, comma separated")
	evaluateCmd.Flags().IntSliceVar(&evalPred, "y-pred", nil, "predicted labels, comma separated")
	evaluateCmd.Flags().StringVar(&evalAverage, "average", string(evaluation.Macro), "macro, weighted or micro")
	evaluateCmd.Flags().StringVar(&evalPrefix, "prefix", "", "print a flat metric map with this key prefix, e.g. val_")
	_ = evaluateCmd.MarkFlagRequired("y-true")
	_ = evaluateCmd.MarkFlagRequired("y-pred")
	rootCmd.AddCommand(evaluateCmd)
}
