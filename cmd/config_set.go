package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fkid009/MLflow-study/internal/config"
)

var configSetCmd = &cobra.Command{
	Use:   "config:set KEY VALUE",
	Short: "Set one key in the config file",
	Long: `Set one key in the active config file, keeping its comments and other keys.

Keys are dotted paths as in the YAML file.

Examples:
  mlstudy config:set tracking.default_experiment wine-quality
  mlstudy config:set registry.archive_existing false
  mlstudy config:set tracing.enabled true`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetValue(configPath, args[0], args[1]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (%s)\n", args[0], args[1], configPath)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configSetCmd)
}
