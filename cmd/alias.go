package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fkid009/MLflow-study/internal/presentation"
)

var (
	aliasModel   string
	aliasName    string
	aliasVersion int
)

var aliasSetCmd = &cobra.Command{
	Use:   "alias:set",
	Short: "Bind an alias to a model version",
	Long: `Bind an alias to a model version, moving it off any other version.

Aliases must not be empty, purely numeric, or the reserved name "latest".

Examples:
  mlstudy alias:set --model iris-classifier --alias champion --version 3`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *services) error {
			mv, err := s.coord.SetAlias(cmd.Context(), aliasModel, aliasName, aliasVersion)
			if err != nil {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatJSON(presentation.FromModelVersion(mv))
		})
	},
}

var aliasDeleteCmd = &cobra.Command{
	Use:   "alias:delete",
	Short: "Remove an alias binding",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *services) error {
			if err := s.coord.DeleteAlias(cmd.Context(), aliasModel, aliasName); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted alias %q of %s\n", aliasName, aliasModel)
			return err
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{aliasSetCmd, aliasDeleteCmd} {
		c.Flags().StringVarP(&aliasModel, "model", "m", "", "registered model name")
		c.Flags().StringVarP(&aliasName, "alias", "a", "", "alias name")
		_ = c.MarkFlagRequired("model")
		_ = c.MarkFlagRequired("alias")
		rootCmd.AddCommand(c)
	}
	aliasSetCmd.Flags().IntVarP(&aliasVersion, "version", "v", 0, "version number to bind")
	_ = aliasSetCmd.MarkFlagRequired("version")
}
