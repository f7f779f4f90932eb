package cmd

import (
	"github.com/spf13/cobra"

	"github.com/i2i-labs/tobi-backend/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize tobi configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the backend and generates a .tobi.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
