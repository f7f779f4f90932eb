package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tobi",
	Short: "Conversational research-assistant backend",
	Long: `Tobi is a websocket chat backend for an HIV-prevention research
assistant. It ingests a document corpus into a semantic index, answers
questions with streamed, cited responses, and serves the source
documents behind the citations.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".tobi.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
