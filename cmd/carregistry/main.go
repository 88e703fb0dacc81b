package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "carregistry",
	Short: "Car registry gateway backed by a Notion database",
	Long: `carregistry serves a small REST API for registering cars and stores every
entry as a page in a Notion database.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, tokenCmd, emulatorCmd)
}
