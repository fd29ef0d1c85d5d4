package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logJSON    bool
	rootCmd    = &cobra.Command{
		Use:   "app-forge",
		Short: "App Forge - Autonomous example-app factory",
		Long: `App Forge maintains a repository of generated example applications.
It asks an LLM for fresh app ideas, generates full application file sets,
reviews and fixes the generated code, and keeps a catalog of everything
it has built.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
