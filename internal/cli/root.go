// Package cli implements the copilot terminal host: a full assisted session
// from the command line, plus standalone subcommands for the individual
// protocol operations.
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cartoflow/gis-copilot/internal/backend"
)

var (
	serverURL     string
	clientTimeout time.Duration

	rootCmd = &cobra.Command{
		Use:   "copilot",
		Short: "AI scripting assistant for desktop GIS",
		Long: `copilot drives the GIS code-generation backend from the terminal:
describe a task in plain language, review the proposed script, and run it
under a subprocess sandbox with automatic one-shot repair on failure.`,
		SilenceUsage: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", backend.DefaultBaseURL, "backend base URL")
	rootCmd.PersistentFlags().DurationVar(&clientTimeout, "timeout", 60*time.Second, "request timeout")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(echoCmd)
}

func newBackendClient() *backend.Client {
	return backend.NewClient(backend.Config{
		BaseURL: serverURL,
		Timeout: clientTimeout,
	})
}
