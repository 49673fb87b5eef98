package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var echoCmd = &cobra.Command{
	Use:   "echo [message]",
	Short: "Probe backend connectivity",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := "ping"
		if len(args) == 1 {
			message = args[0]
		}

		start := time.Now()
		resp, err := newBackendClient().Echo(cmd.Context(), message)
		if err != nil {
			return fmt.Errorf("backend unreachable at %s: %w", serverURL, err)
		}

		fmt.Printf("Reply: %s\n", resp.Message)
		fmt.Printf("Server time: %s\n", resp.ServerTime.Format(time.RFC3339))
		fmt.Printf("Round trip: %s\n", time.Since(start).Round(time.Millisecond))
		return nil
	},
}
