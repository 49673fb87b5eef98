package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [image.png] [question]",
	Short: "Ask the backend about a map or layout screenshot",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}

		prompt := "Describe what this map shows."
		if len(args) == 2 {
			prompt = args[1]
		}

		analysis, err := newBackendClient().AnalyzeScreenshot(cmd.Context(), image, prompt)
		if err != nil {
			return err
		}

		fmt.Println(analysis)
		return nil
	},
}
