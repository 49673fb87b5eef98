package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cartoflow/gis-copilot/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file.py]",
	Short: "Run the safety check on a script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}

		result := validator.New().Validate(string(code))

		fmt.Printf("Score: %d/100\n", result.Score)
		for _, e := range result.Errors {
			fmt.Printf("error: %s\n", e)
		}
		for _, w := range result.Warnings {
			fmt.Printf("warning: %s\n", w)
		}

		if !result.Valid {
			fmt.Println("Result: INVALID")
			os.Exit(1)
		}
		fmt.Println("Result: valid")
		return nil
	},
}
