package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cartoflow/gis-copilot/internal/assist"
	"github.com/cartoflow/gis-copilot/internal/backend"
	"github.com/cartoflow/gis-copilot/internal/host"
	"github.com/cartoflow/gis-copilot/internal/sandbox"
)

var askCmd = &cobra.Command{
	Use:   "ask [task]",
	Short: "Run a full assisted session: generate, confirm, execute, repair",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectFile, _ := cmd.Flags().GetString("project")
		interpreter, _ := cmd.Flags().GetString("interpreter")
		autoConfirm, _ := cmd.Flags().GetBool("yes")
		dialect, _ := cmd.Flags().GetString("dialect")

		caps, err := capabilitiesFor(dialect)
		if err != nil {
			return err
		}

		var producer host.ContextProducer = emptyProducer{}
		if projectFile != "" {
			producer = NewFileProducer(projectFile)
		}

		ui := NewTerminalUI(os.Stdin, os.Stderr, autoConfirm)
		runner := sandbox.NewProcess(
			sandbox.WithInterpreter(interpreter),
			sandbox.WithTimeout(2*time.Minute),
		)

		controller := assist.NewController(
			newBackendClient(),
			producer,
			runner,
			ui,
			assist.WithCapabilities(caps),
		)

		var result *assist.Result
		if len(args) == 1 {
			result, err = controller.Run(cmd.Context(), args[0])
		} else {
			result, err = controller.RunInteractive(cmd.Context())
		}
		if err != nil {
			var execErr *assist.ExecutionError
			if errors.As(err, &execErr) {
				fmt.Fprintln(os.Stderr, "Execution failed after repair:")
				fmt.Fprintln(os.Stderr, execErr.Diagnostic)
				os.Exit(1)
			}
			var connErr *backend.ConnectionError
			if errors.As(err, &connErr) {
				return fmt.Errorf("cannot reach the backend at %s: %w", serverURL, err)
			}
			return err
		}

		if result.Cancelled {
			fmt.Fprintln(os.Stderr, "Session cancelled.")
			return nil
		}

		if result.Outcome != nil {
			if result.Outcome.Stdout != "" {
				fmt.Print(result.Outcome.Stdout)
			}
			fmt.Fprintf(os.Stderr, "Done in %s", result.Outcome.Duration.Round(time.Millisecond))
			if result.Repaired {
				fmt.Fprint(os.Stderr, " (after one repair)")
			}
			fmt.Fprintln(os.Stderr)
		}
		return nil
	},
}

func capabilitiesFor(dialect string) (host.CapabilitySet, error) {
	switch dialect {
	case "arcpy":
		return host.ArcGISCapabilities(), nil
	case "pyqgis":
		return host.QGISCapabilities(), nil
	default:
		return host.CapabilitySet{}, fmt.Errorf("unknown dialect %q: must be \"arcpy\" or \"pyqgis\"", dialect)
	}
}

func init() {
	askCmd.Flags().String("project", "", "Path to a saved context-document JSON file")
	askCmd.Flags().String("interpreter", "python3", "Interpreter used to run generated code")
	askCmd.Flags().Bool("yes", false, "Run proposed code without asking")
	askCmd.Flags().String("dialect", "arcpy", "Scripting dialect (arcpy or pyqgis)")
}
