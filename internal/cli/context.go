package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Load, normalize, and print a context document",
	RunE: func(cmd *cobra.Command, args []string) error {
		projectFile, _ := cmd.Flags().GetString("project")
		if projectFile == "" {
			return fmt.Errorf("--project is required")
		}

		doc, err := NewFileProducer(projectFile).Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Project: %s (%s)\n", doc.Project.Name, doc.Project.SpatialReference)
		fmt.Printf("Layers: %d\n", len(doc.Layers))
		for _, layer := range doc.Layers {
			fmt.Printf("  %-30s %-12s %8d features, %d fields\n",
				layer.Name, layer.GeometryType, layer.FeatureCount, len(layer.Fields))
		}
		if doc.ActiveLayer != "" {
			fmt.Printf("Active layer: %s\n", doc.ActiveLayer)
		}

		pretty, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(pretty))
		return nil
	},
}

func init() {
	contextCmd.Flags().String("project", "", "Path to a saved context-document JSON file")
}
