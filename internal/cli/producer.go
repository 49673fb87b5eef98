package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cartoflow/gis-copilot/internal/models"
)

// FileProducer serves a saved context-document JSON file as the project
// snapshot. Exported snapshots from the desktop hosts use the same shape.
type FileProducer struct {
	path string
}

// NewFileProducer creates a producer over the given file.
func NewFileProducer(path string) *FileProducer {
	return &FileProducer{path: path}
}

// Snapshot loads and normalizes the context document.
func (p *FileProducer) Snapshot(_ context.Context) (*models.Context, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read context file: %w", err)
	}

	var doc models.Context
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse context file: %w", err)
	}

	doc.Normalize()
	return &doc, nil
}

// emptyProducer yields a nil snapshot; used when no project file is given.
type emptyProducer struct{}

func (emptyProducer) Snapshot(context.Context) (*models.Context, error) {
	return nil, nil
}
