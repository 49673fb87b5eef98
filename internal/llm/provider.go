// Package llm fronts the code-generation model: prompt construction for the
// two scripting dialects, calls to the Gemini API, and extraction of code,
// explanation, and advisories from the raw model reply.
package llm

import (
	"context"

	"github.com/cartoflow/gis-copilot/internal/models"
)

// Dialect selects the scripting environment code is generated for.
type Dialect string

const (
	DialectArcPy  Dialect = "arcpy"
	DialectPyQGIS Dialect = "pyqgis"
)

// Provider is the model behind the generation endpoints.
type Provider interface {
	// GenerateCode produces a script for a user prompt and project snapshot.
	GenerateCode(ctx context.Context, prompt string, doc *models.Context) (*models.GenerateResponse, error)

	// RegenerateCode produces a corrected replacement for code that failed.
	RegenerateCode(ctx context.Context, req *models.RegenerateRequest) (*models.GenerateResponse, error)

	// AnalyzeImage reviews a map or layout capture.
	AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error)
}
