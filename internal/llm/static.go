package llm

import (
	"context"
	"fmt"

	"github.com/cartoflow/gis-copilot/internal/models"
)

// StaticProvider is the echo-only mode: it returns a canned commented script
// instead of calling a model, so the server runs without an API key. Tests
// and local smoke checks use it.
type StaticProvider struct {
	dialect Dialect
}

// NewStaticProvider creates the echo-only provider.
func NewStaticProvider(dialect Dialect) *StaticProvider {
	if dialect != DialectPyQGIS {
		dialect = DialectArcPy
	}
	return &StaticProvider{dialect: dialect}
}

func (p *StaticProvider) messageCall(text string) string {
	if p.dialect == DialectPyQGIS {
		return fmt.Sprintf("QgsMessageLog.logMessage(%q)", text)
	}
	return fmt.Sprintf("arcpy.AddMessage(%q)", text)
}

// GenerateCode returns a canned script that echoes the prompt.
func (p *StaticProvider) GenerateCode(ctx context.Context, prompt string, doc *models.Context) (*models.GenerateResponse, error) {
	layers := 0
	if doc != nil {
		layers = len(doc.Layers)
	}

	code := fmt.Sprintf("# echo-only mode, no model configured\n# request: %s\n%s\n",
		prompt, p.messageCall(fmt.Sprintf("echo-only mode: %d layers in context", layers)))

	return &models.GenerateResponse{
		Code:        code,
		Explanation: "Echo-only mode: the server has no model configured, this script only reports the request.",
		Warnings:    []string{"echo-only mode is active, no code was generated by a model"},
	}, nil
}

// RegenerateCode returns a canned repaired script.
func (p *StaticProvider) RegenerateCode(ctx context.Context, req *models.RegenerateRequest) (*models.GenerateResponse, error) {
	code := fmt.Sprintf("# echo-only mode, repair attempt %d\n# failed with: %s\n%s\n",
		req.Attempt, req.ErrorMessage, p.messageCall("echo-only repair"))

	return &models.GenerateResponse{
		Code:        code,
		Explanation: "Echo-only mode: canned repair script.",
		Warnings:    []string{"echo-only mode is active, no code was generated by a model"},
	}, nil
}

// AnalyzeImage reports the image size; no vision model is involved.
func (p *StaticProvider) AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	return fmt.Sprintf("echo-only mode: received a %d byte image for %q", len(image), prompt), nil
}
