package llm

import (
	"fmt"
	"strings"

	"github.com/cartoflow/gis-copilot/internal/models"
)

// PromptBuilder renders model prompts for one scripting dialect.
type PromptBuilder struct {
	dialect Dialect
}

// NewPromptBuilder creates a builder for the given dialect; anything other
// than DialectPyQGIS falls back to ArcPy.
func NewPromptBuilder(dialect Dialect) *PromptBuilder {
	if dialect != DialectPyQGIS {
		dialect = DialectArcPy
	}
	return &PromptBuilder{dialect: dialect}
}

func (b *PromptBuilder) apiName() string {
	if b.dialect == DialectPyQGIS {
		return "PyQGIS (qgis.core, processing)"
	}
	return "ArcGIS Python API (arcpy)"
}

func (b *PromptBuilder) messageCall() string {
	if b.dialect == DialectPyQGIS {
		return "QgsMessageLog.logMessage()"
	}
	return "arcpy.AddMessage()"
}

// Generation renders the full prompt for a first generation request.
func (b *PromptBuilder) Generation(userRequest string, doc *models.Context) string {
	var sb strings.Builder

	sb.WriteString("You are an autonomous GIS engineer and an expert in the ")
	sb.WriteString(b.apiName())
	sb.WriteString(".\n\nCODE GENERATION RULES:\n")
	sb.WriteString("1. Generate ONLY safe Python code for the host scripting environment\n")
	sb.WriteString("2. Use ONLY the layers available in the project (listed below)\n")
	sb.WriteString("3. If the user asks for a layer that does not exist, pick the closest match and say so\n")
	sb.WriteString("4. The code must be ready to run without edits\n")
	sb.WriteString("5. Report results to the user with " + b.messageCall() + "\n")
	sb.WriteString("6. Handle expected failures with try-except where appropriate\n")
	sb.WriteString("\nFORBIDDEN:\n")
	sb.WriteString("- os.remove, shutil.rmtree (file deletion)\n")
	sb.WriteString("- subprocess, os.system (system commands)\n")
	sb.WriteString("- open() for writing\n")
	sb.WriteString("- urllib, requests (network access)\n")

	if doc != nil && len(doc.Layers) > 0 {
		sb.WriteString("\n")
		sb.WriteString(formatContext(doc))
	} else {
		sb.WriteString("\nNOTE: no project context is available; use general approaches.\n")
	}

	sb.WriteString("\nRESPONSE FORMAT:\n```python\n# your code here\n```\n\n")
	sb.WriteString("EXPLANATION: one or two sentences describing what the code does\n")
	sb.WriteString("\nUSER REQUEST: ")
	sb.WriteString(userRequest)

	return sb.String()
}

// Regeneration renders the repair prompt carrying the failed code and the
// runtime error.
func (b *PromptBuilder) Regeneration(req *models.RegenerateRequest) string {
	var sb strings.Builder

	sb.WriteString("You are an autonomous GIS engineer. Your previous script raised an error. Analyze it and produce a corrected full replacement.\n\n")
	fmt.Fprintf(&sb, "ORIGINAL REQUEST: %s\n\n", req.OriginalPrompt)
	fmt.Fprintf(&sb, "ATTEMPT: %d/3\n\n", req.Attempt)
	sb.WriteString("CODE THAT FAILED:\n```python\n")
	sb.WriteString(req.FailedCode)
	sb.WriteString("\n```\n\nERROR:\n")
	sb.WriteString(req.ErrorMessage)
	sb.WriteString("\n\n")

	if req.Context != nil {
		sb.WriteString(formatContext(req.Context))
		sb.WriteString("\n")
	}

	sb.WriteString("TASK:\n")
	sb.WriteString("1. Identify the cause (wrong layer name, syntax, logic)\n")
	sb.WriteString("2. Use the exact layer and field names from the context\n")
	sb.WriteString("3. Return the CORRECTED complete script, not a diff\n")
	sb.WriteString("\nRESPONSE FORMAT:\n```python\n# corrected code\n```\n\n")
	sb.WriteString("EXPLANATION: what was wrong and how it was fixed\n")

	return sb.String()
}

// Vision renders the screenshot analysis prompt.
func (b *PromptBuilder) Vision(userRequest string) string {
	var sb strings.Builder

	sb.WriteString("You are a GIS analyst. Review the attached map capture.\n\n")
	sb.WriteString("1. Describe what the map shows (data types, symbology)\n")
	sb.WriteString("2. Point out spatial patterns: clusters, gaps, outliers\n")
	sb.WriteString("3. Suggest concrete next steps for the user's question\n\n")
	fmt.Fprintf(&sb, "USER QUESTION: %s\n", userRequest)

	return sb.String()
}

// formatContext renders the project snapshot as prompt text: project header,
// layer inventory with fields, and the active layer.
func formatContext(doc *models.Context) string {
	var sb strings.Builder

	sb.WriteString("AVAILABLE PROJECT DATA:\n")
	fmt.Fprintf(&sb, "Project: %s\n", doc.Project.Name)
	fmt.Fprintf(&sb, "Spatial reference: %s\n", doc.Project.SpatialReference)
	fmt.Fprintf(&sb, "Layers (%d):\n", len(doc.Layers))

	for i, layer := range doc.Layers {
		fmt.Fprintf(&sb, "%d. %q", i+1, layer.Name)
		if layer.GeometryType != "" {
			fmt.Fprintf(&sb, " [%s]", layer.GeometryType)
		}
		if layer.FeatureCount >= 0 {
			fmt.Fprintf(&sb, " features=%d", layer.FeatureCount)
		}
		if layer.IsVisible {
			sb.WriteString(" visible")
		}
		sb.WriteString("\n")

		if len(layer.Fields) > 0 {
			names := make([]string, 0, len(layer.Fields))
			for _, f := range layer.Fields {
				names = append(names, f.Name)
			}
			fmt.Fprintf(&sb, "   fields: %s\n", strings.Join(names, ", "))
		}
	}

	if doc.ActiveLayer != "" {
		fmt.Fprintf(&sb, "Active layer: %q\n", doc.ActiveLayer)
	}
	if doc.MapExtent != nil {
		fmt.Fprintf(&sb, "Map extent: %.4f,%.4f to %.4f,%.4f\n",
			doc.MapExtent.XMin, doc.MapExtent.YMin, doc.MapExtent.XMax, doc.MapExtent.YMax)
	}

	return sb.String()
}
