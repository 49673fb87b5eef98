package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartoflow/gis-copilot/internal/models"
)

func TestExtractCodeAndExplanation(t *testing.T) {
	tests := []struct {
		name            string
		response        string
		wantCode        string
		wantExplanation string
	}{
		{
			name:            "python_fence_with_explanation",
			response:        "Here you go.\n```python\nimport arcpy\narcpy.AddMessage(\"hi\")\n```\n\nEXPLANATION: Prints a greeting.",
			wantCode:        "import arcpy\narcpy.AddMessage(\"hi\")",
			wantExplanation: "Prints a greeting.",
		},
		{
			name:            "generic_fence_fallback",
			response:        "```\nprint(1)\n```\nEXPLANATION: Prints one.",
			wantCode:        "print(1)",
			wantExplanation: "Prints one.",
		},
		{
			name:            "no_fence_whole_text",
			response:        "arcpy.AddMessage(\"bare\")",
			wantCode:        "arcpy.AddMessage(\"bare\")",
			wantExplanation: "arcpy.AddMessage(\"bare\")",
		},
		{
			name:            "missing_explanation_uses_first_prose_line",
			response:        "This script counts features.\n```python\nprint(2)\n```",
			wantCode:        "print(2)",
			wantExplanation: "This script counts features.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, explanation := ExtractCodeAndExplanation(tt.response)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantExplanation, explanation)
		})
	}
}

func TestExtractCodeAndExplanation_TruncatesLongExplanation(t *testing.T) {
	long := strings.Repeat("x", 600)
	_, explanation := ExtractCodeAndExplanation("```python\nprint(1)\n```\nEXPLANATION: " + long)
	assert.Len(t, explanation, maxExplanationLen)
}

func TestExtractUsedLayers(t *testing.T) {
	doc := &models.Context{Layers: []models.LayerInfo{
		{Name: "Schools"},
		{Name: "roads"},
		{Name: "parcels"},
	}}

	used := ExtractUsedLayers(`count = arcpy.management.GetCount("schools")`, doc)
	assert.Equal(t, []string{"Schools"}, used)

	assert.Empty(t, ExtractUsedLayers("print(1)", doc))
	assert.Empty(t, ExtractUsedLayers("anything", nil))
}

func TestDeriveWarnings(t *testing.T) {
	t.Run("clean_code_has_none", func(t *testing.T) {
		assert.Empty(t, DeriveWarnings(`arcpy.AddMessage("hi")`))
	})

	t.Run("destructive_operations_flagged", func(t *testing.T) {
		warnings := DeriveWarnings("arcpy.management.Delete(\"tmp\")\narcpy.env.overwriteOutput = True\n")
		require.Len(t, warnings, 2)
		assert.Contains(t, warnings[0], "deletes data")
		assert.Contains(t, warnings[1], "overwrites")
	})

	t.Run("bare_except_flagged", func(t *testing.T) {
		warnings := DeriveWarnings("try:\n    pass\nexcept:\n    pass\n")
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "bare except")
	})
}

func TestPromptBuilder_Generation(t *testing.T) {
	doc := &models.Context{
		Project: models.ProjectInfo{Name: "city", SpatialReference: "EPSG:3857"},
		Layers: []models.LayerInfo{
			{Name: "schools", GeometryType: "Point", FeatureCount: 42, IsVisible: true,
				Fields: []models.FieldInfo{{Name: "name"}, {Name: "capacity"}}},
		},
		ActiveLayer: "schools",
	}

	t.Run("arcpy_dialect", func(t *testing.T) {
		prompt := NewPromptBuilder(DialectArcPy).Generation("count schools", doc)

		assert.Contains(t, prompt, "arcpy")
		assert.Contains(t, prompt, "arcpy.AddMessage()")
		assert.Contains(t, prompt, `"schools"`)
		assert.Contains(t, prompt, "name, capacity")
		assert.Contains(t, prompt, "USER REQUEST: count schools")
	})

	t.Run("pyqgis_dialect", func(t *testing.T) {
		prompt := NewPromptBuilder(DialectPyQGIS).Generation("count schools", doc)

		assert.Contains(t, prompt, "PyQGIS")
		assert.Contains(t, prompt, "QgsMessageLog.logMessage()")
	})

	t.Run("nil_context_notes_degraded_mode", func(t *testing.T) {
		prompt := NewPromptBuilder(DialectArcPy).Generation("count schools", nil)
		assert.Contains(t, prompt, "no project context is available")
	})
}

func TestPromptBuilder_Regeneration(t *testing.T) {
	prompt := NewPromptBuilder(DialectArcPy).Regeneration(&models.RegenerateRequest{
		OriginalPrompt: "count schools",
		FailedCode:     "print(x)",
		ErrorMessage:   "NameError: x",
		Attempt:        1,
	})

	assert.Contains(t, prompt, "ORIGINAL REQUEST: count schools")
	assert.Contains(t, prompt, "print(x)")
	assert.Contains(t, prompt, "NameError: x")
	assert.Contains(t, prompt, "ATTEMPT: 1/3")
	assert.Contains(t, prompt, "CORRECTED complete script")
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(DialectArcPy)

	resp, err := p.GenerateCode(context.Background(), "count schools", &models.Context{
		Layers: []models.LayerInfo{{Name: "schools"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Code)
	assert.Contains(t, resp.Code, "count schools")
	assert.Empty(t, resp.Error)
	assert.NotEmpty(t, resp.Warnings)

	repaired, err := p.RegenerateCode(context.Background(), &models.RegenerateRequest{
		Attempt:      1,
		ErrorMessage: "NameError: x",
	})
	require.NoError(t, err)
	assert.Contains(t, repaired.Code, "NameError: x")
}
