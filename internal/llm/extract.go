package llm

import (
	"regexp"
	"strings"

	"github.com/cartoflow/gis-copilot/internal/models"
)

const maxExplanationLen = 500

var (
	pythonFencePattern  = regexp.MustCompile("(?s)```python\\s*\n(.*?)```")
	genericFencePattern = regexp.MustCompile("(?s)```\\s*\n(.*?)```")
	explanationPattern  = regexp.MustCompile(`(?im)^EXPLANATION:\s*(.+)$`)
)

// ExtractCodeAndExplanation pulls the script and its one-line explanation out
// of a raw model reply. A ```python fence wins, then a generic fence; when
// neither exists the whole reply is treated as code.
func ExtractCodeAndExplanation(response string) (code, explanation string) {
	if m := pythonFencePattern.FindStringSubmatch(response); len(m) > 1 {
		code = strings.TrimSpace(m[1])
	} else if m := genericFencePattern.FindStringSubmatch(response); len(m) > 1 {
		code = strings.TrimSpace(m[1])
	} else {
		code = strings.TrimSpace(response)
	}

	if m := explanationPattern.FindStringSubmatch(response); len(m) > 1 {
		explanation = strings.TrimSpace(m[1])
	} else {
		explanation = firstLineOutsideFences(response)
	}
	if len(explanation) > maxExplanationLen {
		explanation = explanation[:maxExplanationLen]
	}

	return code, explanation
}

// firstLineOutsideFences returns the first non-empty line that is not inside
// a code fence, or empty when the reply is code only.
func firstLineOutsideFences(response string) string {
	inFence := false
	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence || trimmed == "" {
			continue
		}
		return trimmed
	}
	return ""
}

// ExtractUsedLayers lists the snapshot layers whose names appear in the code.
func ExtractUsedLayers(code string, doc *models.Context) []string {
	if doc == nil {
		return []string{}
	}

	used := []string{}
	codeLower := strings.ToLower(code)
	for _, layer := range doc.Layers {
		if strings.Contains(codeLower, strings.ToLower(layer.Name)) {
			used = append(used, layer.Name)
		}
	}
	return used
}

// destructivePatterns flag operations that edit, delete, or overwrite data.
var destructivePatterns = []struct {
	pattern *regexp.Regexp
	warning string
}{
	{regexp.MustCompile(`arcpy\.management\.Delete\b`), "script deletes data with arcpy.management.Delete"},
	{regexp.MustCompile(`DeleteFeatures`), "script deletes features"},
	{regexp.MustCompile(`overwriteOutput\s*=\s*True`), "script overwrites existing outputs"},
	{regexp.MustCompile(`dataProvider\(\)\.deleteFeatures`), "script deletes features through the layer data provider"},
	{regexp.MustCompile(`(?m)except\s*:\s*$`), "bare except clause may hide the real error"},
}

// DeriveWarnings produces advisories for risky constructs in generated code.
// Warnings never block execution; they are surfaced at confirmation time.
func DeriveWarnings(code string) []string {
	warnings := []string{}
	for _, dp := range destructivePatterns {
		if dp.pattern.MatchString(code) {
			warnings = append(warnings, dp.warning)
		}
	}
	return warnings
}
