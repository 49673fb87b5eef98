// Package validator is the safety gate for generated scripts. Every script
// coming back from the model is checked before it is offered to a host for
// execution.
package validator

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidThreshold is the minimum score a script needs to pass.
const ValidThreshold = 50

// Result contains the outcome of a safety check. Score starts at 100 and is
// reduced per finding, floored at 0; Valid requires the threshold and zero
// errors.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Score    int      `json:"score"`
}

// Validator checks generated GIS scripts for dangerous constructs. It is
// stateless after construction; the same input always yields the same Result.
type Validator struct {
	dangerous      []*regexp.Regexp
	network        []*regexp.Regexp
	system         []*regexp.Regexp
	fileWrites     *regexp.Regexp
	imports        *regexp.Regexp
	editOperations []*regexp.Regexp
	allowedModules map[string]bool
}

// New creates a validator with the compiled pattern sets.
func New() *Validator {
	return &Validator{
		dangerous: compileAll(
			`os\.remove\s*\(`,
			`os\.rmdir\s*\(`,
			`os\.unlink\s*\(`,
			`shutil\.rmtree\s*\(`,
			`pathlib\.Path\s*\([^)]*\)\.unlink\s*\(`,
			`eval\s*\(`,
			`exec\s*\(`,
			`compile\s*\(`,
			`__import__\s*\(`,
			`getattr\s*\(`,
			`setattr\s*\(`,
			`delattr\s*\(`,
			`globals\s*\(\s*\)`,
			`locals\s*\(\s*\)`,
			`;\s*DROP\s`,
			`;\s*DELETE\s`,
		),
		network: compileAll(
			`urllib\.[a-zA-Z_]+`,
			`requests\.[a-zA-Z_]+`,
			`http\.client`,
			`socket\.[a-zA-Z_]+`,
			`urlopen`,
		),
		system: compileAll(
			`subprocess\.[a-zA-Z_]+\s*\(`,
			`os\.system\s*\(`,
			`os\.popen\s*\(`,
			`os\.spawn`,
		),
		fileWrites: regexp.MustCompile(`open\s*\([^)]*['"][wa]\+?['"]`),
		imports:    regexp.MustCompile(`(?m)^\s*(?:import|from)\s+([a-zA-Z0-9_.]+)`),
		editOperations: compileAll(
			`UpdateCursor`,
			`deleteFeatures`,
			`CalculateField`,
		),
		allowedModules: map[string]bool{
			"arcpy":       true,
			"qgis":        true,
			"processing":  true,
			"os.path":     true,
			"math":        true,
			"datetime":    true,
			"json":        true,
			"re":          true,
			"collections": true,
			"itertools":   true,
			"typing":      true,
		},
	}
}

// Validate runs all checks on the given script.
func (v *Validator) Validate(code string) Result {
	result := Result{
		Errors:   []string{},
		Warnings: []string{},
		Score:    100,
	}

	for _, pattern := range v.dangerous {
		if pattern.MatchString(code) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("dangerous pattern found: %s", pattern.String()))
			result.Score -= 50
		}
	}

	for _, pattern := range v.network {
		if pattern.MatchString(code) {
			result.Errors = append(result.Errors, "network operations are not allowed")
			result.Score -= 40
			break
		}
	}

	for _, pattern := range v.system {
		if pattern.MatchString(code) {
			result.Errors = append(result.Errors, "system calls are not allowed")
			result.Score -= 50
			break
		}
	}

	if v.fileWrites.MatchString(code) {
		result.Warnings = append(result.Warnings,
			"script opens files for writing, inspect the target paths before running")
		result.Score -= 10
	}

	importErrors := v.validateImports(code)
	result.Errors = append(result.Errors, importErrors...)
	if len(importErrors) > 0 {
		result.Score -= 30
	}

	for _, pattern := range v.editOperations {
		if pattern.MatchString(code) {
			result.Warnings = append(result.Warnings,
				"script edits layer data, inspect it before running")
			break
		}
	}

	if strings.Contains(code, "except:") {
		result.Warnings = append(result.Warnings,
			"bare except clause hides errors from the repair loop")
	}

	if result.Score < 0 {
		result.Score = 0
	}
	result.Valid = result.Score >= ValidThreshold && len(result.Errors) == 0

	return result
}

// validateImports checks every import statement against the allowlist.
func (v *Validator) validateImports(code string) []string {
	var errs []string

	for _, match := range v.imports.FindAllStringSubmatch(code, -1) {
		if len(match) < 2 {
			continue
		}
		module := match[1]
		if !v.isModuleAllowed(module) {
			errs = append(errs, fmt.Sprintf("module %q is not allowed", module))
		}
	}

	return errs
}

func (v *Validator) isModuleAllowed(module string) bool {
	if v.allowedModules[module] {
		return true
	}
	for allowed := range v.allowedModules {
		if strings.HasPrefix(module, allowed+".") {
			return true
		}
	}
	return false
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}
