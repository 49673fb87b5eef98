// Package host defines the integration ports a desktop GIS application
// implements to embed the copilot: snapshotting project state, executing
// generated code, and talking to the user. The repair-loop controller depends
// only on these interfaces.
package host

import (
	"context"
	"time"

	"github.com/cartoflow/gis-copilot/internal/models"
)

// ContextProducer builds the current project snapshot. Implementations must
// return a normalized document (see models.Context.Normalize).
type ContextProducer interface {
	Snapshot(ctx context.Context) (*models.Context, error)
}

// Sandbox runs generated code under an enumerated capability binding. A
// sandbox never panics on bad code; every failure mode is reported through
// the Outcome.
type Sandbox interface {
	Execute(ctx context.Context, code string, caps CapabilitySet) Outcome
}

// Outcome is the result of one sandbox run. Diagnostic is empty exactly when
// Success is true.
type Outcome struct {
	Success    bool
	Diagnostic string
	Stdout     string
	Duration   time.Duration
}

// CapabilitySet enumerates the host modules a sandbox binds into the
// execution namespace. Nothing outside the set is exposed.
type CapabilitySet struct {
	Modules []string
}

// ArcGISCapabilities is the binding for the ArcGIS Pro scripting environment.
func ArcGISCapabilities() CapabilitySet {
	return CapabilitySet{Modules: []string{"arcpy"}}
}

// QGISCapabilities is the binding for the QGIS scripting environment.
func QGISCapabilities() CapabilitySet {
	return CapabilitySet{Modules: []string{"qgis.core", "qgis.utils", "processing"}}
}

// Level classifies user notices.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Proposal is what the confirmation surface shows the user before execution.
// Repairing marks the second confirmation of a repair cycle.
type Proposal struct {
	Code        string
	Explanation string
	Warnings    []string
	UsedLayers  []string
	Repairing   bool
}

// UserInteraction is the host UI surface. PromptText returns false when the
// user cancelled instead of entering a task.
type UserInteraction interface {
	PromptText(ctx context.Context) (string, bool)
	Confirm(ctx context.Context, proposal Proposal) bool
	Notify(level Level, message string)
}
