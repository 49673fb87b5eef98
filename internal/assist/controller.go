// Package assist implements the generation, execution, and repair loop that
// both GIS host integrations drive: generate code for a prompt, ask the user
// to confirm it, run it in the host sandbox, and on failure perform exactly
// one regenerate-and-re-execute cycle.
package assist

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/cartoflow/gis-copilot/internal/backend"
	"github.com/cartoflow/gis-copilot/internal/host"
	"github.com/cartoflow/gis-copilot/internal/metrics"
	"github.com/cartoflow/gis-copilot/internal/models"
)

// ErrSessionActive is returned when Run is called while another session is
// still in flight. The controller is strictly single-session.
var ErrSessionActive = errors.New("an assist session is already running")

// ExecutionError carries the sandbox diagnostic of a failed run that could
// not be repaired.
type ExecutionError struct {
	Diagnostic string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed: %s", e.Diagnostic)
}

// State names the controller's position in the session lifecycle.
type State string

const (
	StateIdle                 State = "idle"
	StateGenerating           State = "generating"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateExecuting            State = "executing"
	StateRepairing            State = "repairing"
	StateReExecuting          State = "re_executing"
	StateDone                 State = "done"
	StateFailed               State = "failed"
)

// ProtocolClient is the slice of the backend client the controller needs.
type ProtocolClient interface {
	Generate(ctx context.Context, prompt string, doc *models.Context) (*backend.Result, error)
	Regenerate(ctx context.Context, req backend.RepairRequest) (*backend.Result, error)
}

// Result summarizes one finished session. State is always StateDone or
// StateFailed on return; Code is the last code that was proposed.
type Result struct {
	SessionID   string
	State       State
	Cancelled   bool
	Code        string
	Explanation string
	Warnings    []string
	UsedLayers  []string
	Outcome     *host.Outcome
	Repaired    bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithCapabilities sets the capability binding handed to the sandbox.
func WithCapabilities(caps host.CapabilitySet) Option {
	return func(c *Controller) { c.caps = caps }
}

// WithMetrics installs a session metrics recorder.
func WithMetrics(sm *metrics.SessionMetrics) Option {
	return func(c *Controller) { c.metrics = sm }
}

// WithClock overrides the session clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller sequences one synchronous assist session at a time. All work
// happens on the caller's goroutine; nothing is retained between sessions.
type Controller struct {
	client   ProtocolClient
	producer host.ContextProducer
	sandbox  host.Sandbox
	ui       host.UserInteraction
	caps     host.CapabilitySet
	metrics  *metrics.SessionMetrics
	now      func() time.Time

	running atomic.Bool
}

// NewController wires the controller to its collaborators. The capability
// binding defaults to the ArcGIS set.
func NewController(client ProtocolClient, producer host.ContextProducer, sandbox host.Sandbox, ui host.UserInteraction, opts ...Option) *Controller {
	c := &Controller{
		client:   client,
		producer: producer,
		sandbox:  sandbox,
		ui:       ui,
		caps:     host.ArcGISCapabilities(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunInteractive pulls the prompt from the user before running a session.
// A cancelled prompt ends the session with no side effects.
func (c *Controller) RunInteractive(ctx context.Context) (*Result, error) {
	prompt, ok := c.ui.PromptText(ctx)
	if !ok {
		return &Result{
			SessionID: uuid.New().String(),
			State:     StateDone,
			Cancelled: true,
		}, nil
	}
	return c.Run(ctx, prompt)
}

// Run executes one full session for the given prompt. A terminal error is
// returned alongside the Result; cancellation is a nil-error disposition.
func (c *Controller) Run(ctx context.Context, prompt string) (*Result, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, ErrSessionActive
	}
	defer c.running.Store(false)

	result := &Result{
		SessionID: uuid.New().String(),
		State:     StateIdle,
	}

	// Empty prompt ends the session before any network call.
	if prompt == "" {
		result.State = StateDone
		result.Cancelled = true
		return result, nil
	}

	start := c.now()
	c.recordStarted(ctx, result.SessionID)

	err := c.run(ctx, prompt, result)
	duration := c.now().Sub(start)

	if err != nil {
		result.State = StateFailed
		c.ui.Notify(host.LevelError, err.Error())
		c.recordFailed(ctx, result.SessionID, failureKind(err), duration)
		return result, err
	}

	result.State = StateDone
	c.recordCompleted(ctx, result.SessionID, result.Repaired, result.Cancelled, duration)
	return result, nil
}

// run walks the state machine; it returns nil both for success and for an
// explicit user cancellation (marked on the result).
func (c *Controller) run(ctx context.Context, prompt string, result *Result) error {
	// Snapshot the project. A producer failure degrades to generation
	// without context rather than aborting the session.
	var doc *models.Context
	if c.producer != nil {
		snapshot, err := c.producer.Snapshot(ctx)
		if err != nil {
			c.ui.Notify(host.LevelWarning, fmt.Sprintf("project snapshot unavailable, generating without context: %v", err))
		} else {
			doc = snapshot
		}
	}

	result.State = StateGenerating
	generated, err := c.client.Generate(ctx, prompt, doc)
	if err != nil {
		return err
	}

	c.adoptResult(result, generated)
	c.surfaceWarnings(generated.Warnings)

	result.State = StateAwaitingConfirmation
	if !c.ui.Confirm(ctx, host.Proposal{
		Code:        generated.Code,
		Explanation: generated.Explanation,
		Warnings:    generated.Warnings,
		UsedLayers:  generated.UsedLayers,
	}) {
		result.Cancelled = true
		return nil
	}

	result.State = StateExecuting
	outcome := c.sandbox.Execute(ctx, generated.Code, c.caps)
	result.Outcome = &outcome
	if outcome.Success {
		return nil
	}

	// One repair cycle: regenerate with the diagnostic, confirm, re-execute.
	result.State = StateRepairing
	result.Repaired = true
	c.recordRepair(ctx, result.SessionID)
	c.ui.Notify(host.LevelInfo, fmt.Sprintf("execution failed (%s), requesting a corrected script", outcome.Diagnostic))

	repaired, err := c.client.Regenerate(ctx, backend.RepairRequest{
		OriginalPrompt: prompt,
		FailedCode:     generated.Code,
		ErrorMessage:   outcome.Diagnostic,
		Doc:            doc,
		Attempt:        1,
	})
	if err != nil {
		return err
	}

	c.adoptResult(result, repaired)
	c.surfaceWarnings(repaired.Warnings)

	if !c.ui.Confirm(ctx, host.Proposal{
		Code:        repaired.Code,
		Explanation: repaired.Explanation,
		Warnings:    repaired.Warnings,
		UsedLayers:  repaired.UsedLayers,
		Repairing:   true,
	}) {
		result.Cancelled = true
		return nil
	}

	result.State = StateReExecuting
	second := c.sandbox.Execute(ctx, repaired.Code, c.caps)
	result.Outcome = &second
	if !second.Success {
		// No third attempt, ever.
		return &ExecutionError{Diagnostic: second.Diagnostic}
	}

	return nil
}

func (c *Controller) adoptResult(result *Result, r *backend.Result) {
	result.Code = r.Code
	result.Explanation = r.Explanation
	result.Warnings = r.Warnings
	result.UsedLayers = r.UsedLayers
}

// surfaceWarnings forwards advisory warnings to the user. They never gate
// progress.
func (c *Controller) surfaceWarnings(warnings []string) {
	for _, w := range warnings {
		c.ui.Notify(host.LevelWarning, w)
	}
}

func (c *Controller) recordStarted(ctx context.Context, sessionID string) {
	if c.metrics != nil {
		c.metrics.RecordSessionStarted(ctx, sessionID)
	}
}

func (c *Controller) recordCompleted(ctx context.Context, sessionID string, repaired, cancelled bool, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordSessionCompleted(ctx, sessionID, repaired, cancelled, duration)
	}
}

func (c *Controller) recordFailed(ctx context.Context, sessionID, kind string, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordSessionFailed(ctx, sessionID, kind, duration)
	}
}

func (c *Controller) recordRepair(ctx context.Context, sessionID string) {
	if c.metrics != nil {
		c.metrics.RecordRepairCycle(ctx, sessionID)
	}
}

// failureKind classifies a terminal error for metrics attributes.
func failureKind(err error) string {
	var connErr *backend.ConnectionError
	var protoErr *backend.ProtocolError
	var backendErr *backend.BackendError
	var execErr *ExecutionError

	switch {
	case errors.Is(err, backend.ErrAttemptsExhausted):
		return "repair_exhausted"
	case errors.As(err, &connErr):
		return "connection"
	case errors.As(err, &protoErr):
		return "protocol"
	case errors.As(err, &backendErr):
		return "backend"
	case errors.As(err, &execErr):
		return "execution"
	default:
		return "unknown"
	}
}
