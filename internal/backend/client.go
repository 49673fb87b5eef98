package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cartoflow/gis-copilot/internal/models"
)

const (
	// DefaultBaseURL is the conventional sidecar address.
	DefaultBaseURL = "http://localhost:8080"
	// DefaultTimeout bounds every protocol request.
	DefaultTimeout = 60 * time.Second

	// maxRegenerateAttempts caps the repair counter on the wire. The repair
	// controller only ever sends attempt 1; the cap guards other embedders
	// against unbounded repair recursion and mirrors the server-side check.
	maxRegenerateAttempts = 3

	contentTypeJSON = "application/json; charset=utf-8"
)

// Config configures a protocol client. Zero values take the defaults.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client speaks the generation protocol against a copilot backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	breaker    *gobreaker.CircuitBreaker
}

// Result is the decoded success payload of a generate or regenerate call,
// with the authoritative-error rule already applied.
type Result struct {
	Code        string
	Explanation string
	UsedLayers  []string
	Warnings    []string
}

// RepairRequest carries everything a regeneration needs.
type RepairRequest struct {
	OriginalPrompt string
	FailedCode     string
	ErrorMessage   string
	Doc            *models.Context
	Attempt        int
}

// NewClient creates a protocol client for the given configuration.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	settings := gobreaker.Settings{
		Name:     "copilot-backend",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		tracer:     otel.Tracer("copilot-backend-client"),
		breaker:    gobreaker.NewCircuitBreaker(settings),
	}
}

// BaseURL returns the configured endpoint base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Generate requests code for a user prompt and project snapshot. An empty
// prompt fails before any network call.
func (c *Client) Generate(ctx context.Context, prompt string, doc *models.Context) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt must not be empty")
	}

	ctx, span := c.tracer.Start(ctx, "backend.generate")
	defer span.End()

	span.SetAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.Bool("context.present", doc != nil),
	)

	result, err := c.execute(ctx, func() (*Result, error) {
		return c.postProtocol(ctx, "/api/generate", models.GenerateRequest{
			Prompt:  prompt,
			Context: doc,
		})
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return result, nil
}

// Regenerate requests a corrected replacement for code that failed to
// execute. An attempt counter above the cap short-circuits with
// ErrAttemptsExhausted and no network call.
func (c *Client) Regenerate(ctx context.Context, req RepairRequest) (*Result, error) {
	if req.Attempt < 1 {
		return nil, fmt.Errorf("attempt must be at least 1, got %d", req.Attempt)
	}
	if req.Attempt > maxRegenerateAttempts {
		return nil, ErrAttemptsExhausted
	}

	ctx, span := c.tracer.Start(ctx, "backend.regenerate")
	defer span.End()

	span.SetAttributes(attribute.Int("attempt", req.Attempt))

	result, err := c.execute(ctx, func() (*Result, error) {
		return c.postProtocol(ctx, "/api/regenerate", models.RegenerateRequest{
			OriginalPrompt: req.OriginalPrompt,
			FailedCode:     req.FailedCode,
			ErrorMessage:   req.ErrorMessage,
			Context:        req.Doc,
			Attempt:        req.Attempt,
		})
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return result, nil
}

// Validate runs the server-side safety check on a script.
func (c *Client) Validate(ctx context.Context, code string) (*models.ValidateResponse, error) {
	ctx, span := c.tracer.Start(ctx, "backend.validate")
	defer span.End()

	body, err := c.postJSON(ctx, "/api/validate", models.ValidateRequest{Code: code})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var resp models.ValidateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		err = &ProtocolError{Message: "validate response", Err: err}
		span.RecordError(err)
		return nil, err
	}

	return &resp, nil
}

// AnalyzeScreenshot submits a PNG capture for vision analysis.
func (c *Client) AnalyzeScreenshot(ctx context.Context, png []byte, prompt string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "backend.analyze_screenshot")
	defer span.End()

	span.SetAttributes(attribute.Int("image.bytes", len(png)))

	body, err := c.postJSON(ctx, "/api/analyze-screenshot", models.AnalyzeScreenshotRequest{
		Image:  base64.StdEncoding.EncodeToString(png),
		Prompt: prompt,
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	var resp models.AnalyzeScreenshotResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		err = &ProtocolError{Message: "analyze response", Err: err}
		span.RecordError(err)
		return "", err
	}
	if resp.Error != "" {
		err = &BackendError{Message: resp.Error}
		span.RecordError(err)
		return "", err
	}

	return resp.Analysis, nil
}

// Echo sends a connectivity probe.
func (c *Client) Echo(ctx context.Context, message string) (*models.EchoResponse, error) {
	ctx, span := c.tracer.Start(ctx, "backend.echo")
	defer span.End()

	body, err := c.postJSON(ctx, "/api/echo", models.EchoRequest{Message: message})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var resp models.EchoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		err = &ProtocolError{Message: "echo response", Err: err}
		span.RecordError(err)
		return nil, err
	}

	return &resp, nil
}

// Healthy checks the backend health endpoint; nil means reachable and healthy.
func (c *Client) Healthy(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "backend.health_check")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		connErr := &ConnectionError{Endpoint: c.baseURL, Err: err}
		span.RecordError(connErr)
		return connErr
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &BackendError{StatusCode: resp.StatusCode, Message: "health check failed"}
	}

	return nil
}

// execute runs a protocol call through the circuit breaker, mapping an open
// breaker to a connection failure.
func (c *Client) execute(ctx context.Context, fn func() (*Result, error)) (*Result, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &ConnectionError{Endpoint: c.baseURL, Err: err}
		}
		return nil, err
	}
	return result.(*Result), nil
}

// postProtocol posts a request body and interprets the reply as a generation
// protocol payload, applying the authoritative-error rule.
func (c *Client) postProtocol(ctx context.Context, path string, payload interface{}) (*Result, error) {
	body, err := c.postJSON(ctx, path, payload)
	if err != nil {
		return nil, err
	}

	var resp models.GenerateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ProtocolError{Message: "generation response", Err: err}
	}

	// A non-empty error field is authoritative regardless of other fields.
	if resp.Error != "" {
		return nil, &BackendError{Message: resp.Error}
	}
	if resp.Code == "" {
		return nil, &ProtocolError{Message: "response carried no code"}
	}

	warnings := resp.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return &Result{
		Code:        resp.Code,
		Explanation: resp.Explanation,
		UsedLayers:  resp.UsedLayers,
		Warnings:    warnings,
	}, nil
}

// postJSON performs one POST and returns the raw reply body, mapping
// transport and HTTP-status failures to the protocol error taxonomy.
func (c *Client) postJSON(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectionError{Endpoint: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Endpoint: c.baseURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &BackendError{
			StatusCode: resp.StatusCode,
			Message:    errorMessageFromBody(body),
		}
	}

	return body, nil
}

// errorMessageFromBody extracts the error field from a reply body, falling
// back to the raw text.
func errorMessageFromBody(body []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(body))
}
