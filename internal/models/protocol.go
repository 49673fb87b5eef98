package models

import "time"

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Prompt  string   `json:"prompt"`
	Context *Context `json:"context,omitempty"`
}

// GenerateResponse is the reply shape shared by /api/generate and
// /api/regenerate. A non-empty Error is authoritative: receivers must treat
// the payload as failed even when Code or Explanation are populated.
type GenerateResponse struct {
	Code        string   `json:"code"`
	Explanation string   `json:"explanation"`
	UsedLayers  []string `json:"usedLayers,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// RegenerateRequest is the body of POST /api/regenerate. Attempt starts at 1
// for the first repair of a failed execution.
type RegenerateRequest struct {
	OriginalPrompt string   `json:"originalPrompt"`
	FailedCode     string   `json:"failedCode"`
	ErrorMessage   string   `json:"errorMessage"`
	Context        *Context `json:"context,omitempty"`
	Attempt        int      `json:"attempt"`
}

// EchoRequest is the connectivity probe body.
type EchoRequest struct {
	Message string `json:"message"`
}

// EchoResponse echoes the probe message with the server clock.
type EchoResponse struct {
	Message    string    `json:"message"`
	ServerTime time.Time `json:"serverTime"`
}

// ValidateRequest asks the server to run the safety check on a script.
type ValidateRequest struct {
	Code string `json:"code"`
}

// ValidateResponse mirrors the validator result.
type ValidateResponse struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Score    int      `json:"score"`
}

// AnalyzeScreenshotRequest carries a map or layout capture for review.
// Image is base64-encoded on the wire.
type AnalyzeScreenshotRequest struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

// AnalyzeScreenshotResponse is the vision analysis reply.
type AnalyzeScreenshotResponse struct {
	Analysis string `json:"analysis"`
	Error    string `json:"error,omitempty"`
}

// ErrorResponse is the generic error envelope for non-protocol endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}
