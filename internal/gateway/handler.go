// Package gateway exposes the code-generation protocol over HTTP.
package gateway

import (
	"encoding/base64"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cartoflow/gis-copilot/internal/datasources"
	"github.com/cartoflow/gis-copilot/internal/history"
	"github.com/cartoflow/gis-copilot/internal/llm"
	"github.com/cartoflow/gis-copilot/internal/models"
	"github.com/cartoflow/gis-copilot/internal/validator"
)

const maxRegenerateAttempts = 3

// Handler handles HTTP requests for the protocol endpoints.
type Handler struct {
	provider  llm.Provider
	validator *validator.Validator
	history   *history.Store
	sources   *datasources.Registry
	version   string
}

// NewHandler creates a gateway handler.
func NewHandler(provider llm.Provider, v *validator.Validator, store *history.Store, sources *datasources.Registry, version string) *Handler {
	return &Handler{
		provider:  provider,
		validator: v,
		history:   store,
		sources:   sources,
		version:   version,
	}
}

// Generate godoc
// @Summary Generate a script from a prompt
// @Description Generate scripting code for the user's task, grounded in the submitted project context
// @Tags generation
// @Accept json
// @Produce json
// @Param request body models.GenerateRequest true "Prompt and optional project context"
// @Success 200 {object} models.GenerateResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /generate [post]
func (h *Handler) Generate(c *gin.Context) {
	start := time.Now()

	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "prompt is required"})
		return
	}
	if req.Context != nil {
		req.Context.Normalize()
	}

	resp, err := h.provider.GenerateCode(c.Request.Context(), req.Prompt, req.Context)
	if err != nil {
		log.Printf(`{"level":"error","message":"code generation failed","error":"%v"}`, err)
		h.record(c, history.Entry{Kind: "generate", Prompt: req.Prompt, Error: err.Error(), Duration: time.Since(start)})
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "code generation failed: " + err.Error()})
		return
	}

	h.applySafetyCheck(resp)
	h.record(c, history.Entry{
		Kind:         "generate",
		Prompt:       req.Prompt,
		CodeChars:    len(resp.Code),
		WarningCount: len(resp.Warnings),
		Error:        resp.Error,
		Duration:     time.Since(start),
	})

	c.JSON(http.StatusOK, resp)
}

// Regenerate godoc
// @Summary Regenerate a script after a failed execution
// @Description Produce a corrected replacement for code that raised an error on the client
// @Tags generation
// @Accept json
// @Produce json
// @Param request body models.RegenerateRequest true "Failed code, error message, and attempt number"
// @Success 200 {object} models.GenerateResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /regenerate [post]
func (h *Handler) Regenerate(c *gin.Context) {
	start := time.Now()

	var req models.RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Attempt < 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "attempt must be at least 1"})
		return
	}
	if req.Attempt > maxRegenerateAttempts {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "maximum retry attempts exceeded"})
		return
	}
	if req.Context != nil {
		req.Context.Normalize()
	}

	resp, err := h.provider.RegenerateCode(c.Request.Context(), &req)
	if err != nil {
		log.Printf(`{"level":"error","message":"code regeneration failed","error":"%v","attempt":%d}`, err, req.Attempt)
		h.record(c, history.Entry{Kind: "regenerate", Prompt: req.OriginalPrompt, Attempt: req.Attempt, Error: err.Error(), Duration: time.Since(start)})
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "code regeneration failed: " + err.Error()})
		return
	}

	h.applySafetyCheck(resp)
	h.record(c, history.Entry{
		Kind:         "regenerate",
		Prompt:       req.OriginalPrompt,
		Attempt:      req.Attempt,
		CodeChars:    len(resp.Code),
		WarningCount: len(resp.Warnings),
		Error:        resp.Error,
		Duration:     time.Since(start),
	})

	c.JSON(http.StatusOK, resp)
}

// Validate godoc
// @Summary Run the safety check on a script
// @Tags validation
// @Accept json
// @Produce json
// @Param request body models.ValidateRequest true "Code to check"
// @Success 200 {object} models.ValidateResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /validate [post]
func (h *Handler) Validate(c *gin.Context) {
	var req models.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	result := h.validator.Validate(req.Code)
	c.JSON(http.StatusOK, models.ValidateResponse{
		Valid:    result.Valid,
		Errors:   result.Errors,
		Warnings: result.Warnings,
		Score:    result.Score,
	})
}

// Echo godoc
// @Summary Connectivity probe
// @Tags diagnostics
// @Accept json
// @Produce json
// @Param request body models.EchoRequest true "Message to echo"
// @Success 200 {object} models.EchoResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /echo [post]
func (h *Handler) Echo(c *gin.Context) {
	var req models.EchoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	c.JSON(http.StatusOK, models.EchoResponse{
		Message:    req.Message,
		ServerTime: time.Now().UTC(),
	})
}

// AnalyzeScreenshot godoc
// @Summary Analyze a map or layout capture
// @Description Review a base64-encoded screenshot and answer the user's question about it
// @Tags vision
// @Accept json
// @Produce json
// @Param request body models.AnalyzeScreenshotRequest true "Base64 image and question"
// @Success 200 {object} models.AnalyzeScreenshotResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /analyze-screenshot [post]
func (h *Handler) AnalyzeScreenshot(c *gin.Context) {
	start := time.Now()

	var req models.AnalyzeScreenshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Image == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "image is required"})
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "image is not valid base64"})
		return
	}

	analysis, err := h.provider.AnalyzeImage(c.Request.Context(), image, req.Prompt)
	if err != nil {
		log.Printf(`{"level":"error","message":"screenshot analysis failed","error":"%v"}`, err)
		h.record(c, history.Entry{Kind: "analyze", Prompt: req.Prompt, Error: err.Error(), Duration: time.Since(start)})
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "screenshot analysis failed: " + err.Error()})
		return
	}

	h.record(c, history.Entry{Kind: "analyze", Prompt: req.Prompt, Duration: time.Since(start)})
	c.JSON(http.StatusOK, models.AnalyzeScreenshotResponse{Analysis: analysis})
}

// SearchData godoc
// @Summary Search the curated data sources
// @Tags data
// @Produce json
// @Param q query string false "Search terms"
// @Param limit query int false "Maximum results" default(10)
// @Success 200 {object} map[string]interface{}
// @Router /data/search [get]
func (h *Handler) SearchData(c *gin.Context) {
	query := c.Query("q")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	datasets := h.sources.Search(c.Request.Context(), query, limit)
	if datasets == nil {
		datasets = []datasources.Dataset{}
	}
	c.JSON(http.StatusOK, gin.H{"datasets": datasets, "count": len(datasets)})
}

// FetchDataRequest asks for a dataset rendered as GeoJSON.
type FetchDataRequest struct {
	Source string            `json:"source" binding:"required"`
	ID     string            `json:"id" binding:"required"`
	Extent *models.MapExtent `json:"extent,omitempty"`
}

// FetchData godoc
// @Summary Fetch a dataset as GeoJSON
// @Tags data
// @Accept json
// @Produce json
// @Param request body FetchDataRequest true "Source, dataset id, and bounding extent"
// @Success 200 {object} datasources.FetchResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /data/fetch [post]
func (h *Handler) FetchData(c *gin.Context) {
	var req FetchDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.sources.Fetch(c.Request.Context(), req.Source, req.ID, req.Extent)
	if err != nil {
		if _, ok := err.(*datasources.UnknownSourceError); ok {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		log.Printf(`{"level":"error","message":"dataset fetch failed","error":"%v","source":"%s","id":"%s"}`, err, req.Source, req.ID)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "gis-copilot",
		"version": h.version,
	})
}

// Ready reports readiness: the provider is configured and the history store
// answers.
func (h *Handler) Ready(c *gin.Context) {
	if h.provider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": "no provider configured"})
		return
	}
	if h.history != nil {
		if err := h.history.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": "history store unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// applySafetyCheck runs the validator over a generated reply. A rejected
// script is replaced by a protocol error so clients never execute it.
func (h *Handler) applySafetyCheck(resp *models.GenerateResponse) {
	if resp == nil || resp.Code == "" || resp.Error != "" {
		return
	}

	result := h.validator.Validate(resp.Code)
	if !result.Valid {
		log.Printf(`{"level":"warn","message":"generated code rejected by safety check","score":%d}`, result.Score)
		resp.Code = ""
		resp.Explanation = ""
		resp.Error = "generated code failed the safety check: " + joinFirst(result.Errors)
		return
	}
	resp.Warnings = append(resp.Warnings, result.Warnings...)
}

func joinFirst(errs []string) string {
	if len(errs) == 0 {
		return "unspecified safety violation"
	}
	return errs[0]
}

// record writes a history entry; failures are logged and swallowed.
func (h *Handler) record(c *gin.Context, entry history.Entry) {
	if h.history == nil {
		return
	}
	if err := h.history.Record(c.Request.Context(), entry); err != nil {
		log.Printf(`{"level":"warn","message":"failed to record request history","error":"%v"}`, err)
	}
}
