package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"

	"github.com/cartoflow/gis-copilot/internal/models"
)

// DefaultModel is the Gemini model used when the configuration names none.
const DefaultModel = "gemini-1.5-pro"

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Dialect         Dialect
	RateLimitPerMin int
}

// GeminiProvider implements Provider on the Gemini API. All calls share one
// rate limiter and one circuit breaker.
type GeminiProvider struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	prompts *PromptBuilder
	limiter *RateLimiter
	breaker *gobreaker.CircuitBreaker
	tracer  trace.Tracer
}

// NewGeminiProvider creates the provider and its underlying API client.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	model.SetTopP(0.8)
	model.SetTopK(40)
	model.SetMaxOutputTokens(2048)

	settings := gobreaker.Settings{
		Name:     "gemini",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}

	return &GeminiProvider{
		client:  client,
		model:   model,
		prompts: NewPromptBuilder(cfg.Dialect),
		limiter: NewRateLimiter(cfg.RateLimitPerMin),
		breaker: gobreaker.NewCircuitBreaker(settings),
		tracer:  otel.Tracer("gemini-provider"),
	}, nil
}

// Close releases the API client and the rate limiter.
func (p *GeminiProvider) Close() error {
	p.limiter.Close()
	return p.client.Close()
}

// GenerateCode produces a script for a user prompt and project snapshot.
func (p *GeminiProvider) GenerateCode(ctx context.Context, prompt string, doc *models.Context) (*models.GenerateResponse, error) {
	ctx, span := p.tracer.Start(ctx, "gemini.generate_code")
	defer span.End()

	span.SetAttributes(attribute.Bool("context.present", doc != nil))

	text, err := p.generateText(ctx, p.prompts.Generation(prompt, doc))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	code, explanation := ExtractCodeAndExplanation(text)
	return &models.GenerateResponse{
		Code:        code,
		Explanation: explanation,
		UsedLayers:  ExtractUsedLayers(code, doc),
		Warnings:    DeriveWarnings(code),
	}, nil
}

// RegenerateCode produces a corrected replacement for code that failed.
func (p *GeminiProvider) RegenerateCode(ctx context.Context, req *models.RegenerateRequest) (*models.GenerateResponse, error) {
	ctx, span := p.tracer.Start(ctx, "gemini.regenerate_code")
	defer span.End()

	span.SetAttributes(attribute.Int("attempt", req.Attempt))

	text, err := p.generateText(ctx, p.prompts.Regeneration(req))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	code, explanation := ExtractCodeAndExplanation(text)
	return &models.GenerateResponse{
		Code:        code,
		Explanation: explanation,
		UsedLayers:  ExtractUsedLayers(code, req.Context),
		Warnings:    DeriveWarnings(code),
	}, nil
}

// AnalyzeImage reviews a map capture with the vision model.
func (p *GeminiProvider) AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "gemini.analyze_image")
	defer span.End()

	span.SetAttributes(attribute.Int("image.bytes", len(image)))

	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		resp, err := p.model.GenerateContent(ctx, genai.Text(p.prompts.Vision(prompt)), genai.ImageData("png", image))
		if err != nil {
			return nil, fmt.Errorf("failed to analyze image: %w", err)
		}
		return responseText(resp)
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	return result.(string), nil
}

// generateText runs one text completion under the limiter and breaker.
func (p *GeminiProvider) generateText(ctx context.Context, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, fmt.Errorf("failed to generate content: %w", err)
		}
		return responseText(resp)
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// responseText extracts the first candidate's text from a model reply.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty response from model")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}
