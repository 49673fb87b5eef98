package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/cartoflow/gis-copilot/internal/config"
	"github.com/cartoflow/gis-copilot/internal/datasources"
	"github.com/cartoflow/gis-copilot/internal/gateway"
	"github.com/cartoflow/gis-copilot/internal/history"
	"github.com/cartoflow/gis-copilot/internal/llm"
	"github.com/cartoflow/gis-copilot/internal/validator"

	_ "github.com/cartoflow/gis-copilot/docs" // swagger docs
)

const version = "1.0.0"

// @title GIS Copilot API
// @version 1.0
// @description AI-assisted code generation backend for desktop GIS scripting.
// @description
// @description Desktop plugins submit a task prompt with a snapshot of the open project
// @description and receive a ready-to-run script, with one-shot regeneration after a
// @description failed execution.

// @contact.name API Support
// @contact.email support@cartoflow.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

func main() {
	// Initialize OpenTelemetry
	if err := initTracer(); err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize code provider: %v", err)
	}

	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		log.Fatalf("Failed to open history store: %v", err)
	}
	defer store.Close()

	var osmOpts []datasources.OSMOption
	if cfg.OverpassURL != "" {
		osmOpts = append(osmOpts, datasources.WithOverpassURL(cfg.OverpassURL))
	}
	sources := datasources.NewRegistry(datasources.NewOSM(osmOpts...))

	handler := gateway.NewHandler(provider, validator.New(), store, sources, version)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gateway.LoggingMiddleware())
	router.Use(gateway.CORSMiddleware())

	// Health checks at the root
	router.GET("/health", handler.Health)
	router.GET("/ready", handler.Ready)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := router.Group("/api")
	api.POST("/generate", handler.Generate)
	api.POST("/regenerate", handler.Regenerate)
	api.POST("/validate", handler.Validate)
	api.POST("/echo", handler.Echo)
	api.POST("/analyze-screenshot", handler.AnalyzeScreenshot)
	api.GET("/data/search", handler.SearchData)
	api.POST("/data/fetch", handler.FetchData)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting GIS Copilot server on port %s (dialect: %s)\n", cfg.Port, cfg.Dialect)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// buildProvider selects the code provider: Gemini normally, the canned echo
// provider when COPILOT_ECHO_ONLY is set.
func buildProvider(cfg *config.Config) (llm.Provider, error) {
	if cfg.EchoOnly {
		log.Println("Running in echo-only mode: no model calls will be made")
		return llm.NewStaticProvider(llm.Dialect(cfg.Dialect)), nil
	}

	return llm.NewGeminiProvider(context.Background(), llm.GeminiConfig{
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.GeminiModel,
		Dialect:         llm.Dialect(cfg.Dialect),
		RateLimitPerMin: cfg.RateLimitPerMin,
	})
}

// initTracer initializes OpenTelemetry tracing
func initTracer() error {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)

	return nil
}
