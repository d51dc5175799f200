package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/forgelabs/fastapi-forge/internal/auth"
	"github.com/forgelabs/fastapi-forge/internal/extraction"
	"github.com/forgelabs/fastapi-forge/internal/gateway"
	"github.com/forgelabs/fastapi-forge/internal/generator"
	"github.com/forgelabs/fastapi-forge/internal/metrics"
	"github.com/forgelabs/fastapi-forge/internal/prompts"
	"github.com/forgelabs/fastapi-forge/internal/render"

	_ "github.com/forgelabs/fastapi-forge/docs" // swagger docs
)

// @title FastAPI Forge API
// @version 2.0.0
// @description Deterministic FastAPI project generator.
// @description
// @description Turns a natural-language idea or a structured project specification into a
// @description complete FastAPI codebase, with diffing, selective merge, cost estimation,
// @description preflight validation and OpenAPI preview on top.

// @contact.name API Support
// @contact.email support@forgelabs.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	if err := initTracer(); err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}

	renderer, err := render.NewTemplateRenderer()
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}
	gen := generator.New(renderer)

	promptStore, err := prompts.NewStore()
	if err != nil {
		log.Fatalf("Failed to load prompt templates: %v", err)
	}

	// The extraction backend is optional: without a Gemini key the analyze
	// and refine endpoints report 503 and everything else works normally.
	var extractor extraction.Engine = extraction.Disabled{}
	if os.Getenv("GEMINI_API_KEY") != "" {
		engine, err := extraction.NewGeminiEngine(context.Background(), os.Getenv("GEMINI_MODEL"), promptStore)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		extractor = engine
		log.Println("Extraction backend enabled (Gemini)")
	} else {
		log.Println("GEMINI_API_KEY not set; extraction endpoints disabled")
	}

	apiKey := os.Getenv("GENERATOR_API_KEY")
	if apiKey == "" {
		apiKey = "fastapi-gen-secret"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = apiKey
	}
	jwtManager, err := auth.NewJWTManager(jwtSecret)
	if err != nil {
		log.Fatalf("Failed to initialize JWT manager: %v", err)
	}

	genMetrics, err := metrics.NewGenerationMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	gatewayHandler := gateway.NewHandler(gen, extractor, promptStore, jwtManager, genMetrics, apiKey)

	router := gin.Default()
	router.Use(structuredLoggingMiddleware())

	// Health check at the root for load balancers
	router.GET("/health", gatewayHandler.Health)

	// API routes
	api := router.Group("/api")

	// Public routes (no authentication required)
	api.GET("/health", gatewayHandler.Health)
	api.POST("/auth/token", gatewayHandler.Token)
	api.POST("/analyze", gatewayHandler.Analyze)
	api.POST("/validate", gatewayHandler.Validate)
	api.POST("/generate", gatewayHandler.Generate)
	api.POST("/refine", gatewayHandler.Refine)
	api.POST("/export", gatewayHandler.Export)
	api.POST("/openapi-preview", gatewayHandler.OpenAPIPreview)
	api.POST("/estimate-costs", gatewayHandler.EstimateCosts)
	api.GET("/pricing", gatewayHandler.Pricing)
	api.POST("/schemas", gatewayHandler.Schemas)
	api.POST("/preflight", gatewayHandler.Preflight)
	api.POST("/diff", gatewayHandler.Diff)
	api.POST("/regenerate", gatewayHandler.Regenerate)
	api.POST("/merge", gatewayHandler.Merge)
	api.GET("/providers", gatewayHandler.Providers)
	api.POST("/providers/validate", gatewayHandler.ValidateProvider)

	// Swagger documentation (public)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Service routes (API key or JWT)
	service := api.Group("")
	service.Use(auth.RequireServiceAuth(jwtManager, apiKey))
	service.POST("/v1/generate", gatewayHandler.UnifiedGenerate)

	// Prompt administration (JWT only)
	protected := api.Group("")
	protected.Use(auth.RequireAuth(jwtManager))
	protected.GET("/prompts", gatewayHandler.ListPrompts)
	protected.GET("/prompts/:name", gatewayHandler.GetPrompt)
	protected.PUT("/prompts/:name", gatewayHandler.SavePrompt)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // extraction calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting FastAPI Forge API server on port %s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

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

// structuredLoggingMiddleware provides structured JSON logging for all requests
func structuredLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		clientID, _ := c.Get("client_id")

		logEntry := map[string]interface{}{
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}

		if clientID != nil {
			logEntry["client_id"] = clientID
		}

		if len(c.Errors) > 0 {
			logEntry["errors"] = c.Errors.String()
		}

		logJSON, _ := json.Marshal(logEntry)
		log.Println(string(logJSON))
	}
}
