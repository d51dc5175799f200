package gateway

import (
	"archive/zip"
	"bytes"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/forgelabs/fastapi-forge/internal/auth"
	"github.com/forgelabs/fastapi-forge/internal/extraction"
	"github.com/forgelabs/fastapi-forge/internal/generator"
	"github.com/forgelabs/fastapi-forge/internal/metrics"
	"github.com/forgelabs/fastapi-forge/internal/spec"
)

// Version reported by the health endpoint.
const Version = "2.0.0"

// Handler handles HTTP requests for the gateway layer.
type Handler struct {
	generator  *generator.Generator
	extractor  extraction.Engine
	prompts    PromptStore
	jwtManager *auth.JWTManager
	metrics    *metrics.GenerationMetrics
	apiKey     string
}

// PromptStore is the prompt-template surface the gateway needs.
type PromptStore interface {
	List() []string
	Get(name string) (string, error)
	Save(name, content string)
}

// NewHandler creates a new gateway handler.
func NewHandler(g *generator.Generator, e extraction.Engine, p PromptStore, jm *auth.JWTManager, m *metrics.GenerationMetrics, apiKey string) *Handler {
	return &Handler{
		generator:  g,
		extractor:  e,
		prompts:    p,
		jwtManager: jm,
		metrics:    m,
		apiKey:     apiKey,
	}
}

// Health godoc
// @Summary Health check
// @Tags status
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
}

// TokenRequest is an API-key-for-JWT exchange request.
type TokenRequest struct {
	APIKey   string `json:"api_key" binding:"required"`
	ClientID string `json:"client_id"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// Token godoc
// @Summary Exchange the service API key for a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body TokenRequest true "API key"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} map[string]string
// @Router /auth/token [post]
func (h *Handler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.apiKey)) != 1 {
		log.Printf(`{"level":"warn","message":"Invalid API key on token exchange"}`)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
		return
	}

	clientID := req.ClientID
	if clientID == "" {
		clientID = "api-client"
	}
	const ttl = 24 * time.Hour
	token, err := h.jwtManager.GenerateToken(c.Request.Context(), clientID, ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token, ExpiresIn: int(ttl.Seconds())})
}

// AnalyzeRequest is a natural-language project description.
type AnalyzeRequest struct {
	Text string `json:"text" binding:"required"`
}

// Analyze godoc
// @Summary Extract a project specification from natural language
// @Tags generation
// @Accept json
// @Produce json
// @Param request body AnalyzeRequest true "Project description"
// @Success 200 {object} spec.CPS
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /analyze [post]
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing text input"})
		return
	}

	cps, err := h.extractor.ExtractCPS(c.Request.Context(), req.Text)
	if err != nil {
		if errors.Is(err, extraction.ErrUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Extraction backend is not configured"})
			return
		}
		log.Printf(`{"level":"error","message":"Extraction failed","error":"%v"}`, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Extraction failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cps)
}

// Validate godoc
// @Summary Validate a project specification
// @Tags generation
// @Accept json
// @Produce json
// @Param request body spec.CPS true "Project specification"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /validate [post]
func (h *Handler) Validate(c *gin.Context) {
	cps, ok := h.bindCPS(c)
	if !ok {
		return
	}
	if errs := cps.Validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": joinErrors(errs)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": cps})
}

// Generate godoc
// @Summary Generate a project file map from a specification
// @Tags generation
// @Accept json
// @Produce json
// @Param request body spec.CPS true "Project specification"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /generate [post]
func (h *Handler) Generate(c *gin.Context) {
	cps, ok := h.bindCPS(c)
	if !ok {
		return
	}
	files, warnings := h.runGeneration(c, cps)
	c.JSON(http.StatusOK, gin.H{"files": files, "warnings": warnings})
}

// RefineRequest carries a refinement round trip.
type RefineRequest struct {
	CPS      spec.CPS          `json:"cps"`
	Files    map[string]string `json:"files"`
	Feedback string            `json:"feedback"`
}

// Refine godoc
// @Summary Refine generated files from user feedback
// @Tags generation
// @Accept json
// @Produce json
// @Param request body RefineRequest true "Specification, files and feedback"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /refine [post]
func (h *Handler) Refine(c *gin.Context) {
	var req RefineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(req.Files) == 0 || req.Feedback == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: cps, files, or feedback"})
		return
	}

	refined, err := h.extractor.RefineFiles(c.Request.Context(), req.CPS, req.Files, req.Feedback)
	if err != nil {
		if errors.Is(err, extraction.ErrUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Refinement backend is not configured"})
			return
		}
		log.Printf(`{"level":"error","message":"Refinement failed","error":"%v"}`, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Refinement failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": refined})
}

// ExportRequest is a file map to package.
type ExportRequest struct {
	Files map[string]string `json:"files" binding:"required"`
}

// Export godoc
// @Summary Export a file map as a ZIP archive
// @Tags generation
// @Accept json
// @Produce application/zip
// @Param request body ExportRequest true "Files to package"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /export [post]
func (h *Handler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	// Sorted path order keeps the archive byte-stable for identical inputs.
	for _, path := range generator.SortedPaths(req.Files) {
		w, err := zw.Create(path)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build archive"})
			return
		}
		if _, err := w.Write([]byte(req.Files[path])); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build archive"})
			return
		}
	}
	if err := zw.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build archive"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=project.zip")
	c.Data(http.StatusOK, "application/x-zip-compressed", buf.Bytes())
}

// UnifiedGenerateRequest is a one-shot idea-to-project request.
type UnifiedGenerateRequest struct {
	Idea string `json:"idea" binding:"required"`
}

// UnifiedGenerate godoc
// @Summary Extract, validate and generate in one call
// @Tags generation
// @Accept json
// @Produce json
// @Param request body UnifiedGenerateRequest true "Project idea"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security ApiKeyAuth
// @Router /v1/generate [post]
func (h *Handler) UnifiedGenerate(c *gin.Context) {
	var req UnifiedGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing idea input"})
		return
	}

	cps, err := h.extractor.ExtractCPS(c.Request.Context(), req.Idea)
	if err != nil {
		if errors.Is(err, extraction.ErrUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Extraction backend is not configured"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Extraction failed", "details": err.Error()})
		return
	}

	if errs := cps.Validate(); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "details": joinErrors(errs)})
		return
	}

	files, warnings := h.runGeneration(c, cps)
	c.JSON(http.StatusOK, gin.H{
		"run_id":       uuid.NewString(),
		"project_name": cps.ProjectName,
		"files":        files,
		"warnings":     warnings,
	})
}

// runGeneration invokes the orchestrator and records run metrics.
func (h *Handler) runGeneration(c *gin.Context, cps spec.CPS) (map[string]string, []generator.Warning) {
	ctx := c.Request.Context()
	start := time.Now()
	if h.metrics != nil {
		h.metrics.RecordRunStarted(ctx, cps.ProjectName, string(cps.Mode))
	}
	files, warnings := h.generator.Generate(ctx, cps)
	if h.metrics != nil {
		h.metrics.RecordRunCompleted(ctx, cps.ProjectName, string(cps.Mode), len(files), len(warnings), time.Since(start))
	}
	if warnings == nil {
		warnings = []generator.Warning{}
	}
	return files, warnings
}

// bindCPS decodes a CPS body with defaults and legacy-form normalization.
func (h *Handler) bindCPS(c *gin.Context) (spec.CPS, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return spec.CPS{}, false
	}
	cps, err := spec.Decode(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid specification", "details": err.Error()})
		return spec.CPS{}, false
	}
	return cps, true
}

func joinErrors(errs []string) string {
	out := ""
	for i, e := range errs {
		if i > 0 {
			out += ", "
		}
		out += e
	}
	return out
}
