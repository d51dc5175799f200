package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forgelabs/fastapi-forge/internal/analysis"
	"github.com/forgelabs/fastapi-forge/internal/diffengine"
	"github.com/forgelabs/fastapi-forge/internal/openapi"
	"github.com/forgelabs/fastapi-forge/internal/prompts"
	"github.com/forgelabs/fastapi-forge/internal/providers"
	"github.com/forgelabs/fastapi-forge/internal/spec"
	"github.com/forgelabs/fastapi-forge/internal/validation"
	"github.com/forgelabs/fastapi-forge/internal/visualization"
)

// OpenAPIPreview godoc
// @Summary Build an OpenAPI document for a specification without generating files
// @Tags tooling
// @Accept json
// @Produce json
// @Param request body spec.CPS true "Project specification"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /openapi-preview [post]
func (h *Handler) OpenAPIPreview(c *gin.Context) {
	cps, ok := h.bindCPS(c)
	if !ok {
		return
	}

	doc := openapi.Build(cps)
	jsonStr, err := doc.ToJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to serialize OpenAPI document"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"openapi_spec": doc, "json": jsonStr})
}

// EstimateCosts godoc
// @Summary Estimate monthly LLM costs for a specification
// @Tags tooling
// @Accept json
// @Produce json
// @Param request body spec.CPS true "Project specification"
// @Success 200 {object} analysis.CostEstimate
// @Failure 400 {object} map[string]string
// @Router /estimate-costs [post]
func (h *Handler) EstimateCosts(c *gin.Context) {
	cps, ok := h.bindCPS(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analysis.EstimateCosts(cps))
}

// Pricing godoc
// @Summary Return the pricing table used for cost estimation
// @Tags tooling
// @Produce json
// @Success 200 {object} map[string]any
// @Router /pricing [get]
func (h *Handler) Pricing(c *gin.Context) {
	c.JSON(http.StatusOK, analysis.PricingInfo())
}

// Schemas godoc
// @Summary Visualize the Pydantic models a specification produces
// @Tags tooling
// @Accept json
// @Produce json
// @Param request body spec.CPS true "Project specification"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /schemas [post]
func (h *Handler) Schemas(c *gin.Context) {
	cps, ok := h.bindCPS(c)
	if !ok {
		return
	}
	viz := visualization.Extract(cps)
	c.JSON(http.StatusOK, gin.H{
		"pydantic_models": viz.PydanticModels,
		"json_schemas":    viz.JSONSchemas,
		"complete_schema": visualization.JSONSchemaDoc(cps),
		"summary":         visualization.Summary(cps),
	})
}

// PreflightRequest pairs a specification with previously generated files.
type PreflightRequest struct {
	CPS   *spec.CPS         `json:"cps"`
	Files map[string]string `json:"files"`
}

// Preflight godoc
// @Summary Simulate deployment readiness checks for a specification
// @Tags tooling
// @Accept json
// @Produce json
// @Param request body PreflightRequest true "Specification and optional generated files"
// @Success 200 {object} validation.Result
// @Failure 400 {object} map[string]string
// @Router /preflight [post]
func (h *Handler) Preflight(c *gin.Context) {
	var req PreflightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.CPS == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing cps field"})
		return
	}
	c.JSON(http.StatusOK, validation.Simulate(*req.CPS, req.Files))
}

// DiffRequest holds two file maps to compare.
type DiffRequest struct {
	OldFiles map[string]string `json:"old_files"`
	NewFiles map[string]string `json:"new_files"`
}

// Diff godoc
// @Summary Compute a per-file diff between two generated file maps
// @Tags tooling
// @Accept json
// @Produce json
// @Param request body DiffRequest true "Old and new file maps"
// @Success 200 {object} diffengine.DiffResult
// @Failure 400 {object} map[string]string
// @Router /diff [post]
func (h *Handler) Diff(c *gin.Context) {
	var req DiffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(req.NewFiles) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing new_files field"})
		return
	}
	c.JSON(http.StatusOK, diffengine.Compute(req.OldFiles, req.NewFiles))
}

// RegenerateRequest pairs a specification with the previous output.
type RegenerateRequest struct {
	CPS      json.RawMessage   `json:"cps"`
	OldFiles map[string]string `json:"old_files"`
}

// Regenerate godoc
// @Summary Regenerate a project and diff it against the previous output
// @Tags tooling
// @Accept json
// @Produce json
// @Param request body RegenerateRequest true "Specification and previous files"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /regenerate [post]
func (h *Handler) Regenerate(c *gin.Context) {
	var req RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.CPS) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing cps field"})
		return
	}
	cps, err := spec.Decode(req.CPS)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid specification", "details": err.Error()})
		return
	}

	files, warnings := h.runGeneration(c, cps)
	c.JSON(http.StatusOK, gin.H{
		"files":    files,
		"diff":     diffengine.Compute(req.OldFiles, files),
		"warnings": warnings,
	})
}

// MergeRequest selects which new-file paths to fold into the old map.
type MergeRequest struct {
	OldFiles      map[string]string `json:"old_files"`
	NewFiles      map[string]string `json:"new_files"`
	SelectedPaths []string          `json:"selected_paths"`
}

// Merge godoc
// @Summary Selectively merge regenerated files into a previous output
// @Tags tooling
// @Accept json
// @Produce json
// @Param request body MergeRequest true "Old files, new files and paths to update"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /merge [post]
func (h *Handler) Merge(c *gin.Context) {
	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": diffengine.Merge(req.OldFiles, req.NewFiles, req.SelectedPaths)})
}

// ListPrompts godoc
// @Summary List the configurable prompt templates
// @Tags prompts
// @Produce json
// @Success 200 {object} map[string]any
// @Router /prompts [get]
func (h *Handler) ListPrompts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"prompts": h.prompts.List()})
}

// GetPrompt godoc
// @Summary Fetch a prompt template by name
// @Tags prompts
// @Produce json
// @Param name path string true "Prompt name"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /prompts/{name} [get]
func (h *Handler) GetPrompt(c *gin.Context) {
	name := c.Param("name")
	content, err := h.prompts.Get(name)
	if err != nil {
		if errors.Is(err, prompts.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown prompt: " + name})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load prompt"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "content": content})
}

// SavePromptRequest overrides a prompt template.
type SavePromptRequest struct {
	Content string `json:"content" binding:"required"`
}

// SavePrompt godoc
// @Summary Override a prompt template
// @Tags prompts
// @Accept json
// @Produce json
// @Param name path string true "Prompt name"
// @Param request body SavePromptRequest true "New prompt content"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /prompts/{name} [put]
func (h *Handler) SavePrompt(c *gin.Context) {
	var req SavePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing content field"})
		return
	}
	name := c.Param("name")
	h.prompts.Save(name, req.Content)
	c.JSON(http.StatusOK, gin.H{"status": "saved", "name": name})
}

// Providers godoc
// @Summary List the supported LLM providers
// @Tags tooling
// @Produce json
// @Success 200 {object} map[string]any
// @Router /providers [get]
func (h *Handler) Providers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": providers.Supported(), "default": providers.Default})
}

// ValidateProvider godoc
// @Summary Check whether a provider configuration is deployable
// @Tags tooling
// @Accept json
// @Produce json
// @Param request body spec.LLMProvider true "Provider configuration"
// @Success 200 {object} providers.ValidationResult
// @Failure 400 {object} map[string]string
// @Router /providers/validate [post]
func (h *Handler) ValidateProvider(c *gin.Context) {
	var p spec.LLMProvider
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid provider configuration"})
		return
	}
	result, err := providers.Validate(p)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
