// Package visualization exposes the request/response schemas a CPS will
// produce, as both Pydantic model snippets and JSON Schema documents. Every
// entry is derived from the CPS; nothing is hand-written per project.
package visualization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/forgelabs/fastapi-forge/internal/spec"
)

// Visualization pairs model source snippets with their JSON Schema forms.
type Visualization struct {
	PydanticModels map[string]string         `json:"pydantic_models"`
	JSONSchemas    map[string]map[string]any `json:"json_schemas"`
}

// ModelSummary is one entry in a schema preview.
type ModelSummary struct {
	Name       string `json:"name"`
	FieldCount int    `json:"field_count"`
}

// SchemaSummary is the lightweight preview of the full visualization.
type SchemaSummary struct {
	TotalModels int            `json:"total_models"`
	Models      []ModelSummary `json:"models"`
}

// Extract derives the full schema visualization for a CPS.
func Extract(cps spec.CPS) Visualization {
	models := map[string]string{}
	schemas := map[string]map[string]any{}

	models["MessageResponse"] = `class MessageResponse(BaseModel):
    """Standard message response"""
    message: str`
	schemas["MessageResponse"] = map[string]any{
		"type":        "object",
		"title":       "MessageResponse",
		"description": "Standard message response",
		"properties": map[string]any{
			"message": map[string]any{"type": "string"},
		},
		"required": []any{"message"},
	}

	if cps.Features.Chat {
		models["ChatRequest"] = `class ChatRequest(BaseModel):
    """Chat request with user message"""
    message: str
    stream: Optional[bool] = False`
		schemas["ChatRequest"] = map[string]any{
			"type":        "object",
			"title":       "ChatRequest",
			"description": "Chat request with user message",
			"properties": map[string]any{
				"message": map[string]any{"type": "string", "description": "User message"},
				"stream":  map[string]any{"type": "boolean", "default": false, "description": "Enable streaming response"},
			},
			"required": []any{"message"},
		}

		models["ChatResponse"] = `class ChatResponse(BaseModel):
    """Chat response with AI reply"""
    reply: str`
		schemas["ChatResponse"] = map[string]any{
			"type":        "object",
			"title":       "ChatResponse",
			"description": "Chat response with AI reply",
			"properties": map[string]any{
				"reply": map[string]any{"type": "string", "description": "AI-generated response"},
			},
			"required": []any{"reply"},
		}
	}

	if cps.Features.RAG {
		models["IngestRequest"] = `class IngestRequest(BaseModel):
    """Request to ingest content into knowledge base"""
    content: str
    metadata: Optional[Dict[str, str]] = None`
		schemas["IngestRequest"] = map[string]any{
			"type":        "object",
			"title":       "IngestRequest",
			"description": "Request to ingest content into knowledge base",
			"properties": map[string]any{
				"content": map[string]any{"type": "string", "description": "Content to ingest"},
				"metadata": map[string]any{
					"type":                 "object",
					"additionalProperties": map[string]any{"type": "string"},
					"description":          "Optional metadata",
				},
			},
			"required": []any{"content"},
		}

		models["IngestResponse"] = `class IngestResponse(BaseModel):
    """Response after content ingestion"""
    status: str
    message: str`
		schemas["IngestResponse"] = map[string]any{
			"type":        "object",
			"title":       "IngestResponse",
			"description": "Response after content ingestion",
			"properties": map[string]any{
				"status":  map[string]any{"type": "string"},
				"message": map[string]any{"type": "string"},
			},
			"required": []any{"status", "message"},
		}

		models["QueryRequest"] = `class QueryRequest(BaseModel):
    """Request to query the knowledge base"""
    query: str
    top_k: Optional[int] = 5`
		schemas["QueryRequest"] = map[string]any{
			"type":        "object",
			"title":       "QueryRequest",
			"description": "Request to query the knowledge base",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "Search query"},
				"top_k": map[string]any{"type": "integer", "default": 5, "description": "Number of results to return"},
			},
			"required": []any{"query"},
		}

		models["QueryResponse"] = `class QueryResponse(BaseModel):
    """Response from knowledge base query"""
    reply: str
    context_used: List[str]`
		schemas["QueryResponse"] = map[string]any{
			"type":        "object",
			"title":       "QueryResponse",
			"description": "Response from knowledge base query",
			"properties": map[string]any{
				"reply": map[string]any{"type": "string", "description": "AI-generated answer"},
				"context_used": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Retrieved context documents",
				},
			},
			"required": []any{"reply", "context_used"},
		}
	}

	for _, m := range cps.Modules {
		name := spec.TitleCase(m) + "Base"
		models[name] = fmt.Sprintf(`class %s(BaseModel):
    """Base model for %s"""
    name: str
    description: Optional[str] = None`, name, m)
		schemas[name] = map[string]any{
			"type":        "object",
			"title":       name,
			"description": fmt.Sprintf("Base model for %s", m),
			"properties": map[string]any{
				"name":        map[string]any{"type": "string"},
				"description": map[string]any{"type": "string", "nullable": true},
			},
			"required": []any{"name"},
		}
	}

	return Visualization{PydanticModels: models, JSONSchemas: schemas}
}

// JSONSchemaDoc wraps the visualization's schemas into a single draft-07
// document with every model under definitions.
func JSONSchemaDoc(cps spec.CPS) map[string]any {
	v := Extract(cps)
	return map[string]any{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       fmt.Sprintf("%s Schemas", cps.ProjectName),
		"description": fmt.Sprintf("Request/response schemas for %s", cps.ProjectName),
		"definitions": v.JSONSchemas,
	}
}

// Summary previews the models a CPS would produce without building full
// schemas. Models are listed in sorted name order.
func Summary(cps spec.CPS) SchemaSummary {
	v := Extract(cps)

	names := make([]string, 0, len(v.PydanticModels))
	for name := range v.PydanticModels {
		names = append(names, name)
	}
	sort.Strings(names)

	summary := SchemaSummary{
		TotalModels: len(names),
		Models:      make([]ModelSummary, 0, len(names)),
	}
	for _, name := range names {
		fields := strings.Count(v.PydanticModels[name], ":") - 1
		if fields < 1 {
			fields = 1
		}
		summary.Models = append(summary.Models, ModelSummary{Name: name, FieldCount: fields})
	}
	return summary
}
