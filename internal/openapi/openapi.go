// Package openapi builds OpenAPI 3.0 contract documents strictly from a CPS.
// Every path and schema is derived from declared fields; nothing is inferred.
package openapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forgelabs/fastapi-forge/internal/spec"
)

// Document is an OpenAPI 3.0 document. Keys serialize in sorted order in both
// JSON and YAML, which keeps the emitted contract byte-deterministic.
type Document map[string]any

// Build derives the OpenAPI contract for a CPS.
func Build(cps spec.CPS) Document {
	paths := map[string]any{
		"/": map[string]any{
			"get": map[string]any{
				"summary":     "Root endpoint",
				"operationId": "root",
				"responses": jsonResponse("200", "Welcome message",
					ref("MessageResponse")),
			},
		},
	}

	if cps.Mode == spec.ModeRAGOnly {
		paths["/ingest"] = map[string]any{"post": operation("Ingest content into knowledge base", "ingest", "rag",
			ref("IngestRequest"), "Ingestion result", ref("IngestResponse"), "200")}
		paths["/query"] = map[string]any{"post": operation("Query the knowledge base", "query", "rag",
			ref("QueryRequest"), "Query response", ref("QueryResponse"), "200")}
	} else if cps.Features.Chat {
		paths["/chat"] = map[string]any{"post": operation("Chat with AI", "chat", "chat",
			ref("ChatRequest"), "Chat response", ref("ChatResponse"), "200")}
	}

	for _, e := range cps.Endpoints {
		path := e.Path
		if path == "" {
			path = "/"
		}
		method := strings.ToLower(e.Method)
		if method == "" {
			method = "get"
		}
		desc := e.Description
		if desc == "" {
			desc = fmt.Sprintf("Endpoint for %s", path)
		}
		opID := strings.ReplaceAll(strings.Trim(path, "/"), "/", "_")
		if opID == "" {
			opID = "custom_endpoint"
		}
		op := map[string]any{
			"summary":     desc,
			"operationId": opID,
			"responses":   jsonResponse("200", "Successful response", ref("MessageResponse")),
		}
		if e.UsesLLM {
			op["tags"] = []any{"llm"}
		}
		entry, ok := paths[path].(map[string]any)
		if !ok {
			entry = map[string]any{}
			paths[path] = entry
		}
		entry[method] = op
	}

	for _, m := range cps.Modules {
		schema := spec.TitleCase(m) + "Base"
		entry, ok := paths["/"+m].(map[string]any)
		if !ok {
			entry = map[string]any{}
			paths["/"+m] = entry
		}
		entry["get"] = map[string]any{
			"summary":     fmt.Sprintf("List %s", m),
			"operationId": fmt.Sprintf("list_%s", m),
			"tags":        []any{m},
			"responses": jsonResponse("200", fmt.Sprintf("List of %s", m),
				map[string]any{"type": "array", "items": ref(schema)}),
		}
		entry["post"] = map[string]any{
			"summary":     fmt.Sprintf("Create %s", m),
			"operationId": fmt.Sprintf("create_%s", m),
			"tags":        []any{m},
			"requestBody": requestBody(ref(schema)),
			"responses": jsonResponse("201", fmt.Sprintf("%s created", spec.TitleCase(m)),
				ref(schema)),
		}
	}

	doc := Document{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":       cps.ProjectName,
			"description": cps.Description,
			"version":     "1.0.0",
		},
		"servers": []any{
			map[string]any{"url": "http://localhost:8000", "description": "Local development server"},
		},
		"paths": paths,
		"components": map[string]any{
			"schemas":         Schemas(cps),
			"securitySchemes": securitySchemes(cps.Auth),
		},
	}

	if cps.Auth.Type != spec.AuthNone {
		if req := securityRequirement(cps.Auth); req != nil {
			doc["security"] = []any{req}
		}
	}

	return doc
}

// Schemas returns the component schemas for a CPS: the standard message
// envelope, feature-gated chat/RAG shapes, and one base object per module.
func Schemas(cps spec.CPS) map[string]any {
	schemas := map[string]any{
		"MessageResponse": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{"type": "string"},
			},
			"required": []any{"message"},
		},
	}

	if cps.Features.Chat {
		schemas["ChatRequest"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{"type": "string", "description": "User message"},
				"stream":  map[string]any{"type": "boolean", "default": false},
			},
			"required": []any{"message"},
		}
		schemas["ChatResponse"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"reply": map[string]any{"type": "string", "description": "AI response"},
			},
			"required": []any{"reply"},
		}
	}

	if cps.Features.RAG {
		schemas["IngestRequest"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"content": map[string]any{"type": "string", "description": "Content to ingest"},
				"metadata": map[string]any{
					"type":                 "object",
					"additionalProperties": map[string]any{"type": "string"},
				},
			},
			"required": []any{"content"},
		}
		schemas["IngestResponse"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"status":  map[string]any{"type": "string"},
				"message": map[string]any{"type": "string"},
			},
			"required": []any{"status", "message"},
		}
		schemas["QueryRequest"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "Search query"},
			},
			"required": []any{"query"},
		}
		schemas["QueryResponse"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"reply": map[string]any{"type": "string"},
				"context_used": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []any{"reply", "context_used"},
		}
	}

	for _, m := range cps.Modules {
		schemas[spec.TitleCase(m)+"Base"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":        map[string]any{"type": "string"},
				"description": map[string]any{"type": "string", "nullable": true},
			},
			"required": []any{"name"},
		}
	}

	return schemas
}

// ToJSON serializes a document with two-space indentation.
func (d Document) ToJSON() (string, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal openapi json: %w", err)
	}
	return string(b), nil
}

// ToYAML serializes a document as YAML.
func (d Document) ToYAML() (string, error) {
	b, err := yaml.Marshal(map[string]any(d))
	if err != nil {
		return "", fmt.Errorf("marshal openapi yaml: %w", err)
	}
	return string(b), nil
}

func ref(name string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + name}
}

func jsonResponse(status, description string, schema map[string]any) map[string]any {
	return map[string]any{
		status: map[string]any{
			"description": description,
			"content": map[string]any{
				"application/json": map[string]any{"schema": schema},
			},
		},
	}
}

func requestBody(schema map[string]any) map[string]any {
	return map[string]any{
		"required": true,
		"content": map[string]any{
			"application/json": map[string]any{"schema": schema},
		},
	}
}

func operation(summary, opID, tag string, request map[string]any, respDesc string, response map[string]any, status string) map[string]any {
	return map[string]any{
		"summary":     summary,
		"operationId": opID,
		"tags":        []any{tag},
		"requestBody": requestBody(request),
		"responses":   jsonResponse(status, respDesc, response),
	}
}

func securitySchemes(auth spec.Auth) map[string]any {
	switch auth.Type {
	case spec.AuthAPIKey:
		return map[string]any{
			"ApiKeyAuth": map[string]any{
				"type": "apiKey",
				"in":   "header",
				"name": "X-API-Key",
			},
		}
	case spec.AuthJWT:
		return map[string]any{
			"BearerAuth": map[string]any{
				"type":         "http",
				"scheme":       "bearer",
				"bearerFormat": "JWT",
			},
		}
	default:
		return map[string]any{}
	}
}

func securityRequirement(auth spec.Auth) map[string]any {
	switch auth.Type {
	case spec.AuthAPIKey:
		return map[string]any{"ApiKeyAuth": []any{}}
	case spec.AuthJWT:
		return map[string]any{"BearerAuth": []any{}}
	default:
		return nil
	}
}
