// Package validation runs deterministic pre-flight checks on a CPS and its
// generated file map before export. Checks never call external services and
// every issue names the offending field with an actionable suggestion.
package validation

import (
	"fmt"
	"strings"

	"github.com/forgelabs/fastapi-forge/internal/spec"
)

// Severity classifies an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one structured pre-flight finding.
type Issue struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Severity   Severity `json:"severity"`
	Field      string   `json:"field,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Result is a complete pre-flight report. Valid is true exactly when no
// error-severity issues were found.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
	Info     []Issue `json:"info"`
	Summary  Summary `json:"summary"`
}

// Summary carries the per-severity counts.
type Summary struct {
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
	InfoCount    int `json:"info_count"`
}

// Simulate runs every pre-flight check against a CPS and an optional
// generated file map.
func Simulate(cps spec.CPS, files map[string]string) Result {
	errs := checkRequiredEnvVars(cps, files)
	errs = append(errs, checkSchemaCompleteness(cps)...)
	warnings := checkFeatureCompatibility(cps)
	warnings = append(warnings, checkConfiguration(cps)...)
	info := checkBestPractices(cps)

	if errs == nil {
		errs = []Issue{}
	}
	if warnings == nil {
		warnings = []Issue{}
	}
	if info == nil {
		info = []Issue{}
	}

	return Result{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
		Info:     info,
		Summary: Summary{
			ErrorCount:   len(errs),
			WarningCount: len(warnings),
			InfoCount:    len(info),
		},
	}
}

func checkRequiredEnvVars(cps spec.CPS, files map[string]string) []Issue {
	type requirement struct{ name, description string }
	var required []requirement

	switch cps.LLMProvider.Type {
	case spec.ProviderOpenAI:
		required = append(required, requirement{"OPENAI_API_KEY", "OpenAI API key for LLM operations"})
	case spec.ProviderAzureOpenAI:
		required = append(required,
			requirement{"AZURE_OPENAI_API_KEY", "Azure OpenAI API key"},
			requirement{"AZURE_OPENAI_ENDPOINT", "Azure OpenAI endpoint URL"},
		)
	}

	if cps.Features.RAG {
		store := strings.ToLower(cps.VectorStore)
		if strings.Contains(store, "pinecone") {
			required = append(required, requirement{"PINECONE_API_KEY", "Pinecone API key for vector store"})
		} else if strings.Contains(store, "weaviate") {
			required = append(required, requirement{"WEAVIATE_API_KEY", "Weaviate API key"})
		}
	}

	var envExample string
	for path, content := range files {
		if strings.Contains(path, ".env.example") {
			envExample = content
			break
		}
	}

	var issues []Issue
	for _, req := range required {
		if envExample != "" && !strings.Contains(envExample, req.name) {
			issues = append(issues, Issue{
				Code:       "MISSING_ENV_VAR_DOC",
				Message:    fmt.Sprintf("%s is required but not documented in .env.example", req.name),
				Severity:   SeverityError,
				Field:      "environment",
				Suggestion: fmt.Sprintf("Add %s=your_value_here to .env.example", req.name),
			})
		} else {
			issues = append(issues, Issue{
				Code:       "REQUIRED_ENV_VAR",
				Message:    fmt.Sprintf("%s is required: %s", req.name, req.description),
				Severity:   SeverityError,
				Field:      "environment",
				Suggestion: fmt.Sprintf("Ensure %s is set in your deployment environment", req.name),
			})
		}
	}
	return issues
}

func checkSchemaCompleteness(cps spec.CPS) []Issue {
	var issues []Issue

	if cps.ProjectName == "" {
		issues = append(issues, Issue{
			Code:       "MISSING_PROJECT_NAME",
			Message:    "project_name is required",
			Severity:   SeverityError,
			Field:      "project_name",
			Suggestion: "Provide a project_name in your specification",
		})
	}
	if cps.Description == "" {
		issues = append(issues, Issue{
			Code:       "MISSING_DESCRIPTION",
			Message:    "description is required",
			Severity:   SeverityError,
			Field:      "description",
			Suggestion: "Provide a description for your project",
		})
	}

	if cps.Mode == spec.ModeRAGOnly {
		if !cps.Features.RAG {
			issues = append(issues, Issue{
				Code:       "RAG_MODE_FEATURE_MISMATCH",
				Message:    "features.rag must be true in rag_only mode",
				Severity:   SeverityError,
				Field:      "features.rag",
				Suggestion: "Set features.rag to true",
			})
		}
		if cps.VectorStore == "" {
			issues = append(issues, Issue{
				Code:       "RAG_MODE_MISSING_VECTOR_STORE",
				Message:    "vector_store is required for rag_only mode",
				Severity:   SeverityError,
				Field:      "vector_store",
				Suggestion: "Specify a vector_store (e.g., 'chromadb', 'pinecone')",
			})
		}
		if cps.EmbeddingModel == "" {
			issues = append(issues, Issue{
				Code:       "RAG_MODE_MISSING_EMBEDDING_MODEL",
				Message:    "embedding_model is required for rag_only mode",
				Severity:   SeverityError,
				Field:      "embedding_model",
				Suggestion: "Specify an embedding_model (e.g., 'text-embedding-3-small')",
			})
		}
	}

	return issues
}

func checkFeatureCompatibility(cps spec.CPS) []Issue {
	var issues []Issue

	if cps.Features.Streaming && !cps.Features.Chat {
		issues = append(issues, Issue{
			Code:       "STREAMING_WITHOUT_CHAT",
			Message:    "streaming is enabled but chat is disabled",
			Severity:   SeverityWarning,
			Field:      "features.streaming",
			Suggestion: "Enable features.chat to use streaming, or disable streaming",
		})
	}
	if cps.Features.Embeddings && !cps.Features.RAG {
		issues = append(issues, Issue{
			Code:       "EMBEDDINGS_WITHOUT_RAG",
			Message:    "embeddings is enabled but rag is disabled",
			Severity:   SeverityWarning,
			Field:      "features.embeddings",
			Suggestion: "Embeddings are typically used with RAG. Consider enabling features.rag",
		})
	}
	if cps.LLMProvider.Type == spec.ProviderLocal {
		issues = append(issues, Issue{
			Code:       "LOCAL_PROVIDER_PLACEHOLDER",
			Message:    "the local provider is a placeholder and must be pointed at a running server",
			Severity:   SeverityWarning,
			Field:      "llm_provider.type",
			Suggestion: "Configure LOCAL_LLM_ENDPOINT or use 'openai' or 'azure_openai'",
		})
	}

	return issues
}

func checkConfiguration(cps spec.CPS) []Issue {
	var issues []Issue

	if cps.Auth.Type == spec.AuthNone && cps.Environment.Type == spec.EnvProduction {
		issues = append(issues, Issue{
			Code:       "NO_AUTH_IN_PRODUCTION",
			Message:    "No authentication configured for production environment",
			Severity:   SeverityWarning,
			Field:      "auth.type",
			Suggestion: "Consider enabling api_key or jwt authentication for production",
		})
	}
	if cps.Environment.GenerateCompose && !cps.Environment.GenerateDockerfile {
		issues = append(issues, Issue{
			Code:       "COMPOSE_WITHOUT_DOCKERFILE",
			Message:    "Docker Compose requested without Dockerfile",
			Severity:   SeverityWarning,
			Field:      "environment.generate_compose",
			Suggestion: "Enable environment.generate_dockerfile when using docker-compose",
		})
	}

	return issues
}

func checkBestPractices(cps spec.CPS) []Issue {
	var issues []Issue

	if !cps.GenerationOptions.GenerateTests {
		issues = append(issues, Issue{
			Code:       "TESTS_DISABLED",
			Message:    "Test generation is disabled",
			Severity:   SeverityInfo,
			Field:      "generation_options.generate_tests",
			Suggestion: "Consider enabling tests for better code quality",
		})
	}
	if !cps.GenerationOptions.OpenAPIFirst {
		issues = append(issues, Issue{
			Code:       "OPENAPI_NOT_ENABLED",
			Message:    "OpenAPI-first generation is not enabled",
			Severity:   SeverityInfo,
			Field:      "generation_options.openapi_first",
			Suggestion: "Enable openapi_first for contract-first API development",
		})
	}

	return issues
}
