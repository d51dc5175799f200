package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelabs/fastapi-forge/internal/spec"
)

func validCPS() spec.CPS {
	return spec.CPS{
		ProjectName: "Support Bot",
		Description: "Customer support assistant",
		LLMProvider: spec.LLMProvider{Type: spec.ProviderLocal},
		Mode:        spec.ModeGeneral,
		GenerationOptions: spec.GenerationOptions{
			GenerateTests: true,
			OpenAPIFirst:  true,
		},
	}
}

func codes(issues []Issue) []string {
	var out []string
	for _, i := range issues {
		out = append(out, i.Code)
	}
	return out
}

func TestSimulate(t *testing.T) {
	t.Run("missing identity fields are errors", func(t *testing.T) {
		res := Simulate(spec.CPS{LLMProvider: spec.LLMProvider{Type: spec.ProviderLocal}}, nil)
		assert.False(t, res.Valid)
		assert.Contains(t, codes(res.Errors), "MISSING_PROJECT_NAME")
		assert.Contains(t, codes(res.Errors), "MISSING_DESCRIPTION")
		assert.Equal(t, len(res.Errors), res.Summary.ErrorCount)
	})

	t.Run("openai provider requires its api key", func(t *testing.T) {
		cps := validCPS()
		cps.LLMProvider.Type = spec.ProviderOpenAI
		res := Simulate(cps, nil)
		assert.Contains(t, codes(res.Errors), "REQUIRED_ENV_VAR")
	})

	t.Run("undocumented env var flagged against .env.example", func(t *testing.T) {
		cps := validCPS()
		cps.LLMProvider.Type = spec.ProviderOpenAI
		files := map[string]string{
			"Support Bot/.env.example": "# nothing here\n",
		}
		res := Simulate(cps, files)
		assert.Contains(t, codes(res.Errors), "MISSING_ENV_VAR_DOC")

		files["Support Bot/.env.example"] = "OPENAI_API_KEY=x\n"
		res = Simulate(cps, files)
		assert.NotContains(t, codes(res.Errors), "MISSING_ENV_VAR_DOC")
	})

	t.Run("rag_only mode demands rag configuration", func(t *testing.T) {
		cps := validCPS()
		cps.Mode = spec.ModeRAGOnly
		res := Simulate(cps, nil)
		got := codes(res.Errors)
		assert.Contains(t, got, "RAG_MODE_FEATURE_MISMATCH")
		assert.Contains(t, got, "RAG_MODE_MISSING_VECTOR_STORE")
		assert.Contains(t, got, "RAG_MODE_MISSING_EMBEDDING_MODEL")
	})

	t.Run("pinecone store requires its key", func(t *testing.T) {
		cps := validCPS()
		cps.Features.RAG = true
		cps.VectorStore = "pinecone"
		res := Simulate(cps, nil)
		assert.Contains(t, codes(res.Errors), "REQUIRED_ENV_VAR")
	})

	t.Run("incompatible feature combinations warn", func(t *testing.T) {
		cps := validCPS()
		cps.Features = spec.Features{Streaming: true, Embeddings: true}
		res := Simulate(cps, nil)
		got := codes(res.Warnings)
		assert.Contains(t, got, "STREAMING_WITHOUT_CHAT")
		assert.Contains(t, got, "EMBEDDINGS_WITHOUT_RAG")
	})

	t.Run("production without auth warns", func(t *testing.T) {
		cps := validCPS()
		cps.Environment.Type = spec.EnvProduction
		res := Simulate(cps, nil)
		assert.Contains(t, codes(res.Warnings), "NO_AUTH_IN_PRODUCTION")
	})

	t.Run("best practice hints are info only", func(t *testing.T) {
		cps := validCPS()
		cps.GenerationOptions = spec.GenerationOptions{}
		res := Simulate(cps, nil)
		got := codes(res.Info)
		assert.Contains(t, got, "TESTS_DISABLED")
		assert.Contains(t, got, "OPENAPI_NOT_ENABLED")
		assert.True(t, res.Valid)
	})

	t.Run("valid result has empty slices not nil", func(t *testing.T) {
		cps := validCPS()
		res := Simulate(cps, nil)
		require.NotNil(t, res.Errors)
		require.NotNil(t, res.Info)
		assert.True(t, res.Valid)
	})
}
