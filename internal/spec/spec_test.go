package spec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_LegacyProviderString(t *testing.T) {
	raw := []byte(`{
		"project_name": "demo",
		"description": "demo project",
		"llm_provider": "openai",
		"features": {"chat": true},
		"endpoints": [],
		"auth": {"type": "none"}
	}`)

	c, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, c.LLMProvider.Type)
	assert.Empty(t, c.LLMProvider.APIBase)
}

func TestDecode_Defaults(t *testing.T) {
	t.Run("omitted sections get documented defaults", func(t *testing.T) {
		c, err := Decode([]byte(`{"project_name":"demo","description":"d","features":{},"endpoints":[],"auth":{"type":"none"}}`))
		require.NoError(t, err)

		assert.Equal(t, ModeGeneral, c.Mode)
		assert.Equal(t, ProviderOpenAI, c.LLMProvider.Type)
		assert.Equal(t, EnvLocal, c.Environment.Type)
		assert.False(t, c.Environment.GenerateDockerfile)
		assert.False(t, c.GenerationOptions.OpenAPIFirst)
		assert.True(t, c.GenerationOptions.GenerateTests)
		assert.True(t, c.GenerationOptions.FailureFirst)
		assert.Equal(t, "You are a helpful assistant.", c.Prompts.ChatSystemPrompt)
	})

	t.Run("partial generation_options keeps untouched defaults", func(t *testing.T) {
		c, err := Decode([]byte(`{"project_name":"demo","description":"d","features":{},"endpoints":[],"auth":{"type":"none"},"generation_options":{"generate_tests":false}}`))
		require.NoError(t, err)

		assert.False(t, c.GenerationOptions.GenerateTests)
		assert.True(t, c.GenerationOptions.FailureFirst)
	})
}

func TestValidate_AzureRequirements(t *testing.T) {
	c := CPS{
		ProjectName: "demo",
		LLMProvider: LLMProvider{Type: ProviderAzureOpenAI},
	}
	errs := c.Validate()
	assert.Contains(t, errs, "api_base is required for Azure OpenAI provider")
	assert.Contains(t, errs, "deployment_name is required for Azure OpenAI provider")

	c.LLMProvider.APIBase = "https://example.openai.azure.com/"
	c.LLMProvider.DeploymentName = "gpt4"
	assert.Empty(t, c.Validate())
}

func TestValidate_ComposeRequiresDockerfile(t *testing.T) {
	c := CPS{
		LLMProvider: LLMProvider{Type: ProviderOpenAI},
		Environment: Environment{GenerateCompose: true},
	}
	errs := c.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "generate_dockerfile must be true if generate_compose is true", errs[0])
}

func TestValidate_RAGOnlyMode(t *testing.T) {
	c := CPS{
		LLMProvider: LLMProvider{Type: ProviderOpenAI},
		Mode:        ModeRAGOnly,
		Features:    Features{Chat: true},
	}
	errs := c.Validate()
	assert.Contains(t, errs, "features.rag MUST be true in RAG-only mode")
	assert.Contains(t, errs, "features.embeddings MUST be true in RAG-only mode")
	assert.Contains(t, errs, "chat-only endpoints are not allowed in RAG-only specialization")
	assert.Contains(t, errs, "vector store configuration is required for RAG")
	assert.Contains(t, errs, "missing embedding model")

	c.Features = Features{RAG: true, Embeddings: true}
	c.VectorStore = "chromadb"
	c.EmbeddingModel = "text-embedding-3-small"
	assert.Empty(t, c.Validate())
}

func TestValidate_UnsupportedProvider(t *testing.T) {
	c := CPS{LLMProvider: LLMProvider{Type: "anthropic"}}
	errs := c.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "not supported")
}

func TestCPS_RoundTrip(t *testing.T) {
	c := CPS{
		ProjectName: "support_bot",
		Description: "support assistant",
		LLMProvider: LLMProvider{Type: ProviderAzureOpenAI, APIBase: "https://x", DeploymentName: "d"},
		Mode:        ModeGeneral,
		Features:    Features{Chat: true, Streaming: true},
		Endpoints:   []Endpoint{{Path: "/ask", Method: "POST", UsesLLM: true}},
		Auth:        Auth{Type: AuthAPIKey},
		Modules:     []string{"users", "billing"},
		Environment: Environment{Type: EnvDocker, GenerateDockerfile: true, GenerateCompose: true},
		Prompts:     DefaultPrompts(),
		GenerationOptions: GenerationOptions{
			OpenAPIFirst: true, GenerateTests: true, FailureFirst: true,
		},
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Users", TitleCase("users"))
	assert.Equal(t, "UserAccounts", TitleCase("userAccounts"))
	assert.Equal(t, "", TitleCase(""))
	assert.Equal(t, "X", TitleCase("x"))
}

func TestServiceName(t *testing.T) {
	c := CPS{ProjectName: "My Support Bot"}
	assert.Equal(t, "my_support_bot", c.ServiceName())
}
