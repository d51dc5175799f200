// Package spec defines the Canonical Project Specification (CPS), the single
// validated configuration value that drives every downstream component. A CPS
// is built once per request from caller-supplied JSON, normalized during
// decoding, and passed by value from then on.
package spec

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProviderType identifies an LLM provider variant.
type ProviderType string

const (
	ProviderOpenAI      ProviderType = "openai"
	ProviderAzureOpenAI ProviderType = "azure_openai"
	ProviderLocal       ProviderType = "local"
)

// SupportedProviders lists the provider types a CPS may declare.
var SupportedProviders = []ProviderType{ProviderOpenAI, ProviderAzureOpenAI, ProviderLocal}

// LLMProvider configures the LLM backend of a generated project.
type LLMProvider struct {
	Type           ProviderType `json:"type"`
	APIBase        string       `json:"api_base,omitempty"`
	APIVersion     string       `json:"api_version,omitempty"`
	DeploymentName string       `json:"deployment_name,omitempty"`
}

// UnmarshalJSON accepts both the structured form and the legacy bare-string
// form ("openai"). The legacy form is rewritten into the structured variant
// here, at the decode boundary; nothing past this point ever sees it.
func (p *LLMProvider) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = LLMProvider{Type: ProviderType(s)}
		return nil
	}
	type alias LLMProvider
	a := alias{Type: ProviderOpenAI}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = LLMProvider(a)
	return nil
}

// Mode selects the generation profile.
type Mode string

const (
	ModeGeneral Mode = "general"
	ModeRAGOnly Mode = "rag_only"
)

// Features are the flags that determine what code is generated.
type Features struct {
	Chat       bool `json:"chat"`
	RAG        bool `json:"rag"`
	Streaming  bool `json:"streaming"`
	Embeddings bool `json:"embeddings"`
}

// Endpoint is one API endpoint declared in the CPS.
type Endpoint struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	UsesLLM     bool   `json:"uses_llm"`
	Description string `json:"description,omitempty"`
}

// AuthType identifies the authentication scheme of a generated project.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthAPIKey AuthType = "api_key"
	AuthJWT    AuthType = "jwt"
)

// Auth configures authentication for a generated project.
type Auth struct {
	Type AuthType `json:"type"`
}

// EnvironmentType identifies the deployment profile.
type EnvironmentType string

const (
	EnvLocal      EnvironmentType = "local"
	EnvDocker     EnvironmentType = "docker"
	EnvProduction EnvironmentType = "production"
)

// Environment is the deployment profile of a generated project.
type Environment struct {
	Type               EnvironmentType `json:"type"`
	GenerateDockerfile bool            `json:"generate_dockerfile"`
	GenerateCompose    bool            `json:"generate_compose"`
}

// PromptConfig holds the editable system prompts embedded in generated code.
type PromptConfig struct {
	ChatSystemPrompt string            `json:"chat_system_prompt"`
	RAGSystemPrompt  string            `json:"rag_system_prompt"`
	CustomPrompts    map[string]string `json:"custom_prompts,omitempty"`
}

// DefaultPrompts returns the prompt defaults applied when the CPS omits them.
func DefaultPrompts() PromptConfig {
	return PromptConfig{
		ChatSystemPrompt: "You are a helpful assistant.",
		RAGSystemPrompt:  "You are a helpful assistant. Use the provided context to answer the user query.",
	}
}

// GenerationOptions are the explicit toggles for optional generation stages.
type GenerationOptions struct {
	OpenAPIFirst  bool `json:"openapi_first"`
	GenerateTests bool `json:"generate_tests"`
	FailureFirst  bool `json:"failure_first"`
}

// CPS is the Canonical Project Specification. All generation output is a
// deterministic function of this value; it is never mutated after Decode.
type CPS struct {
	ProjectName string      `json:"project_name"`
	Description string      `json:"description"`
	LLMProvider LLMProvider `json:"llm_provider"`

	Model          string `json:"model,omitempty"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
	VectorStore    string `json:"vector_store,omitempty"`

	Mode Mode `json:"mode"`

	Features  Features   `json:"features"`
	Endpoints []Endpoint `json:"endpoints"`
	Auth      Auth       `json:"auth"`
	Modules   []string   `json:"modules,omitempty"`

	Environment       Environment       `json:"environment"`
	Prompts           PromptConfig      `json:"prompts"`
	GenerationOptions GenerationOptions `json:"generation_options"`
}

// UnmarshalJSON decodes a CPS with defaults pre-applied, so fields the caller
// omits (entirely or partially) land on the documented defaults rather than
// Go zero values. Conservative defaults mirror the extraction contract:
// openai provider, general mode, local environment, tests and failure-first
// enabled, openapi-first off.
func (c *CPS) UnmarshalJSON(data []byte) error {
	type alias CPS
	a := alias{
		LLMProvider:       LLMProvider{Type: ProviderOpenAI},
		Mode:              ModeGeneral,
		Auth:              Auth{Type: AuthNone},
		Environment:       Environment{Type: EnvLocal},
		Prompts:           DefaultPrompts(),
		GenerationOptions: GenerationOptions{GenerateTests: true, FailureFirst: true},
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = CPS(a)
	return nil
}

// Decode parses and normalizes a CPS from raw JSON. The returned value has
// the legacy provider form rewritten and all defaults applied, but has NOT
// been validated; callers run Validate before handing it to the generator.
func Decode(data []byte) (CPS, error) {
	var c CPS
	if err := json.Unmarshal(data, &c); err != nil {
		return CPS{}, fmt.Errorf("decode cps: %w", err)
	}
	return c, nil
}

// Validate enforces the cross-field invariants that must hold before
// generation starts. It returns one message per violation; an empty slice
// means the CPS is valid.
func (c CPS) Validate() []string {
	var errs []string

	supported := false
	for _, p := range SupportedProviders {
		if c.LLMProvider.Type == p {
			supported = true
			break
		}
	}
	if !supported {
		errs = append(errs, fmt.Sprintf("llm_provider type %q is not supported (supported: openai, azure_openai, local)", c.LLMProvider.Type))
	}

	if c.LLMProvider.Type == ProviderAzureOpenAI {
		if c.LLMProvider.APIBase == "" {
			errs = append(errs, "api_base is required for Azure OpenAI provider")
		}
		if c.LLMProvider.DeploymentName == "" {
			errs = append(errs, "deployment_name is required for Azure OpenAI provider")
		}
	}

	if c.Environment.GenerateCompose && !c.Environment.GenerateDockerfile {
		errs = append(errs, "generate_dockerfile must be true if generate_compose is true")
	}

	if c.Mode == ModeRAGOnly {
		if !c.Features.RAG {
			errs = append(errs, "features.rag MUST be true in RAG-only mode")
		}
		if !c.Features.Embeddings {
			errs = append(errs, "features.embeddings MUST be true in RAG-only mode")
		}
		if c.Features.Chat {
			errs = append(errs, "chat-only endpoints are not allowed in RAG-only specialization")
		}
		if c.VectorStore == "" {
			errs = append(errs, "vector store configuration is required for RAG")
		}
		if c.EmbeddingModel == "" {
			errs = append(errs, "missing embedding model")
		}
	}

	return errs
}

// ServiceName returns the project name in a form usable as a compose service
// or container name.
func (c CPS) ServiceName() string {
	return strings.ReplaceAll(strings.ToLower(c.ProjectName), " ", "_")
}

// TitleCase upper-cases the first letter of s and leaves the rest untouched.
// It is the casing rule for deriving schema and type names from module names.
func TitleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
