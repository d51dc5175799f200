// Package providers maps LLM provider variants to their environment-variable
// requirements and configuration checks. The provider set is closed: a CPS
// must declare one of the supported types, and unsupported types fail
// explicitly rather than being guessed at.
package providers

import (
	"errors"
	"fmt"

	"github.com/forgelabs/fastapi-forge/internal/spec"
)

// ErrNotSupported is returned when a CPS declares an unknown provider type.
var ErrNotSupported = errors.New("provider not supported")

// ValidationResult reports the outcome of validating a provider configuration.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Supported returns the provider types a CPS may declare, in a fixed order.
func Supported() []string {
	out := make([]string, len(spec.SupportedProviders))
	for i, p := range spec.SupportedProviders {
		out[i] = string(p)
	}
	return out
}

// Default is the provider assumed when a CPS declares none.
const Default = string(spec.ProviderOpenAI)

// RequiredEnvVars returns the environment variables a generated project needs
// for the given provider configuration.
func RequiredEnvVars(p spec.LLMProvider) ([]string, error) {
	switch p.Type {
	case spec.ProviderOpenAI:
		return []string{"OPENAI_API_KEY"}, nil
	case spec.ProviderAzureOpenAI:
		return []string{"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_ENDPOINT"}, nil
	case spec.ProviderLocal:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: openai, azure_openai, local)", ErrNotSupported, p.Type)
	}
}

// Validate checks a provider configuration without touching any external
// service. Azure requires its endpoint fields; the local provider is a
// placeholder and always validates with a warning.
func Validate(p spec.LLMProvider) (ValidationResult, error) {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}}

	switch p.Type {
	case spec.ProviderOpenAI:
		// Nothing to check statically; the key is an environment concern.
	case spec.ProviderAzureOpenAI:
		if p.APIBase == "" {
			res.Errors = append(res.Errors, "api_base is required for Azure OpenAI provider")
		}
		if p.DeploymentName == "" {
			res.Errors = append(res.Errors, "deployment_name is required for Azure OpenAI provider")
		}
	case spec.ProviderLocal:
		res.Warnings = append(res.Warnings, "local provider is a placeholder and will raise NotImplementedError at runtime")
	default:
		return ValidationResult{}, fmt.Errorf("%w: %q", ErrNotSupported, p.Type)
	}

	res.Valid = len(res.Errors) == 0
	return res, nil
}
