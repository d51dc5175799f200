// Package extraction turns natural-language project descriptions into CPS
// values, and refines generated file maps from user feedback. Both flows run
// through an LLM in strict JSON mode; the rest of the system never depends on
// them being available.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	genai "google.golang.org/genai"

	"github.com/forgelabs/fastapi-forge/internal/prompts"
	"github.com/forgelabs/fastapi-forge/internal/spec"
)

// ErrUnavailable reports that no LLM backend is configured.
var ErrUnavailable = errors.New("extraction: no LLM backend configured")

// ErrInvalidJSON reports a model response that was not parseable JSON.
var ErrInvalidJSON = errors.New("extraction: invalid JSON from model")

// Engine is the LLM-backed capability surface used by the gateway.
type Engine interface {
	ExtractCPS(ctx context.Context, text string) (spec.CPS, error)
	RefineFiles(ctx context.Context, cps spec.CPS, files map[string]string, feedback string) (map[string]string, error)
}

// Disabled is the Engine used when no API key is configured. Every call
// fails with ErrUnavailable.
type Disabled struct{}

func (Disabled) ExtractCPS(ctx context.Context, text string) (spec.CPS, error) {
	return spec.CPS{}, ErrUnavailable
}

func (Disabled) RefineFiles(ctx context.Context, cps spec.CPS, files map[string]string, feedback string) (map[string]string, error) {
	return nil, ErrUnavailable
}

// GeminiEngine implements Engine on the official genai client.
type GeminiEngine struct {
	cli     *genai.Client
	model   string
	prompts *prompts.Store
}

// NewGeminiEngine builds an engine for the given model. The client reads
// GEMINI_API_KEY from the environment.
func NewGeminiEngine(ctx context.Context, model string, store *prompts.Store) (*GeminiEngine, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("extraction: new client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiEngine{cli: cli, model: model, prompts: store}, nil
}

// ExtractCPS runs the extraction prompt over free text and decodes the
// model's JSON into a normalized CPS.
func (g *GeminiEngine) ExtractCPS(ctx context.Context, text string) (spec.CPS, error) {
	template, err := g.prompts.Get("extraction")
	if err != nil {
		return spec.CPS{}, err
	}
	prompt := replaceAll(template, map[string]string{"{text}": text})

	raw, err := g.generateJSON(ctx, prompt)
	if err != nil {
		return spec.CPS{}, err
	}
	cps, err := spec.Decode(raw)
	if err != nil {
		return spec.CPS{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return cps, nil
}

// RefineFiles asks the model for a complete replacement file map given user
// feedback. Output must be reviewed before use; the caller surfaces it as a
// proposal, never as applied truth.
func (g *GeminiEngine) RefineFiles(ctx context.Context, cps spec.CPS, files map[string]string, feedback string) (map[string]string, error) {
	template, err := g.prompts.Get("refine")
	if err != nil {
		return nil, err
	}
	cpsJSON, err := json.MarshalIndent(cps, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("extraction: marshal cps: %w", err)
	}
	filesJSON, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("extraction: marshal files: %w", err)
	}
	prompt := replaceAll(template, map[string]string{
		"{cps}":      string(cpsJSON),
		"{files}":    string(filesJSON),
		"{feedback}": feedback,
	})

	raw, err := g.generateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var refined map[string]string
	if err := json.Unmarshal(raw, &refined); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return refined, nil
}

// generateJSON requests application/json output with a small retry budget.
func (g *GeminiEngine) generateJSON(ctx context.Context, prompt string) (json.RawMessage, error) {
	log.Printf("extraction request: %d bytes", len(prompt))

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		resp, err := g.cli.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
			&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
		)
		if err != nil {
			lastErr = err
		} else if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = ErrInvalidJSON
		} else {
			return json.RawMessage(resp.Candidates[0].Content.Parts[0].Text), nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
		}
	}
	return nil, lastErr
}

func replaceAll(s string, pairs map[string]string) string {
	for k, v := range pairs {
		s = strings.ReplaceAll(s, k, v)
	}
	return s
}
