// Package analysis provides pre-generation token and cost estimation. All
// numbers are informational projections, never enforcement inputs, and every
// response carries the disclaimer saying so.
package analysis

import (
	"encoding/json"
	"math"
	"time"

	"github.com/forgelabs/fastapi-forge/internal/spec"
)

// Disclaimer is attached to every estimate.
const Disclaimer = "DISCLAIMER: These estimates are informational only and NOT guaranteed. " +
	"Actual costs depend on usage patterns, prompt lengths, response lengths, " +
	"and current API pricing which may change. Do not use these estimates for " +
	"billing or financial planning without verification from your LLM provider."

// PricingDisclaimer accompanies the raw pricing table.
const PricingDisclaimer = "These prices are informational only and may be outdated. " +
	"Check your LLM provider's pricing page for current rates."

// Pricing is per-1K-token USD pricing for one model.
type Pricing struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// TokenPricing is the static pricing table. Prices may be outdated; they are
// served verbatim with a disclaimer.
var TokenPricing = map[string]Pricing{
	"gpt-4o":                 {Input: 0.005, Output: 0.015},
	"gpt-4o-mini":            {Input: 0.00015, Output: 0.0006},
	"gpt-4-turbo":            {Input: 0.01, Output: 0.03},
	"gpt-3.5-turbo":          {Input: 0.0005, Output: 0.0015},
	"text-embedding-3-small": {Input: 0.00002},
	"text-embedding-3-large": {Input: 0.00013},
	"text-embedding-ada-002": {Input: 0.0001},
}

// tokenEstimates are the assumed per-operation token footprints.
var tokenEstimates = map[string]struct{ input, output int }{
	"chat":      {input: 500, output: 300},
	"rag":       {input: 1500, output: 500},
	"embedding": {input: 200},
}

const (
	requestsPerDayLow  = 100
	requestsPerDayHigh = 10000
	daysPerMonth       = 30
	embeddingsPerQuery = 10
)

// CostEstimate is one projection for a CPS.
type CostEstimate struct {
	TokensPerChatRequest int
	TokensPerRAGQuery    int
	TokensPerEmbedding   int

	CostPerChatRequestUSD float64
	CostPerRAGQueryUSD    float64
	CostPerEmbeddingUSD   float64

	MonthlyLowUSD  float64
	MonthlyHighUSD float64

	Model          string
	EmbeddingModel string
	PricingDate    string
}

// MarshalJSON emits the nested wire shape with per-request costs rounded to
// six decimals and monthly projections to two.
func (e CostEstimate) MarshalJSON() ([]byte, error) {
	round := func(v float64, places int) float64 {
		f := math.Pow10(places)
		return math.Round(v*f) / f
	}
	return json.Marshal(map[string]any{
		"tokens": map[string]any{
			"per_chat_request": e.TokensPerChatRequest,
			"per_rag_query":    e.TokensPerRAGQuery,
			"per_embedding":    e.TokensPerEmbedding,
		},
		"costs_usd": map[string]any{
			"per_chat_request": round(e.CostPerChatRequestUSD, 6),
			"per_rag_query":    round(e.CostPerRAGQueryUSD, 6),
			"per_embedding":    round(e.CostPerEmbeddingUSD, 6),
		},
		"monthly_projection_usd": map[string]any{
			"low":  round(e.MonthlyLowUSD, 2),
			"high": round(e.MonthlyHighUSD, 2),
			"assumptions": map[string]any{
				"requests_per_day_low":  requestsPerDayLow,
				"requests_per_day_high": requestsPerDayHigh,
			},
		},
		"models": map[string]any{
			"llm":       e.Model,
			"embedding": e.EmbeddingModel,
		},
		"pricing_date": e.PricingDate,
		"disclaimer":   Disclaimer,
	})
}

// EstimateCosts projects token usage and USD costs for a CPS. Unknown models
// fall back to gpt-4o / text-embedding-3-small pricing.
func EstimateCosts(cps spec.CPS) CostEstimate {
	model := cps.Model
	if model == "" {
		model = "gpt-4o"
	}
	embeddingModel := cps.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = "text-embedding-3-small"
	}

	modelPricing, ok := TokenPricing[model]
	if !ok {
		modelPricing = TokenPricing["gpt-4o"]
	}
	embeddingPricing, ok := TokenPricing[embeddingModel]
	if !ok {
		embeddingPricing = TokenPricing["text-embedding-3-small"]
	}

	e := CostEstimate{
		Model:          model,
		EmbeddingModel: embeddingModel,
		PricingDate:    time.Now().Format("2006-01-02"),
	}

	if cps.Features.Chat {
		est := tokenEstimates["chat"]
		e.TokensPerChatRequest = est.input + est.output
		e.CostPerChatRequestUSD = float64(est.input)/1000*modelPricing.Input +
			float64(est.output)/1000*modelPricing.Output
	}
	if cps.Features.RAG {
		est := tokenEstimates["rag"]
		e.TokensPerRAGQuery = est.input + est.output
		e.CostPerRAGQueryUSD = float64(est.input)/1000*modelPricing.Input +
			float64(est.output)/1000*modelPricing.Output
	}
	if cps.Features.Embeddings {
		est := tokenEstimates["embedding"]
		e.TokensPerEmbedding = est.input
		e.CostPerEmbeddingUSD = float64(est.input) / 1000 * embeddingPricing.Input
	}

	daily := 0.0
	if cps.Features.Chat {
		daily += e.CostPerChatRequestUSD
	}
	if cps.Features.RAG {
		daily += e.CostPerRAGQueryUSD
	}
	if cps.Features.Embeddings {
		daily += e.CostPerEmbeddingUSD * embeddingsPerQuery
	}
	e.MonthlyLowUSD = daily * requestsPerDayLow * daysPerMonth
	e.MonthlyHighUSD = daily * requestsPerDayHigh * daysPerMonth

	return e
}

// PricingInfo returns the raw pricing table for the providers endpoint.
func PricingInfo() map[string]any {
	return map[string]any{
		"pricing":      TokenPricing,
		"disclaimer":   PricingDisclaimer,
		"last_updated": "2024-01",
	}
}
