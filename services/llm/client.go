// Package llm provides the LLM backends board members deliberate with.
// Each backend implements LLMClient; the factory in factory.go selects a
// backend from a configured model name.
package llm

import "context"

// GenerationParams tunes a single generation call. Nil fields fall back
// to backend defaults. SystemPrompt carries the member persona.
type GenerationParams struct {
	Temperature  *float32 `json:"temperature"`
	TopK         *int     `json:"top_k"`
	TopP         *float32 `json:"top_p"`
	MaxTokens    *int     `json:"max_tokens"`
	Stop         []string `json:"stop"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
}

// LLMClient defines the standard interface for any LLM backend.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}
