package llm

import (
	"fmt"
	"log/slog"
	"strings"
)

// Backend names returned by BackendForModel.
const (
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendOllama    = "ollama"
)

// BackendForModel maps a configured model name to the backend that
// serves it. Anything that is not an OpenAI or Anthropic model is routed
// to the local Ollama host, which acts as the catch-all for self-hosted
// and otherwise-unsupported models.
func BackendForModel(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "gpt"), strings.HasPrefix(m, "o1"), strings.HasPrefix(m, "chatgpt"):
		return BackendOpenAI
	case strings.HasPrefix(m, "claude"):
		return BackendAnthropic
	default:
		return BackendOllama
	}
}

// NewClientForModel constructs the backend client serving the given
// model name.
func NewClientForModel(model string) (LLMClient, error) {
	backend := BackendForModel(model)
	switch backend {
	case BackendOpenAI:
		return NewOpenAIClient(model)
	case BackendAnthropic:
		return NewAnthropicClient(model)
	case BackendOllama:
		slog.Debug("Routing model to Ollama", "model", model)
		return NewOllamaClient(model)
	default:
		return nil, fmt.Errorf("no backend for model %q", model)
	}
}
