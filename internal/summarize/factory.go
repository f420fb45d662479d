package summarize

import (
	"strings"

	"github.com/openhuddle/huddle/internal/config"
)

// FromConfig selects a provider by name. A nil provider with nil error means
// summarization is simply not configured.
func FromConfig(cfg config.LLMConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case "huggingface", "hf", "hugging_face":
		return NewHuggingFaceProvider(cfg.HFAPIKey, cfg.HFModel)
	default:
		return nil, nil
	}
}
