package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

const hfInferenceBase = "https://api-inference.huggingface.co/models/"

// HuggingFaceProvider calls the HF Inference API. Summarization models return
// {"summary_text": ...}; instruct models are prompted through text generation
// as a fallback.
type HuggingFaceProvider struct {
	client *resty.Client
	model  string
}

func NewHuggingFaceProvider(apiKey, model string) (*HuggingFaceProvider, error) {
	if apiKey == "" {
		return nil, errors.New("huggingface api key is not configured")
	}
	if model == "" {
		model = "facebook/bart-large-cnn"
	}
	client := resty.New().
		SetBaseURL(hfInferenceBase).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	return &HuggingFaceProvider{client: client, model: model}, nil
}

func (p *HuggingFaceProvider) Name() string { return "huggingface" }

func (p *HuggingFaceProvider) Summarize(ctx context.Context, text string) (string, error) {
	if out, err := p.summarization(ctx, text); err == nil && out != "" {
		return out, nil
	}
	return p.textGeneration(ctx, text)
}

func (p *HuggingFaceProvider) summarization(ctx context.Context, text string) (string, error) {
	var result []struct {
		SummaryText string `json:"summary_text"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"inputs": text}).
		SetResult(&result).
		Post(p.model)
	if err != nil {
		return "", fmt.Errorf("hf summarization: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("hf summarization: status %d", resp.StatusCode())
	}
	if len(result) == 0 {
		return "", errors.New("hf summarization: empty result")
	}
	return strings.TrimSpace(result[0].SummaryText), nil
}

func (p *HuggingFaceProvider) textGeneration(ctx context.Context, text string) (string, error) {
	prompt := "Summarize the following conversation into concise bullets with key points, " +
		"decisions, and action items.\n\nConversation:\n" + text
	var result []struct {
		GeneratedText string `json:"generated_text"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"inputs": prompt,
			"parameters": map[string]any{
				"max_new_tokens": 512,
				"temperature":    0.2,
				"do_sample":      false,
			},
		}).
		SetResult(&result).
		Post(p.model)
	if err != nil {
		return "", fmt.Errorf("hf text generation: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("hf text generation: status %d", resp.StatusCode())
	}
	if len(result) == 0 {
		return "", errors.New("hf text generation: empty result")
	}
	return strings.TrimSpace(result[0].GeneratedText), nil
}
