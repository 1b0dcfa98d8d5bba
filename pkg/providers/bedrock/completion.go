package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// TextCompleter generates text through the legacy prompt/completion body
// used by first-generation Claude models on Bedrock.
type TextCompleter struct {
	Model       string
	MaxTokens   int
	Temperature float64
	TopP        float64

	client InvokeAPI
}

// NewTextCompleter resolves AWS configuration and returns a TextCompleter
// for the given model id. Empty model selects DefaultCompletionModel.
func NewTextCompleter(ctx context.Context, region, model string) (*TextCompleter, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}

	return NewTextCompleterFromClient(bedrockruntime.NewFromConfig(cfg), model), nil
}

// NewTextCompleterFromClient builds a TextCompleter around an existing client.
func NewTextCompleterFromClient(client InvokeAPI, model string) *TextCompleter {
	if model == "" {
		model = DefaultCompletionModel
	}

	return &TextCompleter{
		Model:       model,
		MaxTokens:   500,
		Temperature: 1,
		TopP:        0.1,
		client:      client,
	}
}

type completionRequest struct {
	Prompt            string  `json:"prompt"`
	MaxTokensToSample int     `json:"max_tokens_to_sample"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
}

type completionResponse struct {
	Completion string `json:"completion"`
}

// Generate sends the prompt and returns the completion text. The prompt is
// wrapped in the Human/Assistant turn markers the legacy models require.
func (t *TextCompleter) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Prompt:            fmt.Sprintf("\n\nHuman: %s\n\nAssistant:", prompt),
		MaxTokensToSample: t.MaxTokens,
		Temperature:       t.Temperature,
		TopP:              t.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock: marshal request: %w", err)
	}

	respBody, err := invoke(ctx, t.client, t.Model, body)
	if err != nil {
		return "", err
	}

	var resp completionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("bedrock: decode response: %w", err)
	}

	return resp.Completion, nil
}
