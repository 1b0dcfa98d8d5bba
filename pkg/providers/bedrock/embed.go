package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// Embedder produces text embeddings through a Bedrock embedding model.
type Embedder struct {
	Model string

	client InvokeAPI
}

// NewEmbedder resolves AWS configuration and returns an Embedder for the
// given model id. Empty model selects DefaultEmbeddingModel.
func NewEmbedder(ctx context.Context, region, model string) (*Embedder, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}

	return NewEmbedderFromClient(bedrockruntime.NewFromConfig(cfg), model), nil
}

// NewEmbedderFromClient builds an Embedder around an existing client.
func NewEmbedderFromClient(client InvokeAPI, model string) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}

	return &Embedder{Model: model, client: client}
}

type embedRequest struct {
	InputText string `json:"inputText"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed returns the embedding vector for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(embedRequest{InputText: text})
	if err != nil {
		return nil, fmt.Errorf("bedrock: marshal request: %w", err)
	}

	respBody, err := invoke(ctx, e.client, e.Model, body)
	if err != nil {
		return nil, err
	}

	var resp embedResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("bedrock: decode response: %w", err)
	}

	return resp.Embedding, nil
}
