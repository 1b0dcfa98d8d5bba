package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/quarryhq/stratum/pkg/chats/chat"
	"github.com/quarryhq/stratum/pkg/modeladapter"
	"github.com/quarryhq/stratum/pkg/modeladapter/usage"
	"github.com/quarryhq/stratum/pkg/providers/anthropic"
	"github.com/quarryhq/stratum/pkg/tools/toolbox"
	"github.com/rs/zerolog"
)

const defaultMaxTokens = 1024

var _ modeladapter.Completer = (*Runtime)(nil)

// Runtime is a Completer over the Bedrock runtime for Anthropic-family
// models. The request and response bodies are the Anthropic Messages
// schema; tool declarations and stop reasons work exactly as on the direct
// API.
type Runtime struct {
	Name        string  // Bedrock model id.
	MaxTokens   int     // Maximum tokens in the response.
	Temperature float64 // Sampling temperature; zero means provider default.
	Usage       usage.Tracker
	Log         zerolog.Logger

	client InvokeAPI
}

// NewRuntime resolves AWS configuration for the region and returns a
// Runtime for the given model id. Empty model selects DefaultModel; empty
// region defers to the SDK's resolution chain.
func NewRuntime(ctx context.Context, region, model string) (*Runtime, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}

	return NewRuntimeFromClient(bedrockruntime.NewFromConfig(cfg), model), nil
}

// NewRuntimeFromClient builds a Runtime around an existing client.
func NewRuntimeFromClient(client InvokeAPI, model string) *Runtime {
	if model == "" {
		model = DefaultModel
	}

	return &Runtime{
		Name:      model,
		MaxTokens: defaultMaxTokens,
		Log:       zerolog.Nop(),
		client:    client,
	}
}

// Complete sends the conversation and tool declarations through InvokeModel
// and returns the assistant's reply with its stop reason. No retries are
// performed; a transport or API failure surfaces to the caller as-is.
func (r *Runtime) Complete(ctx context.Context, c *chat.Chat, tools []toolbox.Tool) (modeladapter.Reply, error) {
	req := anthropic.BuildRequest(c, tools, r.MaxTokens, r.Temperature)
	req.AnthropicVersion = anthropicVersion

	body, err := json.Marshal(req)
	if err != nil {
		return modeladapter.Reply{}, fmt.Errorf("bedrock: marshal request: %w", err)
	}

	respBody, err := invoke(ctx, r.client, r.Name, body)
	if err != nil {
		return modeladapter.Reply{}, err
	}

	var resp anthropic.Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return modeladapter.Reply{}, fmt.Errorf("bedrock: decode response: %w", err)
	}

	r.Usage.Add(resp.Usage.TokenCount())

	reply := anthropic.ParseResponse(resp)
	r.Log.Debug().
		Str("model", r.Name).
		Str("stop_reason", string(reply.StopReason)).
		Int("input_tokens", resp.Usage.InputTokens).
		Int("output_tokens", resp.Usage.OutputTokens).
		Msg("bedrock completion")

	return reply, nil
}
