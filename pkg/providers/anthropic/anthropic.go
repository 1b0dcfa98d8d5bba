// Package anthropic implements the Anthropic Messages API: the wire codec
// shared with the Bedrock runtime adapter, and a Completer for the direct
// api.anthropic.com endpoint.
package anthropic

import (
	"context"
	"fmt"

	"github.com/quarryhq/stratum/pkg/chats/chat"
	"github.com/quarryhq/stratum/pkg/modeladapter"
	"github.com/quarryhq/stratum/pkg/tools/toolbox"
)

const (
	messagesPath = "/v1/messages"
	apiVersion   = "2023-06-01"

	defaultMaxTokens = 4096
)

var _ modeladapter.Completer = (*Adapter)(nil)

// Adapter is a Completer for the Anthropic Messages API.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter for the given endpoint, key, and model id.
// The baseURL should be "https://api.anthropic.com" (no trailing slash).
func New(baseURL, apiKey, model string) *Adapter {
	a := &Adapter{}
	a.BaseURL = baseURL
	a.Auth = modeladapter.Auth{
		Key:    apiKey,
		Header: "x-api-key",
	}
	a.Name = model
	a.MaxTokens = defaultMaxTokens
	a.Headers = map[string]string{
		"anthropic-version": apiVersion,
	}

	return a
}

// Complete sends the conversation and tool declarations to the Messages API
// and returns the assistant's reply with its stop reason.
func (a *Adapter) Complete(ctx context.Context, c *chat.Chat, tools []toolbox.Tool) (modeladapter.Reply, error) {
	req := BuildRequest(c, tools, a.MaxTokens, a.Temperature)
	req.Model = a.Name

	var resp Response
	if err := a.PostJSON(ctx, messagesPath, req, &resp); err != nil {
		return modeladapter.Reply{}, fmt.Errorf("anthropic: %w", err)
	}

	a.Usage.Add(resp.Usage.TokenCount())

	return ParseResponse(resp), nil
}
