package anthropic

import (
	"encoding/json"

	"github.com/quarryhq/stratum/pkg/chats/chat"
	"github.com/quarryhq/stratum/pkg/chats/content"
	"github.com/quarryhq/stratum/pkg/chats/message"
	"github.com/quarryhq/stratum/pkg/chats/role"
	"github.com/quarryhq/stratum/pkg/modeladapter"
	"github.com/quarryhq/stratum/pkg/modeladapter/usage"
	"github.com/quarryhq/stratum/pkg/tools/toolbox"
)

// The wire types are exported because the same body is spoken by two
// endpoints: the Anthropic API proper (which takes a "model" field) and
// AWS Bedrock's InvokeModel (which takes "anthropic_version" instead, the
// model id living on the invoke call). BuildRequest fills everything that
// is common; the adapter sets whichever of the two fields its endpoint
// wants.

// Request is the Messages API request body.
type Request struct {
	AnthropicVersion string     `json:"anthropic_version,omitempty"`
	Model            string     `json:"model,omitempty"`
	MaxTokens        int        `json:"max_tokens"`
	System           string     `json:"system,omitempty"`
	Messages         []Msg      `json:"messages"`
	Temperature      *float64   `json:"temperature,omitempty"`
	Tools            []ToolDef  `json:"tools,omitempty"`
}

// Msg is one wire-level message.
type Msg struct {
	Role    string  `json:"role"`
	Content []Block `json:"content"`
}

// Block is a wire-level content block, a union over text, tool_use, and
// tool_result shapes discriminated by Type.
type Block struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// ToolDef is a wire-level tool declaration.
type ToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// Response is the Messages API response body.
type Response struct {
	Content    []Block  `json:"content"`
	StopReason string   `json:"stop_reason"`
	Usage      Usage    `json:"usage"`
}

// Usage carries the response token counts.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// TokenCount converts the wire usage into a tracker entry.
func (u Usage) TokenCount() usage.TokenCount {
	return usage.TokenCount{InputTokens: u.InputTokens, OutputTokens: u.OutputTokens}
}

// BuildRequest converts a conversation and tool declarations into a request
// body. The first system message becomes the "system" field; tool-role
// parts are sent as user-role tool_result blocks; consecutive blocks with
// the same wire role are merged into one message.
func BuildRequest(c *chat.Chat, tools []toolbox.Tool, maxTokens int, temperature float64) Request {
	req := Request{
		MaxTokens: maxTokens,
		System:    c.SystemPrompt(),
	}

	if temperature != 0 {
		t := temperature
		req.Temperature = &t
	}

	if len(tools) > 0 {
		req.Tools = make([]ToolDef, len(tools))
		for i, t := range tools {
			schema := t.InputSchema
			if schema == nil {
				schema = json.RawMessage(`{"type":"object"}`)
			}
			req.Tools[i] = ToolDef{
				Name:        t.Name,
				Description: t.Description,
				InputSchema: schema,
			}
		}
	}

	for _, m := range c.Messages() {
		if m.Role == role.System {
			continue
		}
		appendMessage(&req.Messages, m)
	}

	return req
}

func appendMessage(msgs *[]Msg, m message.Message) {
	for _, p := range m.Parts {
		block := partToBlock(p)
		if block == nil {
			continue
		}

		wireRole := mapRole(m.Role)

		// Tool results must arrive in a user-role message.
		if _, ok := p.(content.ToolResult); ok {
			wireRole = "user"
		}

		if len(*msgs) > 0 && (*msgs)[len(*msgs)-1].Role == wireRole {
			last := &(*msgs)[len(*msgs)-1]
			last.Content = append(last.Content, *block)
			continue
		}

		*msgs = append(*msgs, Msg{
			Role:    wireRole,
			Content: []Block{*block},
		})
	}
}

func partToBlock(p content.Part) *Block {
	switch v := p.(type) {
	case content.Text:
		return &Block{Type: "text", Text: v.Text}
	case content.ToolCall:
		input := json.RawMessage(v.Arguments)
		if len(input) == 0 {
			input = json.RawMessage(`{}`)
		}
		return &Block{Type: "tool_use", ID: v.ID, Name: v.Name, Input: input}
	case content.ToolResult:
		return &Block{Type: "tool_result", ToolUseID: v.ToolCallID, Content: v.Content, IsError: v.IsError}
	default:
		return nil
	}
}

func mapRole(r role.Role) string {
	switch r {
	case role.Assistant:
		return "assistant"
	default:
		return "user"
	}
}

// ParseResponse converts a response body into a Reply, preserving the order
// of content blocks as received.
func ParseResponse(resp Response) modeladapter.Reply {
	var parts []content.Part

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			parts = append(parts, content.Text{Text: block.Text})
		case "tool_use":
			args := string(block.Input)
			if args == "" {
				args = "{}"
			}
			parts = append(parts, content.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: args,
			})
		}
	}

	return modeladapter.Reply{
		Message:    message.New("", role.Assistant, parts...),
		StopReason: modeladapter.StopReason(resp.StopReason),
	}
}
