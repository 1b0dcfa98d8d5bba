package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quarryhq/stratum/pkg/chats/chat"
	"github.com/quarryhq/stratum/pkg/chats/content"
	"github.com/quarryhq/stratum/pkg/chats/message"
	"github.com/quarryhq/stratum/pkg/chats/role"
	"github.com/quarryhq/stratum/pkg/modeladapter"
	"github.com/quarryhq/stratum/pkg/tools/toolbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "lookup",
		Description: "Looks up a person by id",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"id":{"type":"string"}}}`),
	}
}

func TestBuildRequestBasics(t *testing.T) {
	c := chat.New(
		message.NewText("", role.System, "Be terse."),
		message.NewText("alice", role.User, "Who is 42?"),
	)

	req := BuildRequest(c, []toolbox.Tool{lookupTool()}, 500, 0.7)

	assert.Equal(t, 500, req.MaxTokens)
	assert.Equal(t, "Be terse.", req.System)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.7, *req.Temperature, 1e-9)

	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "Who is 42?", req.Messages[0].Content[0].Text)

	require.Len(t, req.Tools, 1)
	assert.Equal(t, "lookup", req.Tools[0].Name)
}

func TestBuildRequestZeroTemperatureOmitted(t *testing.T) {
	c := chat.New(message.NewText("alice", role.User, "hi"))

	req := BuildRequest(c, nil, 100, 0)

	assert.Nil(t, req.Temperature)
	assert.Empty(t, req.Tools)
}

func TestBuildRequestNilSchemaDefaulted(t *testing.T) {
	c := chat.New(message.NewText("alice", role.User, "hi"))
	tool := toolbox.Tool{Name: "bare"}

	req := BuildRequest(c, []toolbox.Tool{tool}, 100, 0)

	require.Len(t, req.Tools, 1)
	assert.JSONEq(t, `{"type":"object"}`, string(req.Tools[0].InputSchema))
}

func TestBuildRequestToolResultsAreUserRole(t *testing.T) {
	c := chat.New(
		message.NewText("alice", role.User, "Who is 42?"),
		message.New("bot", role.Assistant,
			content.ToolCall{ID: "c1", Name: "lookup", Arguments: `{"id":"42"}`},
		),
		message.New("bot", role.Tool,
			content.ToolResult{ToolCallID: "c1", Content: "Alice"},
		),
	)

	req := BuildRequest(c, nil, 100, 0)

	require.Len(t, req.Messages, 3)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "assistant", req.Messages[1].Role)
	assert.Equal(t, "user", req.Messages[2].Role)
	assert.Equal(t, "tool_result", req.Messages[2].Content[0].Type)
	assert.Equal(t, "c1", req.Messages[2].Content[0].ToolUseID)
}

func TestBuildRequestBatchedResultsStayOneMessage(t *testing.T) {
	c := chat.New(
		message.NewText("alice", role.User, "two lookups"),
		message.New("bot", role.Assistant,
			content.ToolCall{ID: "c1", Name: "lookup", Arguments: `{"id":"1"}`},
			content.ToolCall{ID: "c2", Name: "lookup", Arguments: `{"id":"2"}`},
		),
		message.New("bot", role.Tool,
			content.ToolResult{ToolCallID: "c1", Content: "Alice"},
			content.ToolResult{ToolCallID: "c2", Content: "Bob"},
		),
	)

	req := BuildRequest(c, nil, 100, 0)

	require.Len(t, req.Messages, 3)
	require.Len(t, req.Messages[2].Content, 2)
	assert.Equal(t, "c1", req.Messages[2].Content[0].ToolUseID)
	assert.Equal(t, "c2", req.Messages[2].Content[1].ToolUseID)
}

func TestBuildRequestEmptyToolInputDefaulted(t *testing.T) {
	c := chat.New(
		message.New("bot", role.Assistant,
			content.ToolCall{ID: "c1", Name: "lookup"},
		),
	)

	req := BuildRequest(c, nil, 100, 0)

	require.Len(t, req.Messages, 1)
	assert.JSONEq(t, `{}`, string(req.Messages[0].Content[0].Input))
}

func TestParseResponseTextAndToolUse(t *testing.T) {
	resp := Response{
		Content: []Block{
			{Type: "text", Text: "Let me look that up."},
			{Type: "tool_use", ID: "c1", Name: "lookup", Input: json.RawMessage(`{"id":"42"}`)},
		},
		StopReason: "tool_use",
	}

	reply := ParseResponse(resp)

	assert.True(t, reply.StopReason.IsToolUse())
	assert.Equal(t, role.Assistant, reply.Message.Role)
	assert.Equal(t, "Let me look that up.", reply.Message.TextContent())

	calls := reply.Message.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "c1", calls[0].ID)
	assert.JSONEq(t, `{"id":"42"}`, calls[0].Arguments)
}

func TestParseResponseEndTurn(t *testing.T) {
	resp := Response{
		Content:    []Block{{Type: "text", Text: "Done."}},
		StopReason: "end_turn",
	}

	reply := ParseResponse(resp)

	assert.Equal(t, modeladapter.StopEndTurn, reply.StopReason)
	assert.Empty(t, reply.Message.ToolCalls())
}

func TestAdapterComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-sonnet-4-20250514", req.Model)
		assert.Empty(t, req.AnthropicVersion)

		_, _ = w.Write([]byte(`{
			"content":[{"type":"text","text":"hello back"}],
			"stop_reason":"end_turn",
			"usage":{"input_tokens":12,"output_tokens":4}
		}`))
	}))
	defer srv.Close()

	a := New(srv.URL, "test-key", "claude-sonnet-4-20250514")
	a.Client = srv.Client()

	c := chat.New(message.NewText("alice", role.User, "hello"))
	reply, err := a.Complete(context.Background(), c, nil)

	require.NoError(t, err)
	assert.Equal(t, "hello back", reply.Message.TextContent())
	assert.Equal(t, modeladapter.StopEndTurn, reply.StopReason)

	total := a.Usage.Total()
	assert.Equal(t, 12, total.InputTokens)
	assert.Equal(t, 4, total.OutputTokens)
}

func TestAdapterCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	a := New(srv.URL, "test-key", "claude-sonnet-4-20250514")
	a.Client = srv.Client()

	c := chat.New(message.NewText("alice", role.User, "hello"))
	_, err := a.Complete(context.Background(), c, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic:")
}
