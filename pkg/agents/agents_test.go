package agents

import (
	"context"
	"encoding/json"
	"errors"
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

// mockCompleter returns a preconfigured reply and records the declarations
// it was given.
type mockCompleter struct {
	reply     modeladapter.Reply
	err       error
	calls     int
	lastTools []toolbox.Tool
}

func (m *mockCompleter) Complete(_ context.Context, _ *chat.Chat, tools []toolbox.Tool) (modeladapter.Reply, error) {
	m.calls++
	m.lastTools = tools
	return m.reply, m.err
}

func newLookupToolBox() *toolbox.ToolBox {
	tb := toolbox.New()
	tb.Register(toolbox.Tool{
		Name:        "lookup",
		Description: "Looks up a person by id",
		InputSchema: json.RawMessage(`{"type":"object"}`),
		Handler: func(_ context.Context, input json.RawMessage) (string, error) {
			return string(input), nil
		},
	})
	return tb
}

func TestCompleteAppendsAndStamps(t *testing.T) {
	m := &mockCompleter{reply: modeladapter.Reply{
		Message:    message.NewText("", role.Assistant, "hello"),
		StopReason: modeladapter.StopEndTurn,
	}}
	b := NewBase("bot", m, chat.New(), newLookupToolBox())

	reply, err := b.Complete(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "bot", reply.Message.Sender)
	assert.Equal(t, 1, b.Chat.Len())

	require.Len(t, m.lastTools, 1)
	assert.Equal(t, "lookup", m.lastTools[0].Name)
}

func TestCompleteErrorLeavesChatUntouched(t *testing.T) {
	m := &mockCompleter{err: errors.New("api down")}
	b := NewBase("bot", m, chat.New(), nil)

	_, err := b.Complete(context.Background())

	require.Error(t, err)
	assert.Equal(t, 0, b.Chat.Len())
}

func TestResolveToolsBatchesOneMessage(t *testing.T) {
	b := NewBase("bot", &mockCompleter{}, chat.New(), newLookupToolBox())

	msg := message.New("bot", role.Assistant,
		content.ToolCall{ID: "c1", Name: "lookup", Arguments: `{"id":"1"}`},
		content.ToolCall{ID: "c2", Name: "lookup", Arguments: `{"id":"2"}`},
		content.ToolCall{ID: "c3", Name: "lookup", Arguments: `{"id":"3"}`},
	)

	results, err := b.ResolveTools(context.Background(), msg)

	require.NoError(t, err)
	require.Len(t, results, 3)

	// All three results travel in a single appended message.
	require.Equal(t, 1, b.Chat.Len())
	appended := b.Chat.At(0)
	assert.Equal(t, role.Tool, appended.Role)
	require.Len(t, appended.Parts, 3)
	for i, p := range appended.Parts {
		tr, ok := p.(content.ToolResult)
		require.True(t, ok)
		assert.Equal(t, results[i].ToolCallID, tr.ToolCallID)
	}
}

func TestResolveToolsNoCalls(t *testing.T) {
	b := NewBase("bot", &mockCompleter{}, chat.New(), newLookupToolBox())

	results, err := b.ResolveTools(context.Background(), message.NewText("bot", role.Assistant, "done"))

	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Equal(t, 0, b.Chat.Len())
}

func TestResolveToolsUnknownToolAppendsNothing(t *testing.T) {
	b := NewBase("bot", &mockCompleter{}, chat.New(), newLookupToolBox())

	msg := message.New("bot", role.Assistant,
		content.ToolCall{ID: "c1", Name: "lookup", Arguments: `{}`},
		content.ToolCall{ID: "c2", Name: "ghost", Arguments: `{}`},
	)

	_, err := b.ResolveTools(context.Background(), msg)

	require.ErrorIs(t, err, toolbox.ErrUnknownTool)
	assert.Equal(t, 0, b.Chat.Len())
}
