// Package agents provides the shared plumbing that binds a model adapter,
// a toolbox, and a conversation together. Concrete orchestration patterns
// live in subpackages and embed Base.
package agents

import (
	"context"

	"github.com/quarryhq/stratum/pkg/chats/chat"
	"github.com/quarryhq/stratum/pkg/chats/content"
	"github.com/quarryhq/stratum/pkg/chats/message"
	"github.com/quarryhq/stratum/pkg/chats/role"
	"github.com/quarryhq/stratum/pkg/modeladapter"
	"github.com/quarryhq/stratum/pkg/tools/toolbox"
)

// Base binds a Completer, a ToolBox, and a Chat. It is not safe for
// concurrent use; callers must synchronize externally.
type Base struct {
	Name    string
	Adapter modeladapter.Completer
	Tools   *toolbox.ToolBox
	Chat    *chat.Chat
}

// NewBase creates a Base. A nil toolbox means no tools are declared.
func NewBase(name string, adapter modeladapter.Completer, c *chat.Chat, tools *toolbox.ToolBox) Base {
	if tools == nil {
		tools = toolbox.New()
	}

	return Base{
		Name:    name,
		Adapter: adapter,
		Tools:   tools,
		Chat:    c,
	}
}

// Complete sends the conversation and the toolbox's declarations to the
// adapter, stamps the reply with the agent's name, and appends it to the
// conversation with its content blocks in the order received.
func (b *Base) Complete(ctx context.Context) (modeladapter.Reply, error) {
	reply, err := b.Adapter.Complete(ctx, b.Chat, b.Tools.Tools())
	if err != nil {
		return modeladapter.Reply{}, err
	}

	reply.Message.Sender = b.Name
	b.Chat.Append(reply.Message)

	return reply, nil
}

// ResolveTools executes every tool call in msg sequentially, in the order
// received, and appends the results to the conversation as a single
// batched message. An unknown tool name aborts with ErrUnknownTool and
// appends nothing; handler failures become error-flagged results inside
// the batch. Returns nil results if the message carries no tool calls.
func (b *Base) ResolveTools(ctx context.Context, msg message.Message) ([]content.ToolResult, error) {
	calls := msg.ToolCalls()
	if len(calls) == 0 {
		return nil, nil
	}

	results, err := b.Tools.CallAll(ctx, calls)
	if err != nil {
		return nil, err
	}

	parts := make([]content.Part, len(results))
	for i, r := range results {
		parts[i] = r
	}
	b.Chat.Append(message.New(b.Name, role.Tool, parts...))

	return results, nil
}
