// Package roundtrip implements a single-round tool-calling exchange: one
// completion, at most one batch of tool executions, and at most one further
// completion. Multi-round chaining is deliberately not supported; the
// second reply is final whatever its own stop reason says.
package roundtrip

import (
	"context"
	"fmt"
	"time"

	"github.com/quarryhq/stratum/pkg/agents"
	"github.com/quarryhq/stratum/pkg/chats/chat"
	"github.com/quarryhq/stratum/pkg/chats/message"
	"github.com/quarryhq/stratum/pkg/chats/role"
	"github.com/rs/zerolog"
)

// Orchestrator drives one tool-calling round trip per Run call. Each call
// builds a fresh conversation; nothing persists between calls. Orchestrator
// is not safe for concurrent use.
type Orchestrator struct {
	agents.Base

	// Instructions, when set, is prepended as the system prompt of every
	// conversation.
	Instructions string

	Log zerolog.Logger
}

// New creates an Orchestrator from a Base.
func New(base agents.Base) *Orchestrator {
	return &Orchestrator{
		Base: base,
		Log:  zerolog.Nop(),
	}
}

// Run sends userMessage to the model with the toolbox's declarations and
// returns the concatenated text of the final reply.
//
// If the first reply stops for tool use, every requested call is resolved
// in order, the results are appended as one batched message, and exactly
// one further completion is made — final regardless of its stop reason. A
// reply with no text blocks yields an empty string, not an error. An
// unregistered tool name or any transport failure aborts the round trip.
func (o *Orchestrator) Run(ctx context.Context, userMessage string) (string, error) {
	o.Chat = o.newChat(userMessage)

	start := time.Now()

	reply, err := o.Complete(ctx)
	if err != nil {
		return "", fmt.Errorf("roundtrip: %w", err)
	}

	calls := reply.Message.ToolCalls()
	if !reply.StopReason.IsToolUse() || len(calls) == 0 {
		o.Log.Debug().
			Str("stop_reason", string(reply.StopReason)).
			Dur("elapsed", time.Since(start)).
			Msg("round trip finished without tool use")

		return reply.Message.TextContent(), nil
	}

	names := make([]string, len(calls))
	for i, tc := range calls {
		names[i] = tc.Name
	}
	o.Log.Debug().Strs("tools", names).Msg("resolving tool calls")

	if _, err := o.ResolveTools(ctx, reply.Message); err != nil {
		return "", fmt.Errorf("roundtrip: %w", err)
	}

	final, err := o.Complete(ctx)
	if err != nil {
		return "", fmt.Errorf("roundtrip: %w", err)
	}

	o.Log.Debug().
		Str("stop_reason", string(final.StopReason)).
		Int("tool_calls", len(calls)).
		Dur("elapsed", time.Since(start)).
		Msg("round trip finished after tool use")

	return final.Message.TextContent(), nil
}

// newChat builds the per-call conversation: the optional system prompt
// followed by the user message.
func (o *Orchestrator) newChat(userMessage string) *chat.Chat {
	c := chat.New()
	if o.Instructions != "" {
		c.Append(message.NewText(o.Name, role.System, o.Instructions))
	}
	c.Append(message.NewText("", role.User, userMessage))

	return c
}
