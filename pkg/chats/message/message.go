// Package message defines the Message type used in model conversations.
package message

import (
	"strings"

	"github.com/quarryhq/stratum/pkg/chats/content"
	"github.com/quarryhq/stratum/pkg/chats/role"
)

// Message is a single conversation message: who sent it, in what role, and
// an ordered sequence of content parts. It is a value type that copies
// cheaply; the Parts slice is shared between copies.
type Message struct {
	Sender string
	Role   role.Role
	Parts  []content.Part
}

// New creates a message with the given sender, role, and content parts.
func New(sender string, r role.Role, parts ...content.Part) Message {
	return Message{
		Sender: sender,
		Role:   r,
		Parts:  parts,
	}
}

// NewText creates a message with a single Text content part.
func NewText(sender string, r role.Role, text string) Message {
	return New(sender, r, content.Text{Text: text})
}

// TextContent concatenates the text of all Text parts in order of
// appearance. It returns an empty string when the message has none.
func (m Message) TextContent() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if t, ok := p.(content.Text); ok {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

// ToolCalls returns all ToolCall parts in order of appearance.
func (m Message) ToolCalls() []content.ToolCall {
	var calls []content.ToolCall
	for _, p := range m.Parts {
		if tc, ok := p.(content.ToolCall); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}
