// Package content defines the content parts that make up a message.
package content

// Part is one piece of content within a message. The concrete types below
// form a closed set for this module, but external packages may implement
// Part to carry custom content through a conversation.
type Part interface {
	PartKind() string
}

// Text is a plain text content part.
type Text struct {
	Text string
}

func (t Text) PartKind() string { return "text" }

// ToolCall is an assistant's request to invoke a named tool. Arguments holds
// the raw JSON string exactly as produced by the model; it is decoded only
// by the tool handler.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

func (tc ToolCall) PartKind() string { return "tool_call" }

// ToolResult carries the outcome of one tool invocation back to the model.
// ToolCallID must reference the ID of the ToolCall that produced it.
// IsError marks handler failures; the model sees the error text in Content
// and can react to it.
type ToolResult struct {
	ToolCallID string
	Content    string
	IsError    bool
}

func (tr ToolResult) PartKind() string { return "tool_result" }
