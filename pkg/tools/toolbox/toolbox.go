// Package toolbox holds the registry of tools a model may call.
//
// Failure handling draws a line between two cases. A handler that returns
// an error produces a ToolResult with IsError set, so the model sees the
// failure text and can react to it. A request for a name that was never
// registered returns ErrUnknownTool instead: answering it would require
// guessing, and silently dropping it would yield an incomplete answer.
package toolbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quarryhq/stratum/pkg/chats/content"
)

// ErrUnknownTool is returned when a tool call names a tool that is not
// registered. It is fatal to the round trip that produced the call.
var ErrUnknownTool = fmt.Errorf("unknown tool")

// ToolBox is a name-keyed collection of tools. Registration order is
// preserved: Tools returns declarations in the order they were registered,
// which is the order the model sees them.
type ToolBox struct {
	tools map[string]Tool
	order []string
}

// New creates an empty ToolBox.
func New() *ToolBox {
	return &ToolBox{
		tools: make(map[string]Tool),
	}
}

// Register adds one or more tools. Registering a name that already exists
// replaces the tool but keeps its original position.
func (tb *ToolBox) Register(tools ...Tool) {
	for _, t := range tools {
		if _, exists := tb.tools[t.Name]; !exists {
			tb.order = append(tb.order, t.Name)
		}
		tb.tools[t.Name] = t
	}
}

// Get returns a tool by name and whether it was found.
func (tb *ToolBox) Get(name string) (Tool, bool) {
	t, ok := tb.tools[name]
	return t, ok
}

// Merge registers all tools from another ToolBox into this one.
func (tb *ToolBox) Merge(other *ToolBox) {
	for _, name := range other.order {
		tb.Register(other.tools[name])
	}
}

// Len returns the number of registered tools.
func (tb *ToolBox) Len() int {
	return len(tb.order)
}

// Tools returns all registered tools in registration order.
func (tb *ToolBox) Tools() []Tool {
	result := make([]Tool, 0, len(tb.order))
	for _, name := range tb.order {
		result = append(result, tb.tools[name])
	}
	return result
}

// Call resolves a single tool call. A handler error is downgraded to an
// error-flagged ToolResult; the returned error is non-nil only when the
// named tool is not registered.
func (tb *ToolBox) Call(ctx context.Context, tc content.ToolCall) (content.ToolResult, error) {
	t, ok := tb.tools[tc.Name]
	if !ok {
		return content.ToolResult{}, fmt.Errorf("%w: %s", ErrUnknownTool, tc.Name)
	}

	result, err := t.Handler(ctx, json.RawMessage(tc.Arguments))
	if err != nil {
		return content.ToolResult{
			ToolCallID: tc.ID,
			Content:    fmt.Sprintf("tool %s failed: %s", tc.Name, err),
			IsError:    true,
		}, nil
	}

	return content.ToolResult{
		ToolCallID: tc.ID,
		Content:    result,
	}, nil
}

// CallAll resolves a batch of tool calls sequentially, in the order given.
// Result i corresponds to call i. The first unknown tool name aborts the
// batch; handlers are never run in parallel.
func (tb *ToolBox) CallAll(ctx context.Context, calls []content.ToolCall) ([]content.ToolResult, error) {
	results := make([]content.ToolResult, 0, len(calls))

	for _, tc := range calls {
		result, err := tb.Call(ctx, tc)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}
