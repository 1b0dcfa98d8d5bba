package toolbox

import (
	"context"
	"encoding/json"
)

// Handler executes a tool with the given JSON arguments and returns a text
// result. Handlers must not mutate conversation state; everything they want
// the model to see goes through the returned string or error.
type Handler func(ctx context.Context, input json.RawMessage) (string, error)

// Tool is an executable tool. Name, Description, and InputSchema are
// declared to the model; Handler never crosses the API boundary. Name must
// match the declaration exactly, since the model dispatches by name.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     Handler
}
