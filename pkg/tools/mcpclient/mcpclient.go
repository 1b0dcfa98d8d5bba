// Package mcpclient exposes the tools of an MCP server as toolbox tools,
// letting an external service act as the tool registry.
package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/quarryhq/stratum/pkg/tools/toolbox"
)

// Client wraps a connected MCP session.
type Client struct {
	client  *mcp.Client
	session *mcp.ClientSession
}

// New spawns an MCP server process and returns a connected client. The SDK
// performs the initialization handshake during Connect.
func New(ctx context.Context, command string, args ...string) (*Client, error) {
	transport := &mcp.CommandTransport{
		Command: exec.Command(command, args...), //nolint:gosec // command is caller-provided by design
	}

	return newFromTransport(ctx, transport)
}

// NewSSE connects to an SSE-based MCP server at the given URL.
func NewSSE(ctx context.Context, url string) (*Client, error) {
	return newFromTransport(ctx, &mcp.SSEClientTransport{Endpoint: url})
}

func newFromTransport(ctx context.Context, transport mcp.Transport) (*Client, error) {
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "stratum",
		Version: "0.1.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("mcpclient: connect: %w", err)
	}

	return &Client{client: client, session: session}, nil
}

// Tools fetches the server's tools and returns them as toolbox.Tool values
// whose handlers call back through the session.
func (c *Client) Tools(ctx context.Context) ([]toolbox.Tool, error) {
	result, err := c.session.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mcpclient: list tools: %w", err)
	}

	tools := make([]toolbox.Tool, 0, len(result.Tools))
	for _, sdkTool := range result.Tools {
		t, err := c.fromSDKTool(sdkTool)
		if err != nil {
			return nil, fmt.Errorf("mcpclient: convert tool %q: %w", sdkTool.Name, err)
		}
		tools = append(tools, t)
	}

	return tools, nil
}

// Call invokes a named tool on the server with the given JSON arguments.
func (c *Client) Call(ctx context.Context, name string, arguments json.RawMessage) (string, error) {
	var args map[string]any
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &args); err != nil {
			return "", fmt.Errorf("mcpclient: unmarshal arguments: %w", err)
		}
	}

	result, err := c.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return "", fmt.Errorf("mcpclient: call tool: %w", err)
	}

	text := extractText(result)

	if result.IsError {
		return "", fmt.Errorf("mcpclient: tool error: %s", text)
	}

	return text, nil
}

// Close terminates the session; the SDK shuts down any spawned subprocess.
func (c *Client) Close() error {
	return c.session.Close()
}

func (c *Client) fromSDKTool(sdkTool *mcp.Tool) (toolbox.Tool, error) {
	schemaBytes, err := json.Marshal(sdkTool.InputSchema)
	if err != nil {
		return toolbox.Tool{}, fmt.Errorf("marshal input schema: %w", err)
	}

	name := sdkTool.Name

	return toolbox.Tool{
		Name:        name,
		Description: sdkTool.Description,
		InputSchema: json.RawMessage(schemaBytes),
		Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
			return c.Call(ctx, name, input)
		},
	}, nil
}

// extractText joins all text content items from a result with newlines.
func extractText(result *mcp.CallToolResult) string {
	var texts []string
	for _, item := range result.Content {
		if tc, ok := item.(*mcp.TextContent); ok {
			texts = append(texts, tc.Text)
		}
	}

	return strings.Join(texts, "\n")
}
