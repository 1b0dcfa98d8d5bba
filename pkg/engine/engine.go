// Package engine assembles providers, toolboxes, and orchestrators from
// configuration.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/quarryhq/stratum/pkg/agents"
	"github.com/quarryhq/stratum/pkg/agents/roundtrip"
	"github.com/quarryhq/stratum/pkg/modeladapter"
	"github.com/quarryhq/stratum/pkg/providers/anthropic"
	"github.com/quarryhq/stratum/pkg/providers/bedrock"
	"github.com/quarryhq/stratum/pkg/tools/mcpclient"
	"github.com/quarryhq/stratum/pkg/tools/toolbox"
	"github.com/rs/zerolog"
)

const defaultAnthropicBaseURL = "https://api.anthropic.com"

// Engine is the composition root. It owns the provider adapters, the named
// toolboxes (from MCP servers or registered locally), and the agent
// definitions, and hands out configured orchestrators.
type Engine struct {
	cfg        Config
	log        zerolog.Logger
	completers map[string]modeladapter.Completer
	toolboxes  map[string]*toolbox.ToolBox
	mcpClients []*mcpclient.Client
}

// New creates an Engine from the given configuration: it validates the
// config, builds one completer per provider, and connects the configured
// MCP servers into named toolboxes.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:        cfg,
		log:        log,
		completers: make(map[string]modeladapter.Completer, len(cfg.Providers)),
		toolboxes:  make(map[string]*toolbox.ToolBox),
	}

	for _, pc := range cfg.Providers {
		c, err := buildCompleter(ctx, pc, log)
		if err != nil {
			return nil, fmt.Errorf("engine: provider %q: %w", pc.Name, err)
		}
		e.completers[pc.Name] = c
		log.Debug().Str("provider", pc.Name).Str("kind", pc.Kind).Msg("provider ready")
	}

	for _, mc := range cfg.MCPServers {
		client, err := connectMCP(ctx, mc)
		if err != nil {
			_ = e.Close()
			return nil, fmt.Errorf("engine: mcp %q: %w", mc.Name, err)
		}
		e.mcpClients = append(e.mcpClients, client)

		tools, err := client.Tools(ctx)
		if err != nil {
			_ = e.Close()
			return nil, fmt.Errorf("engine: mcp %q: list tools: %w", mc.Name, err)
		}

		tb := toolbox.New()
		tb.Register(tools...)
		e.toolboxes[mc.Name] = tb
		log.Debug().Str("mcp", mc.Name).Int("tools", tb.Len()).Msg("mcp toolbox ready")
	}

	return e, nil
}

func buildCompleter(ctx context.Context, pc ProviderConfig, log zerolog.Logger) (modeladapter.Completer, error) {
	switch pc.Kind {
	case KindBedrock:
		rt, err := bedrock.NewRuntime(ctx, pc.Region, pc.Model)
		if err != nil {
			return nil, err
		}
		if pc.MaxTokens > 0 {
			rt.MaxTokens = pc.MaxTokens
		}
		rt.Temperature = pc.Temperature
		rt.Log = log
		return rt, nil

	case KindAnthropic:
		baseURL := pc.BaseURL
		if baseURL == "" {
			baseURL = defaultAnthropicBaseURL
		}
		a := anthropic.New(baseURL, pc.APIKey, pc.Model)
		if pc.MaxTokens > 0 {
			a.MaxTokens = pc.MaxTokens
		}
		a.Temperature = pc.Temperature
		return a, nil

	default:
		return nil, fmt.Errorf("unknown kind %q", pc.Kind)
	}
}

func connectMCP(ctx context.Context, mc MCPConfig) (*mcpclient.Client, error) {
	if mc.URL != "" {
		return mcpclient.NewSSE(ctx, mc.URL)
	}
	return mcpclient.New(ctx, mc.Command, mc.Args...)
}

// RegisterToolBox makes a locally built toolbox available to agents under
// the given name, alongside the MCP-backed ones.
func (e *Engine) RegisterToolBox(name string, tb *toolbox.ToolBox) {
	e.toolboxes[name] = tb
}

// Orchestrator returns a configured round-trip orchestrator for the named
// agent. An empty name selects the config's entry agent, or the only agent
// when exactly one is configured.
func (e *Engine) Orchestrator(name string) (*roundtrip.Orchestrator, error) {
	ac, err := e.agentConfig(name)
	if err != nil {
		return nil, err
	}

	completer := e.completers[ac.Provider]

	tools := toolbox.New()
	for _, tbName := range ac.Toolboxes {
		tb, ok := e.toolboxes[tbName]
		if !ok {
			return nil, fmt.Errorf("engine: agent %q: unknown toolbox %q", ac.Name, tbName)
		}
		tools.Merge(tb)
	}

	o := roundtrip.New(agents.NewBase(ac.Name, completer, nil, tools))
	o.Instructions = ac.Instructions
	o.Log = e.log

	return o, nil
}

func (e *Engine) agentConfig(name string) (AgentConfig, error) {
	if name == "" {
		name = e.cfg.EntryAgent
	}
	if name == "" && len(e.cfg.Agents) == 1 {
		return e.cfg.Agents[0], nil
	}

	for _, ac := range e.cfg.Agents {
		if ac.Name == name {
			return ac, nil
		}
	}

	return AgentConfig{}, fmt.Errorf("engine: unknown agent %q", name)
}

// Close shuts down all MCP clients, aggregating any errors.
func (e *Engine) Close() error {
	var errs []error
	for _, c := range e.mcpClients {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
