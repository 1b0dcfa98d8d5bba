package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Provider kinds understood by the engine.
const (
	KindBedrock   = "bedrock"
	KindAnthropic = "anthropic"
)

// Config is the top-level engine configuration.
type Config struct {
	Providers  []ProviderConfig `yaml:"providers"`
	MCPServers []MCPConfig      `yaml:"mcp_servers"`
	Agents     []AgentConfig    `yaml:"agents"`
	EntryAgent string           `yaml:"entry_agent"`
}

// ProviderConfig describes one model provider instance.
type ProviderConfig struct {
	Name        string  `yaml:"name"`
	Kind        string  `yaml:"kind"`
	Region      string  `yaml:"region"`   // bedrock only; empty defers to the AWS SDK chain.
	BaseURL     string  `yaml:"base_url"` // anthropic only; defaults to the public endpoint.
	APIKey      string  `yaml:"api_key"`  //nolint:gosec // configuration field, not a hardcoded secret
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// MCPConfig describes an MCP server whose tools become a named toolbox.
// Either Command (spawned subprocess) or URL (SSE endpoint) must be set.
type MCPConfig struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	URL     string   `yaml:"url"`
}

// AgentConfig describes one orchestrator to expose.
type AgentConfig struct {
	Name         string   `yaml:"name"`
	Provider     string   `yaml:"provider"`
	Instructions string   `yaml:"instructions"`
	Toolboxes    []string `yaml:"toolboxes"`
}

// LoadConfig reads a YAML file and returns a Config. Environment variables
// referenced as ${VAR} or $VAR are expanded before parsing, so API keys can
// live in the environment (e.g. loaded from a .env file) rather than in
// the file itself.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("engine: config: at least one provider is required")
	}

	providerNames := make(map[string]struct{}, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("engine: config: provider name is required")
		}
		if p.Kind != KindBedrock && p.Kind != KindAnthropic {
			return fmt.Errorf("engine: config: provider %q: unknown kind %q", p.Name, p.Kind)
		}
		if p.Kind == KindAnthropic && p.APIKey == "" {
			return fmt.Errorf("engine: config: provider %q: api_key is required", p.Name)
		}
		if _, dup := providerNames[p.Name]; dup {
			return fmt.Errorf("engine: config: duplicate provider name %q", p.Name)
		}
		providerNames[p.Name] = struct{}{}
	}

	mcpNames := make(map[string]struct{}, len(c.MCPServers))
	for _, m := range c.MCPServers {
		if m.Name == "" {
			return fmt.Errorf("engine: config: mcp server name is required")
		}
		if m.Command == "" && m.URL == "" {
			return fmt.Errorf("engine: config: mcp server %q: command or url is required", m.Name)
		}
		if _, dup := mcpNames[m.Name]; dup {
			return fmt.Errorf("engine: config: duplicate mcp server name %q", m.Name)
		}
		mcpNames[m.Name] = struct{}{}
	}

	agentNames := make(map[string]struct{}, len(c.Agents))
	for _, a := range c.Agents {
		if a.Name == "" {
			return fmt.Errorf("engine: config: agent name is required")
		}
		if _, ok := providerNames[a.Provider]; !ok {
			return fmt.Errorf("engine: config: agent %q: unknown provider %q", a.Name, a.Provider)
		}
		if _, dup := agentNames[a.Name]; dup {
			return fmt.Errorf("engine: config: duplicate agent name %q", a.Name)
		}
		agentNames[a.Name] = struct{}{}
	}

	if c.EntryAgent != "" {
		if _, ok := agentNames[c.EntryAgent]; !ok {
			return fmt.Errorf("engine: config: entry_agent %q is not a configured agent", c.EntryAgent)
		}
	}

	return nil
}
