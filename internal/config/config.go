package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Proxy modes
const (
	// ModeDirect queries the GraphQL API with predefined templates
	ModeDirect = "direct"
	// ModeAssistant forwards natural-language questions to the chat-completion API
	ModeAssistant = "assistant"
)

// Config holds all configuration for the query proxy and its client.
type Config struct {
	// Proxy
	ProxyMode  string `mapstructure:"proxy_mode"`
	ListenAddr string `mapstructure:"listen_addr"`
	LogLevel   string `mapstructure:"log_level"`

	// GraphQL upstream
	HgraphAPIKey  string `mapstructure:"hgraph_api_key"`
	HgraphBaseURL string `mapstructure:"hgraph_base_url"`

	// Chat-completion upstream
	AnthropicAPIKey  string `mapstructure:"anthropic_api_key"`
	AnthropicBaseURL string `mapstructure:"anthropic_base_url"`
	AnthropicModel   string `mapstructure:"anthropic_model"`
	MCPServerURL     string `mapstructure:"mcp_server_url"`
	MCPServerName    string `mapstructure:"mcp_server_name"`
	MCPServerToken   string `mapstructure:"mcp_server_token"`
	AssistantOffline bool   `mapstructure:"assistant_offline"`

	// Dispatcher side: where the proxy lives
	ProxyURL string `mapstructure:"proxy_url"`
}

// Load reads configuration from a .env file, environment variables and an
// optional config file. Environment variables take precedence over config
// file values.
//
// Expected environment variables:
//   - PROXY_MODE (optional, "direct" or "assistant", defaults to direct)
//   - LISTEN_ADDR (optional, defaults to :8080)
//   - HGRAPH_API_KEY (required in direct mode)
//   - HGRAPH_BASE_URL (optional, defaults to mainnet)
//   - ANTHROPIC_API_KEY (required in assistant mode unless ASSISTANT_OFFLINE)
//   - ANTHROPIC_BASE_URL, ANTHROPIC_MODEL (optional)
//   - MCP_SERVER_URL, MCP_SERVER_NAME, MCP_SERVER_TOKEN (optional)
//   - ASSISTANT_OFFLINE (optional)
//   - PROXY_URL (optional, used by the query client)
//   - LOG_LEVEL (optional, defaults to info)
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.ProxyMode = strings.ToLower(strings.TrimSpace(config.ProxyMode))

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadClient reads only what the query client needs; no upstream keys are required.
func LoadClient() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.ProxyMode = strings.ToLower(strings.TrimSpace(config.ProxyMode))

	return config, nil
}

func newViper() (*viper.Viper, error) {
	// A missing .env file is fine
	_ = godotenv.Load()

	v := viper.New()

	v.SetEnvPrefix("") // No prefix, use full names
	v.AutomaticEnv()

	v.SetDefault("proxy_mode", ModeDirect)
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("hgraph_base_url", "https://mainnet.hedera.api.hgraph.io/v1/graphql")
	v.SetDefault("anthropic_base_url", "https://api.anthropic.com/v1")
	v.SetDefault("anthropic_model", "claude-sonnet-4-20250514")
	v.SetDefault("mcp_server_name", "hgraph")
	v.SetDefault("assistant_offline", false)
	v.SetDefault("proxy_url", "http://localhost:8080")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.hederaquery")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for key, env := range map[string]string{
		"proxy_mode":         "PROXY_MODE",
		"listen_addr":        "LISTEN_ADDR",
		"log_level":          "LOG_LEVEL",
		"hgraph_api_key":     "HGRAPH_API_KEY",
		"hgraph_base_url":    "HGRAPH_BASE_URL",
		"anthropic_api_key":  "ANTHROPIC_API_KEY",
		"anthropic_base_url": "ANTHROPIC_BASE_URL",
		"anthropic_model":    "ANTHROPIC_MODEL",
		"mcp_server_url":     "MCP_SERVER_URL",
		"mcp_server_name":    "MCP_SERVER_NAME",
		"mcp_server_token":   "MCP_SERVER_TOKEN",
		"assistant_offline":  "ASSISTANT_OFFLINE",
		"proxy_url":          "PROXY_URL",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	return v, nil
}

// Validate checks that the settings required by the selected mode are present
func (c *Config) Validate() error {
	var missing []string

	switch c.ProxyMode {
	case ModeDirect:
		if c.HgraphAPIKey == "" {
			missing = append(missing, "HGRAPH_API_KEY")
		}
	case ModeAssistant:
		if c.AnthropicAPIKey == "" && !c.AssistantOffline {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	default:
		return fmt.Errorf("invalid PROXY_MODE %q: want %q or %q", c.ProxyMode, ModeDirect, ModeAssistant)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}
