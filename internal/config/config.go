package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all runtime configuration for insightpilot.
type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	Storage StorageConfig
	Log     LogConfig
}

// ServerConfig holds the HTTP and MCP listener settings. An empty
// APIToken leaves the HTTP API unauthenticated.
type ServerConfig struct {
	Port     int
	MCPPort  int
	APIToken string
}

// LLMConfig describes the text-generation backend. An empty BaseURL
// disables generation: query translation reports unavailable and the
// chart planner stays on its deterministic fallback.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:    4400,
			MCPPort: 4401,
		},
		LLM: LLMConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.1",
			Timeout: 60 * time.Second,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".insightpilot"
	}
	return filepath.Join(home, ".insightpilot")
}

// Load builds the configuration from defaults overridden by
// INSIGHTPILOT_* environment variables.
func Load() (Config, error) {
	cfg := defaults()

	for _, s := range specs {
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		if err := s.apply(&cfg, raw); err != nil {
			return Config{}, fmt.Errorf("invalid %s=%q: %w", s.env, raw, err)
		}
	}

	return cfg, nil
}

type envSpec struct {
	env   string
	apply func(*Config, string) error
}

var specs = []envSpec{
	{"INSIGHTPILOT_PORT", func(c *Config, v string) error {
		i, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Server.Port = i
		return nil
	}},
	{"INSIGHTPILOT_MCP_PORT", func(c *Config, v string) error {
		i, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Server.MCPPort = i
		return nil
	}},
	{"INSIGHTPILOT_API_TOKEN", func(c *Config, v string) error {
		c.Server.APIToken = v
		return nil
	}},
	{"INSIGHTPILOT_LLM_URL", func(c *Config, v string) error {
		c.LLM.BaseURL = v
		return nil
	}},
	{"INSIGHTPILOT_LLM_MODEL", func(c *Config, v string) error {
		c.LLM.Model = v
		return nil
	}},
	{"INSIGHTPILOT_LLM_TIMEOUT", func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.LLM.Timeout = d
		return nil
	}},
	{"INSIGHTPILOT_DATA_DIR", func(c *Config, v string) error {
		c.Storage.DataDir = v
		return nil
	}},
	{"INSIGHTPILOT_LOG_LEVEL", func(c *Config, v string) error {
		c.Log.Level = v
		return nil
	}},
}
