package mcpserver

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/edvin/rediscloud-tools/internal/tools"
)

var validate = validator.New()

// Config is the MCP server configuration loaded from rediscloud-mcp.yaml.
// API credentials never live here; they come from the environment.
type Config struct {
	// Description is the instruction string advertised to MCP clients.
	Description string `yaml:"description"`
	// Instance carries the optional default subscription/database identifiers
	// for the Redis instance these tools diagnose.
	Instance tools.Instance `yaml:"instance"`
}

// LoadConfig reads and parses the yaml configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses configuration from raw yaml bytes.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse mcp config: %w", err)
	}

	if cfg.Description == "" {
		cfg.Description = "Redis Cloud diagnostics: read-only subscription, database, user, and task tools."
	}

	if err := validate.Struct(cfg.Instance); err != nil {
		return nil, fmt.Errorf("invalid instance config: %w", err)
	}

	return &cfg, nil
}
