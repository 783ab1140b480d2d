package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"arguematch/models"
)

// DefaultPath is where the server looks for its config file
const DefaultPath = "./config/config.prod.yml"

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	// Database is optional. Without a URI matches are not archived.
	Database struct {
		URI  string `yaml:"uri"`
		Name string `yaml:"name"`
	} `yaml:"database"`

	// Redis is optional. Without an address room events are not mirrored.
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Debate struct {
		SettleDelaySeconds int                  `yaml:"settleDelaySeconds"`
		PhasePauseSeconds  int                  `yaml:"phasePauseSeconds"`
		RelayMode          string               `yaml:"relayMode"`
		Topics             []models.DebateTopic `yaml:"topics"`
	} `yaml:"debate"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	cfg.Debate.SettleDelaySeconds = 3
	cfg.Debate.PhasePauseSeconds = 1
	return &cfg
}

// LoadConfig reads the configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Config{}
	cfg.Debate.SettleDelaySeconds = -1
	cfg.Debate.PhasePauseSeconds = -1
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	// -1 marks a key left out of the file; an explicit 0 disables the delay
	if cfg.Debate.SettleDelaySeconds == -1 {
		cfg.Debate.SettleDelaySeconds = 3
	}
	if cfg.Debate.PhasePauseSeconds == -1 {
		cfg.Debate.PhasePauseSeconds = 1
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 1313
	}
	if c.Database.Name == "" {
		c.Database.Name = "arguematch"
	}
	if c.Debate.RelayMode == "" {
		c.Debate.RelayMode = "room"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate rejects values the server cannot run with
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Debate.RelayMode {
	case "room", "broadcast":
	default:
		return fmt.Errorf("debate.relayMode must be room or broadcast, got %q", c.Debate.RelayMode)
	}
	if c.Debate.SettleDelaySeconds < 0 {
		return fmt.Errorf("debate.settleDelaySeconds must not be negative")
	}
	if c.Debate.PhasePauseSeconds < 0 {
		return fmt.Errorf("debate.phasePauseSeconds must not be negative")
	}
	for i, t := range c.Debate.Topics {
		if strings.TrimSpace(t.Topic) == "" {
			return fmt.Errorf("debate.topics[%d] has no topic", i)
		}
	}
	return nil
}
