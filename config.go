// config.go: Dispatcher configuration and YAML loader
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"fmt"
	"os"
	"time"

	goerrors "github.com/agilira/go-errors"
	"gopkg.in/yaml.v3"
)

// SessionMax is the default number of concurrent session slots per family.
const SessionMax = 1

// Error codes for configuration
const (
	ErrCodeConfigRead  = "CONFIG_READ"
	ErrCodeConfigParse = "CONFIG_PARSE"
	ErrCodeConfigValue = "CONFIG_INVALID"
)

// Config is the dispatcher configuration.
type Config struct {
	Sessions      SessionConfig        `yaml:"sessions"`
	Log           LogConfig            `yaml:"log"`
	Engine        EngineConfig         `yaml:"engine"`
	SecureElement *SecureElementConfig `yaml:"secure_element,omitempty"`
}

// SessionConfig sizes the session registry.
type SessionConfig struct {
	Max uint32 `yaml:"max"`
}

// LogConfig selects the log level used when the dispatcher builds its own logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// EngineConfig tunes the hardware accelerator model.
type EngineConfig struct {
	// PollLimit bounds status-register polling for one accelerator operation.
	PollLimit int `yaml:"poll_limit"`
}

// SecureElementConfig describes an external secure element reached over PKCS#11.
type SecureElementConfig struct {
	Type             string        `yaml:"type"`
	Lib              string        `yaml:"lib"`
	Slot             *uint         `yaml:"slot"`
	Token            string        `yaml:"token"`
	PinEnv           string        `yaml:"pin_env"`
	OperationTimeout time.Duration `yaml:"operation_timeout"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() *Config {
	return &Config{
		Sessions: SessionConfig{Max: SessionMax},
		Log:      LogConfig{Level: "info"},
		Engine:   EngineConfig{PollLimit: 1024},
	}
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		return nil, goerrors.Wrap(err, ErrCodeConfigRead, "failed to read config file")
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, goerrors.Wrap(err, ErrCodeConfigParse, "failed to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the dispatcher cannot honor.
func (c *Config) Validate() error {
	if c.Sessions.Max == 0 {
		return goerrors.New(ErrCodeConfigValue, "sessions.max must be at least 1")
	}
	if c.Engine.PollLimit < 0 {
		return goerrors.New(ErrCodeConfigValue, "engine.poll_limit cannot be negative")
	}
	if se := c.SecureElement; se != nil {
		if se.Type != "pkcs11" {
			return goerrors.New(ErrCodeConfigValue, fmt.Sprintf("unsupported secure element type: %q (only 'pkcs11' is supported)", se.Type))
		}
		if se.Lib == "" {
			return goerrors.New(ErrCodeConfigValue, "secure_element.lib is required")
		}
		if se.Slot == nil && se.Token == "" {
			return goerrors.New(ErrCodeConfigValue, "one of secure_element.slot or secure_element.token is required")
		}
	}
	return nil
}

// PIN reads the secure element PIN from the configured environment variable.
func (s *SecureElementConfig) PIN() string {
	if s.PinEnv == "" {
		return ""
	}
	return os.Getenv(s.PinEnv)
}
