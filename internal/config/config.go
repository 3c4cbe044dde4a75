// Package config loads server configuration from an optional YAML file with
// environment variable overrides. Environment always wins over file values.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server binary needs to start.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Generator GeneratorConfig `yaml:"generator"`
	Session   SessionConfig   `yaml:"session"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`
	BaseURL string `yaml:"base_url"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type GeneratorConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type SessionConfig struct {
	Secret string `yaml:"secret"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	return Config{
		Server:    ServerConfig{Addr: ":8080", BaseURL: "http://localhost:8080"},
		Database:  DatabaseConfig{Path: "formflow.db"},
		Generator: GeneratorConfig{Model: "gemini-2.0-flash"},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist), then applies environment overrides, then validates.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setIfPresent(&cfg.Server.Addr, "FORMFLOW_ADDR")
	setIfPresent(&cfg.Server.BaseURL, "FORMFLOW_BASE_URL")
	setIfPresent(&cfg.Database.Path, "FORMFLOW_DB_PATH")
	setIfPresent(&cfg.Generator.APIKey, "GEMINI_API_KEY")
	setIfPresent(&cfg.Generator.Model, "FORMFLOW_MODEL")
	setIfPresent(&cfg.Session.Secret, "FORMFLOW_SESSION_SECRET")
	setIfPresent(&cfg.Logging.Level, "FORMFLOW_LOG_LEVEL")
}

func setIfPresent(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func (c Config) validate() error {
	if c.Server.Addr == "" {
		return errors.New("config: server addr must not be empty")
	}
	if c.Database.Path == "" {
		return errors.New("config: database path must not be empty")
	}
	if c.Session.Secret == "" {
		return errors.New("config: session secret must be set (FORMFLOW_SESSION_SECRET)")
	}
	return nil
}
