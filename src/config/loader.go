package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DIVEAGENT_"

// Loader loads and merges configuration from its sources.
type Loader struct {
	configPath string
	validator  *Validator
}

// NewLoader creates a loader reading the given config file path; "" means
// the default location.
func NewLoader(configPath string) *Loader {
	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	return &Loader{
		configPath: configPath,
		validator:  NewValidator(),
	}
}

// Load builds the effective configuration: defaults, then the config file
// if present, then environment overrides, then validation.
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	if fileCfg, err := l.loadFile(l.configPath); err == nil {
		config = mergeConfigs(config, fileCfg)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load config from %s: %w", l.configPath, err)
	}

	applyEnvironmentOverrides(config)

	if err := l.validator.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func (l *Loader) loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &config, nil
}

// mergeConfigs merges two configurations with the second taking precedence.
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.API.APIKey != "" {
		result.API.APIKey = override.API.APIKey
	}
	if override.API.BaseURL != "" {
		result.API.BaseURL = override.API.BaseURL
	}
	if override.API.Model != "" {
		result.API.Model = override.API.Model
	}
	if override.API.MaxTokens != 0 {
		result.API.MaxTokens = override.API.MaxTokens
	}
	if override.Store.Backend != "" {
		result.Store.Backend = override.Store.Backend
	}
	if override.Store.Path != "" {
		result.Store.Path = override.Store.Path
	}
	if override.Chat.MaxAttempts != 0 {
		result.Chat.MaxAttempts = override.Chat.MaxAttempts
	}
	if override.Chat.BaseDelayMS != 0 {
		result.Chat.BaseDelayMS = override.Chat.BaseDelayMS
	}
	if override.Pipeline.PollIntervalMS != 0 {
		result.Pipeline.PollIntervalMS = override.Pipeline.PollIntervalMS
	}
	if override.Pipeline.TimeoutMS != 0 {
		result.Pipeline.TimeoutMS = override.Pipeline.TimeoutMS
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}
	if override.Log.Format != "" {
		result.Log.Format = override.Log.Format
	}

	return &result
}

func applyEnvironmentOverrides(config *Config) {
	if v := os.Getenv(EnvPrefix + "API_KEY"); v != "" {
		config.API.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && config.API.APIKey == "" {
		config.API.APIKey = v
	}
	if v := os.Getenv(EnvPrefix + "BASE_URL"); v != "" {
		config.API.BaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "MODEL"); v != "" {
		config.API.Model = v
	}
	if v := os.Getenv(EnvPrefix + "STORE_BACKEND"); v != "" {
		config.Store.Backend = v
	}
	if v := os.Getenv(EnvPrefix + "STORE_PATH"); v != "" {
		config.Store.Path = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		config.Log.Format = v
	}
	if v := os.Getenv(EnvPrefix + "MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Chat.MaxAttempts = n
		}
	}
}
