// Package config provides Viper-based hierarchical configuration management.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Data struct {
		Directory    string `mapstructure:"directory" yaml:"directory"`
		DatabaseFile string `mapstructure:"database_file" yaml:"database_file"`
	} `mapstructure:"data" yaml:"data"`

	AI struct {
		Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Categorization struct {
		RulesFile       string `mapstructure:"rules_file" yaml:"rules_file"`
		CacheTTLMinutes int    `mapstructure:"cache_ttl_minutes" yaml:"cache_ttl_minutes"`
		AutoLearn       bool   `mapstructure:"auto_learn" yaml:"auto_learn"`
	} `mapstructure:"categorization" yaml:"categorization"`

	PDF struct {
		PdftotextPath string `mapstructure:"pdftotext_path" yaml:"pdftotext_path"`
	} `mapstructure:"pdf" yaml:"pdf"`
}

// Load initializes Viper configuration with hierarchical loading:
// defaults, then an optional config file, then FINLEDGER_* environment
// variables. A .env file in the working directory is honored first.
func Load() (*Config, error) {
	// Best effort: absence of a .env file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.finledger")
	v.AddConfigPath(".finledger")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FINLEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("data.directory", ".")
	v.SetDefault("data.database_file", "finledger.db")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-1.5-flash")
	v.SetDefault("ai.timeout_seconds", 30)
	// Registered so the FINLEDGER_AI_API_KEY override reaches Unmarshal.
	v.SetDefault("ai.api_key", "")

	v.SetDefault("categorization.rules_file", "")
	v.SetDefault("categorization.cache_ttl_minutes", 60)
	v.SetDefault("categorization.auto_learn", true)

	v.SetDefault("pdf.pdftotext_path", "pdftotext")
}
