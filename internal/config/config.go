// Package config loads anuvad settings from flags, environment and an
// optional YAML file through viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "ANUVAD"

type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Server      ServerConfig      `mapstructure:"server"`
	Document    DocumentConfig    `mapstructure:"document"`
	Translation TranslationConfig `mapstructure:"translation"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Voice       VoiceConfig       `mapstructure:"voice"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       int           `mapstructure:"rate_limit"`
	RateWindow      time.Duration `mapstructure:"rate_window"`
	// SessionTTL evicts document sessions idle for longer; zero keeps them
	// until deleted.
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	MaxSessions int           `mapstructure:"max_sessions"`
}

type DocumentConfig struct {
	// Backend is "stub" (simulated latency, echoes content) or "service"
	// (chunks the text through the configured translation services).
	Backend          string        `mapstructure:"backend"`
	SimulatedLatency time.Duration `mapstructure:"simulated_latency"`
	OutputDir        string        `mapstructure:"output_dir"`
	ChunkSize        int           `mapstructure:"chunk_size"`
}

type TranslationConfig struct {
	Services      []string      `mapstructure:"services"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MyMemoryEmail string        `mapstructure:"mymemory_email"`
	MyMemoryURL   string        `mapstructure:"mymemory_url"`
	Credentials   string        `mapstructure:"credentials"`
	ProjectID     string        `mapstructure:"project_id"`
	OllamaURL     string        `mapstructure:"ollama_url"`
	OllamaModels  []string      `mapstructure:"ollama_models"`
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type VoiceConfig struct {
	// Transcript, when set, is returned by the stub recognizer instead of
	// reading the uploaded payload as text.
	Transcript string `mapstructure:"transcript"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("server.rate_window", time.Minute)
	v.SetDefault("server.session_ttl", 30*time.Minute)
	v.SetDefault("server.max_sessions", 1000)

	v.SetDefault("document.backend", "stub")
	v.SetDefault("document.simulated_latency", 2500*time.Millisecond)
	v.SetDefault("document.output_dir", ".")
	v.SetDefault("document.chunk_size", 450)

	v.SetDefault("translation.services", []string{"mymemory"})
	v.SetDefault("translation.timeout", 30*time.Second)
	v.SetDefault("translation.ollama_url", "http://localhost:11434")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "./data/anuvad.db")
}

// New returns a viper instance with defaults and environment binding
// (ANUVAD_DOCUMENT_BACKEND overrides document.backend).
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Document.Backend {
	case "stub", "service":
	default:
		return fmt.Errorf("document.backend must be \"stub\" or \"service\", got %q", c.Document.Backend)
	}
	if c.Document.SimulatedLatency < 0 {
		return fmt.Errorf("document.simulated_latency must be >= 0")
	}
	if c.Document.ChunkSize < 1 {
		return fmt.Errorf("document.chunk_size must be >= 1")
	}
	if len(c.Translation.Services) == 0 {
		return fmt.Errorf("translation.services must name at least one service")
	}
	if c.Translation.Timeout <= 0 {
		return fmt.Errorf("translation.timeout must be > 0")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must be >= 0")
	}
	if c.Server.RateLimit > 0 && c.Server.RateWindow <= 0 {
		return fmt.Errorf("server.rate_window must be > 0 when rate limiting is enabled")
	}
	if c.Server.SessionTTL < 0 {
		return fmt.Errorf("server.session_ttl must be >= 0")
	}
	if c.Server.MaxSessions < 0 {
		return fmt.Errorf("server.max_sessions must be >= 0")
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Path) == "" {
		return fmt.Errorf("cache.path is required when the cache is enabled")
	}
	return nil
}
