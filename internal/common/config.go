package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	YouTube     YouTubeConfig    `toml:"youtube"`
	Transcript  TranscriptConfig `toml:"transcript"`
	Claude      ClaudeConfig     `toml:"claude"`
	Gemini      GeminiConfig     `toml:"gemini"`
	LLM         LLMConfig        `toml:"llm"`
	Detection   DetectionConfig  `toml:"detection"`
	Scheduler   SchedulerConfig  `toml:"scheduler"`
	Keywords    KeywordsConfig   `toml:"keywords"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// YouTubeConfig holds metadata API settings
type YouTubeConfig struct {
	APIKey                string  `toml:"api_key"`
	RequestsPerSecond     float64 `toml:"requests_per_second"`
	MaxPagesPerScan       int     `toml:"max_pages_per_scan"`
	PageSize              int     `toml:"page_size"`
	MinEpisodeDurationSec int     `toml:"min_episode_duration_sec"`
}

// TranscriptConfig holds transcript-extraction service settings
type TranscriptConfig struct {
	Token           string `toml:"token"`
	ActorID         string `toml:"actor_id"`
	BaseURL         string `toml:"base_url"`
	PollInterval    string `toml:"poll_interval"`     // e.g. "3s"
	MaxPollAttempts int    `toml:"max_poll_attempts"` // attempts before giving up on a run
	DatasetPageSize int    `toml:"dataset_page_size"`
	DatasetMaxItems int    `toml:"dataset_max_items"`
}

// ClaudeConfig contains Anthropic Claude API settings
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
}

// GeminiConfig contains Google Gemini API settings
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature"`
}

// LLMConfig selects the classification provider
type LLMConfig struct {
	DefaultProvider string `toml:"default_provider"` // "claude" or "gemini"
}

// DetectionConfig tunes the keyword matcher
type DetectionConfig struct {
	WindowSeconds int `toml:"window_seconds"`
	MaxMatches    int `toml:"max_matches"`
}

// SchedulerConfig controls the cron-driven source scanning
type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // cron format, e.g. "*/30 * * * *"
}

// KeywordsConfig points at an optional seed file for the keyword store
type KeywordsConfig struct {
	SeedFile string `toml:"seed_file"` // optional YAML keyword seed, loaded once on startup
}

// DefaultConfig returns the configuration defaults applied before file and
// environment overrides.
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/ausculto.db",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		YouTube: YouTubeConfig{
			RequestsPerSecond:     10,
			MaxPagesPerScan:       3,
			PageSize:              50,
			MinEpisodeDurationSec: 120,
		},
		Transcript: TranscriptConfig{
			BaseURL:         "https://api.apify.com/v2",
			ActorID:         "pintostudio~youtube-transcript-scraper",
			PollInterval:    "3s",
			MaxPollAttempts: 60,
			DatasetPageSize: 500,
			DatasetMaxItems: 10000,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   2048,
			Temperature: 0.2,
			Timeout:     "60s",
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			Temperature: 0.2,
		},
		LLM: LLMConfig{
			DefaultProvider: "claude",
		},
		Detection: DetectionConfig{
			WindowSeconds: 45,
			MaxMatches:    30,
		},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Schedule: "*/30 * * * *",
		},
	}
}

// LoadConfig loads configuration in priority order:
// defaults -> config files (later files override earlier) -> environment.
func LoadConfig(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies AUSCULTO_* environment variables over file config.
// Provider API keys also honor their conventional variable names.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AUSCULTO_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("AUSCULTO_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("AUSCULTO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("AUSCULTO_STORAGE_PATH"); v != "" {
		cfg.Storage.Badger.Path = v
	}
	if v := firstEnv("AUSCULTO_YOUTUBE_API_KEY", "YOUTUBE_API_KEY"); v != "" {
		cfg.YouTube.APIKey = v
	}
	if v := firstEnv("AUSCULTO_TRANSCRIPT_TOKEN", "APIFY_TOKEN", "APIFY_API_TOKEN"); v != "" {
		cfg.Transcript.Token = v
	}
	if v := firstEnv("AUSCULTO_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"); v != "" {
		cfg.Claude.APIKey = v
	}
	if v := firstEnv("AUSCULTO_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("AUSCULTO_LLM_PROVIDER"); v != "" {
		cfg.LLM.DefaultProvider = v
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Validate verifies configuration invariants that are fatal at process start
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Storage.Badger.Path == "" {
		return fmt.Errorf("storage path is required")
	}
	if c.Detection.WindowSeconds <= 0 {
		return fmt.Errorf("detection window_seconds must be positive, got %d", c.Detection.WindowSeconds)
	}
	if c.Detection.MaxMatches <= 0 {
		return fmt.Errorf("detection max_matches must be positive, got %d", c.Detection.MaxMatches)
	}
	if c.LLM.DefaultProvider != "claude" && c.LLM.DefaultProvider != "gemini" {
		return fmt.Errorf("invalid llm default_provider '%s': must be 'claude' or 'gemini'", c.LLM.DefaultProvider)
	}
	return nil
}
