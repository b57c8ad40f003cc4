package config

import (
	"fmt"
	"os"
	"time"

	"voicenote-service/internal/llm"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Log struct {
		Format string `yaml:"format"` // "console" or "json"
	} `yaml:"log"`

	Storage struct {
		Driver string `yaml:"driver"` // "bolt", "sqlite" or "postgres"
		Path   string `yaml:"path"`   // file path for bolt/sqlite, URL for postgres
	} `yaml:"storage"`

	// Multiple providers configuration
	Providers []llm.ProviderConfig `yaml:"providers"`

	// Single provider config, used when providers is empty
	Gemini struct {
		APIKey    string `yaml:"api_key"`
		ModelName string `yaml:"model_name"`
	} `yaml:"gemini"`

	MaxFailuresBeforeSwitch int `yaml:"max_failures_before_switch"`

	LLM struct {
		RequestTimeout    time.Duration `yaml:"request_timeout"`
		RequestsPerMinute int           `yaml:"requests_per_minute"`
	} `yaml:"llm"`

	Session struct {
		JWTSecret        string        `yaml:"jwt_secret"`
		TokenTTL         time.Duration `yaml:"token_ttl"`
		RevokedCacheSize int           `yaml:"revoked_cache_size"`
	} `yaml:"session"`

	Recorder struct {
		MaxDuration time.Duration `yaml:"max_duration"`
		ChunkSize   int           `yaml:"chunk_size"`
	} `yaml:"recorder"`

	Locale   string `yaml:"locale"`
	Timezone string `yaml:"timezone"`

	Notify struct {
		Telegram struct {
			Enabled  bool   `yaml:"enabled"`
			BotToken string `yaml:"bot_token"`
			ChatID   int64  `yaml:"chat_id"`
		} `yaml:"telegram"`
	} `yaml:"notify"`
}

// LoadConfig loads configuration from YAML file.
// A .env file next to the working directory is loaded first if present.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()

	config.expandEnv()

	if _, err := config.Location(); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns a config with every default applied, for running without a file
func Default() *Config {
	_ = godotenv.Load()

	c := &Config{}
	c.Gemini.APIKey = "${GEMINI_API_KEY}"
	c.applyDefaults()
	c.expandEnv()
	return c
}

// expandEnv expands ${VAR} references in secrets and paths
func (c *Config) expandEnv() {
	for i := range c.Providers {
		c.Providers[i].APIKey = os.ExpandEnv(c.Providers[i].APIKey)
	}
	c.Gemini.APIKey = os.ExpandEnv(c.Gemini.APIKey)
	c.Session.JWTSecret = os.ExpandEnv(c.Session.JWTSecret)
	c.Notify.Telegram.BotToken = os.ExpandEnv(c.Notify.Telegram.BotToken)
	c.Storage.Path = os.ExpandEnv(c.Storage.Path)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}

	if c.Log.Format == "" {
		c.Log.Format = "console"
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = "bolt"
	}

	if c.Storage.Path == "" {
		switch c.Storage.Driver {
		case "sqlite":
			c.Storage.Path = "./data/voicenotes.db"
		default:
			c.Storage.Path = "./data/voicenotes.bolt"
		}
	}

	if c.Gemini.ModelName == "" {
		c.Gemini.ModelName = "gemini-2.0-flash"
	}

	if c.MaxFailuresBeforeSwitch == 0 {
		c.MaxFailuresBeforeSwitch = 3
	}

	if c.LLM.RequestTimeout == 0 {
		c.LLM.RequestTimeout = 90 * time.Second
	}

	if c.LLM.RequestsPerMinute == 0 {
		c.LLM.RequestsPerMinute = 10
	}

	if c.Session.JWTSecret == "" {
		c.Session.JWTSecret = "${VOICENOTES_JWT_SECRET}"
	}

	if c.Session.TokenTTL == 0 {
		c.Session.TokenTTL = 30 * 24 * time.Hour
	}

	if c.Session.RevokedCacheSize == 0 {
		c.Session.RevokedCacheSize = 1024
	}

	if c.Recorder.MaxDuration == 0 {
		c.Recorder.MaxDuration = 10 * time.Minute
	}

	if c.Recorder.ChunkSize == 0 {
		c.Recorder.ChunkSize = 32 * 1024
	}

	if c.Locale == "" {
		c.Locale = "en"
	}

	if c.Timezone == "" {
		c.Timezone = "Local"
	}
}

// Location resolves the configured time zone used for calendar-day grouping
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
