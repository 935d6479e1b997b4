// Package config loads FocusBoard settings from a YAML file, a .env file and
// the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tgienger/focusboard/internal/retry"
)

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type AuthConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

type AttachmentConfig struct {
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
	// Backoff is "constant" or "exponential"
	Backoff  string        `yaml:"backoff"`
	MaxDelay time.Duration `yaml:"max_delay"`
}

type VideoConfig struct {
	YTDLPPath       string      `yaml:"ytdlp_path"`
	CaptionLanguage string      `yaml:"caption_language"`
	Retry           RetryConfig `yaml:"retry"`
}

type SummarizerConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

type Config struct {
	DataDir     string           `yaml:"data_dir"`
	Log         LogConfig        `yaml:"log"`
	Auth        AuthConfig       `yaml:"auth"`
	Categories  []string         `yaml:"categories"`
	Attachments AttachmentConfig `yaml:"attachments"`
	Video       VideoConfig      `yaml:"video"`
	Summarizer  SummarizerConfig `yaml:"summarizer"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Log:     LogConfig{Level: "info", File: "focusboard.log"},
		Auth:    AuthConfig{BcryptCost: 10},
		Attachments: AttachmentConfig{
			AllowedExtensions: []string{"pdf", "txt", "png", "jpg", "jpeg"},
		},
		Video: VideoConfig{
			YTDLPPath:       "yt-dlp",
			CaptionLanguage: "en",
			Retry: RetryConfig{
				MaxAttempts: 3,
				Delay:       2 * time.Second,
				Backoff:     "constant",
				MaxDelay:    30 * time.Second,
			},
		},
		Summarizer: SummarizerConfig{
			Endpoint: "https://generativelanguage.googleapis.com/v1beta",
			Model:    "gemini-1.5-flash-latest",
			Timeout:  60 * time.Second,
		},
	}
}

// Load reads path (or the default location when path is empty) on top of the
// defaults. A missing default file is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to decode %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("failed to open config: %w", err)
		}
	}

	overrideFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideFromEnv(cfg *Config) {
	if dir := os.Getenv("FOCUSBOARD_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if level := os.Getenv("FOCUSBOARD_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if ytdlp := os.Getenv("FOCUSBOARD_YTDLP"); ytdlp != "" {
		cfg.Video.YTDLPPath = ytdlp
	}
	if cost := os.Getenv("FOCUSBOARD_BCRYPT_COST"); cost != "" {
		if c, err := strconv.Atoi(cost); err == nil {
			cfg.Auth.BcryptCost = c
		}
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		cfg.Summarizer.APIKey = key
	}
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	if c.Video.Retry.MaxAttempts < 1 {
		return fmt.Errorf("video.retry.max_attempts must be at least 1")
	}
	switch c.Video.Retry.Backoff {
	case "constant", "exponential":
	default:
		return fmt.Errorf("unknown backoff %q", c.Video.Retry.Backoff)
	}
	if c.Summarizer.Timeout <= 0 {
		return fmt.Errorf("summarizer.timeout must be positive")
	}
	return nil
}

// Policy builds the retry policy for video processing
func (r RetryConfig) Policy() retry.Policy {
	backoff := retry.Constant(r.Delay)
	if r.Backoff == "exponential" {
		backoff = retry.Exponential(r.Delay, r.MaxDelay)
	}
	return retry.Policy{MaxAttempts: r.MaxAttempts, Backoff: backoff}
}

// AllCategories returns the built-in categories followed by configured extras
func (c *Config) AllCategories(builtin []string) []string {
	out := append([]string{}, builtin...)
	seen := make(map[string]bool, len(out))
	for _, cat := range out {
		seen[cat] = true
	}
	for _, cat := range c.Categories {
		if cat != "" && !seen[cat] {
			out = append(out, cat)
			seen[cat] = true
		}
	}
	return out
}

// UsersFile is the credential table location
func (c *Config) UsersFile() string {
	return filepath.Join(c.DataDir, "users", "users.json")
}

// ProjectsDir holds one directory per project
func (c *Config) ProjectsDir() string {
	return filepath.Join(c.DataDir, "project_data")
}

// DatabaseFile is the SQLite settings database
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "focusboard.db")
}

// LogFile resolves the log file relative to the data directory
func (c *Config) LogFile() string {
	if c.Log.File == "" || filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, c.Log.File)
}

// DefaultPath is $XDG_CONFIG_HOME/focusboard/config.yaml
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "focusboard", "config.yaml")
}

func defaultDataDir() string {
	// Use XDG data directory or fallback to home directory
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "focusboard-data"
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "focusboard")
}
