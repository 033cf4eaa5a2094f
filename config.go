package trickle

import (
	"fmt"
	"net/url"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Store drivers accepted in Config.StoreDriver.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Config holds user settings. Zero fields are filled by DefaultConfig
// values when loaded through the toml package.
type Config struct {
	UserName    string `toml:"user_name"`
	Provider    string `toml:"provider"`
	Endpoint    string `toml:"endpoint"`
	APIKey      string `toml:"api_key"`
	Model       string `toml:"model"`
	MaxTokens   int    `toml:"max_tokens"`
	StoreDriver string `toml:"store_driver"`
	StorePath   string `toml:"store_path"`
	LogLevel    string `toml:"log_level"`
	LogPath     string `toml:"log_path"`
	TickMillis  int    `toml:"tick_ms"`
}

// DefaultConfig returns settings for a proxy on the local machine.
// Paths are left empty; the caller resolves them against the home directory.
func DefaultConfig() Config {
	return Config{
		Provider:    ProviderAnthropic,
		Endpoint:    "http://localhost:8080",
		APIKey:      "test",
		Model:       DefaultModel,
		MaxTokens:   16384,
		StoreDriver: StoreJSON,
		LogLevel:    "info",
		TickMillis:  16,
	}
}

// TickInterval returns the reveal tick as a duration.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickMillis) * time.Millisecond
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic:
		u, err := url.Parse(c.Endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("endpoint %q is not an absolute URL: %w", c.Endpoint, ErrValidation)
		}
	case ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("gemini provider needs an API key: %w", ErrValidation)
		}
	default:
		return fmt.Errorf("unknown provider %q: must be %q or %q: %w", c.Provider, ProviderAnthropic, ProviderGemini, ErrValidation)
	}
	switch c.StoreDriver {
	case StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("unknown store driver %q: must be %q or %q: %w", c.StoreDriver, StoreJSON, StoreSQLite, ErrValidation)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d: %w", c.MaxTokens, ErrValidation)
	}
	if c.TickMillis <= 0 {
		return fmt.Errorf("tick_ms must be positive, got %d: %w", c.TickMillis, ErrValidation)
	}
	return nil
}
