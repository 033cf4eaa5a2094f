package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/trickle"
)

// environment holds the environment variables main reads.
type environment struct {
	Endpoint  string
	APIKey    string
	Model     string
	GeminiKey string
}

// overrides holds persistent flag values. Empty means unset.
type overrides struct {
	ConfigPath string
	Endpoint   string
	Model      string
	APIKey     string
	Provider   string
	Store      string
}

// resolveConfig layers env and flags over the settings file and fills in
// paths under home.
func resolveConfig(file trickle.Config, env environment, flags overrides, home string) trickle.Config {
	cfg := file
	set := func(dst *string, vals ...string) {
		for _, v := range vals {
			if v != "" {
				*dst = v
			}
		}
	}
	set(&cfg.Endpoint, env.Endpoint, flags.Endpoint)
	set(&cfg.Model, env.Model, flags.Model)
	set(&cfg.Provider, flags.Provider)
	set(&cfg.StoreDriver, flags.Store)

	if cfg.Provider == trickle.ProviderGemini {
		set(&cfg.APIKey, env.GeminiKey)
		// Proxy model IDs mean nothing to the Gemini API.
		if strings.HasPrefix(cfg.Model, "claude") {
			cfg.Model = ""
		}
	}
	set(&cfg.APIKey, env.APIKey, flags.APIKey)

	dir := dataDir(home)
	if cfg.StorePath == "" {
		name := "conversations.json"
		if cfg.StoreDriver == trickle.StoreSQLite {
			name = "trickle.db"
		}
		cfg.StorePath = filepath.Join(dir, name)
	}
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(dir, "trickle.log")
	}
	return cfg
}

func dataDir(home string) string {
	return filepath.Join(home, ".trickle")
}

func defaultConfigPath(home string) string {
	return filepath.Join(dataDir(home), "config.toml")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
