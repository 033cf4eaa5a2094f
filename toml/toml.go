// Package toml reads and writes [trickle.Config] as a TOML settings file.
package toml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/trickle"
)

const header = "# trickle configuration\n# Values here are overridden by environment variables and flags.\n\n"

// Load reads the settings file at path on top of trickle.DefaultConfig.
// A missing file yields the defaults. Unknown keys are an error so typos
// do not go unnoticed.
func Load(path string) (trickle.Config, error) {
	cfg := trickle.DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return trickle.DefaultConfig(), nil
	}
	if err != nil {
		return trickle.Config{}, fmt.Errorf("toml: decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return trickle.Config{}, fmt.Errorf("toml: %s: unknown keys %s: %w", path, strings.Join(keys, ", "), trickle.ErrValidation)
	}
	return cfg, nil
}

// Write encodes cfg to w with a header comment.
func Write(w io.Writer, cfg trickle.Config) error {
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("toml: write: %w", err)
	}
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("toml: encode: %w", err)
	}
	return nil
}

// Save writes cfg to path with owner-only permissions, replacing the file
// atomically.
func Save(path string, cfg trickle.Config) error {
	var buf bytes.Buffer
	if err := Write(&buf, cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("toml: create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("toml: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("toml: rename temp file: %w", err)
	}
	return nil
}
