package toml_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/trickle"
	"github.com/fwojciec/trickle/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := toml.Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, trickle.DefaultConfig(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
user_name = "Sam"
model = "gemini-2.5-pro"
tick_ms = 20
store_driver = "sqlite"
`), 0o600))

	cfg, err := toml.Load(path)
	require.NoError(t, err)

	want := trickle.DefaultConfig()
	want.UserName = "Sam"
	want.Model = "gemini-2.5-pro"
	want.TickMillis = 20
	want.StoreDriver = trickle.StoreSQLite
	assert.Equal(t, want, cfg)
}

func TestLoad_UnknownKey(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("modle = \"x\"\n"), 0o600))

	_, err := toml.Load(path)
	assert.ErrorIs(t, err, trickle.ErrValidation)
	assert.ErrorContains(t, err, "modle")
}

func TestLoad_Malformed(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("model = \n"), 0o600))

	_, err := toml.Load(path)
	assert.ErrorContains(t, err, "toml: decode")
}

func TestSave_RoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := trickle.DefaultConfig()
	cfg.UserName = "Ada"
	cfg.Endpoint = "http://127.0.0.1:9000"

	require.NoError(t, toml.Save(path, cfg))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := toml.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestWrite(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, toml.Write(&buf, trickle.DefaultConfig()))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# trickle configuration"))
	assert.Contains(t, out, `model = "claude-sonnet-4-5-thinking"`)
	assert.Contains(t, out, "tick_ms = 16")
}
