package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boolean-maybe/richprompt/richprompt"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
wildcard_dir: /data/wildcards
preview:
  url: http://127.0.0.1:8188
  delay: 250ms
palette:
  wildcard: "color: teal"
expand:
  single_line: false
  suffix: ","
`), 0o600))
	t.Setenv("RICHPROMPT_TAGS_URL", "http://tags.local/list")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "/data/wildcards", cfg.WildcardDir)
	assert.Equal(t, "http://127.0.0.1:8188", cfg.Preview.URL)
	assert.Equal(t, 250*time.Millisecond, cfg.Preview.Delay)
	assert.Equal(t, 5*time.Second, cfg.Preview.Timeout)
	assert.Equal(t, "http://tags.local/list", cfg.Tags.URL)
	assert.Equal(t, "color: teal", cfg.Palette.Wildcard)
	assert.Equal(t, richprompt.DefaultPalette().Lora, cfg.Palette.Lora)
	assert.False(t, cfg.Expand.SingleLine)
	assert.Equal(t, ",", cfg.Expand.Suffix)
	assert.True(t, cfg.Expand.RemoveEmptyTags)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	cfg, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "wildcards", cfg.WildcardDir)
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zoom:\n  min: 2\n  max: 1\n"), 0o600))

	_, err := Load(viper.New(), path)
	assert.ErrorContains(t, err, "zoom range")

	require.NoError(t, os.WriteFile(path, []byte("wildcard_dir: [unclosed\n"), 0o600))
	_, err = Load(viper.New(), path)
	assert.ErrorContains(t, err, "reading config")
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	cfg.Preview.Delay = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.RefreshInterval = -1
	assert.Error(t, cfg.Validate())
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)

	assert.ErrorContains(t, WriteDefault(path), "already exists")
}
