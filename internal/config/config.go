// Package config provides configuration types, defaults and loading for richprompt.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/boolean-maybe/richprompt/expand"
	"github.com/boolean-maybe/richprompt/richprompt"
)

// EnvPrefix prefixes environment overrides: RICHPROMPT_PREVIEW_URL, ...
const EnvPrefix = "RICHPROMPT"

// Config holds all configuration options.
type Config struct {
	WildcardDir     string             `mapstructure:"wildcard_dir" yaml:"wildcard_dir"`
	RefreshInterval time.Duration      `mapstructure:"refresh_interval" yaml:"refresh_interval"`
	Tags            TagsConfig         `mapstructure:"tags" yaml:"tags"`
	Preview         PreviewConfig      `mapstructure:"preview" yaml:"preview"`
	Log             LogConfig          `mapstructure:"log" yaml:"log"`
	Zoom            ZoomConfig         `mapstructure:"zoom" yaml:"zoom"`
	Palette         richprompt.Palette `mapstructure:"palette" yaml:"palette"`
	Expand          expand.Options     `mapstructure:"expand" yaml:"expand"`
}

// TagsConfig says where known inline tag names come from. Both may be set;
// the lists are merged.
type TagsConfig struct {
	File string `mapstructure:"file" yaml:"file"`
	URL  string `mapstructure:"url" yaml:"url"`
}

// PreviewConfig configures hover previews.
type PreviewConfig struct {
	URL      string        `mapstructure:"url" yaml:"url"`
	Delay    time.Duration `mapstructure:"delay" yaml:"delay"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// LogConfig configures the log file.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Debug bool   `mapstructure:"debug" yaml:"debug"`
}

// ZoomConfig bounds the display scale.
type ZoomConfig struct {
	Min float64 `mapstructure:"min" yaml:"min"`
	Max float64 `mapstructure:"max" yaml:"max"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		WildcardDir:     "wildcards",
		RefreshInterval: 30 * time.Second,
		Preview: PreviewConfig{
			Delay:    richprompt.DefaultPreviewDelay,
			Timeout:  5 * time.Second,
			CacheTTL: 10 * time.Minute,
		},
		Zoom: ZoomConfig{
			Min: richprompt.DefaultZoomMin,
			Max: richprompt.DefaultZoomMax,
		},
		Palette: richprompt.DefaultPalette(),
		Expand:  expand.DefaultOptions(),
	}
}

// SetDefaults registers every default with v so env and flag overrides work on
// keys missing from the file.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("wildcard_dir", d.WildcardDir)
	v.SetDefault("refresh_interval", d.RefreshInterval)
	v.SetDefault("tags.file", d.Tags.File)
	v.SetDefault("tags.url", d.Tags.URL)
	v.SetDefault("preview.url", d.Preview.URL)
	v.SetDefault("preview.delay", d.Preview.Delay)
	v.SetDefault("preview.timeout", d.Preview.Timeout)
	v.SetDefault("preview.cache_ttl", d.Preview.CacheTTL)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("zoom.min", d.Zoom.Min)
	v.SetDefault("zoom.max", d.Zoom.Max)

	p := d.Palette
	for key, value := range map[string]string{
		"comment_large":  p.CommentLarge,
		"comment_medium": p.CommentMedium,
		"comment_small":  p.CommentSmall,
		"wildcard":       p.Wildcard,
		"unresolved":     p.Unresolved,
		"lora":           p.Lora,
		"lyco":           p.Lyco,
		"hypernet":       p.Hypernet,
		"weight":         p.Weight,
		"paren":          p.Paren,
		"combo":          p.Combo,
		"punctuation":    p.Punctuation,
	} {
		v.SetDefault("palette."+key, value)
	}

	e := d.Expand
	v.SetDefault("expand.trim_whitespace", e.TrimWhitespace)
	v.SetDefault("expand.suffix", e.Suffix)
	v.SetDefault("expand.single_line", e.SingleLine)
	v.SetDefault("expand.remove_empty_tags", e.RemoveEmptyTags)
}

// Load reads configuration into a Config. cfgFile may be empty, in which case
// ./.richprompt.yaml and ~/.config/richprompt/config.yaml are tried. A missing
// file is not an error.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".richprompt")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "richprompt"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(cfgFile != "" && os.IsNotExist(err)) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Palette = cfg.Palette.Merge(richprompt.DefaultPalette())
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Zoom.Min <= 0 || c.Zoom.Max < c.Zoom.Min {
		return fmt.Errorf("zoom range [%g, %g] is invalid", c.Zoom.Min, c.Zoom.Max)
	}
	if c.Preview.Delay < 0 {
		return fmt.Errorf("preview.delay must not be negative, got %s", c.Preview.Delay)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval must not be negative, got %s", c.RefreshInterval)
	}
	return nil
}

// WriteDefault writes the default configuration as YAML to path, creating its
// directory. An existing file is left alone.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	header := "# richprompt configuration\n# Durations use Go syntax (1s, 500ms). Environment overrides: " + EnvPrefix + "_<KEY>.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
