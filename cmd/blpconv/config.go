package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cocosip/go-blp-codec/codec"
)

type OutputConfig struct {
	Format    string `toml:"format"` // png, bmp or tiff
	Dir       string `toml:"dir"`
	WantAlpha bool   `toml:"want_alpha"`
	MaxLevels int    `toml:"max_levels"` // 0 = every stored level
}

type WatchConfig struct {
	Dirs         []string `toml:"dirs"`
	PollInterval int      `toml:"poll_interval"` // seconds, 0 disables polling
	DebounceMs   int      `toml:"debounce_ms"`   // 0 = default (500ms)
}

func (w WatchConfig) PollDuration() time.Duration {
	if w.PollInterval > 0 {
		return time.Duration(w.PollInterval) * time.Second
	}
	return 0
}

func (w WatchConfig) Debounce() time.Duration {
	if w.DebounceMs > 0 {
		return time.Duration(w.DebounceMs) * time.Millisecond
	}
	return 500 * time.Millisecond
}

type Config struct {
	Output OutputConfig `toml:"output"`
	Watch  WatchConfig  `toml:"watch"`
}

func defaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format:    "png",
			WantAlpha: true,
		},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config %s: unknown key %s", path, undecoded[0])
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate normalises the output format and checks the level cap
func (c *Config) Validate() error {
	c.Output.Format = strings.ToLower(strings.TrimPrefix(c.Output.Format, "."))
	switch c.Output.Format {
	case "png", "bmp", "tiff":
	case "tif":
		c.Output.Format = "tiff"
	default:
		return fmt.Errorf("unsupported output format %q (want png, bmp or tiff)", c.Output.Format)
	}

	opts := c.DecodeOptions()
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("max_levels %d: %w", c.Output.MaxLevels, err)
	}
	return nil
}

// DecodeOptions returns the codec options selected by the output section
func (c *Config) DecodeOptions() *codec.DecodeOptions {
	return &codec.DecodeOptions{
		WantAlpha: c.Output.WantAlpha,
		MaxLevels: c.Output.MaxLevels,
	}
}
