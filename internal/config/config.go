package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kikiluvv/ezcrop/internal/crop"
)

type contextKey string

const configKey contextKey = "config"

// Environment overrides, applied after the config file.
const (
	EnvFFmpegPath      = "EZCROP_FFMPEG_PATH"
	EnvFFprobePath     = "EZCROP_FFPROBE_PATH"
	EnvPreviewMaxWidth = "EZCROP_PREVIEW_MAX_WIDTH"
)

// Config holds all application configuration
type Config struct {
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Editor  EditorConfig  `yaml:"editor"`
	Window  WindowConfig  `yaml:"window"`
	Preview PreviewConfig `yaml:"preview"`
}

type FFmpegConfig struct {
	BinaryPath  string `yaml:"binary_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	Threads     int    `yaml:"threads"`
	AudioCodec  string `yaml:"audio_codec"`
}

// EditorConfig sizes the crop overlay's grab areas, in display units.
type EditorConfig struct {
	CornerSize    float64 `yaml:"corner_size"`
	EdgeMargin    float64 `yaml:"edge_margin"`
	DefaultPreset string  `yaml:"default_preset"`
}

type WindowConfig struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// PreviewConfig bounds decoded preview frames. 0 keeps the native width.
type PreviewConfig struct {
	MaxWidth int `yaml:"max_width"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the editor or encoder cannot use.
func (c *Config) Validate() error {
	if c.FFmpeg.Threads < 0 {
		return fmt.Errorf("ffmpeg.threads must not be negative, got %d", c.FFmpeg.Threads)
	}
	if c.Editor.CornerSize <= 0 || c.Editor.EdgeMargin <= 0 {
		return fmt.Errorf("editor.corner_size and editor.edge_margin must be positive")
	}
	if _, ok := crop.LookupPreset(c.Editor.DefaultPreset); !ok {
		return fmt.Errorf("unknown editor.default_preset %q", c.Editor.DefaultPreset)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive")
	}
	if c.Preview.MaxWidth < 0 {
		return fmt.Errorf("preview.max_width must not be negative, got %d", c.Preview.MaxWidth)
	}
	return nil
}

// Metrics returns the overlay metrics for the crop editor.
func (c *Config) Metrics() crop.Metrics {
	return crop.Metrics{CornerSize: c.Editor.CornerSize, EdgeMargin: c.Editor.EdgeMargin}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvFFmpegPath); v != "" {
		c.FFmpeg.BinaryPath = v
	}
	if v := os.Getenv(EnvFFprobePath); v != "" {
		c.FFmpeg.FFprobePath = v
	}
	if v := os.Getenv(EnvPreviewMaxWidth); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPreviewMaxWidth, err)
		}
		c.Preview.MaxWidth = n
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		FFmpeg: FFmpegConfig{
			BinaryPath:  "ffmpeg",
			FFprobePath: "ffprobe",
			Threads:     0,
			AudioCodec:  "copy",
		},
		Editor: EditorConfig{
			CornerSize:    crop.DefaultMetrics.CornerSize,
			EdgeMargin:    crop.DefaultMetrics.EdgeMargin,
			DefaultPreset: crop.Presets[0].Name,
		},
		Window: WindowConfig{
			Width:  1000,
			Height: 700,
		},
		Preview: PreviewConfig{
			MaxWidth: 1280,
		},
	}
}

// DefaultPath is where `config init` writes.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".ezcrop", "config.yaml")
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		DefaultPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
