// Package config 读取命令行工具的 YAML 配置。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration of a layout run.
type Config struct {
	// Edition is the path of the edition YAML file.
	Edition string `yaml:"edition"`
	// Stylesheet is an optional style sheet; the built-in sheet is used when empty.
	Stylesheet string `yaml:"stylesheet"`
	// FallbackFont replaces Latin Modern Roman for undeclared families.
	FallbackFont string          `yaml:"fallbackFont"`
	Output       OutputConfig    `yaml:"output"`
	Page         PageConfig      `yaml:"page"`
	Linebreak    LinebreakConfig `yaml:"linebreak"`
	Window       WindowConfig    `yaml:"window"`
	Log          LogConfig       `yaml:"log"`
	Watch        WatchConfig     `yaml:"watch"`

	dir string
}

// OutputConfig names the generated files.
type OutputConfig struct {
	PDF string `yaml:"pdf"`
	// Debug, when set, receives the paginated document and apparatus as JSON.
	Debug string `yaml:"debug"`
}

// PageConfig is the proof page geometry in mm.
type PageConfig struct {
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	Margin    float64 `yaml:"margin"`
	NoteWidth float64 `yaml:"noteWidth"`
}

// LinebreakConfig configures the main-text line breaker.
type LinebreakConfig struct {
	// Width overrides the measure in pt; the page text column is used when 0.
	Width        float64 `yaml:"width"`
	LinesPerPage int     `yaml:"linesPerPage"`
	Merge        bool    `yaml:"merge"`
}

// WindowConfig selects the lines of each page covered by its apparatus.
type WindowConfig struct {
	// RelativeNumbers labels apparatus lines relative to the page.
	RelativeNumbers bool `yaml:"relativeNumbers"`
}

// LogConfig configures slog output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns a configuration with defaults filled in.
func Default() *Config {
	return &Config{
		Output:    OutputConfig{PDF: "output/edition.pdf"},
		Page:      PageConfig{Width: 210, Height: 297, Margin: 20, NoteWidth: 30},
		Linebreak: LinebreakConfig{LinesPerPage: 30},
		Log:       LogConfig{Level: "info", Format: "text"},
		Watch:     WatchConfig{Debounce: 200 * time.Millisecond},
	}
}

// Load reads a YAML configuration; unset fields keep their defaults.
// Relative paths are resolved against the directory of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置 %s 失败: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置 %s 失败: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Edition == "" {
		return fmt.Errorf("config: edition is required")
	}
	if c.Linebreak.LinesPerPage < 0 {
		return fmt.Errorf("config: linebreak.linesPerPage must not be negative")
	}
	if c.Page.Width <= 2*c.Page.Margin+c.Page.NoteWidth {
		return fmt.Errorf("config: page width %.1fmm leaves no room for text", c.Page.Width)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

// Path resolves p against the configuration's directory.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Dir is the directory the configuration was loaded from.
func (c *Config) Dir() string { return c.dir }

// WatchedFiles are the inputs whose changes trigger a new run.
func (c *Config) WatchedFiles() []string {
	files := []string{c.Path(c.Edition)}
	if c.Stylesheet != "" {
		files = append(files, c.Path(c.Stylesheet))
	}
	return files
}
