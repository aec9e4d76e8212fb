// Package config loads hexlayout settings from a YAML file.
//
// The file is given with --config. There is no automatic discovery; command
// line flags override whatever the file sets.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/hexlayout/layout"
	"github.com/joshuapare/hexlayout/layout/printer"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the complete set of settings.
type Config struct {
	// Layout selects how regions are compiled.
	Layout LayoutConfig `yaml:"layout"`

	// Printer controls the regions output.
	Printer PrinterConfig `yaml:"printer"`

	// Log configures diagnostic logging.
	Log LogConfig `yaml:"log"`
}

// LayoutConfig selects the compile modes.
type LayoutConfig struct {
	// InlineComments is one of hidden, full-indent, short-indent, full, short.
	InlineComments string `yaml:"inline_comments"`

	// Display is file or virtual.
	Display string `yaml:"display"`
}

// PrinterConfig mirrors printer.Options.
type PrinterConfig struct {
	Format        string `yaml:"format"`
	IndentSize    int    `yaml:"indent_size"`
	MaxValueBytes int    `yaml:"max_value_bytes"`
	MaxValues     int    `yaml:"max_values"`
	ShowReal      bool   `yaml:"show_real"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			InlineComments: layout.FullIndent.String(),
			Display:        layout.FileView.String(),
		},
		Printer: PrinterConfig{
			Format:        string(printer.FormatText),
			IndentSize:    printer.DefaultIndentSize,
			MaxValueBytes: printer.DefaultMaxValueBytes,
			MaxValues:     printer.DefaultMaxValues,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadFile reads path over the defaults and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.InlineMode(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.DisplayMode(); err != nil {
		errs = append(errs, err)
	}
	if _, err := printer.ParseFormat(c.Printer.Format); err != nil {
		errs = append(errs, err)
	}
	if c.Printer.IndentSize < 0 {
		errs = append(errs, fmt.Errorf("printer.indent_size must be >= 0, got %d", c.Printer.IndentSize))
	}
	if c.Printer.MaxValueBytes < 0 {
		errs = append(errs, fmt.Errorf("printer.max_value_bytes must be >= 0, got %d", c.Printer.MaxValueBytes))
	}
	if c.Printer.MaxValues < 0 {
		errs = append(errs, fmt.Errorf("printer.max_values must be >= 0, got %d", c.Printer.MaxValues))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// InlineMode parses Layout.InlineComments.
func (c *Config) InlineMode() (layout.InlineCommentMode, error) {
	return layout.ParseInlineCommentMode(c.Layout.InlineComments)
}

// DisplayMode parses Layout.Display.
func (c *Config) DisplayMode() (layout.DisplayMode, error) {
	return layout.ParseDisplayMode(c.Layout.Display)
}

// PrinterOptions converts the printer section.
func (c *Config) PrinterOptions() printer.Options {
	return printer.Options{
		Format:        printer.Format(c.Printer.Format),
		IndentSize:    c.Printer.IndentSize,
		MaxValueBytes: c.Printer.MaxValueBytes,
		MaxValues:     c.Printer.MaxValues,
		ShowReal:      c.Printer.ShowReal,
	}
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
