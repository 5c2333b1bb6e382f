package tui

import (
	"io"
	"os"

	"github.com/Veraticus/tidy-ledger/internal/selector"
	"github.com/Veraticus/tidy-ledger/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Input    io.Reader
	Output   io.Writer
	Width    int
	Limit    int
	ShowHelp bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:    themes.Default,
		Input:    os.Stdin,
		Output:   os.Stdout,
		Width:    80,
		Limit:    selector.DefaultLimit,
		ShowHelp: true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithIO replaces the terminal the programs read from and render to.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *Config) {
		c.Input = in
		c.Output = out
	}
}

// WithWidth sets the initial render width.
func WithWidth(width int) Option {
	return func(c *Config) {
		c.Width = width
	}
}

// WithLimit caps how many candidates are listed.
func WithLimit(limit int) Option {
	return func(c *Config) {
		c.Limit = limit
	}
}

// WithHelp toggles the key help line.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}
