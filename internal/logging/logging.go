// Package logging builds [log/slog] handlers from level and format strings
// and registers the matching command-line flags.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Format represents the log output format.
type Format string

const (
	// FormatText outputs human-readable key=value lines.
	FormatText Format = "text"
	// FormatJSON outputs logs as JSON objects.
	FormatJSON Format = "json"
	// FormatLogfmt outputs logs in logfmt format with source locations.
	FormatLogfmt Format = "logfmt"
)

var (
	// ErrUnknownLogLevel indicates an unrecognized log level string.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownLogFormat indicates an unrecognized log format string.
	ErrUnknownLogFormat = errors.New("unknown log format")
)

var (
	levels  = []string{"error", "warn", "info", "debug"}
	formats = []Format{FormatText, FormatJSON, FormatLogfmt}
)

// GetLevel parses a log level string.
func GetLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownLogLevel, level)
}

// GetFormat parses a log format string.
func GetFormat(format string) (Format, error) {
	if format == "" {
		return FormatText, nil
	}
	f := Format(strings.ToLower(format))
	if slices.Contains(formats, f) {
		return f, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLogFormat, format)
}

// NewHandler creates a [slog.Handler] writing to w.
func NewHandler(w io.Writer, level slog.Level, format Format) slog.Handler {
	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case FormatLogfmt:
		return slog.NewTextHandler(w, &slog.HandlerOptions{AddSource: true, Level: level})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				// Timestamps are noise on an interactive terminal.
				if len(groups) == 0 && a.Key == slog.TimeKey {
					return slog.Attr{}
				}
				return a
			},
		})
	}
}

// Config holds log flag values.
type Config struct {
	Level  string
	Format string
}

// RegisterFlags adds --log-level and --log-format to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, "log-level", "",
		fmt.Sprintf("log level, one of: %s", strings.Join(levels, ", ")))
	flags.StringVar(&c.Format, "log-format", "",
		fmt.Sprintf("log format, one of: %s", joinFormats()))
}

// RegisterCompletions registers shell completions for the log flags.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(levels, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering log-level completion: %w", err)
	}
	err = cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(formatStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering log-format completion: %w", err)
	}
	return nil
}

// NewLogger builds a logger writing to w. Flag values win over the given
// fallbacks, which usually come from the config file.
func (c *Config) NewLogger(w io.Writer, fallbackLevel, fallbackFormat string) (*slog.Logger, error) {
	levelStr := c.Level
	if levelStr == "" {
		levelStr = fallbackLevel
	}
	formatStr := c.Format
	if formatStr == "" {
		formatStr = fallbackFormat
	}

	level, err := GetLevel(levelStr)
	if err != nil {
		return nil, err
	}
	format, err := GetFormat(formatStr)
	if err != nil {
		return nil, err
	}
	return slog.New(NewHandler(w, level, format)), nil
}

func formatStrings() []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}

func joinFormats() string { return strings.Join(formatStrings(), ", ") }
