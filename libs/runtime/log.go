package runtime

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger writes JSON logs to stdout, tagged with the service name.
func NewLogger(service, level string) *slog.Logger {
	return NewLoggerTo(os.Stdout, service, level)
}

// NewLoggerTo is NewLogger with an explicit sink. CLI subcommands log to stderr so
// their stdout stays machine-readable.
func NewLoggerTo(w io.Writer, service, level string) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(h).With(slog.String("service", service))
}

// ParseLevel maps LOG_LEVEL onto slog levels; anything unrecognised is info.
func ParseLevel(raw string) slog.Level {
	var lvl slog.Level
	switch s := strings.ToLower(strings.TrimSpace(raw)); s {
	case "warning":
		return slog.LevelWarn
	case "":
		return slog.LevelInfo
	default:
		if err := lvl.UnmarshalText([]byte(s)); err != nil {
			return slog.LevelInfo
		}
		return lvl
	}
}
