// Package logging installs the process-wide slog handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

const timeFormat = "060102 15:04:05.000"

// Level is the active log level; it can be changed at runtime.
var Level = new(slog.LevelVar)

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "trace":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "critical":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// Setup installs a tint handler writing to w as the default logger.
// Colors are only used when w is the process's stderr.
func Setup(w io.Writer, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	Level.Set(lvl)

	slog.SetDefault(slog.New(NewHandler(w)))
	return nil
}

// NewHandler returns a tint handler bound to Level.
func NewHandler(w io.Writer) slog.Handler {
	_, noColor := os.LookupEnv("NO_COLOR")
	return tint.NewHandler(w, &tint.Options{
		AddSource:  Level.Level() <= slog.LevelDebug,
		Level:      Level,
		TimeFormat: timeFormat,
		NoColor:    noColor || w != os.Stderr,
	})
}

// Since logs how long an operation took, at debug level.
func Since(op string, start time.Time, args ...any) {
	slog.Debug(op, append([]any{"took", time.Since(start)}, args...)...)
}
