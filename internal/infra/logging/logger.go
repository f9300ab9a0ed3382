package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

type (
	Logger  = *slog.Logger
	Handler = slog.Handler
	Level   = slog.Level
)

// LoggerConfig holds configuration parameters for logging.
type LoggerConfig struct {
	// AppName is added to every record as "app".
	AppName string

	// Output is "stdout", "stderr", "discard" or a file path.
	Output string `env:"OUTPUT" default:"stderr"`

	// Level is the minimum level: "debug", "info", "warn" or "error".
	Level string `env:"LEVEL" default:"info"`

	// Filter overrides the level per logger name prefix, e.g. "svc.imagesvc:debug,repo:warn".
	Filter string `env:"FILTER" default:""`

	// JSON switches from console to JSON output.
	JSON bool `env:"JSON" default:"false"`

	// Color enables ANSI colors in console output.
	Color bool `env:"COLOR" default:"true"`

	OutputHandle io.Writer
}

//nolint:gochecknoglobals
var (
	Group = slog.Group

	config     LoggerConfig
	configLock sync.RWMutex
)

// Configure installs cfg as the global logging configuration. Loggers obtained
// afterwards use it.
func Configure(ctx context.Context, cfg LoggerConfig, appName string) error {
	if err := configure(cfg, appName); err != nil {
		return err
	}

	GetLogger("infra.logging").DebugContext(ctx, "logging configured", Group("config",
		"app", appName,
		"output", cfg.Output,
		"level", cfg.Level,
		"filter", cfg.Filter,
		"json", cfg.JSON,
	))

	return nil
}

func configure(cfg LoggerConfig, appName string) error {
	cfg.AppName = appName

	if cfg.OutputHandle == nil {
		switch cfg.Output {
		case "", "discard":
			cfg.OutputHandle = io.Discard
		case "stdout":
			cfg.OutputHandle = os.Stdout
		case "stderr":
			cfg.OutputHandle = os.Stderr
		default:
			file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}

			cfg.OutputHandle = file
		}
	}

	configLock.Lock()
	defer configLock.Unlock()

	config = cfg

	slog.SetLogLoggerLevel(parseLevel(cfg.Level, LevelInfo))

	return nil
}

// GetLogger returns a logger tagged with name. Names are dotted paths such as
// "svc.imagesvc.pipeline"; the Filter setting matches on their prefixes.
func GetLogger(name string) Logger {
	configLock.RLock()
	cfg := config
	configLock.RUnlock()

	if cfg.OutputHandle == nil || cfg.OutputHandle == io.Discard {
		return NewNopLogger()
	}

	level := resolveLevel(name, parseLevel(cfg.Level, LevelInfo), cfg.pkgLevels())

	var handler Handler

	if cfg.JSON {
		//nolint:exhaustruct
		handler = slog.NewJSONHandler(cfg.OutputHandle, &slog.HandlerOptions{
			AddSource: true,
			Level:     level,
		})
	} else {
		handler = NewConsoleHandler(cfg.OutputHandle, level, cfg.Color)
	}

	handler = NewTracingHandler(handler)

	logger := slog.New(handler)

	if cfg.AppName != "" {
		logger = logger.With("app", cfg.AppName)
	}

	return logger.With("logger", name)
}

func (cfg LoggerConfig) pkgLevels() map[string]Level {
	levels := make(map[string]Level)

	for _, entry := range strings.Split(cfg.Filter, ",") {
		name, level, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}

		levels[strings.TrimSpace(name)] = parseLevel(level, LevelDebug)
	}

	return levels
}

// resolveLevel returns the level of the longest dotted prefix of name found in levels.
func resolveLevel(name string, fallback Level, levels map[string]Level) Level {
	for key := name; key != ""; {
		if level, ok := levels[key]; ok {
			return level
		}

		i := strings.LastIndex(key, ".")
		if i < 0 {
			break
		}

		key = key[:i]
	}

	return fallback
}

func parseLevel(s string, fallback Level) Level {
	var level Level

	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return fallback
	}

	return level
}
