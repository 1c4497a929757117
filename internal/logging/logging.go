package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config captures options for configuring the global logger.
type Config struct {
	App    string    // attached to every entry
	Level  string    // "debug", "info", etc. Defaults to info
	File   string    // optional rotated log file
	Output io.Writer // console writer, defaults to os.Stderr
	JSON   bool      // plain JSON on the console instead of the coloured writer
}

var (
	mu       sync.Mutex
	fileSink *lumberjack.Logger
)

// Configure replaces the global zerolog logger. It returns the logger for callers
// that prefer passing it explicitly.
func Configure(cfg Config) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil && cfg.Level != "" {
		level = parsed
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if !cfg.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	if fileSink != nil {
		_ = fileSink.Close()
		fileSink = nil
	}
	if cfg.File != "" {
		fileSink = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		out = zerolog.MultiLevelWriter(out, fileSink)
	}

	logger := zerolog.New(out).With().Timestamp().Str("app", cfg.App).Logger()
	log.Logger = logger
	return logger
}

// Close flushes and closes the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if fileSink != nil {
		_ = fileSink.Close()
		fileSink = nil
	}
}

// Component returns a child of the global logger tagged with component.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
