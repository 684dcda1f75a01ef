package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls log output
type Config struct {
	Level   string `json:"level"`    // trace, debug, info, warn, error
	LogDir  string `json:"log_dir"`  // when set, logs are also written to a dated file
	Console bool   `json:"console"`  // pretty console output instead of raw JSON
	Tag     string `json:"tag"`      // file name prefix, e.g. the symbol under analysis
}

// DefaultConfig returns the default logging setup
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Console: true,
	}
}

// Setup configures the global logger and returns a closer for the optional
// log file
func Setup(config Config) (func() error, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var writers []io.Writer
	if config.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	} else {
		writers = append(writers, os.Stderr)
	}

	closer := func() error { return nil }
	if config.LogDir != "" {
		if err := os.MkdirAll(config.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		tag := config.Tag
		if tag == "" {
			tag = "engine"
		}
		name := fmt.Sprintf("%s_%s.log", tag, time.Now().Format("2006-01-02"))
		file, err := os.OpenFile(filepath.Join(config.LogDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, file)
		closer = file.Close
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	return closer, nil
}
