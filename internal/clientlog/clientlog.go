// Package clientlog sets up the terminal client's log file. The terminal
// itself belongs to the TUI, so nothing is written to stderr.
package clientlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration.
type Config struct {
	// Path is the log file. Empty means DefaultPath.
	Path  string
	Level string
}

// DefaultPath is ~/.local/state/dailylog/client.log.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "dailylog", "client.log"), nil
}

// New returns a logger writing to a rotating file. Close the returned
// closer on exit.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	path := cfg.Path
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	return slog.New(NewHandler(fileWriter, cfg.Level)), fileWriter, nil
}

// NewHandler builds the charmbracelet handler used for client logs.
func NewHandler(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
		Prefix:          "dailylog",
	})
}
