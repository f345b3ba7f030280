package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rpggio/dailylog/internal/config"
	"github.com/rpggio/dailylog/internal/domain/activity"
	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/domain/project"
	"github.com/rpggio/dailylog/internal/sqlite"
	"github.com/rpggio/dailylog/internal/transport"
)

const memoryDB = ":memory:"

// newLogger picks the log destination: the configured file, stderr in
// stdio mode so stdout stays pure JSON-RPC, stdout otherwise.
func newLogger(cfg config.Config) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stdout
	if cfg.Transport.Mode == "stdio" {
		w = os.Stderr
	}
	closeFn := func() {}
	if cfg.Log.Path != "" {
		if err := ensureDir(cfg.Log.Path); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		file := &lumberjack.Logger{
			Filename:   cfg.Log.Path,
			MaxSize:    6, // megabytes
			MaxBackups: 1,
		}
		w = file
		closeFn = func() { _ = file.Close() }
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLogLevel(cfg.Log.Level)})
	return slog.New(handler), closeFn, nil
}

func parseLogLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// openDatabase opens and migrates the store, then takes the day's backup.
// A failed backup is logged and does not stop startup.
func openDatabase(ctx context.Context, cfg config.Config, logger *slog.Logger, now time.Time) (*sqlite.DB, error) {
	if cfg.DB.Path != memoryDB {
		if err := ensureDir(cfg.DB.Path); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if cfg.BackupDir != "" && cfg.DB.Path != memoryDB {
		path, err := db.Backup(ctx, cfg.BackupDir, now)
		if err != nil {
			logger.Warn("daily backup failed", "error", err)
		} else {
			logger.Info("daily backup ready", "path", path)
		}
	}
	return db, nil
}

func newServices(db *sqlite.DB, cfg config.Config, logger *slog.Logger) transport.Services {
	activities := sqlite.NewActivityRepository(db)
	return transport.Services{
		Logs:     logitem.NewService(sqlite.NewLogRepository(db), activities, logger).WithExportDir(cfg.ExportDir),
		Projects: project.NewService(sqlite.NewProjectRepository(db), activities, logger),
		Habits:   habit.NewService(sqlite.NewHabitRepository(db), activities, logger),
		Activity: activity.NewService(activities, logger),
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if path == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
