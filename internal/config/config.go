package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server and client configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Client    ClientConfig    `yaml:"client"`
	BackupDir string          `yaml:"backup_dir"`
	ExportDir string          `yaml:"export_dir"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type TransportConfig struct {
	// Mode is "http" (REST and MCP) or "stdio" (MCP only).
	Mode string `yaml:"mode"`
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	APIURL         string        `yaml:"api_url"`
	LogPath        string        `yaml:"log_path"`
	SaveDelay      time.Duration `yaml:"save_delay"`
	SavedWindow    time.Duration `yaml:"saved_window"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Addr is the server listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8000,
		},
		DB: DBConfig{
			Path: "work_logs.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Client: ClientConfig{
			APIURL:         "http://127.0.0.1:8000",
			SaveDelay:      1200 * time.Millisecond,
			SavedWindow:    2 * time.Second,
			RequestTimeout: 10 * time.Second,
		},
		BackupDir: "backups",
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("DAILYLOG_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("DAILYLOG_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("DAILYLOG_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DAILYLOG_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("DAILYLOG_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("DAILYLOG_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("DAILYLOG_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if mode := os.Getenv("DAILYLOG_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if dir := os.Getenv("DAILYLOG_BACKUP_DIR"); dir != "" {
		cfg.BackupDir = dir
	}
	if dir := os.Getenv("DAILYLOG_EXPORT_DIR"); dir != "" {
		cfg.ExportDir = dir
	}
	if apiURL := os.Getenv("DAILYLOG_API_URL"); apiURL != "" {
		cfg.Client.APIURL = apiURL
	}
	if logPath := os.Getenv("DAILYLOG_CLIENT_LOG_PATH"); logPath != "" {
		cfg.Client.LogPath = logPath
	}

	durations := []struct {
		env string
		dst *time.Duration
	}{
		{"DAILYLOG_SAVE_DELAY", &cfg.Client.SaveDelay},
		{"DAILYLOG_SAVED_WINDOW", &cfg.Client.SavedWindow},
		{"DAILYLOG_REQUEST_TIMEOUT", &cfg.Client.RequestTimeout},
	}
	for _, d := range durations {
		raw := os.Getenv(d.env)
		if raw == "" {
			continue
		}
		v, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", d.env, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings neither process can run with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport mode %q: want http or stdio", c.Transport.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Client.SaveDelay <= 0 {
		return fmt.Errorf("save delay must be positive")
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
