package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env             string
	ListenAddr      string
	DatabaseURL     string
	MaxConnections  int
	ShutdownTimeout time.Duration
	SeedSampleData  bool
	Analysis        AnalysisConfig
	Logging         LoggingConfig
}

// AnalysisConfig sizes the document analysis workers.
type AnalysisConfig struct {
	Workers      int
	Delay        time.Duration
	Timeout      time.Duration
	PollInterval time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string // text|json
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads configuration from the environment. A .env file in the working
// directory is read first when present; real environment variables win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Config{
		Env:         getenv("APP_ENV", "development"),
		ListenAddr:  getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Logging: LoggingConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "text"),
		},
	}
	var err error
	if cfg.MaxConnections, err = getenvInt("MAX_CONNECTIONS", 256); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SeedSampleData, err = getenvBool("SEED_SAMPLE_DATA", false); err != nil {
		return Config{}, err
	}
	if cfg.Analysis.Workers, err = getenvInt("ANALYSIS_WORKERS", 2); err != nil {
		return Config{}, err
	}
	if cfg.Analysis.Delay, err = getenvDuration("ANALYSIS_DELAY", 3*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Analysis.Timeout, err = getenvDuration("ANALYSIS_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Analysis.PollInterval, err = getenvDuration("ANALYSIS_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.Analysis.Workers < 0 {
		return Config{}, fmt.Errorf("invalid ANALYSIS_WORKERS %d", cfg.Analysis.Workers)
	}
	return cfg, nil
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return out, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	out, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return out, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	out, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return out, nil
}
