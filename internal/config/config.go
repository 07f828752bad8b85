package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Addr        string
	CorpusDir   string
	DBPath      string
	LogFile     string
	RuleTimeout time.Duration
	Debug       bool
}

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.Addr = getEnv("RIX_ADDR", ":8080")
	cfg.CorpusDir = getEnv("RIX_CORPUS", "patterns")
	cfg.DBPath = getEnv("RIX_DB", getDefaultDBPath())
	cfg.LogFile = getEnv("RIX_LOG_FILE", "")
	cfg.RuleTimeout = time.Duration(getEnvInt("RIX_RULE_TIMEOUT_MS", 500)) * time.Millisecond
	cfg.Debug = getEnvBool("RIX_DEBUG", false)

	// Command Line Flags (Override Env)
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	flag.StringVar(&cfg.CorpusDir, "corpus", cfg.CorpusDir, "Path to the pattern corpus directory")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database")
	flag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Log file path (empty for stderr only)")
	ruleTimeoutMs := flag.Int("rule-timeout", int(cfg.RuleTimeout/time.Millisecond), "Per-rule regex timeout in milliseconds")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")

	flag.Parse()

	cfg.RuleTimeout = time.Duration(*ruleTimeoutMs) * time.Millisecond

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getDefaultDBPath returns the default database path in user's home directory.
// Creates the directory if it doesn't exist.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return "rix.db"
	}

	rixDir := filepath.Join(home, ".rix")

	if err := os.MkdirAll(rixDir, 0755); err != nil {
		log.Printf("Warning: Could not create .rix directory, using current dir: %v", err)
		return "rix.db"
	}

	return filepath.Join(rixDir, "rix.db")
}
