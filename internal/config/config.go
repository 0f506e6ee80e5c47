package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Remote backends
const (
	BackendHTTP  = "http"
	BackendMongo = "mongo"
)

// RemoteConfig selects and configures the remote store
type RemoteConfig struct {
	Backend         string        `yaml:"backend" json:"backend"`                   // "http" or "mongo"
	ServerURL       string        `yaml:"server_url" json:"server_url"`             // tasksync-server base URL
	Timeout         time.Duration `yaml:"timeout" json:"timeout"`                   // Per-request timeout
	MongoURI        string        `yaml:"mongo_uri" json:"mongo_uri"`               // mongodb:// connection string
	MongoDatabase   string        `yaml:"mongo_database" json:"mongo_database"`     // Database holding the collection
	MongoCollection string        `yaml:"mongo_collection" json:"mongo_collection"` // Task collection name
}

// Config holds user preferences
type Config struct {
	DBPath        string `yaml:"db_path" json:"db_path"`               // Local SQLite store
	ConfirmDelete bool   `yaml:"confirm_delete" json:"confirm_delete"` // Require confirmation for delete

	// Sync behaviour
	Offline           bool          `yaml:"offline" json:"offline"`                       // Never contact the remote store
	ReconcileOnLoad   bool          `yaml:"reconcile_on_load" json:"reconcile_on_load"`   // Reconcile before listing when online
	ProbeInterval     time.Duration `yaml:"probe_interval" json:"probe_interval"`         // Connectivity probe period
	ReconcileInterval time.Duration `yaml:"reconcile_interval" json:"reconcile_interval"` // Periodic reconcile while online

	Remote RemoteConfig `yaml:"remote" json:"remote"`

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// Dir returns ~/.tasksync
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tasksync"), nil
}

// DefaultPath returns ~/.tasksync/config.yaml
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir, _ := Dir()
	dbPath := ""
	logPath := ""
	if dir != "" {
		dbPath = filepath.Join(dir, "tasks.db")
		logPath = filepath.Join(dir, "logs", "tasksync.log")
	}

	return &Config{
		DBPath:            dbPath,
		ConfirmDelete:     true,
		ReconcileOnLoad:   true,
		ProbeInterval:     10 * time.Second,
		ReconcileInterval: 30 * time.Second,
		Remote: RemoteConfig{
			Backend:         BackendHTTP,
			ServerURL:       "http://localhost:8080",
			Timeout:         30 * time.Second,
			MongoDatabase:   "tasksync",
			MongoCollection: "tasks",
		},
		LogLevel:   "INFO",
		LogFile:    logPath,
		LogConsole: false,
	}
}

// applyEnv overrides settings from the environment
func (c *Config) applyEnv() {
	c.LogLevel = getEnv("TASKSYNC_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("TASKSYNC_LOG_FILE", c.LogFile)
	c.LogConsole = getEnv("TASKSYNC_LOG_CONSOLE", fmt.Sprint(c.LogConsole)) == "true"
	c.DBPath = getEnv("TASKSYNC_DB", c.DBPath)
	c.Remote.Backend = getEnv("TASKSYNC_REMOTE", c.Remote.Backend)
	c.Remote.ServerURL = getEnv("TASKSYNC_SERVER", c.Remote.ServerURL)
	c.Remote.MongoURI = getEnv("TASKSYNC_MONGO_URI", c.Remote.MongoURI)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate checks settings that would otherwise fail later
func (c *Config) Validate() error {
	switch c.Remote.Backend {
	case BackendHTTP:
		if c.Remote.ServerURL == "" {
			return fmt.Errorf("remote.server_url is required for the %s backend", BackendHTTP)
		}
	case BackendMongo:
		if c.Remote.MongoURI == "" {
			return fmt.Errorf("remote.mongo_uri is required for the %s backend", BackendMongo)
		}
	default:
		return fmt.Errorf("unknown remote backend %q", c.Remote.Backend)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.ProbeInterval <= 0 {
		return fmt.Errorf("probe_interval must be positive")
	}
	return nil
}

// Load loads config from ~/.tasksync/config.yaml
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads config from path, falling back to defaults if it does not exist
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.applyEnv()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnv()

	return cfg, nil
}

// Save saves config to ~/.tasksync/config.yaml
func (c *Config) Save() error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes config to path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
