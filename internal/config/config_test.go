package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}

	if cfg.Remote.Backend != BackendHTTP {
		t.Errorf("Backend = %q, want %q", cfg.Remote.Backend, BackendHTTP)
	}
	if cfg.ProbeInterval != 10*time.Second {
		t.Errorf("ProbeInterval = %v, want 10s", cfg.ProbeInterval)
	}
	if !cfg.ReconcileOnLoad {
		t.Error("ReconcileOnLoad should default to true")
	}
}

func TestLoadFromParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
db_path: /tmp/tasks.db
offline: true
probe_interval: 2s
remote:
  backend: mongo
  mongo_uri: mongodb://localhost:27017
log_level: DEBUG
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}

	if cfg.DBPath != "/tmp/tasks.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if !cfg.Offline {
		t.Error("Offline = false, want true")
	}
	if cfg.ProbeInterval != 2*time.Second {
		t.Errorf("ProbeInterval = %v, want 2s", cfg.ProbeInterval)
	}
	if cfg.Remote.Backend != BackendMongo || cfg.Remote.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("Remote = %+v", cfg.Remote)
	}
	// Unset nested fields keep their defaults
	if cfg.Remote.MongoCollection != "tasks" {
		t.Errorf("MongoCollection = %q, want default", cfg.Remote.MongoCollection)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TASKSYNC_SERVER", "http://sync.example:9000")
	t.Setenv("TASKSYNC_LOG_CONSOLE", "true")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}

	if cfg.Remote.ServerURL != "http://sync.example:9000" {
		t.Errorf("ServerURL = %q", cfg.Remote.ServerURL)
	}
	if !cfg.LogConsole {
		t.Error("LogConsole = false, want true")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.ReconcileInterval = time.Minute
	cfg.Remote.ServerURL = "http://example"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	if loaded.ReconcileInterval != time.Minute {
		t.Errorf("ReconcileInterval = %v, want 1m", loaded.ReconcileInterval)
	}
	if loaded.Remote.ServerURL != "http://example" {
		t.Errorf("ServerURL = %q", loaded.Remote.ServerURL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) { c.DBPath = "x.db" }, true},
		{"unknown backend", func(c *Config) { c.DBPath = "x.db"; c.Remote.Backend = "ftp" }, false},
		{"mongo without uri", func(c *Config) { c.DBPath = "x.db"; c.Remote.Backend = BackendMongo }, false},
		{"no db path", func(c *Config) { c.DBPath = "" }, false},
		{"zero probe", func(c *Config) { c.DBPath = "x.db"; c.ProbeInterval = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
