package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/existflow/tasksync/internal/config"
	"github.com/existflow/tasksync/internal/connectivity"
	"github.com/existflow/tasksync/internal/db"
	"github.com/existflow/tasksync/internal/logger"
	"github.com/existflow/tasksync/internal/model"
	"github.com/existflow/tasksync/internal/remote"
	"github.com/existflow/tasksync/internal/sync"
)

// app wires the local store, remote store, connectivity and engine
type app struct {
	cfg     *config.Config
	db      *db.DB
	remote  remote.Store
	http    *remote.HTTPStore // nil for other backends
	monitor *connectivity.Monitor
	prober  *connectivity.Prober // nil when working offline
	engine  *sync.Engine
}

// openApp builds the app and takes one connectivity reading so that
// commands start with an accurate online/offline belief
func openApp(ctx context.Context, cfg *config.Config, onTasksChanged func([]model.Task)) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &app{
		cfg:     cfg,
		db:      database,
		monitor: connectivity.NewMonitor(connectivity.Offline),
	}

	a.remote, a.http, err = openRemote(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	if a.canSync() {
		a.prober = connectivity.NewProber(a.remote, a.monitor, cfg.ProbeInterval)
		a.prober.ProbeOnce(ctx)
	}

	a.engine = sync.New(database, a.remote, a.monitor, sync.Options{
		OnTasksChanged:  onTasksChanged,
		ReconcileOnLoad: cfg.ReconcileOnLoad,
	})

	logger.Debug("App opened",
		logger.F("db", cfg.DBPath),
		logger.F("backend", cfg.Remote.Backend),
		logger.F("online", a.monitor.IsOnline()))
	return a, nil
}

// openRemote creates the configured remote store. Neither backend dials
// here, so this works offline.
func openRemote(ctx context.Context, cfg *config.Config) (remote.Store, *remote.HTTPStore, error) {
	switch cfg.Remote.Backend {
	case config.BackendMongo:
		store, err := remote.NewMongoStore(ctx, cfg.Remote.MongoURI,
			cfg.Remote.MongoDatabase, cfg.Remote.MongoCollection, cfg.Remote.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil

	default:
		credsPath, err := remote.DefaultCredentialsPath()
		if err != nil {
			return nil, nil, err
		}
		store, err := remote.NewHTTPStore(cfg.Remote.ServerURL, remote.NewCredentialsFile(credsPath), cfg.Remote.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	}
}

// canSync reports whether the remote store may be contacted at all
func (a *app) canSync() bool {
	if a.cfg.Offline {
		logger.Info("Offline mode, remote store disabled")
		return false
	}
	if a.http != nil && !a.http.IsLoggedIn() {
		logger.Info("Not logged in, working offline")
		return false
	}
	return true
}

// Close releases everything in reverse order of creation
func (a *app) Close() {
	if a.engine != nil {
		a.engine.Close()
	}
	a.monitor.Close()
	if a.remote != nil {
		if err := a.remote.Close(); err != nil {
			logger.Warn("Failed to close remote store", logger.F("error", err))
		}
	}
	if err := a.db.Close(); err != nil {
		logger.Warn("Failed to close database", logger.F("error", err))
	}
}

// resolveTask finds a task by full id or by a unique prefix or suffix of it
func (a *app) resolveTask(ctx context.Context, ref string) (model.Task, error) {
	if t, err := a.db.Get(ctx, ref); err == nil {
		return t, nil
	}

	tasks, err := a.db.GetAll(ctx)
	if err != nil {
		return model.Task{}, err
	}

	var matches []model.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) || strings.HasSuffix(t.ID, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("task not found: %s", ref)
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("%q matches %d tasks, use a longer id", ref, len(matches))
	}
}

// shortID is what list prints; the tail of a UUIDv7 is its random part
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
