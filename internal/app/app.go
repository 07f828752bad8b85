// Package app wires the detection core to its adapters and runs the service.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/infopercept/rix/internal/adapters/corpusfile"
	"github.com/infopercept/rix/internal/adapters/reporting"
	"github.com/infopercept/rix/internal/adapters/storage"
	webserver "github.com/infopercept/rix/internal/adapters/web/server"
	"github.com/infopercept/rix/internal/config"
	"github.com/infopercept/rix/internal/core/domain"
	"github.com/infopercept/rix/internal/core/services/match"
	"github.com/infopercept/rix/internal/logger"
	"github.com/infopercept/rix/internal/telemetry"
)

// Application holds the core components of the service and orchestrates their
// lifecycle: corpus loading, the match engine, storage and the web server.
type Application struct {
	Config    *config.Config
	Log       *logrus.Logger
	Handle    *match.Handle
	Store     *storage.SQLiteStore
	WebServer *webserver.Server
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	log, err := logger.New(logger.Options{Debug: cfg.Debug, FilePath: cfg.LogFile})
	if err != nil {
		return nil, fmt.Errorf("logger initialization failed: %w", err)
	}

	app := &Application{
		Config: cfg,
		Log:    log,
	}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	telemetry.InitMetrics()

	engine, err := app.buildEngine()
	if err != nil {
		return err
	}
	app.Handle = match.NewHandle(engine)

	if err := app.initStorage(); err != nil {
		// The JSON tree remains authoritative; run without the mirror.
		app.Log.WithError(err).Warn("SQLite mirror unavailable")
	}

	app.WebServer = webserver.NewServer(app.Config.Addr, app.Handle, reporting.NewPDFExporter(), app.Config.CorpusDir)
	return nil
}

// buildEngine loads the corpus tree and compiles a fresh engine over it.
func (app *Application) buildEngine() (*match.Engine, error) {
	loader := corpusfile.NewLoader(app.Log)
	c, issues, err := loader.LoadDir(app.Config.CorpusDir)
	if err != nil {
		return nil, fmt.Errorf("corpus load failed: %w", err)
	}
	for _, issue := range issues {
		app.Log.WithField("location", issue.Location).Warn(issue.Message)
	}

	engine := match.NewEngine(c, match.Options{
		RuleTimeout: app.Config.RuleTimeout,
		Logger:      app.Log,
	})

	stats := c.Stats()
	app.Log.WithFields(logrus.Fields{
		"products": stats.Products,
		"rules":    engine.RuleCount(),
		"skipped":  len(issues),
	}).Info("Corpus loaded")

	return engine, nil
}

func (app *Application) initStorage() error {
	if app.Config.DBPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(app.Config.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create DB directory: %w", err)
	}

	store, err := storage.NewSQLiteStore(app.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open corpus mirror: %w", err)
	}
	app.Store = store

	return app.mirrorSnapshot()
}

// mirrorSnapshot copies the active corpus into SQLite so other tooling can
// query it with SQL. The JSON tree stays authoritative.
func (app *Application) mirrorSnapshot() error {
	if app.Store == nil {
		return nil
	}
	all := app.Handle.Get().Corpus().All()
	entries := make([]domain.ProductEntry, 0, len(all))
	for _, e := range all {
		entries = append(entries, *e)
	}
	return app.Store.SaveAll(entries)
}

// Reload rebuilds the engine from the corpus directory and swaps it in.
// Clients connected over WebSocket are notified.
func (app *Application) Reload() error {
	engine, err := app.buildEngine()
	if err != nil {
		return err
	}
	app.Handle.Swap(engine)
	app.WebServer.NotifyReload()
	app.Log.Info("Corpus reloaded")
	return app.mirrorSnapshot()
}

// Run starts the service and blocks until ctx is cancelled or a component
// fails. SIGHUP triggers a corpus reload.
func (app *Application) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	app.Log.Info("Ready")

	for {
		select {
		case <-ctx.Done():
			return app.cleanup()
		case err := <-errChan:
			app.cleanup()
			return err
		case <-hup:
			if err := app.Reload(); err != nil {
				app.Log.WithError(err).Error("Corpus reload failed; keeping previous snapshot")
			}
		}
	}
}

func (app *Application) cleanup() error {
	app.Log.Info("Shutting down")
	if app.Store != nil {
		return app.Store.Close()
	}
	return nil
}
