package app

import (
	"context"
	"fmt"

	"github.com/doeshing/installez/internal/application/doctor"
	"github.com/doeshing/installez/internal/application/install"
	"github.com/doeshing/installez/internal/domain"
	"github.com/doeshing/installez/internal/infrastructure/bridge"
	"github.com/doeshing/installez/internal/infrastructure/config"
	"github.com/doeshing/installez/internal/infrastructure/executor"
	"github.com/doeshing/installez/internal/infrastructure/history"
	"github.com/doeshing/installez/internal/infrastructure/winget"
	"github.com/doeshing/installez/internal/pkg/logger"
	"github.com/doeshing/installez/internal/ports"
)

// Options are the process-level knobs passed down from main.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigLoader   *config.FileLoader
	Logger         ports.Logger
	PackageManager *winget.Manager
	Installer      *install.Service
	DoctorService  *doctor.Service
	// HistoryStore is nil unless history is enabled in the config.
	HistoryStore ports.HistoryRepository

	closers []func() error
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.New(opts.Verbose, cfg.Log.Level)

	c := &Container{
		Config:       cfg,
		ConfigLoader: cfgLoader,
		Logger:       log,
	}

	if cfg.History.Enabled {
		store, err := history.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		c.HistoryStore = store
		c.closers = append(c.closers, store.Close)
	}

	c.PackageManager = winget.NewManager(executor.NewLocalExecutor(cfg.Executor.Timeout), cfg.PackageManager)

	c.Installer = &install.Service{
		PackageManager:  c.PackageManager,
		Classifier:      winget.NewClassifier(cfg.PackageManager),
		Logger:          log,
		History:         c.HistoryStore,
		ReportMalformed: cfg.Bridge.ReportMalformed,
	}

	c.DoctorService = &doctor.Service{
		ConfigProvider: cfgLoader,
		PackageManager: c.PackageManager,
		History:        c.HistoryStore,
	}

	return c, nil
}

// Bridge builds the HTTP UI bridge around the installer.
func (c *Container) Bridge() *bridge.Server {
	return bridge.NewServer(c.Installer, c.HistoryStore, c.Logger, bridge.Options{
		ReportMalformed: c.Config.Bridge.ReportMalformed,
		PackageManager:  c.PackageManager.Name(),
	})
}

// Close releases resources held by adapters.
func (c *Container) Close() error {
	var first error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}
