package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/formclip/internal/dom"
	"github.com/GriffinCanCode/formclip/internal/dom/sandbox"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/config"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/logging"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formclip/internal/providers/clipboard"
	"github.com/GriffinCanCode/formclip/internal/providers/filler"
	"github.com/GriffinCanCode/formclip/internal/providers/matcher"
	"github.com/GriffinCanCode/formclip/internal/providers/matcher/delegate"
	"github.com/GriffinCanCode/formclip/internal/providers/scraper"
	"github.com/GriffinCanCode/formclip/internal/providers/transform"
	"github.com/GriffinCanCode/formclip/internal/service"
	"github.com/GriffinCanCode/formclip/internal/vocab"
)

// sandboxRuntimes is the number of script runtimes kept warm.
const sandboxRuntimes = 4

// Engine is the assembled clipboard pipeline shared by the API and the CLI.
type Engine struct {
	Scraper   *scraper.Provider
	Strategy  matcher.Strategy
	Executor  *filler.Executor
	Clipboard *clipboard.Service
	Registry  *service.Registry

	closers []io.Closer
	logger  *logging.Logger
}

// NewEngine builds every component from cfg. Close releases the script
// runtimes, the delegate client and the clipboard store.
func NewEngine(ctx context.Context, cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics) (*Engine, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Engine{logger: logger}

	v := vocab.Default()
	if path := cfg.Matcher.VocabularyFile; path != "" {
		loaded, err := vocab.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		v = loaded
		logger.Info("Vocabulary loaded", zap.String("path", path))
	}

	layout := transform.DateLayout(cfg.Filler.DateLayout)
	if !layout.Valid() {
		return nil, fmt.Errorf("unsupported date layout %q", cfg.Filler.DateLayout)
	}

	var client delegate.Client
	if cfg.Matcher.Mode == config.ModeDelegated {
		c, err := delegate.New(ctx, cfg.Delegate)
		if err != nil {
			return nil, fmt.Errorf("create delegate client: %w", err)
		}
		if closer, ok := c.(io.Closer); ok {
			e.closers = append(e.closers, closer)
		}
		if !cfg.Delegate.Configured() {
			logger.Warn("Delegated matching without a delegate, every match falls back to the heuristic",
				zap.String("provider", cfg.Delegate.Provider))
		}
		client = c
	}
	e.Strategy = matcher.New(
		cfg.Matcher.Mode,
		matcher.ConfigFrom(cfg.Matcher, cfg.Delegate),
		client,
		v,
		logger.Component("matcher"),
		metrics,
	)

	var listeners []dom.Listener
	if cfg.Filler.RunScripts {
		pool, err := sandbox.NewPool(sandbox.DefaultConfig(), sandboxRuntimes)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("create script sandbox: %w", err)
		}
		e.closers = append(e.closers, pool)
		listeners = append(listeners, sandbox.NewScriptListener(pool, logger.Component("sandbox")))
	}
	dispatcher := dom.NewDispatcher(cfg.Filler.SettleDelay, listeners...)
	e.Executor = filler.NewExecutor(dispatcher, transform.Options{DateLayout: layout}, logger.Component("filler"), metrics)

	var store clipboard.Store
	if cfg.Clipboard.Dir != "" {
		fs, err := clipboard.NewFileStore(cfg.Clipboard.Dir, cfg.Clipboard.HistoryLimit, logger.Component("store"))
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("open clipboard store: %w", err)
		}
		e.closers = append(e.closers, fs)
		store = fs
	} else {
		store = clipboard.NewMemoryStore(cfg.Clipboard.HistoryLimit)
	}

	e.Scraper = scraper.NewProvider(v, logger.Component("scanner"))
	e.Clipboard = clipboard.NewService(
		e.Scraper.Scanner(),
		e.Scraper.Grouper(),
		e.Strategy,
		e.Executor,
		store,
		logger.Component("clipboard"),
		metrics,
	)

	e.Registry = service.NewRegistry()
	e.registerProviders()

	logger.Info("Engine ready",
		zap.String("strategy", e.Strategy.Name()),
		zap.String("date_layout", string(layout)),
		zap.Bool("run_scripts", cfg.Filler.RunScripts),
		zap.Bool("persistent_clipboard", cfg.Clipboard.Dir != ""))
	return e, nil
}

func (e *Engine) registerProviders() {
	providers := []service.Provider{
		clipboard.NewProvider(e.Clipboard),
		e.Scraper,
		matcher.NewProvider(e.Strategy, e.Scraper.Scanner()),
	}
	for _, p := range providers {
		if err := e.Registry.Register(p); err != nil {
			e.logger.Warn("Failed to register provider",
				zap.String("service", p.Definition().ID),
				zap.Error(err))
		}
	}

	stats := e.Registry.Stats()
	e.logger.Info("Registered service providers",
		zap.Int("services", stats.Services),
		zap.Int("tools", stats.Tools))
}

// Close releases everything NewEngine opened, newest first.
func (e *Engine) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
