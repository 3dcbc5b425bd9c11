// Package app wires configuration, storage, the model invoker and metrics
// into a ready pipeline.Service.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/learnpath/learnpath/internal/config"
	"github.com/learnpath/learnpath/internal/llm"
	"github.com/learnpath/learnpath/internal/logging"
	"github.com/learnpath/learnpath/internal/metrics"
	"github.com/learnpath/learnpath/internal/pipeline"
	"github.com/learnpath/learnpath/internal/prompt"
	"github.com/learnpath/learnpath/internal/schema"
	"github.com/learnpath/learnpath/internal/store"
)

// Options override parts of the configuration for one process.
type Options struct {
	// DBPath overrides the configured store path.
	DBPath string

	// FallbackOnly forces fallback-only mode on top of the configuration.
	FallbackOnly bool

	// Provider replaces the configured provider. It is still wrapped with
	// event logging when the store is enabled.
	Provider llm.Provider
}

// App holds the wired service and the resources it owns.
type App struct {
	Config   *config.Config
	Service  *pipeline.Service
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	// Store is nil when the event store is disabled.
	Store *store.Store
}

// New builds an App from cfg. The caller must Close it.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	a := &App{
		Config:   cfg,
		Registry: prometheus.NewRegistry(),
	}
	a.Metrics = metrics.New(a.Registry)

	var events store.EventRepo
	var runs store.RunRepo
	if cfg.Store.Enabled {
		path, err := resolveDBPath(cfg, opts)
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.Store = st
		events, runs = st.EventRepo(), st.RunRepo()
	}

	llmCfg := cfg.LLM()
	fallbackOnly := cfg.UseFallbackOnly || opts.FallbackOnly

	var invoker pipeline.Invoker
	if !fallbackOnly {
		inv, err := newInvoker(ctx, llmCfg, opts.Provider, events)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create model invoker: %w", err)
		}
		if !inv.Ready() {
			logging.Logger().Warn().
				Str("provider", llmCfg.Provider).
				Msg("MODEL_API_KEY is not set; every request will use fallback results")
		}
		invoker = inv
	}

	a.Service = pipeline.New(pipeline.Options{
		Invoker:      invoker,
		Builder:      prompt.NewBuilder(llmCfg.Provider),
		Validator:    schema.New(),
		FallbackOnly: fallbackOnly,
		Runs:         runs,
		Metrics:      a.Metrics,
	})
	return a, nil
}

func newInvoker(ctx context.Context, cfg llm.Config, p llm.Provider, events store.EventRepo) (*llm.Invoker, error) {
	if p == nil {
		return llm.NewInvokerFromConfig(ctx, cfg, events)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return llm.NewInvoker(llm.WithLogging(p, cfg.Provider, events), cfg), nil
}

// resolveDBPath returns the database path using the override (highest
// priority), then the configured path, then the default XDG path.
func resolveDBPath(cfg *config.Config, opts Options) (string, error) {
	for _, p := range []string{opts.DBPath, cfg.Store.Path} {
		if p != "" {
			return p, store.EnsureDir(p)
		}
	}
	return store.DefaultDBPath()
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
