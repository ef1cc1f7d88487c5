package main

import (
	"context"

	"trawler/internal/modkit"
	"trawler/internal/platform/config"
	"trawler/internal/platform/logger"
	"trawler/internal/platform/store"
	compilemod "trawler/internal/services/compile/module"

	"github.com/spf13/cobra"
)

const appName = "trawler"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Weekly developer tool discovery digest",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCompileCmd(), newServeCmd(), newRegistryCmd(), newVersionCmd())
	return root
}

// app is the wired process: deps plus the compile module ports
type app struct {
	deps    modkit.Deps
	compile compilemod.Ports
	store   *store.Store
}

// openApp opens the configured storage backends and wires the compile module
func openApp(ctx context.Context) (*app, error) {
	cfg := config.New()
	l := logger.Get()

	st, err := store.Open(ctx, store.ConfigFromEnv(cfg.Prefix("TRAWLER_"), appName), store.WithLogger(*l))
	if err != nil {
		return nil, err
	}

	deps := modkit.Deps{Log: *l, Cfg: cfg, Store: st}
	m, err := compilemod.New(ctx, deps)
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	return &app{deps: deps, compile: m.Ports().(compilemod.Ports), store: st}, nil
}

func (a *app) Close(ctx context.Context) {
	if err := a.store.Close(ctx); err != nil {
		logger.Get().Error().Err(err).Msg("failed to close store")
	}
}
