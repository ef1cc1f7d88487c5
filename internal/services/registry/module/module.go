// Package module wires the registry service to its configured backend
package module

import (
	"context"

	"trawler/internal/modkit"
	perr "trawler/internal/platform/errors"
	phttp "trawler/internal/platform/net/http"
	"trawler/internal/services/registry/domain"
	"trawler/internal/services/registry/repo"
	"trawler/internal/services/registry/service"
)

// Ports exposed by the registry module
type Ports struct {
	Registry *service.Service
}

// Module implements the registry module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the registry module. A domain.History passed through
// modkit.WithPorts feeds the recent digest dedup window
func New(ctx context.Context, deps modkit.Deps, opts ...modkit.Option) (*Module, error) {
	o := FromConfig(deps.Cfg)
	b := modkit.Build(opts...)
	hist, _ := b.Ports.(domain.History)

	st, err := openStore(ctx, deps, o)
	if err != nil {
		return nil, err
	}
	svc := service.New(st, hist, service.Config{HistoryDepth: o.HistoryDepth})
	return &Module{deps: deps, ports: Ports{Registry: svc}}, nil
}

func openStore(ctx context.Context, deps modkit.Deps, o Options) (domain.Store, error) {
	switch o.Backend {
	case BackendSQLite:
		q := deps.Lite()
		if q == nil {
			return nil, perr.InvalidArgf("registry backend sqlite needs SQLITE_PATH")
		}
		s := repo.NewSQLite(q)
		return s, s.Migrate(ctx)
	case BackendPostgres:
		q := deps.PG()
		if q == nil {
			return nil, perr.InvalidArgf("registry backend postgres needs PG_URL")
		}
		s := repo.NewPG(q)
		return s, s.Migrate(ctx)
	default:
		return repo.NewFile(o.Path), nil
	}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "registry" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(phttp.Router) {}
