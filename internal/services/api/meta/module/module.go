// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"net/http"
	"time"

	"trawler/internal/modkit"
	"trawler/internal/modkit/httpkit"
	phttp "trawler/internal/platform/net/http"
	str "trawler/internal/platform/strings"
	metahttp "trawler/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	deps      modkit.Deps
	name      string
	prefix    string
	mws       []func(http.Handler) http.Handler
	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	return &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		startedAt: time.Now(),
	}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r phttp.Router) {
	httpkit.MountUnder(r, str.MustPrefix(m.prefix), m.mws, func(rr phttp.Router) {
		metahttp.Register(rr, metahttp.Deps{
			ServiceName: "trawler",
			StartedAt:   m.startedAt,
			Backends:    m.backends(),
		})
	})
}

// backends keeps nil seams as untyped nil so they report as skipped
func (m *Module) backends() map[string]any {
	out := map[string]any{}
	if pg := m.deps.PG(); pg != nil {
		out["pg"] = pg
	}
	if lite := m.deps.Lite(); lite != nil {
		out["sqlite"] = lite
	}
	if ch := m.deps.CH(); ch != nil {
		out["ch"] = ch
	}
	return out
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.name, "meta module name") }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
