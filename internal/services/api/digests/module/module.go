// Package module wires the digest and run endpoints into the API
package module

import (
	"net/http"

	"trawler/internal/modkit"
	"trawler/internal/modkit/httpkit"
	phttp "trawler/internal/platform/net/http"
	str "trawler/internal/platform/strings"
	dhttp "trawler/internal/services/api/digests/http"
	"trawler/internal/services/compile/domain"
)

// Needs are the compile ports these routes serve
type Needs struct {
	Runner dhttp.Runner
	Reader domain.Reader
}

// Module implements the digests API module
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	needs  Needs
}

// New constructs the module; Needs must arrive through modkit.WithPorts
func New(opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("digests"),
	}, opts...)...)

	needs, ok := b.Ports.(Needs)
	if !ok || needs.Runner == nil || needs.Reader == nil {
		panic("digests API module requires Runner and Reader ports (from compile)")
	}
	return &Module{name: b.Name, prefix: b.Prefix, mws: b.Mw, needs: needs}
}

// MountRoutes mounts the routes, under Prefix when one is set
func (m *Module) MountRoutes(r phttp.Router) {
	prefix := ""
	if m.prefix != "" {
		prefix = str.MustPrefix(m.prefix)
	}
	httpkit.MountUnder(r, prefix, m.mws, func(rr phttp.Router) {
		dhttp.Register(rr, m.needs.Runner, m.needs.Reader)
	})
}

// Name implements modkit.Module
func (m *Module) Name() string { return str.MustString(m.name, "digests module name") }

// Ports implements modkit.Module
func (m *Module) Ports() any { return nil }
