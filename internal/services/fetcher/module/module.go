// Package module wires the fetcher to the X API and link resolution
package module

import (
	"trawler/internal/adapters/linkresolve"
	"trawler/internal/adapters/sources"
	"trawler/internal/adapters/sources/xapi"
	"trawler/internal/modkit"
	phttp "trawler/internal/platform/net/http"
	"trawler/internal/services/fetcher/service"
	jdom "trawler/internal/services/judge/domain"
)

// Needs are the cross module ports the fetcher consumes
type Needs struct {
	Judge  jdom.Judge
	Readme linkresolve.ReadmeSource
}

// Ports exposed by the fetcher module
type Ports struct {
	Fetcher *service.Service
}

// Module implements the fetcher module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the fetcher module; Needs arrive through modkit.WithPorts
// Without a bearer token the fetcher is disabled and the primary phase
// yields nothing
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	o := FromConfig(deps.Cfg)
	needs, _ := modkit.Build(opts...).Ports.(Needs)

	var src sources.Metered
	x := xapi.New(xapi.Options{
		BaseURL:     o.BaseURL,
		BearerToken: o.BearerToken,
		ListID:      o.ListID,
		CostPerItem: o.CostPerItem,
		Timeout:     o.Timeout,
	})
	if x.Enabled() {
		src = x
	} else {
		deps.Log.Warn().Msg("fetcher: no X bearer token, metered source disabled")
	}

	resolver := linkresolve.New(needs.Readme, linkresolve.Options{
		MaxLinks:   o.LinkMaxLinks,
		MaxChars:   o.LinkMaxChars,
		SnippetURL: o.SnippetURL,
	})
	svc := service.New(src, resolver, needs.Judge, service.Config{
		BatchSize:    o.BatchSize,
		MaxBatches:   o.MaxBatches,
		Queries:      o.Queries,
		JudgeWorkers: o.JudgeWorkers,
	})
	return &Module{deps: deps, ports: Ports{Fetcher: svc}}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "fetcher" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(phttp.Router) {}
