// Package module wires the judge service to the Anthropic adapter
package module

import (
	"trawler/internal/adapters/llm"
	"trawler/internal/modkit"
	phttp "trawler/internal/platform/net/http"
	"trawler/internal/services/judge/domain"
	"trawler/internal/services/judge/service"
)

// Ports exposed by the judge module
type Ports struct {
	Judge domain.Judge
}

// Module implements the judge module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the judge module
func New(deps modkit.Deps) *Module {
	o := FromConfig(deps.Cfg)
	client := llm.New(llm.Options{
		BaseURL:   o.BaseURL,
		APIKey:    o.APIKey,
		Model:     o.Model,
		MaxTokens: o.MaxTokens,
		Timeout:   o.Timeout,
	})
	svc := service.New(client, service.Config{Concurrency: o.Concurrency, Pacing: o.Pacing})
	if !svc.Enabled() {
		deps.Log.Warn().Msg("judge: no api key, verdicts fall back to keyword heuristics")
	}
	return &Module{deps: deps, ports: Ports{Judge: svc}}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "judge" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(phttp.Router) {}
