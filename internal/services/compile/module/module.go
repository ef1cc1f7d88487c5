// Package module assembles a compile service from configuration: sources,
// scorer, judge, fetcher, registry and artifact stores
package module

import (
	"context"
	"path/filepath"

	"trawler/internal/adapters/github"
	"trawler/internal/adapters/sources"
	"trawler/internal/adapters/sources/editor"
	"trawler/internal/adapters/sources/ghsearch"
	"trawler/internal/adapters/sources/hackernews"
	"trawler/internal/adapters/sources/rss"
	"trawler/internal/core/curate"
	"trawler/internal/core/rubric"
	"trawler/internal/modkit"
	"trawler/internal/modkit/module"
	perr "trawler/internal/platform/errors"
	phttp "trawler/internal/platform/net/http"
	"trawler/internal/services/compile/artifacts"
	"trawler/internal/services/compile/domain"
	"trawler/internal/services/compile/service"
	fmod "trawler/internal/services/fetcher/module"
	fsvc "trawler/internal/services/fetcher/service"
	jdom "trawler/internal/services/judge/domain"
	jmod "trawler/internal/services/judge/module"
	regmod "trawler/internal/services/registry/module"
	regsvc "trawler/internal/services/registry/service"
)

// Ports exposed by the compile module
type Ports struct {
	Runner   *service.Service
	Reader   domain.Reader
	Registry *regsvc.Service
}

// Module implements the compile module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New wires the whole pipeline. Only storage setup can fail; missing
// credentials disable the judge or the metered source with a warning
func New(ctx context.Context, deps modkit.Deps) (*Module, error) {
	o := FromConfig(deps.Cfg)
	log := deps.Log

	rb, err := loadRubric(o.RubricPath)
	if err != nil {
		return nil, err
	}

	gh := github.NewClient(github.Options{TokensCSV: o.GitHubTokens, Timeout: o.GitHubTimeout})
	scorer := rubric.NewScorer(rb, github.NewMetadata(gh))
	engine := curate.New(scorer, curate.Options{Workers: o.CurateWorkers, LookupInterval: o.LookupInterval})

	files := artifacts.NewFiles(o.DataDir, nil)

	reg, err := regmod.New(ctx, deps, modkit.WithPorts(files))
	if err != nil {
		return nil, err
	}
	judge := module.MustPortsOf[jdom.Judge](jmod.New(deps))
	fetch := module.MustPortsOf[*fsvc.Service](fmod.New(deps, modkit.WithPorts(fmod.Needs{Judge: judge, Readme: gh})))
	registry := module.MustPortsOf[*regsvc.Service](reg)

	var archive domain.Archive
	if ch := deps.CH(); ch != nil {
		a := artifacts.NewClickHouse(ch)
		if err := a.Migrate(ctx); err != nil {
			log.Warn().Err(err).Msg("compile: clickhouse archive disabled")
		} else {
			archive = a
		}
	}

	free := []sources.Source{
		rss.New(rss.Options{Feeds: o.RSSFeeds, Keywords: o.RSSKeywords, Scripts: o.RSSScripts, Timeout: o.SourceTimeout}),
		ghsearch.New(gh, ghsearch.Options{Queries: o.RepoQueries, MinStars: o.RepoMinStar}),
	}
	if o.HNEnabled {
		free = append(free, hackernews.New(hackernews.Options{MinPoints: o.HNMinPoints, Timeout: o.SourceTimeout}))
	}

	svc := service.New(service.Deps{
		Editor:    editor.New(o.EditorPath),
		Free:      free,
		Fetcher:   fetch,
		Judge:     judge,
		Registry:  registry,
		Curator:   engine,
		Artifacts: files,
		Archive:   archive,
	}, service.Config{
		Name:            o.Name,
		MaxPicks:        o.MaxPicks,
		MinPicks:        o.MinPicks,
		MinScore:        o.MinScore,
		BudgetCap:       o.BudgetCap,
		BackfillQueries: o.BackfillQueries,
		BackfillCount:   o.BackfillCount,
		JudgeWorkers:    o.JudgeWorkers,
	})

	log.Info().
		Str("data_dir", o.DataDir).
		Int("free_sources", len(free)).
		Bool("metered", fetch.Enabled()).
		Bool("archive", archive != nil).
		Msg("compile: module ready")

	return &Module{deps: deps, ports: Ports{Runner: svc, Reader: files, Registry: registry}}, nil
}

func loadRubric(path string) (*rubric.Rubric, error) {
	if path != "" {
		path = filepath.Clean(path)
	}
	rb, err := rubric.Load(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "compile: load rubric %s", path)
	}
	return rb, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "compile" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module; the HTTP surface lives in api/digests
func (m *Module) MountRoutes(phttp.Router) {}
