// Package api mounts the operator HTTP API
package api

import (
	"net/http"
	"time"

	"trawler/internal/modkit"
	"trawler/internal/modkit/httpkit"
	"trawler/internal/modkit/module"
	phttp "trawler/internal/platform/net/http"
	"trawler/internal/platform/net/middleware"

	digestsmod "trawler/internal/services/api/digests/module"
	metamod "trawler/internal/services/api/meta/module"
	compilemod "trawler/internal/services/compile/module"
)

// Options are the API options
type Options struct {
	Deps        modkit.Deps
	Compile     compilemod.Ports
	CORSOrigins []string
}

// Mount mounts every API module under /api/v1 with the common middleware
// stack, plus a bare /ping for load balancers. Call it on a fresh router
func Mount(r phttp.Router, opt Options) {
	r.Use(middleware.Heartbeat("/ping"))

	mods := []module.Module{
		metamod.New(opt.Deps, modkit.WithMiddlewares(middleware.Timeout(10*time.Second))),
		digestsmod.New(modkit.WithPorts(digestsmod.Needs{
			Runner: opt.Compile.Runner,
			Reader: opt.Compile.Reader,
		})),
	}

	stack := middleware.Defaults()
	if len(opt.CORSOrigins) > 0 {
		stack = append([]func(http.Handler) http.Handler{
			middleware.CORS(middleware.CORSOptions{AllowedOrigins: opt.CORSOrigins, MaxAge: 300}),
		}, stack...)
	}

	httpkit.MountAPIV1(r, stack, func(api phttp.Router) {
		for _, m := range mods {
			// register each module's ports under its own name for cross module lookups
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
}
