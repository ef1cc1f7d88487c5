// Package httpkit holds the route mounting helpers API modules share
package httpkit

import (
	"net/http"

	phttp "trawler/internal/platform/net/http"
)

// Router is the platform router modules mount against
type Router = phttp.Router

// MountUnder mounts a subrouter at prefix and applies per-module middlewares.
// An empty prefix mounts a group on r itself
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	scoped := func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	}
	if prefix == "" {
		r.Group(scoped)
		return
	}
	r.Route(prefix, scoped)
}
