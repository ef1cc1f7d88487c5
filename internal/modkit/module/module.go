// Package module holds the bootstrap registry modules use to find each
// other's ports without import cycles
package module

import (
	phttp "trawler/internal/platform/net/http"
)

// Module defines the minimal contract used by modkit
// kept sibling to modkit to avoid import knots
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
