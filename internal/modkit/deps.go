// Package modkit provides module wiring and core deps
package modkit

import (
	"trawler/internal/platform/config"
	"trawler/internal/platform/logger"
	"trawler/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log   logger.Logger
	Cfg   config.Conf
	Store *store.Store
}

// PG returns the postgres seam or nil when postgres is not configured
func (d Deps) PG() store.TxRunner {
	if d.Store == nil {
		return nil
	}
	return d.Store.PG
}

// Lite returns the sqlite seam or nil when sqlite is not configured
func (d Deps) Lite() store.TxRunner {
	if d.Store == nil {
		return nil
	}
	return d.Store.Lite
}

// CH returns the clickhouse seam or nil when clickhouse is not configured
func (d Deps) CH() store.Clickhouse {
	if d.Store == nil {
		return nil
	}
	return d.Store.CH
}
