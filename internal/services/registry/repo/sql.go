package repo

import (
	"context"
	"encoding/json"
	"time"

	"trawler/internal/modkit/repokit"
	perr "trawler/internal/platform/errors"
	"trawler/internal/platform/store"
	"trawler/internal/services/registry/domain"
)

// Schema is portable between postgres and sqlite: timestamps are unix
// millis and issue ids a JSON array in a text column
const Schema = `CREATE TABLE IF NOT EXISTS registry_entries (
	entry_key    TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	url          TEXT NOT NULL DEFAULT '',
	first_seen   BIGINT NOT NULL,
	last_seen    BIGINT NOT NULL,
	times_picked INTEGER NOT NULL DEFAULT 0,
	issue_ids    TEXT NOT NULL DEFAULT '[]'
)`

const (
	selectAll = `SELECT entry_key, title, url, first_seen, last_seen, times_picked, issue_ids
		FROM registry_entries ORDER BY entry_key`

	upsert = `INSERT INTO registry_entries
		(entry_key, title, url, first_seen, last_seen, times_picked, issue_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (entry_key) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			first_seen = excluded.first_seen,
			last_seen = excluded.last_seen,
			times_picked = excluded.times_picked,
			issue_ids = excluded.issue_ids`
)

// pgLockTimeout bounds how long a save waits on a concurrent writer
const pgLockTimeout = "SET LOCAL lock_timeout = '5s'"

// SQL is the registry over any repokit.TxRunner
type SQL struct {
	q      repokit.TxRunner
	rebind func(string) string
	writer repokit.Binder[entryWriter]
}

func newSQL(q repokit.TxRunner, rebind func(string) string) *SQL {
	return &SQL{
		q:      q,
		rebind: rebind,
		writer: repokit.BindFunc[entryWriter](func(q repokit.Queryer) entryWriter {
			return entryWriter{q: q, upsert: rebind(upsert)}
		}),
	}
}

// NewPG returns the postgres registry backend
func NewPG(q store.TxRunner) *SQL {
	return newSQL(repokit.WithBeginHooks(q, repokit.Exec(pgLockTimeout)), func(s string) string { return s })
}

// NewSQLite returns the sqlite registry backend
func NewSQLite(q store.TxRunner) *SQL { return newSQL(q, store.Rebind) }

// Migrate creates the registry table when missing
func (s *SQL) Migrate(ctx context.Context) error {
	if _, err := s.q.Exec(ctx, Schema); err != nil {
		return perr.FromPostgres(err, "migrate registry")
	}
	return nil
}

// Load implements domain.Store
func (s *SQL) Load(ctx context.Context) ([]domain.Entry, error) {
	xs, err := store.Many(ctx, s.q, scanEntry, s.rebind(selectAll))
	if err != nil {
		return nil, perr.FromPostgres(err, "load registry")
	}
	return xs, nil
}

// Save implements domain.Store; every entry is upserted in one transaction
func (s *SQL) Save(ctx context.Context, entries []domain.Entry) error {
	err := repokit.WithTx(ctx, s.q, func(tx repokit.Queryer) error {
		w := repokit.MustBind(s.writer, tx)
		for _, e := range entries {
			if err := w.put(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return perr.FromPostgres(err, "save registry")
	}
	return nil
}

// entryWriter upserts entries through one bound Queryer
type entryWriter struct {
	q      repokit.Queryer
	upsert string
}

func (w entryWriter) put(ctx context.Context, e domain.Entry) error {
	ids, err := json.Marshal(e.Clone().IssueIDs)
	if err != nil {
		return err
	}
	_, err = w.q.Exec(ctx, w.upsert,
		e.Key, e.Title, e.URL,
		e.FirstSeen.UnixMilli(), e.LastSeen.UnixMilli(),
		e.TimesPicked, string(ids),
	)
	return err
}

func scanEntry(r repokit.Row) (domain.Entry, error) {
	var (
		e           domain.Entry
		first, last int64
		picked      int64
		ids         string
	)
	if err := r.Scan(&e.Key, &e.Title, &e.URL, &first, &last, &picked, &ids); err != nil {
		return domain.Entry{}, err
	}
	e.FirstSeen = time.UnixMilli(first).UTC()
	e.LastSeen = time.UnixMilli(last).UTC()
	e.TimesPicked = int(picked)
	if err := json.Unmarshal([]byte(ids), &e.IssueIDs); err != nil {
		return domain.Entry{}, err
	}
	return e, nil
}
