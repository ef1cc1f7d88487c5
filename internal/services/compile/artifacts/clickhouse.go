package artifacts

import (
	"context"

	"trawler/internal/core/discovery"
	perr "trawler/internal/platform/errors"
	"trawler/internal/platform/store"
)

// DecisionsTable receives one row per decision entry
const DecisionsTable = "decision_entries"

const decisionsDDL = `CREATE TABLE IF NOT EXISTS decision_entries (
	run_id           String,
	digest_id        String,
	outcome          LowCardinality(String),
	dry_run          UInt8,
	started_at       DateTime64(3, 'UTC'),
	entry_key        String,
	title            String,
	url              String,
	origin           LowCardinality(String),
	phase            LowCardinality(String),
	verdict          LowCardinality(String),
	reason           String,
	failing          Array(String),
	score            Nullable(Float64),
	judge_confidence Nullable(Float64),
	updated_at       DateTime64(3, 'UTC')
) ENGINE = MergeTree
ORDER BY (started_at, run_id, entry_key)`

// ClickHouse archives decision logs for cross run analysis
type ClickHouse struct {
	ch store.Clickhouse
}

// NewClickHouse wraps a clickhouse seam
func NewClickHouse(ch store.Clickhouse) *ClickHouse { return &ClickHouse{ch: ch} }

// Migrate creates the decisions table when missing
func (c *ClickHouse) Migrate(ctx context.Context) error {
	return perr.WrapIf(c.ch.Exec(ctx, decisionsDDL), perr.ErrorCodeDB, "clickhouse: migrate decisions")
}

// ArchiveDecisions inserts every entry of log in one batch
func (c *ClickHouse) ArchiveDecisions(ctx context.Context, log discovery.DecisionLog) error {
	rows := make([][]any, 0, len(log.Entries))
	var dry uint8
	if log.DryRun {
		dry = 1
	}
	for _, e := range log.Entries {
		var conf *float64
		if e.Judge != nil {
			v := e.Judge.Confidence
			conf = &v
		}
		failing := e.Failing
		if failing == nil {
			failing = []string{}
		}
		rows = append(rows, []any{
			log.RunID, log.DigestID, log.Outcome, dry, log.StartedAt,
			e.Key, e.Title, e.URL, string(e.Origin), e.Phase, string(e.Verdict), e.Reason,
			failing, e.Score, conf, e.UpdatedAt,
		})
	}
	return perr.WrapIf(c.ch.Insert(ctx, DecisionsTable, rows), perr.ErrorCodeDB, "clickhouse: archive decisions")
}
