package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// sqlAdapter wraps a database/sql handle (the sqlite registry backend) and
// implements RowQuerier + TxRunner with the same contract as the pgx adapter
type sqlAdapter struct {
	db *sql.DB
}

// NewSQLAdapter wraps db as a TxRunner
func NewSQLAdapter(db *sql.DB) TxRunner { return &sqlAdapter{db: db} }

func (a *sqlAdapter) Ping(ctx context.Context) error {
	if a == nil || a.db == nil {
		return errors.New("sqlite: nil adapter")
	}
	return a.db.PingContext(ctx)
}

func (a *sqlAdapter) Close() error { return a.db.Close() }

func (a *sqlAdapter) Exec(ctx context.Context, q string, args ...any) (CommandTag, error) {
	return execOn(ctx, a.db, q, args...)
}

func (a *sqlAdapter) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	return queryOn(ctx, a.db, q, args...)
}

func (a *sqlAdapter) QueryRow(ctx context.Context, q string, args ...any) Row {
	return a.db.QueryRowContext(ctx, q, args...)
}

func (a *sqlAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(sqlTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlTx struct{ tx *sql.Tx }

func (t sqlTx) Exec(ctx context.Context, q string, args ...any) (CommandTag, error) {
	return execOn(ctx, t.tx, q, args...)
}

func (t sqlTx) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	return queryOn(ctx, t.tx, q, args...)
}

func (t sqlTx) QueryRow(ctx context.Context, q string, args ...any) Row {
	return t.tx.QueryRowContext(ctx, q, args...)
}

func execOn(ctx context.Context, c sqlConn, q string, args ...any) (CommandTag, error) {
	res, err := c.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	n, _ := res.RowsAffected()
	return sqlTag{n: n}, nil
}

func queryOn(ctx context.Context, c sqlConn, q string, args ...any) (Rows, error) {
	rs, err := c.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{r: rs}, nil
}

type sqlRows struct{ r *sql.Rows }

func (x *sqlRows) Next() bool             { return x.r.Next() }
func (x *sqlRows) Scan(dest ...any) error { return x.r.Scan(dest...) }
func (x *sqlRows) Err() error             { return x.r.Err() }
func (x *sqlRows) Close()                 { _ = x.r.Close() }
func (x *sqlRows) Columns() []string {
	cols, _ := x.r.Columns()
	return cols
}

type sqlTag struct{ n int64 }

func (t sqlTag) String() string      { return fmt.Sprintf("ROWS %d", t.n) }
func (t sqlTag) RowsAffected() int64 { return t.n }
