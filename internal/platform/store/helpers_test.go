package store

import (
	"context"
	"errors"
	"testing"
)

func TestRebind(t *testing.T) {
	cases := []struct{ in, want string }{
		{"SELECT 1", "SELECT 1"},
		{"WHERE key = $1 AND n > $12", "WHERE key = ?1 AND n > ?12"},
		{"SELECT '$1' , $2", "SELECT '$1' , ?2"},
		{"price $ 5", "price $ 5"},
	}
	for _, c := range cases {
		if got := Rebind(c.in); got != c.want {
			t.Fatalf("Rebind(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

type fakeRows struct {
	data [][]any
	idx  int
	err  error
}

func (r *fakeRows) Next() bool { r.idx++; return r.idx <= len(r.data) }
func (r *fakeRows) Scan(dest ...any) error {
	for i, v := range r.data[r.idx-1] {
		*(dest[i].(*string)) = v.(string)
	}
	return nil
}
func (r *fakeRows) Err() error        { return r.err }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return []string{"key"} }

type fakeQuerier struct{ rows *fakeRows }

func (f fakeQuerier) Exec(context.Context, string, ...any) (CommandTag, error) { return nil, nil }
func (f fakeQuerier) Query(context.Context, string, ...any) (Rows, error)      { return f.rows, nil }
func (f fakeQuerier) QueryRow(context.Context, string, ...any) Row             { return nil }

func TestMany(t *testing.T) {
	q := fakeQuerier{rows: &fakeRows{data: [][]any{{"a"}, {"b"}}}}
	got, err := Many(context.Background(), q, func(r Row) (string, error) {
		var s string
		return s, r.Scan(&s)
	}, "SELECT key FROM discovery_registry")
	if err != nil || len(got) != 2 || got[1] != "b" {
		t.Fatalf("Many = %v, %v", got, err)
	}

	boom := errors.New("boom")
	q = fakeQuerier{rows: &fakeRows{err: boom}}
	if _, err := Many(context.Background(), q, func(Row) (string, error) { return "", nil }, "x"); !errors.Is(err, boom) {
		t.Fatalf("Many should surface rows.Err, got %v", err)
	}
}

func TestOpen_NoBackends(t *testing.T) {
	s, err := Open(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.PG != nil || s.Lite != nil || s.CH != nil {
		t.Fatalf("no backend should be enabled: %+v", s)
	}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("Guard on empty store: %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Config{Lite: LiteConfig{Enabled: true, Path: t.TempDir() + "/reg.db"}})
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	defer s.Close(ctx)

	if err := s.Guard(ctx); err != nil {
		t.Fatalf("Guard: %v", err)
	}
	err = s.Lite.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx, "CREATE TABLE t (k TEXT PRIMARY KEY, n INTEGER)"); err != nil {
			return err
		}
		_, err := q.Exec(ctx, Rebind("INSERT INTO t (k, n) VALUES ($1, $2)"), "a", 3)
		return err
	})
	if err != nil {
		t.Fatalf("Tx: %v", err)
	}
	n, err := Scalar[int64](ctx, s.Lite, Rebind("SELECT n FROM t WHERE k = $1"), "a")
	if err != nil || n != 3 {
		t.Fatalf("Scalar = %d, %v", n, err)
	}
}
