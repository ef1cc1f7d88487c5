package repokit

import (
	"context"
	"errors"
	"slices"
	"testing"

	"trawler/internal/platform/store"
)

// recorder is a TxRunner that logs every statement, in and out of a tx
type recorder struct {
	txs   int
	stmts []string
	fail  string
}

func (r *recorder) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	r.stmts = append(r.stmts, sql)
	if sql == r.fail {
		return nil, errors.New("boom")
	}
	return nil, nil
}

func (r *recorder) Query(_ context.Context, sql string, _ ...any) (store.Rows, error) {
	r.stmts = append(r.stmts, sql)
	return nil, nil
}

func (r *recorder) QueryRow(_ context.Context, sql string, _ ...any) store.Row {
	r.stmts = append(r.stmts, sql)
	return nil
}

func (r *recorder) Tx(_ context.Context, fn func(q Queryer) error) error {
	r.txs++
	return fn(r)
}

var _ TxRunner = (*recorder)(nil)

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("%s: expected panic, got none", name)
		}
	}()
	fn()
}

func TestBindFunc(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	b := BindFunc[Queryer](func(q Queryer) Queryer { return q })
	if got := MustBind[Queryer](b, rec); got != Queryer(rec) {
		t.Fatalf("MustBind returned a different queryer")
	}
	mustPanic(t, "MustBind(nil)", func() { _ = MustBind[Queryer](b, nil) })
	mustPanic(t, "RequireQueryer(nil)", func() { _ = RequireQueryer(nil) })
}

func TestBeginHooksRunFirstInsideTx(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	tx := WithBeginHooks(rec, Exec("SET LOCAL a"), Exec("SET LOCAL b"))
	err := WithTx(context.Background(), tx, func(q Queryer) error {
		_, err := q.Exec(context.Background(), "INSERT")
		return err
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if rec.txs != 1 || !slices.Equal(rec.stmts, []string{"SET LOCAL a", "SET LOCAL b", "INSERT"}) {
		t.Fatalf("txs %d stmts %v", rec.txs, rec.stmts)
	}

	// outside a tx the wrapper only delegates
	_, _ = tx.Exec(context.Background(), "SELECT 1")
	if rec.stmts[len(rec.stmts)-1] != "SELECT 1" || rec.txs != 1 {
		t.Fatalf("plain exec went through hooks: %v", rec.stmts)
	}
}

func TestBeginHookErrorAbortsTx(t *testing.T) {
	t.Parallel()

	rec := &recorder{fail: "SET LOCAL a"}
	called := false
	err := WithTx(context.Background(), WithBeginHooks(rec, Exec("SET LOCAL a")), func(Queryer) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Fatalf("err %v called %v", err, called)
	}
}

func TestWithBeginHooksNoHooksIsIdentity(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	if WithBeginHooks(rec) != TxRunner(rec) {
		t.Fatalf("no hooks should return inner")
	}
}
