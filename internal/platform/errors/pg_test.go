package errors

import (
	stderrs "errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pg(code string) *pgconn.PgError { return &pgconn.PgError{Code: code} }

func TestDBErrorCodeMappings(t *testing.T) {
	cases := []struct {
		code string
		want ErrorCode
	}{
		{"23505", ErrorCodeConflict},
		{"23502", ErrorCodeValidation},
		{"23514", ErrorCodeValidation},
		{"25006", ErrorCodeUnavailable},
		{"57P03", ErrorCodeUnavailable},
		{"40001", ErrorCodeDB},
		{"XXXXX", ErrorCodeDB},
	}
	for _, c := range cases {
		got, ok := DBErrorCode(pg(c.code))
		if !ok || got != c.want {
			t.Fatalf("DBErrorCode(%s) = %v,%v want %v", c.code, got, ok, c.want)
		}
	}
	if _, ok := DBErrorCode(stderrs.New("nope")); ok {
		t.Fatalf("DBErrorCode should return ok=false for non-pg error")
	}
}

func TestFromPostgres(t *testing.T) {
	if FromPostgres(nil, "x") != nil || FromPostgresf(nil, "x %d", 1) != nil {
		t.Fatalf("nil should pass through")
	}
	if err := FromPostgresf(pg("23505"), "upsert %s", "k"); CodeOf(err) != ErrorCodeConflict {
		t.Fatalf("FromPostgresf code = %v", CodeOf(err))
	}
	if err := FromPostgres(stderrs.New("conn reset"), "load"); CodeOf(err) != ErrorCodeDB {
		t.Fatalf("foreign error should map to DB, got %v", CodeOf(err))
	}
	if !IsUndefinedTable(Wrap(pg("42P01"), ErrorCodeDB, "load")) {
		t.Fatalf("IsUndefinedTable should see through wraps")
	}
}

func TestIsRetryable(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03", "57P03"} {
		if !IsRetryable(pg(code)) {
			t.Fatalf("%s should be retryable", code)
		}
	}
	if IsRetryable(pg("23505")) {
		t.Fatalf("23505 should not be retryable")
	}
	if !IsRetryable(stderrs.New("ERROR: deadlock detected")) {
		t.Fatalf("text fallback should detect deadlock")
	}
	if IsRetryable(stderrs.New("nope")) {
		t.Fatalf("unrelated error should not be retryable")
	}
}
