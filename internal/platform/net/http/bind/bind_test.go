package bind

import (
	"net/http/httptest"
	"strings"
	"testing"

	perr "trawler/internal/platform/errors"
)

type runReq struct {
	MaxPicks int  `json:"max_picks" validate:"omitempty,min=1,max=20"`
	DryRun   bool `json:"dry_run"`
}

func TestParseJSON(t *testing.T) {
	opts := JSONOptions{MaxBytes: 1 << 10, DisallowUnknown: true, AllowEmptyBody: true}

	r := httptest.NewRequest("POST", "/runs", strings.NewReader(`{"max_picks":4,"dry_run":true}`))
	got, err := ParseJSON[runReq](r, opts)
	if err != nil || got.MaxPicks != 4 || !got.DryRun {
		t.Fatalf("ParseJSON = %+v, %v", got, err)
	}

	r = httptest.NewRequest("POST", "/runs", strings.NewReader(""))
	if got, err := ParseJSON[runReq](r, opts); err != nil || got.MaxPicks != 0 {
		t.Fatalf("empty body should be allowed: %+v %v", got, err)
	}

	r = httptest.NewRequest("POST", "/runs", strings.NewReader(`{"nope":1}`))
	if _, err := ParseJSON[runReq](r, opts); !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("unknown field should be a JSON error, got %v", err)
	}

	r = httptest.NewRequest("POST", "/runs", strings.NewReader(`{"max_picks":99}`))
	_, err = ParseJSON[runReq](r, opts)
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("max violation should be validation error, got %v", err)
	}
	if e, _ := perr.As(err); e.Field() != "max_picks" || e.Error() != "max_picks must be at most 20" {
		t.Fatalf("validation detail = %q field %q", e.Error(), e.Field())
	}
}

func TestStruct(t *testing.T) {
	type opts struct {
		Workers int `json:"workers" validate:"min=1"`
	}
	if err := Struct(opts{Workers: 2}); err != nil {
		t.Fatalf("valid struct: %v", err)
	}
	if err := Struct(opts{}); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("invalid struct should fail, got %v", err)
	}
}
