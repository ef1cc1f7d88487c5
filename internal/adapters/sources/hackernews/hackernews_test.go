package hackernews

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "trawler/internal/platform/errors"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search_by_date" || r.URL.Query().Get("tags") != "show_hn" {
			t.Errorf("request = %s", r.URL)
		}
		if !strings.Contains(r.URL.Query().Get("numericFilters"), "points>=20") {
			t.Errorf("filters = %s", r.URL.Query().Get("numericFilters"))
		}
		_, _ = w.Write([]byte(`{"hits":[
			{"objectID":"1","title":"Show HN: Pgmcp","url":"https://github.com/a/pgmcp","author":"al","points":150,"num_comments":40,"created_at_i":1760000000},
			{"objectID":"2","title":"Show HN: Text only","points":30,"story_text":"a self-hosted thing"}
		]}`))
	}))
	defer srv.Close()

	got, err := New(Options{BaseURL: srv.URL}).Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("hits = %d", len(got))
	}
	if got[0].Title != "Pgmcp" || got[0].Signals.Engagement != 150 || got[0].Signals.Comments != 40 {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].Source.URL != "https://news.ycombinator.com/item?id=2" || got[1].What != "a self-hosted thing" {
		t.Fatalf("second = %+v", got[1])
	}
}

func TestFetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	if _, err := New(Options{BaseURL: srv.URL}).Fetch(context.Background()); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v", err)
	}
}
