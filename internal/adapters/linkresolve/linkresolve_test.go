package linkresolve

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trawler/internal/core/discovery"
	kit "trawler/internal/platform/testkit"
)

type fakeReadme struct {
	text  string
	err   error
	calls int
}

func (f *fakeReadme) Readme(_ context.Context, owner, name string) (string, error) {
	f.calls++
	return f.text, f.err
}

const pageHTML = `<html><head><title>PgMCP</title><meta name="description" content="Talk to Postgres"></head>
<body><nav>menu menu menu menu menu menu</nav><script>var x = "nope nope nope nope nope";</script>
<article><p>PgMCP exposes your database to agents over MCP.</p><p>short</p></article></body></html>`

func TestEnrichPrefersReadme(t *testing.T) {
	rd := &fakeReadme{text: "# pgmcp\nInstall with npx pgmcp"}
	r := New(rd, Options{MaxLinks: 1})
	it := r.Enrich(context.Background(), discovery.RawItem{
		ID:    "1",
		Links: []string{"https://blog.invalid/post", "https://github.com/a/pgmcp/blob/main/README.md"},
	})
	if rd.calls != 1 {
		t.Fatalf("readme calls = %d", rd.calls)
	}
	kit.MustContain(t, it.Context, "README a/pgmcp")
	kit.MustContain(t, it.Context, "npx pgmcp")
}

func TestPageExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(pageHTML))
	}))
	defer srv.Close()

	r := New(nil, Options{})
	txt, err := r.Page(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	kit.MustContain(t, txt, "PgMCP")
	kit.MustContain(t, txt, "Talk to Postgres")
	kit.MustContain(t, txt, "exposes your database")
	if strings.Contains(txt, "menu") || strings.Contains(txt, "nope") {
		t.Fatalf("chrome leaked into text: %q", txt)
	}
}

func TestEnrichFallsBackToSnippet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/dead", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "new tool drop" {
			t.Errorf("query = %q", r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<div class="result__snippet">A tool that drops things.</div>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rd := &fakeReadme{err: errors.New("rate limited")}
	r := New(rd, Options{SnippetURL: srv.URL + "/search"})
	it := r.Enrich(context.Background(), discovery.RawItem{
		Text:  "new tool drop\nmore words",
		Links: []string{srv.URL + "/dead"},
	})
	if it.Context != "A tool that drops things." {
		t.Fatalf("context = %q", it.Context)
	}
}

func TestLinkCapAndClip(t *testing.T) {
	rd := &fakeReadme{text: strings.Repeat("x", 5000)}
	r := New(rd, Options{MaxLinks: 2, MaxChars: 100})
	it := r.Enrich(context.Background(), discovery.RawItem{Links: []string{
		"https://github.com/a/1", "https://github.com/a/2", "https://github.com/a/3",
	}})
	if rd.calls != 2 {
		t.Fatalf("links followed = %d", rd.calls)
	}
	for _, part := range strings.Split(it.Context, "\n\n") {
		if len([]rune(part)) > 100 {
			t.Fatalf("part not clipped: %d", len(part))
		}
	}
}
