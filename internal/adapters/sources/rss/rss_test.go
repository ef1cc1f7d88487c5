package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trawler/internal/core/discovery"
	perr "trawler/internal/platform/errors"
)

const feedXML = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Blog</title>
<item><title>New MCP server for Postgres</title><link>https://github.com/a/pg-mcp</link>
<guid>1</guid><description>open source connector</description><pubDate>%s</pubDate></item>
<item><title>Cooking tips</title><link>https://food.example/1</link><guid>2</guid><pubDate>%s</pubDate></item>
<item><title>Old MCP news</title><link>https://old.example</link><guid>3</guid><pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate></item>
</channel></rss>`

func TestFetchFiltersAndMaps(t *testing.T) {
	now := time.Now().UTC().Format(time.RFC1123Z)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, feedXML, now, now)
	}))
	defer srv.Close()

	s := New(Options{Feeds: []string{srv.URL}, Keywords: []string{"MCP"}})
	got, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 item, got %d: %+v", len(got), got)
	}
	c := got[0]
	if c.ID != "rss:1" || c.Origin != discovery.OriginRSS || c.Source.URL != "https://github.com/a/pg-mcp" {
		t.Fatalf("candidate = %+v", c)
	}
	if c.What != "open source connector" {
		t.Fatalf("description = %q", c.What)
	}
}

func TestFetchPartialAndTotalFailure(t *testing.T) {
	now := time.Now().UTC().Format(time.RFC1123Z)
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, feedXML, now, now)
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	got, err := New(Options{Feeds: []string{bad.URL, good.URL}}).Fetch(context.Background())
	if err != nil || len(got) != 2 {
		t.Fatalf("one bad feed should be skipped: %d %v", len(got), err)
	}

	_, err = New(Options{Feeds: []string{bad.URL}}).Fetch(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("all feeds failing should error, got %v", err)
	}
}

func TestFetchDropsUnreadableScripts(t *testing.T) {
	body := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Mixed</title>
<item><title>A terminal file manager written in Rust</title><link>https://github.com/a/fm</link><guid>en</guid></item>
<item><title>Файловый менеджер для терминала на Rust</title><link>https://github.com/b/fm</link><guid>ru</guid></item>
</channel></rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	got, err := New(Options{Feeds: []string{srv.URL}, Scripts: []string{"Latin"}}).Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "rss:en" {
		t.Fatalf("want only the latin item, got %+v", got)
	}
}
