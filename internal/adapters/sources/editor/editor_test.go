package editor

import (
	"context"
	"path/filepath"
	"testing"

	"trawler/internal/core/discovery"
	perr "trawler/internal/platform/errors"
	kit "trawler/internal/platform/testkit"
)

func TestFetch(t *testing.T) {
	path := kit.WriteFile(t, "picks.json", `[
		{"category":"Tool","title":"Thing","oneLiner":"does things","install":["brew install thing"],"url":"https://github.com/a/thing"},
		{"id":"fixed","category":"privacy","title":"Vault","oneLiner":"keeps secrets","url":"https://vault.example"}
	]`)
	got, err := New(path).Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("picks = %d", len(got))
	}
	if got[0].ID != "editor:0" || got[0].Category != discovery.CategoryTool || got[0].Origin != discovery.OriginEditor {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].ID != "fixed" || got[1].Install.Steps != nil {
		t.Fatalf("second = %+v", got[1])
	}
}

func TestFetchMissingIsEmpty(t *testing.T) {
	got, err := New(filepath.Join(t.TempDir(), "nope.json")).Fetch(context.Background())
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v %v", got, err)
	}
	if got, err := New("").Fetch(context.Background()); err != nil || got != nil {
		t.Fatalf("empty path: %v %v", got, err)
	}
}

func TestFetchRejectsBadPicks(t *testing.T) {
	bad := kit.WriteFile(t, "bad.json", `[{"category":"gossip","title":"x","oneLiner":"y","url":"https://x.example"}]`)
	_, err := New(bad).Fetch(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("bad category: %v", err)
	}

	noURL := kit.WriteFile(t, "nourl.json", `[{"category":"tool","title":"x","oneLiner":"y"}]`)
	if _, err := New(noURL).Fetch(context.Background()); err == nil {
		t.Fatalf("missing url must fail")
	}

	broken := kit.WriteFile(t, "broken.json", `[{`)
	if _, err := New(broken).Fetch(context.Background()); !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("broken json: %v", err)
	}
}
