package modkit

import (
	"net/http"
	"testing"

	"trawler/internal/platform/store"
)

func TestBuild_AppliesOptions(t *testing.T) {
	mw := func(next http.Handler) http.Handler { return next }
	b := Build(WithName("digests"), WithPrefix("/digests"), WithMiddlewares(mw, mw), WithPorts("p"))
	if b.Name != "digests" || b.Prefix != "/digests" || len(b.Mw) != 2 || b.Ports != "p" {
		t.Fatalf("Build = %+v", b)
	}
}

func TestDeps_NilStoreIsSafe(t *testing.T) {
	var d Deps
	if d.PG() != nil || d.Lite() != nil || d.CH() != nil {
		t.Fatalf("zero deps should expose nil seams")
	}
	d.Store = &store.Store{}
	if d.PG() != nil {
		t.Fatalf("empty store should expose nil pg")
	}
}
