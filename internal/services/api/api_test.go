package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"trawler/internal/modkit"
	"trawler/internal/platform/config"
	"trawler/internal/platform/logger"
	phttp "trawler/internal/platform/net/http"
	kit "trawler/internal/platform/testkit"
	compilemod "trawler/internal/services/compile/module"

	"github.com/go-chi/chi/v5"
)

func TestMountServesV1(t *testing.T) {
	kit.Serial(t)
	dir := t.TempDir()
	t.Setenv("TRAWLER_DATA_DIR", dir)
	t.Setenv("TRAWLER_REGISTRY_PATH", filepath.Join(dir, "registry.json"))

	deps := modkit.Deps{Log: logger.New(logger.Options{Level: "error"}), Cfg: config.New()}
	cm, err := compilemod.New(context.Background(), deps)
	if err != nil {
		t.Fatalf("compile module: %v", err)
	}

	mux := chi.NewRouter()
	Mount(phttp.AdaptChi(mux), Options{
		Deps:        deps,
		Compile:     cm.Ports().(compilemod.Ports),
		CORSOrigins: []string{"https://ops.example"},
	})

	for _, tc := range []struct {
		path string
		want int
	}{
		{"/ping", http.StatusOK},
		{"/api/v1/meta/health", http.StatusOK},
		{"/api/v1/digests/latest", http.StatusNotFound},
		{"/api/v1/runs/unknown/decisions", http.StatusNotFound},
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", tc.path, nil))
		if rec.Code != tc.want {
			t.Fatalf("%s = %d want %d: %s", tc.path, rec.Code, tc.want, rec.Body.String())
		}
	}
}
