package module

import (
	"testing"

	phttp "trawler/internal/platform/net/http"
	kit "trawler/internal/platform/testkit"
)

type runner interface{ Run() string }

type fakeRunner struct{}

func (fakeRunner) Run() string { return "ran" }

type ports struct {
	Runner runner
	hidden runner
}

type fakeModule struct{ ports any }

func (f fakeModule) MountRoutes(phttp.Router) {}
func (f fakeModule) Ports() any               { return f.ports }
func (f fakeModule) Name() string             { return "fake" }

func TestPortsOf(t *testing.T) {
	m := fakeModule{ports: ports{Runner: fakeRunner{}}}
	r, ok := PortsOf[runner](m)
	if !ok || r.Run() != "ran" {
		t.Fatalf("PortsOf struct field failed")
	}
	if _, ok := PortsOf[runner](fakeModule{}); ok {
		t.Fatalf("nil ports should not match")
	}
	if _, ok := PortsOf[runner](fakeModule{ports: &ports{Runner: fakeRunner{}}}); !ok {
		t.Fatalf("pointer ports should be walked")
	}
	kit.MustPanic(t, func() { _ = MustPortsOf[runner](fakeModule{ports: 42}) })
}

func TestRegistry(t *testing.T) {
	kit.Serial(t)
	Reset()
	t.Cleanup(Reset)

	Register("compile", ports{Runner: fakeRunner{}})
	p, ok := PortsAs[ports]("compile")
	if !ok || p.Runner == nil {
		t.Fatalf("PortsAs failed")
	}
	if _, ok := PortsAs[int]("compile"); ok {
		t.Fatalf("wrong type should not assert")
	}
	if _, ok := PortsAs[ports]("missing"); ok {
		t.Fatalf("missing name should not resolve")
	}
}
