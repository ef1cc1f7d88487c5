package httpkit

import (
	"net/http"
	"slices"
	"testing"
)

type fakeRouter struct {
	prefixes []string
	groups   int
	mwLens   []int
	mounted  int
}

func (f *fakeRouter) Get(string, func(http.ResponseWriter, *http.Request))  {}
func (f *fakeRouter) Post(string, func(http.ResponseWriter, *http.Request)) {}
func (f *fakeRouter) Handle(string, http.Handler)                           {}
func (f *fakeRouter) Mux() http.Handler                                     { return http.NewServeMux() }

func (f *fakeRouter) Use(mw ...func(http.Handler) http.Handler) {
	f.mwLens = append(f.mwLens, len(mw))
}

func (f *fakeRouter) Group(fn func(Router)) {
	f.groups++
	fn(f)
}

func (f *fakeRouter) Route(prefix string, fn func(Router)) {
	f.prefixes = append(f.prefixes, prefix)
	fn(f)
}

func noop(h http.Handler) http.Handler { return h }

func TestMountAPI(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		version string
		mw      []func(http.Handler) http.Handler
		prefix  string
		uses    []int
	}{
		{"plain", "v1", []func(http.Handler) http.Handler{noop, noop}, "/api/v1", []int{2}},
		{"slashes trimmed", "/v2/", nil, "/api/v2", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := &fakeRouter{}
			MountAPI(f, tc.version, tc.mw, func(Router) { f.mounted++ })
			if !slices.Equal(f.prefixes, []string{tc.prefix}) {
				t.Fatalf("prefixes = %v", f.prefixes)
			}
			if !slices.Equal(f.mwLens, tc.uses) || f.mounted != 1 {
				t.Fatalf("use %v mounted %d", f.mwLens, f.mounted)
			}
		})
	}
}

func TestMountUnderEmptyPrefixGroups(t *testing.T) {
	t.Parallel()

	f := &fakeRouter{}
	MountUnder(f, "", []func(http.Handler) http.Handler{noop}, func(Router) { f.mounted++ })
	if f.groups != 1 || len(f.prefixes) != 0 || f.mounted != 1 {
		t.Fatalf("groups %d prefixes %v mounted %d", f.groups, f.prefixes, f.mounted)
	}
	if !slices.Equal(f.mwLens, []int{1}) {
		t.Fatalf("use = %v", f.mwLens)
	}
}

func TestMountAPIV1(t *testing.T) {
	t.Parallel()

	f := &fakeRouter{}
	MountAPIV1(f, nil, func(Router) {})
	if !slices.Equal(f.prefixes, []string{"/api/v1"}) {
		t.Fatalf("prefixes = %v", f.prefixes)
	}
}
