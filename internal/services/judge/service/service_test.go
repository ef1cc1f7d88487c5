package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"trawler/internal/platform/testkit"
	"trawler/internal/services/judge/domain"
)

type fakeLLM struct {
	enabled  bool
	calls    atomic.Int64
	inflight atomic.Int64
	peak     atomic.Int64
	reply    func(user string) (string, error)
}

func (f *fakeLLM) Enabled() bool { return f.enabled }

func (f *fakeLLM) Complete(_ context.Context, _, user string) (string, error) {
	f.calls.Add(1)
	n := f.inflight.Add(1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	f.inflight.Add(-1)
	return f.reply(user)
}

func noSleep(t *testing.T) {
	testkit.Swap(t, &sleep, func(context.Context, time.Duration) {})
}

func echoTitle(user string) (string, error) {
	title := strings.TrimPrefix(strings.SplitN(user, "\n", 2)[0], "Title: ")
	return fmt.Sprintf("```json\n{\"actionable\": true, \"confidence\": 0.9, \"title\": %q}\n```", title), nil
}

func inputs(n int) []domain.Input {
	xs := make([]domain.Input, n)
	for i := range xs {
		xs[i] = domain.Input{Title: fmt.Sprintf("item-%02d", i)}
	}
	return xs
}

func TestJudgeBatchPreservesOrder(t *testing.T) {
	noSleep(t)
	llm := &fakeLLM{enabled: true, reply: echoTitle}
	s := New(llm, Config{})

	in := inputs(23)
	out := s.JudgeBatch(context.Background(), in, 4)
	if len(out) != len(in) {
		t.Fatalf("len = %d", len(out))
	}
	for i, v := range out {
		if v == nil || v.Title != in[i].Title {
			t.Fatalf("slot %d holds %+v", i, v)
		}
	}
	if llm.calls.Load() != 23 {
		t.Fatalf("calls = %d", llm.calls.Load())
	}
	if p := llm.peak.Load(); p > 4 {
		t.Fatalf("peak concurrency %d exceeds 4 workers", p)
	}
}

func TestJudgeBatchWithoutCredential(t *testing.T) {
	llm := &fakeLLM{enabled: false, reply: echoTitle}
	out := New(llm, Config{}).JudgeBatch(context.Background(), inputs(7), 0)
	if len(out) != 7 {
		t.Fatalf("len = %d", len(out))
	}
	for i, v := range out {
		if v != nil {
			t.Fatalf("slot %d should be nil", i)
		}
	}
	if llm.calls.Load() != 0 {
		t.Fatalf("no credential must mean zero calls, got %d", llm.calls.Load())
	}
	if New(nil, Config{}).Judge(context.Background(), domain.Input{}) != nil {
		t.Fatal("nil completer must judge nil")
	}
}

func TestJudgeFailuresAreNil(t *testing.T) {
	cases := map[string]func(string) (string, error){
		"transport":   func(string) (string, error) { return "", errors.New("dial tcp: refused") },
		"prose only":  func(string) (string, error) { return "I think this is great", nil },
		"no decision": func(string) (string, error) { return `{"confidence": 0.9}`, nil },
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			s := New(&fakeLLM{enabled: true, reply: reply}, Config{})
			if v := s.Judge(context.Background(), domain.Input{Title: "x"}); v != nil {
				t.Fatalf("want nil, got %+v", v)
			}
		})
	}
}

func TestJudgeBatchPacesEachWorker(t *testing.T) {
	var (
		mu    sync.Mutex
		naps  int
		slept time.Duration
	)
	testkit.Swap(t, &sleep, func(_ context.Context, d time.Duration) {
		mu.Lock()
		naps++
		slept = d
		mu.Unlock()
	})
	s := New(&fakeLLM{enabled: true, reply: echoTitle}, Config{Pacing: 40 * time.Millisecond})
	s.JudgeBatch(context.Background(), inputs(6), 2)
	if naps != 6 || slept != 40*time.Millisecond {
		t.Fatalf("naps=%d slept=%v", naps, slept)
	}
}

func TestBuildUserTruncatesContext(t *testing.T) {
	u := buildUser(domain.Input{
		Title:   "  Repo\nLens ",
		URL:     "https://github.com/acme/lens",
		Context: strings.Repeat("x", maxContextChars+50),
		Install: []string{"brew install lens"},
	})
	testkit.MustContain(t, u, "Title: Repo Lens\n")
	testkit.MustContain(t, u, "Install: brew install lens")
	if strings.Count(u, "x") > maxContextChars+1 {
		t.Fatal("context not truncated")
	}
}
