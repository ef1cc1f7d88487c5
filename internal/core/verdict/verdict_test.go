package verdict

import (
	"errors"
	"slices"
	"testing"

	"trawler/internal/core/discovery"
)

func TestParseShapes(t *testing.T) {
	for name, in := range map[string]string{
		"bare":   `{"actionable": true, "confidence": 0.8, "title": "X"}`,
		"fenced": "Sure!\n```json\n{\"actionable\": true, \"confidence\": 0.8, \"title\": \"X\"}\n```\nthanks",
		"prose":  `Here you go: {"actionable": true, "confidence": 0.8, "title": "X", "reason": "has {braces}"} done`,
	} {
		v, err := Parse(in)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !v.Actionable || v.Confidence != 0.8 || v.Title != "X" {
			t.Fatalf("%s: %+v", name, v)
		}
	}
}

func TestParseFailures(t *testing.T) {
	if _, err := Parse("I cannot help with that"); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("want ErrNoJSON, got %v", err)
	}
	if _, err := Parse(`{"confidence": 0.9}`); err == nil {
		t.Fatalf("missing actionable must fail")
	}
	if _, err := Parse(`{"actionable": "yes"`); err == nil {
		t.Fatalf("truncated json must fail")
	}
}

func TestParseClampsAndNormalizesScores(t *testing.T) {
	v, err := Parse(`{"actionable": true, "confidence": 7, "scores": {" Utility ": 2, "novelty": -1}}`)
	if err != nil {
		t.Fatal(err)
	}
	if v.Confidence != 1 || v.Scores["utility"] != 1 || v.Scores["novelty"] != 0 {
		t.Fatalf("not clamped: %+v", v)
	}
}

func allScores(s float64) map[string]float64 {
	m := map[string]float64{}
	for _, c := range discovery.Criteria {
		m[c] = s
	}
	return m
}

func TestDecide(t *testing.T) {
	accept := func() (Outcome, string) { return Accept, "fb yes" }
	reject := func() (Outcome, string) { return Reject, "fb no" }
	unsure := func() (Outcome, string) { return Pending, "fb unsure" }

	cases := []struct {
		name    string
		v       *discovery.JudgeVerdict
		fb      Fallback
		want    Outcome
		failing []string
	}{
		{"nil no fallback", nil, nil, Pending, nil},
		{"nil fallback accept", nil, accept, Accept, nil},
		{"nil fallback reject", nil, reject, Reject, nil},
		{"nil fallback unsure", nil, unsure, Pending, nil},
		{"pass no scores", &discovery.JudgeVerdict{Actionable: true, Confidence: 0.5}, reject, Accept, nil},
		{"pass all scores", &discovery.JudgeVerdict{Actionable: true, Confidence: 0.9, Scores: allScores(0.5)}, nil, Accept, nil},
		{"low confidence", &discovery.JudgeVerdict{Actionable: true, Confidence: 0.49}, accept, Reject, []string{"confidence"}},
		{"not actionable", &discovery.JudgeVerdict{Confidence: 0.9}, nil, Reject, []string{"actionable"}},
		{"one weak score", &discovery.JudgeVerdict{Actionable: true, Confidence: 0.9, Scores: map[string]float64{
			"utility": 0.9, "downloadability": 0.2, "specificity": 0.9, "signal": 0.9, "novelty": 0.9,
		}}, nil, Reject, []string{"downloadability"}},
		{"partial scores", &discovery.JudgeVerdict{Actionable: true, Confidence: 0.9, Scores: map[string]float64{"utility": 1}}, nil, Reject,
			[]string{"downloadability", "specificity", "signal", "novelty"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(tc.v, tc.fb)
			if d.Outcome != tc.want {
				t.Fatalf("outcome = %v, want %v", d.Outcome, tc.want)
			}
			if !slices.Equal(d.Failing, tc.failing) {
				t.Fatalf("failing = %v, want %v", d.Failing, tc.failing)
			}
		})
	}
}

func TestDecisionVerdict(t *testing.T) {
	if (Decision{Outcome: Accept}).Verdict() != discovery.VerdictInclude ||
		(Decision{Outcome: Reject}).Verdict() != discovery.VerdictExclude ||
		(Decision{}).Verdict() != discovery.VerdictPending {
		t.Fatalf("verdict mapping broken")
	}
}

func TestKeywordsFallback(t *testing.T) {
	for _, tc := range []struct {
		c    discovery.Candidate
		want Outcome
	}{
		{discovery.Candidate{Title: "new cli", Source: discovery.Source{URL: "https://github.com/a/b"}}, Accept},
		{discovery.Candidate{Title: "try it", Install: discovery.Install{Steps: []string{"brew install foo"}}}, Accept},
		{discovery.Candidate{Title: "Top 10 AI tools you need", Source: discovery.Source{URL: "https://github.com/a/b"}}, Reject},
		{discovery.Candidate{Title: "foo: an mcp server for deploys", Source: discovery.Source{URL: "https://foo.dev"}}, Pending},
	} {
		got, _ := Keywords(tc.c)()
		if got != tc.want {
			t.Fatalf("%q: got %v want %v", tc.c.Title, got, tc.want)
		}
	}
}

func TestDecisionPasses(t *testing.T) {
	for o, want := range map[Outcome]bool{Accept: true, Pending: true, Reject: false} {
		if got := (Decision{Outcome: o}).Passes(); got != want {
			t.Fatalf("%v passes = %v", o, got)
		}
	}
}
