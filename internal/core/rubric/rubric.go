// Package rubric scores candidates against a tunable five part quality rubric.
// The rubric itself is YAML; the embedded default.yaml is used unless a file
// override is given
package rubric

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"

	"trawler/internal/core/discovery"
	"trawler/internal/core/normalize"
)

//go:embed default.yaml
var embedded []byte

type rawTier struct {
	Name       string   `yaml:"name"`
	Weight     float64  `yaml:"weight"`
	Points     float64  `yaml:"points"`
	Categories []string `yaml:"categories"`
	Terms      []string `yaml:"terms"`
}

type rawBand struct {
	Below int     `yaml:"below"`
	Min   int     `yaml:"min"`
	Score float64 `yaml:"score"`
}

type rawRubric struct {
	Version  int     `yaml:"version"`
	MinScore float64 `yaml:"min_score"`
	Novelty  struct {
		Tiers []rawTier `yaml:"tiers"`
	} `yaml:"novelty"`
	Usage struct {
		Bands           []rawBand `yaml:"bands"`
		Top             float64   `yaml:"top"`
		RecentPushDays  int       `yaml:"recent_push_days"`
		RecentBonus     float64   `yaml:"recent_bonus"`
		ForksMin        int       `yaml:"forks_min"`
		ForksBonus      float64   `yaml:"forks_bonus"`
		OpenIssuesMin   int       `yaml:"open_issues_min"`
		OpenIssuesBonus float64   `yaml:"open_issues_bonus"`
	} `yaml:"usage"`
	Install struct {
		Recognized   []string `yaml:"recognized"`
		Placeholders []string `yaml:"placeholders"`
	} `yaml:"install"`
	Documentation struct {
		Readme struct {
			Header       float64 `yaml:"header"`
			CodeBlock    float64 `yaml:"code_block"`
			LongLength   int     `yaml:"long_length"`
			Long         float64 `yaml:"long"`
			MediumLength int     `yaml:"medium_length"`
			Medium       float64 `yaml:"medium"`
		} `yaml:"readme"`
		Description []rawBand `yaml:"description"`
	} `yaml:"documentation"`
	Utility struct {
		Divisor float64   `yaml:"divisor"`
		Tiers   []rawTier `yaml:"tiers"`
	} `yaml:"utility"`
}

// Tier is one compiled keyword tier
type Tier struct {
	Name       string
	Weight     float64
	Categories []discovery.Category
	m          *matcher
}

// Band maps a count threshold to a score
type Band struct {
	Limit int
	Score float64
}

// Rubric is the compiled scoring configuration
type Rubric struct {
	MinScore float64

	Novelty []Tier // ordered strongest first

	UsageBands      []Band // ascending Limit, matched with count < Limit
	UsageTop        float64
	RecentPushDays  int
	RecentBonus     float64
	ForksMin        int
	ForksBonus      float64
	OpenIssuesMin   int
	OpenIssuesBonus float64

	installRe    []*regexp.Regexp
	placeholders []string

	ReadmeHeader       float64
	ReadmeCode         float64
	ReadmeLongLength   int
	ReadmeLong         float64
	ReadmeMediumLength int
	ReadmeMedium       float64
	DescriptionBands   []Band // descending Limit, matched with len >= Limit

	UtilityDivisor float64
	Utility        []Tier
}

// Default returns the embedded rubric
func Default() (*Rubric, error) { return Parse(embedded) }

// MustDefault panics if the embedded rubric does not compile
func MustDefault() *Rubric {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// Load reads a rubric file; an empty path returns the default
func Load(path string) (*Rubric, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rubric: read %s: %w", path, err)
	}
	r, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("rubric: %s: %w", path, err)
	}
	return r, nil
}

// Parse compiles a YAML rubric
func Parse(data []byte) (*Rubric, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("rubric: payload is empty")
	}
	var raw rawRubric
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("rubric: decode: %w", err)
	}
	if raw.Version != 1 {
		return nil, fmt.Errorf("rubric: unsupported version %d (want 1)", raw.Version)
	}

	r := &Rubric{
		MinScore:           raw.MinScore,
		UsageTop:           raw.Usage.Top,
		RecentPushDays:     raw.Usage.RecentPushDays,
		RecentBonus:        raw.Usage.RecentBonus,
		ForksMin:           raw.Usage.ForksMin,
		ForksBonus:         raw.Usage.ForksBonus,
		OpenIssuesMin:      raw.Usage.OpenIssuesMin,
		OpenIssuesBonus:    raw.Usage.OpenIssuesBonus,
		ReadmeHeader:       raw.Documentation.Readme.Header,
		ReadmeCode:         raw.Documentation.Readme.CodeBlock,
		ReadmeLongLength:   raw.Documentation.Readme.LongLength,
		ReadmeLong:         raw.Documentation.Readme.Long,
		ReadmeMediumLength: raw.Documentation.Readme.MediumLength,
		ReadmeMedium:       raw.Documentation.Readme.Medium,
		UtilityDivisor:     raw.Utility.Divisor,
	}
	if r.MinScore <= 0 {
		r.MinScore = 3
	}
	if r.UtilityDivisor <= 0 {
		return nil, fmt.Errorf("rubric: utility divisor must be positive")
	}

	var err error
	if r.Novelty, err = compileTiers(raw.Novelty.Tiers); err != nil {
		return nil, err
	}
	slices.SortStableFunc(r.Novelty, func(a, b Tier) int { return cmpDesc(a.Weight, b.Weight) })

	if r.Utility, err = compileTiers(raw.Utility.Tiers); err != nil {
		return nil, err
	}

	for _, b := range raw.Usage.Bands {
		r.UsageBands = append(r.UsageBands, Band{Limit: b.Below, Score: b.Score})
	}
	slices.SortFunc(r.UsageBands, func(a, b Band) int { return a.Limit - b.Limit })

	for _, b := range raw.Documentation.Description {
		r.DescriptionBands = append(r.DescriptionBands, Band{Limit: b.Min, Score: b.Score})
	}
	slices.SortFunc(r.DescriptionBands, func(a, b Band) int { return b.Limit - a.Limit })

	for _, p := range raw.Install.Recognized {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("rubric: compile install pattern %q: %w", p, err)
		}
		r.installRe = append(r.installRe, re)
	}
	for _, p := range raw.Install.Placeholders {
		if p = normalize.Text(p); p != "" {
			r.placeholders = append(r.placeholders, p)
		}
	}
	return r, nil
}

func compileTiers(in []rawTier) ([]Tier, error) {
	out := make([]Tier, 0, len(in))
	for _, t := range in {
		terms := make([]string, 0, len(t.Terms))
		seen := map[string]bool{}
		for _, term := range t.Terms {
			term = normalize.Text(term)
			if term == "" || seen[term] {
				continue
			}
			seen[term] = true
			terms = append(terms, term)
		}
		var cats []discovery.Category
		for _, c := range t.Categories {
			cat, err := discovery.ParseCategory(c)
			if err != nil {
				return nil, fmt.Errorf("rubric: tier %s: %w", t.Name, err)
			}
			cats = append(cats, cat)
		}
		w := t.Weight
		if w == 0 {
			w = t.Points
		}
		out = append(out, Tier{Name: t.Name, Weight: w, Categories: cats, m: newMatcher(terms)})
	}
	return out, nil
}

func cmpDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

// Match returns the terms of t found in normalized text
func (t Tier) Match(text string) []string { return t.m.match(text) }

// RecognizedInstall reports whether step looks like a real install command
func (r *Rubric) RecognizedInstall(step string) bool {
	for _, re := range r.installRe {
		if re.MatchString(step) {
			return true
		}
	}
	return false
}

// Placeholder reports whether step only defers to somewhere else
func (r *Rubric) Placeholder(step string) bool {
	s := normalize.Text(step)
	s = trimPunct(s)
	return s == "" || slices.Contains(r.placeholders, s)
}

func trimPunct(s string) string {
	for len(s) > 0 && !isWord(s[len(s)-1]) {
		s = s[:len(s)-1]
	}
	for len(s) > 0 && !isWord(s[0]) {
		s = s[1:]
	}
	return s
}

func isWord(c byte) bool { return !boundaryByte(c) }

func boundaryByte(c byte) bool {
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c >= 0x80)
}
