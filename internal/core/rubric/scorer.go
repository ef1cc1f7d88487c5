package rubric

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"

	"trawler/internal/core/discovery"
	"trawler/internal/core/normalize"
)

// RepoMetadata is what a code host tells us about a repository
type RepoMetadata struct {
	Stars      int
	Forks      int
	OpenIssues int
	Archived   bool
	PushedAt   time.Time
	LastCommit time.Time
	Readme     string
}

// MetadataSource looks up repository metadata by "owner/repo"
type MetadataSource interface {
	Repo(ctx context.Context, slug string) (*RepoMetadata, error)
}

// Scorer applies a Rubric, consulting meta for code host candidates
type Scorer struct {
	Rubric *Rubric
	meta   MetadataSource
	now    func() time.Time
}

// NewScorer builds a scorer; meta may be nil to score text only
func NewScorer(r *Rubric, meta MetadataSource) *Scorer {
	if r == nil {
		r = MustDefault()
	}
	return &Scorer{Rubric: r, meta: meta, now: time.Now}
}

// WithClock overrides the time source, used for recency bonuses
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// NeedsLookup reports whether scoring c would call the metadata source
func (s *Scorer) NeedsLookup(c discovery.Candidate) bool {
	return s.meta != nil && normalize.RepoSlug(c.Source.URL) != ""
}

// Lookup fetches metadata for c; failures and non repo candidates yield nil
func (s *Scorer) Lookup(ctx context.Context, c discovery.Candidate) *RepoMetadata {
	if !s.NeedsLookup(c) {
		return nil
	}
	md, err := s.meta.Repo(ctx, normalize.RepoSlug(c.Source.URL))
	if err != nil {
		return nil
	}
	return md
}

// Score looks up metadata when applicable and computes the rubric
func (s *Scorer) Score(ctx context.Context, c discovery.Candidate) discovery.QualityScore {
	return s.Compute(c, s.Lookup(ctx, c))
}

// Compute is the pure rubric: the same candidate and metadata always give
// the same score
func (s *Scorer) Compute(c discovery.Candidate, md *RepoMetadata) discovery.QualityScore {
	text := normalize.Text(c.Title + " " + c.Description())
	var q discovery.QualityScore

	q.Novelty = s.novelty(c, text, &q.Reasons)
	q.RealUsage = s.realUsage(c, md, &q.Reasons)
	q.InstallClarity = s.installClarity(c, &q.Reasons)
	q.Documentation = s.documentation(c, md, &q.Reasons)
	q.GenuineUtility = s.utility(text, &q.Reasons)
	q.Total = q.Sum()
	return q
}

func (s *Scorer) novelty(c discovery.Candidate, text string, why *[]string) float64 {
	for _, t := range s.Rubric.Novelty {
		if hits := t.Match(text); len(hits) > 0 {
			*why = append(*why, fmt.Sprintf("novelty %s: %s", t.Name, strings.Join(hits, ", ")))
			return clamp(t.Weight)
		}
		if slices.Contains(t.Categories, c.Category) {
			*why = append(*why, fmt.Sprintf("novelty %s: category %s", t.Name, c.Category))
			return clamp(t.Weight)
		}
	}
	return 0
}

func (s *Scorer) realUsage(c discovery.Candidate, md *RepoMetadata, why *[]string) float64 {
	r := s.Rubric
	if md != nil && md.Archived {
		*why = append(*why, "archived repository")
		return 0
	}

	engagement := c.Signals.Engagement
	if md != nil && md.Stars > engagement {
		engagement = md.Stars
	}
	score := r.UsageTop
	for _, b := range r.UsageBands {
		if engagement < b.Limit {
			score = b.Score
			break
		}
	}
	*why = append(*why, fmt.Sprintf("engagement %d", engagement))

	if md != nil {
		last := md.PushedAt
		if md.LastCommit.After(last) {
			last = md.LastCommit
		}
		if !last.IsZero() && s.now().Sub(last) <= time.Duration(r.RecentPushDays)*24*time.Hour {
			score += r.RecentBonus
			*why = append(*why, "recently active")
		}
		if md.Forks >= r.ForksMin {
			score += r.ForksBonus
		}
		if md.OpenIssues >= r.OpenIssuesMin {
			score += r.OpenIssuesBonus
		}
	}
	return clamp(score)
}

func (s *Scorer) installClarity(c discovery.Candidate, why *[]string) float64 {
	steps := c.Install.Steps
	if len(steps) == 0 {
		*why = append(*why, "no install steps")
		return 0
	}
	onlyPlaceholders := true
	for _, st := range steps {
		if s.Rubric.RecognizedInstall(st) {
			*why = append(*why, "recognized install command")
			return 1
		}
		if !s.Rubric.Placeholder(st) {
			onlyPlaceholders = false
		}
	}
	if onlyPlaceholders {
		*why = append(*why, "install defers to readme")
		return 0
	}
	return 0.5
}

var (
	installHeader = regexp.MustCompile(`(?im)^\s{0,3}#{1,6}\s*(installation|install|setup|getting started|quick ?start)\b`)
	fencedBlock   = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")
)

func (s *Scorer) documentation(c discovery.Candidate, md *RepoMetadata, why *[]string) float64 {
	r := s.Rubric
	if md != nil && strings.TrimSpace(md.Readme) != "" {
		score := 0.0
		if installHeader.MatchString(md.Readme) {
			score += r.ReadmeHeader
		}
		if s.readmeHasInstallBlock(md.Readme) {
			score += r.ReadmeCode
		}
		switch n := len(md.Readme); {
		case n >= r.ReadmeLongLength:
			score += r.ReadmeLong
		case n >= r.ReadmeMediumLength:
			score += r.ReadmeMedium
		}
		*why = append(*why, "readme available")
		return clamp(score)
	}

	n := len(c.Description())
	for _, b := range r.DescriptionBands {
		if n >= b.Limit {
			return clamp(b.Score)
		}
	}
	return 0
}

func (s *Scorer) readmeHasInstallBlock(readme string) bool {
	for _, m := range fencedBlock.FindAllStringSubmatch(readme, -1) {
		for line := range strings.SplitSeq(m[1], "\n") {
			line = strings.TrimPrefix(strings.TrimSpace(line), "$ ")
			if s.Rubric.RecognizedInstall(line) {
				return true
			}
		}
	}
	return false
}

func (s *Scorer) utility(text string, why *[]string) float64 {
	points := 0.0
	for _, t := range s.Rubric.Utility {
		hits := t.Match(text)
		points += float64(len(hits)) * t.Weight
		if len(hits) > 0 {
			*why = append(*why, fmt.Sprintf("utility %s: %s", t.Name, strings.Join(hits, ", ")))
		}
	}
	return clamp(points / s.Rubric.UtilityDivisor)
}

func clamp(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
