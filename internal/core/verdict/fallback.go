package verdict

import (
	"regexp"

	"trawler/internal/core/discovery"
	"trawler/internal/core/normalize"
)

var (
	// signs that an item points at something a reader can run today
	actionableRe = regexp.MustCompile(`(?i)(github\.com/[\w.-]+/[\w.-]+|gitlab\.com/[\w.-]+/[\w.-]+|\b(npm|pip|pipx|brew|cargo|go|uvx|npx|docker)\s+(i|install|run|get|add)\b|\bopen[- ]source(d)?\b|\bjust (released|shipped|launched)\b)`)

	// roundups, hot takes and promotion
	noiseRe = regexp.MustCompile(`(?i)(\btop \d+\b|\b\d+ (best|tools|ways|tips)\b|\bthread\b|🧵|\bgiveaway\b|\bwaitlist\b|\bsign up\b|\bwebinar\b|\bhiring\b|\bsponsored\b)`)
)

// Keywords is the heuristic used when the judge is unavailable. It rejects
// listicles and promotion, accepts items that link to code or show an
// install command and leaves everything else Pending for the rubric
func Keywords(c discovery.Candidate) Fallback {
	return func() (Outcome, string) {
		text := c.Title + " " + c.Description() + " " + c.Source.URL
		for _, s := range c.Install.Steps {
			text += " " + s
		}
		if noiseRe.MatchString(text) {
			return Reject, "keyword fallback: roundup or promotion"
		}
		if actionableRe.MatchString(text) || normalize.IsCodeHost(c.Source.URL) {
			return Accept, "keyword fallback: actionable link or install"
		}
		return Pending, "keyword fallback: unjudged, left to the rubric"
	}
}
