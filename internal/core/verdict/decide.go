package verdict

import (
	"fmt"
	"strings"

	"trawler/internal/core/discovery"
)

// Outcome of the acceptance rule
type Outcome int

// Outcomes
const (
	Pending Outcome = iota
	Accept
	Reject
)

func (o Outcome) String() string {
	switch o {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "pending"
	}
}

// Thresholds of the acceptance rule
const (
	MinConfidence = 0.5
	MinCriterion  = 0.5
)

// Fallback is consulted only when there is no verdict. Pending lets the
// item through unjudged
type Fallback func() (Outcome, string)

// Decision is the result of applying the acceptance rule
type Decision struct {
	Outcome Outcome
	Failing []string
	Reason  string
	// ByFallback is set when the fallback heuristic decided
	ByFallback bool
}

// Verdict maps the outcome onto a decision log verdict
func (d Decision) Verdict() discovery.Verdict {
	switch d.Outcome {
	case Accept:
		return discovery.VerdictInclude
	case Reject:
		return discovery.VerdictExclude
	default:
		return discovery.VerdictPending
	}
}

// Decide applies the acceptance rule. A verdict passes when it is actionable
// with confidence >= 0.5 and, if criterion scores are present, every one of
// them is >= 0.5. A missing verdict defers to fallback when given and is
// otherwise Pending: judge outages pass items through, explicit rejections do not
func Decide(v *discovery.JudgeVerdict, fallback Fallback) Decision {
	if v == nil {
		if fallback == nil {
			return Decision{Outcome: Pending, Reason: "not judged"}
		}
		o, why := fallback()
		return Decision{Outcome: o, Reason: why, ByFallback: true}
	}

	var failing []string
	if !v.Actionable {
		failing = append(failing, "actionable")
	}
	if v.Confidence < MinConfidence {
		failing = append(failing, "confidence")
	}
	if len(v.Scores) > 0 {
		for _, c := range discovery.Criteria {
			if s, ok := v.Scores[c]; !ok || s < MinCriterion {
				failing = append(failing, c)
			}
		}
	}

	if len(failing) == 0 {
		return Decision{Outcome: Accept, Reason: nonEmpty(v.Reason, "judge accepted")}
	}
	reason := fmt.Sprintf("failed %s", strings.Join(failing, ", "))
	if v.Reason != "" {
		reason += ": " + v.Reason
	}
	return Decision{Outcome: Reject, Failing: failing, Reason: reason}
}

// Passes reports whether the item moves on to curation. Pending counts:
// an unjudged item is left to the rubric
func (d Decision) Passes() bool { return d.Outcome != Reject }

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Apply returns the copy of c that carries d: enriched with the judge copy
// when accepted, annotated when judged otherwise, tagged when the fallback
// decided
func Apply(c discovery.Candidate, v *discovery.JudgeVerdict, d Decision) discovery.Candidate {
	switch {
	case v != nil && d.Outcome == Accept:
		return discovery.Enrich(c, *v)
	case v != nil:
		return discovery.MarkJudged(c, *v)
	case d.ByFallback:
		return c.WithProvenance("fallback:keywords")
	}
	return c
}
