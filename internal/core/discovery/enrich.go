package discovery

import "strings"

// Enrich applies an actionable verdict's rewritten copy to c and returns a
// new candidate. Empty verdict fields keep the original value. The verdict is
// attached so later phases know the candidate was already judged
func Enrich(c Candidate, v JudgeVerdict) Candidate {
	out := c.Clone()
	if s := strings.TrimSpace(v.Title); s != "" {
		out.Title = s
	}
	if s := strings.TrimSpace(v.OneLiner); s != "" {
		out.OneLiner = s
	}
	if s := strings.TrimSpace(v.ValueProp); s != "" && out.Why == "" {
		out.Why = s
	}
	if s := strings.TrimSpace(v.InstallHint); s != "" && len(out.Install.Steps) == 0 {
		out.Install.Steps = []string{s}
	}
	vv := v.Clone()
	out.Verdict = &vv
	out.Provenance = append(out.Provenance, "judge:enriched")
	return out
}

// MarkJudged attaches a verdict without rewriting any copy
func MarkJudged(c Candidate, v JudgeVerdict) Candidate {
	out := c.Clone()
	vv := v.Clone()
	out.Verdict = &vv
	out.Provenance = append(out.Provenance, "judge:checked")
	return out
}
