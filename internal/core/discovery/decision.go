package discovery

import "time"

// Verdict is the audit outcome for one candidate
type Verdict string

// Verdicts
const (
	VerdictInclude Verdict = "include"
	VerdictExclude Verdict = "exclude"
	VerdictPending Verdict = "pending"
)

// Run outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// DecisionEntry records the latest decision made about one candidate key
type DecisionEntry struct {
	Key       string        `json:"key"`
	Title     string        `json:"title"`
	URL       string        `json:"url,omitempty"`
	Origin    Origin        `json:"origin,omitempty"`
	Phase     string        `json:"phase"`
	Verdict   Verdict       `json:"verdict"`
	Reason    string        `json:"reason,omitempty"`
	Failing   []string      `json:"failing,omitempty"`
	Judge     *JudgeVerdict `json:"judge,omitempty"`
	Score     *float64      `json:"score,omitempty"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// PhaseReport is the per phase summary kept next to the entries
type PhaseReport struct {
	Name       string `json:"name"`
	Candidates int    `json:"candidates"`
	DurationMs int64  `json:"durationMs"`
	Err        string `json:"error,omitempty"`
}

// BudgetReport is the spend snapshot at the end of a run
type BudgetReport struct {
	Spent float64 `json:"spent"`
	Cap   float64 `json:"cap"`
}

// DecisionLog is the forensic trail of one run
type DecisionLog struct {
	DigestID   string          `json:"digestId"`
	RunID      string          `json:"runId"`
	Outcome    string          `json:"outcome"`
	DryRun     bool            `json:"dryRun,omitempty"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt,omitzero"`
	Entries    []DecisionEntry `json:"entries"`
	Phases     []PhaseReport   `json:"phases"`
	Budget     BudgetReport    `json:"budget"`
	Error      string          `json:"error,omitempty"`
}

// Count returns how many entries carry verdict v
func (l DecisionLog) Count(v Verdict) int {
	n := 0
	for _, e := range l.Entries {
		if e.Verdict == v {
			n++
		}
	}
	return n
}

// Entry finds the entry for key
func (l DecisionLog) Entry(key string) (DecisionEntry, bool) {
	for _, e := range l.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return DecisionEntry{}, false
}
