package discovery

import "maps"

// Judge criteria; every verdict scores each of these in [0,1]
const (
	CriterionUtility         = "utility"
	CriterionDownloadability = "downloadability"
	CriterionSpecificity     = "specificity"
	CriterionSignal          = "signal"
	CriterionNovelty         = "novelty"
)

// Criteria is the fixed evaluation order used in prompts and reports
var Criteria = []string{
	CriterionUtility, CriterionDownloadability, CriterionSpecificity, CriterionSignal, CriterionNovelty,
}

// JudgeVerdict is the remote model's structured opinion of one item
type JudgeVerdict struct {
	Actionable bool               `json:"actionable"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores,omitempty"`

	Title       string `json:"title,omitempty"`
	OneLiner    string `json:"oneLiner,omitempty"`
	ValueProp   string `json:"valueProp,omitempty"`
	InstallHint string `json:"installHint,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Clone copies the score map
func (v JudgeVerdict) Clone() JudgeVerdict {
	v.Scores = maps.Clone(v.Scores)
	return v
}
