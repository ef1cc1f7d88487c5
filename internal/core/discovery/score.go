package discovery

import "math"

// QualityScore is the five-part rubric result; each part is in [0,1] and
// Total is their sum rounded to one decimal
type QualityScore struct {
	Novelty        float64  `json:"novelty"`
	RealUsage      float64  `json:"realUsage"`
	InstallClarity float64  `json:"installClarity"`
	Documentation  float64  `json:"documentation"`
	GenuineUtility float64  `json:"genuineUtility"`
	Total          float64  `json:"total"`
	Reasons        []string `json:"reasons,omitempty"`
}

// Sum recomputes Total from the parts
func (q QualityScore) Sum() float64 {
	return Round1(q.Novelty + q.RealUsage + q.InstallClarity + q.Documentation + q.GenuineUtility)
}

// Round1 rounds to one decimal place
func Round1(f float64) float64 { return math.Round(f*10) / 10 }

// CuratedDiscovery is a scored candidate as it appears in a digest
type CuratedDiscovery struct {
	Candidate
	Score      QualityScore `json:"score"`
	ValueProp  string       `json:"valueProp,omitempty"`
	SkipReason string       `json:"skipReason,omitempty"`
	EditorPick bool         `json:"editorPick,omitempty"`
}
