// Package verdict parses judge responses and owns the single acceptance rule
// every pipeline phase applies to them
package verdict

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"trawler/internal/core/discovery"
)

// fenceRe matches a ```json ... ``` block; the language tag is optional
var fenceRe = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")

type rawVerdict struct {
	Actionable  *bool              `json:"actionable"`
	Confidence  float64            `json:"confidence"`
	Scores      map[string]float64 `json:"scores"`
	Title       string             `json:"title"`
	OneLiner    string             `json:"oneLiner"`
	ValueProp   string             `json:"valueProp"`
	InstallHint string             `json:"installHint"`
	Reason      string             `json:"reason"`
}

// ErrNoJSON is returned when the response holds no JSON object at all
var ErrNoJSON = errors.New("verdict: no json object in response")

// Parse extracts a JudgeVerdict from model output. It accepts a bare JSON
// object, one wrapped in a markdown fence, or one surrounded by prose
func Parse(text string) (*discovery.JudgeVerdict, error) {
	body := ""
	if m := fenceRe.FindStringSubmatch(text); len(m) == 2 {
		body = m[1]
	} else {
		body = firstObject(text)
	}
	if body == "" {
		return nil, ErrNoJSON
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("verdict: decode: %w", err)
	}
	if raw.Actionable == nil {
		return nil, errors.New("verdict: missing actionable field")
	}

	v := &discovery.JudgeVerdict{
		Actionable:  *raw.Actionable,
		Confidence:  unit(raw.Confidence),
		Title:       strings.TrimSpace(raw.Title),
		OneLiner:    strings.TrimSpace(raw.OneLiner),
		ValueProp:   strings.TrimSpace(raw.ValueProp),
		InstallHint: strings.TrimSpace(raw.InstallHint),
		Reason:      strings.TrimSpace(raw.Reason),
	}
	if len(raw.Scores) > 0 {
		v.Scores = make(map[string]float64, len(raw.Scores))
		for k, s := range raw.Scores {
			v.Scores[strings.ToLower(strings.TrimSpace(k))] = unit(s)
		}
	}
	return v, nil
}

// firstObject returns the first balanced {...} span, honoring strings
func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inStr, esc := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func unit(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
