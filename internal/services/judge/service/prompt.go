package service

import (
	"fmt"
	"strings"

	str "trawler/internal/platform/strings"
	"trawler/internal/services/judge/domain"
)

const maxContextChars = 2000

const systemPrompt = `You review items for a weekly digest of developer tooling.
A reader should be able to install or use every included item today.

Score each criterion from 0 to 1:
- utility: useful right now for real work, not a demo or a concept
- downloadability: there is something concrete to install, clone or call
- specificity: one specific thing, not a roundup, list or opinion thread
- signal: real people are engaging with it, not only promotion
- novelty: new or newly notable within the last weeks

Reply with a single JSON object and nothing else:
{"actionable": bool, "confidence": 0..1,
 "scores": {"utility": n, "downloadability": n, "specificity": n, "signal": n, "novelty": n},
 "title": "short name of the thing", "oneLiner": "what it does in one sentence",
 "valueProp": "why a developer would care", "installHint": "one install command or empty",
 "reason": "one sentence justification"}`

// buildUser renders the item for the user turn
func buildUser(in domain.Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", str.OneLine(in.Title))
	if in.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", in.URL)
	}
	if in.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", in.Author)
	}
	if in.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", in.Category)
	}
	if !in.PostedAt.IsZero() {
		fmt.Fprintf(&b, "Posted: %s\n", in.PostedAt.UTC().Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "Engagement: %d, comments: %d\n", in.Engagement, in.Comments)
	if len(in.Install) > 0 {
		fmt.Fprintf(&b, "Install: %s\n", strings.Join(in.Install, " && "))
	}
	if t := strings.TrimSpace(in.Text); t != "" {
		fmt.Fprintf(&b, "\nText:\n%s\n", t)
	}
	if c := strings.TrimSpace(in.Context); c != "" {
		fmt.Fprintf(&b, "\nLinked content:\n%s\n", str.Truncate(c, maxContextChars))
	}
	return b.String()
}
