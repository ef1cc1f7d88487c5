// Package normalize folds free text and links into stable comparison keys
//
// Text pipeline
// 1 drop invalid UTF-8 and control characters
// 2 Unicode NFKD decomposition
// 3 Case folding
// 4 Remove combining and format marks (accents fall away here)
// 5 Width fold fullwidth to ASCII, recompose NFC
// 6 Collapse whitespace to single spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// TitleKeyLen is the rune budget for title-derived dedup keys
const TitleKeyLen = 60

// pool of fresh transformer chains, a chain is not safe for concurrent use
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
			norm.NFC,
		)
	},
}

// Text returns the folded, single-spaced form of s used for keyword matching
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToValidUTF8(s, ""))

	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	return strings.Join(strings.Fields(ns), " ")
}

// TitleKey reduces a title to lowercase letters and digits, truncated to
// TitleKeyLen runes. Punctuation, spacing and emoji do not distinguish titles
func TitleKey(title string) string {
	folded := Text(title)
	var b strings.Builder
	b.Grow(len(folded))
	n := 0
	for _, r := range folded {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(r)
		n++
		if n == TitleKeyLen {
			break
		}
	}
	return b.String()
}
