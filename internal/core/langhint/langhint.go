// Package langhint guesses the writing script of short texts so sources can
// drop items the digest readers cannot read
package langhint

import "unicode"

// minLetters below this a text is too short to judge and always passes
const minLetters = 12

var scripts = []struct {
	name  string
	table *unicode.RangeTable
}{
	{"Hiragana", unicode.Hiragana},
	{"Katakana", unicode.Katakana},
	{"Hangul", unicode.Hangul},
	{"Han", unicode.Han},
	{"Arabic", unicode.Arabic},
	{"Hebrew", unicode.Hebrew},
	{"Thai", unicode.Thai},
	{"Greek", unicode.Greek},
	{"Cyrillic", unicode.Cyrillic},
	{"Devanagari", unicode.Devanagari},
	{"Latin", unicode.Latin},
}

// Script returns the dominant script of s and how many letters were counted.
// Ties go to the earlier, more specific script
func Script(s string) (name string, letters int) {
	counts := make([]int, len(scripts))
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for i, sc := range scripts {
			if unicode.Is(sc.table, r) {
				counts[i]++
				break
			}
		}
	}
	best := -1
	for i, c := range counts {
		if c > 0 && (best < 0 || c > counts[best]) {
			best = i
		}
	}
	if best < 0 {
		return "", letters
	}
	return scripts[best].name, letters
}

// Allowed reports whether s is written in one of the allowed scripts
// An empty allow list and short texts always pass
func Allowed(s string, allow []string) bool {
	if len(allow) == 0 {
		return true
	}
	name, letters := Script(s)
	if letters < minLetters || name == "" {
		return true
	}
	for _, a := range allow {
		if a == name {
			return true
		}
	}
	return false
}
