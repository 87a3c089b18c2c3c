// Package naming turns free-text names and addresses into lookup keys
// and decides whether two names plausibly denote the same person.
package naming

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	wordRun    = regexp.MustCompile(`[a-z0-9]+`)
	nonKeyRune = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespace = regexp.MustCompile(`\s+`)
)

var titles = map[string]struct{}{
	"dr":   {},
	"mr":   {},
	"mrs":  {},
	"ms":   {},
	"prof": {},
}

// NormalizeNameKey returns the canonical lookup key of a name:
// lower-cased, accent-stripped, without honorific titles, punctuation
// replaced by spaces and whitespace collapsed. Empty input yields "".
func NormalizeNameKey(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = cases.Lower(language.Und).String(s)
	s = stripDiacritics(s)
	s = stripTitles(s)
	s = nonKeyRune.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// NormalizeEmailAddress trims and lower-cases an address.
// It returns false if nothing is left after trimming.
func NormalizeEmailAddress(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	return strings.ToLower(s), true
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.M)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// stripTitles removes every alphanumeric run that is a title, together with
// one following period and any whitespace after it.
func stripTitles(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range wordRun.FindAllStringIndex(s, -1) {
		if loc[0] < last {
			continue
		}
		if _, ok := titles[s[loc[0]:loc[1]]]; !ok {
			continue
		}

		b.WriteString(s[last:loc[0]])
		end := loc[1]
		if end < len(s) && s[end] == '.' {
			end++
		}
		for end < len(s) {
			r := rune(s[end])
			if r >= 0x80 || !unicode.IsSpace(r) {
				break
			}
			end++
		}
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}
