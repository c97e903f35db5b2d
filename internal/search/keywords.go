package search

import (
	"strings"
	"unicode"
)

const minPrefixLen = 2

// Keywords builds the denormalized search token set for a listing: every
// token of every part, lowercased, plus all prefixes of at least
// minPrefixLen runes, deduplicated in first-seen order.
func Keywords(parts ...string) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(kw string) {
		if kw == "" {
			return
		}
		if _, ok := seen[kw]; ok {
			return
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}

	for _, part := range parts {
		for _, token := range tokenize(part) {
			runes := []rune(token)
			for i := minPrefixLen; i < len(runes); i++ {
				add(string(runes[:i]))
			}
			add(token)
		}
	}
	return out
}

// Slugify turns a title into a URL-safe slug: lowercase, runs of
// non-alphanumerics collapsed to a single hyphen, no leading or trailing
// hyphen.
func Slugify(s string) string {
	var b strings.Builder
	prevHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) && r < unicode.MaxASCII || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevHyphen = false
			continue
		}
		if !prevHyphen {
			b.WriteByte('-')
			prevHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
