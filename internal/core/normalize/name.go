// Package normalize folds product names into the comparison key batch signatures use
// Pipeline order
// 1 Lower case
// 2 Unicode NFKD decomposition
// 3 Drop combining marks, so accented letters keep their base letter
// 4 Every rune outside [a-z0-9] and whitespace becomes a space
// 5 Collapse whitespace to single spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// transformer chains carry state, so each call takes its own from the pool
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			cases.Lower(language.Und),
			norm.NFKD,
			runes.Remove(runes.In(unicode.Mn)),
		)
	},
}

// Name returns the normalized form of a product name
// total over any input, idempotent, "" for empty or all-punctuation input
func Name(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, " ")

	tr := chainPool.Get().(transform.Transformer)
	folded, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		// the chain never fails on valid UTF-8; keep the raw text and let the filter run
		folded = strings.ToLower(s)
	}
	return asciiWords(folded)
}

// asciiWords keeps [a-z0-9] runs and joins them with single spaces
func asciiWords(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	gap := false
	for _, r := range s {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			if gap && b.Len() > 0 {
				b.WriteByte(' ')
			}
			gap = false
			b.WriteRune(r)
			continue
		}
		gap = true
	}
	return b.String()
}
