// Package token splits a command line into named token groups.
//
// A grammar maps a category to the keywords that open it. Tokenize walks
// the input word by word; the first time a keyword of a category is seen,
// that category starts collecting the words that follow until another
// category's keyword appears. Text in double quotes is never treated as a
// keyword.
package token

import (
	"strings"
	"unicode"
)

// Grammar maps a category name to the keywords that introduce it
type Grammar map[string][]string

// Match is what a category captured: the keyword that opened it and the
// text that followed
type Match struct {
	Keyword string
	Value   string
}

// Result maps categories to their match. Categories that did not appear
// are absent.
type Result map[string]Match

// Has reports whether category appeared in the input
func (r Result) Has(category string) bool {
	_, ok := r[category]
	return ok
}

// Value returns the trimmed text captured by category, or "" if absent
func (r Result) Value(category string) string {
	return r[category].Value
}

// Keyword returns the keyword that opened category, lower-cased
func (r Result) Keyword(category string) string {
	return r[category].Keyword
}

// Tokenize splits input according to grammar
func Tokenize(grammar Grammar, input string) Result {
	lookup := make(map[string]string)
	for category, keywords := range grammar {
		for _, kw := range keywords {
			lookup[strings.ToLower(kw)] = category
		}
	}

	result := make(Result)
	var current string
	var parts []string

	flush := func() {
		if current == "" {
			return
		}
		m := result[current]
		m.Value = strings.TrimSpace(strings.Join(parts, " "))
		result[current] = m
	}

	for _, w := range splitWords(input) {
		if !w.quoted {
			lower := strings.ToLower(w.text)
			if category, ok := lookup[lower]; ok && !result.Has(category) {
				flush()
				current = category
				parts = nil
				result[category] = Match{Keyword: lower}
				continue
			}
		}
		if current != "" {
			parts = append(parts, w.text)
		}
	}
	flush()
	return result
}

type word struct {
	text   string
	quoted bool
}

// splitWords splits on whitespace, keeping double-quoted runs together
func splitWords(input string) []word {
	var words []word
	var b strings.Builder
	inQuote := false
	quoted := false

	emit := func() {
		if b.Len() > 0 || quoted {
			words = append(words, word{text: b.String(), quoted: quoted})
		}
		b.Reset()
		quoted = false
	}

	for _, r := range input {
		switch {
		case r == '"':
			inQuote = !inQuote
			quoted = true
		case unicode.IsSpace(r) && !inQuote:
			emit()
		default:
			b.WriteRune(r)
		}
	}
	emit()
	return words
}

// Fields splits a captured value into words, honouring commas as separators
func Fields(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
