// Package natdate resolves short natural-language dates such as "today",
// "next friday", "in 3 days" or "2024-03-01".
package natdate

import (
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"
)

// Parser resolves date phrases relative to a clock. Dates without a time
// of day resolve to the end of that day, so a task "due friday" is not
// overdue until friday is over.
type Parser struct {
	Now      func() time.Time
	Location *time.Location

	phrases *when.Parser
}

// New returns a Parser using the wall clock in the local zone
func New() *Parser {
	return &Parser{Now: time.Now, Location: time.Local}
}

var dateTimeFormats = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"01/02/2006 15:04",
}

var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
}

var yearlessFormats = []string{
	"Jan 2",
	"2 Jan",
	"01/02",
}

// aliases rewrites shorthand into phrases the english rules understand
var aliases = map[string]string{
	"tom":        "tomorrow",
	"tmr":        "tomorrow",
	"tonite":     "tonight",
	"nextweek":   "in 1 week",
	"next week":  "in 1 week",
	"lastweek":   "1 week ago",
	"last week":  "1 week ago",
	"nextmonth":  "in 1 month",
	"next month": "in 1 month",
	"next year":  "in 1 year",
}

// clock matches phrases that name a time of day or an offset finer than a day
var clock = regexp.MustCompile(`\d\s*(am|pm|a\.m\.|p\.m\.)|\d{1,2}:\d{2}|\bnoon\b|\bmidnight\b|\b(hours?|hrs?|minutes?|mins?|seconds?|secs?)\b`)

// Parse resolves s. The second result is false when s is not understood.
func (p *Parser) Parse(s string) (time.Time, bool) {
	now := p.now()
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	if s == "" {
		return time.Time{}, false
	}

	loc := p.location()
	for _, format := range dateTimeFormats {
		if t, err := time.ParseInLocation(format, s, loc); err == nil {
			return t, true
		}
	}
	for _, format := range dateFormats {
		if t, err := time.ParseInLocation(format, titleMonth(s), loc); err == nil {
			return endOfDay(t), true
		}
	}
	for _, format := range yearlessFormats {
		if t, err := time.ParseInLocation(format, titleMonth(s), loc); err == nil {
			// If no year, use current year
			t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
			return endOfDay(t), true
		}
	}

	return p.phrase(s, now)
}

// phrase resolves free text with the english rule set. The whole of s
// must be consumed by the match.
func (p *Parser) phrase(s string, now time.Time) (time.Time, bool) {
	if alias, ok := aliases[s]; ok {
		s = alias
	}
	s = strings.Replace(s, "coming ", "next ", 1)

	if p.phrases == nil {
		p.phrases = when.New(nil)
		p.phrases.Add(en.All...)
	}
	r, err := p.phrases.Parse(s, now)
	if err != nil || r == nil {
		return time.Time{}, false
	}
	if r.Index < 0 || r.Index+len(r.Text) > len(s) {
		return time.Time{}, false
	}
	if rest := strings.TrimSpace(s[:r.Index] + s[r.Index+len(r.Text):]); rest != "" {
		return time.Time{}, false
	}

	t := r.Time.In(p.location())
	if !clock.MatchString(s) {
		t = endOfDay(t)
	}
	return t, true
}

func (p *Parser) now() time.Time {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return now().In(p.location())
}

func (p *Parser) location() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.Local
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// titleMonth restores the capitalisation time.Parse expects for month names
func titleMonth(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) >= 3 && w[0] >= 'a' && w[0] <= 'z' {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
