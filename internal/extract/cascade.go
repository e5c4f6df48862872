// Package extract turns raw recognized text into typed records using
// ordered pattern cascades. Every field has an explicit pattern list, most
// specific first; a field is assigned at most once and is never guessed
// when nothing matches.
package extract

import "regexp"

// Cascade is an ordered list of candidate patterns for one field. Order is
// part of the contract: patterns are tried in declared order and the first
// match wins.
type Cascade []*regexp.Regexp

// FirstMatch tries the patterns in order against s and returns the first
// capture. Patterns with a capture group yield group 1, bare patterns the
// whole match.
func (c Cascade) FirstMatch(s string) (string, bool) {
	for _, re := range c {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		if len(m) > 1 {
			return m[1], true
		}
		return m[0], true
	}
	return "", false
}

// scanLines applies line-scoped extraction: the text is walked top to
// bottom and, for every line, each still-unset field tries its cascade.
// Once a field is set it is never re-evaluated on later lines, which makes
// precedence "first line scanned wins" before pattern specificity.
func scanLines(lines []string, fields []lineField) {
	for _, line := range lines {
		if line == "" {
			continue
		}
		for _, f := range fields {
			if f.isSet() {
				continue
			}
			if v, ok := f.cascade.FirstMatch(line); ok {
				f.assign(v)
			}
		}
	}
}

// lineField binds a cascade to an assignment slot for line-scoped scanning.
type lineField struct {
	cascade Cascade
	isSet   func() bool
	assign  func(string)
}
