package domain

import "regexp"

// Pattern is an immutable title matcher. It matches case-insensitively from
// the start of a window title; the rest of the title is ignored.
type Pattern struct {
	raw     string
	re      *regexp.Regexp
	literal bool
}

// NewPattern compiles raw as a regular expression. Lines that are not valid
// RE2 syntax are matched as literal text instead; see Literal.
func NewPattern(raw string) Pattern {
	p := Pattern{raw: raw}
	if _, err := regexp.Compile(raw); err == nil {
		// \Q without \E can swallow the closing group, so compile the
		// wrapped form separately.
		if re, err := regexp.Compile("(?i)^(?:" + raw + ")"); err == nil {
			p.re = re
			return p
		}
	}
	p.re = regexp.MustCompile("(?i)^" + regexp.QuoteMeta(raw))
	p.literal = true
	return p
}

// String returns the pattern text as written in the config file.
func (p Pattern) String() string {
	return p.raw
}

// Literal reports whether the pattern fell back to plain text matching.
func (p Pattern) Literal() bool {
	return p.literal
}

// Match reports whether title starts with text matched by the pattern.
func (p Pattern) Match(title string) bool {
	if p.re == nil {
		return false
	}
	return p.re.MatchString(title)
}

// PatternSet is an ordered, immutable list of patterns. It is replaced
// wholesale on reload and never edited in place.
type PatternSet struct {
	patterns []Pattern
}

// NewPatternSet compiles lines in order. Duplicates are kept.
func NewPatternSet(lines ...string) PatternSet {
	patterns := make([]Pattern, 0, len(lines))
	for _, line := range lines {
		patterns = append(patterns, NewPattern(line))
	}
	return PatternSet{patterns: patterns}
}

// Len returns the number of patterns.
func (s PatternSet) Len() int {
	return len(s.patterns)
}

// At returns the i-th pattern.
func (s PatternSet) At(i int) Pattern {
	return s.patterns[i]
}

// All returns a copy of the patterns in order.
func (s PatternSet) All() []Pattern {
	out := make([]Pattern, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// Strings returns the raw pattern texts in order.
func (s PatternSet) Strings() []string {
	out := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		out[i] = p.raw
	}
	return out
}

// Equal compares two sets by pattern text and order.
func (s PatternSet) Equal(other PatternSet) bool {
	if len(s.patterns) != len(other.patterns) {
		return false
	}
	for i := range s.patterns {
		if s.patterns[i].raw != other.patterns[i].raw {
			return false
		}
	}
	return true
}

// FirstMatch returns the first pattern that matches title.
func (s PatternSet) FirstMatch(title string) (Pattern, bool) {
	for _, p := range s.patterns {
		if p.Match(title) {
			return p, true
		}
	}
	return Pattern{}, false
}
