// Package onmatch compiles onmatch rules into a lookup keyed by the pair of
// tokens meeting at a match boundary.
package onmatch

import (
	"github.com/spicery/graph-transliterator/pkg/rules"
	"github.com/spicery/graph-transliterator/pkg/tokenizer"
)

// Boundary identifies the tokens on either side of a match boundary.
type Boundary struct {
	Next string // First token of the following match
	Prev string // Last token of the preceding match
}

// Lookup holds, for every boundary, the onmatch rules whose nearest classes
// fit the two tokens, in definition order. It is a prefilter: Find checks
// the complete class sequences against the input.
type Lookup struct {
	table *tokenizer.Table
	rules []rules.OnMatchRule
	index map[Boundary][]int
}

// Compile builds the lookup for onmatchRules over the alphabet of table.
func Compile(table *tokenizer.Table, onmatchRules []rules.OnMatchRule) *Lookup {
	l := &Lookup{
		table: table,
		rules: append([]rules.OnMatchRule(nil), onmatchRules...),
		index: make(map[Boundary][]int),
	}
	for i, r := range l.rules {
		for _, next := range table.TokensOf(r.FirstNextClass()) {
			for _, prev := range table.TokensOf(r.LastPrevClass()) {
				key := Boundary{Next: next, Prev: prev}
				l.index[key] = append(l.index[key], i)
			}
		}
	}
	return l
}

// Len returns the number of onmatch rules.
func (l *Lookup) Len() int {
	return len(l.rules)
}

// Rule returns the onmatch rule at index i.
func (l *Lookup) Rule(i int) rules.OnMatchRule {
	return l.rules[i]
}

// Candidates returns the prefiltered rule indices for a boundary.
func (l *Lookup) Candidates(next, prev string) []int {
	return append([]int(nil), l.index[Boundary{Next: next, Prev: prev}]...)
}

// Find returns the first onmatch rule whose classes hold around the
// boundary in front of tokens[at]. The prev classes are checked against
// tokens[at-len(prev):at] and the next classes against
// tokens[at:at+len(next)].
func (l *Lookup) Find(tokens []string, at int) (int, bool) {
	if at <= 0 || at >= len(tokens) {
		return 0, false
	}
	for _, i := range l.index[Boundary{Next: tokens[at], Prev: tokens[at-1]}] {
		r := l.rules[i]
		if l.classesAt(tokens, at-len(r.PrevClasses()), r.PrevClasses()) &&
			l.classesAt(tokens, at, r.NextClasses()) {
			return i, true
		}
	}
	return 0, false
}

func (l *Lookup) classesAt(tokens []string, start int, classes []string) bool {
	if start < 0 || start+len(classes) > len(tokens) {
		return false
	}
	for i, class := range classes {
		if !l.table.HasClass(tokens[start+i], class) {
			return false
		}
	}
	return true
}
