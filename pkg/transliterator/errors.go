package transliterator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoMatchingRule is returned when no rule applies at some position
	// and errors are not ignored.
	ErrNoMatchingRule = errors.New("no matching rule")
	// ErrAmbiguousRuleSet is returned by the optional ambiguity check.
	ErrAmbiguousRuleSet = errors.New("ambiguous rule set")
	// ErrIncompleteCoverage is returned by Coverage.Check when some rules
	// never matched.
	ErrIncompleteCoverage = errors.New("incomplete coverage")
)

// contextWidth is how many tokens either side of a failure are reported.
const contextWidth = 3

// NoMatchError reports the token at which matching stopped.
type NoMatchError struct {
	Position int      // Index into the framed token list
	Token    string   // Token at Position
	Context  []string // Tokens around Position, Position included
}

func newNoMatchError(tokens []string, pos int) *NoMatchError {
	from := pos - contextWidth
	if from < 0 {
		from = 0
	}
	to := pos + contextWidth + 1
	if to > len(tokens) {
		to = len(tokens)
	}
	return &NoMatchError{
		Position: pos,
		Token:    tokens[pos],
		Context:  append([]string(nil), tokens[from:to]...),
	}
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no matching rule at token %d %q in %q", e.Position, e.Token, strings.Join(e.Context, ""))
}

func (e *NoMatchError) Unwrap() error {
	return ErrNoMatchingRule
}

// AmbiguityError lists pairs of rules that can match the same input with
// the same cost.
type AmbiguityError struct {
	Pairs [][2]int
}

func (e *AmbiguityError) Error() string {
	parts := make([]string, len(e.Pairs))
	for i, p := range e.Pairs {
		parts[i] = fmt.Sprintf("%d/%d", p[0], p[1])
	}
	return fmt.Sprintf("ambiguous rule set: rules %s", strings.Join(parts, ", "))
}

func (e *AmbiguityError) Unwrap() error {
	return ErrAmbiguousRuleSet
}
