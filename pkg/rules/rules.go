// Package rules holds the rule model of a transliterator: transliteration
// rules with their derived cost, onmatch connector rules and whitespace
// settings.
package rules

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRule is returned for malformed rule definitions.
var ErrInvalidRule = errors.New("invalid rule")

// InvalidRuleError reports which definition was rejected and why.
type InvalidRuleError struct {
	Kind   string // "rule", "onmatch" or "whitespace"
	Index  int
	Reason string
}

func (e *InvalidRuleError) Error() string {
	if e.Kind == "whitespace" {
		return fmt.Sprintf("invalid whitespace settings: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s %d: %s", e.Kind, e.Index, e.Reason)
}

func (e *InvalidRuleError) Unwrap() error {
	return ErrInvalidRule
}

// Definition is a raw transliteration rule as written by the user.
type Definition struct {
	Production  string
	Tokens      []string
	PrevTokens  []string
	PrevClasses []string
	NextTokens  []string
	NextClasses []string
}

// Rule is a normalized transliteration rule. Rules are immutable once built;
// the accessors return copies.
type Rule struct {
	production  string
	tokens      []string
	prevTokens  []string
	prevClasses []string
	nextTokens  []string
	nextClasses []string
	cost        float64
}

// New normalizes def into a Rule and computes its cost.
func New(def Definition) (Rule, error) {
	if len(def.Tokens) == 0 {
		return Rule{}, &InvalidRuleError{Kind: "rule", Reason: "tokens must not be empty"}
	}
	r := Rule{
		production:  def.Production,
		tokens:      clone(def.Tokens),
		prevTokens:  clone(def.PrevTokens),
		prevClasses: clone(def.PrevClasses),
		nextTokens:  clone(def.NextTokens),
		nextClasses: clone(def.NextClasses),
	}
	r.cost = Cost(r.TokenCount())
	return r, nil
}

// NewAll normalizes a list of definitions, keeping their order. The index
// of a rejected definition is reported in the error.
func NewAll(defs []Definition) ([]Rule, error) {
	out := make([]Rule, 0, len(defs))
	for i, def := range defs {
		r, err := New(def)
		if err != nil {
			var invalid *InvalidRuleError
			if errors.As(err, &invalid) {
				invalid.Index = i
			}
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Cost is log2(1 + 1/(1+n)) for a rule referencing n tokens and classes in
// total. Rules that commit to more context cost less and are tried first.
func Cost(n int) float64 {
	return math.Log2(1 + 1/float64(1+n))
}

// TokenCount is the number of tokens and classes the rule refers to.
func (r Rule) TokenCount() int {
	return len(r.prevClasses) + len(r.prevTokens) + len(r.tokens) + len(r.nextTokens) + len(r.nextClasses)
}

func (r Rule) Production() string    { return r.production }
func (r Rule) Tokens() []string      { return clone(r.tokens) }
func (r Rule) PrevTokens() []string  { return clone(r.prevTokens) }
func (r Rule) PrevClasses() []string { return clone(r.prevClasses) }
func (r Rule) NextTokens() []string  { return clone(r.nextTokens) }
func (r Rule) NextClasses() []string { return clone(r.nextClasses) }
func (r Rule) Cost() float64         { return r.cost }

// Len is the number of tokens the rule consumes.
func (r Rule) Len() int { return len(r.tokens) }

// HasConstraints reports whether the rule looks at tokens around the match.
func (r Rule) HasConstraints() bool {
	return len(r.prevClasses)+len(r.prevTokens)+len(r.nextTokens)+len(r.nextClasses) > 0
}

// Definition returns the raw form of the rule.
func (r Rule) Definition() Definition {
	return Definition{
		Production:  r.production,
		Tokens:      r.Tokens(),
		PrevTokens:  r.PrevTokens(),
		PrevClasses: r.PrevClasses(),
		NextTokens:  r.NextTokens(),
		NextClasses: r.NextClasses(),
	}
}

// OnMatchDefinition is a raw onmatch rule.
type OnMatchDefinition struct {
	PrevClasses []string
	NextClasses []string
	Production  string
}

// OnMatchRule inserts Production between two consecutive matches when the
// classes before the boundary end with PrevClasses and the classes after it
// start with NextClasses.
type OnMatchRule struct {
	prevClasses []string
	nextClasses []string
	production  string
}

// NewOnMatch normalizes an onmatch definition.
func NewOnMatch(def OnMatchDefinition) (OnMatchRule, error) {
	if len(def.PrevClasses) == 0 {
		return OnMatchRule{}, &InvalidRuleError{Kind: "onmatch", Reason: "prev_classes must not be empty"}
	}
	if len(def.NextClasses) == 0 {
		return OnMatchRule{}, &InvalidRuleError{Kind: "onmatch", Reason: "next_classes must not be empty"}
	}
	return OnMatchRule{
		prevClasses: clone(def.PrevClasses),
		nextClasses: clone(def.NextClasses),
		production:  def.Production,
	}, nil
}

// NewOnMatchAll normalizes onmatch definitions, keeping their order.
func NewOnMatchAll(defs []OnMatchDefinition) ([]OnMatchRule, error) {
	out := make([]OnMatchRule, 0, len(defs))
	for i, def := range defs {
		r, err := NewOnMatch(def)
		if err != nil {
			var invalid *InvalidRuleError
			if errors.As(err, &invalid) {
				invalid.Index = i
			}
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (r OnMatchRule) PrevClasses() []string { return clone(r.prevClasses) }
func (r OnMatchRule) NextClasses() []string { return clone(r.nextClasses) }
func (r OnMatchRule) Production() string    { return r.production }

// LastPrevClass is the class required of the token just before the boundary.
func (r OnMatchRule) LastPrevClass() string { return r.prevClasses[len(r.prevClasses)-1] }

// FirstNextClass is the class required of the token just after the boundary.
func (r OnMatchRule) FirstNextClass() string { return r.nextClasses[0] }

// Definition returns the raw form of the onmatch rule.
func (r OnMatchRule) Definition() OnMatchDefinition {
	return OnMatchDefinition{
		PrevClasses: r.PrevClasses(),
		NextClasses: r.NextClasses(),
		Production:  r.production,
	}
}

// Whitespace controls how whitespace tokens are framed and collapsed.
type Whitespace struct {
	Default     string // Token used for framing and for collapsed runs
	TokenClass  string // Class marking whitespace tokens
	Consolidate bool   // Collapse runs of whitespace into one Default token
}

func clone(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return append([]string(nil), s...)
}
