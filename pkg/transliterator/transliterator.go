// Package transliterator compiles a rule set into a parsing graph, an
// onmatch lookup and a tokenizer, and transliterates input with them.
//
// A Transliterator is immutable once New returns. Every run keeps its own
// state, so a single Transliterator can serve any number of goroutines.
package transliterator

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/spicery/graph-transliterator/pkg/graph"
	"github.com/spicery/graph-transliterator/pkg/onmatch"
	"github.com/spicery/graph-transliterator/pkg/rules"
	"github.com/spicery/graph-transliterator/pkg/tokenizer"
)

// Config is everything a transliterator is compiled from.
type Config struct {
	Tokens         *tokenizer.Table
	Rules          []rules.Definition
	OnMatchRules   []rules.OnMatchDefinition
	Whitespace     rules.Whitespace
	IgnoreErrors   bool // Emit unmatched tokens verbatim instead of failing
	CheckAmbiguity bool // Reject rule sets with ambiguous rules
}

// Option customises a Transliterator.
type Option func(*options)

type options struct {
	logger zerolog.Logger
}

// WithLogger sets the logger used for warnings and debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Transliterator holds the compiled artifacts of one rule set.
type Transliterator struct {
	config    Config
	opts      []Option
	log       zerolog.Logger
	table     *tokenizer.Table
	rules     []rules.Rule
	onmatch   []rules.OnMatchRule
	graph     *graph.Graph
	lookup    *onmatch.Lookup
	tokenizer *tokenizer.Tokenizer
}

// New validates cfg and compiles it.
func New(cfg Config, opts ...Option) (*Transliterator, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.Tokens == nil {
		return nil, fmt.Errorf("%w: no tokens defined", rules.ErrInvalidRule)
	}
	table := cfg.Tokens.Clone()
	cfg.Tokens = table

	rs, err := rules.NewAll(cfg.Rules)
	if err != nil {
		return nil, err
	}
	if err := rules.Validate(table, rs); err != nil {
		return nil, err
	}
	onmatchRules, err := rules.NewOnMatchAll(cfg.OnMatchRules)
	if err != nil {
		return nil, err
	}
	if err := rules.ValidateOnMatch(table, onmatchRules); err != nil {
		return nil, err
	}
	if err := rules.ValidateWhitespace(table, cfg.Whitespace); err != nil {
		return nil, err
	}
	if cfg.CheckAmbiguity {
		if err := checkAmbiguity(table, rs); err != nil {
			return nil, err
		}
	}

	tok, err := tokenizer.NewFromTable(table)
	if err != nil {
		return nil, err
	}

	t := &Transliterator{
		config:    cfg,
		opts:      opts,
		log:       o.logger,
		table:     table,
		rules:     rs,
		onmatch:   onmatchRules,
		graph:     graph.Build(rs),
		lookup:    onmatch.Compile(table, onmatchRules),
		tokenizer: tok,
	}
	t.log.Debug().
		Int("tokens", table.Len()).
		Int("rules", len(rs)).
		Int("onmatch_rules", len(onmatchRules)).
		Int("nodes", t.graph.Len()).
		Msg("compiled transliterator")
	return t, nil
}

// Config returns a copy of the configuration the transliterator was built
// from.
func (t *Transliterator) Config() Config {
	cfg := t.config
	cfg.Tokens = t.table.Clone()
	cfg.Rules = append([]rules.Definition(nil), cfg.Rules...)
	cfg.OnMatchRules = append([]rules.OnMatchDefinition(nil), cfg.OnMatchRules...)
	return cfg
}

// Rules returns the compiled rules in definition order.
func (t *Transliterator) Rules() []rules.Rule {
	return append([]rules.Rule(nil), t.rules...)
}

// OnMatchRules returns the compiled onmatch rules in definition order.
func (t *Transliterator) OnMatchRules() []rules.OnMatchRule {
	return append([]rules.OnMatchRule(nil), t.onmatch...)
}

// Graph returns the compiled parsing graph.
func (t *Transliterator) Graph() *graph.Graph {
	return t.graph
}

// OnMatchLookup returns the compiled onmatch lookup.
func (t *Transliterator) OnMatchLookup() *onmatch.Lookup {
	return t.lookup
}

// Tokenizer returns the compiled tokenizer.
func (t *Transliterator) Tokenizer() *tokenizer.Tokenizer {
	return t.tokenizer
}

// Whitespace returns the whitespace settings.
func (t *Transliterator) Whitespace() rules.Whitespace {
	return t.config.Whitespace
}

// IgnoreErrors reports whether unmatched input is emitted verbatim.
func (t *Transliterator) IgnoreErrors() bool {
	return t.config.IgnoreErrors
}

// Productions returns the distinct rule productions in definition order.
func (t *Transliterator) Productions() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(t.rules))
	for _, r := range t.rules {
		if !seen[r.Production()] {
			seen[r.Production()] = true
			out = append(out, r.Production())
		}
	}
	return out
}

// Pruned returns a new transliterator without the rules producing any of
// productions.
func (t *Transliterator) Pruned(productions []string) (*Transliterator, error) {
	drop := make(map[string]bool, len(productions))
	for _, p := range productions {
		drop[p] = true
	}

	cfg := t.Config()
	kept := make([]rules.Definition, 0, len(cfg.Rules))
	for _, def := range cfg.Rules {
		if !drop[def.Production] {
			kept = append(kept, def)
		}
	}
	t.log.Debug().Int("removed", len(cfg.Rules)-len(kept)).Msg("pruning rules")
	cfg.Rules = kept
	return New(cfg, t.opts...)
}
