// Package settings reads and writes transliterator settings files.
//
// A settings file is YAML with the sections tokens, rules, onmatch_rules,
// whitespace and metadata. Rules and onmatch rules may be written in the
// compact "easy reading" form, where a mapping key such as
//
//	<wb> x (a b) <vowel>
//
// describes the context and tokens of a rule, or as explicit records.
// Dump always writes explicit records.
package settings

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/spicery/graph-transliterator/pkg/rules"
	"github.com/spicery/graph-transliterator/pkg/tokenizer"
	"github.com/spicery/graph-transliterator/pkg/transliterator"
)

// ErrInvalidSettings is returned for documents that do not describe a
// transliterator.
var ErrInvalidSettings = errors.New("invalid settings")

// File represents the structure of a settings file.
type File struct {
	Tokens       []TokenEntry
	Rules        []RuleEntry
	OnMatchRules []OnMatchEntry
	Whitespace   WhitespaceEntry
	Metadata     map[string]interface{}
}

// TokenEntry is one token of the alphabet with its classes.
type TokenEntry struct {
	Token   string
	Classes []string
}

// RuleEntry is a transliteration rule in explicit form.
type RuleEntry struct {
	Production  string   `yaml:"production"`
	Tokens      []string `yaml:"tokens,flow"`
	PrevTokens  []string `yaml:"prev_tokens,omitempty,flow"`
	PrevClasses []string `yaml:"prev_classes,omitempty,flow"`
	NextTokens  []string `yaml:"next_tokens,omitempty,flow"`
	NextClasses []string `yaml:"next_classes,omitempty,flow"`
}

// OnMatchEntry is an onmatch rule in explicit form.
type OnMatchEntry struct {
	PrevClasses []string `yaml:"prev_classes,flow"`
	NextClasses []string `yaml:"next_classes,flow"`
	Production  string   `yaml:"production"`
}

// WhitespaceEntry holds the whitespace settings.
type WhitespaceEntry struct {
	Default     string `yaml:"default"`
	TokenClass  string `yaml:"token_class"`
	Consolidate bool   `yaml:"consolidate"`
}

// LoadFile loads and parses a YAML settings file.
func LoadFile(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file '%s': %w", filename, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings file '%s': %w", filename, err)
	}
	return f, nil
}

// Parse decodes a settings document.
func Parse(data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidSettings)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, invalid(root, "expected a mapping at the top level")
	}

	f := &File{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		var err error
		switch key.Value {
		case "tokens":
			f.Tokens, err = decodeTokens(value)
		case "rules":
			f.Rules, err = decodeRules(value)
		case "onmatch_rules":
			f.OnMatchRules, err = decodeOnMatchRules(value)
		case "whitespace":
			err = decodeRecord(value, &f.Whitespace, "default", "token_class", "consolidate")
		case "metadata":
			if derr := value.Decode(&f.Metadata); derr != nil {
				err = invalid(value, derr.Error())
			}
		default:
			err = invalid(key, fmt.Sprintf("unknown section '%s'", key.Value))
		}
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

func decodeTokens(node *yaml.Node) ([]TokenEntry, error) {
	if node.Kind != yaml.MappingNode {
		return nil, invalid(node, "tokens must map each token to its classes")
	}
	entries := make([]TokenEntry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		var classes []string
		if err := value.Decode(&classes); err != nil {
			return nil, invalid(value, fmt.Sprintf("classes of token '%s' must be a list: %v", key.Value, err))
		}
		entries = append(entries, TokenEntry{Token: key.Value, Classes: classes})
	}
	return entries, nil
}

func decodeRules(node *yaml.Node) ([]RuleEntry, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		entries := make([]RuleEntry, 0, len(node.Content))
		for _, item := range node.Content {
			var entry RuleEntry
			if err := decodeRecord(item, &entry, ruleFields...); err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
		return entries, nil
	case yaml.MappingNode:
		entries := make([]RuleEntry, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			var production string
			if err := value.Decode(&production); err != nil {
				return nil, invalid(value, fmt.Sprintf("production of rule '%s' must be a string", key.Value))
			}
			entry, err := ParseRuleKey(key.Value)
			if err != nil {
				return nil, invalid(key, err.Error())
			}
			entry.Production = production
			entries = append(entries, entry)
		}
		return entries, nil
	default:
		return nil, invalid(node, "rules must be a mapping or a list")
	}
}

func decodeOnMatchRules(node *yaml.Node) ([]OnMatchEntry, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, invalid(node, "onmatch_rules must be a list")
	}
	entries := make([]OnMatchEntry, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return nil, invalid(item, "onmatch rule must be a mapping")
		}
		if isExplicitOnMatch(item) {
			var entry OnMatchEntry
			if err := decodeRecord(item, &entry, onMatchFields...); err != nil {
				return nil, err
			}
			entries = append(entries, entry)
			continue
		}
		if len(item.Content) != 2 {
			return nil, invalid(item, "easy reading onmatch rule must have exactly one entry")
		}
		key, value := item.Content[0], item.Content[1]
		entry, err := ParseOnMatchKey(key.Value)
		if err != nil {
			return nil, invalid(key, err.Error())
		}
		if err := value.Decode(&entry.Production); err != nil {
			return nil, invalid(value, "onmatch production must be a string")
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

var (
	ruleFields    = []string{"production", "tokens", "prev_tokens", "prev_classes", "next_tokens", "next_classes"}
	onMatchFields = []string{"prev_classes", "next_classes", "production"}
)

// decodeRecord decodes a mapping into v, rejecting keys not in fields.
func decodeRecord(node *yaml.Node, v interface{}, fields ...string) error {
	if node.Kind != yaml.MappingNode {
		return invalid(node, "expected a mapping")
	}
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i]
		if !slices.Contains(fields, key.Value) {
			return invalid(key, fmt.Sprintf("unknown field '%s'", key.Value))
		}
	}
	if err := node.Decode(v); err != nil {
		return invalid(node, err.Error())
	}
	return nil
}

func isExplicitOnMatch(node *yaml.Node) bool {
	for i := 0; i < len(node.Content); i += 2 {
		switch node.Content[i].Value {
		case "prev_classes", "next_classes", "production":
			return true
		}
	}
	return false
}

func invalid(node *yaml.Node, reason string) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidSettings, node.Line, reason)
}

// Config converts the file into a transliterator configuration.
func (f *File) Config() (transliterator.Config, error) {
	table := tokenizer.NewTable()
	for _, entry := range f.Tokens {
		if err := table.Add(entry.Token, entry.Classes...); err != nil {
			return transliterator.Config{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		}
	}

	cfg := transliterator.Config{
		Tokens: table,
		Whitespace: rules.Whitespace{
			Default:     f.Whitespace.Default,
			TokenClass:  f.Whitespace.TokenClass,
			Consolidate: f.Whitespace.Consolidate,
		},
	}
	for _, r := range f.Rules {
		cfg.Rules = append(cfg.Rules, rules.Definition{
			Production:  r.Production,
			Tokens:      r.Tokens,
			PrevTokens:  r.PrevTokens,
			PrevClasses: r.PrevClasses,
			NextTokens:  r.NextTokens,
			NextClasses: r.NextClasses,
		})
	}
	for _, r := range f.OnMatchRules {
		cfg.OnMatchRules = append(cfg.OnMatchRules, rules.OnMatchDefinition{
			PrevClasses: r.PrevClasses,
			NextClasses: r.NextClasses,
			Production:  r.Production,
		})
	}
	return cfg, nil
}

// Build compiles the file into a transliterator.
func (f *File) Build(ignoreErrors, checkAmbiguity bool, opts ...transliterator.Option) (*transliterator.Transliterator, error) {
	cfg, err := f.Config()
	if err != nil {
		return nil, err
	}
	cfg.IgnoreErrors = ignoreErrors
	cfg.CheckAmbiguity = checkAmbiguity
	return transliterator.New(cfg, opts...)
}

// FromConfig converts a transliterator configuration back into a file.
func FromConfig(cfg transliterator.Config) *File {
	f := &File{
		Whitespace: WhitespaceEntry{
			Default:     cfg.Whitespace.Default,
			TokenClass:  cfg.Whitespace.TokenClass,
			Consolidate: cfg.Whitespace.Consolidate,
		},
	}
	if cfg.Tokens != nil {
		for _, token := range cfg.Tokens.Tokens() {
			f.Tokens = append(f.Tokens, TokenEntry{Token: token, Classes: cfg.Tokens.Classes(token)})
		}
	}
	for _, r := range cfg.Rules {
		f.Rules = append(f.Rules, RuleEntry{
			Production:  r.Production,
			Tokens:      r.Tokens,
			PrevTokens:  r.PrevTokens,
			PrevClasses: r.PrevClasses,
			NextTokens:  r.NextTokens,
			NextClasses: r.NextClasses,
		})
	}
	for _, r := range cfg.OnMatchRules {
		f.OnMatchRules = append(f.OnMatchRules, OnMatchEntry{
			PrevClasses: r.PrevClasses,
			NextClasses: r.NextClasses,
			Production:  r.Production,
		})
	}
	return f
}

// Dump writes the file as YAML with explicit rule records, keeping the
// token and rule order.
func (f *File) Dump() ([]byte, error) {
	tokens := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range f.Tokens {
		classes := &yaml.Node{}
		if err := classes.Encode(entry.Classes); err != nil {
			return nil, fmt.Errorf("failed to encode classes of '%s': %w", entry.Token, err)
		}
		classes.Style = yaml.FlowStyle
		tokens.Content = append(tokens.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.Token, Style: yaml.SingleQuotedStyle},
			classes)
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	add := func(name string, value interface{}) error {
		node := &yaml.Node{}
		if n, ok := value.(*yaml.Node); ok {
			node = n
		} else if err := node.Encode(value); err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: name}, node)
		return nil
	}

	if err := add("tokens", tokens); err != nil {
		return nil, err
	}
	if err := add("rules", f.Rules); err != nil {
		return nil, err
	}
	if len(f.OnMatchRules) > 0 {
		if err := add("onmatch_rules", f.OnMatchRules); err != nil {
			return nil, err
		}
	}
	if err := add("whitespace", f.Whitespace); err != nil {
		return nil, err
	}
	if len(f.Metadata) > 0 {
		if err := add("metadata", f.Metadata); err != nil {
			return nil, err
		}
	}

	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings to YAML: %w", err)
	}
	return out, nil
}
