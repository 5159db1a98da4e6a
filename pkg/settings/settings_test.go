package settings

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spicery/graph-transliterator/pkg/rules"
)

const easyReading = `
tokens:
  a: [letter, vowel]
  b: [letter, consonant]
  ' ': [wb]
rules:
  a: A
  b: B
  a b: AB
  <wb> (a): ^A
  (b) <vowel>: b-
  '\ ': ' '
onmatch_rules:
  - <vowel> + <vowel>: ","
whitespace:
  default: ' '
  token_class: wb
  consolidate: false
metadata:
  name: test
`

const explicit = `
tokens:
  a: [letter, vowel]
  b: [letter, consonant]
  ' ': [wb]
rules:
  - {production: A, tokens: [a]}
  - {production: B, tokens: [b]}
  - {production: AB, tokens: [a, b]}
  - {production: ^A, tokens: [a], prev_classes: [wb]}
  - {production: b-, tokens: [b], next_classes: [vowel]}
  - {production: ' ', tokens: [' ']}
onmatch_rules:
  - {prev_classes: [vowel], next_classes: [vowel], production: ","}
whitespace:
  default: ' '
  token_class: wb
  consolidate: false
metadata:
  name: test
`

func mustParse(t *testing.T, doc string) *File {
	t.Helper()
	f, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return f
}

func TestParseEasyReading(t *testing.T) {
	f := mustParse(t, easyReading)

	tokens := []string{}
	for _, e := range f.Tokens {
		tokens = append(tokens, e.Token)
	}
	if !reflect.DeepEqual(tokens, []string{"a", "b", " "}) {
		t.Errorf("Expected tokens in document order, got %q", tokens)
	}

	productions := []string{}
	for _, r := range f.Rules {
		productions = append(productions, r.Production)
	}
	if !reflect.DeepEqual(productions, []string{"A", "B", "AB", "^A", "b-", " "}) {
		t.Errorf("Expected rules in document order, got %q", productions)
	}

	if !reflect.DeepEqual(f.Rules[3].PrevClasses, []string{"wb"}) {
		t.Errorf("Expected prev class wb, got %q", f.Rules[3].PrevClasses)
	}
	if !reflect.DeepEqual(f.Rules[5].Tokens, []string{" "}) {
		t.Errorf("Expected escaped space token, got %q", f.Rules[5].Tokens)
	}
	if len(f.OnMatchRules) != 1 || f.OnMatchRules[0].Production != "," {
		t.Errorf("Unexpected onmatch rules: %+v", f.OnMatchRules)
	}
	if f.Metadata["name"] != "test" {
		t.Errorf("Expected metadata to be kept, got %v", f.Metadata)
	}
}

func TestExplicitFormMatchesEasyReading(t *testing.T) {
	easy := mustParse(t, easyReading)
	exp := mustParse(t, explicit)
	if !reflect.DeepEqual(easy, exp) {
		t.Errorf("Expected equal settings\neasy:     %+v\nexplicit: %+v", easy, exp)
	}
}

func TestBuildAndTransliterate(t *testing.T) {
	tr, err := mustParse(t, easyReading).Build(false, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"ab a", "AB ^A"},
		{"aa", "^A,A"},
		{"ba", "b-A"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := tr.Transliterate(tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(easyReading), 0o644); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(f.Rules) != 6 {
		t.Errorf("Expected 6 rules, got %d", len(f.Rules))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestDumpRoundTrip(t *testing.T) {
	f := mustParse(t, easyReading)
	out, err := f.Dump()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	again, err := Parse(out)
	if err != nil {
		t.Fatalf("Failed to parse dump: %v\n%s", err, out)
	}
	if !reflect.DeepEqual(f, again) {
		t.Errorf("Dump did not round trip:\n%s", out)
	}
}

func TestFromConfig(t *testing.T) {
	f := mustParse(t, explicit)
	cfg, err := f.Config()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	back := FromConfig(cfg)
	back.Metadata = f.Metadata
	if !reflect.DeepEqual(f, back) {
		t.Errorf("Expected %+v, got %+v", f, back)
	}
}

func TestParseRuleKey(t *testing.T) {
	tests := []struct {
		key      string
		expected RuleEntry
		wantErr  bool
	}{
		{key: "a", expected: RuleEntry{Tokens: []string{"a"}}},
		{key: "a b", expected: RuleEntry{Tokens: []string{"a", "b"}}},
		{key: "(a)", expected: RuleEntry{Tokens: []string{"a"}}},
		{key: `\(`, expected: RuleEntry{Tokens: []string{"("}}},
		{key: `a\ b`, expected: RuleEntry{Tokens: []string{"a b"}}},
		{
			key: "<wb> <c> x (a b) y <v>",
			expected: RuleEntry{
				Tokens:      []string{"a", "b"},
				PrevClasses: []string{"wb", "c"},
				PrevTokens:  []string{"x"},
				NextTokens:  []string{"y"},
				NextClasses: []string{"v"},
			},
		},
		{key: "", wantErr: true},
		{key: "()", wantErr: true},
		{key: "<wb> a", wantErr: true},
		{key: "(a", wantErr: true},
		{key: ")a(", wantErr: true},
		{key: "(a) (b)", wantErr: true},
		{key: "(<c>)", wantErr: true},
		{key: "x <c> (a)", wantErr: true},
		{key: "(a) <c> y", wantErr: true},
		{key: `a \`, wantErr: true},
		{key: "a <b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := ParseRuleKey(tt.key)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestParseOnMatchKey(t *testing.T) {
	got, err := ParseOnMatchKey("<a> <b> + <c>")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := OnMatchEntry{PrevClasses: []string{"a", "b"}, NextClasses: []string{"c"}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %+v, got %+v", expected, got)
	}

	for _, key := range []string{"<a>", "<a> +", "+ <b>", "a + <b>", "<a> + <b> + <c>"} {
		if _, err := ParseOnMatchKey(key); err == nil {
			t.Errorf("Expected error for %q", key)
		}
	}
}

func TestInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"not a mapping", "- a"},
		{"unknown section", "colours: [red]"},
		{"tokens as list", "tokens: [a, b]"},
		{"classes not a list", "tokens:\n  a: {x: y}"},
		{"rules scalar", "rules: a"},
		{"bad rule key", "rules:\n  '(a': A"},
		{"onmatch not a list", "onmatch_rules:\n  <a> + <b>: x"},
		{"onmatch two entries", "onmatch_rules:\n  - {'<a> + <b>': x, '<b> + <a>': y}"},
		{"bad onmatch key", "onmatch_rules:\n  - {'<a> <b>': x}"},
		{"unknown rule field", "rules:\n  - {production: A, tokens: [a], next_class: [x]}"},
		{"rule not a mapping", "rules:\n  - a"},
		{"unknown onmatch field", "onmatch_rules:\n  - {production: x, prev_classes: [a], next_class: [b]}"},
		{"unknown whitespace field", "whitespace:\n  default: ' '\n  token_clas: wb"},
		{"whitespace not a mapping", "whitespace: yes"},
		{"whitespace wrong type", "whitespace:\n  consolidate: [x]"},
		{"metadata not a mapping", "metadata: [a, b]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Expected ErrInvalidSettings, got %v", err)
			}
		})
	}
}

func TestBuildReportsInvalidRules(t *testing.T) {
	f := mustParse(t, `
tokens:
  a: [letter]
  ' ': [wb]
rules:
  z: Z
whitespace:
  default: ' '
  token_class: wb
`)
	if _, err := f.Build(false, false); !errors.Is(err, rules.ErrInvalidRule) {
		t.Errorf("Expected ErrInvalidRule, got %v", err)
	}

	f = mustParse(t, "tokens:\n  a: []\n")
	if _, err := f.Config(); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("Expected ErrInvalidSettings, got %v", err)
	}
}
