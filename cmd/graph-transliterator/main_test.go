package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spicery/graph-transliterator/pkg/settings"
	"github.com/spicery/graph-transliterator/pkg/transliterator"
)

const testSettings = `
tokens:
  a: [letter]
  b: [letter]
  ' ': [wb]
rules:
  a: A
  b: B
  '\ ': ' '
whitespace:
  default: ' '
  token_class: wb
  consolidate: true
`

func build(t *testing.T, ignoreErrors bool) *transliterator.Transliterator {
	t.Helper()
	f, err := settings.Parse([]byte(testSettings))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	tr, err := f.Build(ignoreErrors, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return tr
}

func TestWriteTokensShowsTransliteratorTokens(t *testing.T) {
	var out bytes.Buffer
	if err := writeTokens(&out, build(t, true), "a   é"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := "\" \"\n\"a\"\n\" \"\n\"é\"\n\" \"\n"
	if out.String() != expected {
		t.Errorf("Expected %q, got %q", expected, out.String())
	}
}

func TestWriteTokensReportsUntokenizableInput(t *testing.T) {
	var out bytes.Buffer
	if err := writeTokens(&out, build(t, false), "aé"); err == nil {
		t.Error("Expected error without --ignore-errors")
	}
}

func TestReport(t *testing.T) {
	tr := build(t, false)

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"All used", "a b", []string{"Coverage: all 3 rules used"}},
		{"Unused rules", "a", []string{
			`Coverage: rule 1 ["b"] -> "B" never matched`,
			`Coverage: rule 2 [" "] -> " " never matched`,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tr.Run(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			var out bytes.Buffer
			report(&out, tr, res)
			got := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
			if strings.Join(got, "\n") != strings.Join(tt.expected, "\n") {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
