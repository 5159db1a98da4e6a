package rules

import (
	"errors"
	"math"
	"testing"

	"github.com/spicery/graph-transliterator/pkg/tokenizer"
)

func TestCost(t *testing.T) {
	tests := []struct {
		n        int
		expected float64
	}{
		{1, math.Log2(1.5)},
		{2, math.Log2(1 + 1.0/3)},
		{5, math.Log2(1 + 1.0/6)},
	}

	for _, tt := range tests {
		if got := Cost(tt.n); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("Cost(%d): expected %v, got %v", tt.n, tt.expected, got)
		}
	}
}

func TestCostMonotonicity(t *testing.T) {
	for n := 1; n < 50; n++ {
		if Cost(n) <= Cost(n+1) {
			t.Errorf("Expected Cost(%d) > Cost(%d), got %v <= %v", n, n+1, Cost(n), Cost(n+1))
		}
	}
}

func TestRuleCostCountsAllFields(t *testing.T) {
	a, err := New(Definition{Production: "A", Tokens: []string{"a"}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b, err := New(Definition{
		Production:  "B",
		Tokens:      []string{"a"},
		PrevClasses: []string{"wb"},
		PrevTokens:  []string{"x"},
		NextTokens:  []string{"y"},
		NextClasses: []string{"letter", "letter"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	c, err := New(Definition{Production: "C", Tokens: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	d, err := New(Definition{Production: "D", Tokens: []string{"a"}, NextClasses: []string{"letter"}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if b.TokenCount() != 6 {
		t.Errorf("Expected 6 tokens, got %d", b.TokenCount())
	}
	if b.Cost() != Cost(6) {
		t.Errorf("Expected cost %v, got %v", Cost(6), b.Cost())
	}
	if !(a.Cost() > b.Cost()) {
		t.Errorf("Expected the constrained rule to be cheaper")
	}
	if c.Cost() != d.Cost() {
		t.Errorf("Expected equal counts to give equal costs, got %v and %v", c.Cost(), d.Cost())
	}
	if a.HasConstraints() || !b.HasConstraints() {
		t.Errorf("HasConstraints misreported")
	}
}

func TestEmptyTokensRejected(t *testing.T) {
	_, err := NewAll([]Definition{
		{Production: "A", Tokens: []string{"a"}},
		{Production: "B"},
	})
	if !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("Expected ErrInvalidRule, got %v", err)
	}
	var invalid *InvalidRuleError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected *InvalidRuleError, got %T", err)
	}
	if invalid.Index != 1 {
		t.Errorf("Expected index 1, got %d", invalid.Index)
	}
}

func TestRuleIsImmutable(t *testing.T) {
	tokens := []string{"a"}
	r, err := New(Definition{Production: "A", Tokens: tokens})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	tokens[0] = "z"
	got := r.Tokens()
	if got[0] != "a" {
		t.Errorf("Expected rule to keep its own copy of tokens")
	}
	got[0] = "y"
	if r.Tokens()[0] != "a" {
		t.Errorf("Expected accessor to return a copy")
	}
}

func TestOnMatchRequiresBothSides(t *testing.T) {
	if _, err := NewOnMatch(OnMatchDefinition{NextClasses: []string{"v"}}); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("Expected ErrInvalidRule for empty prev_classes, got %v", err)
	}
	if _, err := NewOnMatch(OnMatchDefinition{PrevClasses: []string{"v"}}); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("Expected ErrInvalidRule for empty next_classes, got %v", err)
	}

	r, err := NewOnMatch(OnMatchDefinition{
		PrevClasses: []string{"c", "v"},
		NextClasses: []string{"v", "c"},
		Production:  ",",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.LastPrevClass() != "v" || r.FirstNextClass() != "v" {
		t.Errorf("Unexpected boundary classes %s, %s", r.LastPrevClass(), r.FirstNextClass())
	}
}

func testTable(t *testing.T) *tokenizer.Table {
	t.Helper()
	table, err := tokenizer.TableOf(map[string][]string{
		"a": {"letter"},
		"b": {"letter"},
		" ": {"wb"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return table
}

func TestValidate(t *testing.T) {
	table := testTable(t)

	tests := []struct {
		name  string
		def   Definition
		valid bool
	}{
		{"Known tokens", Definition{Tokens: []string{"a", "b"}}, true},
		{"Known classes", Definition{Tokens: []string{"a"}, PrevClasses: []string{"wb"}, NextClasses: []string{"letter"}}, true},
		{"Unknown token", Definition{Tokens: []string{"c"}}, false},
		{"Unknown prev token", Definition{Tokens: []string{"a"}, PrevTokens: []string{"c"}}, false},
		{"Unknown next token", Definition{Tokens: []string{"a"}, NextTokens: []string{"c"}}, false},
		{"Unknown class", Definition{Tokens: []string{"a"}, NextClasses: []string{"digit"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.def)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			err = Validate(table, []Rule{r})
			if tt.valid && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidRule) {
				t.Errorf("Expected ErrInvalidRule, got %v", err)
			}
		})
	}
}

func TestValidateWhitespace(t *testing.T) {
	table := testTable(t)

	if err := ValidateWhitespace(table, Whitespace{Default: " ", TokenClass: "wb"}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := ValidateWhitespace(table, Whitespace{Default: "_", TokenClass: "wb"}); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("Expected ErrInvalidRule for unknown default, got %v", err)
	}
	if err := ValidateWhitespace(table, Whitespace{Default: "a", TokenClass: "wb"}); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("Expected ErrInvalidRule for default outside the class, got %v", err)
	}
}

func TestValidateOnMatch(t *testing.T) {
	table := testTable(t)
	r, err := NewOnMatch(OnMatchDefinition{PrevClasses: []string{"letter"}, NextClasses: []string{"vowel"}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := ValidateOnMatch(table, []OnMatchRule{r}); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("Expected ErrInvalidRule for unknown class, got %v", err)
	}
}
