package rules

import (
	"fmt"

	"github.com/spicery/graph-transliterator/pkg/tokenizer"
)

// Validate checks that every token and class a rule refers to is known to
// the table.
func Validate(table *tokenizer.Table, rules []Rule) error {
	for i, r := range rules {
		if reason := checkTokens(table, r.tokens, "tokens"); reason != "" {
			return &InvalidRuleError{Kind: "rule", Index: i, Reason: reason}
		}
		if reason := checkTokens(table, r.prevTokens, "prev_tokens"); reason != "" {
			return &InvalidRuleError{Kind: "rule", Index: i, Reason: reason}
		}
		if reason := checkTokens(table, r.nextTokens, "next_tokens"); reason != "" {
			return &InvalidRuleError{Kind: "rule", Index: i, Reason: reason}
		}
		if reason := checkClasses(table, r.prevClasses, "prev_classes"); reason != "" {
			return &InvalidRuleError{Kind: "rule", Index: i, Reason: reason}
		}
		if reason := checkClasses(table, r.nextClasses, "next_classes"); reason != "" {
			return &InvalidRuleError{Kind: "rule", Index: i, Reason: reason}
		}
	}
	return nil
}

// ValidateOnMatch checks the classes of onmatch rules against the table.
func ValidateOnMatch(table *tokenizer.Table, rules []OnMatchRule) error {
	for i, r := range rules {
		if reason := checkClasses(table, r.prevClasses, "prev_classes"); reason != "" {
			return &InvalidRuleError{Kind: "onmatch", Index: i, Reason: reason}
		}
		if reason := checkClasses(table, r.nextClasses, "next_classes"); reason != "" {
			return &InvalidRuleError{Kind: "onmatch", Index: i, Reason: reason}
		}
	}
	return nil
}

// ValidateWhitespace checks that the default whitespace token exists and
// carries the whitespace class.
func ValidateWhitespace(table *tokenizer.Table, ws Whitespace) error {
	switch {
	case ws.Default == "":
		return &InvalidRuleError{Kind: "whitespace", Reason: "default must not be empty"}
	case ws.TokenClass == "":
		return &InvalidRuleError{Kind: "whitespace", Reason: "token_class must not be empty"}
	case !table.Has(ws.Default):
		return &InvalidRuleError{Kind: "whitespace", Reason: fmt.Sprintf("default '%s' is not a token", ws.Default)}
	case !table.HasClass(ws.Default, ws.TokenClass):
		return &InvalidRuleError{Kind: "whitespace", Reason: fmt.Sprintf("default '%s' is not of class '%s'", ws.Default, ws.TokenClass)}
	}
	return nil
}

func checkTokens(table *tokenizer.Table, tokens []string, field string) string {
	for _, token := range tokens {
		if !table.Has(token) {
			return fmt.Sprintf("%s refers to unknown token '%s'", field, token)
		}
	}
	return ""
}

func checkClasses(table *tokenizer.Table, classes []string, field string) string {
	for _, class := range classes {
		if !table.IsClass(class) {
			return fmt.Sprintf("%s refers to unknown class '%s'", field, class)
		}
	}
	return ""
}
