package settings

import (
	"fmt"
	"strings"

	"github.com/coregx/coregex"
)

var (
	// A class reference, a parenthesis, or a token with backslash escapes.
	ruleLexeme = coregex.MustCompile(`<[^<>\s]+>|\(|\)|(?:\\.|[^\s<>()\\])+`)
	classRef   = coregex.MustCompile(`<[^<>\s]+>`)
	onMatchKey = coregex.MustCompile(`^\s*(?:<[^<>\s+]+>\s*)+\+\s*(?:<[^<>\s+]+>\s*)+$`)
)

type lexeme struct {
	text  string
	class bool
	paren bool
}

func lexRuleKey(key string) ([]lexeme, error) {
	var out []lexeme
	last := 0
	for _, loc := range ruleLexeme.FindAllStringIndex(key, -1) {
		if gap := key[last:loc[0]]; strings.TrimSpace(gap) != "" {
			return nil, fmt.Errorf("unexpected '%s' in rule '%s'", strings.TrimSpace(gap), key)
		}
		text := key[loc[0]:loc[1]]
		switch {
		case text == "(" || text == ")":
			out = append(out, lexeme{text: text, paren: true})
		case strings.HasPrefix(text, "<"):
			out = append(out, lexeme{text: text[1 : len(text)-1], class: true})
		default:
			out = append(out, lexeme{text: unescape(text)})
		}
		last = loc[1]
	}
	if gap := key[last:]; strings.TrimSpace(gap) != "" {
		return nil, fmt.Errorf("unexpected '%s' in rule '%s'", strings.TrimSpace(gap), key)
	}
	return out, nil
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// ParseRuleKey parses an easy reading rule key. Bare words are tokens and
// <name> is a class. When a rule has context, its tokens are enclosed in
// parentheses: classes then tokens on the left, tokens then classes on the
// right. A backslash escapes the next character.
func ParseRuleKey(key string) (RuleEntry, error) {
	lexemes, err := lexRuleKey(key)
	if err != nil {
		return RuleEntry{}, err
	}

	open, end := -1, -1
	for i, l := range lexemes {
		if !l.paren {
			continue
		}
		switch l.text {
		case "(":
			if open >= 0 {
				return RuleEntry{}, fmt.Errorf("more than one '(' in rule '%s'", key)
			}
			open = i
		case ")":
			if end >= 0 {
				return RuleEntry{}, fmt.Errorf("more than one ')' in rule '%s'", key)
			}
			end = i
		}
	}

	var entry RuleEntry
	if open < 0 && end < 0 {
		for _, l := range lexemes {
			if l.class {
				return RuleEntry{}, fmt.Errorf("class <%s> outside parentheses in rule '%s'", l.text, key)
			}
			entry.Tokens = append(entry.Tokens, l.text)
		}
	} else {
		if open < 0 || end < open {
			return RuleEntry{}, fmt.Errorf("unbalanced parentheses in rule '%s'", key)
		}
		for _, l := range lexemes[open+1 : end] {
			if l.class {
				return RuleEntry{}, fmt.Errorf("class <%s> among matched tokens in rule '%s'", l.text, key)
			}
			entry.Tokens = append(entry.Tokens, l.text)
		}
		entry.PrevClasses, entry.PrevTokens, err = splitPrev(lexemes[:open])
		if err != nil {
			return RuleEntry{}, fmt.Errorf("%v in rule '%s'", err, key)
		}
		entry.NextClasses, entry.NextTokens, err = splitNext(lexemes[end+1:])
		if err != nil {
			return RuleEntry{}, fmt.Errorf("%v in rule '%s'", err, key)
		}
	}
	if len(entry.Tokens) == 0 {
		return RuleEntry{}, fmt.Errorf("no tokens in rule '%s'", key)
	}
	return entry, nil
}

// splitPrev separates a left context into classes and tokens. Classes are
// the outer part.
func splitPrev(lexemes []lexeme) (classes, tokens []string, err error) {
	for _, l := range lexemes {
		if !l.class {
			tokens = append(tokens, l.text)
			continue
		}
		if len(tokens) > 0 {
			return nil, nil, fmt.Errorf("class <%s> after previous tokens", l.text)
		}
		classes = append(classes, l.text)
	}
	return classes, tokens, nil
}

// splitNext is splitPrev for the right context.
func splitNext(lexemes []lexeme) (classes, tokens []string, err error) {
	for _, l := range lexemes {
		if l.class {
			classes = append(classes, l.text)
			continue
		}
		if len(classes) > 0 {
			return nil, nil, fmt.Errorf("token '%s' after next classes", l.text)
		}
		tokens = append(tokens, l.text)
	}
	return classes, tokens, nil
}

// ParseOnMatchKey parses an onmatch key of the form "<a> <b> + <c>".
func ParseOnMatchKey(key string) (OnMatchEntry, error) {
	if !onMatchKey.MatchString(key) {
		return OnMatchEntry{}, fmt.Errorf("onmatch rule '%s' must be classes, '+', classes", key)
	}
	plus := strings.Index(key, "+")
	var entry OnMatchEntry
	for _, c := range classRef.FindAllString(key[:plus], -1) {
		entry.PrevClasses = append(entry.PrevClasses, c[1:len(c)-1])
	}
	for _, c := range classRef.FindAllString(key[plus+1:], -1) {
		entry.NextClasses = append(entry.NextClasses, c[1:len(c)-1])
	}
	return entry, nil
}
