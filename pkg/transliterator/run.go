package transliterator

import (
	"context"
	"strings"
)

// Match records one step of a run.
type Match struct {
	Rule       int    `json:"rule"`       // Rule index, or -1 for a verbatim token
	Start      int    `json:"start"`      // First framed token consumed
	End        int    `json:"end"`        // Position after the last token consumed
	Production string `json:"production"` // Text emitted for the match
	OnMatch    int    `json:"onmatch"`    // Onmatch rule emitted before it, or -1
}

// Result is the outcome of one run.
type Result struct {
	Output  string   `json:"output"`
	Tokens  []string `json:"tokens"` // Framed input tokens
	Matches []Match  `json:"matches"`
}

// MatchedRules returns the rule index of every rule match, in order.
func (r *Result) MatchedRules() []int {
	out := make([]int, 0, len(r.Matches))
	for _, m := range r.Matches {
		if m.Rule >= 0 {
			out = append(out, m.Rule)
		}
	}
	return out
}

// Tokenize scans input and frames the tokens with the default whitespace
// token on either side. With consolidation, every run of whitespace becomes
// one default token and runs at either end merge into the frame. If errors
// are ignored, characters outside the alphabet become one-character tokens.
func (t *Transliterator) Tokenize(input string) ([]string, error) {
	s := t.tokenizer.Scanner(input)
	raw := make([]string, 0, len(input))
	for {
		if s.Scan() {
			raw = append(raw, s.Token().Text)
			continue
		}
		err := s.Err()
		if err == nil {
			break
		}
		if !t.config.IgnoreErrors {
			return nil, err
		}
		token, _ := s.SkipRune()
		t.log.Warn().Err(err).Int("offset", token.Start).Str("token", token.Text).Msg("unrecognized input")
		raw = append(raw, token.Text)
	}
	return t.Frame(raw), nil
}

// Frame adds the framing whitespace to an unframed token list, applying
// whitespace consolidation.
func (t *Transliterator) Frame(raw []string) []string {
	ws := t.config.Whitespace
	out := make([]string, 0, len(raw)+2)
	out = append(out, ws.Default)
	for _, token := range raw {
		if ws.Consolidate && t.isWhitespace(token) {
			if t.isWhitespace(out[len(out)-1]) {
				continue
			}
			out = append(out, ws.Default)
			continue
		}
		out = append(out, token)
	}
	if ws.Consolidate && len(out) > 1 && t.isWhitespace(out[len(out)-1]) {
		return out
	}
	return append(out, ws.Default)
}

func (t *Transliterator) isWhitespace(token string) bool {
	return t.table.HasClass(token, t.config.Whitespace.TokenClass)
}

// Transliterate converts input to its output text.
func (t *Transliterator) Transliterate(input string) (string, error) {
	res, err := t.Run(context.Background(), input)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// TransliterateTokens converts an already tokenized, unframed input.
func (t *Transliterator) TransliterateTokens(tokens []string) (string, error) {
	res, err := t.RunTokens(context.Background(), tokens)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// Run tokenizes and transliterates input. ctx is checked between token
// positions.
func (t *Transliterator) Run(ctx context.Context, input string) (*Result, error) {
	tokens, err := t.Tokenize(input)
	if err != nil {
		return nil, err
	}
	return t.run(ctx, tokens)
}

// RunTokens frames and transliterates an already tokenized input.
func (t *Transliterator) RunTokens(ctx context.Context, tokens []string) (*Result, error) {
	return t.run(ctx, t.Frame(tokens))
}

// run transliterates the tokens between the two framing tokens.
func (t *Transliterator) run(ctx context.Context, tokens []string) (*Result, error) {
	res := &Result{Tokens: tokens}
	var out strings.Builder
	prevMatched := false

	for pos := 1; pos < len(tokens)-1; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rule, end, ok := t.MatchAt(tokens, pos)
		if !ok {
			if !t.config.IgnoreErrors {
				return nil, newNoMatchError(tokens, pos)
			}
			t.log.Warn().Int("pos", pos).Str("token", tokens[pos]).Msg("no matching rule, emitting token")
			out.WriteString(tokens[pos])
			res.Matches = append(res.Matches, Match{
				Rule:       -1,
				Start:      pos,
				End:        pos + 1,
				Production: tokens[pos],
				OnMatch:    -1,
			})
			prevMatched = false
			pos++
			continue
		}

		m := Match{Rule: rule, Start: pos, End: end, Production: t.rules[rule].Production(), OnMatch: -1}
		if prevMatched {
			if i, found := t.lookup.Find(tokens, pos); found {
				out.WriteString(t.onmatch[i].Production())
				m.OnMatch = i
			}
		}
		out.WriteString(m.Production)
		t.log.Trace().Int("pos", pos).Int("rule", rule).Str("production", m.Production).Msg("matched")

		res.Matches = append(res.Matches, m)
		prevMatched = true
		pos = end
	}

	res.Output = out.String()
	return res, nil
}
