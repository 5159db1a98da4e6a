package transliterator

import (
	"github.com/spicery/graph-transliterator/pkg/graph"
)

// frame is one pending candidate of the depth-first search: a graph node
// and the input position just after the tokens consumed to reach it.
type frame struct {
	node int
	pos  int
}

// search walks the graph from the start node against tokens[start:],
// trying candidates cheapest first and backtracking when a branch yields
// no rule. yield receives each rule whose constraints hold, with the
// position after its last token, and returns false to stop the search.
func (t *Transliterator) search(tokens []string, start int, yield func(rule, end int) bool) {
	g := t.graph
	stack := make([]frame, 0, 16)

	push := func(node, pos int) {
		var candidates []int
		if pos < len(tokens) {
			candidates = g.Candidates(node, tokens[pos])
		}
		if candidates == nil {
			candidates = g.RuleCandidates(node)
		}
		// Reverse order so the cheapest candidate is popped first.
		for i := len(candidates) - 1; i >= 0; i-- {
			c := candidates[i]
			next := pos
			if g.Kind(c) == graph.TokenNode {
				next = pos + 1
			}
			stack = append(stack, frame{node: c, pos: next})
		}
	}

	push(0, start)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if g.Kind(f.node) != graph.RuleNode {
			push(f.node, f.pos)
			continue
		}
		if t.satisfies(tokens, g.Edge(f.node).Constraints, start, f.pos) {
			if !yield(g.RuleIndex(f.node), f.pos) {
				return
			}
		}
	}
}

// MatchAt returns the rule selected for tokens[pos:] and the position after
// the tokens it consumes. tokens are framed tokens as from Tokenize.
func (t *Transliterator) MatchAt(tokens []string, pos int) (rule, end int, ok bool) {
	if pos < 0 || pos >= len(tokens) {
		return 0, 0, false
	}
	t.search(tokens, pos, func(r, e int) bool {
		rule, end, ok = r, e, true
		return false
	})
	return rule, end, ok
}

// MatchAllAt returns every rule whose tokens and constraints hold at pos,
// in the order the search tries them.
func (t *Transliterator) MatchAllAt(tokens []string, pos int) []int {
	if pos < 0 || pos >= len(tokens) {
		return nil
	}
	var matched []int
	t.search(tokens, pos, func(r, _ int) bool {
		matched = append(matched, r)
		return true
	})
	return matched
}

// satisfies checks a rule's context around tokens[start:end]. Going
// outwards, the rule's tokens are flanked by prev_tokens then prev_classes
// on the left, and by next_tokens then next_classes on the right.
func (t *Transliterator) satisfies(tokens []string, c *graph.Constraints, start, end int) bool {
	if c == nil {
		return true
	}
	prevAt := start - len(c.PrevTokens)
	if !tokensAt(tokens, prevAt, c.PrevTokens) {
		return false
	}
	if !t.classesAt(tokens, prevAt-len(c.PrevClasses), c.PrevClasses) {
		return false
	}
	if !tokensAt(tokens, end, c.NextTokens) {
		return false
	}
	return t.classesAt(tokens, end+len(c.NextTokens), c.NextClasses)
}

func tokensAt(tokens []string, at int, want []string) bool {
	if len(want) == 0 {
		return true
	}
	if at < 0 || at+len(want) > len(tokens) {
		return false
	}
	for i, token := range want {
		if tokens[at+i] != token {
			return false
		}
	}
	return true
}

func (t *Transliterator) classesAt(tokens []string, at int, classes []string) bool {
	if len(classes) == 0 {
		return true
	}
	if at < 0 || at+len(classes) > len(tokens) {
		return false
	}
	for i, class := range classes {
		if !t.table.HasClass(tokens[at+i], class) {
			return false
		}
	}
	return true
}
