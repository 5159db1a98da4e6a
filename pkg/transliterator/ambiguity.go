package transliterator

import (
	"strings"

	"github.com/spicery/graph-transliterator/pkg/rules"
	"github.com/spicery/graph-transliterator/pkg/tokenizer"
)

// slot is one context position of a rule: either a token or a class.
type slot struct {
	token string
	class string
}

// checkAmbiguity reports rules that consume the same tokens at the same
// cost and whose contexts can all be satisfied by one input. The search
// cannot tell such rules apart except by definition order.
func checkAmbiguity(table *tokenizer.Table, rs []rules.Rule) error {
	groups := make(map[string][]int)
	var keys []string
	for i, r := range rs {
		key := strings.Join(r.Tokens(), "\x00")
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], i)
	}

	var pairs [][2]int
	for _, key := range keys {
		group := groups[key]
		for a := 0; a < len(group); a++ {
			for b := a + 1; b < len(group); b++ {
				ra, rb := rs[group[a]], rs[group[b]]
				if ra.Cost() != rb.Cost() {
					continue
				}
				if overlaps(table, prevSlots(ra), prevSlots(rb)) && overlaps(table, nextSlots(ra), nextSlots(rb)) {
					pairs = append(pairs, [2]int{group[a], group[b]})
				}
			}
		}
	}
	if len(pairs) > 0 {
		return &AmbiguityError{Pairs: pairs}
	}
	return nil
}

// prevSlots lists the left context of r nearest first.
func prevSlots(r rules.Rule) []slot {
	tokens, classes := r.PrevTokens(), r.PrevClasses()
	out := make([]slot, 0, len(tokens)+len(classes))
	for i := len(tokens) - 1; i >= 0; i-- {
		out = append(out, slot{token: tokens[i]})
	}
	for i := len(classes) - 1; i >= 0; i-- {
		out = append(out, slot{class: classes[i]})
	}
	return out
}

// nextSlots lists the right context of r nearest first.
func nextSlots(r rules.Rule) []slot {
	tokens, classes := r.NextTokens(), r.NextClasses()
	out := make([]slot, 0, len(tokens)+len(classes))
	for _, token := range tokens {
		out = append(out, slot{token: token})
	}
	for _, class := range classes {
		out = append(out, slot{class: class})
	}
	return out
}

// overlaps reports whether some token sequence satisfies both contexts.
// Positions beyond the shorter context are unconstrained on that side.
func overlaps(table *tokenizer.Table, a, b []slot) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if !intersects(table, a[i], b[i]) {
			return false
		}
	}
	return true
}

func intersects(table *tokenizer.Table, a, b slot) bool {
	switch {
	case a.token != "" && b.token != "":
		return a.token == b.token
	case a.token != "":
		return table.HasClass(a.token, b.class)
	case b.token != "":
		return table.HasClass(b.token, a.class)
	}
	for _, token := range table.TokensOf(a.class) {
		if table.HasClass(token, b.class) {
			return true
		}
	}
	return false
}
