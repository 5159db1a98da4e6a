// Package graph compiles transliteration rules into the parsing graph: a
// tree whose inner nodes consume one token each and whose leaves are rules.
// Candidate children are ordered by cost at build time, so a depth-first
// walk that follows that order always tries the most specific rule first.
package graph

import (
	"sort"

	"github.com/spicery/graph-transliterator/pkg/rules"
)

// Kind tells the three node types apart.
type Kind uint8

const (
	Start Kind = iota
	TokenNode
	RuleNode
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "start"
	case TokenNode:
		return "token"
	case RuleNode:
		return "rule"
	default:
		return "unknown"
	}
}

// Constraints is the context a rule requires around its tokens.
type Constraints struct {
	PrevClasses []string
	PrevTokens  []string
	NextTokens  []string
	NextClasses []string
}

// Edge is the edge leading into a node from its parent.
type Edge struct {
	Cost        float64
	Constraints *Constraints // Only set on edges into rule leaves
}

// Node is one vertex of the graph. Nodes are addressed by their index.
type Node struct {
	Kind   Kind
	Token  string // Token consumed on entering a TokenNode
	Rule   int    // Rule index of a RuleNode
	Parent int    // -1 for the start node
	Edge   Edge   // Edge from Parent

	tokenChildren map[string]int
	ordered       map[string][]int
	rules         []int
}

// Graph is the compiled parsing graph. It is never modified after Build
// returns and may be read from many goroutines.
type Graph struct {
	nodes []Node
	rules []rules.Rule
}

// Build compiles rules, in order, into a graph rooted at node 0.
func Build(rs []rules.Rule) *Graph {
	g := &Graph{
		nodes: []Node{{Kind: Start, Parent: -1}},
		rules: append([]rules.Rule(nil), rs...),
	}

	for ruleIndex, r := range g.rules {
		parent := 0
		for _, token := range r.Tokens() {
			child, exists := g.nodes[parent].tokenChildren[token]
			if !exists {
				child = g.add(Node{
					Kind:   TokenNode,
					Token:  token,
					Parent: parent,
					Edge:   Edge{Cost: r.Cost()},
				})
				if g.nodes[parent].tokenChildren == nil {
					g.nodes[parent].tokenChildren = make(map[string]int)
				}
				g.nodes[parent].tokenChildren[token] = child
			} else if g.nodes[child].Edge.Cost > r.Cost() {
				// A prefix edge costs as little as the cheapest rule below it.
				g.nodes[child].Edge.Cost = r.Cost()
			}
			parent = child
		}

		leaf := g.add(Node{
			Kind:   RuleNode,
			Rule:   ruleIndex,
			Parent: parent,
			Edge:   Edge{Cost: r.Cost(), Constraints: constraintsOf(r)},
		})
		g.insertRuleChild(parent, leaf)
	}

	for i := range g.nodes {
		g.order(i)
	}
	return g
}

func (g *Graph) add(n Node) int {
	g.nodes = append(g.nodes, n)
	return len(g.nodes) - 1
}

// insertRuleChild keeps a node's rule leaves sorted by rule cost. A new
// leaf goes after every leaf that is not more expensive, so equal costs
// keep definition order.
func (g *Graph) insertRuleChild(parent, leaf int) {
	children := g.nodes[parent].rules
	cost := g.rules[g.nodes[leaf].Rule].Cost()
	at := sort.Search(len(children), func(i int) bool {
		return g.rules[g.nodes[children[i]].Rule].Cost() > cost
	})
	children = append(children, 0)
	copy(children[at+1:], children[at:])
	children[at] = leaf
	g.nodes[parent].rules = children
}

// order computes the candidate list for every token leaving node i: the
// token child followed by the node's rule leaves, stably sorted by edge cost.
func (g *Graph) order(i int) {
	n := &g.nodes[i]
	sort.SliceStable(n.rules, func(a, b int) bool {
		return g.nodes[n.rules[a]].Edge.Cost < g.nodes[n.rules[b]].Edge.Cost
	})
	if len(n.tokenChildren) == 0 {
		return
	}
	n.ordered = make(map[string][]int, len(n.tokenChildren))
	for token, child := range n.tokenChildren {
		candidates := make([]int, 0, 1+len(n.rules))
		candidates = append(candidates, child)
		candidates = append(candidates, n.rules...)
		sort.SliceStable(candidates, func(a, b int) bool {
			return g.nodes[candidates[a]].Edge.Cost < g.nodes[candidates[b]].Edge.Cost
		})
		n.ordered[token] = candidates
	}
}

func constraintsOf(r rules.Rule) *Constraints {
	if !r.HasConstraints() {
		return nil
	}
	return &Constraints{
		PrevClasses: r.PrevClasses(),
		PrevTokens:  r.PrevTokens(),
		NextTokens:  r.NextTokens(),
		NextClasses: r.NextClasses(),
	}
}

// Len returns the number of nodes, the start node included.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns a copy of node i without its child tables.
func (g *Graph) Node(i int) Node {
	n := g.nodes[i]
	n.tokenChildren = nil
	n.ordered = nil
	n.rules = nil
	return n
}

// Rules returns the rules the graph was built from, in definition order.
func (g *Graph) Rules() []rules.Rule {
	return append([]rules.Rule(nil), g.rules...)
}

// Rule returns rule i.
func (g *Graph) Rule(i int) rules.Rule {
	return g.rules[i]
}

// Candidates returns the children to try, cheapest first, when token is
// the next input token at node i. A nil result means token cannot
// continue a match from i. The slice belongs to the graph and must not be
// modified.
func (g *Graph) Candidates(i int, token string) []int {
	return g.nodes[i].ordered[token]
}

// RuleCandidates returns the rule leaves of node i, cheapest first, for
// when no further token can be consumed. The slice belongs to the graph
// and must not be modified.
func (g *Graph) RuleCandidates(i int) []int {
	return g.nodes[i].rules
}

// Child returns the token node reached from node i by consuming token.
func (g *Graph) Child(i int, token string) (int, bool) {
	child, ok := g.nodes[i].tokenChildren[token]
	return child, ok
}

// Find walks from the start node along tokens and returns the node reached.
func (g *Graph) Find(tokens []string) (int, bool) {
	node := 0
	for _, token := range tokens {
		child, ok := g.Child(node, token)
		if !ok {
			return 0, false
		}
		node = child
	}
	return node, true
}

// Tokens returns, in sorted order, the tokens that continue a match from
// node i.
func (g *Graph) Tokens(i int) []string {
	tokens := make([]string, 0, len(g.nodes[i].ordered))
	for token := range g.nodes[i].ordered {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// Kind returns the kind of node i.
func (g *Graph) Kind(i int) Kind {
	return g.nodes[i].Kind
}

// Edge returns the edge leading into node i.
func (g *Graph) Edge(i int) Edge {
	return g.nodes[i].Edge
}

// RuleIndex returns the rule index of rule leaf i.
func (g *Graph) RuleIndex(i int) int {
	return g.nodes[i].Rule
}
