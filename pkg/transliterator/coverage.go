package transliterator

import (
	"fmt"
	"sync"
)

// Coverage counts how often each rule and onmatch rule of a transliterator
// has been used across recorded runs. It is safe for concurrent use.
type Coverage struct {
	mu      sync.Mutex
	rules   []int
	onmatch []int
}

// NewCoverage creates an empty coverage record for t.
func NewCoverage(t *Transliterator) *Coverage {
	return &Coverage{
		rules:   make([]int, len(t.rules)),
		onmatch: make([]int, len(t.onmatch)),
	}
}

// Record adds the matches of a run.
func (c *Coverage) Record(res *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range res.Matches {
		if m.Rule >= 0 && m.Rule < len(c.rules) {
			c.rules[m.Rule]++
		}
		if m.OnMatch >= 0 && m.OnMatch < len(c.onmatch) {
			c.onmatch[m.OnMatch]++
		}
	}
}

// Count returns how often rule i has matched.
func (c *Coverage) Count(i int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rules[i]
}

// Unmatched returns the indices of rules that never matched.
func (c *Coverage) Unmatched() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return zeros(c.rules)
}

// UnusedOnMatch returns the indices of onmatch rules that were never applied.
func (c *Coverage) UnusedOnMatch() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return zeros(c.onmatch)
}

// Clear resets all counts.
func (c *Coverage) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.rules {
		c.rules[i] = 0
	}
	for i := range c.onmatch {
		c.onmatch[i] = 0
	}
}

// Check returns ErrIncompleteCoverage if any rule or onmatch rule was never
// used.
func (c *Coverage) Check() error {
	rules, onmatch := c.Unmatched(), c.UnusedOnMatch()
	if len(rules) == 0 && len(onmatch) == 0 {
		return nil
	}
	return fmt.Errorf("%w: rules never matched %v, onmatch rules never applied %v",
		ErrIncompleteCoverage, rules, onmatch)
}

func zeros(counts []int) []int {
	var out []int
	for i, n := range counts {
		if n == 0 {
			out = append(out, i)
		}
	}
	return out
}
