package tokenizer

import (
	"fmt"
	"sort"
)

// Token represents a single token scanned from the input text.
type Token struct {
	Text  string `json:"text"`
	Start int    `json:"start"` // Byte offset of the first byte
	End   int    `json:"end"`   // Byte offset just past the last byte
}

// Table is the token alphabet together with the classes each token carries.
// The class index is derived from the token entries and rebuilt on every
// change, so it is never out of step with them.
type Table struct {
	order   []string
	classes map[string][]string
	byClass map[string][]string
}

// NewTable creates an empty token table.
func NewTable() *Table {
	return &Table{
		classes: make(map[string][]string),
		byClass: make(map[string][]string),
	}
}

// TableOf builds a table from a token -> classes map. Since map order is
// not stable, tokens are added in sorted order.
func TableOf(tokens map[string][]string) (*Table, error) {
	keys := make([]string, 0, len(tokens))
	for token := range tokens {
		keys = append(keys, token)
	}
	sort.Strings(keys)

	table := NewTable()
	for _, token := range keys {
		if err := table.Add(token, tokens[token]...); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// Add registers a token with its classes. Adding a token that is already
// present replaces its classes.
func (t *Table) Add(token string, classes ...string) error {
	if token == "" {
		return fmt.Errorf("token must not be empty")
	}
	if len(classes) == 0 {
		return fmt.Errorf("token '%s' must belong to at least one class", token)
	}

	seen := make(map[string]bool, len(classes))
	unique := make([]string, 0, len(classes))
	for _, class := range classes {
		if class == "" {
			return fmt.Errorf("token '%s' has an empty class name", token)
		}
		if !seen[class] {
			seen[class] = true
			unique = append(unique, class)
		}
	}

	if _, exists := t.classes[token]; !exists {
		t.order = append(t.order, token)
	}
	t.classes[token] = unique
	t.rebuildIndex()
	return nil
}

func (t *Table) rebuildIndex() {
	t.byClass = make(map[string][]string)
	for _, token := range t.order {
		for _, class := range t.classes[token] {
			t.byClass[class] = append(t.byClass[class], token)
		}
	}
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	c := NewTable()
	for _, token := range t.order {
		c.order = append(c.order, token)
		c.classes[token] = append([]string(nil), t.classes[token]...)
	}
	c.rebuildIndex()
	return c
}

// Len returns the number of tokens in the alphabet.
func (t *Table) Len() int {
	return len(t.order)
}

// Tokens returns the alphabet in the order tokens were added.
func (t *Table) Tokens() []string {
	return append([]string(nil), t.order...)
}

// Has reports whether token belongs to the alphabet.
func (t *Table) Has(token string) bool {
	_, ok := t.classes[token]
	return ok
}

// IsClass reports whether at least one token carries class.
func (t *Table) IsClass(class string) bool {
	return len(t.byClass[class]) > 0
}

// HasClass reports whether token carries class. Tokens outside the
// alphabet carry no classes.
func (t *Table) HasClass(token, class string) bool {
	for _, c := range t.classes[token] {
		if c == class {
			return true
		}
	}
	return false
}

// Classes returns the classes of token in the order they were declared.
func (t *Table) Classes(token string) []string {
	return append([]string(nil), t.classes[token]...)
}

// TokensOf returns the tokens carrying class, in alphabet order.
func (t *Table) TokensOf(class string) []string {
	return append([]string(nil), t.byClass[class]...)
}

// ClassNames returns every class label in sorted order.
func (t *Table) ClassNames() []string {
	names := make([]string, 0, len(t.byClass))
	for class := range t.byClass {
		names = append(names, class)
	}
	sort.Strings(names)
	return names
}
