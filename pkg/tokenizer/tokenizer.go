package tokenizer

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"
)

// ErrUntokenizableInput is returned when no alphabet entry matches at the
// current input position.
var ErrUntokenizableInput = errors.New("untokenizable input")

// excerptLen bounds how much of the remaining input an error reports.
const excerptLen = 16

// UntokenizableError describes where scanning stopped.
type UntokenizableError struct {
	Offset  int    // Byte offset of the first unmatched byte
	Excerpt string // Start of the unmatched remainder
}

func (e *UntokenizableError) Error() string {
	return fmt.Sprintf("untokenizable input at offset %d: %q", e.Offset, e.Excerpt)
}

func (e *UntokenizableError) Unwrap() error {
	return ErrUntokenizableInput
}

// Tokenizer scans text into tokens of a fixed alphabet, always taking the
// longest alphabet entry that matches at the current position. It holds no
// per-input state and may be shared between goroutines.
type Tokenizer struct {
	alphabet []string
	longest  int // Byte length of the longest entry
	ac       *ahocorasick.Automaton
}

// New compiles a tokenizer for the given alphabet. Duplicate entries are
// collapsed onto their first occurrence.
func New(alphabet []string) (*Tokenizer, error) {
	seen := make(map[string]bool, len(alphabet))
	patterns := make([]string, 0, len(alphabet))
	for _, token := range alphabet {
		if token == "" {
			return nil, fmt.Errorf("alphabet contains an empty token")
		}
		if !seen[token] {
			seen[token] = true
			patterns = append(patterns, token)
		}
	}

	t := &Tokenizer{alphabet: patterns}
	for _, token := range patterns {
		if len(token) > t.longest {
			t.longest = len(token)
		}
	}
	if len(patterns) == 0 {
		return t, nil
	}

	automaton, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to compile tokenizer: %w", err)
	}
	t.ac = automaton
	return t, nil
}

// NewFromTable compiles a tokenizer for the alphabet of table.
func NewFromTable(table *Table) (*Tokenizer, error) {
	return New(table.Tokens())
}

// Alphabet returns the tokens the tokenizer recognises.
func (t *Tokenizer) Alphabet() []string {
	return append([]string(nil), t.alphabet...)
}

// matchAt returns the longest alphabet entry starting exactly at offset.
// The search is anchored: an entry further on never hides a shorter one
// at offset.
func (t *Tokenizer) matchAt(haystack []byte, offset int) (Token, bool) {
	if t.ac == nil || offset >= len(haystack) {
		return Token{}, false
	}
	end := offset + t.longest
	if end > len(haystack) {
		end = len(haystack)
	}
	m := t.ac.FindAt(haystack[:end], offset)
	if m == nil || m.Start != offset {
		return Token{}, false
	}
	return Token{Text: t.alphabet[m.PatternID], Start: m.Start, End: m.End}, true
}

// Match returns the token starting at offset in input, if any.
func (t *Tokenizer) Match(input string, offset int) (Token, bool) {
	return t.matchAt([]byte(input), offset)
}

// Tokenize scans the whole input. On failure it returns the tokens scanned
// before the failing position together with an *UntokenizableError.
func (t *Tokenizer) Tokenize(input string) ([]Token, error) {
	s := t.Scanner(input)
	tokens := make([]Token, 0)
	for s.Scan() {
		tokens = append(tokens, s.Token())
	}
	return tokens, s.Err()
}

// Scanner produces the tokens of one input lazily.
type Scanner struct {
	tokenizer *Tokenizer
	text      string
	input     []byte
	offset    int
	current   Token
	err       error
}

// Scanner returns a scanner positioned at the start of input.
func (t *Tokenizer) Scanner(input string) *Scanner {
	return &Scanner{tokenizer: t, text: input, input: []byte(input)}
}

// Scan advances to the next token. It returns false at the end of the
// input or when no token matches; Err distinguishes the two.
func (s *Scanner) Scan() bool {
	if s.err != nil || s.offset >= len(s.input) {
		return false
	}
	token, ok := s.tokenizer.matchAt(s.input, s.offset)
	if !ok {
		s.err = &UntokenizableError{Offset: s.offset, Excerpt: excerpt(s.text[s.offset:])}
		return false
	}
	s.current = token
	s.offset = token.End
	return true
}

// Token returns the token produced by the last successful Scan.
func (s *Scanner) Token() Token {
	return s.current
}

// Err returns the error that stopped the scanner, if any.
func (s *Scanner) Err() error {
	return s.err
}

// Offset returns the byte offset where the next Scan will start.
func (s *Scanner) Offset() int {
	return s.offset
}

// Seek restarts scanning at offset and clears any error.
func (s *Scanner) Seek(offset int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.input) {
		offset = len(s.input)
	}
	s.offset = offset
	s.err = nil
}

// SkipRune consumes the single character at the current offset as a token
// outside the alphabet and clears any error. Callers use it to carry on
// after an untokenizable position.
func (s *Scanner) SkipRune() (Token, bool) {
	if s.offset >= len(s.input) {
		return Token{}, false
	}
	_, size := utf8.DecodeRune(s.input[s.offset:])
	token := Token{Text: s.text[s.offset : s.offset+size], Start: s.offset, End: s.offset + size}
	s.offset += size
	s.current = token
	s.err = nil
	return token, true
}

func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= excerptLen {
		return s
	}
	n := 0
	for i := range s {
		if n == excerptLen {
			return s[:i]
		}
		n++
	}
	return s
}
