package naiad

import (
	"fmt"
	"unicode/utf8"
)

// A Lexer splits command text into tokens.
type Lexer interface {
	Tokenize(text string) ([]Token, error)
}

// LexError is returned when no token kind matches at Offset.
type LexError struct {
	// Offset in bytes from the start of the text.
	Offset int
	// Column is the offset in runes.
	Column    int
	Remaining string
}

func (e *LexError) Error() string {
	remaining := e.Remaining
	if utf8.RuneCountInString(remaining) > 16 {
		remaining = string([]rune(remaining)[:16]) + "..."
	}
	return fmt.Sprintf("unexpected character at offset %d: %q", e.Column, remaining)
}

type RegexLexer struct{}

func NewLexer() RegexLexer {
	return RegexLexer{}
}

func (l RegexLexer) Tokenize(text string) ([]Token, error) {
	res := []Token{}
	offset := 0
	for offset < len(text) {
		kind, size := matchToken(text[offset:])
		if size == 0 {
			return nil, &LexError{
				Offset:    offset,
				Column:    utf8.RuneCountInString(text[:offset]),
				Remaining: text[offset:],
			}
		}
		if kind != Whitespace {
			res = append(res, Token{Kind: kind, Value: text[offset : offset+size]})
		}
		offset += size
	}
	return res, nil
}

func matchToken(text string) (TokenKind, int) {
	for _, p := range grammar {
		if loc := p.rx.FindStringIndex(text); loc != nil && loc[1] > 0 {
			return p.kind, loc[1]
		}
	}
	return Whitespace, 0
}
