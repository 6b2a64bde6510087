package naiad

import (
	"fmt"
	"regexp"
)

type TokenKind int

const (
	String TokenKind = iota
	Colon
	Semicolon
	Comma
	Dot
	Hyphen
	Whitespace
	OpenParen
	CloseParen
	Integer
)

var tokenKindNames = []string{
	"STRING",
	"COLON",
	"SEMICOLON",
	"COMMA",
	"DOT",
	"HYPHEN",
	"WHITESPACE",
	"OPEN_PAREN",
	"CLOSE_PAREN",
	"INTEGER",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return fmt.Sprintf("<unknown token kind %d>", int(k))
	}
	return tokenKindNames[k]
}

// Token is a lexeme of the command language. Two tokens are equal if
// both their kind and literal text are equal.
type Token struct {
	Kind  TokenKind
	Value string
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Kind, t.Value)
}

type tokenPattern struct {
	kind TokenKind
	rx   *regexp.Regexp
}

// grammar lists the lexical categories in matching priority. All
// patterns are anchored at the current cursor.
var grammar = []tokenPattern{
	{String, regexp.MustCompile(`^[\p{L}\p{M}]+`)},
	{Colon, regexp.MustCompile(`^:`)},
	{Semicolon, regexp.MustCompile(`^;`)},
	{Comma, regexp.MustCompile(`^,`)},
	{Dot, regexp.MustCompile(`^\.`)},
	{Hyphen, regexp.MustCompile(`^-`)},
	{Whitespace, regexp.MustCompile(`^[\s\p{Z}]+`)},
	{OpenParen, regexp.MustCompile(`^\(`)},
	{CloseParen, regexp.MustCompile(`^\)`)},
	{Integer, regexp.MustCompile(`^[0-9]+`)},
}
