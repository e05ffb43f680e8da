// Package toml is a reflection-based decoder for the flat key = value
// subset of TOML that config.Parse needs to populate a tunable.Set:
// bare keys, one assignment per line, numeric/string/bool scalars. There
// is exactly one caller (config.Parse) and it never nests a table, so
// the table, array, array-of-tables, inline-table, and dotted-key
// grammar a general-purpose TOML decoder supports has no reason to
// exist here and has been cut.
package toml

import (
	"fmt"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	TokenError TokenType = iota
	TokenEOF
	TokenComment

	// Literals
	TokenIdent   // bare key
	TokenString  // "quoted"
	TokenInteger // 123
	TokenFloat   // 123.45
	TokenBool    // true/false

	// Operators
	TokenEqual   // =
	TokenNewline // \n
)

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Col     int
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return fmt.Sprintf("Error(%s)", t.Literal)
	case TokenNewline:
		return "Newline"
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%q...", t.Literal[:20])
	}
	return fmt.Sprintf("%q", t.Literal)
}
