package toml

import (
	"fmt"
	"strconv"
)

// Parser parses a flat sequence of `key = value` lines into a
// map[string]any. There is no concept of a table, array, inline table,
// or dotted key — config.Parse's tunable.Set fields are all top-level
// scalars, and nothing else has ever called this package.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
	root      map[string]any
}

func NewParser(input []byte) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
		root:  make(map[string]any),
	}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()

	for p.peekToken.Type == TokenComment {
		p.peekToken = p.lexer.NextToken()
	}
}

// Parse consumes every line and returns the resulting flat map.
func (p *Parser) Parse() (map[string]any, error) {
	for p.curToken.Type != TokenEOF {
		if p.curToken.Type == TokenNewline {
			p.nextToken()
			continue
		}

		if err := p.parseKeyValuePair(); err != nil {
			return nil, err
		}
	}
	return p.root, nil
}

func (p *Parser) parseKeyValuePair() error {
	if p.curToken.Type != TokenIdent && p.curToken.Type != TokenString {
		if p.curToken.Type == TokenError {
			return fmt.Errorf("lexing error line %d: %s", p.curToken.Line, p.curToken.Literal)
		}
		return fmt.Errorf("expected key at line %d, got %s", p.curToken.Line, p.curToken.String())
	}
	key := p.curToken.Literal
	p.nextToken()

	if p.curToken.Type != TokenEqual {
		return fmt.Errorf("expected '=' after key %q at line %d, got %s", key, p.curToken.Line, p.curToken.String())
	}
	p.nextToken() // consume =

	val, err := p.parseValue()
	if err != nil {
		return err
	}

	if _, exists := p.root[key]; exists {
		return fmt.Errorf("duplicate key %q at line %d", key, p.curToken.Line)
	}
	p.root[key] = val
	return nil
}

func (p *Parser) parseValue() (any, error) {
	switch p.curToken.Type {
	case TokenString:
		val := p.curToken.Literal
		p.nextToken()
		return val, nil
	case TokenInteger:
		val, _ := strconv.ParseInt(p.curToken.Literal, 10, 64)
		p.nextToken()
		return int(val), nil
	case TokenFloat:
		val, _ := strconv.ParseFloat(p.curToken.Literal, 64)
		p.nextToken()
		return val, nil
	case TokenBool:
		val := p.curToken.Literal == "true"
		p.nextToken()
		return val, nil
	}
	return nil, fmt.Errorf("unexpected value token %s at line %d", p.curToken.String(), p.curToken.Line)
}
