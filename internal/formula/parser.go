package formula

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// parser is a recursive descent parser for the grammar
//
//	expression = term { ("+" | "-") term }
//	term       = unary { ("*" | "/") unary }
//	unary      = ("+" | "-") unary | primary
//	primary    = number | identifier | "(" expression ")"
type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) expression() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}

	for {
		t := p.peek()
		if t.kind != tokenPlus && t.kind != tokenMinus {
			return left, nil
		}
		p.next()

		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: t.text[0], left: left, right: right}
	}
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}

	for {
		t := p.peek()
		if t.kind != tokenStar && t.kind != tokenSlash {
			return left, nil
		}
		p.next()

		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: t.text[0], left: left, right: right}
	}
}

func (p *parser) unary() (Node, error) {
	switch p.peek().kind {
	case tokenMinus:
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negateNode{operand: operand}, nil
	case tokenPlus:
		p.next()
		return p.unary()
	}

	return p.primary()
}

func (p *parser) primary() (Node, error) {
	t := p.next()

	switch t.kind {
	case tokenNumber:
		value, err := decimal.NewFromString(t.text)
		if err != nil {
			return nil, &SyntaxError{Position: t.pos, Msg: fmt.Sprintf("malformed number %q", t.text)}
		}
		return numberNode{value: value}, nil

	case tokenIdent:
		if !IsVariable(t.text) {
			return nil, &SyntaxError{Position: t.pos, Msg: fmt.Sprintf("unknown identifier %q", t.text)}
		}
		return variableNode{name: t.text}, nil

	case tokenLParen:
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}

		closing := p.next()
		if closing.kind != tokenRParen {
			return nil, &SyntaxError{Position: closing.pos, Msg: fmt.Sprintf("unbalanced parentheses, expected ')' but found %s", closing.kind)}
		}
		return inner, nil

	case tokenRParen:
		return nil, &SyntaxError{Position: t.pos, Msg: "unbalanced parentheses, unexpected ')'"}
	}

	return nil, &SyntaxError{Position: t.pos, Msg: fmt.Sprintf("unexpected %s", t.kind)}
}
