// Package formula parses and evaluates the arithmetic expressions of
// formula allocation rules.
//
// Formulas combine numeric literals and a fixed vocabulary of variables with
// + - * / and parentheses. Evaluation is pure and uses decimal arithmetic.
package formula

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Vocabulary is the set of variables a formula can reference.
var Vocabulary = []string{
	"amount",
	"timesheet.hours",
	"total_hours",
	"client.revenue",
	"total_revenue",
	"employee.cost",
}

// IsVariable reports if the name is part of the vocabulary.
func IsVariable(name string) bool {
	return slices.Contains(Vocabulary, name)
}

// Parse parses a formula into its syntax tree.
func Parse(formula string) (Node, error) {
	if strings.TrimSpace(formula) == "" {
		return nil, &SyntaxError{Position: 0, Msg: "formula is empty"}
	}

	tokens, err := lex(formula)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	node, err := p.expression()
	if err != nil {
		return nil, err
	}

	if t := p.peek(); t.kind != tokenEOF {
		if t.kind == tokenRParen {
			return nil, &SyntaxError{Position: t.pos, Msg: "unbalanced parentheses, unexpected ')'"}
		}
		return nil, &SyntaxError{Position: t.pos, Msg: "unexpected " + t.kind.String() + " " + t.text}
	}

	return node, nil
}

// Validate checks that a formula is well formed without evaluating it.
func Validate(formula string) error {
	_, err := Parse(formula)
	return err
}

// Evaluate parses and evaluates a formula with the given bindings.
func Evaluate(formula string, bindings Bindings) (decimal.Decimal, error) {
	node, err := Parse(formula)
	if err != nil {
		return decimal.Zero, err
	}

	return node.Eval(bindings)
}

// Variables returns the distinct variables referenced by a formula in order
// of first occurrence.
func Variables(formula string) ([]string, error) {
	node, err := Parse(formula)
	if err != nil {
		return nil, err
	}

	var names []string
	walk(node, func(n Node) {
		if v, ok := n.(variableNode); ok && !slices.Contains(names, v.name) {
			names = append(names, v.name)
		}
	})

	return names, nil
}

func walk(n Node, fn func(Node)) {
	fn(n)

	switch n := n.(type) {
	case negateNode:
		walk(n.operand, fn)
	case binaryNode:
		walk(n.left, fn)
		walk(n.right, fn)
	}
}
