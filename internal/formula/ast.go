package formula

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Bindings maps variable names to their values.
type Bindings map[string]decimal.Decimal

// Node is a node of a parsed formula.
type Node interface {
	Eval(Bindings) (decimal.Decimal, error)
	String() string
}

type numberNode struct {
	value decimal.Decimal
}

func (n numberNode) Eval(Bindings) (decimal.Decimal, error) {
	return n.value, nil
}

func (n numberNode) String() string {
	return n.value.String()
}

type variableNode struct {
	name string
}

func (n variableNode) Eval(b Bindings) (decimal.Decimal, error) {
	v, ok := b[n.name]
	if !ok {
		return decimal.Zero, &EvaluationError{Msg: fmt.Sprintf("variable %s is not bound", n.name)}
	}
	return v, nil
}

func (n variableNode) String() string {
	return n.name
}

type negateNode struct {
	operand Node
}

func (n negateNode) Eval(b Bindings) (decimal.Decimal, error) {
	v, err := n.operand.Eval(b)
	if err != nil {
		return decimal.Zero, err
	}
	return v.Neg(), nil
}

func (n negateNode) String() string {
	return fmt.Sprintf("(-%s)", n.operand)
}

type binaryNode struct {
	op          byte
	left, right Node
}

func (n binaryNode) Eval(b Bindings) (decimal.Decimal, error) {
	left, err := n.left.Eval(b)
	if err != nil {
		return decimal.Zero, err
	}

	right, err := n.right.Eval(b)
	if err != nil {
		return decimal.Zero, err
	}

	switch n.op {
	case '+':
		return left.Add(right), nil
	case '-':
		return left.Sub(right), nil
	case '*':
		return left.Mul(right), nil
	case '/':
		if right.IsZero() {
			return decimal.Zero, &EvaluationError{Msg: fmt.Sprintf("division by zero in %s", n)}
		}
		return left.Div(right), nil
	}

	return decimal.Zero, &EvaluationError{Msg: fmt.Sprintf("unknown operator %q", n.op)}
}

func (n binaryNode) String() string {
	return fmt.Sprintf("(%s %c %s)", n.left, n.op, n.right)
}
