// Package predicate implements the boolean-position expression language
// used by predicate document fields.
//
// An expression combines feature membership tests with boolean operators:
//
//	gender in [Female, Male] and age in [20..30] and not hobby in ['winning']
//
// Parse turns an expression string into a Node tree.
package predicate

import (
	"fmt"
	"strconv"
	"strings"
)

// A Node in a parsed predicate expression tree.
type Node interface {
	fmt.Stringer
	isNode()
}

// Conjunction is the "and" of two or more operands.
type Conjunction struct {
	Operands []Node
}

func (c *Conjunction) isNode() {}

func (c *Conjunction) String() string {
	parts := make([]string, len(c.Operands))
	for i, op := range c.Operands {
		if _, isOr := op.(*Disjunction); isOr {
			parts[i] = "(" + op.String() + ")"
		} else {
			parts[i] = op.String()
		}
	}
	return strings.Join(parts, " and ")
}

// Disjunction is the "or" of two or more operands.
type Disjunction struct {
	Operands []Node
}

func (d *Disjunction) isNode() {}

func (d *Disjunction) String() string {
	parts := make([]string, len(d.Operands))
	for i, op := range d.Operands {
		parts[i] = op.String()
	}
	return strings.Join(parts, " or ")
}

// Negation negates its operand.
type Negation struct {
	Operand Node
}

func (n *Negation) isNode() {}

func (n *Negation) String() string {
	switch n.Operand.(type) {
	case *Conjunction, *Disjunction:
		return "not (" + n.Operand.String() + ")"
	default:
		return "not " + n.Operand.String()
	}
}

// FeatureSet tests whether a feature's value is one of a set of labels:
// key in [a, b].
type FeatureSet struct {
	Key    string
	Values []string
}

func (f *FeatureSet) isNode() {}

func (f *FeatureSet) String() string {
	values := make([]string, len(f.Values))
	for i, v := range f.Values {
		values[i] = quoteLabel(v)
	}
	return fmt.Sprintf("%s in [%s]", quoteLabel(f.Key), strings.Join(values, ", "))
}

// FeatureRange tests whether a feature's numeric value falls in an integer
// range: key in [from..to].  A nil bound leaves that side open.
type FeatureRange struct {
	Key  string
	From *int64
	To   *int64
}

func (f *FeatureRange) isNode() {}

func (f *FeatureRange) String() string {
	var from, to string
	if f.From != nil {
		from = strconv.FormatInt(*f.From, 10)
	}
	if f.To != nil {
		to = strconv.FormatInt(*f.To, 10)
	}
	return fmt.Sprintf("%s in [%s..%s]", quoteLabel(f.Key), from, to)
}

// BooleanLiteral is the constant true or false predicate.
type BooleanLiteral bool

func (BooleanLiteral) isNode() {}

func (b BooleanLiteral) String() string {
	if b {
		return "true"
	}
	return "false"
}

func quoteLabel(s string) string {
	if isIdent(s) {
		return s
	}
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		ok := b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || i > 0 && b >= '0' && b <= '9'
		if !ok {
			return false
		}
	}
	return true
}
