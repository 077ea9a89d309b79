package predicate

import (
	"fmt"
	"strconv"

	"github.com/arnodel/grammar"
)

// Parse parses a predicate expression string into its Node tree.
func Parse(s string) (Node, error) {
	stream, err := tokenise(s)
	if err != nil {
		return nil, fmt.Errorf("invalid predicate: %v", err)
	}
	var e orExpr
	if parseErr := grammar.Parse(&e, stream); parseErr != nil {
		return nil, fmt.Errorf("invalid predicate: %v", parseErr)
	}
	if stream.Next() != grammar.EOF {
		return nil, fmt.Errorf("invalid predicate %q: unexpected trailing input", s)
	}
	return e.compile()
}

type pToken = grammar.SimpleToken

type orExpr struct {
	grammar.Seq
	First andExpr
	Rest  []orRest
}

func (e *orExpr) compile() (Node, error) {
	first, err := e.First.compile()
	if err != nil {
		return nil, err
	}
	if len(e.Rest) == 0 {
		return first, nil
	}
	operands := make([]Node, len(e.Rest)+1)
	operands[0] = first
	for i, r := range e.Rest {
		operand, err := r.Operand.compile()
		if err != nil {
			return nil, err
		}
		operands[i+1] = operand
	}
	return &Disjunction{Operands: operands}, nil
}

type orRest struct {
	grammar.Seq
	Or      pToken `tok:"keyword,or"`
	Operand andExpr
}

type andExpr struct {
	grammar.Seq
	First primaryExpr
	Rest  []andRest
}

func (e *andExpr) compile() (Node, error) {
	first, err := e.First.compile()
	if err != nil {
		return nil, err
	}
	if len(e.Rest) == 0 {
		return first, nil
	}
	operands := make([]Node, len(e.Rest)+1)
	operands[0] = first
	for i, r := range e.Rest {
		operand, err := r.Operand.compile()
		if err != nil {
			return nil, err
		}
		operands[i+1] = operand
	}
	return &Conjunction{Operands: operands}, nil
}

type andRest struct {
	grammar.Seq
	And     pToken `tok:"keyword,and"`
	Operand primaryExpr
}

type primaryExpr struct {
	grammar.Seq
	Not  *pToken `tok:"keyword,not"`
	Base baseExpr
}

func (e *primaryExpr) compile() (Node, error) {
	inner, err := e.Base.compile()
	if err != nil {
		return nil, err
	}
	if e.Not != nil {
		return &Negation{Operand: inner}, nil
	}
	return inner, nil
}

type baseExpr struct {
	grammar.OneOf
	True  *pToken `tok:"keyword,true"`
	False *pToken `tok:"keyword,false"`
	*ParenExpr
	*LeafExpr
}

func (e *baseExpr) compile() (Node, error) {
	switch {
	case e.True != nil:
		return BooleanLiteral(true), nil
	case e.False != nil:
		return BooleanLiteral(false), nil
	case e.ParenExpr != nil:
		return e.ParenExpr.Expr.compile()
	case e.LeafExpr != nil:
		return e.LeafExpr.compile()
	default:
		panic("invalid baseExpr")
	}
}

type ParenExpr struct {
	grammar.Seq
	Open  pToken `tok:"op,("`
	Expr  orExpr
	Close pToken `tok:"op,)"`
}

type LeafExpr struct {
	grammar.Seq
	Key   labelToken
	In    pToken `tok:"keyword,in"`
	Open  pToken `tok:"op,["`
	Body  leafBody
	Close pToken `tok:"op,]"`
}

func (e *LeafExpr) compile() (Node, error) {
	key, err := e.Key.value()
	if err != nil {
		return nil, err
	}
	return e.Body.compile(key)
}

type labelToken struct {
	grammar.OneOf
	Ident  *pToken `tok:"ident"`
	Quoted *pToken `tok:"string"`
}

func (t *labelToken) value() (string, error) {
	switch {
	case t.Ident != nil:
		return t.Ident.TokValue, nil
	case t.Quoted != nil:
		return unquote(t.Quoted.TokValue)
	default:
		panic("invalid labelToken")
	}
}

type leafBody struct {
	grammar.OneOf
	*RangeBody
	*SetBody
}

func (b *leafBody) compile(key string) (Node, error) {
	switch {
	case b.RangeBody != nil:
		return b.RangeBody.compile(key)
	case b.SetBody != nil:
		return b.SetBody.compile(key)
	default:
		panic("invalid leafBody")
	}
}

type RangeBody struct {
	grammar.Seq
	From *pToken `tok:"int"`
	Dots pToken  `tok:"op,.."`
	To   *pToken `tok:"int"`
}

func (b *RangeBody) compile(key string) (Node, error) {
	r := &FeatureRange{Key: key}
	if b.From != nil {
		from, err := strconv.ParseInt(b.From.TokValue, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range bound %q: %v", b.From.TokValue, err)
		}
		r.From = &from
	}
	if b.To != nil {
		to, err := strconv.ParseInt(b.To.TokValue, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range bound %q: %v", b.To.TokValue, err)
		}
		r.To = &to
	}
	return r, nil
}

type SetBody struct {
	grammar.Seq
	First setValue
	Rest  []setItem
}

func (b *SetBody) compile(key string) (Node, error) {
	values := make([]string, 0, len(b.Rest)+1)
	v, err := b.First.value()
	if err != nil {
		return nil, err
	}
	values = append(values, v)
	for _, item := range b.Rest {
		v, err := item.Value.value()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return &FeatureSet{Key: key, Values: values}, nil
}

type setItem struct {
	grammar.Seq
	Comma pToken `tok:"comma"`
	Value setValue
}

type setValue struct {
	grammar.OneOf
	Ident  *pToken `tok:"ident"`
	Quoted *pToken `tok:"string"`
	Int    *pToken `tok:"int"`
}

func (t *setValue) value() (string, error) {
	switch {
	case t.Ident != nil:
		return t.Ident.TokValue, nil
	case t.Quoted != nil:
		return unquote(t.Quoted.TokValue)
	case t.Int != nil:
		return t.Int.TokValue, nil
	default:
		panic("invalid setValue")
	}
}

func unquote(s string) (string, error) {
	if len(s) < 2 {
		return "", fmt.Errorf("invalid quoted label %q", s)
	}
	body := s[1 : len(s)-1]
	var sb []byte
	for i := 0; i < len(body); i++ {
		b := body[i]
		if b != '\\' {
			sb = append(sb, b)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("invalid escape in label %q", s)
		}
		switch body[i] {
		case '\\', '\'', '"':
			sb = append(sb, body[i])
		case 'n':
			sb = append(sb, '\n')
		case 't':
			sb = append(sb, '\t')
		default:
			return "", fmt.Errorf("invalid escape '\\%c' in label %q", body[i], s)
		}
	}
	return string(sb), nil
}
