package document

import (
	"github.com/docstream-io/docstream/predicate"
)

// A FieldValue is a decoded, typed value of a document field.  It is a
// closed set of variants; the concrete variant always matches the field's
// declared DataType (the decoders guarantee this, a mismatch is a decode
// error, never a silent coercion).
type FieldValue interface {
	isFieldValue()
}

type StringValue string

func (StringValue) isFieldValue() {}

type IntValue int32

func (IntValue) isFieldValue() {}

type LongValue int64

func (LongValue) isFieldValue() {}

type ByteValue int8

func (ByteValue) isFieldValue() {}

type FloatValue float32

func (FloatValue) isFieldValue() {}

type DoubleValue float64

func (DoubleValue) isFieldValue() {}

type BoolValue bool

func (BoolValue) isFieldValue() {}

// RawValue is a decoded byte sequence (fed as a base64 string).
type RawValue []byte

func (RawValue) isFieldValue() {}

// StructField is one member of a struct value.
type StructField struct {
	Name  string
	Value FieldValue
}

// StructValue is an ordered field name to value mapping.  Members absent
// from the input are simply absent, never defaulted.
type StructValue struct {
	fields []StructField
	byName map[string]int
}

func NewStructValue() *StructValue {
	return &StructValue{byName: map[string]int{}}
}

func (s *StructValue) Set(name string, value FieldValue) *StructValue {
	if i, ok := s.byName[name]; ok {
		s.fields[i].Value = value
		return s
	}
	s.byName[name] = len(s.fields)
	s.fields = append(s.fields, StructField{Name: name, Value: value})
	return s
}

func (s *StructValue) Field(name string) (FieldValue, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.fields[i].Value, true
}

func (s *StructValue) Fields() []StructField { return s.fields }
func (s *StructValue) Len() int              { return len(s.fields) }

func (*StructValue) isFieldValue() {}

// ArrayValue is an ordered sequence of element values.
type ArrayValue []FieldValue

func (ArrayValue) isFieldValue() {}

// MapValue maps keys to values.  Keys must be comparable variants
// (primitives); a duplicate key overwrites the earlier entry.
type MapValue map[FieldValue]FieldValue

func (MapValue) isFieldValue() {}

// WeightedSetValue maps element values to integer weights, with unique
// elements.
type WeightedSetValue map[FieldValue]int32

func (WeightedSetValue) isFieldValue() {}

// TensorValue wraps a tensor.  Tensor is never nil; an empty tensor field
// is simply absent from the document.
type TensorValue struct {
	Tensor *Tensor
}

func (TensorValue) isFieldValue() {}

// PredicateValue holds a parsed boolean-position expression together with
// its source text.
type PredicateValue struct {
	Expr   predicate.Node
	Source string
}

func (PredicateValue) isFieldValue() {}
