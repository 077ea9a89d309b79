package token

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// A Token is one item in the stream encoding a JSON value.  The JSON value
//
//	{"put": "id:ns:doc::1", "fields": {"x": 1}}
//
// is represented by the stream (in pseudocode):
//
//	{              -> BeginObject
//	"put":         -> Scalar("put", String, key)
//	"id:ns:doc::1" -> Scalar("id:ns:doc::1", String)
//	"fields":      -> Scalar("fields", String, key)
//	{              -> BeginObject
//	"x":           -> Scalar("x", String, key)
//	1              -> Scalar(1, Number)
//	}              -> EndObject
//	}              -> EndObject
//
// A complete value is a bounded token span, so any value can be captured
// into a []Token and replayed later against a schema that was not known
// when the bytes were first read.
type Token interface {
	fmt.Stringer
}

// BeginObject marks the start of a JSON object ('{').
type BeginObject struct{}

func (b *BeginObject) String() string { return "BeginObject" }

// EndObject marks the end of a JSON object ('}').
type EndObject struct{}

func (e *EndObject) String() string { return "EndObject" }

// BeginArray marks the start of a JSON array ('[').
type BeginArray struct{}

func (b *BeginArray) String() string { return "BeginArray" }

// EndArray marks the end of a JSON array (']').
type EndArray struct{}

func (e *EndArray) String() string { return "EndArray" }

var (
	_ Token = &BeginObject{}
	_ Token = &EndObject{}
	_ Token = &BeginArray{}
	_ Token = &EndArray{}
)

// ScalarType is the type of a JSON scalar.
type ScalarType uint8

const (
	Null ScalarType = iota
	Boolean
	Number
	String
)

func (t ScalarType) String() string {
	switch t {
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	default:
		return "invalid"
	}
}

// Scalar represents a JSON string, number, boolean or null.  Bytes holds the
// literal representation as found in the input, e.g. []byte(`"foo"`) for the
// string "foo", []byte("12.5") for the number 12.5.  Object keys are String
// scalars with Key set.
type Scalar struct {
	Bytes []byte
	Type  ScalarType
	Key   bool
}

func (s *Scalar) String() string {
	return fmt.Sprintf("Scalar(%s)", s.Bytes)
}

func (s *Scalar) IsNull() bool {
	return s.Type == Null
}

// Text returns the decoded string value.  It panics if the scalar is not a
// String, so callers must check Type first.
func (s *Scalar) Text() string {
	if s.Type != String {
		panic("token: Text called on non-string scalar")
	}
	if !bytes.ContainsRune(s.Bytes, '\\') {
		return string(s.Bytes[1 : len(s.Bytes)-1])
	}
	return parseLiteral(s.Bytes).(string)
}

// EqualsText reports whether the scalar is the given string.
func (s *Scalar) EqualsText(str string) bool {
	return s.Type == String && s.Text() == str
}

// Bool returns the boolean value.  Panics on non-boolean scalars.
func (s *Scalar) Bool() bool {
	if s.Type != Boolean {
		panic("token: Bool called on non-boolean scalar")
	}
	return s.Bytes[0] == 't'
}

// Int64 parses the scalar as a 64 bit integer.  Number scalars must have no
// fraction or exponent part; String scalars are parsed exactly as written.
func (s *Scalar) Int64() (int64, error) {
	switch s.Type {
	case Number, String:
		return strconv.ParseInt(s.literalText(), 10, 64)
	default:
		return 0, fmt.Errorf("expected a number, got %s", s.Type)
	}
}

// Float64 parses the scalar as a 64 bit float.  String scalars are parsed
// exactly as written.
func (s *Scalar) Float64() (float64, error) {
	switch s.Type {
	case Number, String:
		return strconv.ParseFloat(s.literalText(), 64)
	default:
		return 0, fmt.Errorf("expected a number, got %s", s.Type)
	}
}

func (s *Scalar) literalText() string {
	if s.Type == String {
		return s.Text()
	}
	return string(s.Bytes)
}

func parseLiteral(b []byte) json.Token {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		panic(err)
	}
	return tok
}

// TextScalar builds a String scalar from a Go string.
func TextScalar(s string) *Scalar {
	b, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	return &Scalar{Bytes: b, Type: String}
}

// KeyScalar builds an object key scalar from a Go string.
func KeyScalar(s string) *Scalar {
	k := TextScalar(s)
	k.Key = true
	return k
}

// NumberScalar builds a Number scalar from a float64.
func NumberScalar(x float64) *Scalar {
	return &Scalar{Bytes: []byte(strconv.FormatFloat(x, 'g', -1, 64)), Type: Number}
}

// IntScalar builds a Number scalar from an int64.
func IntScalar(n int64) *Scalar {
	return &Scalar{Bytes: []byte(strconv.FormatInt(n, 10)), Type: Number}
}

// BoolScalar builds a Boolean scalar.
func BoolScalar(b bool) *Scalar {
	if b {
		return &Scalar{Bytes: []byte("true"), Type: Boolean}
	}
	return &Scalar{Bytes: []byte("false"), Type: Boolean}
}

// NullScalar builds a Null scalar.
func NullScalar() *Scalar {
	return &Scalar{Bytes: []byte("null"), Type: Null}
}
