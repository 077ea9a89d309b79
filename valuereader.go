package docstream

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/docstream-io/docstream/document"
	"github.com/docstream-io/docstream/predicate"
	"github.com/docstream-io/docstream/token"
)

// readFieldValue decodes one JSON value against the declared field type,
// dispatching on the concrete type descriptor.
func readFieldValue(r *tokenReader, typ document.DataType) (document.FieldValue, error) {
	switch t := typ.(type) {
	case *document.PrimitiveType:
		return readPrimitive(r, t)
	case *document.RawType:
		return readRaw(r)
	case *document.PositionType:
		return readPosition(r)
	case *document.PredicateType:
		return readPredicate(r)
	case *document.StructType:
		return readStruct(r, t)
	case *document.ArrayType:
		return readArray(r, t)
	case *document.MapType:
		return readMap(r, t)
	case *document.WeightedSetType:
		return readWeightedSet(r, t)
	case *document.TensorType:
		return readTensorValue(r, t)
	default:
		return nil, fmt.Errorf("%w: unhandled field type '%s'", ErrTypeMismatch, typ.Name())
	}
}

func readPrimitive(r *tokenReader, typ *document.PrimitiveType) (document.FieldValue, error) {
	s, err := r.scalar()
	if err != nil {
		return nil, err
	}
	return primitiveFromScalar(typ, s)
}

func primitiveFromScalar(typ *document.PrimitiveType, s *token.Scalar) (document.FieldValue, error) {
	if s.Type == token.Null {
		return nil, fmt.Errorf("%w: unexpected null for field of type '%s'", ErrTypeMismatch, typ.Name())
	}
	switch typ.Kind {
	case document.KindString:
		if s.Type != token.String {
			return nil, fmt.Errorf("%w: expected a string, got %s", ErrTypeMismatch, describe(s))
		}
		return document.StringValue(s.Text()), nil
	case document.KindBool:
		switch s.Type {
		case token.Boolean:
			return document.BoolValue(s.Bool()), nil
		case token.String:
			b, err := strconv.ParseBool(s.Text())
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
			}
			return document.BoolValue(b), nil
		default:
			return nil, fmt.Errorf("%w: expected a boolean, got %s", ErrTypeMismatch, describe(s))
		}
	default:
		return numberFromText(typ, numericText(s))
	}
}

// numericText returns the literal to parse a numeric field from.  Number
// scalars use the raw bytes; String scalars the decoded text, exactly as
// written.
func numericText(s *token.Scalar) string {
	if s.Type == token.String {
		return s.Text()
	}
	return string(s.Bytes)
}

func numberFromText(typ *document.PrimitiveType, text string) (document.FieldValue, error) {
	switch typ.Kind {
	case document.KindInt:
		n, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
		}
		return document.IntValue(int32(n)), nil
	case document.KindLong:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
		}
		return document.LongValue(n), nil
	case document.KindByte:
		n, err := strconv.ParseInt(text, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
		}
		return document.ByteValue(int8(n)), nil
	case document.KindFloat:
		x, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
		}
		return document.FloatValue(float32(x)), nil
	case document.KindDouble:
		x, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
		}
		return document.DoubleValue(x), nil
	default:
		return nil, fmt.Errorf("%w: field of type '%s' is not numeric", ErrTypeMismatch, typ.Name())
	}
}

func readRaw(r *tokenReader) (document.FieldValue, error) {
	s, err := r.scalar()
	if err != nil {
		return nil, err
	}
	if s.Type != token.String {
		return nil, fmt.Errorf("%w: expected a base64 string, got %s", ErrTypeMismatch, describe(s))
	}
	raw, err := base64.StdEncoding.DecodeString(s.Text())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return document.RawValue(raw), nil
}

// readPosition decodes a "<NS><lat>;<EW><lon>" string such as
// "N63.429722;E10.393333" into a struct with x/y members in microdegrees.
// The hemisphere letter identifies the axis, so the two components may
// appear in either order.
func readPosition(r *tokenReader) (document.FieldValue, error) {
	s, err := r.scalar()
	if err != nil {
		return nil, err
	}
	if s.Type != token.String {
		return nil, fmt.Errorf("%w: expected a position string, got %s", ErrTypeMismatch, describe(s))
	}
	text := s.Text()
	parts := strings.Split(text, ";")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: expected a position of the form '<NS><lat>;<EW><lon>', got %q", ErrTypeMismatch, text)
	}
	var x, y *int32
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: empty component in position %q", ErrTypeMismatch, text)
		}
		micro, isLat, err := parsePositionComponent(part)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid position %q: %v", ErrTypeMismatch, text, err)
		}
		if isLat {
			if y != nil {
				return nil, fmt.Errorf("%w: position %q has two latitude components", ErrTypeMismatch, text)
			}
			y = &micro
		} else {
			if x != nil {
				return nil, fmt.Errorf("%w: position %q has two longitude components", ErrTypeMismatch, text)
			}
			x = &micro
		}
	}
	if x == nil || y == nil {
		return nil, fmt.Errorf("%w: position %q must have one latitude and one longitude component", ErrTypeMismatch, text)
	}
	pos := document.NewStructValue()
	pos.Set(document.PositionX, document.IntValue(*x))
	pos.Set(document.PositionY, document.IntValue(*y))
	return pos, nil
}

func parsePositionComponent(s string) (micro int32, isLat bool, err error) {
	var negative bool
	switch s[0] {
	case 'N':
		isLat = true
	case 'S':
		isLat = true
		negative = true
	case 'E':
	case 'W':
		negative = true
	default:
		return 0, false, fmt.Errorf("unknown hemisphere letter %q", s[0])
	}
	degrees, err := strconv.ParseFloat(s[1:], 64)
	if err != nil {
		return 0, false, err
	}
	scaled := math.Round(degrees * 1e6)
	if negative {
		scaled = -scaled
	}
	if scaled > math.MaxInt32 || scaled < math.MinInt32 {
		return 0, false, fmt.Errorf("coordinate %q out of range", s)
	}
	return int32(scaled), isLat, nil
}

func readPredicate(r *tokenReader) (document.FieldValue, error) {
	s, err := r.scalar()
	if err != nil {
		return nil, err
	}
	if s.Type != token.String {
		return nil, fmt.Errorf("%w: expected a predicate string, got %s", ErrTypeMismatch, describe(s))
	}
	source := s.Text()
	expr, err := predicate.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return document.PredicateValue{Expr: expr, Source: source}, nil
}

func readStruct(r *tokenReader, typ *document.StructType) (document.FieldValue, error) {
	if err := r.beginObject(); err != nil {
		return nil, err
	}
	value := document.NewStructValue()
	for {
		name, ok, err := r.nextKey()
		if err != nil {
			return nil, err
		}
		if !ok {
			return value, nil
		}
		member, ok := typ.Field(name)
		if !ok {
			return nil, fmt.Errorf("%w: could not get field '%s' in the structure of type '%s'",
				ErrUnknownField, name, typ.Name())
		}
		memberValue, err := readFieldValue(r, member.Type)
		if err != nil {
			return nil, err
		}
		value.Set(name, memberValue)
	}
}

func readArray(r *tokenReader, typ *document.ArrayType) (document.FieldValue, error) {
	if err := r.beginArray(); err != nil {
		return nil, err
	}
	value := document.ArrayValue{}
	for !r.endOfArray() {
		elem, err := readFieldValue(r, typ.Element)
		if err != nil {
			return nil, err
		}
		value = append(value, elem)
	}
	return value, nil
}

// readMap accepts both map encodings: an object whose keys are the map keys
// (current format) and an array of {"key": K, "value": V} entries (legacy
// format).  A duplicate key overwrites the earlier entry.
func readMap(r *tokenReader, typ *document.MapType) (document.FieldValue, error) {
	value := document.MapValue{}
	switch r.peek().(type) {
	case *token.BeginObject:
		r.next()
		for {
			name, ok, err := r.nextKey()
			if err != nil {
				return nil, err
			}
			if !ok {
				return value, nil
			}
			key, err := keyFromText(typ.Key, name)
			if err != nil {
				return nil, err
			}
			entryValue, err := readFieldValue(r, typ.Value)
			if err != nil {
				return nil, err
			}
			value[key] = entryValue
		}
	case *token.BeginArray:
		r.next()
		for !r.endOfArray() {
			key, entryValue, err := readMapEntry(r, typ)
			if err != nil {
				return nil, err
			}
			value[key] = entryValue
		}
		return value, nil
	default:
		return nil, fmt.Errorf("%w: expected an object or an array for field of type '%s', got %s",
			ErrTypeMismatch, typ.Name(), describe(r.peek()))
	}
}

func readMapEntry(r *tokenReader, typ *document.MapType) (document.FieldValue, document.FieldValue, error) {
	if err := r.beginObject(); err != nil {
		return nil, nil, err
	}
	var key, entryValue document.FieldValue
	for {
		name, ok, err := r.nextKey()
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			break
		}
		switch name {
		case "key":
			key, err = readMapEntryKey(r, typ.Key)
		case "value":
			entryValue, err = readFieldValue(r, typ.Value)
		default:
			err = fmt.Errorf("%w: unexpected key '%s' in map entry", ErrStructure, name)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	if key == nil {
		return nil, nil, fmt.Errorf("%w: map entry is missing a 'key'", ErrStructure)
	}
	if entryValue == nil {
		return nil, nil, fmt.Errorf("%w: map entry is missing a 'value'", ErrStructure)
	}
	return key, entryValue, nil
}

func readWeightedSet(r *tokenReader, typ *document.WeightedSetType) (document.FieldValue, error) {
	if err := r.beginObject(); err != nil {
		return nil, err
	}
	value := document.WeightedSetValue{}
	for {
		name, ok, err := r.nextKey()
		if err != nil {
			return nil, err
		}
		if !ok {
			return value, nil
		}
		elem, err := keyFromText(typ.Element, name)
		if err != nil {
			return nil, err
		}
		s, err := r.scalar()
		if err != nil {
			return nil, err
		}
		weight, err := weightFromScalar(s)
		if err != nil {
			return nil, err
		}
		value[elem] = weight
	}
}

func weightFromScalar(s *token.Scalar) (int32, error) {
	if s.Type != token.Number && s.Type != token.String {
		return 0, fmt.Errorf("%w: expected an integer weight, got %s", ErrTypeMismatch, describe(s))
	}
	n, err := strconv.ParseInt(numericText(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return int32(n), nil
}

// readMapEntryKey decodes the 'key' member of a legacy map entry.  As with
// the object encoding, only primitive key types are allowed.
func readMapEntryKey(r *tokenReader, typ document.DataType) (document.FieldValue, error) {
	prim, ok := typ.(*document.PrimitiveType)
	if !ok {
		return nil, fmt.Errorf("%w: type '%s' cannot be used as a map key", ErrTypeMismatch, typ.Name())
	}
	return readPrimitive(r, prim)
}

// keyFromText decodes a map key or weighted set element written as a JSON
// object key against its declared type, which must be primitive.
func keyFromText(typ document.DataType, text string) (document.FieldValue, error) {
	prim, ok := typ.(*document.PrimitiveType)
	if !ok {
		return nil, fmt.Errorf("%w: type '%s' cannot be used as a JSON object key", ErrTypeMismatch, typ.Name())
	}
	switch prim.Kind {
	case document.KindString:
		return document.StringValue(text), nil
	case document.KindBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
		}
		return document.BoolValue(b), nil
	default:
		return numberFromText(prim, text)
	}
}
