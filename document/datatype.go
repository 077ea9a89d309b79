// Package document holds the data model for document feed operations: ids,
// field type descriptors, typed field values, value updates and the
// operations themselves.  Values are built by the decoders in the parent
// package and are not mutated after they have been handed to a caller.
package document

import "fmt"

// A DataType describes the declared type of a document field.  It is a
// closed set: the decoders dispatch on the concrete type with an exhaustive
// type switch.
type DataType interface {
	Name() string
	isDataType()
}

// PrimitiveKind is the kind of a primitive field type.
type PrimitiveKind uint8

const (
	KindString PrimitiveKind = iota
	KindInt
	KindLong
	KindByte
	KindFloat
	KindDouble
	KindBool
)

func (k PrimitiveKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindByte:
		return "byte"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

type PrimitiveType struct {
	Kind PrimitiveKind
}

func (t *PrimitiveType) Name() string { return t.Kind.String() }
func (t *PrimitiveType) isDataType()  {}

var (
	TypeString = &PrimitiveType{KindString}
	TypeInt    = &PrimitiveType{KindInt}
	TypeLong   = &PrimitiveType{KindLong}
	TypeByte   = &PrimitiveType{KindByte}
	TypeFloat  = &PrimitiveType{KindFloat}
	TypeDouble = &PrimitiveType{KindDouble}
	TypeBool   = &PrimitiveType{KindBool}
)

// RawType is the type of raw byte sequence fields, fed as base64 strings.
type RawType struct{}

func (t *RawType) Name() string { return "raw" }
func (t *RawType) isDataType()  {}

var TypeRaw = &RawType{}

// PredicateType is the type of predicate expression fields.
type PredicateType struct{}

func (t *PredicateType) Name() string { return "predicate" }
func (t *PredicateType) isDataType()  {}

var TypePredicate = &PredicateType{}

// PositionType is the type of geo-position fields.  A position decodes into
// a struct value with integer x (longitude) and y (latitude) members in
// microdegrees.
type PositionType struct{}

func (t *PositionType) Name() string { return "position" }
func (t *PositionType) isDataType()  {}

var TypePosition = &PositionType{}

// Names of the members of a decoded position struct.
const (
	PositionX = "x"
	PositionY = "y"
)

type ArrayType struct {
	Element DataType
}

func ArrayOf(elem DataType) *ArrayType { return &ArrayType{Element: elem} }

func (t *ArrayType) Name() string { return fmt.Sprintf("array<%s>", t.Element.Name()) }
func (t *ArrayType) isDataType()  {}

type MapType struct {
	Key   DataType
	Value DataType
}

func MapOf(key, value DataType) *MapType { return &MapType{Key: key, Value: value} }

func (t *MapType) Name() string {
	return fmt.Sprintf("map<%s,%s>", t.Key.Name(), t.Value.Name())
}
func (t *MapType) isDataType() {}

type WeightedSetType struct {
	Element DataType
}

func WeightedSetOf(elem DataType) *WeightedSetType { return &WeightedSetType{Element: elem} }

func (t *WeightedSetType) Name() string {
	return fmt.Sprintf("weightedset<%s>", t.Element.Name())
}
func (t *WeightedSetType) isDataType() {}

// A Field is a named member of a struct or document type.
type Field struct {
	Name string
	Type DataType
}

// StructType describes a named struct with an ordered member list.
type StructType struct {
	name   string
	fields []Field
	byName map[string]int
}

func NewStructType(name string) *StructType {
	return &StructType{name: name, byName: map[string]int{}}
}

func (t *StructType) AddField(name string, typ DataType) *StructType {
	t.byName[name] = len(t.fields)
	t.fields = append(t.fields, Field{Name: name, Type: typ})
	return t
}

func (t *StructType) Field(name string) (Field, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Field{}, false
	}
	return t.fields[i], true
}

func (t *StructType) Fields() []Field { return t.fields }
func (t *StructType) Name() string    { return t.name }
func (t *StructType) isDataType()     {}

// DocumentType describes a named document type with its declared fields.
type DocumentType struct {
	name   string
	fields []Field
	byName map[string]int
}

func NewDocumentType(name string) *DocumentType {
	return &DocumentType{name: name, byName: map[string]int{}}
}

func (t *DocumentType) AddField(name string, typ DataType) *DocumentType {
	t.byName[name] = len(t.fields)
	t.fields = append(t.fields, Field{Name: name, Type: typ})
	return t
}

func (t *DocumentType) Field(name string) (Field, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Field{}, false
	}
	return t.fields[i], true
}

func (t *DocumentType) Fields() []Field { return t.fields }
func (t *DocumentType) Name() string    { return t.name }

// TypeManager is the registry resolving document type names to their
// schemas.  It is populated up front and is read-only afterwards, so any
// number of readers may consult it concurrently.
type TypeManager struct {
	types map[string]*DocumentType
}

func NewTypeManager() *TypeManager {
	return &TypeManager{types: map[string]*DocumentType{}}
}

func (m *TypeManager) Register(t *DocumentType) {
	m.types[t.Name()] = t
}

// DocumentType returns the registered type of the given name, or nil.
func (m *TypeManager) DocumentType(name string) *DocumentType {
	return m.types[name]
}
