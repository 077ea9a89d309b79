// Package schema loads document type definitions from a JSON schema file
// into a document.TypeManager.
//
// The schema file lists document types and, optionally, named structs their
// fields can refer to:
//
//	{
//	  "structs": [
//	    {"name": "segment", "fields": [
//	      {"name": "label", "type": "string"},
//	      {"name": "weight", "type": "int"}
//	    ]}
//	  ],
//	  "types": [
//	    {"name": "music", "fields": [
//	      {"name": "artist", "type": "string"},
//	      {"name": "tracks", "type": "array<segment>"},
//	      {"name": "embedding", "type": "tensor(x[3])"}
//	    ]}
//	  ]
//	}
//
// Field types are spec strings: the primitives (string, int, long, byte,
// float, double, bool), raw, position, predicate, tensor(...) type specs,
// the composites array<T>, map<K,V> and weightedset<T>, or the name of a
// struct declared in the same file.
package schema

import (
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/docstream-io/docstream/document"
)

type fileDef struct {
	Structs []typeDef `json:"structs"`
	Types   []typeDef `json:"types"`
}

type typeDef struct {
	Name   string     `json:"name"`
	Fields []fieldDef `json:"fields"`
}

type fieldDef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Load reads a schema file and returns the populated type registry.
func Load(in io.Reader) (*document.TypeManager, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	var def fileDef
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return build(&def)
}

// LoadFile is Load over the named file.
func LoadFile(path string) (*document.TypeManager, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	types, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return types, nil
}

func build(def *fileDef) (*document.TypeManager, error) {
	// declare all structs first so fields can refer to them regardless of
	// declaration order
	structs := make(map[string]*document.StructType, len(def.Structs))
	for _, s := range def.Structs {
		if s.Name == "" {
			return nil, fmt.Errorf("invalid schema: struct with no name")
		}
		if _, dup := structs[s.Name]; dup {
			return nil, fmt.Errorf("invalid schema: duplicate struct '%s'", s.Name)
		}
		structs[s.Name] = document.NewStructType(s.Name)
	}
	for _, s := range def.Structs {
		for _, f := range s.Fields {
			typ, err := parseTypeSpec(f.Type, structs)
			if err != nil {
				return nil, fmt.Errorf("struct '%s', field '%s': %w", s.Name, f.Name, err)
			}
			structs[s.Name].AddField(f.Name, typ)
		}
	}
	types := document.NewTypeManager()
	for _, t := range def.Types {
		if t.Name == "" {
			return nil, fmt.Errorf("invalid schema: document type with no name")
		}
		docType := document.NewDocumentType(t.Name)
		for _, f := range t.Fields {
			typ, err := parseTypeSpec(f.Type, structs)
			if err != nil {
				return nil, fmt.Errorf("document type '%s', field '%s': %w", t.Name, f.Name, err)
			}
			docType.AddField(f.Name, typ)
		}
		types.Register(docType)
	}
	return types, nil
}

// parseTypeSpec resolves a field type spec string.
func parseTypeSpec(spec string, structs map[string]*document.StructType) (document.DataType, error) {
	s := strings.TrimSpace(spec)
	switch s {
	case "string":
		return document.TypeString, nil
	case "int":
		return document.TypeInt, nil
	case "long":
		return document.TypeLong, nil
	case "byte":
		return document.TypeByte, nil
	case "float":
		return document.TypeFloat, nil
	case "double":
		return document.TypeDouble, nil
	case "bool":
		return document.TypeBool, nil
	case "raw":
		return document.TypeRaw, nil
	case "position":
		return document.TypePosition, nil
	case "predicate":
		return document.TypePredicate, nil
	}
	switch {
	case strings.HasPrefix(s, "tensor("):
		return document.ParseTensorType(s)
	case strings.HasPrefix(s, "array<") && strings.HasSuffix(s, ">"):
		elem, err := parseTypeSpec(s[len("array<"):len(s)-1], structs)
		if err != nil {
			return nil, err
		}
		return document.ArrayOf(elem), nil
	case strings.HasPrefix(s, "weightedset<") && strings.HasSuffix(s, ">"):
		elem, err := parseTypeSpec(s[len("weightedset<"):len(s)-1], structs)
		if err != nil {
			return nil, err
		}
		return document.WeightedSetOf(elem), nil
	case strings.HasPrefix(s, "map<") && strings.HasSuffix(s, ">"):
		key, value, err := splitMapArgs(s[len("map<") : len(s)-1])
		if err != nil {
			return nil, fmt.Errorf("invalid type spec %q: %v", spec, err)
		}
		keyType, err := parseTypeSpec(key, structs)
		if err != nil {
			return nil, err
		}
		valueType, err := parseTypeSpec(value, structs)
		if err != nil {
			return nil, err
		}
		return document.MapOf(keyType, valueType), nil
	}
	if st, ok := structs[s]; ok {
		return st, nil
	}
	return nil, fmt.Errorf("unknown type spec %q", spec)
}

// splitMapArgs splits "K,V" at the top-level comma, ignoring commas nested
// in composite key or value specs.
func splitMapArgs(s string) (string, string, error) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ',':
			if depth == 0 {
				return s[:i], s[i+1:], nil
			}
		}
	}
	return "", "", fmt.Errorf("missing ',' between map key and value")
}
