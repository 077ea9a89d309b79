package docstream

import (
	"fmt"
	"io"
	"strconv"

	"github.com/docstream-io/docstream/document"
	"github.com/docstream-io/docstream/internal/jsontok"
	"github.com/docstream-io/docstream/token"
)

// A Reader decodes a JSON document feed into typed document operations.  The
// feed is either a single operation object or an array of them; a sequence
// of concatenated objects is accepted too.
//
// A Reader is single threaded and owns its input stream.  Independent
// readers may run concurrently against independent streams; the type
// registry is only read.
type Reader struct {
	tok   *jsontok.Tokenizer
	types *document.TypeManager
	state feedState
	err   error
}

type feedState int

const (
	feedStart feedState = iota
	feedArray
	feedBare
	feedDone
)

func NewReader(in io.Reader, types *document.TypeManager) *Reader {
	return &Reader{tok: jsontok.New(in), types: types}
}

// Next returns the next document operation in the feed, in input order, or
// (nil, nil) at the end of the input.  An error terminates the stream: every
// later call returns the same error.
func (r *Reader) Next() (document.Operation, error) {
	op, err := r.next()
	if err != nil && r.err == nil {
		r.err = err
	}
	if r.err != nil {
		return nil, r.err
	}
	return op, nil
}

func (r *Reader) next() (document.Operation, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.state == feedDone {
		return nil, nil
	}
	if r.state == feedStart {
		tok, err := r.tok.Next()
		if err == io.EOF {
			r.state = feedDone
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		switch tok.(type) {
		case *token.BeginArray:
			r.state = feedArray
		case *token.BeginObject:
			r.state = feedBare
			return r.readOperation()
		default:
			return nil, fmt.Errorf("%w: expected a document operation or an array of them, got %s",
				ErrStructure, describe(tok))
		}
	}
	tok, err := r.tok.Next()
	if err == io.EOF {
		if r.state == feedArray {
			return nil, fmt.Errorf("%w: unexpected end of input inside feed array", ErrStructure)
		}
		r.state = feedDone
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	switch tok.(type) {
	case *token.BeginObject:
		return r.readOperation()
	case *token.EndArray:
		if _, err := r.tok.Next(); err != io.EOF {
			return nil, fmt.Errorf("%w: unexpected content after the feed array", ErrStructure)
		}
		r.state = feedDone
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: expected a document operation, got %s", ErrStructure, describe(tok))
	}
}

// readOperation decodes one operation object, whose opening brace has been
// consumed.  The keys may come in any order: a 'fields' value seen before
// the operation key is captured as tokens and decoded once the document type
// is known.
func (r *Reader) readOperation() (document.Operation, error) {
	var kind, id string
	var cond document.TestAndSetCondition
	var create bool
	var fields []token.Token
	var haveFields bool
	for {
		tok, err := r.tok.Next()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(*token.Scalar)
		if !ok {
			if _, done := tok.(*token.EndObject); done {
				return r.buildOperation(kind, id, cond, create, fields, haveFields)
			}
			return nil, fmt.Errorf("%w: expected an object key, got %s", ErrStructure, describe(tok))
		}
		switch name := key.Text(); name {
		case "put", "update", "remove", "id":
			if kind != "" {
				return nil, fmt.Errorf("%w: the operation already has a document id, key '%s' is not allowed",
					ErrStructure, name)
			}
			s, err := r.stringValue(name)
			if err != nil {
				return nil, err
			}
			if name == "id" {
				name = "put"
			}
			kind, id = name, s
		case "condition":
			s, err := r.stringValue(name)
			if err != nil {
				return nil, err
			}
			cond = document.TestAndSetCondition(s)
		case "create":
			create, err = r.boolValue(name)
			if err != nil {
				return nil, err
			}
		case "fields":
			if haveFields {
				return nil, fmt.Errorf("%w: duplicate key 'fields'", ErrStructure)
			}
			fields, err = r.tok.Capture()
			if err != nil {
				return nil, err
			}
			haveFields = true
		default:
			return nil, fmt.Errorf("%w: unexpected key '%s' in document operation", ErrStructure, name)
		}
	}
}

func (r *Reader) stringValue(key string) (string, error) {
	tok, err := r.tok.Next()
	if err != nil {
		return "", err
	}
	s, ok := tok.(*token.Scalar)
	if !ok || s.Type != token.String {
		return "", fmt.Errorf("%w: expected a string value for '%s', got %s", ErrStructure, key, describe(tok))
	}
	return s.Text(), nil
}

func (r *Reader) boolValue(key string) (bool, error) {
	tok, err := r.tok.Next()
	if err != nil {
		return false, err
	}
	s, ok := tok.(*token.Scalar)
	if !ok {
		return false, fmt.Errorf("%w: expected a boolean value for '%s', got %s", ErrStructure, key, describe(tok))
	}
	switch s.Type {
	case token.Boolean:
		return s.Bool(), nil
	case token.String:
		b, err := strconv.ParseBool(s.Text())
		if err != nil {
			return false, fmt.Errorf("%w: expected a boolean value for '%s': %v", ErrStructure, key, err)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: expected a boolean value for '%s', got %s", ErrStructure, key, describe(s))
	}
}

func (r *Reader) buildOperation(kind, id string, cond document.TestAndSetCondition, create bool, fields []token.Token, haveFields bool) (document.Operation, error) {
	if kind == "" {
		return nil, fmt.Errorf("%w: missing a document operation ('put', 'update' or 'remove')", ErrStructure)
	}
	docId, err := document.NewDocumentId(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructure, err)
	}
	if kind == "remove" {
		// a 'fields' map on a remove carries no meaning and is dropped
		return &document.DocumentRemove{Id: docId, Cond: cond}, nil
	}
	if !haveFields {
		return nil, fmt.Errorf("%w: %s of document %s is missing a 'fields' map", ErrStructure, kind, id)
	}
	docType := r.types.DocumentType(docId.DocType())
	if docType == nil {
		return nil, fmt.Errorf("%w: document type %s does not exist", ErrUnknownDocumentType, docId.DocType())
	}
	tr := newTokenReader(fields)
	if kind == "put" {
		values, err := r.readPutFields(tr, docId, docType)
		if err != nil {
			return nil, err
		}
		return &document.DocumentPut{Id: docId, Fields: values, Cond: cond}, nil
	}
	updates, err := r.readUpdateFields(tr, docId, docType)
	if err != nil {
		return nil, err
	}
	return &document.DocumentUpdate{Id: docId, FieldUpdates: updates, CreateIfNonExistent: create, Cond: cond}, nil
}

func (r *Reader) readPutFields(tr *tokenReader, id document.DocumentId, docType *document.DocumentType) (map[string]document.FieldValue, error) {
	if err := tr.beginObject(); err != nil {
		return nil, err
	}
	values := map[string]document.FieldValue{}
	for {
		name, ok, err := tr.nextKey()
		if err != nil {
			return nil, err
		}
		if !ok {
			return values, nil
		}
		field, ok := docType.Field(name)
		if !ok {
			return nil, fmt.Errorf("%w: could not get field '%s' in the structure of type '%s'",
				ErrUnknownField, name, docType.Name())
		}
		value, err := readFieldValue(tr, field.Type)
		if err != nil {
			return nil, fieldError(id, name, field.Type, err)
		}
		values[name] = value
	}
}

func (r *Reader) readUpdateFields(tr *tokenReader, id document.DocumentId, docType *document.DocumentType) ([]document.FieldUpdate, error) {
	if err := tr.beginObject(); err != nil {
		return nil, err
	}
	var updates []document.FieldUpdate
	for {
		name, ok, err := tr.nextKey()
		if err != nil {
			return nil, err
		}
		if !ok {
			return updates, nil
		}
		field, ok := docType.Field(name)
		if !ok {
			return nil, fmt.Errorf("%w: could not get field '%s' in the structure of type '%s'",
				ErrUnknownField, name, docType.Name())
		}
		ops, err := readFieldUpdates(tr, name, field.Type)
		if err != nil {
			return nil, fieldError(id, name, field.Type, err)
		}
		updates = append(updates, document.FieldUpdate{Field: name, Updates: ops})
	}
}
