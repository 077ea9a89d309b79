package docstream

import (
	"fmt"

	"github.com/docstream-io/docstream/token"
)

// tokenReader walks a captured token span.  The span was produced by the
// tokenizer, so it is structurally well formed; what remains to check here
// is that the shape matches what the schema expects.
type tokenReader struct {
	stream   token.ReadStream
	peeked   token.Token
	havePeek bool
}

func newTokenReader(toks []token.Token) *tokenReader {
	return &tokenReader{stream: token.NewSliceReadStream(toks)}
}

func (r *tokenReader) next() token.Token {
	if r.havePeek {
		r.havePeek = false
		return r.peeked
	}
	return r.stream.Next()
}

func (r *tokenReader) peek() token.Token {
	if !r.havePeek {
		r.peeked = r.stream.Next()
		r.havePeek = true
	}
	return r.peeked
}

// beginObject consumes the opening of an object.
func (r *tokenReader) beginObject() error {
	tok := r.next()
	if _, ok := tok.(*token.BeginObject); !ok {
		return fmt.Errorf("%w: expected a JSON object, got %s", ErrTypeMismatch, describe(tok))
	}
	return nil
}

// beginArray consumes the opening of an array.
func (r *tokenReader) beginArray() error {
	tok := r.next()
	if _, ok := tok.(*token.BeginArray); !ok {
		return fmt.Errorf("%w: expected a JSON array, got %s", ErrTypeMismatch, describe(tok))
	}
	return nil
}

// nextKey returns the next object key, or false after consuming the end of
// the object.
func (r *tokenReader) nextKey() (string, bool, error) {
	tok := r.next()
	switch t := tok.(type) {
	case *token.Scalar:
		if !t.Key {
			return "", false, fmt.Errorf("%w: expected an object key, got %s", ErrStructure, describe(tok))
		}
		return t.Text(), true, nil
	case *token.EndObject:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("%w: expected an object key, got %s", ErrStructure, describe(tok))
	}
}

// endOfArray consumes the end of an array if it is next.
func (r *tokenReader) endOfArray() bool {
	if _, ok := r.peek().(*token.EndArray); ok {
		r.next()
		return true
	}
	return false
}

// scalar consumes a scalar value.
func (r *tokenReader) scalar() (*token.Scalar, error) {
	tok := r.next()
	s, ok := tok.(*token.Scalar)
	if !ok || s.Key {
		return nil, fmt.Errorf("%w: expected a scalar, got %s", ErrTypeMismatch, describe(tok))
	}
	return s, nil
}

// skipValue consumes one complete value.
func (r *tokenReader) skipValue() error {
	depth := 0
	for {
		tok := r.next()
		if tok == nil {
			return fmt.Errorf("%w: unexpected end of value", ErrStructure)
		}
		switch tok.(type) {
		case *token.BeginObject, *token.BeginArray:
			depth++
		case *token.EndObject, *token.EndArray:
			depth--
		}
		if depth == 0 {
			return nil
		}
	}
}

func describe(tok token.Token) string {
	switch t := tok.(type) {
	case nil:
		return "end of input"
	case *token.Scalar:
		if t.Key {
			return fmt.Sprintf("key %s", t.Bytes)
		}
		return fmt.Sprintf("%s (%s)", t.Bytes, t.Type)
	case *token.BeginObject:
		return "an object"
	case *token.BeginArray:
		return "an array"
	default:
		return tok.String()
	}
}
