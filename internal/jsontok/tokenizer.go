// Package jsontok turns JSON input into a pull stream of tokens.
//
// Unlike a channel-based pipeline there is no internal concurrency: each
// call to Next consumes just enough bytes from the input to produce one
// token, so a decoder driving the tokenizer fully controls how far the
// input is read.
package jsontok

import (
	"fmt"
	"io"

	"github.com/docstream-io/docstream/internal/scanner"
	"github.com/docstream-io/docstream/token"
)

type frame struct {
	object bool
	// number of keys (in an object) or elements (in an array) seen so far
	n int
}

// A Tokenizer reads JSON input and produces one token per call to Next.
type Tokenizer struct {
	scan     *scanner.Scanner
	stack    []frame
	afterKey bool
	err      error
}

func New(in io.Reader) *Tokenizer {
	return &Tokenizer{scan: scanner.New(in)}
}

// Next returns the next token in the input.  At the end of the input it
// returns (nil, io.EOF).  Any syntax error is sticky: once returned, all
// subsequent calls return the same error.
func (t *Tokenizer) Next() (token.Token, error) {
	tok, err := t.next()
	if err != nil && t.err == nil {
		t.err = err
	}
	if t.err != nil {
		return nil, t.err
	}
	return tok, nil
}

func (t *Tokenizer) next() (token.Token, error) {
	if t.err != nil {
		return nil, t.err
	}
	if len(t.stack) == 0 {
		b, err := t.scan.SkipSpaceAndPeek()
		if err != nil {
			return nil, err
		}
		if b == scanner.EOF {
			return nil, io.EOF
		}
		return t.value()
	}
	top := &t.stack[len(t.stack)-1]
	if top.object {
		if t.afterKey {
			t.afterKey = false
			return t.value()
		}
		b, err := t.scan.SkipSpaceAndPeek()
		if err != nil {
			return nil, err
		}
		switch {
		case b == '}':
			t.scan.Read()
			t.stack = t.stack[:len(t.stack)-1]
			return &token.EndObject{}, nil
		case top.n == 0:
			return t.key(top)
		case b == ',':
			t.scan.Read()
			if _, err := t.scan.SkipSpaceAndPeek(); err != nil {
				return nil, err
			}
			return t.key(top)
		default:
			return nil, t.unexpected("expected '}' or ','")
		}
	}
	b, err := t.scan.SkipSpaceAndPeek()
	if err != nil {
		return nil, err
	}
	switch {
	case b == ']':
		t.scan.Read()
		t.stack = t.stack[:len(t.stack)-1]
		return &token.EndArray{}, nil
	case top.n == 0:
		top.n++
		return t.value()
	case b == ',':
		t.scan.Read()
		top.n++
		return t.value()
	default:
		return nil, t.unexpected("expected ']' or ','")
	}
}

func (t *Tokenizer) key(top *frame) (token.Token, error) {
	b, err := t.scan.SkipSpaceAndPeek()
	if err != nil {
		return nil, err
	}
	if b != '"' {
		return nil, t.unexpected("expected object key")
	}
	k, err := parseString(t.scan)
	if err != nil {
		return nil, err
	}
	k.Key = true
	b, err = t.scan.SkipSpaceAndPeek()
	if err != nil {
		return nil, err
	}
	if b != ':' {
		return nil, t.unexpected("expected ':'")
	}
	t.scan.Read()
	top.n++
	t.afterKey = true
	return k, nil
}

func (t *Tokenizer) value() (token.Token, error) {
	b, err := t.scan.SkipSpaceAndPeek()
	if err != nil {
		return nil, err
	}
	switch b {
	case '"':
		return parseString(t.scan)
	case '{':
		t.scan.Read()
		t.stack = append(t.stack, frame{object: true})
		return &token.BeginObject{}, nil
	case '[':
		t.scan.Read()
		t.stack = append(t.stack, frame{})
		return &token.BeginArray{}, nil
	case 't':
		if err := expectBytes(t.scan, "true"); err != nil {
			return nil, err
		}
		return token.BoolScalar(true), nil
	case 'f':
		if err := expectBytes(t.scan, "false"); err != nil {
			return nil, err
		}
		return token.BoolScalar(false), nil
	case 'n':
		if err := expectBytes(t.scan, "null"); err != nil {
			return nil, err
		}
		return token.NullScalar(), nil
	default:
		if b == '-' || scanner.IsDigit(b) {
			return parseNumber(t.scan)
		}
		return nil, t.unexpected("unexpected byte")
	}
}

// Capture consumes the next complete JSON value and returns its token span,
// suitable for replaying through a token.SliceReadStream.
func (t *Tokenizer) Capture() ([]token.Token, error) {
	acc := token.NewAccumulator()
	depth := 0
	for {
		tok, err := t.Next()
		if err == io.EOF {
			return nil, t.fail("unexpected end of input")
		}
		if err != nil {
			return nil, err
		}
		acc.Put(tok)
		switch tok.(type) {
		case *token.BeginObject, *token.BeginArray:
			depth++
		case *token.EndObject, *token.EndArray:
			depth--
		}
		if depth == 0 {
			return acc.Tokens(), nil
		}
	}
}

func (t *Tokenizer) unexpected(what string) error {
	pos := t.scan.CurrentPos()
	b, err := t.scan.Read()
	if err != nil {
		return err
	}
	if b == scanner.EOF {
		return fmt.Errorf("syntax error at L%d,C%d: %s: <EOF>", pos.Line+1, pos.Col+1, what)
	}
	return fmt.Errorf("syntax error at L%d,C%d: %s: %q", pos.Line+1, pos.Col+1, what, b)
}

func (t *Tokenizer) fail(what string) error {
	pos := t.scan.CurrentPos()
	return fmt.Errorf("syntax error at L%d,C%d: %s", pos.Line+1, pos.Col+1, what)
}

func expectByte(scan *scanner.Scanner, xb byte) error {
	b, err := scan.Read()
	if err != nil {
		return err
	}
	if b != xb {
		scan.Back()
		pos := scan.CurrentPos()
		return fmt.Errorf("syntax error at L%d,C%d: expected %q", pos.Line+1, pos.Col+1, xb)
	}
	return nil
}

func expectBytes(scan *scanner.Scanner, expected string) error {
	for i := 0; i < len(expected); i++ {
		if err := expectByte(scan, expected[i]); err != nil {
			return err
		}
	}
	return nil
}

func parseString(scan *scanner.Scanner) (*token.Scalar, error) {
	scan.StartToken()
	if err := expectByte(scan, '"'); err != nil {
		return nil, err
	}
	for {
		b, err := scan.Read()
		if err != nil {
			return nil, err
		}
		switch b {
		case '\\':
			x, err := scan.Read()
			if err != nil {
				return nil, err
			}
			switch x {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				continue
			case 'u':
				for i := 0; i < 4; i++ {
					b, err = scan.Read()
					if err != nil {
						return nil, err
					}
					if !isHex(b) {
						scan.Back()
						pos := scan.CurrentPos()
						return nil, fmt.Errorf("syntax error at L%d,C%d: expected hex digit", pos.Line+1, pos.Col+1)
					}
				}
			default:
				scan.Back()
				pos := scan.CurrentPos()
				return nil, fmt.Errorf("syntax error at L%d,C%d: invalid escape", pos.Line+1, pos.Col+1)
			}
		case '"':
			return &token.Scalar{Bytes: scan.EndToken(), Type: token.String}, nil
		case scanner.EOF:
			pos := scan.CurrentPos()
			return nil, fmt.Errorf("syntax error at L%d,C%d: unterminated string", pos.Line+1, pos.Col+1)
		default:
			if scanner.IsCtrl(b) {
				scan.Back()
				pos := scan.CurrentPos()
				return nil, fmt.Errorf("syntax error at L%d,C%d: control character in string", pos.Line+1, pos.Col+1)
			}
		}
	}
}

func parseNumber(scan *scanner.Scanner) (*token.Scalar, error) {
	scan.StartToken()
	b, err := scan.Read()
	if err != nil {
		return nil, err
	}

	if b == '-' {
		b, err = scan.Read()
		if err != nil {
			return nil, err
		}
	}

	switch {
	case b == '0':
		b, err = scan.Read()
		if err != nil {
			return nil, err
		}
	case scanner.IsDigit(b):
		b, _, err = readDigits(scan)
		if err != nil {
			return nil, err
		}
	default:
		scan.Back()
		pos := scan.CurrentPos()
		return nil, fmt.Errorf("syntax error at L%d,C%d: expected digit", pos.Line+1, pos.Col+1)
	}

	if b == '.' {
		var n int
		b, n, err = readDigits(scan)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			scan.Back()
			pos := scan.CurrentPos()
			return nil, fmt.Errorf("syntax error at L%d,C%d: expected digit", pos.Line+1, pos.Col+1)
		}
	}

	if b == 'e' || b == 'E' {
		b, err = scan.Peek()
		if err != nil {
			return nil, err
		}
		if b == '-' || b == '+' {
			scan.Read()
		}
		var n int
		_, n, err = readDigits(scan)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			scan.Back()
			pos := scan.CurrentPos()
			return nil, fmt.Errorf("syntax error at L%d,C%d: expected digit", pos.Line+1, pos.Col+1)
		}
	}
	scan.Back()
	return &token.Scalar{Bytes: scan.EndToken(), Type: token.Number}, nil
}

func readDigits(scan *scanner.Scanner) (byte, int, error) {
	var n int
	for {
		b, err := scan.Read()
		if err != nil {
			return 0, n, err
		}
		if !scanner.IsDigit(b) {
			return b, n, nil
		}
		n++
	}
}

func isHex(b byte) bool {
	return scanner.IsDigit(b) || b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F'
}
