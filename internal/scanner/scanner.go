// Package scanner provides a byte scanner with position tracking and token
// span recording, used by the JSON tokenizer.
package scanner

import (
	"bufio"
	"io"
)

// EOF is returned by Read and Peek at end of input.  0xFF cannot appear in
// well-formed UTF-8, so it is safe as an in-band sentinel.
const EOF byte = 0xFF

// Pos is a 0-based line/column position in the input.
type Pos struct {
	Line int
	Col  int
}

// Scanner reads bytes one at a time from an io.Reader, tracking the current
// position and optionally recording the bytes of the token being scanned.
type Scanner struct {
	r *bufio.Reader

	pos, prevPos Pos

	// token bytes recorded since StartToken, nil when not recording
	record    []byte
	recording bool

	atEOF bool
}

func New(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r), prevPos: Pos{Line: -1}}
}

// Read consumes and returns the next byte, or EOF at end of input.
func (s *Scanner) Read() (byte, error) {
	b, err := s.r.ReadByte()
	if err == io.EOF {
		s.atEOF = true
		return EOF, nil
	}
	if err != nil {
		return 0, err
	}
	s.prevPos = s.pos
	switch {
	case b == '\n':
		s.pos.Line++
		s.pos.Col = 0
	case b < 0xC0:
		// final byte of a UTF-8 encoded codepoint
		s.pos.Col++
	}
	if s.recording {
		s.record = append(s.record, b)
	}
	return b, nil
}

// Back un-reads the last byte returned by Read.  Only one byte of lookback
// is supported.
func (s *Scanner) Back() {
	if s.atEOF {
		s.atEOF = false
		return
	}
	if s.prevPos.Line < 0 {
		panic("scanner: cannot go back twice")
	}
	if err := s.r.UnreadByte(); err != nil {
		panic("scanner: cannot go back")
	}
	if s.recording {
		s.record = s.record[:len(s.record)-1]
	}
	s.pos = s.prevPos
	s.prevPos.Line = -1
}

// Peek returns the next byte without consuming it, or EOF at end of input.
func (s *Scanner) Peek() (byte, error) {
	b, err := s.r.Peek(1)
	if err == io.EOF {
		return EOF, nil
	}
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// SkipSpaceAndPeek skips JSON whitespace and returns the next significant
// byte without consuming it.
func (s *Scanner) SkipSpaceAndPeek() (byte, error) {
	for {
		b, err := s.Read()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case EOF:
			return EOF, nil
		default:
			s.Back()
			return b, nil
		}
	}
}

// CurrentPos returns the position of the next byte to be read.
func (s *Scanner) CurrentPos() Pos {
	return s.pos
}

// StartToken begins recording consumed bytes and returns the position where
// the token starts.
func (s *Scanner) StartToken() Pos {
	if s.recording {
		panic("scanner: already recording a token")
	}
	s.recording = true
	s.record = s.record[:0]
	return s.pos
}

// EndToken stops recording and returns a copy of the bytes consumed since
// StartToken.
func (s *Scanner) EndToken() []byte {
	if !s.recording {
		panic("scanner: not recording a token")
	}
	s.recording = false
	tok := make([]byte, len(s.record))
	copy(tok, s.record)
	return tok
}

// IsDigit reports whether b is an ASCII digit.
func IsDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// IsCtrl reports whether b is a control character that may not appear
// unescaped in a JSON string.
func IsCtrl(b byte) bool {
	return b < 0x20
}
