package token

// ReadStream is a pull source of tokens.  Next returns nil when the stream
// is exhausted.
type ReadStream interface {
	Next() Token
}

// SliceReadStream replays a captured token span.
type SliceReadStream struct {
	toks []Token
}

var _ ReadStream = &SliceReadStream{}

func NewSliceReadStream(toks []Token) *SliceReadStream {
	return &SliceReadStream{toks: toks}
}

func (r *SliceReadStream) Next() (tok Token) {
	if len(r.toks) > 0 {
		tok = r.toks[0]
		r.toks = r.toks[1:]
	}
	return
}

// Accumulator collects tokens so that a sub-document span can be captured
// and replayed later via NewSliceReadStream.
type Accumulator struct {
	toks []Token
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

func (a *Accumulator) Put(tok Token) {
	a.toks = append(a.toks, tok)
}

func (a *Accumulator) Tokens() []Token {
	return a.toks
}
