package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarText(t *testing.T) {
	tests := []struct {
		name  string
		bytes string
		want  string
	}{
		{"plain", `"hello"`, "hello"},
		{"empty", `""`, ""},
		{"escaped quote", `"a\"b"`, `a"b`},
		{"escaped newline", `"a\nb"`, "a\nb"},
		{"unicode escape", `"é"`, "é"},
		{"backslash", `"a\\b"`, `a\b`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := &Scalar{Bytes: []byte(test.bytes), Type: String}
			require.Equal(t, test.want, s.Text())
			require.True(t, s.EqualsText(test.want))
		})
	}
}

func TestScalarNumbers(t *testing.T) {
	n, err := IntScalar(42).Int64()
	require.NoError(t, err)
	require.Equal(t, int64(42), n)

	// string-encoded numbers parse exactly as written
	n, err = TextScalar("-17").Int64()
	require.NoError(t, err)
	require.Equal(t, int64(-17), n)

	_, err = TextScalar(" 1").Int64()
	require.Error(t, err)

	x, err := (&Scalar{Bytes: []byte("12.5e2"), Type: Number}).Float64()
	require.NoError(t, err)
	require.Equal(t, 1250.0, x)

	_, err = BoolScalar(true).Int64()
	require.Error(t, err)
}

func TestScalarConstructors(t *testing.T) {
	require.True(t, NullScalar().IsNull())
	require.False(t, TextScalar("null").IsNull())
	require.True(t, BoolScalar(true).Bool())
	require.False(t, BoolScalar(false).Bool())
	k := KeyScalar("fields")
	require.True(t, k.Key)
	require.Equal(t, "fields", k.Text())
}

func TestSliceReadStream(t *testing.T) {
	toks := []Token{&BeginArray{}, IntScalar(1), &EndArray{}}
	acc := NewAccumulator()
	for _, tok := range toks {
		acc.Put(tok)
	}
	s := NewSliceReadStream(acc.Tokens())
	for _, want := range toks {
		require.Equal(t, want, s.Next())
	}
	require.Nil(t, s.Next())
	require.Nil(t, s.Next())
}
