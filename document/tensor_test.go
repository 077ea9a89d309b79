package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTensorType(t *testing.T) {
	tests := []struct {
		spec    string
		name    string
		indexed bool
	}{
		{"tensor(x{})", "tensor(x{})", false},
		{"tensor(x{},y{})", "tensor(x{},y{})", false},
		{"tensor(x[3])", "tensor(x[3])", true},
		{"tensor(x[])", "tensor(x[])", true},
		{"tensor(y[2],x{})", "tensor(x{},y[2])", true},
		{"tensor( x{} , y[3] )", "tensor(x{},y[3])", true},
		{"tensor()", "tensor()", false},
	}
	for _, test := range tests {
		t.Run(test.spec, func(t *testing.T) {
			typ, err := ParseTensorType(test.spec)
			require.NoError(t, err)
			require.Equal(t, test.name, typ.Name())
			require.Equal(t, test.indexed, typ.Indexed())
		})
	}
}

func TestParseTensorTypeErrors(t *testing.T) {
	for _, bad := range []string{"", "x{}", "tensor(x)", "tensor({})", "tensor(x[)", "tensor(x[-1])", "tensor(x[a])"} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParseTensorType(bad)
			require.Error(t, err)
		})
	}
}

func TestTensorCells(t *testing.T) {
	typ := NewTensorType(MappedDimension("x"), MappedDimension("y"))
	tensor := NewTensor(typ)
	require.True(t, tensor.IsEmpty())

	require.NoError(t, tensor.Set(map[string]string{"x": "a", "y": "b"}, 2.0))
	require.NoError(t, tensor.Set(map[string]string{"y": "d", "x": "c"}, 3.0))
	// overwrite
	require.NoError(t, tensor.Set(map[string]string{"x": "a", "y": "b"}, 2.5))

	v, ok := tensor.Get(map[string]string{"x": "a", "y": "b"})
	require.True(t, ok)
	require.Equal(t, 2.5, v)

	cells := tensor.Cells()
	require.Len(t, cells, 2)
	require.Equal(t, 2.5, cells[0].Value)
	require.Equal(t, 3.0, cells[1].Value)

	// a partial or misnamed address is rejected
	require.Error(t, tensor.Set(map[string]string{"x": "a"}, 1.0))
	require.Error(t, tensor.Set(map[string]string{"x": "a", "z": "b"}, 1.0))
}

func TestTensorEqual(t *testing.T) {
	typ := NewTensorType(MappedDimension("x"))
	a := NewTensor(typ)
	b := NewTensor(typ)
	require.True(t, a.Equal(b))
	a.Set(map[string]string{"x": "k"}, 1)
	require.False(t, a.Equal(b))
	b.Set(map[string]string{"x": "k"}, 1)
	require.True(t, a.Equal(b))
	b.Set(map[string]string{"x": "k"}, 2)
	require.False(t, a.Equal(b))
	require.False(t, a.Equal(nil))
}

func TestTensorString(t *testing.T) {
	typ := NewTensorType(MappedDimension("x"))
	tensor := NewTensor(typ)
	tensor.Set(map[string]string{"x": "a"}, 1.5)
	require.Equal(t, "tensor(x{}):{{x:a}:1.5}", tensor.String())
}
