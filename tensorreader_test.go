package docstream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docstream-io/docstream/document"
)

func decodeTensor(t *testing.T, input, spec string) (*document.Tensor, error) {
	t.Helper()
	v, err := decodeValue(t, input, tensorType(spec))
	if err != nil {
		return nil, err
	}
	return v.(document.TensorValue).Tensor, nil
}

func mustDecodeTensor(t *testing.T, input, spec string) *document.Tensor {
	t.Helper()
	tensor, err := decodeTensor(t, input, spec)
	require.NoError(t, err)
	return tensor
}

func TestDecodeMappedTensorCells(t *testing.T) {
	tensor := mustDecodeTensor(t, `{"cells": [
		{"address": {"x": "a", "y": "b"}, "value": 2.0},
		{"value": 3.5, "address": {"y": "d", "x": "c"}}
	]}`, "tensor(x{},y{})")

	v, ok := tensor.Get(map[string]string{"x": "a", "y": "b"})
	require.True(t, ok)
	require.Equal(t, 2.0, v)
	v, ok = tensor.Get(map[string]string{"x": "c", "y": "d"})
	require.True(t, ok)
	require.Equal(t, 3.5, v)
}

func TestDecodeEmptyMappedTensor(t *testing.T) {
	require.True(t, mustDecodeTensor(t, `{}`, "tensor(x{})").IsEmpty())
	require.True(t, mustDecodeTensor(t, `{"cells": []}`, "tensor(x{})").IsEmpty())
	require.True(t, mustDecodeTensor(t, `{"dimensions": ["x"]}`, "tensor(x{})").IsEmpty())
}

func TestDecodeIndexedTensorRequiresCells(t *testing.T) {
	_, err := decodeTensor(t, `{}`, "tensor(x[2])")
	require.ErrorIs(t, err, ErrTypeMismatch)
	require.Contains(t, err.Error(), "must have a value")

	_, err = decodeTensor(t, `{"cells": []}`, "tensor(x[2])")
	require.Contains(t, err.Error(), "must have a value")
}

func TestDecodeIndexedTensorCells(t *testing.T) {
	tensor := mustDecodeTensor(t, `{"cells": [
		{"address": {"x": "0"}, "value": 1},
		{"address": {"x": "1"}, "value": 2}
	]}`, "tensor(x[2])")
	v, ok := tensor.Get(map[string]string{"x": "1"})
	require.True(t, ok)
	require.Equal(t, 2.0, v)
}

func TestDecodeDenseValuesFlat(t *testing.T) {
	tensor := mustDecodeTensor(t, `{"values": [1, 2, 3, 4, 5, 6]}`, "tensor(x[2],y[3])")
	cells := tensor.Cells()
	require.Len(t, cells, 6)
	// row-major over the canonical dimension order
	v, ok := tensor.Get(map[string]string{"x": "0", "y": "2"})
	require.True(t, ok)
	require.Equal(t, 3.0, v)
	v, ok = tensor.Get(map[string]string{"x": "1", "y": "0"})
	require.True(t, ok)
	require.Equal(t, 4.0, v)
}

func TestDecodeDenseValuesNested(t *testing.T) {
	nested := mustDecodeTensor(t, `{"values": [[1, 2, 3], [4, 5, 6]]}`, "tensor(x[2],y[3])")
	flat := mustDecodeTensor(t, `{"values": [1, 2, 3, 4, 5, 6]}`, "tensor(x[2],y[3])")
	require.True(t, nested.Equal(flat))
}

func TestDecodeDenseValuesUnboundDimension(t *testing.T) {
	tensor := mustDecodeTensor(t, `{"values": [1, 2, 3, 4]}`, "tensor(x[],y[2])")
	require.Len(t, tensor.Cells(), 4)
	v, ok := tensor.Get(map[string]string{"x": "1", "y": "1"})
	require.True(t, ok)
	require.Equal(t, 4.0, v)
}

func TestDecodeDenseValuesErrors(t *testing.T) {
	// wrong cell count
	_, err := decodeTensor(t, `{"values": [1, 2, 3]}`, "tensor(x[2],y[2])")
	require.ErrorIs(t, err, ErrTypeMismatch)

	// mapped dimensions have no dense encoding
	_, err = decodeTensor(t, `{"values": [1]}`, "tensor(x{})")
	require.ErrorIs(t, err, ErrTypeMismatch)

	// value count does not divide into the bound dimensions
	_, err = decodeTensor(t, `{"values": [1, 2, 3]}`, "tensor(x[],y[2])")
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestDecodeTensorErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown key", `{"cellz": []}`},
		{"cell missing address", `{"cells": [{"value": 1}]}`},
		{"cell missing value", `{"cells": [{"address": {"x": "a"}}]}`},
		{"cell unknown key", `{"cells": [{"address": {"x": "a"}, "value": 1, "create": true}]}`},
		{"wrong dimension", `{"cells": [{"address": {"z": "a"}, "value": 1}]}`},
		{"partial address", `{"cells": [{"address": {}, "value": 1}]}`},
		{"unknown dimension name", `{"dimensions": ["z"]}`},
		{"non-numeric value", `{"cells": [{"address": {"x": "a"}, "value": true}]}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := decodeTensor(t, test.input, "tensor(x{})")
			require.Error(t, err)
		})
	}
}
