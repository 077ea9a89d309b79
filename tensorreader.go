package docstream

import (
	"fmt"
	"strconv"

	"github.com/docstream-io/docstream/document"
	"github.com/docstream-io/docstream/token"
)

// readTensorValue decodes a tensor field value.  An empty object yields an
// empty tensor for mapped types; indexed types must supply a value for every
// cell.
func readTensorValue(r *tokenReader, typ *document.TensorType) (document.FieldValue, error) {
	t, err := readTensorContents(r, typ)
	if err != nil {
		return nil, err
	}
	if typ.Indexed() && t.IsEmpty() {
		return nil, fmt.Errorf("%w: indexed tensor of type '%s' must have a value", ErrTypeMismatch, typ.Name())
	}
	return document.TensorValue{Tensor: t}, nil
}

// readTensorContents decodes the tensor object body, shared between field
// values and modify-update cell sets.
func readTensorContents(r *tokenReader, typ *document.TensorType) (*document.Tensor, error) {
	if err := r.beginObject(); err != nil {
		return nil, err
	}
	t := document.NewTensor(typ)
	for {
		name, ok, err := r.nextKey()
		if err != nil {
			return nil, err
		}
		if !ok {
			return t, nil
		}
		switch name {
		case "dimensions":
			err = readTensorDimensions(r, typ)
		case "cells":
			err = readTensorCells(r, typ, t)
		case "values":
			err = readTensorDenseValues(r, typ, t)
		default:
			err = fmt.Errorf("%w: unexpected key '%s' in tensor value", ErrStructure, name)
		}
		if err != nil {
			return nil, err
		}
	}
}

// readTensorDimensions consumes a declaration of sparse dimension names.  It
// adds no cells, it only checks the names against the tensor type.
func readTensorDimensions(r *tokenReader, typ *document.TensorType) error {
	if err := r.beginArray(); err != nil {
		return err
	}
	for !r.endOfArray() {
		s, err := r.scalar()
		if err != nil {
			return err
		}
		if s.Type != token.String {
			return fmt.Errorf("%w: expected a dimension name, got %s", ErrStructure, describe(s))
		}
		name := s.Text()
		if _, ok := typ.Dimension(name); !ok {
			return fmt.Errorf("%w: unknown dimension '%s' for tensor type '%s'", ErrStructure, name, typ.Name())
		}
	}
	return nil
}

func readTensorCells(r *tokenReader, typ *document.TensorType, t *document.Tensor) error {
	if err := r.beginArray(); err != nil {
		return err
	}
	for !r.endOfArray() {
		if err := readTensorCell(r, t); err != nil {
			return err
		}
	}
	return nil
}

// readTensorCell decodes one {"address": {...}, "value": n} entry.  The two
// keys may appear in either order.
func readTensorCell(r *tokenReader, t *document.Tensor) error {
	if err := r.beginObject(); err != nil {
		return err
	}
	var address map[string]string
	var value float64
	var haveValue bool
	for {
		name, ok, err := r.nextKey()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		switch name {
		case "address":
			address, err = readTensorAddress(r)
		case "value":
			var s *token.Scalar
			if s, err = r.scalar(); err == nil {
				value, err = cellValue(s)
				haveValue = err == nil
			}
		default:
			err = fmt.Errorf("%w: unexpected key '%s' in tensor cell", ErrStructure, name)
		}
		if err != nil {
			return err
		}
	}
	if address == nil {
		return fmt.Errorf("%w: tensor cell is missing an 'address'", ErrStructure)
	}
	if !haveValue {
		return fmt.Errorf("%w: tensor cell is missing a 'value'", ErrStructure)
	}
	if err := t.Set(address, value); err != nil {
		return fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return nil
}

func readTensorAddress(r *tokenReader) (map[string]string, error) {
	if err := r.beginObject(); err != nil {
		return nil, err
	}
	address := map[string]string{}
	for {
		name, ok, err := r.nextKey()
		if err != nil {
			return nil, err
		}
		if !ok {
			return address, nil
		}
		s, err := r.scalar()
		if err != nil {
			return nil, err
		}
		if s.Type != token.String && s.Type != token.Number {
			return nil, fmt.Errorf("%w: expected a label for dimension '%s', got %s", ErrStructure, name, describe(s))
		}
		address[name] = s.Text()
	}
}

func cellValue(s *token.Scalar) (float64, error) {
	if s.Type != token.Number && s.Type != token.String {
		return 0, fmt.Errorf("%w: expected a cell value, got %s", ErrTypeMismatch, describe(s))
	}
	x, err := strconv.ParseFloat(numericText(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return x, nil
}

// readTensorDenseValues decodes the dense "values" encoding for indexed
// tensors: either a flat array or nested arrays, row-major over the type's
// dimensions in canonical order.
func readTensorDenseValues(r *tokenReader, typ *document.TensorType, t *document.Tensor) error {
	dims := typ.Dimensions()
	for _, d := range dims {
		if d.Mapped {
			return fmt.Errorf("%w: the 'values' encoding requires an indexed tensor type, '%s' has mapped dimensions",
				ErrTypeMismatch, typ.Name())
		}
	}
	values, err := flattenDenseValues(r)
	if err != nil {
		return err
	}
	sizes, err := denseSizes(typ, len(values))
	if err != nil {
		return err
	}
	address := make(map[string]string, len(dims))
	for i, v := range values {
		rem := i
		for d := len(dims) - 1; d >= 0; d-- {
			address[dims[d].Name] = strconv.Itoa(rem % sizes[d])
			rem /= sizes[d]
		}
		if err := t.Set(address, v); err != nil {
			return fmt.Errorf("%w: %v", ErrTypeMismatch, err)
		}
	}
	return nil
}

func flattenDenseValues(r *tokenReader) ([]float64, error) {
	if err := r.beginArray(); err != nil {
		return nil, err
	}
	var values []float64
	for !r.endOfArray() {
		if _, ok := r.peek().(*token.BeginArray); ok {
			nested, err := flattenDenseValues(r)
			if err != nil {
				return nil, err
			}
			values = append(values, nested...)
			continue
		}
		s, err := r.scalar()
		if err != nil {
			return nil, err
		}
		v, err := cellValue(s)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// denseSizes resolves each dimension's size, inferring a single unbound
// dimension from the value count.
func denseSizes(typ *document.TensorType, count int) ([]int, error) {
	dims := typ.Dimensions()
	sizes := make([]int, len(dims))
	bound := 1
	unbound := -1
	for i, d := range dims {
		if d.Size == 0 {
			if unbound >= 0 {
				return nil, fmt.Errorf("%w: tensor type '%s' has more than one unbound dimension, cannot infer sizes from values",
					ErrTypeMismatch, typ.Name())
			}
			unbound = i
			continue
		}
		sizes[i] = d.Size
		bound *= d.Size
	}
	if unbound >= 0 {
		if bound == 0 || count%bound != 0 {
			return nil, fmt.Errorf("%w: %d values do not fill tensor type '%s'", ErrTypeMismatch, count, typ.Name())
		}
		sizes[unbound] = count / bound
		bound *= sizes[unbound]
	}
	if count != bound {
		return nil, fmt.Errorf("%w: expected %d values for tensor type '%s', got %d", ErrTypeMismatch, bound, typ.Name(), count)
	}
	return sizes, nil
}
