package docstream

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/docstream-io/docstream/document"
	"github.com/docstream-io/docstream/token"
)

// readFieldUpdates decodes the update-operator object for one field into an
// ordered list of value updates.
func readFieldUpdates(r *tokenReader, fieldName string, typ document.DataType) ([]document.ValueUpdate, error) {
	if err := r.beginObject(); err != nil {
		return nil, err
	}
	var updates []document.ValueUpdate
	for {
		name, ok, err := r.nextKey()
		if err != nil {
			return nil, err
		}
		if !ok {
			return updates, nil
		}
		ops, err := readUpdateOperator(r, fieldName, typ, name)
		if err != nil {
			return nil, err
		}
		updates = append(updates, ops...)
	}
}

func readUpdateOperator(r *tokenReader, fieldName string, typ document.DataType, op string) ([]document.ValueUpdate, error) {
	switch op {
	case "assign":
		u, err := readAssign(r, typ)
		return single(u, err)
	case "clear":
		if err := r.skipValue(); err != nil {
			return nil, err
		}
		return []document.ValueUpdate{document.Clear{}}, nil
	case "add":
		return readAdd(r, typ)
	case "remove":
		return readRemove(r, typ)
	case "match":
		u, err := readMatch(r, typ)
		return single(u, err)
	case "increment", "decrement", "multiply", "divide":
		u, err := readArithmetic(r, op)
		return single(u, err)
	case "modify":
		u, err := readModify(r, fieldName, typ)
		return single(u, err)
	default:
		return nil, fmt.Errorf("%w: unknown update operator '%s'", ErrUnsupportedOperator, op)
	}
}

func single(u document.ValueUpdate, err error) ([]document.ValueUpdate, error) {
	if err != nil {
		return nil, err
	}
	return []document.ValueUpdate{u}, nil
}

// readAssign decodes an assign operand.  A JSON null clears the field
// instead of assigning a value.
func readAssign(r *tokenReader, typ document.DataType) (document.ValueUpdate, error) {
	if s, ok := r.peek().(*token.Scalar); ok && s.IsNull() {
		r.next()
		return document.Clear{}, nil
	}
	value, err := readFieldValue(r, typ)
	if err != nil {
		return nil, err
	}
	return document.Assign{Value: value}, nil
}

func readAdd(r *tokenReader, typ document.DataType) ([]document.ValueUpdate, error) {
	switch t := typ.(type) {
	case *document.ArrayType:
		var updates []document.ValueUpdate
		if err := r.beginArray(); err != nil {
			return nil, err
		}
		for !r.endOfArray() {
			elem, err := readFieldValue(r, t.Element)
			if err != nil {
				return nil, err
			}
			updates = append(updates, document.Add{Value: elem, Weight: 1})
		}
		return updates, nil
	case *document.WeightedSetType:
		return readWeightedSetEntries(r, t, func(elem document.FieldValue, weight int32) document.ValueUpdate {
			return document.Add{Value: elem, Weight: weight}
		})
	default:
		return nil, fmt.Errorf("%w: 'add' is not applicable to a field of type '%s'", ErrUnsupportedOperator, typ.Name())
	}
}

func readRemove(r *tokenReader, typ document.DataType) ([]document.ValueUpdate, error) {
	switch t := typ.(type) {
	case *document.ArrayType:
		var updates []document.ValueUpdate
		if err := r.beginArray(); err != nil {
			return nil, err
		}
		for !r.endOfArray() {
			elem, err := readFieldValue(r, t.Element)
			if err != nil {
				return nil, err
			}
			updates = append(updates, document.Remove{Value: elem})
		}
		return updates, nil
	case *document.WeightedSetType:
		// same shape as add, the weight is parsed but not carried
		return readWeightedSetEntries(r, t, func(elem document.FieldValue, weight int32) document.ValueUpdate {
			return document.Remove{Value: elem}
		})
	case *document.MapType:
		var updates []document.ValueUpdate
		if err := r.beginArray(); err != nil {
			return nil, err
		}
		for !r.endOfArray() {
			key, err := readFieldValue(r, t.Key)
			if err != nil {
				return nil, err
			}
			updates = append(updates, document.Remove{Value: key})
		}
		return updates, nil
	default:
		return nil, fmt.Errorf("%w: 'remove' is not applicable to a field of type '%s'", ErrUnsupportedOperator, typ.Name())
	}
}

func readWeightedSetEntries(r *tokenReader, typ *document.WeightedSetType, build func(document.FieldValue, int32) document.ValueUpdate) ([]document.ValueUpdate, error) {
	if err := r.beginObject(); err != nil {
		return nil, err
	}
	var updates []document.ValueUpdate
	for {
		name, ok, err := r.nextKey()
		if err != nil {
			return nil, err
		}
		if !ok {
			return updates, nil
		}
		elem, err := keyFromText(typ.Element, name)
		if err != nil {
			return nil, err
		}
		s, err := r.scalar()
		if err != nil {
			return nil, err
		}
		weight, err := weightFromScalar(s)
		if err != nil {
			return nil, err
		}
		updates = append(updates, build(elem, weight))
	}
}

// readMatch decodes a match update, an element selector plus exactly one
// nested operation applying to the selected element.
func readMatch(r *tokenReader, typ document.DataType) (document.ValueUpdate, error) {
	elemType, targetType, err := matchTypes(typ)
	if err != nil {
		return nil, err
	}
	if err := r.beginObject(); err != nil {
		return nil, err
	}
	var element document.FieldValue
	var nested document.ValueUpdate
	for {
		name, ok, err := r.nextKey()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch name {
		case "element":
			element, err = readFieldValue(r, elemType)
		default:
			if nested != nil {
				return nil, fmt.Errorf("%w: match update can only contain one operation", ErrStructure)
			}
			nested, err = readMatchOperation(r, targetType, name)
		}
		if err != nil {
			return nil, err
		}
	}
	if element == nil {
		return nil, fmt.Errorf("%w: match update is missing an 'element'", ErrStructure)
	}
	if nested == nil {
		return nil, fmt.Errorf("%w: match update does not contain an operation", ErrStructure)
	}
	return document.Match{Element: element, Update: nested}, nil
}

// matchTypes resolves the element selector type and the type the nested
// operation applies to.  For weighted sets the nested operation targets the
// element's integer weight.
func matchTypes(typ document.DataType) (elemType, targetType document.DataType, err error) {
	switch t := typ.(type) {
	case *document.ArrayType:
		return document.TypeInt, t.Element, nil
	case *document.MapType:
		return t.Key, t.Value, nil
	case *document.WeightedSetType:
		return t.Element, document.TypeInt, nil
	default:
		return nil, nil, fmt.Errorf("%w: 'match' is not applicable to a field of type '%s'", ErrUnsupportedOperator, typ.Name())
	}
}

func readMatchOperation(r *tokenReader, targetType document.DataType, op string) (document.ValueUpdate, error) {
	switch op {
	case "assign":
		return readAssign(r, targetType)
	case "increment", "decrement", "multiply", "divide":
		return readArithmetic(r, op)
	default:
		return nil, fmt.Errorf("%w: invalid operation '%s' in match update", ErrUnsupportedOperator, op)
	}
}

func readArithmetic(r *tokenReader, op string) (document.ValueUpdate, error) {
	var arith document.ArithmeticOp
	switch op {
	case "increment":
		arith = document.OpAdd
	case "decrement":
		arith = document.OpSub
	case "multiply":
		arith = document.OpMul
	case "divide":
		arith = document.OpDiv
	}
	s, err := r.scalar()
	if err != nil {
		return nil, err
	}
	if s.Type != token.Number && s.Type != token.String {
		return nil, fmt.Errorf("%w: expected a numeric operand, got %s", ErrTypeMismatch, describe(s))
	}
	operand, err := strconv.ParseFloat(numericText(s), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return document.Arithmetic{Op: arith, Operand: operand}, nil
}

// readModify decodes a tensor modify update.  Only tensor fields accept it.
func readModify(r *tokenReader, fieldName string, typ document.DataType) (document.ValueUpdate, error) {
	tensorType, ok := typ.(*document.TensorType)
	if !ok {
		return nil, fmt.Errorf("%w: a modify update can only be applied to tensor fields. Field '%s' is of type '%s'",
			ErrUnsupportedOperator, fieldName, typ.Name())
	}
	if err := r.beginObject(); err != nil {
		return nil, err
	}
	var op document.TensorModifyOp
	var haveOp bool
	var cells *document.Tensor
	for {
		name, ok, err := r.nextKey()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch name {
		case "operation":
			op, err = modifyOperation(r)
			haveOp = err == nil
		case "cells":
			cells = document.NewTensor(tensorType)
			err = readTensorCells(r, tensorType, cells)
		default:
			err = fmt.Errorf("%w: unknown JSON string '%s' in modify update", ErrStructure, name)
		}
		if err != nil {
			return nil, err
		}
	}
	if !haveOp {
		return nil, fmt.Errorf("%w: modify update does not contain an operation", ErrStructure)
	}
	if cells == nil {
		return nil, fmt.Errorf("%w: modify update does not contain tensor cells", ErrStructure)
	}
	return document.TensorModify{Op: op, Cells: cells}, nil
}

func modifyOperation(r *tokenReader) (document.TensorModifyOp, error) {
	s, err := r.scalar()
	if err != nil {
		return 0, err
	}
	if s.Type != token.String {
		return 0, fmt.Errorf("%w: expected an operation name, got %s", ErrStructure, describe(s))
	}
	switch strings.ToLower(s.Text()) {
	case "replace":
		return document.TensorModifyReplace, nil
	case "add":
		return document.TensorModifyAdd, nil
	case "multiply":
		return document.TensorModifyMultiply, nil
	default:
		return 0, fmt.Errorf("%w: unknown operation '%s' in modify update", ErrStructure, s.Text())
	}
}
