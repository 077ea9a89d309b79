package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/docstream-io/docstream/document"
)

func operationKind(op document.Operation) string {
	switch op.(type) {
	case *document.DocumentPut:
		return "put"
	case *document.DocumentUpdate:
		return "update"
	case *document.DocumentRemove:
		return "remove"
	default:
		return "unknown"
	}
}

func printOperation(w io.Writer, op document.Operation, colors bool) error {
	data, err := json.MarshalIndent(renderOperation(op), "", "  ")
	if err != nil {
		return err
	}
	if colors {
		if _, err := fmt.Fprintf(w, "\x1b[36m%s\x1b[0m %s\n", operationKind(op), data); err != nil {
			return err
		}
		return nil
	}
	_, err = fmt.Fprintf(w, "%s %s\n", operationKind(op), data)
	return err
}

func renderOperation(op document.Operation) map[string]interface{} {
	out := map[string]interface{}{
		operationKind(op): op.DocumentId().String(),
	}
	if c := op.Condition(); c.IsSet() {
		out["condition"] = string(c)
	}
	switch o := op.(type) {
	case *document.DocumentPut:
		fields := map[string]interface{}{}
		for name, v := range o.Fields {
			fields[name] = renderValue(v)
		}
		out["fields"] = fields
	case *document.DocumentUpdate:
		if o.CreateIfNonExistent {
			out["create"] = true
		}
		fields := map[string]interface{}{}
		for _, fu := range o.FieldUpdates {
			updates := make([]interface{}, len(fu.Updates))
			for i, u := range fu.Updates {
				updates[i] = renderUpdate(u)
			}
			fields[fu.Field] = updates
		}
		out["fields"] = fields
	}
	return out
}

func renderValue(v document.FieldValue) interface{} {
	switch val := v.(type) {
	case document.StringValue:
		return string(val)
	case document.IntValue:
		return int32(val)
	case document.LongValue:
		return int64(val)
	case document.ByteValue:
		return int8(val)
	case document.FloatValue:
		return float32(val)
	case document.DoubleValue:
		return float64(val)
	case document.BoolValue:
		return bool(val)
	case document.RawValue:
		return base64.StdEncoding.EncodeToString(val)
	case *document.StructValue:
		out := map[string]interface{}{}
		for _, f := range val.Fields() {
			out[f.Name] = renderValue(f.Value)
		}
		return out
	case document.ArrayValue:
		out := make([]interface{}, len(val))
		for i, elem := range val {
			out[i] = renderValue(elem)
		}
		return out
	case document.MapValue:
		out := map[string]interface{}{}
		for k, elem := range val {
			out[keyString(k)] = renderValue(elem)
		}
		return out
	case document.WeightedSetValue:
		out := map[string]interface{}{}
		for k, weight := range val {
			out[keyString(k)] = weight
		}
		return out
	case document.TensorValue:
		cells := val.Tensor.Cells()
		out := make([]interface{}, len(cells))
		for i, c := range cells {
			out[i] = map[string]interface{}{"address": c.Address, "value": c.Value}
		}
		return map[string]interface{}{"type": val.Tensor.Type().Name(), "cells": out}
	case document.PredicateValue:
		return val.Expr.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func renderUpdate(u document.ValueUpdate) interface{} {
	switch up := u.(type) {
	case document.Assign:
		return map[string]interface{}{"assign": renderValue(up.Value)}
	case document.Clear:
		return map[string]interface{}{"clear": true}
	case document.Add:
		return map[string]interface{}{"add": renderValue(up.Value), "weight": up.Weight}
	case document.Remove:
		return map[string]interface{}{"remove": renderValue(up.Value)}
	case document.Match:
		return map[string]interface{}{
			"match": map[string]interface{}{
				"element":   renderValue(up.Element),
				"operation": renderUpdate(up.Update),
			},
		}
	case document.Arithmetic:
		return map[string]interface{}{"arithmetic": up.Op.String(), "operand": up.Operand}
	case document.TensorModify:
		return map[string]interface{}{"modify": up.Op.String(), "cells": renderValue(document.TensorValue{Tensor: up.Cells})}
	default:
		return fmt.Sprintf("%v", u)
	}
}

// keyString renders a map key or weighted set element as a JSON object key.
func keyString(v document.FieldValue) string {
	switch val := v.(type) {
	case document.StringValue:
		return string(val)
	case document.IntValue:
		return strconv.FormatInt(int64(val), 10)
	case document.LongValue:
		return strconv.FormatInt(int64(val), 10)
	case document.ByteValue:
		return strconv.FormatInt(int64(val), 10)
	case document.BoolValue:
		return strconv.FormatBool(bool(val))
	default:
		return fmt.Sprintf("%v", v)
	}
}
