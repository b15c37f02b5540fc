/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: classify.go
Description: Classification of a single sample. Scalars map directly to their kind, arrays
unify their elements left to right, objects recurse field by field keeping source order.
*/

package inference

import (
	"github.com/kleascm/typeforge/pkg/ir"
	"github.com/kleascm/typeforge/pkg/value"
)

// classify returns the inline type of one value
func classify(v *value.Value) *ir.Type {
	switch v.Kind {
	case value.Null:
		return ir.NewNull()
	case value.Bool:
		return ir.NewScalar(ir.Bool)
	case value.Number:
		if v.Float {
			return ir.NewScalar(ir.Float)
		}
		return ir.NewScalar(ir.Int)
	case value.String:
		return ir.NewScalar(ir.String)
	case value.Array:
		elem := ir.NewUnknown()
		for _, item := range v.Items {
			elem = ir.Unify(elem, classify(item))
		}
		return ir.ArrayOf(elem)
	case value.Object:
		obj := ir.InlineObject()
		for _, m := range v.Members {
			t := classify(m.Value)
			if i := fieldIndex(obj.Fields, m.Key); i >= 0 {
				// repeated key in one object (YAML allows it)
				obj.Fields[i].Type = ir.Unify(obj.Fields[i].Type, t)
				continue
			}
			obj.Fields = append(obj.Fields, ir.Field{Key: m.Key, Type: t})
		}
		return obj
	default:
		return ir.NewUnknown()
	}
}

func fieldIndex(fields []ir.Field, key string) int {
	for i, f := range fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}
