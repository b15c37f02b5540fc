/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: value.go
Description: Generic value tree produced by the sample parsers. A Value is one of null,
bool, number, string, array or object. Object members keep their source order so the
inference engine can record fields in first-seen order.
*/

package value

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Kind identifies the JSON kind of a Value
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// String returns the JSON name of the kind
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Member is one key/value pair of an object, in source order
type Member struct {
	Key   string
	Value *Value
}

// Value is a node of a parsed sample
type Value struct {
	Kind    Kind
	Bool    bool     // Bool payload
	Number  string   // Number literal as written in the source
	Float   bool     // Number has a fraction or exponent
	Str     string   // String payload
	Items   []*Value // Array elements
	Members []Member // Object members in source order
}

// NewNull returns a null value
func NewNull() *Value { return &Value{Kind: Null} }

// NewBool returns a bool value
func NewBool(b bool) *Value { return &Value{Kind: Bool, Bool: b} }

// NewString returns a string value
func NewString(s string) *Value { return &Value{Kind: String, Str: s} }

// NewInt returns an integral number value
func NewInt(i int64) *Value {
	return &Value{Kind: Number, Number: strconv.FormatInt(i, 10)}
}

// NewFloat returns a fractional number value
func NewFloat(f float64) *Value {
	return &Value{Kind: Number, Number: strconv.FormatFloat(f, 'g', -1, 64), Float: true}
}

// NewArray returns an array value
func NewArray(items ...*Value) *Value {
	return &Value{Kind: Array, Items: items}
}

// NewObject returns an object value with the given members
func NewObject(members ...Member) *Value {
	return &Value{Kind: Object, Members: members}
}

// Get returns the member value for key, or nil
func (v *Value) Get(key string) *Value {
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// FromAny converts a decoded Go value (as produced by encoding/json into interface{})
// into a Value. Map keys are sorted because Go maps carry no order.
func FromAny(v interface{}) (*Value, error) {
	switch val := v.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(val), nil
	case string:
		return NewString(val), nil
	case int:
		return NewInt(int64(val)), nil
	case int64:
		return NewInt(val), nil
	case float64:
		if val == float64(int64(val)) {
			return NewInt(int64(val)), nil
		}
		return NewFloat(val), nil
	case []interface{}:
		out := NewArray()
		for i, item := range val {
			child, err := FromAny(item)
			if err != nil {
				return nil, errors.Wrapf(err, "index %d", i)
			}
			out.Items = append(out.Items, child)
		}
		return out, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := NewObject()
		for _, k := range keys {
			child, err := FromAny(val[k])
			if err != nil {
				return nil, errors.Wrapf(err, "key %q", k)
			}
			out.Members = append(out.Members, Member{Key: k, Value: child})
		}
		return out, nil
	default:
		return nil, errors.Newf("unsupported Go value of type %T", v)
	}
}
