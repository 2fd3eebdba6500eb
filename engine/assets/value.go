package assets

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
)

type ValueKind uint8

const (
	NullValue ValueKind = iota
	StringValue
	IntegerValue
	FloatValue
	BoolValue
	BytesValue
	ArrayValue
	ObjectValue
)

func (k ValueKind) String() string {
	switch k {
	case NullValue:
		return "null"
	case StringValue:
		return "string"
	case IntegerValue:
		return "integer"
	case FloatValue:
		return "float"
	case BoolValue:
		return "bool"
	case BytesValue:
		return "bytes"
	case ArrayValue:
		return "array"
	case ObjectValue:
		return "object"
	default:
		return fmt.Sprintf("ValueKind(%d)", k)
	}
}

// Value is one property of a raw asset. Only the field matching Kind is set.
type Value struct {
	Kind   ValueKind
	Str    string
	Int    int64
	Float  float64
	Bool   bool
	Bytes  []byte
	Array  []Value
	Object map[string]Value
}

func Null() Value { return Value{} }
func String(s string) Value { return Value{Kind: StringValue, Str: s} }
func Integer(i int64) Value { return Value{Kind: IntegerValue, Int: i} }
func Float(f float64) Value { return Value{Kind: FloatValue, Float: f} }
func Bool(b bool) Value { return Value{Kind: BoolValue, Bool: b} }
func Bytes(b []byte) Value { return Value{Kind: BytesValue, Bytes: b} }
func Array(v ...Value) Value { return Value{Kind: ArrayValue, Array: v} }
func Object(m map[string]Value) Value { return Value{Kind: ObjectValue, Object: m} }

func Strings(s []string) Value {
	out := make([]Value, len(s))
	for i, v := range s {
		out[i] = String(v)
	}
	return Array(out...)
}

func (v Value) IsNull() bool {
	return v.Kind == NullValue
}

func (v Value) AsString() (string, bool) {
	switch v.Kind {
	case StringValue:
		return v.Str, true
	case IntegerValue:
		return strconv.FormatInt(v.Int, 10), true
	case FloatValue:
		return strconv.FormatFloat(v.Float, 'g', -1, 64), true
	case BoolValue:
		return strconv.FormatBool(v.Bool), true
	default:
		return "", false
	}
}

func (v Value) AsInt() (int64, bool) {
	switch v.Kind {
	case IntegerValue:
		return v.Int, true
	case FloatValue:
		if v.Float != math.Trunc(v.Float) {
			return 0, false
		}
		return int64(v.Float), true
	case BoolValue:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case StringValue:
		i, err := strconv.ParseInt(v.Str, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case FloatValue:
		return v.Float, true
	case IntegerValue:
		return float64(v.Int), true
	case StringValue:
		f, err := strconv.ParseFloat(v.Str, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func (v Value) AsBool() (bool, bool) {
	switch v.Kind {
	case BoolValue:
		return v.Bool, true
	case IntegerValue:
		return v.Int != 0, true
	case StringValue:
		b, err := strconv.ParseBool(v.Str)
		return b, err == nil
	default:
		return false, false
	}
}

// AsBytes accepts raw bytes, an array of byte-sized integers, or a base64 string.
func (v Value) AsBytes() ([]byte, bool) {
	switch v.Kind {
	case BytesValue:
		return v.Bytes, true
	case ArrayValue:
		out := make([]byte, len(v.Array))
		for i, e := range v.Array {
			n, ok := e.AsInt()
			if !ok || n < 0 || n > 255 {
				return nil, false
			}
			out[i] = byte(n)
		}
		return out, true
	case StringValue:
		b, err := base64.StdEncoding.DecodeString(v.Str)
		return b, err == nil
	default:
		return nil, false
	}
}

func (v Value) AsStrings() ([]string, bool) {
	if v.Kind != ArrayValue {
		return nil, false
	}
	out := make([]string, len(v.Array))
	for i, e := range v.Array {
		s, ok := e.AsString()
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

// Interface converts the value into plain Go values: string, int64, float64,
// bool, []byte, []interface{} or map[string]interface{}.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case StringValue:
		return v.Str
	case IntegerValue:
		return v.Int
	case FloatValue:
		return v.Float
	case BoolValue:
		return v.Bool
	case BytesValue:
		return v.Bytes
	case ArrayValue:
		out := make([]interface{}, len(v.Array))
		for i, e := range v.Array {
			out[i] = e.Interface()
		}
		return out
	case ObjectValue:
		out := make(map[string]interface{}, len(v.Object))
		for k, e := range v.Object {
			out[k] = e.Interface()
		}
		return out
	default:
		return nil
	}
}

// ValueOf is the inverse of Interface. Unsupported types yield an error.
func ValueOf(i interface{}) (Value, error) {
	switch t := i.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Integer(int64(t)), nil
	case int32:
		return Integer(int64(t)), nil
	case int64:
		return Integer(t), nil
	case uint8:
		return Integer(int64(t)), nil
	case uint32:
		return Integer(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case []byte:
		return Bytes(t), nil
	case []string:
		return Strings(t), nil
	case []interface{}:
		out := make([]Value, len(t))
		for idx, e := range t {
			v, err := ValueOf(e)
			if err != nil {
				return Null(), err
			}
			out[idx] = v
		}
		return Array(out...), nil
	case map[string]interface{}:
		out := make(map[string]Value, len(t))
		for k, e := range t {
			v, err := ValueOf(e)
			if err != nil {
				return Null(), err
			}
			out[k] = v
		}
		return Object(out), nil
	default:
		return Null(), fmt.Errorf("unsupported property type %T", i)
	}
}
