package canonical

import (
	"encoding/json"
	"fmt"
)

// Kind enumerates the closed set of structured-value shapes accepted as hash input.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a closed structured value: null, bool, number, string, array or
// object with string keys. Audit diffs and metadata are modeled with this type
// so canonical serialization has exactly one code path.
type Value struct {
	kind    Kind
	boolVal bool
	numVal  float64
	strVal  string
	arrVal  []Value
	objVal  map[string]Value
}

func Null() Value                      { return Value{kind: KindNull} }
func Bool(b bool) Value                { return Value{kind: KindBool, boolVal: b} }
func Number(f float64) Value           { return Value{kind: KindNumber, numVal: f} }
func String(s string) Value            { return Value{kind: KindString, strVal: s} }
func Array(items ...Value) Value       { return Value{kind: KindArray, arrVal: items} }
func Object(fields map[string]Value) Value {
	return Value{kind: KindObject, objVal: fields}
}

// Kind reports the shape of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the null value. The zero Value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Field returns the named object field and whether it is present.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	f, ok := v.objVal[name]
	return f, ok
}

// FromAny converts decoded-JSON shapes (nil, bool, float64, json.Number,
// string, []any, map[string]any and the common integer types) into a Value.
func FromAny(raw any) (Value, error) {
	switch val := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(val), nil
	case float64:
		return Number(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("canonical: parse number %q: %w", val.String(), err)
		}
		return Number(f), nil
	case int:
		return Number(float64(val)), nil
	case int64:
		return Number(float64(val)), nil
	case string:
		return String(val), nil
	case []any:
		items := make([]Value, 0, len(val))
		for _, item := range val {
			cv, err := FromAny(item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, cv)
		}
		return Array(items...), nil
	case map[string]any:
		fields := make(map[string]Value, len(val))
		for k, item := range val {
			cv, err := FromAny(item)
			if err != nil {
				return Value{}, err
			}
			fields[k] = cv
		}
		return Object(fields), nil
	default:
		return Value{}, fmt.Errorf("canonical: unsupported value type %T", raw)
	}
}

// FromJSON decodes arbitrary JSON into a Value.
func FromJSON(raw []byte) (Value, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Value{}, fmt.Errorf("canonical: decode json: %w", err)
	}
	return FromAny(decoded)
}

// MarshalJSON emits the canonical serialization, so a value stored as JSON and
// read back always re-serializes to the same bytes.
func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(Serialize(v)), nil
}

// UnmarshalJSON decodes arbitrary JSON into the receiver.
func (v *Value) UnmarshalJSON(raw []byte) error {
	decoded, err := FromJSON(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}
