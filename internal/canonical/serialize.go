package canonical

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Serialize renders a Value as one deterministic string: object keys are sorted
// by code point at every nesting level, arrays keep their order, strings use
// standard JSON escaping. Serialize(a) == Serialize(b) exactly when a and b are
// structurally equal up to object-key order.
//
// Null-valued object fields are omitted, so an explicit null and an absent
// field serialize (and therefore hash) identically. Array elements are never
// dropped; a null element is positional content.
func Serialize(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		if v.boolVal {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindNumber:
		b.WriteString(formatNumber(v.numVal))
	case KindString:
		writeString(b, v.strVal)
	case KindArray:
		b.WriteByte('[')
		for i, item := range v.arrVal {
			if i > 0 {
				b.WriteByte(',')
			}
			writeValue(b, item)
		}
		b.WriteByte(']')
	case KindObject:
		keys := make([]string, 0, len(v.objVal))
		for k, field := range v.objVal {
			if field.kind == KindNull {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			writeString(b, k)
			b.WriteByte(':')
			writeValue(b, v.objVal[k])
		}
		b.WriteByte('}')
	}
}

func writeString(b *strings.Builder, s string) {
	encoded, err := json.Marshal(s)
	if err != nil {
		// json.Marshal on a string cannot fail; guard anyway.
		b.WriteString(`""`)
		return
	}
	b.Write(encoded)
}

// formatNumber matches encoding/json float formatting so values that travel
// through standard JSON round-trips keep the same canonical form.
func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	out := strconv.AppendFloat(nil, f, format, -1, 64)
	if format == 'e' {
		// strip the zero-padded exponent the same way encoding/json does
		if n := len(out); n >= 4 && out[n-4] == 'e' && out[n-3] == '-' && out[n-2] == '0' {
			out[n-2] = out[n-1]
			out = out[:n-1]
		}
	}
	return string(out)
}
