package canonical

import (
	"testing"
)

func TestSerializeSortsKeysAtEveryLevel(t *testing.T) {
	t.Parallel()

	v := Object(map[string]Value{
		"b": Number(1),
		"a": Object(map[string]Value{
			"z": Bool(true),
			"y": String("x"),
		}),
	})
	got := Serialize(v)
	want := `{"a":{"y":"x","z":true},"b":1}`
	if got != want {
		t.Fatalf("serialize mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestSerializeIsKeyOrderIndependent(t *testing.T) {
	t.Parallel()

	a, err := FromJSON([]byte(`{"first":1,"second":{"inner":[1,2,3]},"third":"t"}`))
	if err != nil {
		t.Fatalf("parse a: %v", err)
	}
	b, err := FromJSON([]byte(`{"third":"t","second":{"inner":[1,2,3]},"first":1}`))
	if err != nil {
		t.Fatalf("parse b: %v", err)
	}
	if Serialize(a) != Serialize(b) {
		t.Fatalf("expected identical canonical form, got %s and %s", Serialize(a), Serialize(b))
	}
}

func TestSerializeOmitsNullObjectFields(t *testing.T) {
	t.Parallel()

	explicit, err := FromJSON([]byte(`{"keep":"v","drop":null}`))
	if err != nil {
		t.Fatalf("parse explicit: %v", err)
	}
	absent, err := FromJSON([]byte(`{"keep":"v"}`))
	if err != nil {
		t.Fatalf("parse absent: %v", err)
	}
	if Serialize(explicit) != Serialize(absent) {
		t.Fatalf("explicit null and absent field should serialize identically: %s vs %s",
			Serialize(explicit), Serialize(absent))
	}
	if SHA256Hex(Serialize(explicit)) != SHA256Hex(Serialize(absent)) {
		t.Fatalf("hashes should match for explicit null and absent field")
	}
}

func TestSerializeKeepsNullArrayElements(t *testing.T) {
	t.Parallel()

	v := Array(String("a"), Null(), Number(2))
	if got, want := Serialize(v), `["a",null,2]`; got != want {
		t.Fatalf("array serialize mismatch: got %s want %s", got, want)
	}
}

func TestSerializeStringEscaping(t *testing.T) {
	t.Parallel()

	v := Object(map[string]Value{
		"text": String("line\n\"quote\"\ttab"),
	})
	want := `{"text":"line\n\"quote\"\ttab"}`
	if got := Serialize(v); got != want {
		t.Fatalf("escaping mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestSerializeNumberFormats(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   float64
		want string
	}{
		{name: "integer", in: 42, want: "42"},
		{name: "negative", in: -7, want: "-7"},
		{name: "fraction", in: 0.5, want: "0.5"},
		{name: "zero", in: 0, want: "0"},
		{name: "large", in: 1e21, want: "1e+21"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Serialize(Number(tc.in)); got != tc.want {
				t.Fatalf("number %v: got %s want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestFromJSONRejectsInvalidPayloads(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "{", `{"a":}`} {
		if _, err := FromJSON([]byte(raw)); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestFromAnyRoundTrip(t *testing.T) {
	t.Parallel()

	v, err := FromAny(map[string]any{
		"nested": map[string]any{"flag": true},
		"items":  []any{1.0, "two", nil},
		"gone":   nil,
	})
	if err != nil {
		t.Fatalf("from any: %v", err)
	}
	want := `{"items":[1,"two",null],"nested":{"flag":true}}`
	if got := Serialize(v); got != want {
		t.Fatalf("from any mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestHashWithSaltChangesWithSaltAndValue(t *testing.T) {
	t.Parallel()

	base := HashWithSalt("salt-a", "10.0.0.1")
	if base == HashWithSalt("salt-b", "10.0.0.1") {
		t.Fatalf("different salts must produce different hashes")
	}
	if base == HashWithSalt("salt-a", "10.0.0.2") {
		t.Fatalf("different values must produce different hashes")
	}
	if base != HashWithSalt("salt-a", "10.0.0.1") {
		t.Fatalf("same salt and value must be deterministic")
	}
	if len(base) != 64 {
		t.Fatalf("expected 64-char hex digest, got %d chars", len(base))
	}
}
