package schema

import "testing"

func TestAccepts(t *testing.T) {
	cases := []struct {
		got, want string
		ok        bool
	}{
		{"schema.step/v1", "schema.step/v1", true},
		{"schema.step/v1.2", "schema.step/v1", true},
		{"schema.step/v2", "schema.step/v1", false},
		{"schema.error/v1", "schema.step/v1", false},
	}
	for _, c := range cases {
		if got := Accepts(c.got, c.want); got != c.ok {
			t.Errorf("Accepts(%q, %q) = %v, want %v", c.got, c.want, got, c.ok)
		}
	}
}

func TestMarshalDeterministicSortsKeys(t *testing.T) {
	v := map[string]any{"z": 1, "a": 2, "m": map[string]any{"y": 1, "b": 2}}
	data, err := MarshalDeterministic(v)
	if err != nil {
		t.Fatalf("MarshalDeterministic: %v", err)
	}
	want := `{"a":2,"m":{"b":2,"y":1},"z":1}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestMarshalDeterministicIsStableAcrossCalls(t *testing.T) {
	v := map[string]any{"b": 1, "a": 2}
	first, _ := MarshalDeterministic(v)
	second, _ := MarshalDeterministic(v)
	if string(first) != string(second) {
		t.Errorf("expected stable output, got %s vs %s", first, second)
	}
}
