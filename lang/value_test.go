package lang

import "testing"

// TestStr_Conversions verifies textual conversion of splice values.
func TestStr_Conversions(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "absent", input: nil, want: ""},
		{name: "string", input: "as-is", want: "as-is"},
		{name: "bool", input: true, want: "true"},
		{name: "int", input: -7, want: "-7"},
		{name: "float drops exponent", input: 1.5, want: "1.5"},
		{name: "float integral", input: 2.0, want: "2"},
		{
			name:  "slice",
			input: []any{1, "two", nil},
			want:  "[1, two, ]",
		},
		{
			name:  "map sorts keys",
			input: map[string]any{"b": 2, "a": 1},
			want:  "{a: 1, b: 2}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Str(tt.input); got != tt.want {
				t.Errorf("Str(%#v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestTruthy verifies conditional coercion.
func TestTruthy(t *testing.T) {
	truthy := []any{true, 1, -1, "x", []any{nil}, map[string]any{"k": 0}}
	falsy := []any{nil, false, 0, 0.0, "", []any{}, map[string]any{}}

	for _, v := range truthy {
		if !Truthy(v) {
			t.Errorf("Truthy(%#v) = false, want true", v)
		}
	}

	for _, v := range falsy {
		if Truthy(v) {
			t.Errorf("Truthy(%#v) = true, want false", v)
		}
	}
}

// TestIterate verifies loop element production.
func TestIterate(t *testing.T) {
	elems, err := iterate(3)
	if err != nil {
		t.Fatalf("iterate(3) error: %v", err)
	}

	if len(elems) != 3 || elems[0] != 0 || elems[2] != 2 {
		t.Errorf("iterate(3) = %v, want [0 1 2]", elems)
	}

	elems, err = iterate(map[string]any{"b": 1, "a": 2})
	if err != nil {
		t.Fatalf("iterate(map) error: %v", err)
	}

	if len(elems) != 2 || elems[0] != "a" || elems[1] != "b" {
		t.Errorf("iterate(map) = %v, want sorted keys [a b]", elems)
	}

	if _, err := iterate(1.5); err == nil {
		t.Error("iterate(1.5) succeeded, want error")
	}
}
