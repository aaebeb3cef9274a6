package cmd

import (
	"testing"
)

func TestFlagConfigValue(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"int", 42, 42},
		{"float", 1.5, 1.5},
		{"string", "text", "text"},
		{"empty_string_dropped", "", nil},
		{"strings", []string{"a", "b"}, []string{"a", "b"}},
		{"empty_strings_dropped", []string{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := flagConfigValue(tt.val)

			switch want := tt.want.(type) {
			case nil:
				if got != nil {
					t.Errorf("flagConfigValue(%v) = %v, want nil", tt.val, got)
				}

			case []string:
				gs, ok := got.([]string)
				if !ok || len(gs) != len(want) {
					t.Fatalf("flagConfigValue(%v) = %v, want %v", tt.val, got, want)
				}

				for i := range want {
					if gs[i] != want[i] {
						t.Errorf("flagConfigValue(%v)[%d] = %q, want %q",
							tt.val, i, gs[i], want[i])
					}
				}

			default:
				if got != tt.want {
					t.Errorf("flagConfigValue(%v) = %v, want %v", tt.val, got, tt.want)
				}
			}
		})
	}
}
