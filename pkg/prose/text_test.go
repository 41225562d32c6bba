package prose

import "testing"

func TestEscapeMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"underscore", "a_b", `a\_b`},
		{"backtick", "a`b", "a\\`b"},
		{"asterisk", "a*b", `a\*b`},
		{"hash", "a#b", `a\#b`},
		{"backslash", `a\b`, `a\\b`},
		{"newline", "a\nb", `a\\nb`},
		{"mixed", "_*#", `\_\*\#`},
		{"clean", "plain text", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeMarkup(tt.in); got != tt.want {
				t.Errorf("EscapeMarkup(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestJoinList(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{"empty", nil, ""},
		{"single", []string{"X"}, "X"},
		{"pair", []string{"a", "b"}, "a, and b"},
		{"triple", []string{"X", "Y", "Z"}, "X, Y, and Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinList(tt.items); got != tt.want {
				t.Errorf("JoinList(%v) = %q, want %q", tt.items, got, tt.want)
			}
		})
	}
}
