package prose

import "testing"

func TestNumberWord(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "zero"},
		{1, "one"},
		{2, "two"},
		{3, "three"},
		{4, "four"},
		{5, "five"},
		{6, "six"},
		{7, "seven"},
		{8, "eight"},
		{9, "nine"},
		{10, "ten"},
		{-1, "minus one"},
		{-10, "minus ten"},
		{11, "11"},
		{-11, "-11"},
		{100, "100"},
	}
	for _, tt := range tests {
		if got := NumberWord(tt.n); got != tt.want {
			t.Errorf("NumberWord(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
