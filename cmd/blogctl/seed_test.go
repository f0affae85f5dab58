package main

import "testing"

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{[]string{"", "b", "c"}, "b"},
		{[]string{"a", "b"}, "a"},
		{[]string{"", ""}, ""},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := firstNonEmpty(tt.in...); got != tt.want {
			t.Errorf("firstNonEmpty(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
