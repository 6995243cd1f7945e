package util

import "testing"

func TestIsSafeRelPath(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"ok.txt", true},
		{"a/b/c.txt", true},
		{"", false},
		{"/etc/passwd", false},
		{"../etc/passwd", false},
		{"a/../b", false},
		{"a/./b", false},
		{"a\\b", false},
		{"a//b", false},
		{".", false},
		{"..", false},
	}
	for _, c := range cases {
		if got := IsSafeRelPath(c.path); got != c.want {
			t.Errorf("IsSafeRelPath(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}
