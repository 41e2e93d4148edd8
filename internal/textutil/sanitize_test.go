package textutil

import "testing"

func TestSanitizeToken(t *testing.T) {
	cases := map[string]string{
		"script_1712_abc123": "script_1712_abc123",
		"../../etc/passwd":   "etc_passwd",
		"Mixed Case":         "mixed_case",
		"   ":                "unknown",
		"///":                "unknown",
	}
	for in, want := range cases {
		if got := SanitizeToken(in); got != want {
			t.Fatalf("SanitizeToken(%q) = %q, want %q", in, got, want)
		}
	}
}
