package models

import "testing"

func TestNormalizeEmail(t *testing.T) {
	tests := map[string]string{
		"user@example.com":       "user@example.com",
		"  User@Example.COM \n": "user@example.com",
		"":                       "",
	}
	for in, want := range tests {
		if got := NormalizeEmail(in); got != want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
