package models

import (
	"strings"
	"testing"
)

func TestNewTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"single character", "a", false},
		{"normal title", "Buy milk", false},
		{"255 ascii characters", strings.Repeat("x", 255), false},
		{"255 hangul characters", strings.Repeat("가", 255), false},
		{"empty", "", true},
		{"256 characters", strings.Repeat("x", 256), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTitle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewTitle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got.String() != tt.input {
				t.Fatalf("expected %q, got %q", tt.input, got.String())
			}
		})
	}
}
