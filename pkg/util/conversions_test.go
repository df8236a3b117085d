package util

import "testing"

func TestIsSnowflake(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"587806838716891147", true},
		{" 123 ", true},
		{"", false},
		{"0", false},
		{"12a4", false},
		{"-5", false},
		{"99999999999999999999999", false},
	}

	for _, tt := range tests {
		if got := IsSnowflake(tt.in); got != tt.want {
			t.Errorf("IsSnowflake(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStringToUint64(t *testing.T) {
	n, err := StringToUint64("42")
	if err != nil {
		t.Fatalf("StringToUint64: %v", err)
	}
	if n != 42 {
		t.Fatalf("got %d", n)
	}
	if _, err := StringToUint64("nope"); err == nil {
		t.Fatal("expected error for non-numeric input")
	}
}
