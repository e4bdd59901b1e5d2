package money

import "testing"

func TestParseMinor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain decimal", input: "50.00", want: 5000},
		{name: "thousands separators", input: "1,234.56", want: 123456},
		{name: "no decimal part", input: "75", want: 7500},
		{name: "single decimal digit", input: "3.5", want: 350},
		{name: "zero", input: "0.00", want: 0},
		{name: "surrounding spaces", input: "  12.30 ", want: 1230},
		{name: "negative rejected", input: "-5.00", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
		{name: "garbage rejected", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMinor(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMinor(%q) expected error, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMinor(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMinor(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatMinor(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{5000, "50.00"},
		{123456, "1234.56"},
		{5, "0.05"},
		{0, "0.00"},
		{-1230, "-12.30"},
	}

	for _, tt := range tests {
		if got := FormatMinor(tt.minor); got != tt.want {
			t.Errorf("FormatMinor(%d) = %q, want %q", tt.minor, got, tt.want)
		}
	}
}
