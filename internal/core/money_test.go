package core

import (
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"integer amount", "12", 1200, false},
		{"two decimals", "12.34", 1234, false},
		{"comma separator", "12,34", 1234, false},
		{"one decimal", "12.3", 1230, false},
		{"third decimal rounds up", "12.345", 1235, false},
		{"third decimal rounds down", "12.344", 1234, false},
		{"leading dot", ".50", 50, false},
		{"surrounding spaces", "  7.00  ", 700, false},
		{"large amount", "1000000.00", 100000000, false},
		{"empty", "", 0, true},
		{"zero", "0", 0, true},
		{"zero with decimals", "0.00", 0, true},
		{"negative", "-5.00", 0, true},
		{"explicit plus", "+5.00", 0, true},
		{"letters", "abc", 0, true},
		{"two separators", "1.2.3", 0, true},
		{"spaces inside", "1 2", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDecimalToCents(%q) = %d, want error", tt.input, got)
				} else if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("error = %v, want ErrInvalidAmount", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSignedDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"positive", "150.00", 15000, false},
		{"negative", "-150.00", -15000, false},
		{"explicit plus", "+2.50", 250, false},
		{"zero", "0", 0, false},
		{"zero with decimals", "0.00", 0, false},
		{"negative zero", "-0.00", 0, false},
		{"garbage", "12a", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSignedDecimalToCents(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseSignedDecimalToCents(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSignedDecimalToCents(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSignedDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{105000, "1050.00"},
		{-1234, "-12.34"},
		{5, "0.05"},
		{0, "0.00"},
		{100, "1.00"},
		{-9, "-0.09"},
	}

	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1000}
	b := Money{Cents: 250}

	if got := a.Add(b); got.Cents != 1250 {
		t.Errorf("Add = %d, want 1250", got.Cents)
	}
	if got := a.Sub(b); got.Cents != 750 {
		t.Errorf("Sub = %d, want 750", got.Cents)
	}
	if got := b.Sub(a); got.Cents != -750 {
		t.Errorf("Sub = %d, want -750", got.Cents)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Errorf("positive amount rejected: %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Error("zero amount accepted")
	}
	if err := (Money{Cents: -100}).Validate(); err == nil {
		t.Error("negative amount accepted")
	}
}
