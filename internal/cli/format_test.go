package cli

import (
	"testing"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "€0.00"},
		{5, "€0.05"},
		{-5, "-€0.05"},
		{123456, "€1,234.56"},
		{-100000000, "-€1,000,000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatMoney(core.Cents(tt.cents)); got != tt.want {
				t.Errorf("FormatMoney(%d) = %q, want %q", tt.cents, got, tt.want)
			}
		})
	}
	if got := FormatOptionalMoney(nil); got != "-" {
		t.Errorf("FormatOptionalMoney(nil) = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(decimal.RequireFromString("83.3333")); got != "83.3%" {
		t.Errorf("FormatPercent = %q", got)
	}
	if got := FormatRatio(0.5); got != "50.0%" {
		t.Errorf("FormatRatio = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Festa della città", 10); got != "Festa del…" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("breve", 10); got != "breve" {
		t.Errorf("Truncate = %q", got)
	}
}
