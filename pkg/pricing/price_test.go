package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatter_Amount(t *testing.T) {
	f := Formatter{Currency: "EGP"}

	tests := []struct {
		value string
		want  string
	}{
		{"0", "Free"},
		{"0.00", "Free"},
		{"12.5", "12.50 EGP"},
		{"20", "20.00 EGP"},
		{"99.999", "100.00 EGP"},
	}

	for _, tt := range tests {
		v := decimal.RequireFromString(tt.value)
		if got := f.Amount(v); got != tt.want {
			t.Errorf("Amount(%s) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatter_Format_Pair(t *testing.T) {
	f := Formatter{Currency: "EGP"}

	p := Price{
		Kind:        KindPair,
		Single:      decimal.NewFromInt(20),
		Double:      decimal.NewFromInt(30),
		SingleLabel: DefaultSingleLabel,
		DoubleLabel: DefaultDoubleLabel,
	}

	want := "20.00 EGP (Single) / 30.00 EGP (Double)"
	if got := f.Format(p); got != want {
		t.Errorf("Format(pair) = %q, want %q", got, want)
	}
}

func TestFormatter_Format_PairCustomLabels(t *testing.T) {
	f := Formatter{Currency: "EGP"}

	p := Price{
		Kind:        KindPair,
		Single:      decimal.NewFromInt(55),
		Double:      decimal.NewFromInt(95),
		SingleLabel: "3 PCS",
		DoubleLabel: "6 PCS",
	}

	want := "55.00 EGP (3 PCS) / 95.00 EGP (6 PCS)"
	if got := f.Format(p); got != want {
		t.Errorf("Format(pair) = %q, want %q", got, want)
	}
}

func TestFormatter_Format_Range(t *testing.T) {
	f := Formatter{Currency: "EGP"}

	p := Price{
		Kind: KindRange,
		Min:  decimal.NewFromInt(15),
		Max:  decimal.RequireFromString("42.5"),
	}

	want := "15.00 EGP - 42.50 EGP"
	if got := f.Format(p); got != want {
		t.Errorf("Format(range) = %q, want %q", got, want)
	}
}

func TestFormatter_Format_Scalar(t *testing.T) {
	f := Formatter{Currency: "EGP"}

	if got := f.Format(Scalar(decimal.Zero, false)); got != "Free" {
		t.Errorf("Format(0) = %q, want %q", got, "Free")
	}
	if got := f.Format(Scalar(decimal.NewFromInt(35), true)); got != "35.00 EGP" {
		t.Errorf("Format(35) = %q, want %q", got, "35.00 EGP")
	}
}
