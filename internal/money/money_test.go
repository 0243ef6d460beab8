package money

import (
	"errors"
	"testing"

	"github.com/spendware/walletd/internal/errs"
)

func TestParse_ValidInputs(t *testing.T) {
	cases := []struct {
		in    string
		minor int64
	}{
		{"0", 0},
		{"120", 12000},
		{"120.5", 12050},
		{"120.50", 12050},
		{"0.01", 1},
		{".99", 99},
		{"+3.10", 310},
		{" 42 ", 4200},
	}
	for _, c := range cases {
		m, err := Parse("USD", c.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.in, err)
		}
		if got := m.MinorUnits(); got != c.minor {
			t.Fatalf("Parse(%q) = %d minor units, want %d", c.in, got, c.minor)
		}
		if m.Currency() != "USD" {
			t.Fatalf("Parse(%q) currency = %q", c.in, m.Currency())
		}
	}
}

func TestParse_RejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "-5", "1.234", "abc", "1.2.3", "1,50", ".", "+"} {
		if _, err := Parse("USD", in); !errors.Is(err, errs.ErrInvalidAmount) {
			t.Fatalf("Parse(%q) err = %v, want ErrInvalidAmount", in, err)
		}
	}
}

func TestParsePositive_RejectsZero(t *testing.T) {
	if _, err := ParsePositive("USD", "0"); !errors.Is(err, errs.ErrInvalidAmount) {
		t.Fatalf("ParsePositive(0) err = %v, want ErrInvalidAmount", err)
	}
	if _, err := ParsePositive("USD", "0.00"); !errors.Is(err, errs.ErrInvalidAmount) {
		t.Fatalf("ParsePositive(0.00) err = %v, want ErrInvalidAmount", err)
	}
	m, err := ParsePositive("USD", "0.01")
	if err != nil {
		t.Fatalf("ParsePositive(0.01): %v", err)
	}
	if m.MinorUnits() != 1 {
		t.Fatalf("ParsePositive(0.01) = %d, want 1", m.MinorUnits())
	}
}

func TestArithmeticAndSign(t *testing.T) {
	a := MustFromMinorUnits("USD", 500)
	b := MustFromMinorUnits("USD", 720)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sum.MinorUnits() != 1220 {
		t.Fatalf("Add = %d, want 1220", sum.MinorUnits())
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if diff.MinorUnits() != -220 {
		t.Fatalf("Sub = %d, want -220", diff.MinorUnits())
	}
	if !diff.IsNegative() {
		t.Fatal("Sub result should be negative")
	}

	if got := a.Neg().MinorUnits(); got != -500 {
		t.Fatalf("Neg = %d, want -500", got)
	}
	if !Zero("USD").IsZero() {
		t.Fatal("Zero should be zero")
	}
}

func TestMixedCurrencyRejected(t *testing.T) {
	usd := MustFromMinorUnits("USD", 100)
	eur := MustFromMinorUnits("EUR", 100)
	if _, err := usd.Add(eur); !errors.Is(err, errs.ErrInvalidAmount) {
		t.Fatalf("Add across currencies err = %v, want ErrInvalidAmount", err)
	}
}

func TestFormatting(t *testing.T) {
	m := MustFromMinorUnits("USD", 12050)
	if got := m.String(); got != "120.50" {
		t.Fatalf("String = %q, want 120.50", got)
	}
	if got := m.Format("$"); got != "$120.50" {
		t.Fatalf("Format = %q, want $120.50", got)
	}
	if got := m.Neg().Format("$"); got != "-$120.50" {
		t.Fatalf("negative Format = %q, want -$120.50", got)
	}
	if got := MustFromMinorUnits("USD", 7).String(); got != "0.07" {
		t.Fatalf("String(7) = %q, want 0.07", got)
	}
}
