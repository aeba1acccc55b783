package core

import (
	"strings"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{" 2.50 ", "2.5", true},
		{"-1", "-1", true},
		{"+7", "7", true},
		{"0", "0", true},
		{"1,23", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
		{"   ", "", false},
		{"1e3", "1000", true},
		{"999999999999999.99", "999999999999999.99", true},
		{"1e99999999", "", false},
		{"-1e99999999", "", false},
		{"1e-99999999", "", false},
		{"1e15", "", false},
		{"-1000000000000000", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(dec(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseSalary(t *testing.T) {
	if d, err := ParseSalary(""); err != nil || !d.IsZero() {
		t.Fatalf("empty salary = %s, %v", d, err)
	}
	if d, err := ParseSalary("3000"); err != nil || !d.Equal(dec("3000")) {
		t.Fatalf("3000 = %s, %v", d, err)
	}
	for _, in := range []string{"-1", "abc", "1,5"} {
		if _, err := ParseSalary(in); err != ErrInvalidSalary {
			t.Fatalf("%q expected ErrInvalidSalary, got %v", in, err)
		}
	}
}

func TestFormatBRL(t *testing.T) {
	got := FormatBRL(dec("700"))
	if !strings.HasPrefix(got, "R$ ") || !strings.HasSuffix(got, "700,00") {
		t.Fatalf("FormatBRL(700) = %q", got)
	}
	if got := FormatBRL(dec("12.345")); !strings.HasSuffix(got, "12,35") {
		t.Fatalf("FormatBRL(12.345) = %q", got)
	}
	if got := FormatBRL(dec("-15.5")); !strings.Contains(got, "15,50") || !strings.Contains(got, "-") {
		t.Fatalf("FormatBRL(-15.5) = %q", got)
	}
}

func TestFormatBRLExact(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"0", "R$ 0,00"},
		{"-0.001", "R$ 0,00"},
		{"999.999", "R$ 1.000,00"},
		{"1500", "R$ 1.500,00"},
		{"-1234567.891", "R$ -1.234.567,89"},
		{"12345678901234567.89", "R$ 12.345.678.901.234.567,89"},
		{"99999999999999999999.99", "R$ 99.999.999.999.999.999.999,99"},
	}
	for _, tc := range cases {
		if got := FormatBRL(dec(tc.in)); got != tc.out {
			t.Errorf("FormatBRL(%s) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestProfileComplete(t *testing.T) {
	if (Profile{Name: "Ana", Email: ""}).Complete() {
		t.Fatal("missing email should be incomplete")
	}
	if !(Profile{Name: "Ana", Email: "ana@example.com"}).Complete() {
		t.Fatal("expected complete profile")
	}
	if (Profile{Name: "  ", Email: "a@b"}).Complete() {
		t.Fatal("blank name should be incomplete")
	}
}

func TestNormalizePostalCode(t *testing.T) {
	if got := NormalizePostalCode(" 01001-000 "); got != "01001000" {
		t.Fatalf("got %q", got)
	}
}

func TestPostalCodeKey(t *testing.T) {
	cases := map[string]string{
		"01001000":    "01001000",
		" 01001-000 ": "01001000",
		"0100-1000":   "0100-1000",
		"01.001-000":  "01.001-000",
		"0100100":     "0100100",
		"":            "",
	}
	for in, want := range cases {
		if got := PostalCodeKey(in); got != want {
			t.Errorf("PostalCodeKey(%q) = %q, want %q", in, got, want)
		}
	}
}
