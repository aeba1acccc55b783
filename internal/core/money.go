// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and formatting them as Brazilian Real for display.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidSalary = errors.New("invalid salary")
)

// Amounts are bounded so arithmetic and formatting stay cheap: an exponent
// like "1e99999999" would otherwise expand to a hundred million digits.
const maxExponent = 18

var maxAmount = decimal.New(1, 15)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// pt-BR group and decimal separators, read from the locale data.
var brlGroup, brlDecimal = brlSeparators()

func brlSeparators() (group, dec string) {
	s := brl.Sprint(number.Decimal(1234.5, number.MinFractionDigits(1), number.MaxFractionDigits(1)))
	if len(s) != len("1.234,5") {
		return ".", ","
	}
	return s[1:2], s[5:6]
}

// ParseAmount converts a decimal string to an exact decimal value.
//
// Signed values and exponent notation are accepted ("-12.5", "1e3").
// Comma decimal separators are not: "12,50" is rejected, matching the
// plain numeric conversion the expense format has always used. Values
// whose magnitude reaches 1e15, or whose exponent lies outside ±18, are
// rejected too.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	// Check the exponent before comparing: Cmp rescales both operands.
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.Abs().Cmp(maxAmount) >= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseSalary parses the monthly salary field. An empty field means zero;
// negative values are rejected because the form enforces a minimum of 0.
func ParseSalary(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, ErrInvalidSalary
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidSalary
	}
	return d, nil
}

// FormatBRL renders an amount as Brazilian Real with two decimals,
// e.g. "R$ 2.300,00" or "R$ -15,50".
func FormatBRL(d decimal.Decimal) string {
	r := d.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
	}
	fixed := r.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return "R$ " + sign + groupThousands(intPart) + brlDecimal + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(brlGroup)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
