package core

import (
	"errors"
	"regexp"
	"strings"
)

type (
	// Profile is the name/email pair entered at the top of the form.
	Profile struct {
		Name  string
		Email string
	}

	// Address is the result of a postal code lookup.
	Address struct {
		PostalCode string
		Street     string
		District   string
		City       string
		Region     string // state abbreviation, e.g. "SP"
	}
)

// ErrAddressNotFound is returned when the lookup service answers with an
// explicit error marker for the postal code.
var ErrAddressNotFound = errors.New("address not found")

// Complete reports whether both profile fields were filled in.
func (p Profile) Complete() bool {
	return strings.TrimSpace(p.Name) != "" && strings.TrimSpace(p.Email) != ""
}

// NormalizePostalCode keeps only the digits of a postal code, so
// "01001-000" and "01001000" share a cache key.
func NormalizePostalCode(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

var canonicalPostalCode = regexp.MustCompile(`^(\d{5})-?(\d{3})$`)

// PostalCodeKey returns the key a lookup result is remembered under. Only
// the two canonical shapes ("01001000" and "01001-000") collapse to the
// same digits; any other input keeps its trimmed text, because the lookup
// service may judge it differently.
func PostalCodeKey(s string) string {
	s = strings.TrimSpace(s)
	if m := canonicalPostalCode.FindStringSubmatch(s); m != nil {
		return m[1] + m[2]
	}
	return s
}
