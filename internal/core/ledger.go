package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformedExpenseInput is matched by every parse failure of the
// free-text expense format.
var ErrMalformedExpenseInput = errors.New("malformed expense input")

// MalformedLineError reports the first line that broke the
// "category: amount" shape. Line is 1-based over the raw input.
type MalformedLineError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *MalformedLineError) Unwrap() error {
	return ErrMalformedExpenseInput
}

// Entry is a single category/amount pair.
type Entry struct {
	Category string
	Amount   decimal.Decimal
}

// ExpenseMap maps category names to amounts. Categories are unique; the
// first-seen order is kept for display only. The zero value is an empty map.
type ExpenseMap struct {
	order   []string
	amounts map[string]decimal.Decimal
}

// NewExpenseMap builds a map from entries; a later duplicate category
// overwrites the earlier amount but keeps its position.
func NewExpenseMap(entries ...Entry) ExpenseMap {
	m := ExpenseMap{amounts: make(map[string]decimal.Decimal, len(entries))}
	for _, e := range entries {
		m.set(e.Category, e.Amount)
	}
	return m
}

func (m *ExpenseMap) set(category string, amount decimal.Decimal) {
	if m.amounts == nil {
		m.amounts = make(map[string]decimal.Decimal)
	}
	if _, ok := m.amounts[category]; !ok {
		m.order = append(m.order, category)
	}
	m.amounts[category] = amount
}

// Len returns the number of categories.
func (m ExpenseMap) Len() int {
	return len(m.order)
}

// Get returns the amount recorded for category.
func (m ExpenseMap) Get(category string) (decimal.Decimal, bool) {
	d, ok := m.amounts[category]
	return d, ok
}

// Entries returns the pairs in display order.
func (m ExpenseMap) Entries() []Entry {
	out := make([]Entry, 0, len(m.order))
	for _, c := range m.order {
		out = append(out, Entry{Category: c, Amount: m.amounts[c]})
	}
	return out
}

// Total sums every amount; zero for an empty map.
func (m ExpenseMap) Total() decimal.Decimal {
	total := decimal.Zero
	for _, c := range m.order {
		total = total.Add(m.amounts[c])
	}
	return total
}

// Equal reports whether both maps hold the same categories with
// numerically equal amounts. Order is ignored.
func (m ExpenseMap) Equal(other ExpenseMap) bool {
	if m.Len() != other.Len() {
		return false
	}
	for c, d := range m.amounts {
		o, ok := other.amounts[c]
		if !ok || !o.Equal(d) {
			return false
		}
	}
	return true
}

// ExpenseParser turns raw user input into an ExpenseMap. The free-text
// format is one implementation; the calculator only sees the map.
type ExpenseParser interface {
	Parse(text string) (ExpenseMap, error)
}

// LineParser parses the "category: amount" per-line format.
type LineParser struct{}

// Parse implements ExpenseParser.
func (LineParser) Parse(text string) (ExpenseMap, error) {
	return ParseExpenses(text)
}

// ParseExpenses parses one "category: amount" pair per line.
//
// Blank lines are skipped. Every other line must contain exactly one ':'
// and an amount accepted by ParseAmount. The batch is all-or-nothing: on
// the first bad line a *MalformedLineError is returned together with an
// empty map, never a partially filled one.
func ParseExpenses(text string) (ExpenseMap, error) {
	var m ExpenseMap
	for i, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		category, amount, err := parseLine(line)
		if err != nil {
			return ExpenseMap{}, &MalformedLineError{Line: i + 1, Text: line, Reason: err.Error()}
		}
		m.set(category, amount)
	}
	return m, nil
}

func parseLine(line string) (string, decimal.Decimal, error) {
	parts := strings.Split(line, ":")
	switch {
	case len(parts) < 2:
		return "", decimal.Zero, errors.New("missing ':' separator")
	case len(parts) > 2:
		return "", decimal.Zero, errors.New("more than one ':' separator")
	}
	amount, err := ParseAmount(parts[1])
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("amount %q is not a number", strings.TrimSpace(parts[1]))
	}
	return strings.TrimSpace(parts[0]), amount, nil
}

// splitLines splits on \n, \r\n and lone \r.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// FormatExpenses serializes a map back into the line format, one
// "category: amount" pair per line in display order.
func FormatExpenses(m ExpenseMap) string {
	var b strings.Builder
	for i, e := range m.Entries() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Category)
		b.WriteString(": ")
		b.WriteString(e.Amount.String())
	}
	return b.String()
}
