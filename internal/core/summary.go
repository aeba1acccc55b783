package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CategoryShare is one category's slice of the expense total.
type CategoryShare struct {
	Name   string
	Amount decimal.Decimal
	Share  float64 // 0..1
}

// FinancialSummary is derived from a salary and a parsed ExpenseMap and is
// recomputed on every submission.
type FinancialSummary struct {
	Salary   decimal.Decimal
	Expenses ExpenseMap
	Total    decimal.Decimal
	Balance  decimal.Decimal
}

// Summarize totals the expenses and subtracts them from the salary.
func Summarize(salary decimal.Decimal, expenses ExpenseMap) FinancialSummary {
	total := expenses.Total()
	return FinancialSummary{
		Salary:   salary,
		Expenses: expenses,
		Total:    total,
		Balance:  salary.Sub(total),
	}
}

// ShowBalance reports whether the remaining balance should be displayed.
// It needs a positive salary and a positive total; a zero total hides the
// balance even though salary minus zero is well defined.
func (s FinancialSummary) ShowBalance() bool {
	return s.Salary.IsPositive() && s.Total.IsPositive()
}

// Shares returns the proportional breakdown for the pie chart in display
// order. Only positive amounts take part; the result is empty when there
// is nothing positive to draw.
func (s FinancialSummary) Shares() []CategoryShare {
	positive := decimal.Zero
	for _, e := range s.Expenses.Entries() {
		if e.Amount.IsPositive() {
			positive = positive.Add(e.Amount)
		}
	}
	if !positive.IsPositive() {
		return nil
	}
	var out []CategoryShare
	for _, e := range s.Expenses.Entries() {
		if !e.Amount.IsPositive() {
			continue
		}
		out = append(out, CategoryShare{
			Name:   e.Category,
			Amount: e.Amount,
			Share:  e.Amount.Div(positive).InexactFloat64(),
		})
	}
	return out
}

// Outcome is the result of evaluating one submission. Summary stays nil
// until a parse succeeds, so callers can tell "nothing computed yet" from a
// zero total.
type Outcome struct {
	Summary *FinancialSummary
	Err     error
}

// Evaluate parses text with p and summarizes it against salary. Blank text
// yields an empty Outcome with no error.
func Evaluate(p ExpenseParser, salary decimal.Decimal, text string) Outcome {
	if strings.TrimSpace(text) == "" {
		return Outcome{}
	}
	expenses, err := p.Parse(text)
	if err != nil {
		return Outcome{Err: err}
	}
	s := Summarize(salary, expenses)
	return Outcome{Summary: &s}
}
