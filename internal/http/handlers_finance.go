package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"financas/internal/address"
	"financas/internal/chart"
	"financas/internal/core"
)

type profileView struct {
	Name     string
	Email    string
	Complete bool
}

type addressView struct {
	PostalCode string
	Address    core.Address
	Found      bool
	NotFound   bool
	Failed     bool
}

type categoryRow struct {
	Name   string
	Amount string
}

type financesView struct {
	// Salary and Expenses echo the submitted form values.
	Salary   string
	Expenses string

	SalaryError bool
	ParseError  bool
	ErrorLine   int

	HasSummary  bool
	Total       string
	Balance     string
	ShowBalance bool
	Chart       chart.Chart
	Rows        []categoryRow
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Dados do formulário inválidos").Write(w)
		return
	}
	profile := core.Profile{Name: p.Get("name"), Email: p.Get("email")}
	view := profileView{Name: profile.Name, Email: profile.Email, Complete: profile.Complete()}

	b := NewHTMXResponse()
	if view.Complete {
		b.TriggerProfileSaved()
	}
	s.writePartial(w, r, "profile", view, b)
}

func (s *Server) handleAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := strings.TrimSpace(sanitizeInput(r.URL.Query().Get("cep")))
	view := addressView{PostalCode: code}
	b := NewHTMXResponse()

	if code != "" {
		addr, err := s.lookup.Lookup(ctx, code)
		var lerr *address.LookupError
		switch {
		case err == nil:
			view.Found = true
			view.Address = addr
			b.TriggerAddressResolved(addr.PostalCode)
			s.events.LogAddressLookup(ctx, addr.PostalCode, addr.City, addr.Region, "found")
		case errors.Is(err, core.ErrAddressNotFound):
			view.NotFound = true
			s.events.LogAddressLookup(ctx, code, "", "", "not_found")
		case errors.As(err, &lerr):
			view.Failed = true
			s.events.LogAddressLookup(ctx, code, "", "", "failed")
		default:
			view.Failed = true
			s.logger.ErrorContext(ctx, "Unexpected lookup error", "error", err)
		}
	}
	s.writePartial(w, r, "address", view, b)
}

func (s *Server) handleFinances(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Dados do formulário inválidos").Write(w)
		return
	}

	view := financesView{Salary: p.Get("salary"), Expenses: p.GetRaw("expenses")}
	salary, err := core.ParseSalary(view.Salary)
	if err != nil {
		view.SalaryError = true
		salary = decimal.Zero
	}

	b := NewHTMXResponse()
	out := s.finance.Evaluate(r.Context(), salary, view.Expenses)
	var mle *core.MalformedLineError
	switch {
	case errors.As(out.Err, &mle):
		view.ParseError = true
		view.ErrorLine = mle.Line
		b.TriggerErrorNotification("Formato incorreto nas despesas")
	case out.Err != nil:
		view.ParseError = true
	case out.Summary != nil:
		fillSummary(&view, *out.Summary)
		b.TriggerSummaryComputed(view.Total, view.ShowBalance)
	}
	s.writePartial(w, r, "finances", view, b)
}

func fillSummary(view *financesView, sum core.FinancialSummary) {
	view.HasSummary = true
	view.Total = core.FormatBRL(sum.Total)
	view.ShowBalance = sum.ShowBalance()
	if view.ShowBalance {
		view.Balance = core.FormatBRL(sum.Balance)
	}
	view.Chart = chart.Pie(sum.Shares())
	for _, e := range sum.Expenses.Entries() {
		view.Rows = append(view.Rows, categoryRow{Name: e.Category, Amount: core.FormatBRL(e.Amount)})
	}
}

type summaryExpense struct {
	Category string  `json:"category"`
	Amount   string  `json:"amount"`
	Share    float64 `json:"share"`
}

type summaryResponse struct {
	Expenses    []summaryExpense `json:"expenses"`
	Total       string           `json:"total"`
	Balance     string           `json:"balance"`
	ShowBalance bool             `json:"show_balance"`
	TotalBRL    string           `json:"total_brl"`
	BalanceBRL  string           `json:"balance_brl,omitempty"`
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		if errors.Is(err, ErrBodyTooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, apiError{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid request body"})
		return
	}

	salary, err := core.ParseSalary(p.Get("salary"))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, apiError{Error: err.Error()})
		return
	}

	out := s.finance.Evaluate(r.Context(), salary, p.GetRaw("expenses"))
	if out.Err != nil {
		resp := apiError{Error: core.ErrMalformedExpenseInput.Error()}
		var mle *core.MalformedLineError
		if errors.As(out.Err, &mle) {
			resp.Line = mle.Line
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	sum := core.Summarize(salary, core.ExpenseMap{})
	if out.Summary != nil {
		sum = *out.Summary
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(sum))
}

func newSummaryResponse(sum core.FinancialSummary) summaryResponse {
	shares := map[string]float64{}
	for _, sh := range sum.Shares() {
		shares[sh.Name] = sh.Share
	}
	resp := summaryResponse{
		Expenses:    []summaryExpense{},
		Total:       sum.Total.StringFixed(2),
		Balance:     sum.Balance.StringFixed(2),
		ShowBalance: sum.ShowBalance(),
		TotalBRL:    core.FormatBRL(sum.Total),
	}
	if resp.ShowBalance {
		resp.BalanceBRL = core.FormatBRL(sum.Balance)
	}
	for _, e := range sum.Expenses.Entries() {
		resp.Expenses = append(resp.Expenses, summaryExpense{
			Category: e.Category,
			Amount:   e.Amount.StringFixed(2),
			Share:    shares[e.Category],
		})
	}
	return resp
}
