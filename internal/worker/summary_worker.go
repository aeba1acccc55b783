package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"financas/internal/amqp"
	"financas/internal/core"
)

// Totals is the running aggregate over all consumed summary events.
type Totals struct {
	Events     int64
	Rejected   int64
	Salary     decimal.Decimal
	Spent      decimal.Decimal
	Categories []core.Entry // largest first
}

// SummaryWorker consumes summary_computed events and keeps per-category
// running totals. Each accepted event is echoed as one line to out.
type SummaryWorker struct {
	out io.Writer

	mu         sync.Mutex
	events     int64
	rejected   int64
	salary     decimal.Decimal
	spent      decimal.Decimal
	categories map[string]decimal.Decimal
}

func NewSummaryWorker(out io.Writer) *SummaryWorker {
	if out == nil {
		out = io.Discard
	}
	return &SummaryWorker{
		out:        out,
		categories: make(map[string]decimal.Decimal),
	}
}

// HandleSummaryMessage folds one event into the totals. Events with
// unparseable amounts are counted as rejected and acknowledged, since
// redelivering them cannot succeed.
func (w *SummaryWorker) HandleSummaryMessage(ctx context.Context, msg *amqp.SummaryComputedMessage) error {
	salary, err := decimal.NewFromString(msg.Salary)
	if err != nil {
		return w.reject(ctx, msg, fmt.Errorf("salary: %w", err))
	}
	total, err := decimal.NewFromString(msg.Total)
	if err != nil {
		return w.reject(ctx, msg, fmt.Errorf("total: %w", err))
	}
	amounts := make([]decimal.Decimal, len(msg.Categories))
	for i, c := range msg.Categories {
		if amounts[i], err = decimal.NewFromString(c.Amount); err != nil {
			return w.reject(ctx, msg, fmt.Errorf("category %q: %w", c.Name, err))
		}
	}

	w.mu.Lock()
	w.events++
	w.salary = w.salary.Add(salary)
	w.spent = w.spent.Add(total)
	for i, c := range msg.Categories {
		w.categories[c.Name] = w.categories[c.Name].Add(amounts[i])
	}
	w.mu.Unlock()

	slog.InfoContext(ctx, "Processed summary event",
		"component", "amqp",
		"event_id", msg.ID,
		"categories", len(msg.Categories),
		"total", msg.Total)

	balance := "-"
	if msg.ShowBalance {
		balance = msg.Balance
	}
	_, err = fmt.Fprintf(w.out, "%s\t%s\ttotal=%s\tbalance=%s\tcategories=%d\n",
		msg.Timestamp.Format("2006-01-02T15:04:05Z07:00"), msg.ID, msg.Total, balance, len(msg.Categories))
	return err
}

func (w *SummaryWorker) reject(ctx context.Context, msg *amqp.SummaryComputedMessage, err error) error {
	w.mu.Lock()
	w.rejected++
	w.mu.Unlock()
	slog.WarnContext(ctx, "Dropping invalid summary event", "component", "amqp", "event_id", msg.ID, "error", err)
	return nil
}

// Totals returns a snapshot of the aggregate.
func (w *SummaryWorker) Totals() Totals {
	w.mu.Lock()
	defer w.mu.Unlock()

	cats := make([]core.Entry, 0, len(w.categories))
	for name, amount := range w.categories {
		cats = append(cats, core.Entry{Category: name, Amount: amount})
	}
	sort.Slice(cats, func(i, j int) bool {
		if c := cats[i].Amount.Cmp(cats[j].Amount); c != 0 {
			return c > 0
		}
		return cats[i].Category < cats[j].Category
	})

	return Totals{
		Events:     w.events,
		Rejected:   w.rejected,
		Salary:     w.salary,
		Spent:      w.spent,
		Categories: cats,
	}
}
