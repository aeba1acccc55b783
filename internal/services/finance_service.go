package services

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"financas/internal/core"
	"financas/internal/log"
)

// SummaryPublisher announces computed summaries to other systems.
type SummaryPublisher interface {
	PublishSummary(ctx context.Context, s core.FinancialSummary) error
}

// Stats counts evaluations by outcome.
type Stats struct {
	Evaluations     int64
	Summaries       int64
	Malformed       int64
	Published       int64
	PublishFailures int64
}

// FinanceService parses expense text, summarizes it against a salary and
// announces the result. Publishing is best effort.
type FinanceService struct {
	parser    core.ExpenseParser
	publisher SummaryPublisher
	logger    *log.StructuredLogger

	evaluations     atomic.Int64
	summaries       atomic.Int64
	malformed       atomic.Int64
	published       atomic.Int64
	publishFailures atomic.Int64
}

// NewFinanceService wires the service. A nil parser selects the line
// format; a nil publisher disables events.
func NewFinanceService(parser core.ExpenseParser, publisher SummaryPublisher, logger *log.Logger) *FinanceService {
	if parser == nil {
		parser = core.LineParser{}
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &FinanceService{
		parser:    parser,
		publisher: publisher,
		logger:    log.NewStructuredLogger(logger.WithComponent(log.ComponentSummary)),
	}
}

// Evaluate parses text and summarizes it. Outcome.Summary is nil for blank
// text and for malformed input; in the latter case Outcome.Err is set.
func (s *FinanceService) Evaluate(ctx context.Context, salary decimal.Decimal, text string) core.Outcome {
	s.evaluations.Add(1)

	out := core.Evaluate(s.parser, salary, text)
	if out.Err != nil {
		s.malformed.Add(1)
		fields := log.NewFields()
		var mle *core.MalformedLineError
		if errors.As(out.Err, &mle) {
			fields[log.FieldLine] = mle.Line
		}
		s.logger.LogError(ctx, "Expense input rejected", out.Err, log.ComponentLedger, log.OpParse, fields)
		return out
	}
	if out.Summary == nil {
		return out
	}

	s.summaries.Add(1)
	sum := *out.Summary
	s.logger.LogSummaryComputed(ctx, sum.Expenses.Len(), sum.Total.String(), sum.Balance.String(), sum.ShowBalance())
	s.publish(ctx, sum)
	return out
}

func (s *FinanceService) publish(ctx context.Context, sum core.FinancialSummary) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSummary(ctx, sum); err != nil {
		s.publishFailures.Add(1)
		s.logger.LogError(ctx, "Failed to publish summary event", err, log.ComponentAMQP, log.OpPublish, log.NewFields())
		return
	}
	s.published.Add(1)
}

// Stats returns a snapshot of the counters.
func (s *FinanceService) Stats() Stats {
	return Stats{
		Evaluations:     s.evaluations.Load(),
		Summaries:       s.summaries.Load(),
		Malformed:       s.malformed.Load(),
		Published:       s.published.Load(),
		PublishFailures: s.publishFailures.Load(),
	}
}
