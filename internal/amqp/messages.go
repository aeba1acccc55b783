package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"financas/internal/core"
)

// CategoryAmount is one expense line of a summary event.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// SummaryComputedMessage announces a successfully computed summary.
// Money travels as decimal strings so no precision is lost in transit.
type SummaryComputedMessage struct {
	ID          string           `json:"id"`
	Salary      string           `json:"salary"`
	Total       string           `json:"total"`
	Balance     string           `json:"balance"`
	ShowBalance bool             `json:"show_balance"`
	Categories  []CategoryAmount `json:"categories"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NewSummaryComputedMessage builds an event with a fresh id.
func NewSummaryComputedMessage(s core.FinancialSummary) *SummaryComputedMessage {
	entries := s.Expenses.Entries()
	cats := make([]CategoryAmount, 0, len(entries))
	for _, e := range entries {
		cats = append(cats, CategoryAmount{Name: e.Category, Amount: e.Amount.String()})
	}
	return &SummaryComputedMessage{
		ID:          uuid.NewString(),
		Salary:      s.Salary.String(),
		Total:       s.Total.String(),
		Balance:     s.Balance.String(),
		ShowBalance: s.ShowBalance(),
		Categories:  cats,
		Timestamp:   time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SummaryComputedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SummaryComputedMessageFromJSON(data []byte) (*SummaryComputedMessage, error) {
	var msg SummaryComputedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
