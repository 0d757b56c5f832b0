package metrics

import "time"

// Range bounds are inclusive; a nil bound is open.
type Range struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

func (r Range) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Summary struct {
	Range                 Range           `json:"range"`
	TotalVCards           int             `json:"totalVCards"`
	TotalTickets          int             `json:"totalTickets"`
	TotalEvents           int             `json:"totalEvents"`
	VIPTickets            int             `json:"vipTickets"`
	GrossSales            float64         `json:"grossSales"`
	TotalCosts            float64         `json:"totalCosts"`
	SubscriptionBreakdown []CategoryCount `json:"subscriptionBreakdown"`
	PassTypeBreakdown     []CategoryCount `json:"passTypeBreakdown"`
}
