package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"cardifyAPI/internal/store"
	"cardifyAPI/internal/types/event"
	"cardifyAPI/internal/types/metrics"
	"cardifyAPI/internal/types/ticket"
	"cardifyAPI/internal/types/vcard"
)

const dateOnly = "2006-01-02"

// MetricsService reads the stores and never writes.
type MetricsService struct {
	vcards  *store.Collection[vcard.VCard]
	tickets *store.Collection[ticket.Ticket]
	events  *store.Collection[event.Event]
}

func NewMetricsService(stores *Stores) *MetricsService {
	return &MetricsService{vcards: stores.VCards, tickets: stores.Tickets, events: stores.Events}
}

func (s *MetricsService) Summary(rng metrics.Range) metrics.Summary {
	return Aggregate(s.vcards.List(), s.tickets.List(), s.events.List(), rng)
}

// Aggregate filters tickets by event date and events by date, both bounds
// inclusive. vCard counts and the tier breakdown are all-time.
func Aggregate(vcards []vcard.VCard, tickets []ticket.Ticket, events []event.Event, rng metrics.Range) metrics.Summary {
	sum := metrics.Summary{
		Range:       rng,
		TotalVCards: len(vcards),
	}

	tiers := make(map[vcard.Subscription]int, len(vcard.Subscriptions))
	for _, v := range vcards {
		tiers[v.Subscription]++
	}
	for _, tier := range vcard.Subscriptions {
		sum.SubscriptionBreakdown = append(sum.SubscriptionBreakdown, metrics.CategoryCount{Name: string(tier), Count: tiers[tier]})
	}

	passes := make(map[ticket.PassType]int, len(ticket.PassTypes))
	for _, t := range tickets {
		if !rng.Contains(t.EventDate) {
			continue
		}
		sum.TotalTickets++
		sum.GrossSales += t.PublicPrice
		sum.TotalCosts += t.CostPrice
		if t.PassType == ticket.PassVIP {
			sum.VIPTickets++
		}
		passes[t.PassType]++
	}
	sum.PassTypeBreakdown = []metrics.CategoryCount{}
	for _, p := range ticket.PassTypes {
		if passes[p] > 0 {
			sum.PassTypeBreakdown = append(sum.PassTypeBreakdown, metrics.CategoryCount{Name: string(p), Count: passes[p]})
		}
	}

	for _, e := range events {
		if rng.Contains(e.Date) {
			sum.TotalEvents++
		}
	}
	return sum
}

// WriteCSV writes the two-column metric export.
func WriteCSV(w io.Writer, sum metrics.Summary) error {
	rows := [][]string{
		{"Metric", "Value"},
		{"Date Range", rangeLabel(sum.Range)},
		{"Total vCards (All Time)", fmt.Sprint(sum.TotalVCards)},
		{"Total Tickets (Filtered)", fmt.Sprint(sum.TotalTickets)},
		{"Total Events (Filtered)", fmt.Sprint(sum.TotalEvents)},
		{"Gross Sales (Filtered)", fmt.Sprintf("$%.2f", sum.GrossSales)},
		{"Total Costs (Filtered)", fmt.Sprintf("$%.2f", sum.TotalCosts)},
		{"VIP Tickets (Filtered)", fmt.Sprint(sum.VIPTickets)},
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write metrics csv: %w", err)
	}
	return nil
}

// ExportFilename is the download name for an export made at now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("cardify_metrics_%s.csv", now.Format(dateOnly))
}

func rangeLabel(rng metrics.Range) string {
	from := "All Time"
	if rng.From != nil {
		from = rng.From.Format("Jan 02, 2006")
	}
	to := ""
	if rng.To != nil {
		to = rng.To.Format("Jan 02, 2006")
	}
	return from + " - " + to
}

// ParseRange reads optional from/to bounds as RFC 3339 or YYYY-MM-DD. A
// date-only upper bound covers that whole day.
func ParseRange(from, to string) (metrics.Range, error) {
	var rng metrics.Range

	if from != "" {
		t, _, err := parseBound(from)
		if err != nil {
			return rng, fmt.Errorf("invalid from: %w", err)
		}
		rng.From = &t
	}
	if to != "" {
		t, wholeDay, err := parseBound(to)
		if err != nil {
			return rng, fmt.Errorf("invalid to: %w", err)
		}
		if wholeDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		rng.To = &t
	}
	if rng.From != nil && rng.To != nil && rng.To.Before(*rng.From) {
		return rng, fmt.Errorf("to is before from")
	}
	return rng, nil
}

func parseBound(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
