package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"cardifyAPI/internal/types/event"
	"cardifyAPI/internal/types/metrics"
	"cardifyAPI/internal/types/ticket"
	"cardifyAPI/internal/types/vcard"
)

func metricsFixtures() ([]vcard.VCard, []ticket.Ticket, []event.Event) {
	vcards := []vcard.VCard{
		{ID: "v1", Subscription: vcard.SubscriptionBasic},
		{ID: "v2", Subscription: vcard.SubscriptionTop},
		{ID: "v3", Subscription: vcard.SubscriptionTop},
	}
	tickets := []ticket.Ticket{
		{ID: "t1", EventDate: date("2025-01-10"), PassType: ticket.PassVIP, PublicPrice: 100, CostPrice: 40},
		{ID: "t2", EventDate: date("2025-02-01"), PassType: ticket.PassBasic, PublicPrice: 20, CostPrice: 5},
		{ID: "t3", EventDate: date("2025-03-15"), PassType: ticket.PassBasic, PublicPrice: 20, CostPrice: 5},
	}
	events := []event.Event{
		{ID: "e1", Date: date("2025-01-10")},
		{ID: "e2", Date: date("2025-03-15")},
	}
	return vcards, tickets, events
}

func TestAggregateAllTime(t *testing.T) {
	vcards, tickets, events := metricsFixtures()
	sum := Aggregate(vcards, tickets, events, metrics.Range{})

	if sum.TotalVCards != 3 || sum.TotalTickets != 3 || sum.TotalEvents != 2 {
		t.Errorf("Unexpected totals %+v", sum)
	}
	if sum.GrossSales != 140 || sum.TotalCosts != 50 || sum.VIPTickets != 1 {
		t.Errorf("Unexpected sales %+v", sum)
	}

	wantTiers := []metrics.CategoryCount{{Name: "Basic", Count: 1}, {Name: "Top", Count: 2}, {Name: "Enterprise", Count: 0}}
	if len(sum.SubscriptionBreakdown) != len(wantTiers) {
		t.Fatalf("Unexpected tier breakdown %+v", sum.SubscriptionBreakdown)
	}
	for i, want := range wantTiers {
		if sum.SubscriptionBreakdown[i] != want {
			t.Errorf("Tier %d: expected %+v, got %+v", i, want, sum.SubscriptionBreakdown[i])
		}
	}

	wantPasses := []metrics.CategoryCount{{Name: "Basic", Count: 2}, {Name: "VIP", Count: 1}}
	if len(sum.PassTypeBreakdown) != len(wantPasses) {
		t.Fatalf("Zero pass counts must be dropped, got %+v", sum.PassTypeBreakdown)
	}
	for i, want := range wantPasses {
		if sum.PassTypeBreakdown[i] != want {
			t.Errorf("Pass %d: expected %+v, got %+v", i, want, sum.PassTypeBreakdown[i])
		}
	}
}

func TestAggregateRangeIsInclusive(t *testing.T) {
	rng, err := ParseRange("2025-01-10", "2025-02-01")
	if err != nil {
		t.Fatalf("ParseRange failed: %v", err)
	}
	vcards, tickets, events := metricsFixtures()
	sum := Aggregate(vcards, tickets, events, rng)

	if sum.TotalTickets != 2 || sum.GrossSales != 120 {
		t.Errorf("Expected both boundary tickets, got %+v", sum)
	}
	if sum.TotalEvents != 1 {
		t.Errorf("Expected 1 event in range, got %d", sum.TotalEvents)
	}
	if sum.TotalVCards != 3 {
		t.Errorf("vCard count must ignore the range, got %d", sum.TotalVCards)
	}
}

func TestParseRange(t *testing.T) {
	rng, err := ParseRange("", "2025-02-01")
	if err != nil {
		t.Fatalf("ParseRange failed: %v", err)
	}
	if rng.From != nil {
		t.Error("Expected open lower bound")
	}
	if !rng.Contains(time.Date(2025, 2, 1, 23, 59, 0, 0, time.UTC)) {
		t.Error("Date-only upper bound must cover the whole day")
	}

	if _, err := ParseRange("2025-02-01", "2025-01-01"); err == nil {
		t.Error("Expected error when to is before from")
	}
	if _, err := ParseRange("yesterday", ""); err == nil {
		t.Error("Expected error for unparseable bound")
	}
}

func TestWriteCSV(t *testing.T) {
	rng, _ := ParseRange("2025-01-01", "")
	sum := Aggregate(nil, []ticket.Ticket{{EventDate: date("2025-01-10"), PassType: ticket.PassVIP, PublicPrice: 1234.5}}, nil, rng)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sum); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Metric,Value" {
		t.Errorf("Unexpected header %q", lines[0])
	}
	want := map[string]bool{
		`Date Range,"Jan 01, 2025 - "`:    true,
		"Gross Sales (Filtered),$1234.50": true,
		"VIP Tickets (Filtered),1":        true,
		"Total vCards (All Time),0":       true,
		"Total Tickets (Filtered),1":      true,
	}
	for _, l := range lines[1:] {
		delete(want, l)
	}
	if len(want) != 0 {
		t.Errorf("Missing rows %v in\n%s", want, buf.String())
	}
}

func TestExportFilename(t *testing.T) {
	got := ExportFilename(time.Date(2025, 6, 26, 15, 0, 0, 0, time.UTC))
	if got != "cardify_metrics_2025-06-26.csv" {
		t.Errorf("Unexpected filename %q", got)
	}
}
