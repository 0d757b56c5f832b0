package seed

import (
	"testing"
	"time"

	"cardifyAPI/internal/types/ticket"
	"cardifyAPI/internal/types/vcard"
)

func TestLoadFixtures(t *testing.T) {
	f, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(f.VCards) != 2 || len(f.Events) != 2 || len(f.Tickets) != 2 || len(f.Members) != 3 {
		t.Fatalf("Unexpected fixture counts: %d vcards, %d events, %d tickets, %d members",
			len(f.VCards), len(f.Events), len(f.Tickets), len(f.Members))
	}

	alex := f.Tickets[0]
	if alex.OwnerName != "Alex Johnson" || alex.PassType != ticket.PassVIP {
		t.Errorf("Unexpected first ticket %+v", alex)
	}
	if len(alex.ScanLog) != 2 || alex.ScanLog[0].Message != "Checked In" {
		t.Errorf("Unexpected scan log %+v", alex.ScanLog)
	}
	want := time.Date(2024, 10, 26, 9, 0, 0, 0, time.UTC)
	if !alex.EventDate.Equal(want) {
		t.Errorf("Expected event date %v, got %v", want, alex.EventDate)
	}

	if f.VCards[1].Subscription != vcard.SubscriptionEnterprise {
		t.Errorf("Expected Enterprise tier, got %s", f.VCards[1].Subscription)
	}
	if len(f.VCards[0].Socials) != 2 {
		t.Errorf("Expected 2 socials, got %d", len(f.VCards[0].Socials))
	}
}

func TestParseRejectsBrokenYAML(t *testing.T) {
	if _, err := Parse([]byte("vcards: [")); err == nil {
		t.Error("Expected parse error")
	}
}
