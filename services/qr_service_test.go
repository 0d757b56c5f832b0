package services

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"cardifyAPI/internal/scanner"
	"cardifyAPI/internal/types/member"
	"cardifyAPI/internal/types/scan"
	"cardifyAPI/internal/types/ticket"
	"cardifyAPI/internal/types/vcard"
)

func TestVCF(t *testing.T) {
	v := vcard.VCard{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		JobTitle:   "Analyst, Engines",
		Company:    "Analytical",
		Department: "R&D",
		Phones:     []vcard.ContactDetail{{ID: "p-1", Value: "+359 88 123"}, {ID: "p-2", Value: "+44 20 7946"}},
		Emails:     []vcard.ContactDetail{{ID: "e-1", Value: "ada@example.com"}},
		Socials:    []vcard.SocialLink{{ID: "s-1", Network: vcard.NetworkGithub, URL: "https://github.com/ada"}},
	}

	got := VCF(v)
	for _, want := range []string{
		"BEGIN:VCARD\r\n",
		"VERSION:3.0\r\n",
		"N:Lovelace;Ada\r\n",
		"FN:Ada Lovelace\r\n",
		"TITLE:Analyst\\, Engines\r\n",
		"ORG:Analytical;R&D\r\n",
		"TEL;TYPE=WORK,VOICE:+359 88 123\r\n",
		"TEL;TYPE=WORK,VOICE:+44 20 7946\r\n",
		"EMAIL:ada@example.com\r\n",
		"URL:https://github.com/ada\r\n",
		"END:VCARD\r\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in\n%s", want, got)
		}
	}
	if strings.Contains(got, "PHOTO") || strings.Contains(got, "ADR") {
		t.Errorf("Empty fields must be omitted:\n%s", got)
	}
	if VCFFilename(v) != "Ada_Lovelace.vcf" {
		t.Errorf("Unexpected filename %q", VCFFilename(v))
	}
}

func TestQRPayloads(t *testing.T) {
	tk := ticket.Ticket{ID: "tkt-1", OwnerName: "Ada", EventDate: date("2025-01-10"), Tags: []string{}, ScanLog: []ticket.ScanLogEntry{}}
	raw, err := TicketPayload(tk)
	if err != nil {
		t.Fatalf("TicketPayload failed: %v", err)
	}
	var decoded ticket.Ticket
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil || decoded.ID != "tkt-1" || decoded.OwnerName != "Ada" {
		t.Errorf("Unexpected ticket payload %s", raw)
	}
	if strings.Contains(raw, "scanLog") {
		t.Errorf("Ticket payload must not carry the scan log: %s", raw)
	}

	raw, _ = MemberPayload(member.ClubMember{ID: "member-1"})
	if raw != `{"memberId":"member-1"}` {
		t.Errorf("Unexpected member payload %s", raw)
	}
}

func TestQRPNG(t *testing.T) {
	png, err := NewQRService(128).PNG("hello")
	if err != nil {
		t.Fatalf("PNG failed: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("Expected PNG signature")
	}
}

type ticketLookup map[string]ticket.Ticket

func (l ticketLookup) Get(id string) (ticket.Ticket, bool) {
	tk, ok := l[id]
	return tk, ok
}

func TestTicketPNGWithLongScanLog(t *testing.T) {
	tk := ticket.Ticket{
		ID:        "tkt-1700000000000-abc123",
		EventID:   "evt-1700000000000-def456",
		EventName: "Annual Developer Conference",
		EventDate: date("2025-01-10"),
		OwnerName: "Ada Lovelace",
		PassType:  ticket.PassVIP,
		Tags:      []string{},
	}
	for i := 0; i < 60; i++ {
		tk.ScanLog = append(tk.ScanLog, ticket.ScanLogEntry{
			ID:        "scan-1700000000000-abc123",
			Timestamp: date("2025-01-10"),
			Message:   "Checked in at gate B",
		})
	}

	png, err := NewQRService(256).TicketPNG(tk)
	if err != nil {
		t.Fatalf("TicketPNG failed with %d scan-log entries: %v", len(tk.ScanLog), err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("Expected PNG signature")
	}

	raw, err := TicketPayload(tk)
	if err != nil {
		t.Fatalf("TicketPayload failed: %v", err)
	}
	sess := scanner.NewSession("scan-1", ticketLookup{tk.ID: tk})
	snap, outcome := sess.HandleFrame(raw)
	if outcome != scanner.OutcomeValid || snap.State != scan.StateValid {
		t.Errorf("Expected payload to validate, got %v (%s)", outcome, snap.State)
	}
}
