package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"cardifyAPI/internal/types/member"
	"cardifyAPI/internal/types/ticket"
	"cardifyAPI/internal/types/vcard"
)

// QRService renders the payloads carried by vCard, ticket and member QR
// codes and encodes them as PNG.
type QRService struct {
	size int
}

func NewQRService(size int) *QRService {
	if size <= 0 {
		size = 256
	}
	return &QRService{size: size}
}

func (s *QRService) PNG(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR png: %w", err)
	}
	return png, nil
}

func (s *QRService) VCardPNG(v vcard.VCard) ([]byte, error) {
	return s.PNG(VCF(v))
}

// TicketPNG encodes the ticket's pass details as JSON; scanners only need
// its id.
func (s *QRService) TicketPNG(t ticket.Ticket) ([]byte, error) {
	payload, err := TicketPayload(t)
	if err != nil {
		return nil, err
	}
	return s.PNG(payload)
}

func (s *QRService) MemberPNG(m member.ClubMember) ([]byte, error) {
	payload, err := MemberPayload(m)
	if err != nil {
		return nil, err
	}
	return s.PNG(payload)
}

// ticketPass is the QR content of a ticket. The scan log stays out so the
// payload does not grow with every check-in.
type ticketPass struct {
	ID        string          `json:"id"`
	EventID   string          `json:"eventId,omitempty"`
	EventName string          `json:"eventName"`
	EventDate time.Time       `json:"eventDate"`
	OwnerName string          `json:"ownerName"`
	PassType  ticket.PassType `json:"passType"`
}

func TicketPayload(t ticket.Ticket) (string, error) {
	raw, err := json.Marshal(ticketPass{
		ID:        t.ID,
		EventID:   t.EventID,
		EventName: t.EventName,
		EventDate: t.EventDate,
		OwnerName: t.OwnerName,
		PassType:  t.PassType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode ticket payload: %w", err)
	}
	return string(raw), nil
}

func MemberPayload(m member.ClubMember) (string, error) {
	raw, err := json.Marshal(map[string]string{"memberId": m.ID})
	if err != nil {
		return "", fmt.Errorf("failed to encode member payload: %w", err)
	}
	return string(raw), nil
}

// VCF renders a vCard 3.0 document. Empty fields are left out.
func VCF(v vcard.VCard) string {
	var b strings.Builder
	line := func(prop, value string) {
		b.WriteString(prop)
		b.WriteString(":")
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	line("BEGIN", "VCARD")
	line("VERSION", "3.0")
	line("N", vcfEscape(v.LastName)+";"+vcfEscape(v.FirstName))
	line("FN", vcfEscape(v.FullName()))
	if v.JobTitle != "" {
		line("TITLE", vcfEscape(v.JobTitle))
	}
	if org := orgValue(v); org != "" {
		line("ORG", org)
	}
	for _, p := range v.Phones {
		line("TEL;TYPE=WORK,VOICE", vcfEscape(p.Value))
	}
	for _, e := range v.Emails {
		line("EMAIL", vcfEscape(e.Value))
	}
	for _, w := range v.Websites {
		line("URL", w.Value)
	}
	for _, a := range v.Addresses {
		line("ADR;TYPE=HOME", ";;"+vcfEscape(a.Value))
	}
	if v.ProfileImageURL != "" {
		line("PHOTO;TYPE=JPEG", v.ProfileImageURL)
	}
	for _, social := range v.Socials {
		line("URL", social.URL)
	}
	line("END", "VCARD")
	return b.String()
}

// VCFFilename is "<first>_<last>.vcf".
func VCFFilename(v vcard.VCard) string {
	return fmt.Sprintf("%s_%s.vcf", v.FirstName, v.LastName)
}

func orgValue(v vcard.VCard) string {
	var parts []string
	for _, p := range []string{v.Company, v.Department} {
		if p != "" {
			parts = append(parts, vcfEscape(p))
		}
	}
	return strings.Join(parts, ";")
}

var vcfEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

func vcfEscape(s string) string {
	return vcfEscaper.Replace(s)
}
