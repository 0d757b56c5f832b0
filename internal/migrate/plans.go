package migrate

import (
	"fmt"
	"time"

	"cardifyAPI/internal/types/ticket"
	"cardifyAPI/internal/types/vcard"
)

// Default registers the known steps for every collection.
func (m *Migrator) Default() *Migrator {
	return m.
		Register("vcards", vcardContactLists).
		Register("tickets", ticketDefaults).
		Register("members", memberDefaults).
		Register("events", ensureSlice("tags")).
		Register("logs")
}

// vcardContactLists turns the single phone/email/website/address strings
// of early cards into {id, value} lists and fills newer fields.
func vcardContactLists(records []map[string]any) error {
	legacy := map[string]string{
		"phone":   "phones",
		"email":   "emails",
		"website": "websites",
		"address": "addresses",
	}

	for i, r := range records {
		for old, list := range legacy {
			value, had := r[old]
			delete(r, old)
			if _, ok := r[list]; ok {
				continue
			}
			s, _ := value.(string)
			if !had || s == "" {
				r[list] = []any{}
				continue
			}
			r[list] = []any{map[string]any{"id": fmt.Sprintf("%s-%d", old[:1], i+1), "value": s}}
		}
		setDefault(r, "socials", []any{})
		setDefault(r, "tags", []any{})
		setDefault(r, "subscription", string(vcard.SubscriptionBasic))
		setDefault(r, "bioSize", string(vcard.BioBase))
	}
	return nil
}

func ticketDefaults(records []map[string]any) error {
	for _, r := range records {
		setDefault(r, "scanLog", []any{})
		setDefault(r, "tags", []any{})
		setDefault(r, "publicPrice", 0.0)
		setDefault(r, "costPrice", 0.0)
		setDefault(r, "color", ticket.DefaultColor)
	}
	return nil
}

func memberDefaults(records []map[string]any) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, r := range records {
		setDefault(r, "paymentHistory", []any{})
		setDefault(r, "tags", []any{})
		setDefault(r, "subscriptionDate", now)
	}
	return nil
}

func ensureSlice(field string) Step {
	return func(records []map[string]any) error {
		for _, r := range records {
			setDefault(r, field, []any{})
		}
		return nil
	}
}

// setDefault fills a field that is absent or null.
func setDefault(r map[string]any, field string, value any) {
	if v, ok := r[field]; !ok || v == nil {
		r[field] = value
	}
}
