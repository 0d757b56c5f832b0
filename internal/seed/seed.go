// Package seed holds the records written on first run.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"cardifyAPI/internal/types/event"
	"cardifyAPI/internal/types/member"
	"cardifyAPI/internal/types/ticket"
	"cardifyAPI/internal/types/vcard"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

type Fixtures struct {
	VCards  []vcard.VCard       `json:"vcards"`
	Events  []event.Event       `json:"events"`
	Tickets []ticket.Ticket     `json:"tickets"`
	Members []member.ClubMember `json:"members"`
}

// Load parses the embedded fixtures. Records go through their JSON
// shape so field names match what storage holds.
func Load() (*Fixtures, error) {
	return Parse(fixturesYAML)
}

func Parse(data []byte) (*Fixtures, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert fixtures: %w", err)
	}

	var f Fixtures
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	return &f, nil
}

// Empty is used when first-run seeding is turned off.
func Empty() *Fixtures {
	return &Fixtures{}
}
