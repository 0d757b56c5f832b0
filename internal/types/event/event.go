package event

import "time"

type Event struct {
	ID       string    `json:"id"`
	Name     string    `json:"name" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
	Location string    `json:"location" validate:"required"`
	Tags     []string  `json:"tags"`
}

type Patch struct {
	Name     *string    `json:"name,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Location *string    `json:"location,omitempty"`
	Tags     *[]string  `json:"tags,omitempty"`
}

func (p Patch) Apply(e *Event) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Tags != nil {
		e.Tags = *p.Tags
	}
}
