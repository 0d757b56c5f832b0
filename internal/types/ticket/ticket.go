package ticket

import "time"

type PassType string

const (
	PassVIP   PassType = "VIP"
	PassBasic PassType = "Basic"
	PassStaff PassType = "Staff"
)

// PassTypes lists every pass type in display order.
var PassTypes = []PassType{PassBasic, PassVIP, PassStaff}

const DefaultColor = "#6366f1"

type ScanLogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

type Ticket struct {
	ID          string         `json:"id"`
	EventID     string         `json:"eventId"`
	EventName   string         `json:"eventName" validate:"required"`
	EventDate   time.Time      `json:"eventDate" validate:"required"`
	OwnerName   string         `json:"ownerName" validate:"required"`
	PassType    PassType       `json:"passType" validate:"oneof=VIP Basic Staff"`
	PublicPrice float64        `json:"publicPrice" validate:"gte=0"`
	CostPrice   float64        `json:"costPrice" validate:"gte=0"`
	Tags        []string       `json:"tags"`
	Color       string         `json:"color,omitempty" validate:"omitempty,rgbhex"`
	CreatedBy   string         `json:"createdBy,omitempty"`
	ScanLog     []ScanLogEntry `json:"scanLog"`
}

// Summary is what a scanner shows for a valid ticket.
type Summary struct {
	ID        string    `json:"id"`
	EventName string    `json:"eventName"`
	OwnerName string    `json:"ownerName"`
	EventDate time.Time `json:"eventDate"`
	PassType  PassType  `json:"passType"`
}

func (t *Ticket) Summary() Summary {
	return Summary{
		ID:        t.ID,
		EventName: t.EventName,
		OwnerName: t.OwnerName,
		EventDate: t.EventDate,
		PassType:  t.PassType,
	}
}

type Patch struct {
	EventID     *string    `json:"eventId,omitempty"`
	EventName   *string    `json:"eventName,omitempty"`
	EventDate   *time.Time `json:"eventDate,omitempty"`
	OwnerName   *string    `json:"ownerName,omitempty"`
	PassType    *PassType  `json:"passType,omitempty"`
	PublicPrice *float64   `json:"publicPrice,omitempty"`
	CostPrice   *float64   `json:"costPrice,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
	Color       *string    `json:"color,omitempty"`
}

func (p Patch) Apply(t *Ticket) {
	if p.EventID != nil {
		t.EventID = *p.EventID
	}
	if p.EventName != nil {
		t.EventName = *p.EventName
	}
	if p.EventDate != nil {
		t.EventDate = *p.EventDate
	}
	if p.OwnerName != nil {
		t.OwnerName = *p.OwnerName
	}
	if p.PassType != nil {
		t.PassType = *p.PassType
	}
	if p.PublicPrice != nil {
		t.PublicPrice = *p.PublicPrice
	}
	if p.CostPrice != nil {
		t.CostPrice = *p.CostPrice
	}
	if p.Tags != nil {
		t.Tags = *p.Tags
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
}

type ScanLogRequest struct {
	Message string `json:"message" validate:"required"`
}
