package member

import "time"

type SubscriptionType string

const (
	SubscriptionWeekly  SubscriptionType = "Weekly"
	SubscriptionMonthly SubscriptionType = "Monthly"
	SubscriptionYearly  SubscriptionType = "Yearly"
)

type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "Active"
	StatusInactive SubscriptionStatus = "Inactive"
	StatusExpired  SubscriptionStatus = "Expired"
)

type PaymentLogEntry struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date" validate:"required"`
	Amount      float64   `json:"amount" validate:"gt=0"`
	Description string    `json:"description" validate:"required"`
}

type ClubMember struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name" validate:"required"`
	Birthday           time.Time          `json:"birthday" validate:"required"`
	ProfileImageURL    string             `json:"profileImageUrl,omitempty" validate:"omitempty,url"`
	SubscriptionType   SubscriptionType   `json:"subscriptionType" validate:"oneof=Weekly Monthly Yearly"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus" validate:"oneof=Active Inactive Expired"`
	Tags               []string           `json:"tags"`
	SubscriptionDate   time.Time          `json:"subscriptionDate" validate:"required"`
	PaymentHistory     []PaymentLogEntry  `json:"paymentHistory"`
}

type Patch struct {
	Name               *string             `json:"name,omitempty"`
	Birthday           *time.Time          `json:"birthday,omitempty"`
	ProfileImageURL    *string             `json:"profileImageUrl,omitempty"`
	SubscriptionType   *SubscriptionType   `json:"subscriptionType,omitempty"`
	SubscriptionStatus *SubscriptionStatus `json:"subscriptionStatus,omitempty"`
	SubscriptionDate   *time.Time          `json:"subscriptionDate,omitempty"`
	Tags               *[]string           `json:"tags,omitempty"`
}

func (p Patch) Apply(m *ClubMember) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Birthday != nil {
		m.Birthday = *p.Birthday
	}
	if p.ProfileImageURL != nil {
		m.ProfileImageURL = *p.ProfileImageURL
	}
	if p.SubscriptionType != nil {
		m.SubscriptionType = *p.SubscriptionType
	}
	if p.SubscriptionStatus != nil {
		m.SubscriptionStatus = *p.SubscriptionStatus
	}
	if p.SubscriptionDate != nil {
		m.SubscriptionDate = *p.SubscriptionDate
	}
	if p.Tags != nil {
		m.Tags = *p.Tags
	}
}

// PaymentRequest records a payment; a zero Date means "now".
type PaymentRequest struct {
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount" validate:"gt=0"`
	Description string    `json:"description" validate:"required"`
}
