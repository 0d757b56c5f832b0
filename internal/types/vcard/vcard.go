package vcard

type SocialNetwork string

const (
	NetworkWebsite   SocialNetwork = "website"
	NetworkLinkedIn  SocialNetwork = "linkedin"
	NetworkTwitter   SocialNetwork = "twitter"
	NetworkGithub    SocialNetwork = "github"
	NetworkInstagram SocialNetwork = "instagram"
	NetworkFacebook  SocialNetwork = "facebook"
)

type Subscription string

const (
	SubscriptionBasic      Subscription = "Basic"
	SubscriptionTop        Subscription = "Top"
	SubscriptionEnterprise Subscription = "Enterprise"
)

// Subscriptions lists every tier in display order.
var Subscriptions = []Subscription{SubscriptionBasic, SubscriptionTop, SubscriptionEnterprise}

type BioSize string

const (
	BioSmall BioSize = "sm"
	BioBase  BioSize = "base"
	BioLarge BioSize = "lg"
)

type SocialLink struct {
	ID      string        `json:"id"`
	Network SocialNetwork `json:"network" validate:"oneof=website linkedin twitter github instagram facebook"`
	URL     string        `json:"url" validate:"required,url"`
}

type ContactDetail struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

type VCard struct {
	ID              string          `json:"id"`
	FirstName       string          `json:"firstName" validate:"required"`
	LastName        string          `json:"lastName" validate:"required"`
	JobTitle        string          `json:"jobTitle"`
	Company         string          `json:"company"`
	Department      string          `json:"department"`
	Phones          []ContactDetail `json:"phones"`
	Emails          []ContactDetail `json:"emails"`
	Websites        []ContactDetail `json:"websites"`
	Addresses       []ContactDetail `json:"addresses"`
	Socials         []SocialLink    `json:"socials" validate:"dive"`
	ProfileImageURL string          `json:"profileImageUrl" validate:"omitempty,url"`
	Bio             string          `json:"bio"`
	BioSize         BioSize         `json:"bioSize,omitempty" validate:"omitempty,oneof=sm base lg"`
	PrimaryColor    string          `json:"primaryColor" validate:"required,rgbhex"`
	SecondaryColor  string          `json:"secondaryColor" validate:"required,rgbhex"`
	Subscription    Subscription    `json:"subscription" validate:"oneof=Basic Top Enterprise"`
	Tags            []string        `json:"tags"`
	CreatedBy       string          `json:"createdBy,omitempty"`
}

func (v *VCard) FullName() string {
	return v.FirstName + " " + v.LastName
}

// Patch carries the fields of an edit; nil fields are left untouched.
type Patch struct {
	FirstName       *string          `json:"firstName,omitempty"`
	LastName        *string          `json:"lastName,omitempty"`
	JobTitle        *string          `json:"jobTitle,omitempty"`
	Company         *string          `json:"company,omitempty"`
	Department      *string          `json:"department,omitempty"`
	Phones          *[]ContactDetail `json:"phones,omitempty"`
	Emails          *[]ContactDetail `json:"emails,omitempty"`
	Websites        *[]ContactDetail `json:"websites,omitempty"`
	Addresses       *[]ContactDetail `json:"addresses,omitempty"`
	Socials         *[]SocialLink    `json:"socials,omitempty"`
	ProfileImageURL *string          `json:"profileImageUrl,omitempty"`
	Bio             *string          `json:"bio,omitempty"`
	BioSize         *BioSize         `json:"bioSize,omitempty"`
	PrimaryColor    *string          `json:"primaryColor,omitempty"`
	SecondaryColor  *string          `json:"secondaryColor,omitempty"`
	Subscription    *Subscription    `json:"subscription,omitempty"`
	Tags            *[]string        `json:"tags,omitempty"`
}

func (p Patch) Apply(v *VCard) {
	if p.FirstName != nil {
		v.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		v.LastName = *p.LastName
	}
	if p.JobTitle != nil {
		v.JobTitle = *p.JobTitle
	}
	if p.Company != nil {
		v.Company = *p.Company
	}
	if p.Department != nil {
		v.Department = *p.Department
	}
	if p.Phones != nil {
		v.Phones = *p.Phones
	}
	if p.Emails != nil {
		v.Emails = *p.Emails
	}
	if p.Websites != nil {
		v.Websites = *p.Websites
	}
	if p.Addresses != nil {
		v.Addresses = *p.Addresses
	}
	if p.Socials != nil {
		v.Socials = *p.Socials
	}
	if p.ProfileImageURL != nil {
		v.ProfileImageURL = *p.ProfileImageURL
	}
	if p.Bio != nil {
		v.Bio = *p.Bio
	}
	if p.BioSize != nil {
		v.BioSize = *p.BioSize
	}
	if p.PrimaryColor != nil {
		v.PrimaryColor = *p.PrimaryColor
	}
	if p.SecondaryColor != nil {
		v.SecondaryColor = *p.SecondaryColor
	}
	if p.Subscription != nil {
		v.Subscription = *p.Subscription
	}
	if p.Tags != nil {
		v.Tags = *p.Tags
	}
}
