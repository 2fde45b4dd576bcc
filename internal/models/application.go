package models

import "strings"

// ApplicationStatusNew is the status of a freshly submitted partnership application
const ApplicationStatusNew = "new"

// PartnershipApplication is a validated, normalized partnership application.
//
// Values are produced by the partnership validator only; callers treat them as read-only.
type PartnershipApplication struct {
	// Personal information
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
	IsWhatsapp  bool   `json:"is_whatsapp"`
	JobTitle    string `json:"job_title"`
	LinkedIn    string `json:"linkedin"`
	// Institution details
	Company                string `json:"company"`
	Website                string `json:"website"`
	Country                string `json:"country"`
	OrgType                string `json:"org_type"`
	StudentVolume          string `json:"student_volume"`
	CurrentEnglishTraining string `json:"current_english_training"`
	// Partnership details
	PartnershipType  string   `json:"partnership_type"`
	ExpectedTimeline string   `json:"expected_timeline"`
	TargetSegments   []string `json:"target_segments"`
	// Business experience
	MonthlyVolume string `json:"monthly_volume"`
	WhyPartner    string `json:"why_partner"`
	// Agreement
	AdditionalInfo     string `json:"additional_info"`
	AgreeToTerms       bool   `json:"agree_to_terms"`
	AuthorityConfirmed bool   `json:"authority_confirmed"`
	DemoCall           string `json:"demo_call"`
}

// FullName joins first and last name
func (a PartnershipApplication) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// FullPhone prefixes the phone digits with the country code
func (a PartnershipApplication) FullPhone() string {
	return a.CountryCode + a.Phone
}

// ApplicationMetadata is generated by the server when an application is accepted
type ApplicationMetadata struct {
	ReferenceNumber string
	IPAddress       string
}
