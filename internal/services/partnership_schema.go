package services

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Choices is an ordered set of allowed values for a selection field
type Choices struct {
	options []string
	set     mapset.Set[string]
}

func newChoices(options ...string) Choices {
	return Choices{
		options: options,
		set:     mapset.NewSet(options...),
	}
}

// Options returns the allowed values in display order
func (c Choices) Options() []string {
	out := make([]string, len(c.options))
	copy(out, c.options)
	return out
}

// Allows reports whether every value is an allowed choice
func (c Choices) Allows(values ...string) bool {
	return c.set.Contains(values...)
}

// ApplicationSchema lists the allowed values of the partnership application selection fields
type ApplicationSchema struct {
	JobTitles        Choices
	Countries        Choices
	OrgTypes         Choices
	StudentVolumes   Choices
	PartnershipTypes Choices
	Timelines        Choices
	TargetSegments   Choices
	YesNo            Choices
}

// PartnershipSchema is the schema the partnership form is rendered from and validated against
var PartnershipSchema = ApplicationSchema{
	JobTitles: newChoices(
		"Director / Founder", "Academic Coordinator", "Faculty / Trainer",
		"Business Development", "Consultant", "Other",
	),
	Countries: newChoices(
		"India", "United States", "United Kingdom", "Canada", "Australia",
		"New Zealand", "Ireland", "South Africa", "Singapore", "Philippines",
		"Turkey", "United Arab Emirates", "Saudi Arabia", "Germany", "France",
		"Japan", "South Korea", "Nepal", "Sri Lanka", "Bangladesh",
		"Pakistan", "Nigeria", "Other",
	),
	OrgTypes: newChoices(
		"Medical College", "Nursing College", "Hospital", "EdTech Company",
		"Study Abroad Consultancy", "Individual Trainer", "Other",
	),
	StudentVolumes: newChoices("0-100", "100-500", "500-1000", "1000+", "Not Applicable"),
	PartnershipTypes: newChoices(
		"Authorized Training Partner", "Campus Program Partner",
		"Reseller / Referral Partner", "Corporate Hospital Training Partner",
		"Faculty Representative",
	),
	Timelines: newChoices("Immediately", "1-3 months", "3-6 months", "Not sure yet"),
	TargetSegments: newChoices(
		"MBBS Students", "Nursing Students", "Doctors / Clinicians",
		"IELTS/OET Aspirants", "International Placement",
	),
	YesNo: newChoices("Yes", "No"),
}
