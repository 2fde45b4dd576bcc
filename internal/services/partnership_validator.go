package services

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/medtalks/website/internal/models"
)

var (
	namePattern        = regexp.MustCompile(`^[A-Za-z\s\-'.]+$`)
	emailPattern       = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	countryCodePattern = regexp.MustCompile(`^\+\d{1,4}(-[A-Z]{2})?$`)
	phonePattern       = regexp.MustCompile(`^\d{7,15}$`)
	phoneSeparators    = regexp.MustCompile(`[\s\-()]+`)
	linkedInPattern    = regexp.MustCompile(`^https?://(www\.)?linkedin\.com/in/.+`)
	websitePattern     = regexp.MustCompile(`^https?://.+\..+`)
)

// falseWords are text values that count as an unchecked box
var falseWords = mapset.NewSet("false", "0", "off", "no")

// PartnershipValidation is the outcome of validating a partnership application.
//
// Errors is keyed by the submitted field name (e.g. "firstName") and Clean by the stored
// field name (e.g. "first_name"). Every field of the form lands in exactly one of the two.
type PartnershipValidation struct {
	Errors map[string]string
	Clean  map[string]any
}

// Valid reports whether the application has no field errors
func (v PartnershipValidation) Valid() bool {
	return len(v.Errors) == 0
}

// Application returns the typed application when the validation succeeded
func (v PartnershipValidation) Application() (*models.PartnershipApplication, bool) {
	if !v.Valid() {
		return nil, false
	}

	str := func(key string) string {
		s, _ := v.Clean[key].(string)
		return s
	}
	flag := func(key string) bool {
		b, _ := v.Clean[key].(bool)
		return b
	}
	segments, _ := v.Clean["target_segments"].([]string)

	return &models.PartnershipApplication{
		FirstName:              str("first_name"),
		LastName:               str("last_name"),
		Email:                  str("email"),
		CountryCode:            str("country_code"),
		Phone:                  str("phone"),
		IsWhatsapp:             flag("is_whatsapp"),
		JobTitle:               str("job_title"),
		LinkedIn:               str("linkedin"),
		Company:                str("company"),
		Website:                str("website"),
		Country:                str("country"),
		OrgType:                str("org_type"),
		StudentVolume:          str("student_volume"),
		CurrentEnglishTraining: str("current_english_training"),
		PartnershipType:        str("partnership_type"),
		ExpectedTimeline:       str("expected_timeline"),
		TargetSegments:         append([]string(nil), segments...),
		MonthlyVolume:          str("monthly_volume"),
		WhyPartner:             str("why_partner"),
		AdditionalInfo:         str("additional_info"),
		AgreeToTerms:           flag("agree_to_terms"),
		AuthorityConfirmed:     flag("authority_confirmed"),
		DemoCall:               str("demo_call"),
	}, true
}

// textField describes a free text field of the form
type textField struct {
	input, clean string
	required     bool
	// normalize runs after the presence check and before length and pattern checks
	normalize func(string) string
	min, max  int
	pattern   *regexp.Regexp

	msgRequired, msgShort, msgLong, msgPattern string
}

var applicationTextFields = []textField{
	{
		input: "firstName", clean: "first_name", required: true,
		min: 2, max: 50, pattern: namePattern,
		msgRequired: "First name is required.",
		msgShort:    "First name must be 2-50 characters.",
		msgLong:     "First name must be 2-50 characters.",
		msgPattern:  "First name contains invalid characters.",
	},
	{
		input: "lastName", clean: "last_name",
		max: 50, pattern: namePattern,
		msgLong:    "Last name must be at most 50 characters.",
		msgPattern: "Last name contains invalid characters.",
	},
	{
		input: "email", clean: "email", required: true,
		normalize: strings.ToLower, pattern: emailPattern,
		msgRequired: "Email address is required.",
		msgPattern:  "Please enter a valid email address.",
	},
	{
		input: "countryCode", clean: "country_code", required: true,
		pattern:     countryCodePattern,
		msgRequired: "Country code is required.",
		msgPattern:  "Invalid country code format.",
	},
	{
		input: "phone", clean: "phone", required: true,
		normalize:   func(s string) string { return phoneSeparators.ReplaceAllString(s, "") },
		pattern:     phonePattern,
		msgRequired: "Phone number is required.",
		msgPattern:  "Phone must be 7-15 digits.",
	},
	{
		input: "linkedin", clean: "linkedin", required: true,
		pattern:     linkedInPattern,
		msgRequired: "LinkedIn profile URL is required.",
		msgPattern:  "Please enter a valid LinkedIn profile URL (e.g. https://linkedin.com/in/your-profile).",
	},
	{
		input: "company", clean: "company", required: true,
		min: 2, max: 100,
		msgRequired: "Institution/company name is required.",
		msgShort:    "Institution name must be 2-100 characters.",
		msgLong:     "Institution name must be 2-100 characters.",
	},
	{
		input: "website", clean: "website",
		pattern:    websitePattern,
		msgPattern: "Please enter a valid URL starting with http:// or https://.",
	},
	{
		input: "monthlyVolume", clean: "monthly_volume", required: true,
		min: 2, max: 100,
		msgRequired: "Expected monthly volume is required.",
		msgShort:    "Monthly volume must be 2-100 characters.",
		msgLong:     "Monthly volume must be 2-100 characters.",
	},
	{
		input: "whyPartner", clean: "why_partner", required: true,
		min: 20, max: 2000,
		msgRequired: "Please explain why you want to partner with us.",
		msgShort:    "Please provide at least 20 characters.",
		msgLong:     "Please keep your response under 2000 characters.",
	},
	{
		input: "additionalInfo", clean: "additional_info",
		max:     2000,
		msgLong: "Additional info must be under 2000 characters.",
	},
}

// choiceField describes a selection field with a fixed set of allowed values
type choiceField struct {
	input, clean string
	choices      func(ApplicationSchema) Choices

	msgRequired, msgInvalid string
}

var applicationChoiceFields = []choiceField{
	{
		input: "jobTitle", clean: "job_title",
		choices:     func(s ApplicationSchema) Choices { return s.JobTitles },
		msgRequired: "Role in organization is required.",
		msgInvalid:  "Invalid role selected.",
	},
	{
		input: "country", clean: "country",
		choices:     func(s ApplicationSchema) Choices { return s.Countries },
		msgRequired: "Country is required.",
		msgInvalid:  "Invalid country selected.",
	},
	{
		input: "orgType", clean: "org_type",
		choices:     func(s ApplicationSchema) Choices { return s.OrgTypes },
		msgRequired: "Organization type is required.",
		msgInvalid:  "Invalid organization type selected.",
	},
	{
		input: "studentVolume", clean: "student_volume",
		choices:     func(s ApplicationSchema) Choices { return s.StudentVolumes },
		msgRequired: "Student volume is required.",
		msgInvalid:  "Invalid student volume selected.",
	},
	{
		input: "currentEnglishTraining", clean: "current_english_training",
		choices:     func(s ApplicationSchema) Choices { return s.YesNo },
		msgRequired: "Please indicate if you currently offer English training.",
		msgInvalid:  "Invalid selection.",
	},
	{
		input: "partnershipType", clean: "partnership_type",
		choices:     func(s ApplicationSchema) Choices { return s.PartnershipTypes },
		msgRequired: "Partnership type is required.",
		msgInvalid:  "Invalid partnership type selected.",
	},
	{
		input: "expectedTimeline", clean: "expected_timeline",
		choices:     func(s ApplicationSchema) Choices { return s.Timelines },
		msgRequired: "Expected timeline is required.",
		msgInvalid:  "Invalid timeline selected.",
	},
	{
		input: "demoCall", clean: "demo_call",
		choices:     func(s ApplicationSchema) Choices { return s.YesNo },
		msgRequired: "Please indicate your demo call preference.",
		msgInvalid:  "Invalid demo call selection.",
	},
}

// consentField describes a checkbox that must be ticked
type consentField struct {
	input, clean string
	msgRequired  string
}

var applicationConsentFields = []consentField{
	{input: "agreeToTerms", clean: "agree_to_terms", msgRequired: "You must agree to the terms and conditions."},
	{input: "authority", clean: "authority_confirmed", msgRequired: "You must confirm you have authority for partnership discussions."},
}

// ValidatePartnershipApplication checks every field of a submitted partnership application.
//
// All fields are checked independently, so the result reports every problem at once.
// Text is trimmed before any check. The function has no side effects.
func ValidatePartnershipApplication(raw map[string]any) PartnershipValidation {
	result := PartnershipValidation{
		Errors: make(map[string]string),
		Clean:  make(map[string]any),
	}

	for _, f := range applicationTextFields {
		value, msg := checkText(f, textValue(raw[f.input]))
		if msg != "" {
			result.Errors[f.input] = msg
			continue
		}
		result.Clean[f.clean] = value
	}

	for _, f := range applicationChoiceFields {
		value := textValue(raw[f.input])
		switch {
		case value == "":
			result.Errors[f.input] = f.msgRequired
		case !f.choices(PartnershipSchema).Allows(value):
			result.Errors[f.input] = f.msgInvalid
		default:
			result.Clean[f.clean] = value
		}
	}

	for _, f := range applicationConsentFields {
		if !truthy(raw[f.input]) {
			result.Errors[f.input] = f.msgRequired
			continue
		}
		result.Clean[f.clean] = true
	}

	result.Clean["is_whatsapp"] = truthy(raw["isWhatsapp"])

	segments := stringList(raw["targetSegments"])
	switch {
	case len(segments) == 0:
		result.Errors["targetSegments"] = "Please select at least one target segment."
	case !PartnershipSchema.TargetSegments.Allows(segments...):
		result.Errors["targetSegments"] = "One or more selected segments are invalid."
	default:
		result.Clean["target_segments"] = segments
	}

	return result
}

// checkText returns the normalized value of a text field, or the error message when it is rejected
func checkText(f textField, value string) (string, string) {
	if value == "" {
		if f.required {
			return "", f.msgRequired
		}
		return "", ""
	}

	if f.normalize != nil {
		value = f.normalize(value)
	}

	n := utf8.RuneCountInString(value)
	switch {
	case f.min > 0 && n < f.min:
		return "", f.msgShort
	case f.max > 0 && n > f.max:
		return "", f.msgLong
	case f.pattern != nil && !f.pattern.MatchString(value):
		return "", f.msgPattern
	}
	return value, ""
}

// textValue returns the trimmed text of a submitted value.
//
// Absent values, zero scalars, lists and objects read as empty text.
func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if rv.IsZero() {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(v))
	}
	return ""
}

// truthy reports whether a submitted value counts as set.
//
// Text is false when empty or one of falseWords, numbers when zero, lists and objects when empty.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s != "" && !falseWords.Contains(s)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return !rv.IsZero()
	}
	return true
}

// stringList turns a single value or a list into trimmed non-empty strings, skipping anything that is not text
func stringList(v any) []string {
	var items []any
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		items = t
	case []string:
		for _, s := range t {
			items = append(items, s)
		}
	default:
		items = []any{t}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
