package models

// Submission statuses
const (
	ContactStatusNew        = "new"
	SubscriberStatusActive  = "active"
	EnrollmentStatusPending = "pending"
	DefaultNewsletterSource = "website"
)

// ContactSubmission is a contact form submission
type ContactSubmission struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" validate:"max=30"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// NewsletterSubscription is a newsletter signup request
type NewsletterSubscription struct {
	Email  string `json:"email" validate:"required,email,max=255"`
	Source string `json:"source" validate:"max=100"`
}

// CourseEnrollment is a course enrollment request
type CourseEnrollment struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Course  string `json:"course"`
	Program string `json:"program"`
}
