package repositories

import (
	"context"
	"fmt"

	"github.com/medtalks/website/internal/models"
	"github.com/medtalks/website/internal/store"
)

type submissionRepository struct {
	store store.Store
}

// NewSubmissionRepository creates a repository for form submissions
func NewSubmissionRepository(s store.Store) *submissionRepository {
	return &submissionRepository{
		store: s,
	}
}

// CreateContact stores a contact form submission
func (r *submissionRepository) CreateContact(ctx context.Context, c *models.ContactSubmission) error {
	_, err := r.store.Add(ctx, store.CollectionContactSubmissions, map[string]any{
		"name":      c.Name,
		"email":     c.Email,
		"phone":     c.Phone,
		"subject":   c.Subject,
		"message":   c.Message,
		"timestamp": store.ServerTimestamp,
		"status":    models.ContactStatusNew,
	})
	if err != nil {
		return fmt.Errorf("failed to create contact submission: %w", err)
	}
	return nil
}

// SubscriberExists reports whether the email is already subscribed to the newsletter
func (r *submissionRepository) SubscriberExists(ctx context.Context, email string) (bool, error) {
	q := store.Query{Collection: store.CollectionNewsletterSubscribers, Limit: 1}.Where("email", email)

	docs, err := r.store.Find(ctx, q)
	if err != nil {
		return false, fmt.Errorf("failed to check newsletter subscriber: %w", err)
	}
	return len(docs) > 0, nil
}

// CreateSubscriber stores a newsletter subscription
func (r *submissionRepository) CreateSubscriber(ctx context.Context, s *models.NewsletterSubscription) error {
	_, err := r.store.Add(ctx, store.CollectionNewsletterSubscribers, map[string]any{
		"email":         s.Email,
		"subscribed_at": store.ServerTimestamp,
		"status":        models.SubscriberStatusActive,
		"source":        s.Source,
	})
	if err != nil {
		return fmt.Errorf("failed to create newsletter subscriber: %w", err)
	}
	return nil
}

// CreateEnrollment stores a course enrollment request
func (r *submissionRepository) CreateEnrollment(ctx context.Context, e *models.CourseEnrollment) error {
	_, err := r.store.Add(ctx, store.CollectionCourseEnrollments, map[string]any{
		"name":        e.Name,
		"email":       e.Email,
		"phone":       e.Phone,
		"course":      e.Course,
		"program":     e.Program,
		"enrolled_at": store.ServerTimestamp,
		"status":      models.EnrollmentStatusPending,
	})
	if err != nil {
		return fmt.Errorf("failed to create course enrollment: %w", err)
	}
	return nil
}

// ReferenceNumberExists reports whether an application already uses the reference number
func (r *submissionRepository) ReferenceNumberExists(ctx context.Context, ref string) (bool, error) {
	q := store.Query{Collection: store.CollectionPartnershipApplications, Limit: 1}.Where("reference_number", ref)

	docs, err := r.store.Find(ctx, q)
	if err != nil {
		return false, fmt.Errorf("failed to check reference number: %w", err)
	}
	return len(docs) > 0, nil
}

// CreatePartnershipApplication stores an accepted partnership application with its metadata
func (r *submissionRepository) CreatePartnershipApplication(ctx context.Context, a *models.PartnershipApplication, meta models.ApplicationMetadata) error {
	segments := make([]any, 0, len(a.TargetSegments))
	for _, s := range a.TargetSegments {
		segments = append(segments, s)
	}

	_, err := r.store.Add(ctx, store.CollectionPartnershipApplications, map[string]any{
		"reference_number":         meta.ReferenceNumber,
		"first_name":               a.FirstName,
		"last_name":                a.LastName,
		"full_name":                a.FullName(),
		"email":                    a.Email,
		"country_code":             a.CountryCode,
		"phone":                    a.Phone,
		"full_phone":               a.FullPhone(),
		"is_whatsapp":              a.IsWhatsapp,
		"job_title":                a.JobTitle,
		"linkedin":                 a.LinkedIn,
		"company":                  a.Company,
		"website":                  a.Website,
		"country":                  a.Country,
		"org_type":                 a.OrgType,
		"student_volume":           a.StudentVolume,
		"current_english_training": a.CurrentEnglishTraining,
		"partnership_type":         a.PartnershipType,
		"expected_timeline":        a.ExpectedTimeline,
		"target_segments":          segments,
		"monthly_volume":           a.MonthlyVolume,
		"why_partner":              a.WhyPartner,
		"additional_info":          a.AdditionalInfo,
		"agree_to_terms":           a.AgreeToTerms,
		"authority_confirmed":      a.AuthorityConfirmed,
		"demo_call":                a.DemoCall,
		"submitted_at":             store.ServerTimestamp,
		"status":                   models.ApplicationStatusNew,
		"ip_address":               meta.IPAddress,
	})
	if err != nil {
		return fmt.Errorf("failed to create partnership application: %w", err)
	}
	return nil
}
