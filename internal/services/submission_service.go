package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/medtalks/website/internal/models"
	"go.uber.org/zap"
)

// SubmissionRepository is the interface that wraps methods for storing form submissions
type SubmissionRepository interface {
	// Method CreateContact store a contact form submission with status "new"
	CreateContact(ctx context.Context, c *models.ContactSubmission) error
	// Method SubscriberExists report whether the email is already subscribed
	SubscriberExists(ctx context.Context, email string) (bool, error)
	// Method CreateSubscriber store an active newsletter subscription
	CreateSubscriber(ctx context.Context, s *models.NewsletterSubscription) error
	// Method CreateEnrollment store a course enrollment request with status "pending"
	CreateEnrollment(ctx context.Context, e *models.CourseEnrollment) error
}

type submissionService struct {
	repo     SubmissionRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewSubmissionService creates a new form submission service
func NewSubmissionService(repo SubmissionRepository, logger *zap.Logger) *submissionService {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &submissionService{
		repo:     repo,
		validate: validate,
		logger:   logger,
	}
}

// SubmitContact validates and stores a contact form submission
func (s *submissionService) SubmitContact(ctx context.Context, c *models.ContactSubmission) error {
	trimFields(&c.Name, &c.Email, &c.Phone, &c.Subject, &c.Message)
	if err := s.check(c); err != nil {
		return err
	}

	if err := s.repo.CreateContact(ctx, c); err != nil {
		s.logger.Error("failed to store contact submission", zap.Error(err))
		return fmt.Errorf("failed to submit contact form: %w", err)
	}
	return nil
}

// Subscribe adds an email to the newsletter.
//
// An email that is already subscribed is rejected with ErrDuplicateSubscriber.
func (s *submissionService) Subscribe(ctx context.Context, sub *models.NewsletterSubscription) error {
	trimFields(&sub.Email, &sub.Source)
	if sub.Source == "" {
		sub.Source = models.DefaultNewsletterSource
	}
	if err := s.check(sub); err != nil {
		return err
	}

	exists, err := s.repo.SubscriberExists(ctx, sub.Email)
	if err != nil {
		s.logger.Error("failed to check newsletter subscriber", zap.Error(err))
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	if exists {
		return ErrDuplicateSubscriber
	}

	if err := s.repo.CreateSubscriber(ctx, sub); err != nil {
		s.logger.Error("failed to store newsletter subscriber", zap.Error(err))
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	return nil
}

// Enroll stores a course enrollment request
func (s *submissionService) Enroll(ctx context.Context, e *models.CourseEnrollment) error {
	if err := s.repo.CreateEnrollment(ctx, e); err != nil {
		s.logger.Error("failed to store course enrollment", zap.String("course", e.Course), zap.Error(err))
		return fmt.Errorf("failed to enroll: %w", err)
	}
	return nil
}

// check validates a submission struct and converts failures to a *ValidationError
func (s *submissionService) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate submission: %w", err)
	}

	result := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		msg := fieldMessage(fe)
		if result.Message == "" {
			result.Message = msg
		}
		result.Fields[fe.Field()] = msg
	}
	return result
}

// fieldMessage describes a failed struct validation rule to the user
func fieldMessage(fe validator.FieldError) string {
	label := capitalize(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please enter a valid email address"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	}
	return label + " is invalid"
}

func trimFields(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
