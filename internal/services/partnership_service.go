package services

import (
	"context"
	"fmt"

	"github.com/medtalks/website/internal/models"
	"go.uber.org/zap"
)

// PartnershipRepository is the interface that wraps methods for partnership application storage
type PartnershipRepository interface {
	// Method ReferenceNumberExists report whether a stored application already uses the reference number
	ReferenceNumberExists(ctx context.Context, ref string) (bool, error)
	// Method CreatePartnershipApplication store an accepted application with its generated metadata.
	//
	// The stored document also carries the full name, full phone, submission time and status "new".
	CreatePartnershipApplication(ctx context.Context, app *models.PartnershipApplication, meta models.ApplicationMetadata) error
}

// PartnershipNotifier is the interface that wraps the notice sent for accepted applications
type PartnershipNotifier interface {
	// Method PartnershipSubmitted announce an accepted application. Failures are handled by the notifier.
	PartnershipSubmitted(ctx context.Context, ref string, app *models.PartnershipApplication)
}

const maxReferenceAttempts = 5

const msgFixErrors = "Please fix the highlighted errors and try again."

type partnershipService struct {
	repo     PartnershipRepository
	refs     *ReferenceGenerator
	notifier PartnershipNotifier
	logger   *zap.Logger
}

// NewPartnershipService creates a new partnership application service.
//
// notifier may be nil when no notices are sent.
func NewPartnershipService(repo PartnershipRepository, refs *ReferenceGenerator, notifier PartnershipNotifier, logger *zap.Logger) *partnershipService {
	return &partnershipService{
		repo:     repo,
		refs:     refs,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit validates and stores a partnership application and returns its reference number.
//
// Rejected input is reported with a *ValidationError holding a message per submitted field.
func (s *partnershipService) Submit(ctx context.Context, raw map[string]any, ipAddress string) (string, error) {
	validation := ValidatePartnershipApplication(raw)
	app, ok := validation.Application()
	if !ok {
		return "", &ValidationError{Message: msgFixErrors, Fields: validation.Errors}
	}

	ref, err := s.allocateReference(ctx)
	if err != nil {
		s.logger.Error("failed to allocate reference number", zap.Error(err))
		return "", err
	}

	meta := models.ApplicationMetadata{ReferenceNumber: ref, IPAddress: ipAddress}
	if err := s.repo.CreatePartnershipApplication(ctx, app, meta); err != nil {
		s.logger.Error("failed to store partnership application",
			zap.String("reference_number", ref),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to submit partnership application: %w", err)
	}

	s.logger.Info("partnership application submitted",
		zap.String("reference_number", ref),
		zap.String("partnership_type", app.PartnershipType),
	)
	if s.notifier != nil {
		s.notifier.PartnershipSubmitted(ctx, ref, app)
	}
	return ref, nil
}

// allocateReference generates reference numbers until one is not used by a stored application
func (s *partnershipService) allocateReference(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		ref, err := s.refs.Next()
		if err != nil {
			return "", err
		}

		exists, err := s.repo.ReferenceNumberExists(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("failed to check reference number: %w", err)
		}
		if !exists {
			return ref, nil
		}
		s.logger.Warn("reference number collision", zap.String("reference_number", ref), zap.Int("attempt", attempt))
	}
	return "", ErrReferenceUnavailable
}
