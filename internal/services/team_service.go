package services

import (
	"context"

	"github.com/medtalks/website/internal/models"
	"go.uber.org/zap"
)

// TeamRepository is the interface that wraps methods for team member data access
type TeamRepository interface {
	// Method GetActive retrieve the team members whose status is active
	GetActive(ctx context.Context) ([]models.TeamMember, error)
}

type teamService struct {
	repo   TeamRepository
	logger *zap.Logger
}

// NewTeamService creates a new team service
func NewTeamService(repo TeamRepository, logger *zap.Logger) *teamService {
	return &teamService{
		repo:   repo,
		logger: logger,
	}
}

// Members returns the active team members, or an empty list when they cannot be read
func (s *teamService) Members(ctx context.Context) []models.TeamMember {
	members, err := s.repo.GetActive(ctx)
	if err != nil {
		s.logger.Error("failed to get team members", zap.Error(err))
		return []models.TeamMember{}
	}
	return members
}
