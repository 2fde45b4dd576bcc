package repositories

import (
	"context"
	"fmt"

	"github.com/medtalks/website/internal/models"
	"github.com/medtalks/website/internal/store"
)

type teamRepository struct {
	store store.Store
}

// NewTeamRepository creates a new team member repository
func NewTeamRepository(s store.Store) *teamRepository {
	return &teamRepository{
		store: s,
	}
}

// GetActive retrieves the team members shown on the site
func (r *teamRepository) GetActive(ctx context.Context) ([]models.TeamMember, error) {
	q := store.Query{Collection: store.CollectionTeamMembers}.Where("status", models.TeamMemberStatusActive)

	docs, err := r.store.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to get team members: %w", err)
	}

	members := make([]models.TeamMember, 0, len(docs))
	for _, doc := range docs {
		member := models.TeamMember{ID: doc.ID}
		if err := decodeDocument(doc.Data, &member); err != nil {
			return nil, fmt.Errorf("malformed team member %s: %w", doc.ID, err)
		}
		members = append(members, member)
	}

	return members, nil
}
