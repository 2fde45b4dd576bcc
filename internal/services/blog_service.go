package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/medtalks/website/internal/models"
	"github.com/medtalks/website/internal/store"
	"go.uber.org/zap"
)

// BlogRepository is the interface that wraps methods for blog post data access
type BlogRepository interface {
	// Method GetPublished retrieve published posts ordered by creation time, newest first.
	//
	// "limit" caps the number of posts, zero means no limit.
	GetPublished(ctx context.Context, limit int) ([]models.BlogPost, error)
	// Method GetBySlug retrieve the post with the given slug.
	//
	// A missing post is reported with an error wrapping store.ErrNotFound.
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	// Method GetByID retrieve a post by its document ID.
	//
	// Please reference GetBySlug method for more information about error values.
	GetByID(ctx context.Context, id string) (*models.BlogPost, error)
}

const blogDateLayout = "Jan 02, 2006"

type blogService struct {
	repo   BlogRepository
	logger *zap.Logger
}

// NewBlogService creates a new blog service
func NewBlogService(repo BlogRepository, logger *zap.Logger) *blogService {
	return &blogService{
		repo:   repo,
		logger: logger,
	}
}

// ListPublished returns published posts prepared for listing, newest first.
//
// A zero limit returns every published post.
func (s *blogService) ListPublished(ctx context.Context, limit int) ([]models.BlogPost, error) {
	posts, err := s.repo.GetPublished(ctx, limit)
	if err != nil {
		s.logger.Error("failed to list blog posts", zap.Int("limit", limit), zap.Error(err))
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}

	for i := range posts {
		prepareListing(&posts[i])
	}
	return posts, nil
}

// GetPost returns a post for its page, looked up by slug and then by document ID.
//
// A missing post is reported with an error wrapping store.ErrNotFound.
func (s *blogService) GetPost(ctx context.Context, slug string) (*models.BlogPost, error) {
	post, err := s.repo.GetBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		post, err = s.repo.GetByID(ctx, slug)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		s.logger.Error("failed to get blog post", zap.String("slug", slug), zap.Error(err))
		return nil, fmt.Errorf("failed to get blog post: %w", err)
	}

	preparePost(post)
	return post, nil
}

// prepareListing fills the slug from the document ID and shows the last editor's photo as the avatar
func prepareListing(p *models.BlogPost) {
	if p.Slug == "" {
		p.Slug = p.ID
	}
	if p.UpdatedByPhotoURL != "" {
		if p.Author == nil {
			p.Author = &models.BlogAuthor{}
		}
		p.Author.Avatar = p.UpdatedByPhotoURL
	}
}

// preparePost fills the display defaults of a post page
func preparePost(p *models.BlogPost) {
	if p.Slug == "" {
		p.Slug = p.ID
	}

	if p.FeaturedImage != nil && p.FeaturedImage.URL != "" {
		p.Image = p.FeaturedImage.URL
	} else if p.Image == "" {
		p.Image = models.DefaultBlogImage
	}

	if p.CreatedAt != nil && !p.CreatedAt.IsZero() {
		p.Date = p.CreatedAt.Format(blogDateLayout)
	} else if p.Date == "" {
		p.Date = models.RecentDateLabel
	}

	if p.ReadingTime == "" {
		p.ReadingTime = models.DefaultReadingTime
	}
	if p.Category == "" {
		p.Category = models.DefaultBlogCategory
	}

	if p.Author == nil {
		p.Author = &models.BlogAuthor{
			Name:   firstNonEmpty(p.UpdatedByName, p.CreatedByName, models.DefaultAuthorName),
			Avatar: firstNonEmpty(p.UpdatedByPhotoURL, models.DefaultAuthorAvatar),
			Bio:    models.DefaultAuthorBio,
		}
	} else if p.Author.Avatar == "" {
		p.Author.Avatar = p.UpdatedByPhotoURL
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
