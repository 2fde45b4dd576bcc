package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/medtalks/website/internal/models"
	"github.com/medtalks/website/internal/store"
)

type blogRepository struct {
	store store.Store
}

// NewBlogRepository creates a new blog repository
func NewBlogRepository(s store.Store) *blogRepository {
	return &blogRepository{
		store: s,
	}
}

// GetPublished retrieves published posts, newest first.
//
// A zero limit returns every published post.
func (r *blogRepository) GetPublished(ctx context.Context, limit int) ([]models.BlogPost, error) {
	q := store.Query{
		Collection: store.CollectionBlogs,
		OrderBy:    "createdAt",
		Direction:  store.Descending,
		Limit:      limit,
	}.Where("status", models.BlogStatusPublished)

	docs, err := r.store.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to get published blog posts: %w", err)
	}

	posts := make([]models.BlogPost, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, decodeBlogPost(doc))
	}

	return posts, nil
}

// GetBySlug retrieves the first post with the given slug.
//
// A missing post is reported with an error wrapping store.ErrNotFound.
func (r *blogRepository) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	q := store.Query{Collection: store.CollectionBlogs, Limit: 1}.Where("slug", slug)

	docs, err := r.store.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to get blog post by slug: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("blog post %q: %w", slug, store.ErrNotFound)
	}

	post := decodeBlogPost(docs[0])
	return &post, nil
}

// GetByID retrieves a post by its document ID.
//
// A missing post is reported with an error wrapping store.ErrNotFound.
func (r *blogRepository) GetByID(ctx context.Context, id string) (*models.BlogPost, error) {
	doc, err := r.store.Get(ctx, store.CollectionBlogs, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("blog post %q: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blog post by id: %w", err)
	}

	post := decodeBlogPost(*doc)
	return &post, nil
}

// decodeBlogPost decodes the fields of a post that have the expected shape.
// A malformed field is left at its zero value so the post can still be listed.
func decodeBlogPost(doc store.Document) models.BlogPost {
	post := models.BlogPost{ID: doc.ID}
	_ = decodeDocument(doc.Data, &post)
	return post
}
