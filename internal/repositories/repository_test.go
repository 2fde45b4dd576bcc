package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medtalks/website/internal/models"
	"github.com/medtalks/website/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findOnly returns the single document stored in a collection of the memory store
func findOnly(t *testing.T, s store.Store, collection string) store.Document {
	t.Helper()
	docs, err := s.Find(context.Background(), store.Query{Collection: collection})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	return docs[0]
}

func TestNewCourseRepository(t *testing.T) {
	s := store.NewMemoryStore()

	repo := NewCourseRepository(s)

	assert.NotNil(t, repo)
	assert.Equal(t, s, repo.store)
}

func TestCourseRepository_GetByCategory(t *testing.T) {
	tests := []struct {
		name        string
		seed        map[string]map[string]any
		category    string
		status      string
		expectedIDs []string
	}{
		{
			name: "filters by category and status",
			seed: map[string]map[string]any{
				"c1": {"category": "DentTALKS", "status": "published"},
				"c2": {"category": "DentTALKS", "status": "draft"},
				"c3": {"category": "DocTALKS", "status": "published"},
			},
			category:    "DentTALKS",
			status:      "published",
			expectedIDs: []string{"c1"},
		},
		{
			name:        "no matches",
			seed:        map[string]map[string]any{},
			category:    "NurseTALKS",
			status:      "published",
			expectedIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewMemoryStore()
			for id, data := range tt.seed {
				s.Seed(store.CollectionCourses, id, data)
			}
			repo := NewCourseRepository(s)

			courses, err := repo.GetByCategory(context.Background(), tt.category, tt.status)

			require.NoError(t, err)
			ids := make([]string, 0, len(courses))
			for _, c := range courses {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestCourseRepository_DecodesDefaultsAndSections(t *testing.T) {
	s := store.NewMemoryStore()
	s.Seed(store.CollectionCourses, "c1", map[string]any{
		"status":         "published",
		"actual_price":   "1500",
		"enrolled_count": "many",
		"is_free":        true,
		"sections": []any{
			map[string]any{
				"lessons": []any{
					map[string]any{"title": "Intro", "duration": "15", "is_preview": true, "extra": "dropped"},
					map[string]any{"title": "Deep dive", "duration": 30},
					"not a lesson",
				},
			},
			"not a section",
			map[string]any{"title": "Wrap-up", "lessons": []any{map[string]any{}}},
		},
	})
	repo := NewCourseRepository(s)

	courses, err := repo.GetAll(context.Background(), "published")

	require.NoError(t, err)
	require.Len(t, courses, 1)
	c := courses[0]
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, models.DefaultCourseTitle, c.Title)
	assert.Equal(t, models.DefaultCourseLevel, c.Level)
	assert.Equal(t, models.DefaultAvailability, c.Availability)
	assert.Equal(t, int64(1500), c.ActualPrice)
	assert.Equal(t, int64(0), c.EnrolledCount)
	assert.True(t, c.IsFree)
	require.Len(t, c.Sections, 2)
	assert.Equal(t, models.DefaultSectionTitle, c.Sections[0].Title)
	assert.Equal(t, []models.Lesson{
		{Title: "Intro", Duration: "15", IsPreview: true},
		{Title: "Deep dive", Duration: "30"},
	}, c.Sections[0].Lessons)
	assert.Equal(t, "Wrap-up", c.Sections[1].Title)
	assert.Equal(t, []models.Lesson{{Duration: "0"}}, c.Sections[1].Lessons)
}

func TestCourseRepository_GetByID(t *testing.T) {
	tests := []struct {
		name          string
		store         store.Store
		id            string
		expectedError error
	}{
		{
			name: "success",
			store: func() store.Store {
				s := store.NewMemoryStore()
				s.Seed(store.CollectionCourses, "c1", map[string]any{"title": "Dental OET"})
				return s
			}(),
			id: "c1",
		},
		{
			name:          "not found",
			store:         store.NewMemoryStore(),
			id:            "missing",
			expectedError: store.ErrNotFound,
		},
		{
			name:          "store not configured",
			store:         store.NewUnconfigured(errors.New("no credentials")),
			id:            "c1",
			expectedError: store.ErrNotConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewCourseRepository(tt.store)

			course, err := repo.GetByID(context.Background(), tt.id)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, course)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "c1", course.ID)
				assert.Equal(t, "Dental OET", course.Title)
			}
		})
	}
}

func TestBlogRepository_GetPublished(t *testing.T) {
	base := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	s := store.NewMemoryStore()
	s.Seed(store.CollectionBlogs, "b1", map[string]any{"title": "Oldest", "status": "published", "createdAt": base})
	s.Seed(store.CollectionBlogs, "b2", map[string]any{"title": "Draft", "status": "draft", "createdAt": base.Add(time.Hour)})
	s.Seed(store.CollectionBlogs, "b3", map[string]any{"title": "Newest", "status": "published", "createdAt": base.Add(2 * time.Hour)})
	s.Seed(store.CollectionBlogs, "b4", map[string]any{"title": "Undated", "status": "published"})

	tests := []struct {
		name           string
		limit          int
		expectedTitles []string
	}{
		{name: "all dated posts", limit: 0, expectedTitles: []string{"Newest", "Oldest"}},
		{name: "limited", limit: 1, expectedTitles: []string{"Newest"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewBlogRepository(s)

			posts, err := repo.GetPublished(context.Background(), tt.limit)

			require.NoError(t, err)
			titles := make([]string, 0, len(posts))
			for _, p := range posts {
				titles = append(titles, p.Title)
			}
			assert.Equal(t, tt.expectedTitles, titles)
		})
	}
}

func TestBlogRepository_GetPublishedMalformedPost(t *testing.T) {
	base := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	s := store.NewMemoryStore()
	s.Seed(store.CollectionBlogs, "good", map[string]any{
		"title":         "Good",
		"status":        "published",
		"createdAt":     base,
		"featuredImage": map[string]any{"url": "https://cdn.example/good.jpg"},
	})
	s.Seed(store.CollectionBlogs, "bad", map[string]any{
		"title":         "Bad image",
		"status":        "published",
		"createdAt":     base.Add(time.Hour),
		"featuredImage": "https://cdn.example/not-a-map.jpg",
	})
	repo := NewBlogRepository(s)

	posts, err := repo.GetPublished(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "bad", posts[0].ID)
	assert.Equal(t, "Bad image", posts[0].Title)
	assert.Nil(t, posts[0].FeaturedImage)
	assert.Equal(t, "good", posts[1].ID)
	require.NotNil(t, posts[1].FeaturedImage)
	assert.Equal(t, "https://cdn.example/good.jpg", posts[1].FeaturedImage.URL)

	post, err := repo.GetByID(context.Background(), "bad")
	require.NoError(t, err)
	assert.Equal(t, "Bad image", post.Title)
}

func TestBlogRepository_GetBySlugAndID(t *testing.T) {
	created := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	s := store.NewMemoryStore()
	s.Seed(store.CollectionBlogs, "b1", map[string]any{
		"slug":      "oet-writing-tips",
		"title":     "OET Writing Tips",
		"createdAt": created,
		"author":    map[string]any{"name": "Dr. Lee"},
		"tags":      []any{"oet", "writing"},
	})
	repo := NewBlogRepository(s)

	post, err := repo.GetBySlug(context.Background(), "oet-writing-tips")
	require.NoError(t, err)
	assert.Equal(t, "b1", post.ID)
	assert.Equal(t, "OET Writing Tips", post.Title)
	require.NotNil(t, post.CreatedAt)
	assert.True(t, created.Equal(*post.CreatedAt))
	require.NotNil(t, post.Author)
	assert.Equal(t, "Dr. Lee", post.Author.Name)
	assert.Equal(t, []string{"oet", "writing"}, post.Tags)

	_, err = repo.GetBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	post, err = repo.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "oet-writing-tips", post.Slug)

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTeamRepository_GetActive(t *testing.T) {
	s := store.NewMemoryStore()
	s.Seed(store.CollectionTeamMembers, "t1", map[string]any{"name": "Amira", "role": "Lead Tutor", "status": "active"})
	s.Seed(store.CollectionTeamMembers, "t2", map[string]any{"name": "Ben", "status": "inactive"})
	repo := NewTeamRepository(s)

	members, err := repo.GetActive(context.Background())

	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, models.TeamMember{ID: "t1", Name: "Amira", Role: "Lead Tutor", Status: "active"}, members[0])

	_, err = NewTeamRepository(store.NewUnconfigured(nil)).GetActive(context.Background())
	assert.ErrorIs(t, err, store.ErrNotConfigured)
}

func TestSubmissionRepository_Newsletter(t *testing.T) {
	s := store.NewMemoryStore()
	repo := NewSubmissionRepository(s)
	ctx := context.Background()

	exists, err := repo.SubscriberExists(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	err = repo.CreateSubscriber(ctx, &models.NewsletterSubscription{Email: "ada@example.com", Source: "footer"})
	require.NoError(t, err)

	exists, err = repo.SubscriberExists(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	doc := findOnly(t, s, store.CollectionNewsletterSubscribers)
	assert.Equal(t, "active", doc.Data["status"])
	assert.Equal(t, "footer", doc.Data["source"])
	assert.IsType(t, time.Time{}, doc.Data["subscribed_at"])
}

func TestSubmissionRepository_CreateContactAndEnrollment(t *testing.T) {
	s := store.NewMemoryStore()
	repo := NewSubmissionRepository(s)
	ctx := context.Background()

	require.NoError(t, repo.CreateContact(ctx, &models.ContactSubmission{Name: "Ada", Email: "ada@example.com", Message: "Hello"}))
	require.NoError(t, repo.CreateEnrollment(ctx, &models.CourseEnrollment{Name: "Ada", Email: "ada@example.com", Course: "c1"}))

	contact := findOnly(t, s, store.CollectionContactSubmissions)
	assert.Equal(t, "new", contact.Data["status"])
	assert.Equal(t, "Hello", contact.Data["message"])
	assert.IsType(t, time.Time{}, contact.Data["timestamp"])

	enrollment := findOnly(t, s, store.CollectionCourseEnrollments)
	assert.Equal(t, "pending", enrollment.Data["status"])
	assert.Equal(t, "c1", enrollment.Data["course"])
}

func TestSubmissionRepository_CreatePartnershipApplication(t *testing.T) {
	s := store.NewMemoryStore()
	repo := NewSubmissionRepository(s)
	ctx := context.Background()
	app := &models.PartnershipApplication{
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Email:          "ada@example.com",
		CountryCode:    "+44",
		Phone:          "7911123456",
		TargetSegments: []string{"Nurses", "Doctors"},
		AgreeToTerms:   true,
		DemoCall:       "Yes",
	}

	err := repo.CreatePartnershipApplication(ctx, app, models.ApplicationMetadata{
		ReferenceNumber: "MT-20250301-AB12C",
		IPAddress:       "203.0.113.7",
	})
	require.NoError(t, err)

	doc := findOnly(t, s, store.CollectionPartnershipApplications)
	assert.Equal(t, "Ada Lovelace", doc.Data["full_name"])
	assert.Equal(t, "+447911123456", doc.Data["full_phone"])
	assert.Equal(t, "new", doc.Data["status"])
	assert.Equal(t, "203.0.113.7", doc.Data["ip_address"])
	assert.Equal(t, []any{"Nurses", "Doctors"}, doc.Data["target_segments"])
	assert.IsType(t, time.Time{}, doc.Data["submitted_at"])

	exists, err := repo.ReferenceNumberExists(ctx, "MT-20250301-AB12C")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ReferenceNumberExists(ctx, "MT-20250301-ZZZZZ")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSubmissionRepository_StoreErrors(t *testing.T) {
	repo := NewSubmissionRepository(store.NewUnconfigured(nil))
	ctx := context.Background()

	err := repo.CreateContact(ctx, &models.ContactSubmission{})
	assert.ErrorIs(t, err, store.ErrNotConfigured)
	assert.Contains(t, err.Error(), "failed to create contact submission")

	_, err = repo.SubscriberExists(ctx, "a@b.co")
	assert.ErrorIs(t, err, store.ErrNotConfigured)

	err = repo.CreatePartnershipApplication(ctx, &models.PartnershipApplication{}, models.ApplicationMetadata{})
	assert.ErrorIs(t, err, store.ErrNotConfigured)
}
