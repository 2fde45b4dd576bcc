package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/medtalks/website/internal/flash"
	"github.com/medtalks/website/internal/models"
)

// mockSubmissionService is a mock implementation of SubmissionService
type mockSubmissionService struct {
	contacts    []models.ContactSubmission
	subscribers []models.NewsletterSubscription
	enrollments []models.CourseEnrollment
	err         error
}

func (m *mockSubmissionService) SubmitContact(ctx context.Context, c *models.ContactSubmission) error {
	if m.err != nil {
		return m.err
	}
	m.contacts = append(m.contacts, *c)
	return nil
}

func (m *mockSubmissionService) Subscribe(ctx context.Context, sub *models.NewsletterSubscription) error {
	if m.err != nil {
		return m.err
	}
	m.subscribers = append(m.subscribers, *sub)
	return nil
}

func (m *mockSubmissionService) Enroll(ctx context.Context, e *models.CourseEnrollment) error {
	if m.err != nil {
		return m.err
	}
	m.enrollments = append(m.enrollments, *e)
	return nil
}

// mockPartnershipService is a mock implementation of PartnershipService
type mockPartnershipService struct {
	ref   string
	err   error
	raw   map[string]any
	ip    string
	calls int
}

func (m *mockPartnershipService) Submit(ctx context.Context, raw map[string]any, ipAddress string) (string, error) {
	m.calls++
	m.raw = raw
	m.ip = ipAddress
	return m.ref, m.err
}

// mockBlogService is a mock implementation of BlogService
type mockBlogService struct {
	posts   []models.BlogPost
	post    *models.BlogPost
	listErr error
	getErr  error
	limits  []int
}

func (m *mockBlogService) ListPublished(ctx context.Context, limit int) ([]models.BlogPost, error) {
	m.limits = append(m.limits, limit)
	return m.posts, m.listErr
}

func (m *mockBlogService) GetPost(ctx context.Context, slug string) (*models.BlogPost, error) {
	return m.post, m.getErr
}

// mockCatalogService is a mock implementation of CatalogService
type mockCatalogService struct {
	courses    []models.Course
	course     *models.Course
	categories []string
}

func (m *mockCatalogService) ListByCategory(ctx context.Context, category, status string) []models.Course {
	m.categories = append(m.categories, category)
	return m.courses
}

func (m *mockCatalogService) ListAll(ctx context.Context, status string) []models.Course {
	return m.courses
}

func (m *mockCatalogService) GetByID(ctx context.Context, id string) *models.Course {
	return m.course
}

func (m *mockCatalogService) View(course models.Course) models.CourseView {
	return models.CourseView{
		Course:                   course,
		Stats:                    models.CourseStats{TotalLessons: course.TotalLessons, TotalDurationFormatted: "2h", Level: "Beginner"},
		FormattedActualPrice:     "$1,000",
		FormattedDiscountedPrice: "$499",
		CategoryInfo:             models.CategoryInfo{Name: "DocTALKS", URL: "/programs/doctalks", Icon: "🩺", Color: "#0e415b"},
	}
}

func (m *mockCatalogService) Views(courses []models.Course) []models.CourseView {
	views := make([]models.CourseView, 0, len(courses))
	for _, c := range courses {
		views = append(views, m.View(c))
	}
	return views
}

func (m *mockCatalogService) Category(category string) (models.CategoryInfo, bool) {
	if category != "doctalks" {
		return models.CategoryInfo{}, false
	}
	return models.CategoryInfo{Name: "DocTALKS", URL: "/programs/doctalks", Icon: "🩺", Color: "#0e415b"}, true
}

// mockTeamService is a mock implementation of TeamService
type mockTeamService struct {
	members []models.TeamMember
}

func (m *mockTeamService) Members(ctx context.Context) []models.TeamMember {
	return m.members
}

// mockNotices records queued notices and serves a fixed set on Pop
type mockNotices struct {
	added   []flash.Message
	pending []flash.Message
	addErr  error
}

func (m *mockNotices) Add(w http.ResponseWriter, r *http.Request, category, text string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, flash.Message{Category: category, Text: text})
	return nil
}

func (m *mockNotices) Pop(w http.ResponseWriter, r *http.Request) []flash.Message {
	pending := m.pending
	m.pending = nil
	return pending
}

var errDatabase = errors.New("database error")
