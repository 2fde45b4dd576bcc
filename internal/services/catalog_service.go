package services

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/medtalks/website/internal/models"
	"github.com/medtalks/website/internal/store"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// CourseRepository is the interface that wraps methods for course data access
type CourseRepository interface {
	// Method GetAll retrieve all courses with the given status.
	//
	// Courses are decoded over the catalog defaults, derived totals are left for the caller.
	GetAll(ctx context.Context, status string) ([]models.Course, error)
	// Method GetByCategory retrieve the courses of a category with the given status.
	//
	// Please reference GetAll method for more information about the returned courses.
	GetByCategory(ctx context.Context, category, status string) ([]models.Course, error)
	// Method GetByID retrieve a course by its document ID.
	//
	// A missing course is reported with an error wrapping store.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Course, error)
}

//go:embed categories.yaml
var categoriesYAML []byte

// categoryTable maps a course category to its display info
type categoryTable struct {
	Default    models.CategoryInfo            `yaml:"default"`
	Categories map[string]models.CategoryInfo `yaml:"categories"`
}

var defaultCategories = mustLoadCategories(categoriesYAML)

func loadCategories(raw []byte) (categoryTable, error) {
	var table categoryTable
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return categoryTable{}, fmt.Errorf("failed to parse category table: %w", err)
	}
	if table.Default.Name == "" {
		return categoryTable{}, errors.New("category table has no default entry")
	}
	return table, nil
}

func mustLoadCategories(raw []byte) categoryTable {
	table, err := loadCategories(raw)
	if err != nil {
		panic(err)
	}
	return table
}

func (t categoryTable) lookup(category string) models.CategoryInfo {
	if info, ok := t.Categories[strings.ToLower(strings.TrimSpace(category))]; ok {
		return info
	}
	return t.Default
}

type catalogService struct {
	repo       CourseRepository
	categories categoryTable
	logger     *zap.Logger
}

// NewCatalogService creates a new course catalog service
func NewCatalogService(repo CourseRepository, logger *zap.Logger) *catalogService {
	return &catalogService{
		repo:       repo,
		categories: defaultCategories,
		logger:     logger,
	}
}

// ListByCategory returns the normalized courses of a category.
//
// An empty status means published courses. Data access failures are logged and yield an empty list.
func (s *catalogService) ListByCategory(ctx context.Context, category, status string) []models.Course {
	courses, err := s.repo.GetByCategory(ctx, category, statusOrDefault(status))
	if err != nil {
		s.logger.Error("failed to list courses by category", zap.String("category", category), zap.Error(err))
		return []models.Course{}
	}
	return normalizeCourses(courses)
}

// ListAll returns every normalized course with the given status.
//
// An empty status means published courses. Data access failures are logged and yield an empty list.
func (s *catalogService) ListAll(ctx context.Context, status string) []models.Course {
	courses, err := s.repo.GetAll(ctx, statusOrDefault(status))
	if err != nil {
		s.logger.Error("failed to list courses", zap.Error(err))
		return []models.Course{}
	}
	return normalizeCourses(courses)
}

// GetByID returns a normalized course, or nil when it does not exist or cannot be read
func (s *catalogService) GetByID(ctx context.Context, id string) *models.Course {
	course, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Debug("course not found", zap.String("course_id", id))
		return nil
	}
	if err != nil {
		s.logger.Error("failed to get course", zap.String("course_id", id), zap.Error(err))
		return nil
	}

	normalized := NormalizeCourse(*course)
	return &normalized
}

// Category returns the display info of a known program category
func (s *catalogService) Category(category string) (models.CategoryInfo, bool) {
	info, ok := s.categories.Categories[strings.ToLower(strings.TrimSpace(category))]
	return info, ok
}

// View prepares a course for rendering with its stats, formatted prices and category info
func (s *catalogService) View(course models.Course) models.CourseView {
	return models.CourseView{
		Course:                   course,
		Stats:                    CourseStats(course),
		FormattedActualPrice:     FormatPrice(course.ActualPrice),
		FormattedDiscountedPrice: FormatPrice(course.DiscountedPrice),
		CategoryInfo:             s.categories.lookup(course.Category),
	}
}

// Views prepares a list of courses for rendering
func (s *catalogService) Views(courses []models.Course) []models.CourseView {
	views := make([]models.CourseView, 0, len(courses))
	for _, c := range courses {
		views = append(views, s.View(c))
	}
	return views
}

// NormalizeCourse computes the derived section, lesson and duration totals of a course
func NormalizeCourse(c models.Course) models.Course {
	if c.Sections == nil {
		c.Sections = []models.Section{}
	}

	c.TotalSections = len(c.Sections)
	c.TotalLessons = 0
	c.TotalDurationMinutes = 0
	for _, section := range c.Sections {
		c.TotalLessons += len(section.Lessons)
		for _, lesson := range section.Lessons {
			c.TotalDurationMinutes += lessonMinutes(lesson.Duration)
		}
	}
	return c
}

func normalizeCourses(courses []models.Course) []models.Course {
	out := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		out = append(out, NormalizeCourse(c))
	}
	return out
}

func statusOrDefault(status string) string {
	if status == "" {
		return models.CourseStatusPublished
	}
	return status
}
