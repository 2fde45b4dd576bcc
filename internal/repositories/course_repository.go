package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/medtalks/website/internal/models"
	"github.com/medtalks/website/internal/store"
)

type courseRepository struct {
	store store.Store
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(s store.Store) *courseRepository {
	return &courseRepository{
		store: s,
	}
}

// GetAll retrieves all courses with the given status
func (r *courseRepository) GetAll(ctx context.Context, status string) ([]models.Course, error) {
	docs, err := r.store.Find(ctx, store.Query{Collection: store.CollectionCourses}.Where("status", status))
	if err != nil {
		return nil, fmt.Errorf("failed to get courses: %w", err)
	}

	return decodeCourses(docs), nil
}

// GetByCategory retrieves courses of a category with the given status
func (r *courseRepository) GetByCategory(ctx context.Context, category, status string) ([]models.Course, error) {
	q := store.Query{Collection: store.CollectionCourses}.
		Where("category", category).
		Where("status", status)

	docs, err := r.store.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to get courses by category %q: %w", category, err)
	}

	return decodeCourses(docs), nil
}

// GetByID retrieves a course by its document ID.
//
// A missing course is reported with an error wrapping store.ErrNotFound.
func (r *courseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	doc, err := r.store.Get(ctx, store.CollectionCourses, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("course %q: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}

	course := decodeCourse(*doc)
	return &course, nil
}

func decodeCourses(docs []store.Document) []models.Course {
	courses := make([]models.Course, 0, len(docs))
	for _, doc := range docs {
		courses = append(courses, decodeCourse(doc))
	}
	return courses
}

// decodeCourse decodes course scalars over the catalog defaults and rebuilds the section list
// in the documented lesson shape. Malformed sections or lessons are skipped or zeroed, never fatal.
func decodeCourse(doc store.Document) models.Course {
	course := models.NewCourse(doc.ID)

	scalars := make(map[string]any, len(doc.Data))
	for k, v := range doc.Data {
		if k == "sections" {
			continue
		}
		scalars[k] = v
	}
	// Partially decoded scalars are kept; a bad field falls back to its default
	_ = decodeDocument(scalars, &course)

	rawSections, _ := doc.Data["sections"].([]any)
	for _, rs := range rawSections {
		sectionData, ok := rs.(map[string]any)
		if !ok {
			continue
		}

		section := models.Section{Title: models.DefaultSectionTitle, Lessons: []models.Lesson{}}
		if title, ok := sectionData["title"].(string); ok {
			section.Title = title
		}

		rawLessons, _ := sectionData["lessons"].([]any)
		for _, rl := range rawLessons {
			lessonData, ok := rl.(map[string]any)
			if !ok {
				continue
			}
			lesson := models.Lesson{Duration: "0"}
			_ = decodeDocument(lessonData, &lesson)
			section.Lessons = append(section.Lessons, lesson)
		}

		course.Sections = append(course.Sections, section)
	}

	return course
}
