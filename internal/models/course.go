package models

// Course statuses and defaults
const (
	CourseStatusPublished = "published"
	DefaultCourseTitle    = "Untitled Course"
	DefaultSectionTitle   = "Untitled Section"
	DefaultCourseLevel    = "beginner"
	DefaultAvailability   = "active"
)

// Lesson is a single lesson of a course section
type Lesson struct {
	Title string `json:"title" mapstructure:"title"`
	// Duration is a number of minutes kept as text, as entered in the catalog
	Duration  string `json:"duration" mapstructure:"duration"`
	IsPreview bool   `json:"is_preview" mapstructure:"is_preview"`
	VideoURL  string `json:"video_url" mapstructure:"video_url"`
}

// Section is an ordered group of lessons
type Section struct {
	Title   string   `json:"title" mapstructure:"title"`
	Lessons []Lesson `json:"lessons" mapstructure:"lessons"`
}

// Course represents a course document with derived totals
type Course struct {
	ID                    string    `json:"id" mapstructure:"-"`
	Title                 string    `json:"title" mapstructure:"title"`
	Description           string    `json:"description" mapstructure:"description"`
	Thumbnail             string    `json:"thumbnail" mapstructure:"thumbnail"`
	InstructorName        string    `json:"instructor_name" mapstructure:"instructor_name"`
	InstructorDescription string    `json:"instructor_description" mapstructure:"instructor_description"`
	InstructorPhotoURL    string    `json:"instructor_photo_url" mapstructure:"instructor_photo_url"`
	ActualPrice           int64     `json:"actual_price" mapstructure:"actual_price"`
	DiscountedPrice       int64     `json:"discounted_price" mapstructure:"discounted_price"`
	DiscountPercentage    int64     `json:"discount_percentage" mapstructure:"discount_percentage"`
	DurationHours         float64   `json:"duration_hours" mapstructure:"duration_hours"`
	Level                 string    `json:"level" mapstructure:"level"`
	Prerequisites         string    `json:"prerequisites" mapstructure:"prerequisites"`
	IsFree                bool      `json:"is_free" mapstructure:"is_free"`
	EnrolledCount         int64     `json:"enrolled_count" mapstructure:"enrolled_count"`
	Category              string    `json:"category" mapstructure:"category"`
	Availability          string    `json:"availability" mapstructure:"availability"`
	Status                string    `json:"status" mapstructure:"status"`
	Sections              []Section `json:"sections" mapstructure:"sections"`
	// Derived from Sections at read time, never stored
	TotalLessons         int `json:"total_lessons" mapstructure:"-"`
	TotalSections        int `json:"total_sections" mapstructure:"-"`
	TotalDurationMinutes int `json:"total_duration_minutes" mapstructure:"-"`
}

// NewCourse returns a course holding the catalog defaults for absent fields
func NewCourse(id string) Course {
	return Course{
		ID:           id,
		Title:        DefaultCourseTitle,
		Level:        DefaultCourseLevel,
		Availability: DefaultAvailability,
		Sections:     []Section{},
	}
}

// CourseStats holds display-ready course statistics
type CourseStats struct {
	TotalSections          int     `json:"total_sections"`
	TotalLessons           int     `json:"total_lessons"`
	TotalDurationFormatted string  `json:"total_duration_formatted"`
	DurationHours          float64 `json:"duration_hours"`
	EnrolledCount          int64   `json:"enrolled_count"`
	Level                  string  `json:"level"`
}

// CategoryInfo describes how a course category is presented
type CategoryInfo struct {
	Name  string `json:"name" yaml:"name"`
	URL   string `json:"url" yaml:"url"`
	Icon  string `json:"icon" yaml:"icon"`
	Color string `json:"color" yaml:"color"`
}

// CourseView is a course prepared for rendering
type CourseView struct {
	Course
	Stats                    CourseStats  `json:"stats"`
	FormattedActualPrice     string       `json:"formatted_actual_price"`
	FormattedDiscountedPrice string       `json:"formatted_discounted_price"`
	CategoryInfo             CategoryInfo `json:"category_info"`
}
