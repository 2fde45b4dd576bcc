package models

import "time"

// Blog defaults
const (
	BlogStatusPublished = "published"
	DefaultBlogImage    = "https://images.unsplash.com/photo-1576091160399-112ba8d25d1d?w=1200&h=600&fit=crop"
	DefaultAuthorAvatar = "https://images.unsplash.com/photo-1559839734-2b71ea197ec2?w=100&h=100&fit=crop"
	DefaultAuthorName   = "MedTalks Team"
	DefaultAuthorBio    = "Part of the MedTalks academic team"
	DefaultReadingTime  = "5 min read"
	DefaultBlogCategory = "Medical"
	RecentDateLabel     = "Recent"
)

// BlogAuthor is the author block shown with a post
type BlogAuthor struct {
	Name   string `json:"name,omitempty" mapstructure:"name"`
	Avatar string `json:"avatar,omitempty" mapstructure:"avatar"`
	Bio    string `json:"bio,omitempty" mapstructure:"bio"`
}

// FeaturedImage is the hero image of a post
type FeaturedImage struct {
	URL string `json:"url" mapstructure:"url"`
	Alt string `json:"alt,omitempty" mapstructure:"alt"`
}

// BlogPost represents a blog document
type BlogPost struct {
	ID                string         `json:"id" mapstructure:"-"`
	Slug              string         `json:"slug" mapstructure:"slug"`
	Title             string         `json:"title" mapstructure:"title"`
	Excerpt           string         `json:"excerpt,omitempty" mapstructure:"excerpt"`
	Content           string         `json:"content,omitempty" mapstructure:"content"`
	Status            string         `json:"status" mapstructure:"status"`
	Category          string         `json:"category,omitempty" mapstructure:"category"`
	Tags              []string       `json:"tags,omitempty" mapstructure:"tags"`
	Image             string         `json:"image,omitempty" mapstructure:"image"`
	FeaturedImage     *FeaturedImage `json:"featuredImage,omitempty" mapstructure:"featuredImage"`
	ReadingTime       string         `json:"reading_time,omitempty" mapstructure:"reading_time"`
	Date              string         `json:"date,omitempty" mapstructure:"date"`
	CreatedAt         *time.Time     `json:"createdAt,omitempty" mapstructure:"createdAt"`
	CreatedByName     string         `json:"createdByName,omitempty" mapstructure:"createdByName"`
	UpdatedByName     string         `json:"updatedByName,omitempty" mapstructure:"updatedByName"`
	UpdatedByPhotoURL string         `json:"updatedByPhotoURL,omitempty" mapstructure:"updatedByPhotoURL"`
	Author            *BlogAuthor    `json:"author,omitempty" mapstructure:"author"`
	ExpertSection     any            `json:"expertSection,omitempty" mapstructure:"expertSection"`
}
