package models

// TeamMemberStatusActive marks members shown on the team page
const TeamMemberStatusActive = "active"

// TeamMember represents a team member document
type TeamMember struct {
	ID       string `json:"id" mapstructure:"-"`
	Name     string `json:"name" mapstructure:"name"`
	Role     string `json:"role" mapstructure:"role"`
	Bio      string `json:"bio" mapstructure:"bio"`
	PhotoURL string `json:"photo_url" mapstructure:"photo_url"`
	LinkedIn string `json:"linkedin" mapstructure:"linkedin"`
	Status   string `json:"status" mapstructure:"status"`
}
