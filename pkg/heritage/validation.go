package heritage

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether email matches the accepted subscriber format
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Validate checks required fields. Lists must be present but may be empty.
func (in HeroSlideInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Description, validation.Required),
		validation.Field(&in.Categories, validation.NotNil),
		validation.Field(&in.BgColor, validation.Required),
		validation.Field(&in.TextColor, validation.Required),
		validation.Field(&in.ImageURL, validation.Required),
		validation.Field(&in.Region, validation.Required),
	)
}

func (in CulturalCategoryInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Description, validation.Required),
		validation.Field(&in.BgColor, validation.Required),
		validation.Field(&in.TextColor, validation.Required),
		validation.Field(&in.Categories, validation.NotNil),
		validation.Field(&in.CountText, validation.Required),
		validation.Field(&in.ImageURL, validation.Required),
	)
}

func (in RegionalHighlightInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.RegionName, validation.Required),
		validation.Field(&in.States, validation.NotNil),
		validation.Field(&in.CulturalHighlights, validation.NotNil),
		validation.Field(&in.BgColor, validation.Required),
		validation.Field(&in.TextColor, validation.Required),
	)
}

// Validate checks required fields; content and author are optional.
func (in FeaturedStoryInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Excerpt, validation.Required),
		validation.Field(&in.Category, validation.Required),
		validation.Field(&in.ReadTime, validation.Required),
		validation.Field(&in.ImageURL, validation.Required),
	)
}

// Validate only checks presence. Subscribe applies the format check.
func (in NewsletterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required),
	)
}
