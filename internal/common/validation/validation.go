package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxSlugLength        = 64
	MinTitleLength       = 1
	MinSlugLength        = 3
)

// Slugs are url-safe: lowercase letters, digits and dashes.
var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidateTitle checks a giveaway or task title.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title cannot be empty")
	}

	if len(title) > MaxTitleLength {
		return fmt.Errorf("title cannot exceed %d characters", MaxTitleLength)
	}

	return nil
}

// ValidateDescription checks a description field.
func ValidateDescription(description string) error {
	description = strings.TrimSpace(description)
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("description cannot exceed %d characters", MaxDescriptionLength)
	}

	return nil
}

// ValidateSlug checks a human-readable giveaway slug.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}

	if len(slug) < MinSlugLength || len(slug) > MaxSlugLength {
		return fmt.Errorf("slug must be between %d and %d characters", MinSlugLength, MaxSlugLength)
	}

	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("slug must contain only lowercase letters, numbers and dashes")
	}

	return nil
}

// ValidatePositiveInt checks that a number is positive.
func ValidatePositiveInt(value int64, fieldName string) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	return nil
}

// ValidateNonNegativeInt checks that a number is not negative.
func ValidateNonNegativeInt(value int64, fieldName string) error {
	if value < 0 {
		return fmt.Errorf("%s cannot be negative", fieldName)
	}
	return nil
}
