// Package validation holds input validation rules shared by handlers and services.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var mythologySlugRegex = regexp.MustCompile(`^[a-z0-9-]{3,24}$`)

var reservedMythologySlugs = map[string]struct{}{
	"admin":       {},
	"api":         {},
	"auth":        {},
	"crossovers":  {},
	"figures":     {},
	"health":      {},
	"metrics":     {},
	"mythologies": {},
	"settings":    {},
	"stories":     {},
	"swagger":     {},
	"users":       {},
	"ws":          {},
}

// ValidateMythologySlug validates mythology slug format and reserved names.
func ValidateMythologySlug(slug string) error {
	if !mythologySlugRegex.MatchString(slug) {
		return fmt.Errorf("slug must be 3-24 characters and contain only lowercase letters, numbers, and hyphens")
	}

	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}

	if _, exists := reservedMythologySlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}

	return nil
}
