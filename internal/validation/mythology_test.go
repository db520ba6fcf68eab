package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMythologySlug(t *testing.T) {
	t.Parallel()

	valid := []string{"olympus", "nine-realms", "myth-42", "abc", "a1b2c3"}
	for _, slug := range valid {
		assert.NoError(t, ValidateMythologySlug(slug), "slug %q should be valid", slug)
	}

	invalid := []string{
		"",
		"ab",                        // too short
		"a-very-long-slug-over-the-limit", // too long
		"Has-Caps",
		"under_score",
		"spaced out",
		"-leading",
		"trailing-",
		"myth.dot",
	}
	for _, slug := range invalid {
		assert.Error(t, ValidateMythologySlug(slug), "slug %q should be invalid", slug)
	}
}

func TestValidateMythologySlug_Reserved(t *testing.T) {
	t.Parallel()

	for _, slug := range []string{"admin", "api", "mythologies", "crossovers", "swagger", "ws"} {
		err := ValidateMythologySlug(slug)
		assert.Error(t, err, "reserved slug %q should be rejected", slug)
	}

	// Reserved names only block exact matches.
	assert.NoError(t, ValidateMythologySlug("admins-realm"))
}
