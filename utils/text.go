package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	// usernamePattern mirrors the username validator tag.
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
)

// Slugify lowercases s, strips accents and joins word runs with hyphens.
func Slugify(s string) string {
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.Trim(nonSlugChars.ReplaceAllString(b.String(), "-"), "-")
}

// SEOSlug is the slug used in public video URLs, capped at 80 characters.
func SEOSlug(title string) string {
	slug := Slugify(title)
	if len(slug) > 80 {
		slug = strings.TrimRight(slug[:80], "-")
	}
	if slug == "" {
		return "video"
	}
	return slug
}

// ParseTags splits a comma separated list, trimming blanks.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// NormalizeEmail trims and lowercases an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
