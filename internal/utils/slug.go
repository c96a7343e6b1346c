package utils

import (
	"regexp"
	"strings"
)

var invalidSlugChars = regexp.MustCompile(`[^a-z0-9\s-]+`)
var whitespaceRun = regexp.MustCompile(`\s+`)
var dashRun = regexp.MustCompile(`-+`)

// Slugify derives a URL-safe slug: lowercase, characters outside
// [a-z0-9\s-] stripped, whitespace runs collapsed to single hyphens.
func Slugify(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = invalidSlugChars.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = dashRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
