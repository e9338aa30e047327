package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var nonSlug = regexp.MustCompile("[^a-z0-9]+")

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// ExportFilename names a downloaded export, e.g. "q2-safety-tasks_20260301_090000.xlsx".
// Names with no usable characters fall back to fallback.
func ExportFilename(name, fallback, ext string, at time.Time) string {
	slug := Slugify(name)
	if slug == "" {
		slug = fallback
	}
	return fmt.Sprintf("%s_%s.%s", slug, at.Format("20060102_150405"), strings.TrimPrefix(ext, "."))
}
