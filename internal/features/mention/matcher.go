// Package mention decides which tasks a user should see and which tasks should raise
// "you were mentioned" notifications, based on free-text @Name mentions.
package mention

import (
	"strings"

	common_models "go-hse/internal/common/models"
)

// Mentions reports whether the task's title or description contains "@name",
// case-insensitively. An empty name never matches.
//
// Matching is a plain substring test: "@John" also matches "@Johnny" and names are
// not delimited by spaces.
func Mentions(task common_models.Task, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	needle := "@" + strings.ToLower(name)
	return strings.Contains(strings.ToLower(task.Title), needle) ||
		strings.Contains(strings.ToLower(task.Description), needle)
}

// HasAnyMention reports whether the title or description contains an "@" at all.
func HasAnyMention(task common_models.Task) bool {
	return strings.Contains(task.Title, "@") || strings.Contains(task.Description, "@")
}
