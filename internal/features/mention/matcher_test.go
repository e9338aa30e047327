package mention

import (
	"testing"

	common_models "go-hse/internal/common/models"

	"github.com/stretchr/testify/assert"
)

func TestMentions(t *testing.T) {
	task := common_models.Task{ID: "t1", Title: "Please check @Maria Lopez on this"}

	tests := []struct {
		name     string
		viewer   string
		expected bool
	}{
		{"full name", "Maria Lopez", true},
		{"case insensitive", "maria lopez", true},
		{"surrounding spaces", "  Maria Lopez ", true},
		{"different name", "Mario", false},
		{"surname only", "Lopez", false},
		{"empty name", "", false},
		{"blank name", "   ", false},
		// plain substring test, a leading part of the name also matches
		{"first name only", "Maria", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Mentions(task, tt.viewer))
		})
	}
}

func TestMentionsDescription(t *testing.T) {
	task := common_models.Task{Title: "Inspect scaffolding", Description: "cc @JOHN DOE before friday"}
	assert.True(t, Mentions(task, "John Doe"))
	assert.False(t, Mentions(task, "Jane Doe"))
}

func TestHasAnyMention(t *testing.T) {
	assert.False(t, HasAnyMention(common_models.Task{Title: "Quarterly audit prep", Description: "no mentions here"}))
	assert.True(t, HasAnyMention(common_models.Task{Title: "Quarterly audit prep", Description: "ping @someone"}))
	assert.True(t, HasAnyMention(common_models.Task{Title: "mail safety@example.com"}))
}
