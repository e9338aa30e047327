package mention

import (
	"testing"
	"time"

	common_models "go-hse/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func TestSynthesizeMentionsFields(t *testing.T) {
	tasks := []common_models.Task{
		{ID: "t1", Title: "Check @Bo", Status: common_models.TaskStatusInProgress, CreatedAt: base},
		{ID: "t2", Title: "Done @Bo", Status: common_models.TaskStatusCompleted, CreatedAt: base.Add(time.Minute)},
	}

	out := SynthesizeMentions(nil, tasks, "Bo")
	require.Len(t, out, 2)

	n := out[0]
	assert.Equal(t, "task-mention-t1", n.ID)
	assert.Equal(t, "You were mentioned in a task", n.Title)
	assert.Equal(t, `Task: "Check @Bo"`, n.Message)
	assert.Equal(t, "task", n.Category)
	assert.Equal(t, "info", n.Type)
	assert.False(t, n.IsRead)
	assert.Equal(t, base, n.CreatedAt)
	assert.True(t, n.Synthetic)
	assert.True(t, IsSyntheticID(n.ID))

	assert.True(t, out[1].IsRead)
}

func TestSynthesizeMentionsSkipsCoveredTasks(t *testing.T) {
	tasks := []common_models.Task{
		{ID: "t1", Title: "Check @Bo", CreatedAt: base},
		{ID: "t2", Title: "Also @Bo", CreatedAt: base},
	}
	persisted := []Notification{{ID: "n1", RelatedID: "t1", CreatedAt: base}}

	out := SynthesizeMentions(persisted, tasks, "Bo")
	require.Len(t, out, 1)
	assert.Equal(t, "task-mention-t2", out[0].ID)
}

func TestSynthesizeMentionsEmptyName(t *testing.T) {
	tasks := []common_models.Task{{ID: "t1", Title: "Check @"}}
	assert.Empty(t, SynthesizeMentions(nil, tasks, ""))
}

func TestBuildFeedSortsAndCaps(t *testing.T) {
	persisted := []Notification{
		{ID: "old", CreatedAt: base.Add(-time.Hour)},
		{ID: "new", CreatedAt: base.Add(time.Hour), IsRead: true},
		{ID: "tie", CreatedAt: base},
	}
	tasks := []common_models.Task{
		{ID: "t1", Title: "@Bo look", CreatedAt: base},
		{ID: "t2", Title: "unrelated", CreatedAt: base.Add(2 * time.Hour)},
	}

	feed := BuildFeed(persisted, tasks, "Bo", 0)
	ids := make([]string, len(feed))
	for i, n := range feed {
		ids[i] = n.ID
	}
	assert.Equal(t, []string{"new", "tie", "task-mention-t1", "old"}, ids)
	assert.Equal(t, 3, UnreadCount(feed))

	capped := BuildFeed(persisted, tasks, "Bo", 2)
	require.Len(t, capped, 2)
	assert.Equal(t, "tie", capped[1].ID)
}

func TestBuildFeedDoesNotAliasInput(t *testing.T) {
	persisted := []Notification{
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(time.Hour)},
	}
	_ = BuildFeed(persisted, nil, "", 0)
	assert.Equal(t, "a", persisted[0].ID)
}

func TestBuildFeedCoveredSkipsTasksWithUnfetchedRows(t *testing.T) {
	persisted := []Notification{{ID: "n1", RelatedID: "t9", CreatedAt: base}}
	tasks := []common_models.Task{
		{ID: "t1", Title: "Check @Bo", CreatedAt: base.Add(-time.Hour)},
		{ID: "t2", Title: "Sign @Bo", CreatedAt: base.Add(-2 * time.Hour)},
	}

	feed := BuildFeedCovered(persisted, []string{"t1"}, tasks, "Bo", 0)
	require.Len(t, feed, 2)
	assert.Equal(t, "n1", feed[0].ID)
	assert.Equal(t, "task-mention-t2", feed[1].ID)
}
