package mention

import (
	"fmt"
	"testing"
	"time"

	common_models "go-hse/internal/common/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// tasksFrom builds tasks whose title mentions Alice when the flag is set.
func tasksFrom(offsets []int, mentioned []bool) []common_models.Task {
	tasks := make([]common_models.Task, len(offsets))
	for i, off := range offsets {
		title := fmt.Sprintf("Task %d", i)
		if i < len(mentioned) && mentioned[i] {
			title += " for @Alice Smith"
		}
		tasks[i] = common_models.Task{
			ID:        fmt.Sprintf("t%d", i),
			Title:     title,
			Status:    common_models.TaskStatusPending,
			CreatedAt: base.Add(time.Duration(off) * time.Minute),
		}
	}
	return tasks
}

func persistedFrom(offsets []int) []Notification {
	out := make([]Notification, len(offsets))
	for i, off := range offsets {
		out[i] = Notification{ID: fmt.Sprintf("n%d", i), CreatedAt: base.Add(time.Duration(off) * time.Minute)}
	}
	return out
}

func TestProperty_BuildFeedSortedCappedUnique(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("feed is newest first, within the limit and free of duplicate ids", prop.ForAll(
		func(pOffsets, tOffsets []int, mentioned []bool, limit int) bool {
			feed := BuildFeed(persistedFrom(pOffsets), tasksFrom(tOffsets, mentioned), "Alice Smith", limit)

			if limit > 0 && len(feed) > limit {
				return false
			}
			seen := map[string]bool{}
			for i, n := range feed {
				if seen[n.ID] {
					return false
				}
				seen[n.ID] = true
				if i > 0 && n.CreatedAt.After(feed[i-1].CreatedAt) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-500, 500)),
		gen.SliceOf(gen.IntRange(-500, 500)),
		gen.SliceOf(gen.Bool()),
		gen.IntRange(0, 30),
	))

	properties.Property("uncapped feed holds every persisted entry plus one entry per mentioning task", prop.ForAll(
		func(pOffsets, tOffsets []int, mentioned []bool) bool {
			tasks := tasksFrom(tOffsets, mentioned)
			want := len(pOffsets)
			for _, task := range tasks {
				if Mentions(task, "Alice Smith") {
					want++
				}
			}
			return len(BuildFeed(persistedFrom(pOffsets), tasks, "Alice Smith", 0)) == want
		},
		gen.SliceOf(gen.IntRange(-500, 500)),
		gen.SliceOf(gen.IntRange(-500, 500)),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
