package mention

import (
	"sort"
	"strings"
	"time"

	common_models "go-hse/internal/common/models"
)

const SyntheticIDPrefix = "task-mention-"

// Fixed content of synthetic mention notifications.
const (
	syntheticTitle    = "You were mentioned in a task"
	syntheticCategory = "task"
	syntheticType     = "info"
)

// Notification is one entry of a user's feed, persisted or synthesized.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	RelatedID string    `json:"related_id,omitempty"`
	Synthetic bool      `json:"synthetic"`
}

func SyntheticID(taskID string) string {
	return SyntheticIDPrefix + taskID
}

func IsSyntheticID(id string) bool {
	return strings.HasPrefix(id, SyntheticIDPrefix)
}

// SynthesizeMentions derives one notification per task mentioning name, skipping tasks
// already referenced by a persisted notification. Completed tasks yield read entries.
func SynthesizeMentions(persisted []Notification, tasks []common_models.Task, name string) []Notification {
	return synthesize(coveredBy(persisted, nil), tasks, name)
}

// coveredBy is the set of task ids referenced by persisted notifications, including
// ids known to be covered by rows outside persisted.
func coveredBy(persisted []Notification, extra []string) map[string]bool {
	covered := make(map[string]bool, len(persisted)+len(extra))
	for _, n := range persisted {
		if n.RelatedID != "" {
			covered[n.RelatedID] = true
		}
	}
	for _, id := range extra {
		covered[id] = true
	}
	return covered
}

func synthesize(covered map[string]bool, tasks []common_models.Task, name string) []Notification {
	if strings.TrimSpace(name) == "" {
		return nil
	}

	var out []Notification
	for _, t := range tasks {
		if covered[t.ID] || !Mentions(t, name) {
			continue
		}
		out = append(out, Notification{
			ID:        SyntheticID(t.ID),
			Title:     syntheticTitle,
			Message:   `Task: "` + t.Title + `"`,
			Category:  syntheticCategory,
			Type:      syntheticType,
			IsRead:    t.Status == common_models.TaskStatusCompleted,
			CreatedAt: t.CreatedAt,
			RelatedID: t.ID,
			Synthetic: true,
		})
	}
	return out
}

// BuildFeed merges persisted and synthetic notifications, newest first, truncated to
// limit when limit > 0. Entries with equal timestamps keep persisted-first order.
func BuildFeed(persisted []Notification, tasks []common_models.Task, name string, limit int) []Notification {
	return BuildFeedCovered(persisted, nil, tasks, name, limit)
}

// BuildFeedCovered is BuildFeed for callers that fetched only part of the stored rows.
// coveredIDs lists task ids that have a stored notification outside persisted.
func BuildFeedCovered(persisted []Notification, coveredIDs []string, tasks []common_models.Task, name string, limit int) []Notification {
	feed := make([]Notification, 0, len(persisted))
	feed = append(feed, persisted...)
	feed = append(feed, synthesize(coveredBy(persisted, coveredIDs), tasks, name)...)

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].CreatedAt.After(feed[j].CreatedAt)
	})

	if limit > 0 && len(feed) > limit {
		feed = feed[:limit]
	}
	return feed
}

func UnreadCount(feed []Notification) int {
	n := 0
	for _, f := range feed {
		if !f.IsRead {
			n++
		}
	}
	return n
}
