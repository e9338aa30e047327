package notification

import (
	"time"

	"go-hse/internal/features/mention"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

const CategoryTask = "task"

// Feed surfaces, each with its own cap.
const (
	SurfaceBell = "bell"
	SurfacePage = "page"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID string             `bson:"company_id" json:"company_id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Category  string             `bson:"category" json:"category"`
	Type      NotificationType   `bson:"type" json:"type"`
	IsRead    bool               `bson:"is_read" json:"is_read"`
	RelatedID string             `bson:"related_id,omitempty" json:"related_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ReadAt    *time.Time         `bson:"read_at,omitempty" json:"read_at,omitempty"`
}

// View converts a stored row into a feed entry.
func (n Notification) View() mention.Notification {
	return mention.Notification{
		ID:        n.ID.Hex(),
		Title:     n.Title,
		Message:   n.Message,
		Category:  n.Category,
		Type:      string(n.Type),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
		RelatedID: n.RelatedID,
	}
}

// Event is pushed to websocket subscribers.
type Event struct {
	Type         string                `json:"type"`
	Notification mention.Notification `json:"notification"`
}
