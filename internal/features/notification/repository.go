package notification

import (
	"context"
	"time"

	"go-hse/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListForUser(ctx context.Context, companyID, userID string, limit int64) ([]Notification, error)
	// RelatedIDs returns which of relatedIDs have a stored notification for the user.
	RelatedIDs(ctx context.Context, companyID, userID string, relatedIDs []string) ([]string, error)
	MarkAsRead(ctx context.Context, companyID, userID string, id primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, companyID, userID string) (int64, error)
	Delete(ctx context.Context, companyID, userID string, id primitive.ObjectID) error
	PurgeRead(ctx context.Context, before time.Time) (int64, error)
}

type NotificationRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewNotificationRepository(mongodb *database.MongodbDB) NotificationRepository {
	return &NotificationRepositoryImpl{
		Collection: mongodb.DB.Collection("notifications"),
	}
}

func (r *NotificationRepositoryImpl) Create(ctx context.Context, n *Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := r.Collection.InsertOne(ctx, n)
	return err
}

func (r *NotificationRepositoryImpl) ListForUser(ctx context.Context, companyID, userID string, limit int64) ([]Notification, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(limit)
	cursor, err := r.Collection.Find(ctx, bson.M{"company_id": companyID, "user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	var notifications []Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepositoryImpl) RelatedIDs(ctx context.Context, companyID, userID string, relatedIDs []string) ([]string, error) {
	if len(relatedIDs) == 0 {
		return nil, nil
	}
	values, err := r.Collection.Distinct(ctx, "related_id", bson.M{
		"company_id": companyID,
		"user_id":    userID,
		"related_id": bson.M{"$in": relatedIDs},
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *NotificationRepositoryImpl) MarkAsRead(ctx context.Context, companyID, userID string, id primitive.ObjectID) error {
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "company_id": companyID, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true, "read_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *NotificationRepositoryImpl) MarkAllAsRead(ctx context.Context, companyID, userID string) (int64, error) {
	res, err := r.Collection.UpdateMany(ctx,
		bson.M{"company_id": companyID, "user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": time.Now()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *NotificationRepositoryImpl) Delete(ctx context.Context, companyID, userID string, id primitive.ObjectID) error {
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id, "company_id": companyID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// PurgeRead removes read notifications created before the cutoff, across companies.
func (r *NotificationRepositoryImpl) PurgeRead(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.Collection.DeleteMany(ctx, bson.M{"is_read": true, "created_at": bson.M{"$lt": before}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *NotificationRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "company_id", Value: 1},
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_company_user_created"),
		},
		{
			Keys: bson.D{
				{Key: "company_id", Value: 1},
				{Key: "user_id", Value: 1},
				{Key: "related_id", Value: 1},
			},
			Options: options.Index().SetName("idx_company_user_related"),
		},
		{
			Keys:    bson.D{{Key: "is_read", Value: 1}, {Key: "read_at", Value: 1}},
			Options: options.Index().SetName("idx_read_at"),
		},
	}
	_, err := r.Collection.Indexes().CreateMany(ctx, indexes)
	return err
}
