package task

import (
	"context"
	"errors"
	"time"

	common_models "go-hse/internal/common/models"
	"go-hse/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Status filters accepted by List.
const (
	FilterUpcoming  = "upcoming"
	FilterCompleted = "completed"
	FilterAll       = "all"
)

type TaskRepository interface {
	Create(ctx context.Context, task *common_models.Task) error
	FindByID(ctx context.Context, companyID, id string) (*common_models.Task, error)
	// List orders by due date (tasks without one last), then newest first.
	List(ctx context.Context, companyID, filter string, limit int64) ([]common_models.Task, error)
	RecentTasks(ctx context.Context, companyID string, limit int64) ([]common_models.Task, error)
	UpdateStatus(ctx context.Context, companyID, id, status string) error
	Delete(ctx context.Context, companyID, id string) error
}

type TaskRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewTaskRepository(mongodb *database.MongodbDB) TaskRepository {
	return &TaskRepositoryImpl{
		Collection: mongodb.DB.Collection("tasks"),
	}
}

func statusMatch(filter string) interface{} {
	switch filter {
	case FilterUpcoming:
		return bson.M{"$in": []string{common_models.TaskStatusPending, common_models.TaskStatusInProgress}}
	case FilterCompleted:
		return common_models.TaskStatusCompleted
	default:
		return nil
	}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *common_models.Task) error {
	_, err := r.Collection.InsertOne(ctx, task)
	return err
}

func (r *TaskRepositoryImpl) FindByID(ctx context.Context, companyID, id string) (*common_models.Task, error) {
	var task common_models.Task
	err := r.Collection.FindOne(ctx, bson.M{"_id": id, "company_id": companyID}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepositoryImpl) List(ctx context.Context, companyID, filter string, limit int64) ([]common_models.Task, error) {
	match := bson.M{"company_id": companyID}
	if status := statusMatch(filter); status != nil {
		match["status"] = status
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$addFields", Value: bson.M{
			"_no_due": bson.M{"$cond": bson.A{bson.M{"$ifNull": bson.A{"$due_date", false}}, 0, 1}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_no_due", Value: 1},
			{Key: "due_date", Value: 1},
			{Key: "created_at", Value: -1},
		}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{"_no_due": 0}}},
	}

	cursor, err := r.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var tasks []common_models.Task
	if err = cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) RecentTasks(ctx context.Context, companyID string, limit int64) ([]common_models.Task, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(limit)
	cursor, err := r.Collection.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, err
	}
	var tasks []common_models.Task
	if err = cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) UpdateStatus(ctx context.Context, companyID, id, status string) error {
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "company_id": companyID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, companyID, id string) error {
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id, "company_id": companyID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_company_created"),
		},
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "status", Value: 1}, {Key: "due_date", Value: 1}},
			Options: options.Index().SetName("idx_company_status_due"),
		},
	}
	_, err := r.Collection.Indexes().CreateMany(ctx, indexes)
	return err
}
