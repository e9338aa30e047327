package cron_feature

import (
	"context"

	"go-hse/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CronRepository interface {
	CreateLog(ctx context.Context, log *CronJobLog) error
	UpdateLog(ctx context.Context, log *CronJobLog) error
	GetLogs(ctx context.Context, jobName string, limit int) ([]CronJobLog, error)
}

type CronRepositoryImpl struct {
	logCollection *mongo.Collection
}

func NewCronRepository(db *database.MongodbDB) CronRepository {
	return &CronRepositoryImpl{
		logCollection: db.DB.Collection("cron_job_logs"),
	}
}

func (r *CronRepositoryImpl) CreateLog(ctx context.Context, log *CronJobLog) error {
	log.ID = primitive.NewObjectID()
	_, err := r.logCollection.InsertOne(ctx, log)
	return err
}

func (r *CronRepositoryImpl) UpdateLog(ctx context.Context, log *CronJobLog) error {
	update := bson.M{
		"$set": bson.M{
			"end_time":         log.EndTime,
			"status":           log.Status,
			"records_affected": log.RecordsAffected,
			"error":            log.Error,
		},
	}
	_, err := r.logCollection.UpdateOne(ctx, bson.M{"_id": log.ID}, update)
	return err
}

func (r *CronRepositoryImpl) GetLogs(ctx context.Context, jobName string, limit int) ([]CronJobLog, error) {
	filter := bson.M{}
	if jobName != "" {
		filter["job_name"] = jobName
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.logCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []CronJobLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
