package audit

import (
	"context"

	common_models "go-hse/internal/common/models"
	"go-hse/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AuditRepository interface {
	Create(ctx context.Context, log common_models.AuditLog) error
	List(ctx context.Context, filters map[string]interface{}, limit, offset int64) ([]common_models.AuditLog, error)
	// ListByActions returns the newest logs with one of actions and the total match count.
	ListByActions(ctx context.Context, actions []common_models.AuditAction, limit int64) ([]common_models.AuditLog, int64, error)
}

type AuditRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAuditRepository(mongodb *database.MongodbDB) AuditRepository {
	return &AuditRepositoryImpl{
		Collection: mongodb.DB.Collection("audit_logs"),
	}
}

func (r *AuditRepositoryImpl) Create(ctx context.Context, log common_models.AuditLog) error {
	// System events (webhooks, cron) have no company in context.
	if companyID, ok := ctx.Value(common_models.CompanyIDKey).(string); ok && log.CompanyID == "" {
		log.CompanyID = companyID
	}

	_, err := r.Collection.InsertOne(ctx, log)
	return err
}

// List is unscoped: the route is restricted to super admins, who may filter by company_id.
func (r *AuditRepositoryImpl) List(ctx context.Context, filters map[string]interface{}, limit, offset int64) ([]common_models.AuditLog, error) {
	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.M{"timestamp": -1})

	query := bson.M{}
	for k, v := range filters {
		if v == nil {
			continue
		}
		if str, ok := v.(string); ok && str == "" {
			continue
		}
		query[k] = v
	}

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var logs []common_models.AuditLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *AuditRepositoryImpl) ListByActions(ctx context.Context, actions []common_models.AuditAction, limit int64) ([]common_models.AuditLog, int64, error) {
	query := bson.M{"action": bson.M{"$in": actions}}
	count, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetLimit(limit).SetSort(bson.M{"timestamp": -1})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	var logs []common_models.AuditLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, 0, err
	}
	return logs, count, nil
}
