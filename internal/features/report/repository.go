package report

import (
	"context"
	"errors"
	"time"

	"go-hse/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReportRepository stores reports per owner; every method is scoped to company and user.
type ReportRepository interface {
	Create(ctx context.Context, report *CustomReport) error
	Get(ctx context.Context, companyID, userID, id string) (*CustomReport, error)
	List(ctx context.Context, companyID, userID string) ([]CustomReport, error)
	Update(ctx context.Context, companyID, userID, id string, input ReportInput) error
	Delete(ctx context.Context, companyID, userID, id string) error
}

type ReportRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewReportRepository(db *database.MongodbDB) ReportRepository {
	return &ReportRepositoryImpl{
		Collection: db.DB.Collection("custom_reports"),
	}
}

func ownerFilter(companyID, userID, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrReportNotFound
	}
	return bson.M{"_id": oid, "company_id": companyID, "user_id": userID}, nil
}

func (r *ReportRepositoryImpl) Create(ctx context.Context, report *CustomReport) error {
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	report.CreatedAt = time.Now()
	report.UpdatedAt = report.CreatedAt
	_, err := r.Collection.InsertOne(ctx, report)
	return err
}

func (r *ReportRepositoryImpl) Get(ctx context.Context, companyID, userID, id string) (*CustomReport, error) {
	filter, err := ownerFilter(companyID, userID, id)
	if err != nil {
		return nil, err
	}
	var report CustomReport
	err = r.Collection.FindOne(ctx, filter).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns the newest reports first.
func (r *ReportRepositoryImpl) List(ctx context.Context, companyID, userID string) ([]CustomReport, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"company_id": companyID, "user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []CustomReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *ReportRepositoryImpl) Update(ctx context.Context, companyID, userID, id string, input ReportInput) error {
	filter, err := ownerFilter(companyID, userID, id)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"name":        input.Name,
			"description": input.Description,
			"data_source": input.DataSource,
			"chart_type":  input.ChartType,
			"columns":     input.Columns,
			"filters":     input.Filters,
			"group_by":    input.GroupBy,
			"date_range":  input.DateRange,
			"updated_at":  time.Now(),
		},
	}
	res, err := r.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrReportNotFound
	}
	return nil
}

func (r *ReportRepositoryImpl) Delete(ctx context.Context, companyID, userID, id string) error {
	filter, err := ownerFilter(companyID, userID, id)
	if err != nil {
		return err
	}
	res, err := r.Collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrReportNotFound
	}
	return nil
}
