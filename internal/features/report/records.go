package report

import (
	"context"
	"time"

	"go-hse/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Record is one raw document of an HSE collection.
type Record = map[string]any

// RecordQuery selects company rows of one collection, optionally bounded by created_at.
type RecordQuery struct {
	Collection string
	CompanyID  string
	From, To   *time.Time
	Fields     []string
	Limit      int64
}

// RecordSource reads the HSE collections that reports are built from.
type RecordSource interface {
	Find(ctx context.Context, query RecordQuery) ([]Record, error)
}

type RecordRepositoryImpl struct {
	db *database.MongodbDB
}

func NewRecordRepository(db *database.MongodbDB) RecordSource {
	return &RecordRepositoryImpl{db: db}
}

func (r *RecordRepositoryImpl) Find(ctx context.Context, query RecordQuery) ([]Record, error) {
	filter := bson.M{"company_id": query.CompanyID}
	if query.From != nil || query.To != nil {
		created := bson.M{}
		if query.From != nil {
			created["$gte"] = *query.From
		}
		if query.To != nil {
			created["$lte"] = *query.To
		}
		filter["created_at"] = created
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if len(query.Fields) > 0 {
		projection := bson.M{}
		for _, f := range query.Fields {
			projection[f] = 1
		}
		opts.SetProjection(projection)
	}
	if query.Limit > 0 {
		opts.SetLimit(query.Limit)
	}

	cursor, err := r.db.DB.Collection(query.Collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, normalize(d))
	}
	return records, nil
}

// normalize turns driver types into plain values: ids become hex strings and
// timestamps become time.Time.
func normalize(doc bson.M) Record {
	out := make(Record, len(doc))
	for k, v := range doc {
		switch t := v.(type) {
		case primitive.ObjectID:
			out[k] = t.Hex()
		case primitive.DateTime:
			out[k] = t.Time().UTC()
		default:
			out[k] = v
		}
	}
	return out
}
