package directory

import (
	"context"
	"errors"
	"regexp"

	common_models "go-hse/internal/common/models"
	"go-hse/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DirectoryRepository reads the employees and team_members collections. Find* methods
// return (nil, nil) when nothing matches.
type DirectoryRepository interface {
	FindEmployeeByEmail(ctx context.Context, companyID, email string) (*common_models.Employee, error)
	FindEmployeeByUserID(ctx context.Context, companyID, userID string) (*common_models.Employee, error)
	FindTeamMemberByUserID(ctx context.Context, companyID, userID string) (*common_models.TeamMember, error)
	FindTeamMemberByEmail(ctx context.Context, companyID, email string) (*common_models.TeamMember, error)
	ListEmployees(ctx context.Context, companyID string) ([]common_models.Employee, error)
	ListTeamMembers(ctx context.Context, companyID string) ([]common_models.TeamMember, error)
}

type DirectoryRepositoryImpl struct {
	Employees   *mongo.Collection
	TeamMembers *mongo.Collection
}

func NewDirectoryRepository(mongodb *database.MongodbDB) DirectoryRepository {
	return &DirectoryRepositoryImpl{
		Employees:   mongodb.DB.Collection("employees"),
		TeamMembers: mongodb.DB.Collection("team_members"),
	}
}

// emailFilter matches the whole address, ignoring case.
func emailFilter(companyID, email string) bson.M {
	return bson.M{
		"company_id": companyID,
		"email":      primitive.Regex{Pattern: "^" + regexp.QuoteMeta(email) + "$", Options: "i"},
	}
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	err := coll.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *DirectoryRepositoryImpl) FindEmployeeByEmail(ctx context.Context, companyID, email string) (*common_models.Employee, error) {
	return findOne[common_models.Employee](ctx, r.Employees, emailFilter(companyID, email))
}

func (r *DirectoryRepositoryImpl) FindEmployeeByUserID(ctx context.Context, companyID, userID string) (*common_models.Employee, error) {
	return findOne[common_models.Employee](ctx, r.Employees, bson.M{"company_id": companyID, "user_id": userID})
}

func (r *DirectoryRepositoryImpl) FindTeamMemberByUserID(ctx context.Context, companyID, userID string) (*common_models.TeamMember, error) {
	return findOne[common_models.TeamMember](ctx, r.TeamMembers, bson.M{"company_id": companyID, "user_id": userID})
}

func (r *DirectoryRepositoryImpl) FindTeamMemberByEmail(ctx context.Context, companyID, email string) (*common_models.TeamMember, error) {
	return findOne[common_models.TeamMember](ctx, r.TeamMembers, emailFilter(companyID, email))
}

func (r *DirectoryRepositoryImpl) ListEmployees(ctx context.Context, companyID string) ([]common_models.Employee, error) {
	opts := options.Find().SetSort(bson.M{"full_name": 1})
	cursor, err := r.Employees.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, err
	}
	var employees []common_models.Employee
	if err = cursor.All(ctx, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *DirectoryRepositoryImpl) ListTeamMembers(ctx context.Context, companyID string) ([]common_models.TeamMember, error) {
	opts := options.Find().SetSort(bson.D{{Key: "first_name", Value: 1}, {Key: "last_name", Value: 1}})
	cursor, err := r.TeamMembers.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, err
	}
	var members []common_models.TeamMember
	if err = cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}
