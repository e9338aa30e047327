package directory

import (
	"context"
	"errors"
	"testing"

	common_models "go-hse/internal/common/models"
	"go-hse/internal/features/mention"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRepo struct {
	employees []common_models.Employee
	members   []common_models.TeamMember
	err       error
}

func (m *mockRepo) FindEmployeeByEmail(ctx context.Context, companyID, email string) (*common_models.Employee, error) {
	for _, e := range m.employees {
		if e.Email == email {
			e := e
			return &e, nil
		}
	}
	return nil, m.err
}

func (m *mockRepo) FindEmployeeByUserID(ctx context.Context, companyID, userID string) (*common_models.Employee, error) {
	return nil, m.err
}

func (m *mockRepo) FindTeamMemberByUserID(ctx context.Context, companyID, userID string) (*common_models.TeamMember, error) {
	return nil, m.err
}

func (m *mockRepo) FindTeamMemberByEmail(ctx context.Context, companyID, email string) (*common_models.TeamMember, error) {
	return nil, m.err
}

func (m *mockRepo) ListEmployees(ctx context.Context, companyID string) ([]common_models.Employee, error) {
	return m.employees, m.err
}

func (m *mockRepo) ListTeamMembers(ctx context.Context, companyID string) ([]common_models.TeamMember, error) {
	return m.members, m.err
}

func TestPeopleSkipsLinkedMembers(t *testing.T) {
	repo := &mockRepo{
		employees: []common_models.Employee{
			{ID: "E1", UserID: "u1", FullName: " Alice Smith "},
			{ID: "E2", FullName: ""},
		},
		members: []common_models.TeamMember{
			{UserID: "u1", FirstName: "Alice", LastName: "Smith"},
			{UserID: "u2", FirstName: "Bob", LastName: "Jones"},
			{FirstName: " ", LastName: ""},
		},
	}
	svc := NewDirectoryService(repo, mention.NewNameResolver(repo, zap.NewNop()))

	people, err := svc.People(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, []Person{
		{Name: "Alice Smith", UserID: "u1", EmployeeID: "E1"},
		{Name: "Bob Jones", UserID: "u2"},
	}, people)
}

func TestPeopleError(t *testing.T) {
	repo := &mockRepo{err: errors.New("down")}
	svc := NewDirectoryService(repo, mention.NewNameResolver(repo, zap.NewNop()))

	_, err := svc.People(context.Background(), "c1")
	assert.Error(t, err)
}

func TestMe(t *testing.T) {
	repo := &mockRepo{employees: []common_models.Employee{{ID: "E1", Email: "a@x.io", FullName: "Alice"}}}
	svc := NewDirectoryService(repo, mention.NewNameResolver(repo, zap.NewNop()))

	p := svc.Me(context.Background(), common_models.Identity{CompanyID: "c1", Email: "a@x.io"})
	assert.Equal(t, mention.Profile{Name: "Alice", EmployeeID: "E1"}, p)
}
