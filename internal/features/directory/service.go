package directory

import (
	"context"
	"strings"

	common_models "go-hse/internal/common/models"
	"go-hse/internal/features/mention"
)

// Person is a company member that can be mentioned in a task.
type Person struct {
	Name       string `json:"name"`
	UserID     string `json:"user_id,omitempty"`
	EmployeeID string `json:"employee_id,omitempty"`
	Email      string `json:"email,omitempty"`
}

type DirectoryService interface {
	Me(ctx context.Context, identity common_models.Identity) mention.Profile
	// People merges employees and team members; a team member whose user is already
	// linked to an employee is skipped.
	People(ctx context.Context, companyID string) ([]Person, error)
}

type DirectoryServiceImpl struct {
	repo     DirectoryRepository
	resolver *mention.NameResolver
}

func NewDirectoryService(repo DirectoryRepository, resolver *mention.NameResolver) DirectoryService {
	return &DirectoryServiceImpl{repo: repo, resolver: resolver}
}

func (s *DirectoryServiceImpl) Me(ctx context.Context, identity common_models.Identity) mention.Profile {
	return s.resolver.Resolve(ctx, identity)
}

func (s *DirectoryServiceImpl) People(ctx context.Context, companyID string) ([]Person, error) {
	employees, err := s.repo.ListEmployees(ctx, companyID)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListTeamMembers(ctx, companyID)
	if err != nil {
		return nil, err
	}

	people := make([]Person, 0, len(employees)+len(members))
	linked := make(map[string]bool, len(employees))
	for _, e := range employees {
		name := strings.TrimSpace(e.FullName)
		if name == "" {
			continue
		}
		if e.UserID != "" {
			linked[e.UserID] = true
		}
		people = append(people, Person{Name: name, UserID: e.UserID, EmployeeID: e.ID, Email: e.Email})
	}
	for _, m := range members {
		name := strings.TrimSpace(m.FirstName + " " + m.LastName)
		if name == "" || (m.UserID != "" && linked[m.UserID]) {
			continue
		}
		people = append(people, Person{Name: name, UserID: m.UserID, Email: m.Email})
	}
	return people, nil
}
