package mention

import (
	"context"
	"strings"

	common_models "go-hse/internal/common/models"

	"go.uber.org/zap"
)

// Directory looks up employees and team members of a company. Lookups return (nil, nil)
// when there is no match; email comparisons are case-insensitive.
type Directory interface {
	FindEmployeeByEmail(ctx context.Context, companyID, email string) (*common_models.Employee, error)
	FindEmployeeByUserID(ctx context.Context, companyID, userID string) (*common_models.Employee, error)
	FindTeamMemberByUserID(ctx context.Context, companyID, userID string) (*common_models.TeamMember, error)
	FindTeamMemberByEmail(ctx context.Context, companyID, email string) (*common_models.TeamMember, error)
}

// Profile is the mention-relevant view of a user. Name is empty when no directory row
// matched; EmployeeID is set only when an employee row matched.
type Profile struct {
	Name       string `json:"name"`
	EmployeeID string `json:"employee_id,omitempty"`
}

func (p Profile) Viewer(role string) Viewer {
	return Viewer{Name: p.Name, EmployeeID: p.EmployeeID, Role: role}
}

type NameResolver struct {
	directory Directory
	logger    *zap.Logger
}

func NewNameResolver(directory Directory, logger *zap.Logger) *NameResolver {
	return &NameResolver{directory: directory, logger: logger}
}

// Resolve probes, in order: employee by email, employee by user id, team member by user
// id, team member by email. The first non-empty name wins. A failing step is logged and
// treated as no match.
func (r *NameResolver) Resolve(ctx context.Context, id common_models.Identity) Profile {
	if id.CompanyID == "" {
		return Profile{}
	}

	if id.Email != "" {
		emp, err := r.directory.FindEmployeeByEmail(ctx, id.CompanyID, id.Email)
		r.logStep("employee_by_email", id, err)
		if emp != nil && strings.TrimSpace(emp.FullName) != "" {
			return Profile{Name: strings.TrimSpace(emp.FullName), EmployeeID: emp.ID}
		}
	}

	if id.UserID != "" {
		emp, err := r.directory.FindEmployeeByUserID(ctx, id.CompanyID, id.UserID)
		r.logStep("employee_by_user_id", id, err)
		if emp != nil && strings.TrimSpace(emp.FullName) != "" {
			return Profile{Name: strings.TrimSpace(emp.FullName), EmployeeID: emp.ID}
		}

		member, err := r.directory.FindTeamMemberByUserID(ctx, id.CompanyID, id.UserID)
		r.logStep("team_member_by_user_id", id, err)
		if name := memberName(member); name != "" {
			return Profile{Name: name}
		}
	}

	if id.Email != "" {
		member, err := r.directory.FindTeamMemberByEmail(ctx, id.CompanyID, id.Email)
		r.logStep("team_member_by_email", id, err)
		if name := memberName(member); name != "" {
			return Profile{Name: name}
		}
	}

	return Profile{}
}

// SenderName resolves the display name used when a user mentions others. It only
// consults email lookups and falls back to the email, then to "Someone".
func (r *NameResolver) SenderName(ctx context.Context, id common_models.Identity) string {
	if id.Email != "" {
		emp, err := r.directory.FindEmployeeByEmail(ctx, id.CompanyID, id.Email)
		r.logStep("sender_employee_by_email", id, err)
		if emp != nil && strings.TrimSpace(emp.FullName) != "" {
			return strings.TrimSpace(emp.FullName)
		}
		member, err := r.directory.FindTeamMemberByEmail(ctx, id.CompanyID, id.Email)
		r.logStep("sender_team_member_by_email", id, err)
		if name := memberName(member); name != "" {
			return name
		}
		return id.Email
	}
	return "Someone"
}

func (r *NameResolver) logStep(step string, id common_models.Identity, err error) {
	if err == nil || r.logger == nil {
		return
	}
	r.logger.Warn("Name resolution step failed",
		zap.String("step", step),
		zap.String("company_id", id.CompanyID),
		zap.String("user_id", id.UserID),
		zap.Error(err))
}

func memberName(m *common_models.TeamMember) string {
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}
