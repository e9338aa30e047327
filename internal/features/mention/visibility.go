package mention

import (
	common_models "go-hse/internal/common/models"
	"go-hse/pkg/utils"
)

// Viewer is the user a task list is computed for. EmployeeID is empty when the user is
// not linked to an employee row.
type Viewer struct {
	Name       string
	EmployeeID string
	Role       string
}

// Reason explains a visibility decision.
type Reason string

const (
	ReasonElevated  Reason = "elevated"
	ReasonBroadcast Reason = "broadcast"
	ReasonMentioned Reason = "mentioned"
	ReasonAssigned  Reason = "assigned"
	ReasonHidden    Reason = "hidden"
)

func (r Reason) Visible() bool {
	return r != ReasonHidden
}

// Policy is the per-surface visibility configuration. When EnforceForElevatedRoles is
// false, admins bypass the filter and see every task.
type Policy struct {
	EnforceForElevatedRoles bool
}

func IsElevatedRole(role string) bool {
	return role == utils.RoleSuperAdmin || role == utils.RoleCompanyAdmin
}

// Evaluate applies, in order: elevated bypass, broadcast (no "@" at all), mention of the
// viewer's name, assignment to the viewer's employee id.
func (p Policy) Evaluate(task common_models.Task, viewer Viewer) Reason {
	if !p.EnforceForElevatedRoles && IsElevatedRole(viewer.Role) {
		return ReasonElevated
	}
	if !HasAnyMention(task) {
		return ReasonBroadcast
	}
	if Mentions(task, viewer.Name) {
		return ReasonMentioned
	}
	if viewer.EmployeeID != "" && task.AssignedTo == viewer.EmployeeID {
		return ReasonAssigned
	}
	return ReasonHidden
}

// VisibleTask pairs a task with the reason it is shown.
type VisibleTask struct {
	common_models.Task
	Visibility Reason `json:"visibility"`
}

// Filter keeps visible tasks in their original order, up to limit when limit > 0.
func (p Policy) Filter(tasks []common_models.Task, viewer Viewer, limit int) []VisibleTask {
	out := make([]VisibleTask, 0, len(tasks))
	for _, t := range tasks {
		if limit > 0 && len(out) >= limit {
			break
		}
		if reason := p.Evaluate(t, viewer); reason.Visible() {
			out = append(out, VisibleTask{Task: t, Visibility: reason})
		}
	}
	return out
}
