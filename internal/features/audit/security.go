package audit

import (
	"context"
	"fmt"
	"time"

	common_models "go-hse/internal/common/models"
)

const securityEventLimit = 10

// AdminActions are the platform administration actions shown in the security view.
var AdminActions = []common_models.AuditAction{
	common_models.AuditActionBlockCompany,
	common_models.AuditActionUnblockCompany,
	common_models.AuditActionModifySubscription,
	common_models.AuditActionExtendTrial,
	common_models.AuditActionResetPassword,
}

type SecurityEvent struct {
	ID         string                          `json:"id"`
	EventType  common_models.AuditAction       `json:"event_type"`
	ActorEmail string                          `json:"actor_email"`
	Target     string                          `json:"target"`
	Severity   string                          `json:"severity"`
	Details    map[string]common_models.Change `json:"details,omitempty"`
	CreatedAt  time.Time                       `json:"created_at"`
}

type RightsChange struct {
	ID         string    `json:"id"`
	Actor      string    `json:"actor"`
	TargetUser string    `json:"target_user"`
	OldRole    string    `json:"old_role"`
	NewRole    string    `json:"new_role"`
	Timestamp  time.Time `json:"timestamp"`
}

// SecuritySummary counts every matching log; the lists hold the newest few.
type SecuritySummary struct {
	AdminActions  int64           `json:"admin_actions"`
	RightsChanges int64           `json:"rights_changes"`
	Events        []SecurityEvent `json:"events"`
	RoleChanges   []RightsChange  `json:"role_changes"`
}

func severity(action common_models.AuditAction) string {
	switch action {
	case common_models.AuditActionBlockCompany, common_models.AuditActionDeleteCompany:
		return "high"
	default:
		return "medium"
	}
}

func actorOf(log common_models.AuditLog) string {
	if log.ActorEmail != "" {
		return log.ActorEmail
	}
	return log.ActorID
}

// roleValue renders one side of a recorded role change, "N/A" when absent.
func roleValue(v interface{}) string {
	if v == nil {
		return "N/A"
	}
	if s := fmt.Sprint(v); s != "" {
		return s
	}
	return "N/A"
}

func (s *AuditServiceImpl) SecuritySummary(ctx context.Context) (*SecuritySummary, error) {
	actions, adminCount, err := s.Repo.ListByActions(ctx, AdminActions, securityEventLimit)
	if err != nil {
		return nil, err
	}
	roles, rightsCount, err := s.Repo.ListByActions(ctx, []common_models.AuditAction{common_models.AuditActionChangeRole}, securityEventLimit)
	if err != nil {
		return nil, err
	}

	summary := &SecuritySummary{
		AdminActions:  adminCount,
		RightsChanges: rightsCount,
		Events:        make([]SecurityEvent, 0, len(actions)),
		RoleChanges:   make([]RightsChange, 0, len(roles)),
	}
	for _, a := range actions {
		summary.Events = append(summary.Events, SecurityEvent{
			ID:         a.ID.Hex(),
			EventType:  a.Action,
			ActorEmail: actorOf(a),
			Target:     a.RecordID,
			Severity:   severity(a.Action),
			Details:    a.Changes,
			CreatedAt:  a.Timestamp,
		})
	}
	for _, r := range roles {
		change := r.Changes["role"]
		target := r.RecordID
		if target == "" {
			target = "Unknown"
		}
		summary.RoleChanges = append(summary.RoleChanges, RightsChange{
			ID:         r.ID.Hex(),
			Actor:      actorOf(r),
			TargetUser: target,
			OldRole:    roleValue(change.Old),
			NewRole:    roleValue(change.New),
			Timestamp:  r.Timestamp,
		})
	}
	return summary, nil
}
