package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	CompanyIDKey ContextKey = "company_id"
)

type AuditAction string

const (
	AuditActionAssignTask   AuditAction = "assign_task"
	AuditActionCompleteTask AuditAction = "complete_task"
	AuditActionReopenTask   AuditAction = "reopen_task"
	AuditActionDeleteTask   AuditAction = "delete_task"
	AuditActionReport       AuditAction = "report"
	AuditActionLayoutReset  AuditAction = "layout_reset"
	AuditActionBilling      AuditAction = "billing"

	// Platform administration, written by super admins.
	AuditActionBlockCompany       AuditAction = "block_company"
	AuditActionUnblockCompany     AuditAction = "unblock_company"
	AuditActionDeleteCompany      AuditAction = "delete_company"
	AuditActionModifySubscription AuditAction = "modify_subscription"
	AuditActionExtendTrial        AuditAction = "extend_trial"
	AuditActionResetPassword      AuditAction = "reset_password"
	AuditActionChangeRole         AuditAction = "change_role"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID  string             `bson:"company_id,omitempty" json:"company_id,omitempty"`
	Action     AuditAction        `bson:"action" json:"action"`
	Module     string             `bson:"module" json:"module"`       // collection the record lives in
	RecordID   string             `bson:"record_id" json:"record_id"` // id of the record being modified
	ActorID    string             `bson:"actor_id" json:"actor_id"`   // user who performed the action
	ActorEmail string             `bson:"actor_email,omitempty" json:"actor_email,omitempty"`
	Changes    map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}

// Task statuses as written by the web application.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

// Task is a row of the tasks collection. AssignedTo references an Employee id.
type Task struct {
	ID          string     `bson:"_id" json:"id"`
	CompanyID   string     `bson:"company_id" json:"company_id"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Status      string     `bson:"status" json:"status"`
	Priority    string     `bson:"priority,omitempty" json:"priority,omitempty"`
	AssignedTo  string     `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	CreatedBy   string     `bson:"created_by,omitempty" json:"created_by,omitempty"`
	DueDate     *time.Time `bson:"due_date,omitempty" json:"due_date,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

type Employee struct {
	ID        string    `bson:"_id" json:"id"`
	CompanyID string    `bson:"company_id" json:"company_id"`
	UserID    string    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	FullName  string    `bson:"full_name" json:"full_name"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	Position  string    `bson:"position,omitempty" json:"position,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type TeamMember struct {
	ID        string    `bson:"_id" json:"id"`
	CompanyID string    `bson:"company_id" json:"company_id"`
	UserID    string    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	FirstName string    `bson:"first_name" json:"first_name"`
	LastName  string    `bson:"last_name" json:"last_name"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	Role      string    `bson:"role,omitempty" json:"role,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Identity is the authenticated caller as seen by services.
type Identity struct {
	UserID    string
	Email     string
	CompanyID string
	Role      string
}

type Log struct {
	Message      string    `bson:"message" json:"message"`
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	IpAddress    string    `bson:"ip_address" json:"ip_address"`
	CompanyID    string    `bson:"company_id,omitempty" json:"company_id,omitempty"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
