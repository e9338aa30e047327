package cron_feature

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Built-in housekeeping jobs.
const (
	JobLayoutEvict       = "layout_evict"
	JobNotificationPurge = "notification_purge"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// CronJob describes a registered housekeeping job
type CronJob struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Schedule    string     `json:"schedule"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
}

// CronJobLog represents a single execution of a cron job
type CronJobLog struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	JobName         string             `json:"job_name" bson:"job_name"`
	StartTime       time.Time          `json:"start_time" bson:"start_time"`
	EndTime         *time.Time         `json:"end_time,omitempty" bson:"end_time,omitempty"`
	Status          string             `json:"status" bson:"status"`
	RecordsAffected int64              `json:"records_affected" bson:"records_affected"`
	Error           string             `json:"error,omitempty" bson:"error,omitempty"`
	Manual          bool               `json:"manual" bson:"manual"`
}
