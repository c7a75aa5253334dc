package models

import "time"

// ScheduledPublication is the persisted scheduling state machine.
// draft -> scheduled -> publishing -> published, failed reachable from
// publishing. PublishAt is resolved once at creation from the civil fields
// and the store timezone and is never re-derived afterwards.
type ScheduledPublication struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	StoreID      int64     `db:"store_id" json:"store_id"`
	ContentID    int64     `db:"content_id" json:"content_id"`
	TargetType   string    `db:"target_type" json:"target_type"`
	ScheduleDate string    `db:"schedule_date" json:"schedule_date"` // civil, as entered
	ScheduleTime string    `db:"schedule_time" json:"schedule_time"`
	Timezone     string    `db:"timezone" json:"timezone"`
	PublishAt    time.Time `db:"publish_at" json:"publish_at"` // authoritative instant, UTC
	Status       string    `db:"status" json:"status"`
	AttemptCount int       `db:"attempt_count" json:"attempt_count"`
	LastError    string    `db:"last_error" json:"last_error"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

const (
	ScheduleStatusDraft      = "draft"
	ScheduleStatusScheduled  = "scheduled"
	ScheduleStatusPublishing = "publishing"
	ScheduleStatusPublished  = "published"
	ScheduleStatusFailed     = "failed"
)

// PublicationRecord is attached only after a successful gateway call.
type PublicationRecord struct {
	ID         int64     `db:"id" json:"id"`
	ScheduleID int64     `db:"schedule_id" json:"schedule_id"` // 0 for immediate publishes
	ContentID  int64     `db:"content_id" json:"content_id"`
	ExternalID string    `db:"external_id" json:"external_id"`
	Handle     string    `db:"handle" json:"handle"`
	URL        string    `db:"url" json:"url"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// PublicationHistory records one row per gateway attempt, successful or not.
type PublicationHistory struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	ScheduleID   int64     `db:"schedule_id" json:"schedule_id"`
	ContentID    int64     `db:"content_id" json:"content_id"`
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
