package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/blogpilot/blogpilot/internal/models"
)

type ScheduleRepository interface {
	Create(ctx context.Context, tx *sql.Tx, sp *models.ScheduledPublication) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ScheduledPublication, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPublication, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledPublication, error)
	Claim(ctx context.Context, id int64) (bool, error)
	MarkPublished(ctx context.Context, id int64) error
	Retarget(ctx context.Context, id int64, nextAt time.Time, attemptCount int, lastError string) error
	MarkFailed(ctx context.Context, id int64, attemptCount int, lastError string) error
	ScheduleDraft(ctx context.Context, id, userID int64, scheduleDate, scheduleTime, timezone string, publishAt time.Time) (bool, error)
	Cancel(ctx context.Context, id, userID int64) (bool, error)
}

type scheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

const scheduleColumns = `id, user_id, store_id, content_id, target_type, schedule_date,
	schedule_time, timezone, publish_at, status, attempt_count, last_error, created_at, updated_at`

func (r *scheduleRepository) Create(ctx context.Context, tx *sql.Tx, sp *models.ScheduledPublication) (int64, error) {
	query := `
		INSERT INTO scheduled_publications
			(user_id, store_id, content_id, target_type, schedule_date, schedule_time,
			 timezone, publish_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	var err error
	args := []any{sp.UserID, sp.StoreID, sp.ContentID, sp.TargetType, sp.ScheduleDate,
		sp.ScheduleTime, sp.Timezone, sp.PublishAt, sp.Status}

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *scheduleRepository) scanRow(row interface{ Scan(...any) error }) (*models.ScheduledPublication, error) {
	var sp models.ScheduledPublication
	err := row.Scan(&sp.ID, &sp.UserID, &sp.StoreID, &sp.ContentID, &sp.TargetType,
		&sp.ScheduleDate, &sp.ScheduleTime, &sp.Timezone, &sp.PublishAt, &sp.Status,
		&sp.AttemptCount, &sp.LastError, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id int64) (*models.ScheduledPublication, error) {
	query := `SELECT ` + scheduleColumns + ` FROM scheduled_publications WHERE id = $1`
	sp, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sp, nil
}

func (r *scheduleRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPublication, error) {
	query := `SELECT ` + scheduleColumns + ` FROM scheduled_publications
		WHERE user_id = $1 ORDER BY publish_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var schedules []*models.ScheduledPublication
	for rows.Next() {
		sp, err := r.scanRow(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		schedules = append(schedules, sp)
	}
	return schedules, nil
}

func (r *scheduleRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledPublication, error) {
	query := `SELECT ` + scheduleColumns + ` FROM scheduled_publications
		WHERE status = $1 AND publish_at <= $2 ORDER BY publish_at ASC LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, models.ScheduleStatusScheduled, now, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var schedules []*models.ScheduledPublication
	for rows.Next() {
		sp, err := r.scanRow(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		schedules = append(schedules, sp)
	}
	return schedules, nil
}

// Claim is the single synchronization point of the promotion pass. The
// conditional UPDATE succeeds for exactly one caller even when several
// pollers race over the same due record.
func (r *scheduleRepository) Claim(ctx context.Context, id int64) (bool, error) {
	query := `UPDATE scheduled_publications
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`

	res, err := r.db.ExecContext(ctx, query, models.ScheduleStatusPublishing, time.Now(), id, models.ScheduleStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *scheduleRepository) MarkPublished(ctx context.Context, id int64) error {
	query := `UPDATE scheduled_publications
		SET status = $1, last_error = '', updated_at = $2
		WHERE id = $3 AND status = $4`

	_, err := r.db.ExecContext(ctx, query, models.ScheduleStatusPublished, time.Now(), id, models.ScheduleStatusPublishing)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// Retarget moves a failed attempt back to scheduled with a new, backoff
// delayed instant. The original publish_at is intentionally replaced so the
// next pass does not hot-loop on the same record.
func (r *scheduleRepository) Retarget(ctx context.Context, id int64, nextAt time.Time, attemptCount int, lastError string) error {
	query := `UPDATE scheduled_publications
		SET status = $1, publish_at = $2, attempt_count = $3, last_error = $4, updated_at = $5
		WHERE id = $6 AND status = $7`

	_, err := r.db.ExecContext(ctx, query, models.ScheduleStatusScheduled, nextAt, attemptCount, lastError, time.Now(), id, models.ScheduleStatusPublishing)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRepository) MarkFailed(ctx context.Context, id int64, attemptCount int, lastError string) error {
	query := `UPDATE scheduled_publications
		SET status = $1, attempt_count = $2, last_error = $3, updated_at = $4
		WHERE id = $5 AND status = $6`

	_, err := r.db.ExecContext(ctx, query, models.ScheduleStatusFailed, attemptCount, lastError, time.Now(), id, models.ScheduleStatusPublishing)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// ScheduleDraft moves a locally held draft into the scheduled state with a
// freshly resolved instant.
func (r *scheduleRepository) ScheduleDraft(ctx context.Context, id, userID int64, scheduleDate, scheduleTime, timezone string, publishAt time.Time) (bool, error) {
	query := `UPDATE scheduled_publications
		SET status = $1, schedule_date = $2, schedule_time = $3, timezone = $4,
			publish_at = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8 AND status = $9`

	res, err := r.db.ExecContext(ctx, query, models.ScheduleStatusScheduled, scheduleDate,
		scheduleTime, timezone, publishAt, time.Now(), id, userID, models.ScheduleStatusDraft)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// Cancel only succeeds while the record is still scheduled. A claimed record
// reports zero affected rows and the caller surfaces a conflict.
func (r *scheduleRepository) Cancel(ctx context.Context, id, userID int64) (bool, error) {
	query := `DELETE FROM scheduled_publications
		WHERE id = $1 AND user_id = $2 AND status IN ($3, $4)`

	res, err := r.db.ExecContext(ctx, query, id, userID, models.ScheduleStatusScheduled, models.ScheduleStatusDraft)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
