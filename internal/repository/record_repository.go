package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/blogpilot/blogpilot/internal/models"
)

type RecordRepository interface {
	Create(ctx context.Context, record *models.PublicationRecord) (int64, error)
	GetByScheduleID(ctx context.Context, scheduleID int64) (*models.PublicationRecord, error)
	ListByUserContent(ctx context.Context, contentID int64) ([]*models.PublicationRecord, error)
}

type recordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) Create(ctx context.Context, record *models.PublicationRecord) (int64, error) {
	query := `
		INSERT INTO publication_records (schedule_id, content_id, external_id, handle, url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, record.ScheduleID, record.ContentID,
		record.ExternalID, record.Handle, record.URL).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *recordRepository) GetByScheduleID(ctx context.Context, scheduleID int64) (*models.PublicationRecord, error) {
	query := `SELECT id, schedule_id, content_id, external_id, handle, url, created_at
		FROM publication_records WHERE schedule_id = $1`
	row := r.db.QueryRowContext(ctx, query, scheduleID)

	var record models.PublicationRecord
	err := row.Scan(&record.ID, &record.ScheduleID, &record.ContentID,
		&record.ExternalID, &record.Handle, &record.URL, &record.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &record, nil
}

func (r *recordRepository) ListByUserContent(ctx context.Context, contentID int64) ([]*models.PublicationRecord, error) {
	query := `SELECT id, schedule_id, content_id, external_id, handle, url, created_at
		FROM publication_records WHERE content_id = $1`

	rows, err := r.db.QueryContext(ctx, query, contentID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var records []*models.PublicationRecord
	for rows.Next() {
		var record models.PublicationRecord
		err := rows.Scan(&record.ID, &record.ScheduleID, &record.ContentID,
			&record.ExternalID, &record.Handle, &record.URL, &record.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		records = append(records, &record)
	}
	return records, nil
}
