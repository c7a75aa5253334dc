package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/blogpilot/blogpilot/internal/models"
)

type HistoryRepository interface {
	Create(ctx context.Context, history *models.PublicationHistory) (int64, error)
	ListByScheduleID(ctx context.Context, scheduleID int64) ([]*models.PublicationHistory, error)
}

type historyRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Create(ctx context.Context, history *models.PublicationHistory) (int64, error) {
	query := `
		INSERT INTO publication_history (user_id, schedule_id, content_id, error_message)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, history.UserID, history.ScheduleID,
		history.ContentID, history.ErrorMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *historyRepository) ListByScheduleID(ctx context.Context, scheduleID int64) ([]*models.PublicationHistory, error) {
	query := `SELECT id, user_id, schedule_id, content_id, error_message, created_at
		FROM publication_history WHERE schedule_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.PublicationHistory
	for rows.Next() {
		var history models.PublicationHistory
		err := rows.Scan(&history.ID, &history.UserID, &history.ScheduleID,
			&history.ContentID, &history.ErrorMessage, &history.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, &history)
	}
	return entries, nil
}
