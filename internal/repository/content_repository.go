package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/blogpilot/blogpilot/internal/models"
	"github.com/lib/pq"
)

type GeneratedContentRepository interface {
	Create(ctx context.Context, tx *sql.Tx, content *models.GeneratedContent) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.GeneratedContent, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.GeneratedContent, error)
	CheckByUserID(ctx context.Context, contentID, userID int64) (bool, error)
}

type generatedContentRepository struct {
	db *sql.DB
}

func NewGeneratedContentRepository(db *sql.DB) GeneratedContentRepository {
	return &generatedContentRepository{db: db}
}

func (r *generatedContentRepository) Create(ctx context.Context, tx *sql.Tx, content *models.GeneratedContent) (int64, error) {
	query := `
		INSERT INTO generated_contents
			(request_id, user_id, title, html_body, final_html, tags, meta_description, provider, used_fallback)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	var err error
	args := []any{content.RequestID, content.UserID, content.Title, content.HTMLBody,
		content.FinalHTML, pq.Array(content.Tags), content.MetaDescription, content.Provider, content.UsedFallback}

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

func (r *generatedContentRepository) GetByID(ctx context.Context, id int64) (*models.GeneratedContent, error) {
	query := `SELECT id, request_id, user_id, title, html_body, final_html, tags, meta_description, provider, used_fallback, created_at
		FROM generated_contents WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var content models.GeneratedContent
	err := row.Scan(&content.ID, &content.RequestID, &content.UserID, &content.Title,
		&content.HTMLBody, &content.FinalHTML, pq.Array(&content.Tags), &content.MetaDescription,
		&content.Provider, &content.UsedFallback, &content.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &content, nil
}

func (r *generatedContentRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.GeneratedContent, error) {
	query := `SELECT id, request_id, user_id, title, html_body, final_html, tags, meta_description, provider, used_fallback, created_at
		FROM generated_contents WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var contents []*models.GeneratedContent
	for rows.Next() {
		var content models.GeneratedContent
		err := rows.Scan(&content.ID, &content.RequestID, &content.UserID, &content.Title,
			&content.HTMLBody, &content.FinalHTML, pq.Array(&content.Tags), &content.MetaDescription,
			&content.Provider, &content.UsedFallback, &content.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		contents = append(contents, &content)
	}
	return contents, nil
}

func (r *generatedContentRepository) CheckByUserID(ctx context.Context, contentID, userID int64) (bool, error) {
	query := "SELECT 1 FROM generated_contents WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, contentID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}
