package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/blogpilot/blogpilot/internal/models"
)

type ContentRequestRepository interface {
	Create(ctx context.Context, tx *sql.Tx, req *models.ContentRequest) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ContentRequest, error)
}

type contentRequestRepository struct {
	db *sql.DB
}

func NewContentRequestRepository(db *sql.DB) ContentRequestRepository {
	return &contentRequestRepository{db: db}
}

func (r *contentRequestRepository) Create(ctx context.Context, tx *sql.Tx, req *models.ContentRequest) (int64, error) {
	query := `
		INSERT INTO content_requests
			(user_id, store_id, title, target_type, tone, perspective, buyer_profile,
			 heading_count, use_tables, use_lists, use_subheadings, use_citations, use_faq,
			 keywords, products, collections, image_asset_ids, video_id, intent,
			 schedule_date, schedule_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id
	`

	keywords, err := json.Marshal(req.Keywords)
	if err != nil {
		return 0, err
	}
	products, err := json.Marshal(req.Products)
	if err != nil {
		return 0, err
	}
	collections, err := json.Marshal(req.Collections)
	if err != nil {
		return 0, err
	}
	assetIDs, err := json.Marshal(req.ImageAssetIDs)
	if err != nil {
		return 0, err
	}

	args := []any{
		req.UserID, req.StoreID, req.Title, req.TargetType, req.Tone, req.Perspective,
		req.BuyerProfile, req.HeadingCount, req.UseTables, req.UseLists, req.UseSubheadings,
		req.UseCitations, req.UseFAQ, keywords, products, collections, assetIDs,
		req.VideoID, req.Intent, req.ScheduleDate, req.ScheduleTime,
	}

	var id int64
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

func (r *contentRequestRepository) GetByID(ctx context.Context, id int64) (*models.ContentRequest, error) {
	query := `
		SELECT id, user_id, store_id, title, target_type, tone, perspective, buyer_profile,
		       heading_count, use_tables, use_lists, use_subheadings, use_citations, use_faq,
		       keywords, products, collections, image_asset_ids, video_id, intent,
		       schedule_date, schedule_time, created_at
		FROM content_requests WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var req models.ContentRequest
	var keywords, products, collections, assetIDs []byte
	err := row.Scan(&req.ID, &req.UserID, &req.StoreID, &req.Title, &req.TargetType,
		&req.Tone, &req.Perspective, &req.BuyerProfile, &req.HeadingCount,
		&req.UseTables, &req.UseLists, &req.UseSubheadings, &req.UseCitations, &req.UseFAQ,
		&keywords, &products, &collections, &assetIDs, &req.VideoID, &req.Intent,
		&req.ScheduleDate, &req.ScheduleTime, &req.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	if err := json.Unmarshal(keywords, &req.Keywords); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(products, &req.Products); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(collections, &req.Collections); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(assetIDs, &req.ImageAssetIDs); err != nil {
		return nil, err
	}

	return &req, nil
}
