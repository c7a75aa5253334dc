package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/blogpilot/blogpilot/internal/models"
	"github.com/lib/pq"
)

type MediaAssetRepository interface {
	Create(ctx context.Context, tx *sql.Tx, asset *models.MediaAsset) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.MediaAsset, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.MediaAsset, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.MediaAsset, error)
	Remove(ctx context.Context, id int64) error
}

type mediaAssetRepository struct {
	db *sql.DB
}

func NewMediaAssetRepository(db *sql.DB) MediaAssetRepository {
	return &mediaAssetRepository{db: db}
}

const assetColumns = `id, user_id, file_name, file_type, file_size, file_url, alt_text, source, created_at`

func (r *mediaAssetRepository) Create(ctx context.Context, tx *sql.Tx, asset *models.MediaAsset) (int64, error) {
	query := `
		INSERT INTO media_assets (user_id, file_name, file_type, file_size, file_url, alt_text, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	var err error
	args := []any{asset.UserID, asset.FileName, asset.FileType, asset.FileSize,
		asset.FileURL, asset.AltText, asset.Source}

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

func (r *mediaAssetRepository) scanRow(row interface{ Scan(...any) error }) (*models.MediaAsset, error) {
	var asset models.MediaAsset
	err := row.Scan(&asset.ID, &asset.UserID, &asset.FileName, &asset.FileType,
		&asset.FileSize, &asset.FileURL, &asset.AltText, &asset.Source, &asset.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *mediaAssetRepository) GetByID(ctx context.Context, id int64) (*models.MediaAsset, error) {
	query := `SELECT ` + assetColumns + ` FROM media_assets WHERE id = $1`
	asset, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return asset, nil
}

// GetByIDs preserves the order of ids in its result so the caller's image
// ordering survives resolution.
func (r *mediaAssetRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.MediaAsset, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + assetColumns + ` FROM media_assets WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]*models.MediaAsset, len(ids))
	for rows.Next() {
		asset, err := r.scanRow(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		byID[asset.ID] = asset
	}

	var assets []*models.MediaAsset
	for _, id := range ids {
		if asset, ok := byID[id]; ok {
			assets = append(assets, asset)
		}
	}
	return assets, nil
}

func (r *mediaAssetRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	query := `SELECT ` + assetColumns + ` FROM media_assets WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var assets []*models.MediaAsset
	for rows.Next() {
		asset, err := r.scanRow(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func (r *mediaAssetRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM media_assets WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
