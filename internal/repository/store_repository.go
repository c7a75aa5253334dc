package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/blogpilot/blogpilot/internal/models"
)

type StoreRepository interface {
	Create(ctx context.Context, store *models.Store) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Store, error)
	GetByDomain(ctx context.Context, shopDomain string) (*models.Store, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Store, error)
	CheckByUserID(ctx context.Context, storeID, userID int64) (bool, error)
	UpdateTimezone(ctx context.Context, storeID int64, timezone string) error
	Remove(ctx context.Context, id int64) error
}

type storeRepository struct {
	db *sql.DB
}

func NewStoreRepository(db *sql.DB) StoreRepository {
	return &storeRepository{db: db}
}

const storeColumns = `id, user_id, shop_domain, shop_name, blog_id, access_token, timezone, status, created_at, updated_at`

func (r *storeRepository) Create(ctx context.Context, store *models.Store) (int64, error) {
	query := `
		INSERT INTO stores (user_id, shop_domain, shop_name, blog_id, access_token, timezone, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, shop_domain)
		DO UPDATE SET access_token = EXCLUDED.access_token, timezone = EXCLUDED.timezone,
			shop_name = EXCLUDED.shop_name, blog_id = EXCLUDED.blog_id, updated_at = NOW()
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, store.UserID, store.ShopDomain, store.ShopName,
		store.BlogID, store.AccessToken, store.Timezone, store.Status).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *storeRepository) scanRow(row interface{ Scan(...any) error }) (*models.Store, error) {
	var store models.Store
	err := row.Scan(&store.ID, &store.UserID, &store.ShopDomain, &store.ShopName,
		&store.BlogID, &store.AccessToken, &store.Timezone, &store.Status,
		&store.CreatedAt, &store.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) GetByID(ctx context.Context, id int64) (*models.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE id = $1`
	store, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return store, nil
}

func (r *storeRepository) GetByDomain(ctx context.Context, shopDomain string) (*models.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE shop_domain = $1`
	store, err := r.scanRow(r.db.QueryRowContext(ctx, query, shopDomain))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return store, nil
}

func (r *storeRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var stores []*models.Store
	for rows.Next() {
		store, err := r.scanRow(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		stores = append(stores, store)
	}
	return stores, nil
}

func (r *storeRepository) CheckByUserID(ctx context.Context, storeID, userID int64) (bool, error) {
	query := "SELECT 1 FROM stores WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, storeID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *storeRepository) UpdateTimezone(ctx context.Context, storeID int64, timezone string) error {
	query := `UPDATE stores SET timezone = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, timezone, time.Now(), storeID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *storeRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM stores WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
