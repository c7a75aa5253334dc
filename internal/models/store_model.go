package models

import "time"

type Store struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	ShopDomain  string    `db:"shop_domain" json:"shop_domain"`
	ShopName    string    `db:"shop_name" json:"shop_name"`
	BlogID      string    `db:"blog_id" json:"blog_id"`
	AccessToken string    `db:"access_token" json:"-"` // AES-GCM encrypted at rest
	Timezone    string    `db:"timezone" json:"timezone"` // IANA, cached at connect time
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type ApiKey struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ApiKey    string    `db:"api_key" json:"api_key"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
