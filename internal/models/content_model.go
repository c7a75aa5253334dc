package models

import "time"

type ContentRequest struct {
	ID             int64           `db:"id" json:"id"`
	UserID         int64           `db:"user_id" json:"user_id"`
	StoreID        int64           `db:"store_id" json:"store_id"`
	Title          string          `db:"title" json:"title"`
	TargetType     string          `db:"target_type" json:"target_type"` // post, page
	Tone           string          `db:"tone" json:"tone"`
	Perspective    string          `db:"perspective" json:"perspective"`
	BuyerProfile   string          `db:"buyer_profile" json:"buyer_profile"`
	HeadingCount   int             `db:"heading_count" json:"heading_count"`
	UseTables      bool            `db:"use_tables" json:"use_tables"`
	UseLists       bool            `db:"use_lists" json:"use_lists"`
	UseSubheadings bool            `db:"use_subheadings" json:"use_subheadings"`
	UseCitations   bool            `db:"use_citations" json:"use_citations"`
	UseFAQ         bool            `db:"use_faq" json:"use_faq"`
	Keywords       []RankedKeyword `db:"keywords" json:"keywords"`
	Products       []ProductRef    `db:"products" json:"products"`
	Collections    []CollectionRef `db:"collections" json:"collections"`
	ImageAssetIDs  []int64         `db:"image_asset_ids" json:"image_asset_ids"`
	VideoID        string          `db:"video_id" json:"video_id"`
	Intent         string          `db:"intent" json:"intent"` // immediate, draft, scheduled
	ScheduleDate   string          `db:"schedule_date" json:"schedule_date"`
	ScheduleTime   string          `db:"schedule_time" json:"schedule_time"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

type RankedKeyword struct {
	Keyword string `json:"keyword"`
	Volume  int    `json:"volume"`
}

type ProductRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

type CollectionRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

// GeneratedContent is written once per request. A retried request produces a
// new row, it never rewrites an existing one.
type GeneratedContent struct {
	ID              int64     `db:"id" json:"id"`
	RequestID       int64     `db:"request_id" json:"request_id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	Title           string    `db:"title" json:"title"`
	HTMLBody        string    `db:"html_body" json:"html_body"` // marker form, pre-assembly
	FinalHTML       string    `db:"final_html" json:"final_html"`
	Tags            []string  `db:"tags" json:"tags"`
	MetaDescription string    `db:"meta_description" json:"meta_description"`
	Provider        string    `db:"provider" json:"provider"`
	UsedFallback    bool      `db:"used_fallback" json:"used_fallback"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

const (
	TargetTypePost = "post"
	TargetTypePage = "page"

	IntentImmediate = "immediate"
	IntentDraft     = "draft"
	IntentScheduled = "scheduled"
)
