package transfer

import (
	"github.com/blogpilot/blogpilot/internal/assembler"
	"github.com/blogpilot/blogpilot/internal/models"
)

type GenerateRequest struct {
	StoreID        int64                  `json:"store_id"`
	Title          string                 `json:"title"`
	TargetType     string                 `json:"target_type"`
	Tone           string                 `json:"tone"`
	Perspective    string                 `json:"perspective"`
	BuyerProfile   string                 `json:"buyer_profile"`
	HeadingCount   int                    `json:"heading_count"`
	UseTables      bool                   `json:"use_tables"`
	UseLists       bool                   `json:"use_lists"`
	UseSubheadings bool                   `json:"use_subheadings"`
	UseCitations   bool                   `json:"use_citations"`
	UseFAQ         bool                   `json:"use_faq"`
	Keywords       []models.RankedKeyword `json:"keywords"`
	Products       []models.ProductRef    `json:"products"`
	Collections    []models.CollectionRef `json:"collections"`
	ImageAssetIDs  []int64                `json:"image_asset_ids"`
	VideoID        string                 `json:"video_id"`
	Intent         string                 `json:"intent"`
	ScheduleDate   string                 `json:"schedule_date"` // civil YYYY-MM-DD
	ScheduleTime   string                 `json:"schedule_time"` // civil HH:MM
}

type SchedulingOutcome struct {
	Status     string                    `json:"status"` // published, draft, scheduled, failed
	ScheduleID int64                     `json:"schedule_id,omitempty"`
	PublishAt  string                    `json:"publish_at,omitempty"`
	Record     *models.PublicationRecord `json:"record,omitempty"`
	Error      string                    `json:"error,omitempty"`
}

type GenerateResponse struct {
	Content    *models.GeneratedContent `json:"content"`
	FinalHTML  string                   `json:"final_html"`
	Manifest   *assembler.Manifest      `json:"manifest,omitempty"`
	Scheduling *SchedulingOutcome       `json:"scheduling"`
}

type BulkGenerateRequest struct {
	StoreID int64             `json:"store_id"`
	Topics  []GenerateRequest `json:"topics"`
}

type BulkTopicResult struct {
	Title     string `json:"title"`
	ContentID int64  `json:"content_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Prompt is the message pair sent to a text provider.
type Prompt struct {
	System string
	User   string
}

// ProviderResult is the parsed provider answer before post-processing.
type ProviderResult struct {
	Title           string   `json:"title"`
	HTML            string   `json:"html"`
	Tags            []string `json:"tags"`
	MetaDescription string   `json:"meta_description"`
}
