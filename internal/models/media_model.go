package models

import "time"

const (
	ImageSourceStock    = "stock-photo"
	ImageSourceLibrary  = "platform-library"
	ImageSourceProduct  = "product-asset"
	ImageSourceUpload   = "user-upload"
)

type ImageRef struct {
	URL         string `json:"url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	AltText     string `json:"alt_text"`
	Source      string `json:"source"`
	Attribution string `json:"attribution"`
}

// MediaSelection holds the images and video chosen for one request. The
// primary URL never appears again in the secondary list.
type MediaSelection struct {
	Primary   *ImageRef  `json:"primary"`
	Secondary []ImageRef `json:"secondary"`
	VideoID   string     `json:"video_id"`
}

func (m *MediaSelection) IsEmpty() bool {
	return m == nil || (m.Primary == nil && len(m.Secondary) == 0 && m.VideoID == "")
}

type MediaAsset struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	FileURL   string    `db:"file_url" json:"file_url"`
	AltText   string    `db:"alt_text" json:"alt_text"`
	Source    string    `db:"source" json:"source"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
