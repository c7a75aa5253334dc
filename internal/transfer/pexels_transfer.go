package transfer

type PexelsPhotoSrc struct {
	Original  string `json:"original"`
	Large     string `json:"large"`
	Large2x   string `json:"large2x"`
	Medium    string `json:"medium"`
	Landscape string `json:"landscape"`
}

type PexelsPhoto struct {
	ID           int64          `json:"id"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	URL          string         `json:"url"`
	Photographer string         `json:"photographer"`
	Alt          string         `json:"alt"`
	Src          PexelsPhotoSrc `json:"src"`
}

type PexelsSearchResponse struct {
	TotalResults int           `json:"total_results"`
	Page         int           `json:"page"`
	PerPage      int           `json:"per_page"`
	Photos       []PexelsPhoto `json:"photos"`
}
