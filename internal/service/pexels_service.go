package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/blogpilot/blogpilot/internal/models"
	"github.com/blogpilot/blogpilot/internal/transfer"
)

const pexelsSearchURL = "https://api.pexels.com/v1/search"

// ImageSearcher is the stock-photo provider interface the resolver consumes.
type ImageSearcher interface {
	Search(ctx context.Context, query string, perPage int) ([]models.ImageRef, error)
}

type pexelsService struct {
	apiKey string
	client *http.Client
}

func NewPexelsService(apiKey string) ImageSearcher {
	return &pexelsService{
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *pexelsService) Search(ctx context.Context, query string, perPage int) ([]models.ImageRef, error) {
	params := url.Values{}
	params.Add("query", query)
	params.Add("per_page", fmt.Sprintf("%d", perPage))
	params.Add("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", pexelsSearchURL, params.Encode()), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("pexels search failed (status %d): %s", resp.StatusCode, string(body))
	}

	var searchResp transfer.PexelsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	var images []models.ImageRef
	for _, photo := range searchResp.Photos {
		imgURL := photo.Src.Large
		if imgURL == "" {
			imgURL = photo.Src.Original
		}
		images = append(images, models.ImageRef{
			URL:         imgURL,
			Width:       photo.Width,
			Height:      photo.Height,
			AltText:     photo.Alt,
			Source:      models.ImageSourceStock,
			Attribution: fmt.Sprintf("Photo by %s on Pexels", photo.Photographer),
		})
	}

	return images, nil
}
