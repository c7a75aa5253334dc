package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"regexp"

	"github.com/blogpilot/blogpilot/internal/models"
	"github.com/blogpilot/blogpilot/internal/repository"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const stockSearchCount = 4

// Video input is an identifier, never embeddable markup, so nothing
// untrusted can reach the final HTML.
var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{6,64}$`)

type MediaService interface {
	Resolve(ctx context.Context, req *models.ContentRequest) (*models.MediaSelection, error)
	Upload(ctx context.Context, userID int64, files []*multipart.FileHeader) ([]*models.MediaAsset, error)
	ListAssets(ctx context.Context, userID int64) ([]*models.MediaAsset, error)
	RemoveAsset(ctx context.Context, userID, assetID int64) error
}

type mediaService struct {
	ma     repository.MediaAssetRepository
	search ImageSearcher
	r2     *R2Service
}

func NewMediaService(ma repository.MediaAssetRepository, search ImageSearcher, r2 *R2Service) MediaService {
	return &mediaService{
		ma:     ma,
		search: search,
		r2:     r2,
	}
}

// Resolve picks images in a fixed order: caller-supplied asset ids, then a
// stock search keyed on the title, then none. Image-less content is valid,
// not an error.
func (s *mediaService) Resolve(ctx context.Context, req *models.ContentRequest) (*models.MediaSelection, error) {
	if req.VideoID != "" && !videoIDRE.MatchString(req.VideoID) {
		err := errors.New("video id is not a valid external video identifier")
		slog.Info(err.Error())
		return nil, err
	}

	var images []models.ImageRef

	if len(req.ImageAssetIDs) > 0 {
		assets, err := s.ma.GetByIDs(ctx, req.ImageAssetIDs)
		if err != nil {
			return nil, fmt.Errorf("error loading selected images: %w", err)
		}
		for _, asset := range assets {
			source := asset.Source
			if source == "" {
				source = models.ImageSourceLibrary
			}
			images = append(images, models.ImageRef{
				URL:     asset.FileURL,
				AltText: asset.AltText,
				Source:  source,
			})
		}
	} else if s.search != nil {
		found, err := s.search.Search(ctx, req.Title, stockSearchCount)
		if err != nil {
			// Stock search is best effort; the pipeline continues without
			// images.
			slog.Warn("stock photo search failed", "title", req.Title, "error", err.Error())
		} else {
			images = found
		}
	}

	selection := &models.MediaSelection{VideoID: req.VideoID}
	seen := make(map[string]struct{})
	for _, img := range images {
		if img.URL == "" {
			continue
		}
		if _, dup := seen[img.URL]; dup {
			continue
		}
		seen[img.URL] = struct{}{}

		if selection.Primary == nil {
			primary := img
			selection.Primary = &primary
			continue
		}
		selection.Secondary = append(selection.Secondary, img)
	}

	return selection, nil
}

func (s *mediaService) Upload(ctx context.Context, userID int64, files []*multipart.FileHeader) ([]*models.MediaAsset, error) {
	allowedTypes := map[string]struct{}{
		"jpg": {}, "jpeg": {}, "png": {}, "webp": {}, "gif": {},
	}

	var assets []*models.MediaAsset
	for _, file := range files {
		fileContent, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("error opening file: %w", err)
		}

		fileBytes, err := io.ReadAll(fileContent)
		fileContent.Close()
		if err != nil {
			return nil, fmt.Errorf("error reading file content: %w", err)
		}

		fileType, err := filetype.Match(fileBytes)
		if err != nil || fileType == types.Unknown {
			return nil, errors.New("unsupported file type")
		}
		if _, ok := allowedTypes[fileType.Extension]; !ok {
			return nil, fmt.Errorf("file type %s is not allowed", fileType.Extension)
		}

		key, err := gonanoid.New()
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}

		if err := s.r2.UploadToR2(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
			return nil, fmt.Errorf("error uploading file: %w", err)
		}

		asset := &models.MediaAsset{
			UserID:   userID,
			FileName: key,
			FileType: fileType.MIME.Value,
			FileSize: int64(len(fileBytes)),
			FileURL:  s.r2.PublicURL(key),
			AltText:  file.Filename,
			Source:   models.ImageSourceUpload,
		}

		assetID, err := s.ma.Create(ctx, nil, asset)
		if err != nil {
			return nil, fmt.Errorf("error saving media asset: %w", err)
		}
		asset.ID = assetID
		assets = append(assets, asset)
	}

	return assets, nil
}

func (s *mediaService) ListAssets(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	assets, err := s.ma.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing media assets")
	}
	return assets, nil
}

func (s *mediaService) RemoveAsset(ctx context.Context, userID, assetID int64) error {
	asset, err := s.ma.GetByID(ctx, assetID)
	if err != nil {
		return err
	}
	if asset == nil || asset.UserID != userID {
		err = errors.New("media asset doesn't exist")
		slog.Info(err.Error())
		return err
	}

	return s.ma.Remove(ctx, assetID)
}
