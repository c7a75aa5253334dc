package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blogpilot/blogpilot/internal/assembler"
	"github.com/blogpilot/blogpilot/internal/models"
	"github.com/blogpilot/blogpilot/internal/repository"
	"github.com/blogpilot/blogpilot/internal/transfer"
)

// ContentService drives a request through media resolution, generation,
// assembly and the chosen publication intent.
type ContentService interface {
	Generate(ctx context.Context, userID int64, gr *transfer.GenerateRequest) (*transfer.GenerateResponse, error)
	GenerateBulk(ctx context.Context, userID int64, br *transfer.BulkGenerateRequest) []*transfer.BulkTopicResult
	List(ctx context.Context, userID int64) ([]*models.GeneratedContent, error)
}

type contentService struct {
	rq    repository.ContentRequestRepository
	cr    repository.GeneratedContentRepository
	st    repository.StoreRepository
	gen   GenerationService
	media MediaService
	sched SchedulerService

	bulkDelay time.Duration
	sleep     func(time.Duration)
}

func NewContentService(
	rq repository.ContentRequestRepository,
	cr repository.GeneratedContentRepository,
	st repository.StoreRepository,
	gen GenerationService,
	media MediaService,
	sched SchedulerService,
	bulkDelay time.Duration) ContentService {
	return &contentService{
		rq:        rq,
		cr:        cr,
		st:        st,
		gen:       gen,
		media:     media,
		sched:     sched,
		bulkDelay: bulkDelay,
		sleep:     time.Sleep,
	}
}

func (s *contentService) Generate(ctx context.Context, userID int64, gr *transfer.GenerateRequest) (*transfer.GenerateResponse, error) {
	req, store, err := s.acceptRequest(ctx, userID, gr)
	if err != nil {
		return nil, err
	}

	media, err := s.media.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	// Generation never fails; at worst the template provider answers.
	content := s.gen.Generate(ctx, req, store.ShopDomain)

	finalHTML, manifest, asmErr := assembler.Assemble(assembler.Input{
		HTMLBody:    content.HTMLBody,
		TargetType:  req.TargetType,
		Media:       *media,
		ShopDomain:  store.ShopDomain,
		Products:    req.Products,
		Collections: req.Collections,
	})
	if asmErr != nil {
		// Should not happen given the pure-function contract; the request
		// still carries whatever partial content assembly produced.
		slog.Error("assembly failed", "request_id", req.ID, "error", asmErr.Error())
	}
	content.FinalHTML = finalHTML

	contentID, err := s.cr.Create(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("error saving generated content: %w", err)
	}
	content.ID = contentID

	resp := &transfer.GenerateResponse{
		Content:   content,
		FinalHTML: finalHTML,
		Manifest:  &manifest,
	}

	resp.Scheduling, err = s.applyIntent(ctx, req, store, content)
	if err != nil {
		return resp, err
	}

	return resp, nil
}

func (s *contentService) applyIntent(ctx context.Context, req *models.ContentRequest, store *models.Store, content *models.GeneratedContent) (*transfer.SchedulingOutcome, error) {
	switch req.Intent {
	case models.IntentImmediate:
		record, err := s.sched.PublishNow(ctx, store, content, req.TargetType)
		if err != nil {
			return &transfer.SchedulingOutcome{
				Status: models.ScheduleStatusFailed,
				Error:  err.Error(),
			}, err
		}
		return &transfer.SchedulingOutcome{
			Status: models.ScheduleStatusPublished,
			Record: record,
		}, nil

	case models.IntentScheduled:
		sp, err := s.sched.Schedule(ctx, store, content, req.TargetType, req.ScheduleDate, req.ScheduleTime)
		if err != nil {
			return &transfer.SchedulingOutcome{
				Status: models.ScheduleStatusFailed,
				Error:  err.Error(),
			}, err
		}
		return &transfer.SchedulingOutcome{
			Status:     models.ScheduleStatusScheduled,
			ScheduleID: sp.ID,
			PublishAt:  sp.PublishAt.Format(time.RFC3339),
		}, nil

	default:
		sp, err := s.sched.SaveDraft(ctx, store, content, req.TargetType)
		if err != nil {
			return &transfer.SchedulingOutcome{
				Status: models.ScheduleStatusFailed,
				Error:  err.Error(),
			}, err
		}
		return &transfer.SchedulingOutcome{
			Status:     models.ScheduleStatusDraft,
			ScheduleID: sp.ID,
		}, nil
	}
}

// acceptRequest validates the DTO, checks store ownership and persists the
// immutable request row.
func (s *contentService) acceptRequest(ctx context.Context, userID int64, gr *transfer.GenerateRequest) (*models.ContentRequest, *models.Store, error) {
	if gr == nil {
		return nil, nil, errors.New("request is nil")
	}
	if gr.Title == "" {
		err := errors.New("title cannot be empty")
		slog.Info(err.Error())
		return nil, nil, err
	}

	targetType := gr.TargetType
	if targetType == "" {
		targetType = models.TargetTypePost
	}
	if targetType != models.TargetTypePost && targetType != models.TargetTypePage {
		return nil, nil, fmt.Errorf("unknown target type %q", targetType)
	}

	intent := gr.Intent
	if intent == "" {
		intent = models.IntentDraft
	}
	switch intent {
	case models.IntentImmediate, models.IntentDraft:
	case models.IntentScheduled:
		if gr.ScheduleDate == "" || gr.ScheduleTime == "" {
			return nil, nil, errors.New("scheduled intent requires schedule_date and schedule_time")
		}
	default:
		return nil, nil, fmt.Errorf("unknown publication intent %q", intent)
	}

	exists, err := s.st.CheckByUserID(ctx, gr.StoreID, userID)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		err = errors.New("store doesn't exist")
		slog.Info(err.Error())
		return nil, nil, err
	}

	store, err := s.st.GetByID(ctx, gr.StoreID)
	if err != nil || store == nil {
		return nil, nil, errors.New("store doesn't exist")
	}

	req := &models.ContentRequest{
		UserID:         userID,
		StoreID:        gr.StoreID,
		Title:          gr.Title,
		TargetType:     targetType,
		Tone:           gr.Tone,
		Perspective:    gr.Perspective,
		BuyerProfile:   gr.BuyerProfile,
		HeadingCount:   gr.HeadingCount,
		UseTables:      gr.UseTables,
		UseLists:       gr.UseLists,
		UseSubheadings: gr.UseSubheadings,
		UseCitations:   gr.UseCitations,
		UseFAQ:         gr.UseFAQ,
		Keywords:       gr.Keywords,
		Products:       gr.Products,
		Collections:    gr.Collections,
		ImageAssetIDs:  gr.ImageAssetIDs,
		VideoID:        gr.VideoID,
		Intent:         intent,
		ScheduleDate:   gr.ScheduleDate,
		ScheduleTime:   gr.ScheduleTime,
	}

	reqID, err := s.rq.Create(ctx, nil, req)
	if err != nil {
		return nil, nil, fmt.Errorf("error saving content request: %w", err)
	}
	req.ID = reqID

	return req, store, nil
}

// GenerateBulk runs topics sequentially with a fixed inter-call delay to
// respect provider rate limits. One topic's failure is recorded on its own
// result and never aborts the batch.
func (s *contentService) GenerateBulk(ctx context.Context, userID int64, br *transfer.BulkGenerateRequest) []*transfer.BulkTopicResult {
	results := make([]*transfer.BulkTopicResult, 0, len(br.Topics))

	for i := range br.Topics {
		topic := br.Topics[i]
		if i > 0 {
			s.sleep(s.bulkDelay)
		}

		if topic.StoreID == 0 {
			topic.StoreID = br.StoreID
		}
		// Bulk topics land as drafts; scheduling them is a separate step.
		topic.Intent = models.IntentDraft

		if err := ctx.Err(); err != nil {
			results = append(results, &transfer.BulkTopicResult{Title: topic.Title, Error: err.Error()})
			continue
		}

		resp, err := s.Generate(ctx, userID, &topic)
		if err != nil {
			slog.Warn("bulk topic failed", "title", topic.Title, "error", err.Error())
			results = append(results, &transfer.BulkTopicResult{Title: topic.Title, Error: err.Error()})
			continue
		}

		results = append(results, &transfer.BulkTopicResult{
			Title:     resp.Content.Title,
			ContentID: resp.Content.ID,
		})
	}

	return results
}

func (s *contentService) List(ctx context.Context, userID int64) ([]*models.GeneratedContent, error) {
	contents, err := s.cr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting generated contents")
	}
	return contents, nil
}
