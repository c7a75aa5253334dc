package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blogpilot/blogpilot/internal/models"
	"github.com/blogpilot/blogpilot/internal/repository"
)

const (
	maxPublishAttempts = 5
	backoffBase        = 2 * time.Minute
	backoffCap         = time.Hour
	promoteBatchSize   = 50
)

type SchedulerService interface {
	Schedule(ctx context.Context, store *models.Store, content *models.GeneratedContent, targetType, civilDate, civilTime string) (*models.ScheduledPublication, error)
	SaveDraft(ctx context.Context, store *models.Store, content *models.GeneratedContent, targetType string) (*models.ScheduledPublication, error)
	ScheduleDraft(ctx context.Context, userID, scheduleID int64, civilDate, civilTime string) (*models.ScheduledPublication, error)
	PublishNow(ctx context.Context, store *models.Store, content *models.GeneratedContent, targetType string) (*models.PublicationRecord, error)
	List(ctx context.Context, userID int64) ([]*models.ScheduledPublication, error)
	History(ctx context.Context, userID, scheduleID int64) ([]*models.PublicationHistory, error)
	Cancel(ctx context.Context, userID, scheduleID int64) error
	PromoteDueSchedules(ctx context.Context) error
	PromoteOne(ctx context.Context, scheduleID int64) error
}

type schedulerService struct {
	sp repository.ScheduleRepository
	rr repository.RecordRepository
	hr repository.HistoryRepository
	cr repository.GeneratedContentRepository
	st repository.StoreRepository
	gw StoreGateway

	// now is injected so promotion is testable without wall-clock sleeps.
	now func() time.Time
}

func NewSchedulerService(
	sp repository.ScheduleRepository,
	rr repository.RecordRepository,
	hr repository.HistoryRepository,
	cr repository.GeneratedContentRepository,
	st repository.StoreRepository,
	gw StoreGateway) SchedulerService {
	return &schedulerService{
		sp:  sp,
		rr:  rr,
		hr:  hr,
		cr:  cr,
		st:  st,
		gw:  gw,
		now: time.Now,
	}
}

// resolveInstant converts the civil date/time to the absolute UTC instant
// using the store's timezone. This runs exactly once, at scheduling time;
// the result is persisted and never re-derived.
func (s *schedulerService) resolveInstant(ctx context.Context, store *models.Store, civilDate, civilTime string) (time.Time, string, error) {
	tz := store.Timezone
	if tz == "" {
		fetched, err := s.gw.GetShopTimezone(ctx, store)
		if err != nil {
			return time.Time{}, "", fmt.Errorf("unable to resolve store timezone: %w", err)
		}
		tz = fetched
		if err := s.st.UpdateTimezone(ctx, store.ID, tz); err != nil {
			slog.Warn("unable to cache store timezone", "store_id", store.ID, "error", err.Error())
		}
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("store timezone %q is not a valid IANA zone: %w", tz, err)
	}

	civil, err := time.ParseInLocation("2006-01-02 15:04", civilDate+" "+civilTime, loc)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid civil date/time: %w", err)
	}

	return civil.UTC(), tz, nil
}

func (s *schedulerService) Schedule(ctx context.Context, store *models.Store, content *models.GeneratedContent, targetType, civilDate, civilTime string) (*models.ScheduledPublication, error) {
	publishAt, tz, err := s.resolveInstant(ctx, store, civilDate, civilTime)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	sp := &models.ScheduledPublication{
		UserID:       content.UserID,
		StoreID:      store.ID,
		ContentID:    content.ID,
		TargetType:   targetType,
		ScheduleDate: civilDate,
		ScheduleTime: civilTime,
		Timezone:     tz,
		PublishAt:    publishAt,
		Status:       models.ScheduleStatusScheduled,
	}

	id, err := s.sp.Create(ctx, nil, sp)
	if err != nil {
		return nil, fmt.Errorf("error creating schedule: %w", err)
	}
	sp.ID = id

	return sp, nil
}

func (s *schedulerService) SaveDraft(ctx context.Context, store *models.Store, content *models.GeneratedContent, targetType string) (*models.ScheduledPublication, error) {
	sp := &models.ScheduledPublication{
		UserID:     content.UserID,
		StoreID:    store.ID,
		ContentID:  content.ID,
		TargetType: targetType,
		Status:     models.ScheduleStatusDraft,
	}

	id, err := s.sp.Create(ctx, nil, sp)
	if err != nil {
		return nil, fmt.Errorf("error creating draft: %w", err)
	}
	sp.ID = id

	return sp, nil
}

func (s *schedulerService) ScheduleDraft(ctx context.Context, userID, scheduleID int64, civilDate, civilTime string) (*models.ScheduledPublication, error) {
	sched, err := s.sp.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if sched == nil || sched.UserID != userID {
		return nil, errors.New("schedule doesn't exist")
	}
	if sched.Status != models.ScheduleStatusDraft {
		return nil, fmt.Errorf("schedule is %s, only drafts can be scheduled", sched.Status)
	}

	store, err := s.st.GetByID(ctx, sched.StoreID)
	if err != nil || store == nil {
		return nil, errors.New("store doesn't exist")
	}

	publishAt, tz, err := s.resolveInstant(ctx, store, civilDate, civilTime)
	if err != nil {
		return nil, err
	}

	ok, err := s.sp.ScheduleDraft(ctx, scheduleID, userID, civilDate, civilTime, tz, publishAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrSchedulingConflict
	}

	return s.sp.GetByID(ctx, scheduleID)
}

// PublishNow is the immediate path: it bypasses the queue and calls the
// gateway synchronously. Failures go straight back to the caller.
func (s *schedulerService) PublishNow(ctx context.Context, store *models.Store, content *models.GeneratedContent, targetType string) (*models.PublicationRecord, error) {
	record, err := s.publish(ctx, store, content, targetType)

	history := &models.PublicationHistory{
		UserID:    content.UserID,
		ContentID: content.ID,
	}
	if err != nil {
		history.ErrorMessage = err.Error()
	}
	if _, herr := s.hr.Create(ctx, history); herr != nil {
		slog.Warn("unable to record publication history", "content_id", content.ID, "error", herr.Error())
	}

	if err != nil {
		return nil, err
	}

	if _, err := s.rr.Create(ctx, record); err != nil {
		slog.Warn("publication record not saved", "content_id", content.ID, "error", err.Error())
	}

	return record, nil
}

func (s *schedulerService) publish(ctx context.Context, store *models.Store, content *models.GeneratedContent, targetType string) (*models.PublicationRecord, error) {
	if targetType == models.TargetTypePage {
		return s.gw.CreatePage(ctx, store, content, content.FinalHTML, true)
	}
	return s.gw.CreateArticle(ctx, store, content, content.FinalHTML, true)
}

func (s *schedulerService) List(ctx context.Context, userID int64) ([]*models.ScheduledPublication, error) {
	schedules, err := s.sp.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting schedules")
	}
	return schedules, nil
}

func (s *schedulerService) History(ctx context.Context, userID, scheduleID int64) ([]*models.PublicationHistory, error) {
	sched, err := s.sp.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if sched == nil || sched.UserID != userID {
		return nil, errors.New("schedule doesn't exist")
	}

	entries, err := s.hr.ListByScheduleID(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("Error getting publication history")
	}
	return entries, nil
}

// Cancel succeeds only while the record is still scheduled (or draft).
// Once the poller has claimed it, cancellation is a conflict.
func (s *schedulerService) Cancel(ctx context.Context, userID, scheduleID int64) error {
	sched, err := s.sp.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}
	if sched == nil || sched.UserID != userID {
		err = errors.New("schedule doesn't exist")
		slog.Info(err.Error())
		return err
	}

	switch sched.Status {
	case models.ScheduleStatusPublishing:
		return models.ErrSchedulingConflict
	case models.ScheduleStatusPublished, models.ScheduleStatusFailed:
		return fmt.Errorf("schedule is already %s", sched.Status)
	}

	ok, err := s.sp.Cancel(ctx, scheduleID, userID)
	if err != nil {
		return err
	}
	if !ok {
		// Lost the race against a poller between the read and the delete.
		return models.ErrSchedulingConflict
	}
	return nil
}

// PromoteDueSchedules is the poller's promotion pass: select everything due,
// claim each record, then publish. Claim-then-act keeps a slow gateway call
// under one poller from double-publishing under another.
func (s *schedulerService) PromoteDueSchedules(ctx context.Context) error {
	due, err := s.sp.ListDue(ctx, s.now(), promoteBatchSize)
	if err != nil {
		return err
	}

	for _, sched := range due {
		if err := s.promote(ctx, sched); err != nil {
			slog.Error("promotion failed", "schedule_id", sched.ID, "error", err.Error())
		}
	}
	return nil
}

// PromoteOne handles the queue nudge for a single schedule. Missing or
// already-claimed records are a no-op, not an error.
func (s *schedulerService) PromoteOne(ctx context.Context, scheduleID int64) error {
	sched, err := s.sp.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}
	if sched == nil || sched.Status != models.ScheduleStatusScheduled {
		return nil
	}
	if sched.PublishAt.After(s.now()) {
		return nil
	}
	return s.promote(ctx, sched)
}

func (s *schedulerService) promote(ctx context.Context, sched *models.ScheduledPublication) error {
	claimed, err := s.sp.Claim(ctx, sched.ID)
	if err != nil {
		return err
	}
	if !claimed {
		// Another poller won the claim; nothing to do.
		return nil
	}

	content, err := s.cr.GetByID(ctx, sched.ContentID)
	if err == nil && content == nil {
		err = errors.New("generated content doesn't exist")
	}

	var store *models.Store
	if err == nil {
		store, err = s.st.GetByID(ctx, sched.StoreID)
		if err == nil && store == nil {
			err = errors.New("store doesn't exist")
		}
	}

	var record *models.PublicationRecord
	if err == nil {
		record, err = s.publish(ctx, store, content, sched.TargetType)
	}

	history := &models.PublicationHistory{
		UserID:     sched.UserID,
		ScheduleID: sched.ID,
		ContentID:  sched.ContentID,
	}
	if err != nil {
		history.ErrorMessage = err.Error()
	}
	if _, herr := s.hr.Create(ctx, history); herr != nil {
		slog.Warn("unable to record publication history", "schedule_id", sched.ID, "error", herr.Error())
	}

	if err != nil {
		return s.handlePublishFailure(ctx, sched, err)
	}

	record.ScheduleID = sched.ID
	if _, err := s.rr.Create(ctx, record); err != nil {
		slog.Warn("publication record not saved", "schedule_id", sched.ID, "error", err.Error())
	}

	if err := s.sp.MarkPublished(ctx, sched.ID); err != nil {
		return err
	}

	slog.Info("schedule published",
		"schedule_id", sched.ID,
		"external_id", record.ExternalID,
		"url", record.URL)
	return nil
}

func (s *schedulerService) handlePublishFailure(ctx context.Context, sched *models.ScheduledPublication, pubErr error) error {
	attempts := sched.AttemptCount + 1

	if attempts >= maxPublishAttempts {
		slog.Error("schedule permanently failed",
			"schedule_id", sched.ID,
			"attempts", attempts,
			"error", pubErr.Error())
		return s.sp.MarkFailed(ctx, sched.ID, attempts, pubErr.Error())
	}

	// Retarget to a backoff-delayed instant instead of the original one so
	// the next pass does not hot-loop on the same record.
	nextAt := s.now().Add(backoffDelay(attempts))
	slog.Warn("publish attempt failed, rescheduling",
		"schedule_id", sched.ID,
		"attempt", attempts,
		"next_at", nextAt,
		"error", pubErr.Error())
	return s.sp.Retarget(ctx, sched.ID, nextAt, attempts, pubErr.Error())
}

func backoffDelay(attempt int) time.Duration {
	delay := backoffBase
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= backoffCap {
			return backoffCap
		}
	}
	return delay
}
