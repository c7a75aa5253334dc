package service

import (
	"context"
	"database/sql"
	"errors"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/blogpilot/blogpilot/internal/models"
	"github.com/blogpilot/blogpilot/internal/transfer"
)

type memRequestRepo struct {
	seq  int64
	last *models.ContentRequest
}

func (r *memRequestRepo) Create(ctx context.Context, tx *sql.Tx, req *models.ContentRequest) (int64, error) {
	r.seq++
	r.last = req
	return r.seq, nil
}

func (r *memRequestRepo) GetByID(ctx context.Context, id int64) (*models.ContentRequest, error) {
	return r.last, nil
}

type memContentRepo struct {
	seq  int64
	last *models.GeneratedContent
}

func (r *memContentRepo) Create(ctx context.Context, tx *sql.Tx, content *models.GeneratedContent) (int64, error) {
	r.seq++
	r.last = content
	return r.seq, nil
}

func (r *memContentRepo) GetByID(ctx context.Context, id int64) (*models.GeneratedContent, error) {
	return r.last, nil
}

func (r *memContentRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.GeneratedContent, error) {
	if r.last == nil {
		return nil, nil
	}
	return []*models.GeneratedContent{r.last}, nil
}

func (r *memContentRepo) CheckByUserID(ctx context.Context, contentID, userID int64) (bool, error) {
	return r.last != nil, nil
}

type stubGeneration struct{}

func (stubGeneration) Generate(ctx context.Context, req *models.ContentRequest, shopDomain string) *models.GeneratedContent {
	return &models.GeneratedContent{
		RequestID: req.ID,
		UserID:    req.UserID,
		Title:     req.Title,
		HTMLBody:  "<p>Lead paragraph.</p>[[IMAGE]]<h2>Section</h2><p>Body copy.</p>",
		Provider:  "stub",
	}
}

type stubMedia struct{}

func (stubMedia) Resolve(ctx context.Context, req *models.ContentRequest) (*models.MediaSelection, error) {
	return &models.MediaSelection{VideoID: req.VideoID}, nil
}

func (stubMedia) Upload(ctx context.Context, userID int64, files []*multipart.FileHeader) ([]*models.MediaAsset, error) {
	return nil, nil
}

func (stubMedia) ListAssets(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	return nil, nil
}

func (stubMedia) RemoveAsset(ctx context.Context, userID, assetID int64) error { return nil }

type stubScheduler struct {
	publishErr   error
	publishCalls int
	draftCalls   int
	schedCalls   int
}

func (s *stubScheduler) Schedule(ctx context.Context, store *models.Store, content *models.GeneratedContent, targetType, civilDate, civilTime string) (*models.ScheduledPublication, error) {
	s.schedCalls++
	return &models.ScheduledPublication{
		ID:        77,
		Status:    models.ScheduleStatusScheduled,
		PublishAt: time.Date(2025, 9, 1, 14, 0, 0, 0, time.UTC),
	}, nil
}

func (s *stubScheduler) SaveDraft(ctx context.Context, store *models.Store, content *models.GeneratedContent, targetType string) (*models.ScheduledPublication, error) {
	s.draftCalls++
	return &models.ScheduledPublication{ID: 55, Status: models.ScheduleStatusDraft}, nil
}

func (s *stubScheduler) ScheduleDraft(ctx context.Context, userID, scheduleID int64, civilDate, civilTime string) (*models.ScheduledPublication, error) {
	return nil, errors.New("not implemented")
}

func (s *stubScheduler) PublishNow(ctx context.Context, store *models.Store, content *models.GeneratedContent, targetType string) (*models.PublicationRecord, error) {
	s.publishCalls++
	if s.publishErr != nil {
		return nil, s.publishErr
	}
	return &models.PublicationRecord{ExternalID: "42", URL: "https://demo.myshopify.com/blogs/news/x"}, nil
}

func (s *stubScheduler) List(ctx context.Context, userID int64) ([]*models.ScheduledPublication, error) {
	return nil, nil
}

func (s *stubScheduler) History(ctx context.Context, userID, scheduleID int64) ([]*models.PublicationHistory, error) {
	return nil, nil
}

func (s *stubScheduler) Cancel(ctx context.Context, userID, scheduleID int64) error { return nil }

func (s *stubScheduler) PromoteDueSchedules(ctx context.Context) error { return nil }

func (s *stubScheduler) PromoteOne(ctx context.Context, scheduleID int64) error { return nil }

type contentFixture struct {
	svc   *contentService
	rq    *memRequestRepo
	cr    *memContentRepo
	st    *fakeStoreRepo
	sched *stubScheduler
}

func newContentFixture(t *testing.T) *contentFixture {
	t.Helper()

	f := &contentFixture{
		rq:    &memRequestRepo{},
		cr:    &memContentRepo{},
		st:    &fakeStoreRepo{stores: map[int64]*models.Store{}},
		sched: &stubScheduler{},
	}
	f.st.stores[1] = &models.Store{ID: 1, UserID: 10, ShopDomain: "demo.myshopify.com", Timezone: "UTC"}

	f.svc = NewContentService(f.rq, f.cr, f.st, stubGeneration{}, stubMedia{}, f.sched, 0).(*contentService)
	f.svc.sleep = func(time.Duration) {}
	return f
}

func TestGenerateDraftIntentAssemblesAndSaves(t *testing.T) {
	f := newContentFixture(t)

	resp, err := f.svc.Generate(context.Background(), 10, &transfer.GenerateRequest{
		StoreID: 1,
		Title:   "Desk Setups",
		Intent:  models.IntentDraft,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if strings.Contains(resp.FinalHTML, "[[") {
		t.Errorf("FinalHTML still carries markers: %q", resp.FinalHTML)
	}
	if f.cr.last == nil || f.cr.last.FinalHTML != resp.FinalHTML {
		t.Error("assembled HTML was not persisted with the content")
	}
	if f.rq.last == nil || f.rq.last.Title != "Desk Setups" {
		t.Error("content request row was not persisted")
	}
	if resp.Scheduling == nil || resp.Scheduling.Status != models.ScheduleStatusDraft {
		t.Errorf("Scheduling = %+v, want draft outcome", resp.Scheduling)
	}
	if f.sched.draftCalls != 1 {
		t.Errorf("SaveDraft called %d times, want 1", f.sched.draftCalls)
	}
}

func TestGenerateScheduledIntentRequiresCivilTime(t *testing.T) {
	f := newContentFixture(t)

	_, err := f.svc.Generate(context.Background(), 10, &transfer.GenerateRequest{
		StoreID: 1,
		Title:   "Desk Setups",
		Intent:  models.IntentScheduled,
	})
	if err == nil {
		t.Fatal("Generate() accepted scheduled intent without date and time")
	}
	if f.sched.schedCalls != 0 {
		t.Error("scheduler invoked despite validation failure")
	}
}

func TestGenerateScheduledIntentReturnsPublishInstant(t *testing.T) {
	f := newContentFixture(t)

	resp, err := f.svc.Generate(context.Background(), 10, &transfer.GenerateRequest{
		StoreID:      1,
		Title:        "Desk Setups",
		Intent:       models.IntentScheduled,
		ScheduleDate: "2025-09-01",
		ScheduleTime: "14:00",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if resp.Scheduling.Status != models.ScheduleStatusScheduled {
		t.Errorf("Status = %q, want scheduled", resp.Scheduling.Status)
	}
	if resp.Scheduling.ScheduleID != 77 {
		t.Errorf("ScheduleID = %d, want 77", resp.Scheduling.ScheduleID)
	}
	if resp.Scheduling.PublishAt != "2025-09-01T14:00:00Z" {
		t.Errorf("PublishAt = %q, want RFC3339 UTC instant", resp.Scheduling.PublishAt)
	}
}

func TestGenerateImmediateFailureStillReturnsContent(t *testing.T) {
	f := newContentFixture(t)
	f.sched.publishErr = &models.PublishError{StatusCode: 502, Message: "bad gateway"}

	resp, err := f.svc.Generate(context.Background(), 10, &transfer.GenerateRequest{
		StoreID: 1,
		Title:   "Desk Setups",
		Intent:  models.IntentImmediate,
	})
	if err == nil {
		t.Fatal("Generate() swallowed the publish failure")
	}
	if resp == nil || resp.Content == nil {
		t.Fatal("response with saved content missing on publish failure")
	}
	if resp.Scheduling == nil || resp.Scheduling.Status != models.ScheduleStatusFailed {
		t.Errorf("Scheduling = %+v, want failed outcome", resp.Scheduling)
	}
}

func TestGenerateRejectsForeignStore(t *testing.T) {
	f := newContentFixture(t)

	_, err := f.svc.Generate(context.Background(), 99, &transfer.GenerateRequest{
		StoreID: 1,
		Title:   "Desk Setups",
	})
	if err == nil {
		t.Fatal("Generate() accepted a store the user does not own")
	}
}

func TestGenerateBulkIsolatesTopicFailures(t *testing.T) {
	f := newContentFixture(t)

	results := f.svc.GenerateBulk(context.Background(), 10, &transfer.BulkGenerateRequest{
		StoreID: 1,
		Topics: []transfer.GenerateRequest{
			{Title: "Good Topic One"},
			{Title: ""},
			{Title: "Good Topic Two"},
		},
	})

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if results[0].Error != "" || results[2].Error != "" {
		t.Errorf("healthy topics carry errors: %+v", results)
	}
	if results[1].Error == "" {
		t.Error("empty-title topic did not record its error")
	}
	if results[0].ContentID == 0 || results[2].ContentID == 0 {
		t.Error("successful topics missing content ids")
	}
	if f.sched.draftCalls != 2 {
		t.Errorf("bulk drafts = %d, want 2", f.sched.draftCalls)
	}
}
