package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blogpilot/blogpilot/internal/models"
)

type fakeScheduleRepo struct {
	mu    sync.Mutex
	seq   int64
	items map[int64]*models.ScheduledPublication
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{items: make(map[int64]*models.ScheduledPublication)}
}

func (r *fakeScheduleRepo) Create(ctx context.Context, tx *sql.Tx, sp *models.ScheduledPublication) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	cp := *sp
	cp.ID = r.seq
	r.items[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, id int64) (*models.ScheduledPublication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sp, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *sp
	return &cp, nil
}

func (r *fakeScheduleRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPublication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ScheduledPublication
	for _, sp := range r.items {
		if sp.UserID == userID {
			cp := *sp
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledPublication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ScheduledPublication
	for _, sp := range r.items {
		if sp.Status == models.ScheduleStatusScheduled && !sp.PublishAt.After(now) {
			cp := *sp
			out = append(out, &cp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Claim mirrors the conditional UPDATE: it flips scheduled to publishing
// atomically and reports whether this caller won.
func (r *fakeScheduleRepo) Claim(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sp, ok := r.items[id]
	if !ok || sp.Status != models.ScheduleStatusScheduled {
		return false, nil
	}
	sp.Status = models.ScheduleStatusPublishing
	return true, nil
}

func (r *fakeScheduleRepo) MarkPublished(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[id].Status = models.ScheduleStatusPublished
	return nil
}

func (r *fakeScheduleRepo) Retarget(ctx context.Context, id int64, nextAt time.Time, attemptCount int, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sp := r.items[id]
	sp.Status = models.ScheduleStatusScheduled
	sp.PublishAt = nextAt
	sp.AttemptCount = attemptCount
	sp.LastError = lastError
	return nil
}

func (r *fakeScheduleRepo) MarkFailed(ctx context.Context, id int64, attemptCount int, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sp := r.items[id]
	sp.Status = models.ScheduleStatusFailed
	sp.AttemptCount = attemptCount
	sp.LastError = lastError
	return nil
}

func (r *fakeScheduleRepo) ScheduleDraft(ctx context.Context, id, userID int64, scheduleDate, scheduleTime, timezone string, publishAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sp, ok := r.items[id]
	if !ok || sp.UserID != userID || sp.Status != models.ScheduleStatusDraft {
		return false, nil
	}
	sp.Status = models.ScheduleStatusScheduled
	sp.ScheduleDate = scheduleDate
	sp.ScheduleTime = scheduleTime
	sp.Timezone = timezone
	sp.PublishAt = publishAt
	return true, nil
}

func (r *fakeScheduleRepo) Cancel(ctx context.Context, id, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sp, ok := r.items[id]
	if !ok || sp.UserID != userID {
		return false, nil
	}
	if sp.Status != models.ScheduleStatusScheduled && sp.Status != models.ScheduleStatusDraft {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	records []*models.PublicationRecord
}

func (r *fakeRecordRepo) Create(ctx context.Context, record *models.PublicationRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return int64(len(r.records)), nil
}

func (r *fakeRecordRepo) GetByScheduleID(ctx context.Context, scheduleID int64) (*models.PublicationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ScheduleID == scheduleID {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *fakeRecordRepo) ListByUserContent(ctx context.Context, contentID int64) ([]*models.PublicationRecord, error) {
	return nil, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []*models.PublicationHistory
}

func (r *fakeHistoryRepo) Create(ctx context.Context, history *models.PublicationHistory) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, history)
	return int64(len(r.entries)), nil
}

func (r *fakeHistoryRepo) ListByScheduleID(ctx context.Context, scheduleID int64) ([]*models.PublicationHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PublicationHistory
	for _, e := range r.entries {
		if e.ScheduleID == scheduleID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeContentRepo struct {
	contents map[int64]*models.GeneratedContent
}

func (r *fakeContentRepo) Create(ctx context.Context, tx *sql.Tx, content *models.GeneratedContent) (int64, error) {
	return 0, errors.New("not implemented")
}

func (r *fakeContentRepo) GetByID(ctx context.Context, id int64) (*models.GeneratedContent, error) {
	return r.contents[id], nil
}

func (r *fakeContentRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.GeneratedContent, error) {
	return nil, nil
}

func (r *fakeContentRepo) CheckByUserID(ctx context.Context, contentID, userID int64) (bool, error) {
	return r.contents[contentID] != nil, nil
}

type fakeStoreRepo struct {
	mu        sync.Mutex
	stores    map[int64]*models.Store
	tzUpdates int
}

func (r *fakeStoreRepo) Create(ctx context.Context, store *models.Store) (int64, error) {
	return 0, errors.New("not implemented")
}

func (r *fakeStoreRepo) GetByID(ctx context.Context, id int64) (*models.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stores[id], nil
}

func (r *fakeStoreRepo) GetByDomain(ctx context.Context, shopDomain string) (*models.Store, error) {
	return nil, nil
}

func (r *fakeStoreRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.Store, error) {
	return nil, nil
}

func (r *fakeStoreRepo) CheckByUserID(ctx context.Context, storeID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[storeID]
	return ok && s.UserID == userID, nil
}

func (r *fakeStoreRepo) UpdateTimezone(ctx context.Context, storeID int64, timezone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tzUpdates++
	if s, ok := r.stores[storeID]; ok {
		s.Timezone = timezone
	}
	return nil
}

func (r *fakeStoreRepo) Remove(ctx context.Context, id int64) error { return nil }

type fakeGateway struct {
	mu       sync.Mutex
	articles int
	pages    int
	err      error
	timezone string
}

func (g *fakeGateway) CreateArticle(ctx context.Context, store *models.Store, content *models.GeneratedContent, finalHTML string, publish bool) (*models.PublicationRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.articles++
	return &models.PublicationRecord{
		ContentID:  content.ID,
		ExternalID: "123456",
		Handle:     "test-article",
		URL:        "https://" + store.ShopDomain + "/blogs/news/test-article",
	}, nil
}

func (g *fakeGateway) CreatePage(ctx context.Context, store *models.Store, content *models.GeneratedContent, finalHTML string, publish bool) (*models.PublicationRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.pages++
	return &models.PublicationRecord{
		ContentID:  content.ID,
		ExternalID: "654321",
		Handle:     "test-page",
		URL:        "https://" + store.ShopDomain + "/pages/test-page",
	}, nil
}

func (g *fakeGateway) GetShopTimezone(ctx context.Context, store *models.Store) (string, error) {
	if g.timezone == "" {
		return "", errors.New("no timezone configured")
	}
	return g.timezone, nil
}

func (g *fakeGateway) publishCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.articles + g.pages
}

type schedulerFixture struct {
	svc    *schedulerService
	sp     *fakeScheduleRepo
	rr     *fakeRecordRepo
	hr     *fakeHistoryRepo
	cr     *fakeContentRepo
	st     *fakeStoreRepo
	gw     *fakeGateway
	nowUTC time.Time
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()

	f := &schedulerFixture{
		sp:     newFakeScheduleRepo(),
		rr:     &fakeRecordRepo{},
		hr:     &fakeHistoryRepo{},
		cr:     &fakeContentRepo{contents: map[int64]*models.GeneratedContent{}},
		st:     &fakeStoreRepo{stores: map[int64]*models.Store{}},
		gw:     &fakeGateway{},
		nowUTC: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}

	f.st.stores[1] = &models.Store{
		ID:         1,
		UserID:     10,
		ShopDomain: "demo.myshopify.com",
		Timezone:   "America/New_York",
	}
	f.cr.contents[100] = &models.GeneratedContent{
		ID:        100,
		UserID:    10,
		Title:     "Test",
		FinalHTML: "<p>Assembled.</p>",
	}

	f.svc = NewSchedulerService(f.sp, f.rr, f.hr, f.cr, f.st, f.gw).(*schedulerService)
	f.svc.now = func() time.Time { return f.nowUTC }
	return f
}

func (f *schedulerFixture) addSchedule(status string, publishAt time.Time, attempts int) *models.ScheduledPublication {
	sp := &models.ScheduledPublication{
		UserID:       10,
		StoreID:      1,
		ContentID:    100,
		TargetType:   models.TargetTypePost,
		Status:       status,
		PublishAt:    publishAt,
		AttemptCount: attempts,
	}
	id, _ := f.sp.Create(context.Background(), nil, sp)
	sp.ID = id
	return sp
}

func TestScheduleResolvesCivilTimeInStoreZone(t *testing.T) {
	f := newSchedulerFixture(t)

	sp, err := f.svc.Schedule(context.Background(), f.st.stores[1], f.cr.contents[100], models.TargetTypePost, "2025-03-01", "09:30")
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	// 09:30 Eastern on 2025-03-01 is still EST, five hours behind UTC.
	want := time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)
	if !sp.PublishAt.Equal(want) {
		t.Errorf("PublishAt = %v, want %v", sp.PublishAt, want)
	}
	if sp.Timezone != "America/New_York" {
		t.Errorf("Timezone = %q, want America/New_York", sp.Timezone)
	}
	if sp.Status != models.ScheduleStatusScheduled {
		t.Errorf("Status = %q, want scheduled", sp.Status)
	}
}

func TestScheduleFetchesAndCachesMissingTimezone(t *testing.T) {
	f := newSchedulerFixture(t)
	f.st.stores[1].Timezone = ""
	f.gw.timezone = "Europe/Berlin"

	sp, err := f.svc.Schedule(context.Background(), f.st.stores[1], f.cr.contents[100], models.TargetTypePost, "2025-07-01", "08:00")
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	// 08:00 CEST is 06:00 UTC.
	want := time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC)
	if !sp.PublishAt.Equal(want) {
		t.Errorf("PublishAt = %v, want %v", sp.PublishAt, want)
	}
	if f.st.tzUpdates != 1 {
		t.Errorf("timezone cached %d times, want 1", f.st.tzUpdates)
	}
}

func TestScheduleRejectsInvalidCivilInput(t *testing.T) {
	f := newSchedulerFixture(t)

	if _, err := f.svc.Schedule(context.Background(), f.st.stores[1], f.cr.contents[100], models.TargetTypePost, "2025-13-40", "09:30"); err == nil {
		t.Error("Schedule() accepted an impossible date")
	}

	f.st.stores[1].Timezone = "Mars/Olympus"
	if _, err := f.svc.Schedule(context.Background(), f.st.stores[1], f.cr.contents[100], models.TargetTypePost, "2025-03-01", "09:30"); err == nil {
		t.Error("Schedule() accepted a bogus timezone")
	}
}

func TestConcurrentPromotionPublishesExactlyOnce(t *testing.T) {
	f := newSchedulerFixture(t)
	sched := f.addSchedule(models.ScheduleStatusScheduled, f.nowUTC.Add(-time.Minute), 0)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.svc.PromoteDueSchedules(context.Background()); err != nil {
				t.Errorf("PromoteDueSchedules() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := f.gw.publishCount(); got != 1 {
		t.Fatalf("gateway called %d times, want exactly 1", got)
	}

	final, _ := f.sp.GetByID(context.Background(), sched.ID)
	if final.Status != models.ScheduleStatusPublished {
		t.Errorf("Status = %q, want published", final.Status)
	}
	if len(f.rr.records) != 1 || f.rr.records[0].ScheduleID != sched.ID {
		t.Errorf("records = %+v, want one tied to schedule %d", f.rr.records, sched.ID)
	}
}

func TestPromotionFailureRetargetsWithBackoff(t *testing.T) {
	f := newSchedulerFixture(t)
	f.gw.err = &models.PublishError{StatusCode: 502, Message: "upstream unavailable"}
	sched := f.addSchedule(models.ScheduleStatusScheduled, f.nowUTC.Add(-time.Minute), 0)

	if err := f.svc.PromoteDueSchedules(context.Background()); err != nil {
		t.Fatalf("PromoteDueSchedules() error = %v", err)
	}

	final, _ := f.sp.GetByID(context.Background(), sched.ID)
	if final.Status != models.ScheduleStatusScheduled {
		t.Fatalf("Status = %q, want scheduled after retarget", final.Status)
	}
	if final.AttemptCount != 1 {
		t.Errorf("AttemptCount = %d, want 1", final.AttemptCount)
	}

	want := f.nowUTC.Add(2 * time.Minute)
	if !final.PublishAt.Equal(want) {
		t.Errorf("PublishAt = %v, want %v", final.PublishAt, want)
	}
	if final.LastError == "" {
		t.Error("LastError is empty after a failed attempt")
	}

	if len(f.hr.entries) != 1 || f.hr.entries[0].ErrorMessage == "" {
		t.Errorf("history = %+v, want one entry carrying the error", f.hr.entries)
	}
}

func TestPromotionFailureAtCeilingGoesTerminal(t *testing.T) {
	f := newSchedulerFixture(t)
	f.gw.err = &models.PublishError{StatusCode: 500, Message: "still broken"}
	sched := f.addSchedule(models.ScheduleStatusScheduled, f.nowUTC.Add(-time.Minute), maxPublishAttempts-1)

	if err := f.svc.PromoteDueSchedules(context.Background()); err != nil {
		t.Fatalf("PromoteDueSchedules() error = %v", err)
	}

	final, _ := f.sp.GetByID(context.Background(), sched.ID)
	if final.Status != models.ScheduleStatusFailed {
		t.Errorf("Status = %q, want failed at the attempt ceiling", final.Status)
	}
	if final.AttemptCount != maxPublishAttempts {
		t.Errorf("AttemptCount = %d, want %d", final.AttemptCount, maxPublishAttempts)
	}
}

func TestPromoteOneIgnoresFutureAndForeignStates(t *testing.T) {
	f := newSchedulerFixture(t)
	future := f.addSchedule(models.ScheduleStatusScheduled, f.nowUTC.Add(time.Hour), 0)
	draft := f.addSchedule(models.ScheduleStatusDraft, time.Time{}, 0)

	if err := f.svc.PromoteOne(context.Background(), future.ID); err != nil {
		t.Errorf("PromoteOne(future) error = %v", err)
	}
	if err := f.svc.PromoteOne(context.Background(), draft.ID); err != nil {
		t.Errorf("PromoteOne(draft) error = %v", err)
	}
	if err := f.svc.PromoteOne(context.Background(), 9999); err != nil {
		t.Errorf("PromoteOne(missing) error = %v", err)
	}

	if got := f.gw.publishCount(); got != 0 {
		t.Errorf("gateway called %d times, want 0", got)
	}
}

func TestCancelStatesAndConflicts(t *testing.T) {
	f := newSchedulerFixture(t)

	scheduled := f.addSchedule(models.ScheduleStatusScheduled, f.nowUTC.Add(time.Hour), 0)
	publishing := f.addSchedule(models.ScheduleStatusPublishing, f.nowUTC.Add(-time.Minute), 0)
	published := f.addSchedule(models.ScheduleStatusPublished, f.nowUTC.Add(-time.Hour), 0)

	if err := f.svc.Cancel(context.Background(), 10, scheduled.ID); err != nil {
		t.Errorf("Cancel(scheduled) error = %v, want nil", err)
	}

	if err := f.svc.Cancel(context.Background(), 10, publishing.ID); !errors.Is(err, models.ErrSchedulingConflict) {
		t.Errorf("Cancel(publishing) error = %v, want ErrSchedulingConflict", err)
	}

	if err := f.svc.Cancel(context.Background(), 10, published.ID); err == nil || errors.Is(err, models.ErrSchedulingConflict) {
		t.Errorf("Cancel(published) error = %v, want a terminal-state error", err)
	}

	if err := f.svc.Cancel(context.Background(), 99, publishing.ID); err == nil {
		t.Error("Cancel() by a different user succeeded")
	}
}

func TestScheduleDraftActivation(t *testing.T) {
	f := newSchedulerFixture(t)
	draft := f.addSchedule(models.ScheduleStatusDraft, time.Time{}, 0)

	sp, err := f.svc.ScheduleDraft(context.Background(), 10, draft.ID, "2025-08-01", "10:00")
	if err != nil {
		t.Fatalf("ScheduleDraft() error = %v", err)
	}
	if sp.Status != models.ScheduleStatusScheduled {
		t.Errorf("Status = %q, want scheduled", sp.Status)
	}

	// EDT in August, four hours behind UTC.
	want := time.Date(2025, 8, 1, 14, 0, 0, 0, time.UTC)
	if !sp.PublishAt.Equal(want) {
		t.Errorf("PublishAt = %v, want %v", sp.PublishAt, want)
	}

	if _, err := f.svc.ScheduleDraft(context.Background(), 10, draft.ID, "2025-08-02", "10:00"); err == nil {
		t.Error("ScheduleDraft() re-activated an already scheduled record")
	}
}

func TestPublishNowRoutesPagesAndPosts(t *testing.T) {
	f := newSchedulerFixture(t)

	if _, err := f.svc.PublishNow(context.Background(), f.st.stores[1], f.cr.contents[100], models.TargetTypePage); err != nil {
		t.Fatalf("PublishNow(page) error = %v", err)
	}
	if _, err := f.svc.PublishNow(context.Background(), f.st.stores[1], f.cr.contents[100], models.TargetTypePost); err != nil {
		t.Fatalf("PublishNow(post) error = %v", err)
	}

	if f.gw.pages != 1 || f.gw.articles != 1 {
		t.Errorf("gateway calls = %d pages / %d articles, want 1 / 1", f.gw.pages, f.gw.articles)
	}
	if len(f.hr.entries) != 2 {
		t.Errorf("history entries = %d, want 2", len(f.hr.entries))
	}
}

func TestBackoffDelayDoublesToCap(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Minute},
		{2, 4 * time.Minute},
		{3, 8 * time.Minute},
		{4, 16 * time.Minute},
		{7, time.Hour},
	}

	for _, tt := range tests {
		if got := backoffDelay(tt.attempt); got != tt.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
