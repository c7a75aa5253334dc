package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/blogpilot/blogpilot/internal/models"
	"github.com/blogpilot/blogpilot/internal/transfer"
)

type stubProvider struct {
	name   string
	result *transfer.ProviderResult
	err    error
	calls  int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Generate(ctx context.Context, req *models.ContentRequest, prompt transfer.Prompt) (*transfer.ProviderResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func TestGenerateUsesFirstHealthyProvider(t *testing.T) {
	primary := &stubProvider{
		name: "primary",
		result: &transfer.ProviderResult{
			Title: "Choosing a Standing Desk",
			HTML:  "<h2>Why Stand</h2><p>Because sitting all day is rough.</p>",
			Tags:  []string{"desks"},
		},
	}
	backup := &stubProvider{name: "backup"}

	s := NewGenerationService([]TextProvider{primary, backup})

	content := s.Generate(context.Background(), &models.ContentRequest{ID: 1, Title: "Choosing a Standing Desk"}, "demo.myshopify.com")

	if content.UsedFallback {
		t.Error("UsedFallback = true, want false for the primary provider")
	}
	if content.Provider != "primary" {
		t.Errorf("Provider = %q, want primary", content.Provider)
	}
	if backup.calls != 0 {
		t.Errorf("backup provider called %d times, want 0", backup.calls)
	}
}

func TestGenerateFallsOverOnProviderError(t *testing.T) {
	quotaErr := &models.ProviderError{Provider: "primary", Kind: models.ProviderErrQuota, Err: errors.New("rate limited")}
	primary := &stubProvider{name: "primary", err: quotaErr}
	backup := &stubProvider{
		name: "backup",
		result: &transfer.ProviderResult{
			Title: "Backup Title",
			HTML:  "<h2>Section</h2><p>Backup body.</p>",
		},
	}

	s := NewGenerationService([]TextProvider{primary, backup})

	content := s.Generate(context.Background(), &models.ContentRequest{ID: 2, Title: "Anything"}, "demo.myshopify.com")

	if !content.UsedFallback {
		t.Error("UsedFallback = false, want true after failover")
	}
	if content.Provider != "backup" {
		t.Errorf("Provider = %q, want backup", content.Provider)
	}
}

func TestGenerateNeverFailsWithExhaustedChain(t *testing.T) {
	failing := &stubProvider{name: "primary", err: &models.ProviderError{Provider: "primary", Kind: models.ProviderErrNetwork, Err: errors.New("timeout")}}

	s := NewGenerationService([]TextProvider{failing, NewTemplateProvider()})

	req := &models.ContentRequest{
		ID:    3,
		Title: "Caring for Leather Boots",
		Keywords: []models.RankedKeyword{
			{Keyword: "leather conditioner", Volume: 900},
			{Keyword: "boot care", Volume: 400},
		},
		UseFAQ: true,
	}

	content := s.Generate(context.Background(), req, "demo.myshopify.com")

	if content == nil {
		t.Fatal("Generate() returned nil content")
	}
	if !content.UsedFallback {
		t.Error("UsedFallback = false, want true when the template provider answers")
	}
	if content.HTMLBody == "" {
		t.Error("template provider produced an empty body")
	}
	if content.Title == "" {
		t.Error("template provider produced an empty title")
	}
}

func TestBuildPromptCarriesRankedKeywords(t *testing.T) {
	req := &models.ContentRequest{
		Title: "Best Office Chairs",
		Keywords: []models.RankedKeyword{
			{Keyword: "ergonomic chair", Volume: 5400},
			{Keyword: "lumbar support", Volume: 1300},
		},
		Products: []models.ProductRef{{ID: "1", Title: "Aero Chair", Handle: "aero-chair"}},
	}

	prompt := BuildPrompt(req, "demo.myshopify.com")

	if !strings.Contains(prompt.User, "ergonomic chair") {
		t.Error("prompt is missing the top ranked keyword")
	}
	if !strings.Contains(prompt.System, "{\"title\", \"html\", \"tags\", \"meta_description\"}") {
		t.Error("prompt is missing the JSON output contract")
	}
	if !strings.Contains(prompt.System, "https://demo.myshopify.com/products/{handle}") {
		t.Error("prompt is missing the product link template")
	}
}
