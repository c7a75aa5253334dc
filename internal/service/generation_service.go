package service

import (
	"context"
	"log/slog"

	"github.com/blogpilot/blogpilot/internal/models"
)

// GenerationService runs the provider chain. Generate never returns an
// error: the chain ends with the template provider, which cannot fail, so
// callers always receive usable content, degraded at worst.
type GenerationService interface {
	Generate(ctx context.Context, req *models.ContentRequest, shopDomain string) *models.GeneratedContent
}

type generationService struct {
	providers []TextProvider
}

// NewGenerationService builds the orchestrator over an ordered provider
// chain. The last provider must be the network-free template generator.
func NewGenerationService(providers []TextProvider) GenerationService {
	return &generationService{providers: providers}
}

func (s *generationService) Generate(ctx context.Context, req *models.ContentRequest, shopDomain string) *models.GeneratedContent {
	prompt := BuildPrompt(req, shopDomain)

	var lastErr error
	for i, provider := range s.providers {
		result, err := provider.Generate(ctx, req, prompt)
		if err != nil {
			lastErr = err
			slog.Warn("provider failed, falling over",
				"provider", provider.Name(),
				"request_id", req.ID,
				"error", err.Error())
			continue
		}

		if i > 0 {
			slog.Info("generation recovered on fallback",
				"provider", provider.Name(),
				"request_id", req.ID,
				"last_error", errString(lastErr))
		}

		return &models.GeneratedContent{
			RequestID:       req.ID,
			UserID:          req.UserID,
			Title:           result.Title,
			HTMLBody:        result.HTML,
			Tags:            result.Tags,
			MetaDescription: result.MetaDescription,
			Provider:        provider.Name(),
			UsedFallback:    i > 0,
		}
	}

	// Unreachable when the chain is configured with the template provider
	// last, kept as a hard floor.
	slog.Error("every provider failed", "request_id", req.ID, "last_error", errString(lastErr))
	fallback, _ := templateProvider{}.Generate(ctx, req, prompt)
	return &models.GeneratedContent{
		RequestID:       req.ID,
		UserID:          req.UserID,
		Title:           fallback.Title,
		HTMLBody:        fallback.HTML,
		Tags:            fallback.Tags,
		MetaDescription: fallback.MetaDescription,
		Provider:        "template",
		UsedFallback:    true,
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
