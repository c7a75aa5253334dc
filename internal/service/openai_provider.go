package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/blogpilot/blogpilot/internal/models"
	"github.com/blogpilot/blogpilot/internal/transfer"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/yuin/goldmark"
)

// TextProvider is one strategy in the generation chain. Providers receive
// both the structured request and the rendered prompt; network providers use
// the prompt, the template fallback uses the request fields directly.
type TextProvider interface {
	Name() string
	Generate(ctx context.Context, req *models.ContentRequest, prompt transfer.Prompt) (*transfer.ProviderResult, error)
}

type openAIProvider struct {
	model string
	opts  []option.RequestOption
}

func NewOpenAIProvider(apiKey, baseURL, model string) TextProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &openAIProvider{model: model, opts: opts}
}

func (p *openAIProvider) Name() string {
	return "openai/" + p.model
}

func (p *openAIProvider) Generate(ctx context.Context, _ *models.ContentRequest, prompt transfer.Prompt) (*transfer.ProviderResult, error) {
	client := openai.NewClient(p.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
	})
	if err != nil {
		return nil, classifyOpenAIError(p.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return nil, &models.ProviderError{Provider: p.Name(), Kind: models.ProviderErrInvalid, Err: errors.New("empty choices")}
	}

	result, err := parseProviderResult(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, &models.ProviderError{Provider: p.Name(), Kind: models.ProviderErrInvalid, Err: err}
	}
	return result, nil
}

func classifyOpenAIError(provider string, err error) error {
	kind := models.ProviderErrNetwork

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			kind = models.ProviderErrAuth
		case 429:
			kind = models.ProviderErrQuota
		default:
			if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
				kind = models.ProviderErrInvalid
			}
		}
	}

	return &models.ProviderError{Provider: provider, Kind: kind, Err: err}
}

// parseProviderResult decodes the JSON contract the prompt asks for,
// tolerating the markdown fences models habitually wrap answers in.
func parseProviderResult(raw string) (*transfer.ProviderResult, error) {
	cleaned := stripCodeFences(raw)

	var result transfer.ProviderResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, err
	}
	if result.Title == "" || strings.TrimSpace(result.HTML) == "" {
		return nil, errors.New("provider result missing title or html")
	}

	result.HTML = normalizeBody(result.HTML)
	return &result, nil
}

func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}

// normalizeBody converts a markdown answer to HTML when the model ignored
// the HTML-only instruction, and removes any top-level heading.
func normalizeBody(body string) string {
	trimmed := strings.TrimSpace(body)

	if !strings.Contains(trimmed, "<") || strings.HasPrefix(trimmed, "# ") {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(trimmed), &buf); err == nil {
			trimmed = buf.String()
		}
	}

	return stripTopHeading(trimmed)
}

func stripTopHeading(body string) string {
	lower := strings.ToLower(body)
	start := strings.Index(lower, "<h1")
	if start == -1 {
		return body
	}
	end := strings.Index(lower[start:], "</h1>")
	if end == -1 {
		return body
	}
	return strings.TrimLeft(body[:start]+body[start+end+len("</h1>"):], "\n")
}
