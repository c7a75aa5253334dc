package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/blogpilot/blogpilot/internal/assembler"
	"github.com/blogpilot/blogpilot/internal/models"
	"github.com/blogpilot/blogpilot/internal/transfer"
	"github.com/yuin/goldmark"
)

// templateProvider is the terminal strategy of the generation chain. It
// composes the article from the request fields alone, with no network call,
// so the chain always terminates with usable output.
type templateProvider struct{}

func NewTemplateProvider() TextProvider {
	return templateProvider{}
}

func (templateProvider) Name() string {
	return "template"
}

func (templateProvider) Generate(_ context.Context, req *models.ContentRequest, _ transfer.Prompt) (*transfer.ProviderResult, error) {
	headings := req.HeadingCount
	if headings < 2 {
		headings = 3
	}

	var md strings.Builder

	lead := req.Title
	if len(req.Keywords) > 0 {
		lead = fmt.Sprintf("%s — a practical guide to %s", req.Title, req.Keywords[0].Keyword)
	}
	md.WriteString(fmt.Sprintf("Looking into %s? This guide covers what matters before you decide.\n\n", strings.ToLower(firstNonEmpty(keywordList(req), req.Title))))

	for i := 0; i < headings; i++ {
		md.WriteString(fmt.Sprintf("## %s\n\n", sectionTitle(req, i)))
		md.WriteString(sectionBody(req, i))
		md.WriteString("\n\n")
		if i == 0 || i == headings/2 {
			md.WriteString(assembler.MarkerImage + "\n\n")
		}
	}

	if req.VideoID != "" {
		md.WriteString(assembler.MarkerVideo + "\n\n")
	}

	if req.UseFAQ {
		md.WriteString("## Frequently asked questions\n\n")
		for _, kw := range topN(req.Keywords, 3) {
			md.WriteString(fmt.Sprintf("**What should I know about %s?** Start with your own use case; the sections above outline the main trade-offs.\n\n", kw.Keyword))
		}
	}

	var buf bytes.Buffer
	html := md.String()
	if err := goldmark.Convert([]byte(md.String()), &buf); err == nil {
		html = buf.String()
	} else {
		// Markdown conversion is best effort; plain paragraphs still satisfy
		// the output contract.
		html = "<p>" + strings.ReplaceAll(html, "\n\n", "</p><p>") + "</p>"
	}

	var tags []string
	for _, kw := range topN(req.Keywords, 5) {
		tags = append(tags, kw.Keyword)
	}

	return &transfer.ProviderResult{
		Title:           req.Title,
		HTML:            html,
		Tags:            tags,
		MetaDescription: truncate(lead, 155),
	}, nil
}

func sectionTitle(req *models.ContentRequest, i int) string {
	if i < len(req.Keywords) {
		return fmt.Sprintf("Choosing the right %s", req.Keywords[i].Keyword)
	}
	return fmt.Sprintf("%s: what to look for", req.Title)
}

func sectionBody(req *models.ContentRequest, i int) string {
	var sb strings.Builder
	sb.WriteString("Compare options against your budget, available space and expected lifetime. ")
	if i < len(req.Keywords) {
		sb.WriteString(fmt.Sprintf("Shoppers searching for %s usually weigh price against durability first. ", req.Keywords[i].Keyword))
	}
	for _, p := range req.Products {
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%s is a solid place to start. ", p.Title))
		}
	}
	return sb.String()
}

func keywordList(req *models.ContentRequest) string {
	if len(req.Keywords) == 0 {
		return ""
	}
	return req.Keywords[0].Keyword
}

func topN(kws []models.RankedKeyword, n int) []models.RankedKeyword {
	if len(kws) <= n {
		return kws
	}
	return kws[:n]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
