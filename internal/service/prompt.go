package service

import (
	"fmt"
	"strings"

	"github.com/blogpilot/blogpilot/internal/assembler"
	"github.com/blogpilot/blogpilot/internal/models"
	"github.com/blogpilot/blogpilot/internal/transfer"
)

const topKeywords = 10

// BuildPrompt turns a content request into the provider prompt. The contract
// embedded here is what the assembler later relies on: HTML only, no
// top-level heading, neutral placement markers instead of literal media
// markup, and the canonical link templates for store entities.
func BuildPrompt(req *models.ContentRequest, shopDomain string) transfer.Prompt {
	var sb strings.Builder

	sb.WriteString("Write an SEO blog article in HTML.\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Output a single JSON object: {\"title\", \"html\", \"tags\", \"meta_description\"}.\n")
	sb.WriteString("- The html field contains only body markup. No <html>, <head> or <body> tags.\n")
	sb.WriteString("- Never emit an <h1>; the title is rendered separately. Start sections at <h2>.\n")
	sb.WriteString(fmt.Sprintf("- Where a supporting image fits, emit the token %s on its own line instead of an <img> tag.\n", assembler.MarkerImage))
	if req.VideoID != "" {
		sb.WriteString(fmt.Sprintf("- Where a video fits, emit the token %s instead of an <iframe>.\n", assembler.MarkerVideo))
	}
	if req.HeadingCount > 0 {
		sb.WriteString(fmt.Sprintf("- Use about %d <h2> sections.\n", req.HeadingCount))
	}
	if req.Tone != "" {
		sb.WriteString(fmt.Sprintf("- Tone: %s.\n", req.Tone))
	}
	if req.Perspective != "" {
		sb.WriteString(fmt.Sprintf("- Writing perspective: %s.\n", req.Perspective))
	}
	if req.BuyerProfile != "" {
		sb.WriteString(fmt.Sprintf("- Target reader: %s.\n", req.BuyerProfile))
	}
	if req.UseTables {
		sb.WriteString("- Include at least one comparison <table>.\n")
	}
	if req.UseLists {
		sb.WriteString("- Use <ul>/<ol> lists where they aid scanning.\n")
	}
	if req.UseSubheadings {
		sb.WriteString("- Break long sections up with <h3> subheadings.\n")
	}
	if req.UseCitations {
		sb.WriteString("- Cite sources inline as numbered references.\n")
	}
	if req.UseFAQ {
		sb.WriteString("- End with an FAQ section of 3-5 questions.\n")
	}

	if len(req.Products) > 0 {
		sb.WriteString("- Mention these products naturally, each linked exactly once using the template https://" + shopDomain + "/products/{handle}:\n")
		for _, p := range req.Products {
			sb.WriteString(fmt.Sprintf("  - %s (handle: %s)\n", p.Title, p.Handle))
		}
	}
	if len(req.Collections) > 0 {
		sb.WriteString("- Mention these collections, linked via https://" + shopDomain + "/collections/{handle}:\n")
		for _, c := range req.Collections {
			sb.WriteString(fmt.Sprintf("  - %s (handle: %s)\n", c.Title, c.Handle))
		}
	}

	var user strings.Builder
	user.WriteString(fmt.Sprintf("Topic: %s\n", req.Title))
	if len(req.Keywords) > 0 {
		user.WriteString("Target keywords, ranked by monthly search volume (work each into the copy):\n")
		for i, kw := range req.Keywords {
			if i == topKeywords {
				break
			}
			user.WriteString(fmt.Sprintf("- %s (%d)\n", kw.Keyword, kw.Volume))
		}
	}
	user.WriteString("Return only the JSON object.")

	return transfer.Prompt{
		System: sb.String(),
		User:   user.String(),
	}
}
