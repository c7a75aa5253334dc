package assembler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blogpilot/blogpilot/internal/models"
)

// Marker tokens the generation prompt asks providers to emit. They are
// placement hints only: assembly strips every one of them and computes
// insertion points from block indices instead.
const (
	MarkerImage = "[[IMAGE]]"
	MarkerVideo = "[[VIDEO]]"
)

var markerRE = regexp.MustCompile(`\[\[(?:IMAGE|VIDEO)(?::[^\]\n]*)?\]\]`)

// skipFraction of the body length at the start receives no secondary images.
const skipFraction = 0.15

type Input struct {
	HTMLBody    string
	TargetType  string
	Media       models.MediaSelection
	ShopDomain  string
	Products    []models.ProductRef
	Collections []models.CollectionRef
}

// Manifest reports which insertion points were actually used.
type Manifest struct {
	FeaturedInserted bool     `json:"featured_inserted"`
	FeaturedLinkURL  string   `json:"featured_link_url,omitempty"`
	SecondaryBlocks  []int    `json:"secondary_blocks,omitempty"`
	VideoBlock       int      `json:"video_block"`
	VideoOmitted     bool     `json:"video_omitted"`
	MarkersStripped  int      `json:"markers_stripped"`
	LinkedMentions   []string `json:"linked_mentions,omitempty"`
}

// Assemble merges generated HTML with the media selection and interlink
// targets. It is a pure function: identical input always yields byte
// identical output, so a retried request can re-run it without doubling
// any insertion.
func Assemble(in Input) (string, Manifest, error) {
	manifest := Manifest{VideoBlock: -1}

	body := markerRE.ReplaceAllStringFunc(in.HTMLBody, func(string) string {
		manifest.MarkersStripped++
		return ""
	})

	blocks := parseBlocks(body)

	linkInterlinks(blocks, in, &manifest)

	after := make(map[int][]string)

	insertSecondaries(blocks, in.Media.Secondary, after, &manifest)
	insertVideo(blocks, in.Media.VideoID, after, &manifest)

	var out strings.Builder

	featured := featuredBlock(in, &manifest)
	if featured != "" && (in.TargetType != models.TargetTypePage || len(blocks) == 0) {
		out.WriteString(featured)
	}

	for i, b := range blocks {
		out.WriteString(b.HTML)
		if featured != "" && in.TargetType == models.TargetTypePage && i == 0 {
			out.WriteString(featured)
		}
		for _, ins := range after[i] {
			out.WriteString(ins)
		}
	}

	final := out.String()
	if markerRE.MatchString(final) {
		return final, manifest, &models.AssemblyError{Reason: "unresolved markers survived assembly"}
	}

	return final, manifest, nil
}

func linkInterlinks(blocks []Block, in Input, manifest *Manifest) {
	type target struct {
		title string
		href  string
	}

	var targets []target
	for _, p := range in.Products {
		targets = append(targets, target{p.Title, fmt.Sprintf("https://%s/products/%s", in.ShopDomain, p.Handle)})
	}
	for _, c := range in.Collections {
		targets = append(targets, target{c.Title, fmt.Sprintf("https://%s/collections/%s", in.ShopDomain, c.Handle)})
	}

	for _, t := range targets {
		for i := range blocks {
			linked, ok := linkFirstMention(blocks[i].HTML, t.title, t.href)
			if ok {
				blocks[i].HTML = linked
				manifest.LinkedMentions = append(manifest.LinkedMentions, t.title)
				break
			}
		}
	}
}

// insertSecondaries spreads the secondary images evenly over the structural
// break points past the first skipFraction of the body, at most one image
// per break.
func insertSecondaries(blocks []Block, images []models.ImageRef, after map[int][]string, manifest *Manifest) {
	if len(images) == 0 || len(blocks) == 0 {
		return
	}

	total := 0
	for _, b := range blocks {
		total += len(b.HTML)
	}

	var eligible []int
	cum := 0
	for i, b := range blocks {
		cum += len(b.HTML)
		if b.Tag == "" {
			continue
		}
		if float64(cum) >= skipFraction*float64(total) {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		// Very short body: fall back to the last structural break, if any.
		for i := len(blocks) - 1; i >= 0; i-- {
			if blocks[i].Tag != "" {
				eligible = []int{i}
				break
			}
		}
		if len(eligible) == 0 {
			return
		}
	}

	k := len(images)
	if k > len(eligible) {
		k = len(eligible)
	}

	for i := 0; i < k; i++ {
		idx := eligible[i*len(eligible)/k]
		after[idx] = append(after[idx], imageFigure(images[i], "article-image"))
		manifest.SecondaryBlocks = append(manifest.SecondaryBlocks, idx)
	}
}

// insertVideo places the embed after the second H2 when at least two exist,
// after the first when exactly one does, and flags the omission otherwise.
func insertVideo(blocks []Block, videoID string, after map[int][]string, manifest *Manifest) {
	if videoID == "" {
		return
	}

	var h2s []int
	for i, b := range blocks {
		if b.Tag == "h2" {
			h2s = append(h2s, i)
		}
	}

	var idx int
	switch {
	case len(h2s) >= 2:
		idx = h2s[1]
	case len(h2s) == 1:
		idx = h2s[0]
	default:
		manifest.VideoOmitted = true
		return
	}

	embed := fmt.Sprintf(`<div class="video-wrapper"><iframe src="https://www.youtube.com/embed/%s" title="Video" frameborder="0" allowfullscreen></iframe></div>`, videoID)
	after[idx] = append(after[idx], embed)
	manifest.VideoBlock = idx
}

func featuredBlock(in Input, manifest *Manifest) string {
	if in.Media.Primary == nil {
		return ""
	}

	figure := imageFigure(*in.Media.Primary, "featured-image")
	manifest.FeaturedInserted = true

	if len(in.Products) > 0 {
		href := fmt.Sprintf("https://%s/products/%s", in.ShopDomain, in.Products[0].Handle)
		manifest.FeaturedLinkURL = href
		return fmt.Sprintf(`<a href="%s">%s</a>`, href, figure)
	}
	return figure
}

func imageFigure(img models.ImageRef, class string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<figure class="%s"><img src="%s" alt="%s" loading="lazy">`, class, img.URL, htmlEscape(img.AltText)))
	if img.Attribution != "" {
		sb.WriteString(fmt.Sprintf(`<figcaption>%s</figcaption>`, htmlEscape(img.Attribution)))
	}
	sb.WriteString(`</figure>`)
	return sb.String()
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func htmlEscape(s string) string {
	return htmlEscaper.Replace(s)
}
