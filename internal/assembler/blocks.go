package assembler

import (
	"regexp"
	"strings"
)

// Block is one block-level segment of the generated body. A segment runs up
// to and including the closing tag that ended it; Tag is that tag, lowercased.
// A trailing remainder without a closing block tag keeps Tag == "".
type Block struct {
	HTML string
	Tag  string
}

var blockCloseRE = regexp.MustCompile(`(?i)</(p|h[1-6]|ul|ol|blockquote|table|pre|figure)>`)

// parseBlocks splits the body into an ordered block sequence. Concatenating
// the segments reproduces the input byte for byte, which keeps assembly
// insertions index-based and lossless.
func parseBlocks(body string) []Block {
	var blocks []Block
	rest := body
	for {
		loc := blockCloseRE.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		blocks = append(blocks, Block{
			HTML: rest[:loc[1]],
			Tag:  strings.ToLower(rest[loc[2]:loc[3]]),
		})
		rest = rest[loc[1]:]
	}
	if rest != "" {
		blocks = append(blocks, Block{HTML: rest})
	}
	return blocks
}

// linkFirstMention wraps the first occurrence of name that sits in plain
// text, outside any tag and outside an existing anchor, in a link. Returns
// the rewritten HTML and whether a replacement happened.
func linkFirstMention(html, name, href string) (string, bool) {
	if name == "" {
		return html, false
	}

	n := len(name)
	inTag := false
	anchorDepth := 0

	for i := 0; i < len(html); i++ {
		switch {
		case html[i] == '<':
			inTag = true
			lower := strings.ToLower(html[i:min(i+3, len(html))])
			if strings.HasPrefix(lower, "<a ") || strings.HasPrefix(lower, "<a>") {
				anchorDepth++
			} else if strings.HasPrefix(strings.ToLower(html[i:min(i+4, len(html))]), "</a>") {
				if anchorDepth > 0 {
					anchorDepth--
				}
			}
		case html[i] == '>':
			inTag = false
		case !inTag && anchorDepth == 0 && i+n <= len(html):
			if strings.EqualFold(html[i:i+n], name) {
				return html[:i] + `<a href="` + href + `">` + html[i:i+n] + `</a>` + html[i+n:], true
			}
		}
	}
	return html, false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
