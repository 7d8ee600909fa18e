// Package render turns post markdown into HTML and plain-text excerpts.
package render

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders post content to HTML. Raw HTML in the source is dropped.
func Markdown(content string) string {
	// Parsers carry state; build one per call.
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML | html.HrefTargetBlank | html.NofollowLinks,
	})

	doc := p.Parse([]byte(content))
	return string(markdown.Render(doc, renderer))
}

// Excerpt extracts the visible text of an HTML fragment, collapses
// whitespace and cuts it to at most maxRunes runes plus an ellipsis
func Excerpt(htmlContent string, maxRunes int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	// Headings read badly in a one-line summary.
	doc.Find("h1, h2, h3, h4, h5, h6").Remove()
	// Keep adjacent blocks from running together.
	doc.Find("p, li, blockquote, pre, td, th, div").AppendHtml(" ")

	text := strings.Join(strings.Fields(doc.Text()), " ")
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxRunes])) + "…"
}

// MarkdownExcerpt renders markdown and returns its excerpt
func MarkdownExcerpt(content string, maxRunes int) string {
	return Excerpt(Markdown(content), maxRunes)
}
