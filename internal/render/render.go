// Package render turns Markdown into HTML and checks the structure of the result.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer converts Markdown text into display HTML.
type Renderer interface {
	Render(markup string) (string, error)
}

// Goldmark renders GitHub-flavoured Markdown. Soft line breaks are not
// turned into <br>, and raw HTML in the input is omitted.
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark creates a renderer with tables, strikethrough, task lists and
// autolinks enabled.
func NewGoldmark() *Goldmark {
	return &Goldmark{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Render converts markup to HTML.
func (g *Goldmark) Render(markup string) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(markup), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Verify checks that rendered HTML contains at least one element matching selector.
func Verify(html, selector string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parse rendered html: %w", err)
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("rendered html has no element matching %q", selector)
	}
	return nil
}
