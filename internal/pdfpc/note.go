package pdfpc

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"pdf-presenter/internal/models"
)

// goldmark drops raw HTML unless html.WithUnsafe is set, which is what keeps
// notes from injecting markup into the presenter view.
var noteMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// NoteText returns the plain speaker note of a physical page
func NoteText(cfg *models.ResolvedConfig, pageNumber int) string {
	page, ok := FindPage(cfg, pageNumber)
	if !ok {
		return ""
	}
	return page.Note
}

// RenderNote returns the speaker note of a page as HTML. Markdown is used
// unless the config disables it, in which case the text is only escaped.
func RenderNote(cfg *models.ResolvedConfig, pageNumber int) (string, error) {
	page, ok := FindPage(cfg, pageNumber)
	if !ok || page.Note == "" {
		return "", nil
	}
	if !cfg.MarkdownEnabled() {
		return html.EscapeString(page.Note), nil
	}

	var buf bytes.Buffer
	if err := noteMarkdown.Convert([]byte(page.Note), &buf); err != nil {
		return "", fmt.Errorf("failed to render note for page %d: %w", pageNumber, err)
	}
	return buf.String(), nil
}
