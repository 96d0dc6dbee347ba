package pdfpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-presenter/internal/models"
)

func noteDeck(disableMarkdown *bool) *models.ResolvedConfig {
	return Resolve(&models.PdfpcConfig{
		PdfpcFormat:     2,
		DisableMarkdown: disableMarkdown,
		Pages: []models.PageOverride{
			{Idx: 0, Note: ptr("**bold** point <script>alert(1)</script>")},
		},
	}, []string{"1", "2"})
}

func TestRenderNote_Markdown(t *testing.T) {
	out, err := RenderNote(noteDeck(nil), 1)
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestRenderNote_MarkdownDisabled(t *testing.T) {
	out, err := RenderNote(noteDeck(ptr(true)), 1)
	require.NoError(t, err)
	assert.Contains(t, out, "**bold**")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRenderNote_NoNote(t *testing.T) {
	out, err := RenderNote(noteDeck(nil), 2)
	require.NoError(t, err)
	assert.Empty(t, out)

	assert.Empty(t, NoteText(noteDeck(nil), 99))
	assert.Contains(t, NoteText(noteDeck(nil), 1), "**bold**")
}
