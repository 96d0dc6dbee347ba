package pdfpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-presenter/internal/models"
)

func ptr[T any](v T) *T { return &v }

func flat(cfg *models.ResolvedConfig) []models.ResolvedPage {
	var out []models.ResolvedPage
	for _, g := range cfg.Pages {
		out = append(out, g...)
	}
	return out
}

func TestResolve_NoConfig(t *testing.T) {
	labels := []string{"1", "1", "2", "3", "3", "3"}
	cfg := Resolve(nil, labels)

	require.Len(t, cfg.Pages, 3)
	assert.Equal(t, []models.ResolvedPage{
		{PageNumber: 1, Label: "1", Overlay: 0},
		{PageNumber: 2, Label: "1", Overlay: 1},
	}, cfg.Pages[0])
	assert.Equal(t, []models.ResolvedPage{
		{PageNumber: 3, Label: "2", Overlay: 0},
	}, cfg.Pages[1])
	assert.Equal(t, []models.ResolvedPage{
		{PageNumber: 4, Label: "3", Overlay: 0},
		{PageNumber: 5, Label: "3", Overlay: 1},
		{PageNumber: 6, Label: "3", Overlay: 2},
	}, cfg.Pages[2])
	assert.Equal(t, 6, cfg.TotalOverlays)

	assert.Equal(t, 2, cfg.PdfpcFormat)
	assert.Equal(t, "replace", cfg.DefaultTransition)
	assert.Equal(t, models.BeamerNoteNone, cfg.BeamerNotePosition)
	assert.EqualValues(t, 20, cfg.NoteFontSize)
}

func TestResolve_EmptyLabels(t *testing.T) {
	cfg := Resolve(nil, nil)
	assert.NotNil(t, cfg.Pages)
	assert.Empty(t, cfg.Pages)
	assert.Equal(t, 0, cfg.TotalOverlays)
}

func TestResolve_HiddenSingleMemberGroupDisappears(t *testing.T) {
	labels := []string{"1", "1", "2", "3", "3", "3"}
	cfg := Resolve(&models.PdfpcConfig{
		PdfpcFormat: 2,
		Pages:       []models.PageOverride{{Idx: 2, Hidden: ptr(true)}},
	}, labels)

	require.Len(t, cfg.Pages, 2)
	assert.Equal(t, "1", cfg.Pages[0][0].Label)
	assert.Equal(t, "3", cfg.Pages[1][0].Label)
	assert.Equal(t, 5, cfg.TotalOverlays)
	for _, p := range flat(cfg) {
		assert.NotEqual(t, 3, p.PageNumber)
	}
}

func TestResolve_HidingKeepsOverlayNumbers(t *testing.T) {
	labels := []string{"a", "a", "a", "a"}
	cfg := Resolve(&models.PdfpcConfig{
		PdfpcFormat: 2,
		Pages:       []models.PageOverride{{Idx: 1, Hidden: ptr(true)}},
	}, labels)

	require.Len(t, cfg.Pages, 1)
	overlays := []int{}
	for _, p := range cfg.Pages[0] {
		overlays = append(overlays, p.Overlay)
	}
	assert.Equal(t, []int{0, 2, 3}, overlays)
	assert.Equal(t, 3, cfg.TotalOverlays)
}

func TestResolve_HidingRemovesExactlyOnePage(t *testing.T) {
	labels := []string{"1", "2", "2", "3", "4", "4", "4", "5"}
	base := Resolve(nil, labels)
	for i := range labels {
		hidden := Resolve(&models.PdfpcConfig{
			PdfpcFormat: 2,
			Pages:       []models.PageOverride{{Idx: uint32(i), Hidden: ptr(true)}},
		}, labels)
		assert.Len(t, flat(hidden), len(flat(base))-1, "hiding idx %d", i)
		assert.Equal(t, base.TotalOverlays-1, hidden.TotalOverlays, "hiding idx %d", i)
	}
}

func TestResolve_OverridesAndOutOfRange(t *testing.T) {
	labels := []string{"1", "2", "3"}
	cfg := Resolve(&models.PdfpcConfig{
		PdfpcFormat:        2,
		Duration:           ptr(uint32(20)),
		NoteFontSize:       ptr(uint32(32)),
		DefaultTransition:  ptr("fade"),
		BeamerNotePosition: ptr(models.BeamerNoteRight),
		Pages: []models.PageOverride{
			{Idx: 1, Label: ptr("1"), Overlay: ptr(uint32(1)), Note: ptr("second build")},
			{Idx: 2, Note: ptr("closing")},
			{Idx: 99, Hidden: ptr(true)},
		},
	}, labels)

	require.Len(t, cfg.Pages, 2)
	assert.Equal(t, []models.ResolvedPage{
		{PageNumber: 1, Label: "1", Overlay: 0},
		{PageNumber: 2, Label: "1", Overlay: 1, Note: "second build"},
	}, cfg.Pages[0])
	assert.Equal(t, "closing", cfg.Pages[1][0].Note)
	assert.Equal(t, 3, cfg.TotalOverlays)

	assert.Equal(t, "fade", cfg.DefaultTransition)
	assert.Equal(t, models.BeamerNoteRight, cfg.BeamerNotePosition)
	assert.EqualValues(t, 32, cfg.NoteFontSize)
	require.NotNil(t, cfg.Duration)
	assert.EqualValues(t, 20, *cfg.Duration)
}

func TestResolve_OverlayOverrideSortsGroup(t *testing.T) {
	labels := []string{"x", "x", "x"}
	cfg := Resolve(&models.PdfpcConfig{
		PdfpcFormat: 2,
		Pages: []models.PageOverride{
			{Idx: 0, Overlay: ptr(uint32(5))},
		},
	}, labels)

	require.Len(t, cfg.Pages, 1)
	assert.Equal(t, []int{2, 3, 1}, []int{
		cfg.Pages[0][0].PageNumber,
		cfg.Pages[0][1].PageNumber,
		cfg.Pages[0][2].PageNumber,
	})
}

func TestResolve_RepeatedLabelFormsSeparateGroup(t *testing.T) {
	cfg := Resolve(nil, []string{"A", "B", "A"})
	require.Len(t, cfg.Pages, 3)
	assert.Equal(t, "A", cfg.Pages[2][0].Label)
	assert.Equal(t, 0, cfg.Pages[2][0].Overlay)
}

func TestResolve_Properties(t *testing.T) {
	cases := [][]string{
		{},
		{"1"},
		{"i", "ii", "ii", "1", "2", "2", "2", "i"},
		{"a", "a", "a", "a", "a"},
		{"1", "2", "3", "4"},
	}
	for _, labels := range cases {
		cfg := Resolve(nil, labels)
		assert.Len(t, flat(cfg), len(labels))
		assert.Equal(t, len(labels), cfg.TotalOverlays)

		for _, group := range cfg.Pages {
			for i := 1; i < len(group); i++ {
				assert.Equal(t, group[0].Label, group[i].Label)
				assert.Greater(t, group[i].Overlay, group[i-1].Overlay)
			}
		}

		assert.Equal(t, cfg, Resolve(nil, labels))
	}
}

func TestResolve_PassesThroughExtraFields(t *testing.T) {
	raw, err := Parse([]byte(`{"pdfpcFormat":2,"customTheme":"dark","pages":[]}`))
	require.NoError(t, err)

	cfg := Resolve(raw, []string{"1"})
	require.Contains(t, cfg.Extra, "customTheme")
	assert.JSONEq(t, `"dark"`, string(cfg.Extra["customTheme"]))
}
