// Package pdfpc turns a sparse .pdfpc file plus the page labels of a PDF into
// the canonical slide model used by every view.
package pdfpc

import (
	"sort"

	"pdf-presenter/internal/models"
)

const (
	DefaultTransition         = "replace"
	DefaultBeamerNotePosition = models.BeamerNoteNone
	DefaultNoteFontSize       = 20
)

// Resolve combines the page labels of a document with an optional config.
// labels holds one entry per physical page in page order. cfg may be nil.
//
// Overrides whose idx is outside the document are ignored. Default overlay
// numbers are assigned before hidden pages are dropped, so hiding a page never
// renumbers its neighbours.
func Resolve(cfg *models.PdfpcConfig, labels []string) *models.ResolvedConfig {
	overrides := make(map[int]models.PageOverride)
	if cfg != nil {
		for _, o := range cfg.Pages {
			if int64(o.Idx) >= int64(len(labels)) {
				continue
			}
			overrides[int(o.Idx)] = o
		}
	}

	linear := make([]models.ResolvedPage, 0, len(labels))
	prevLabel := ""
	counter := 0
	for i, pdfLabel := range labels {
		if i == 0 || pdfLabel != prevLabel {
			counter = 0
			prevLabel = pdfLabel
		}
		page := models.ResolvedPage{
			PageNumber: i + 1,
			Label:      pdfLabel,
			Overlay:    counter,
		}
		counter++

		if o, ok := overrides[i]; ok {
			if o.Hidden != nil && *o.Hidden {
				continue
			}
			if o.Label != nil {
				page.Label = *o.Label
			}
			if o.Overlay != nil {
				page.Overlay = int(*o.Overlay)
			}
			if o.Note != nil {
				page.Note = *o.Note
			}
		}
		linear = append(linear, page)
	}

	out := &models.ResolvedConfig{
		PdfpcFormat:        2,
		DefaultTransition:  DefaultTransition,
		BeamerNotePosition: DefaultBeamerNotePosition,
		NoteFontSize:       DefaultNoteFontSize,
		Pages:              groupByConsecutiveLabel(linear),
		TotalOverlays:      len(linear),
	}
	if cfg == nil {
		return out
	}

	out.PdfpcFormat = cfg.PdfpcFormat
	out.Duration = cfg.Duration
	out.StartTime = cfg.StartTime
	out.EndTime = cfg.EndTime
	out.EndSlide = cfg.EndSlide
	out.SavedSlide = cfg.SavedSlide
	out.LastMinutes = cfg.LastMinutes
	out.DisableMarkdown = cfg.DisableMarkdown
	out.Extra = cfg.Extra
	if cfg.DefaultTransition != nil {
		out.DefaultTransition = *cfg.DefaultTransition
	}
	if cfg.BeamerNotePosition != nil {
		out.BeamerNotePosition = *cfg.BeamerNotePosition
	}
	if cfg.NoteFontSize != nil {
		out.NoteFontSize = *cfg.NoteFontSize
	}
	return out
}

// groupByConsecutiveLabel splits pages into runs of equal label. A label that
// shows up again later starts a new group.
func groupByConsecutiveLabel(pages []models.ResolvedPage) [][]models.ResolvedPage {
	groups := [][]models.ResolvedPage{}
	var current []models.ResolvedPage

	flush := func() {
		if len(current) == 0 {
			return
		}
		sort.SliceStable(current, func(a, b int) bool {
			return current[a].Overlay < current[b].Overlay
		})
		groups = append(groups, current)
	}

	for i, p := range pages {
		if i == 0 || p.Label != pages[i-1].Label {
			flush()
			current = nil
		}
		current = append(current, p)
	}
	flush()

	return groups
}
