package pdfpc

import "pdf-presenter/internal/models"

// SlideIndex returns the index of the group holding pageNumber
func SlideIndex(cfg *models.ResolvedConfig, pageNumber int) (int, bool) {
	if cfg == nil {
		return 0, false
	}
	for i, group := range cfg.Pages {
		for _, p := range group {
			if p.PageNumber == pageNumber {
				return i, true
			}
		}
	}
	return 0, false
}

// FindPage returns the resolved metadata of a physical page
func FindPage(cfg *models.ResolvedConfig, pageNumber int) (models.ResolvedPage, bool) {
	if cfg == nil {
		return models.ResolvedPage{}, false
	}
	for _, group := range cfg.Pages {
		for _, p := range group {
			if p.PageNumber == pageNumber {
				return p, true
			}
		}
	}
	return models.ResolvedPage{}, false
}

// NextSlidePage returns the page to show when jumping to the following slide:
// the last overlay of the next group. ok is false on the last slide.
func NextSlidePage(cfg *models.ResolvedConfig, pageNumber int) (int, bool) {
	i, found := SlideIndex(cfg, pageNumber)
	if !found || i >= len(cfg.Pages)-1 {
		return 0, false
	}
	next := cfg.Pages[i+1]
	return next[len(next)-1].PageNumber, true
}

// PrevSlidePage returns the last overlay of the previous group.
// ok is false on the first slide.
func PrevSlidePage(cfg *models.ResolvedConfig, pageNumber int) (int, bool) {
	i, found := SlideIndex(cfg, pageNumber)
	if !found || i == 0 {
		return 0, false
	}
	prev := cfg.Pages[i-1]
	return prev[len(prev)-1].PageNumber, true
}

// OverlayNeighbours returns the previous and next overlay inside the slide
// holding pageNumber. Zero means there is no neighbour on that side.
func OverlayNeighbours(cfg *models.ResolvedConfig, pageNumber int) (prev, next int) {
	i, found := SlideIndex(cfg, pageNumber)
	if !found {
		return 0, 0
	}
	group := cfg.Pages[i]
	for j, p := range group {
		if p.PageNumber != pageNumber {
			continue
		}
		if j > 0 {
			prev = group[j-1].PageNumber
		}
		if j < len(group)-1 {
			next = group[j+1].PageNumber
		}
		break
	}
	return prev, next
}

// SlideCounter returns the 1-based slide position and the number of slides
func SlideCounter(cfg *models.ResolvedConfig, pageNumber int) (current, total int) {
	if cfg == nil {
		return 0, 0
	}
	i, found := SlideIndex(cfg, pageNumber)
	if !found {
		return 0, len(cfg.Pages)
	}
	return i + 1, len(cfg.Pages)
}

// StepForward advances one overlay. Pages are walked in slide order so every
// overlay of the current slide is visited before the next slide. Stepping past
// the last page is a no-op.
func StepForward(cfg *models.ResolvedConfig, pageNumber int) int {
	if cfg == nil {
		return pageNumber
	}
	order := flatten(cfg)
	for i, p := range order {
		if p == pageNumber {
			if i+1 < len(order) {
				return order[i+1]
			}
			return pageNumber
		}
	}
	// pageNumber is hidden or unknown: move to the next visible page after it
	for _, p := range order {
		if p > pageNumber {
			return p
		}
	}
	if len(order) > 0 {
		return order[len(order)-1]
	}
	return pageNumber
}

// StepBackward moves back one overlay; stepping before the first page is a no-op
func StepBackward(cfg *models.ResolvedConfig, pageNumber int) int {
	order := flatten(cfg)
	for i, p := range order {
		if p == pageNumber {
			if i > 0 {
				return order[i-1]
			}
			return pageNumber
		}
	}
	for i := len(order) - 1; i >= 0; i-- {
		if order[i] < pageNumber {
			return order[i]
		}
	}
	return 1
}

// FirstPage returns the page number the deck opens on
func FirstPage(cfg *models.ResolvedConfig) int {
	if cfg == nil || len(cfg.Pages) == 0 {
		return 1
	}
	return cfg.Pages[0][0].PageNumber
}

func flatten(cfg *models.ResolvedConfig) []int {
	if cfg == nil {
		return nil
	}
	out := make([]int, 0, cfg.TotalOverlays)
	for _, group := range cfg.Pages {
		for _, p := range group {
			out = append(out, p.PageNumber)
		}
	}
	return out
}
