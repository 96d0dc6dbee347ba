package pdfpc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pdf-presenter/internal/models"
)

func sampleDeck() *models.ResolvedConfig {
	return Resolve(nil, []string{"1", "1", "2", "3", "3", "3"})
}

func TestSlideNavigation(t *testing.T) {
	cfg := sampleDeck()

	tests := []struct {
		name     string
		page     int
		next     int
		nextOK   bool
		prev     int
		prevOK   bool
		slideIdx int
	}{
		{"first overlay of first slide", 1, 3, true, 0, false, 0},
		{"second overlay of first slide", 2, 3, true, 0, false, 0},
		{"single page slide", 3, 6, true, 2, true, 1},
		{"middle overlay of last slide", 5, 0, false, 3, true, 2},
		{"last page", 6, 0, false, 3, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := NextSlidePage(cfg, tt.page)
			assert.Equal(t, tt.nextOK, ok)
			assert.Equal(t, tt.next, next)

			prev, ok := PrevSlidePage(cfg, tt.page)
			assert.Equal(t, tt.prevOK, ok)
			assert.Equal(t, tt.prev, prev)

			idx, found := SlideIndex(cfg, tt.page)
			assert.True(t, found)
			assert.Equal(t, tt.slideIdx, idx)
		})
	}
}

func TestNextSlideSkipsOverlays(t *testing.T) {
	cfg := Resolve(nil, []string{"1", "1", "1", "2", "2", "2"})

	// From overlay 2 of a 3-overlay slide, "next slide" lands on the last
	// overlay of the following slide.
	next, ok := NextSlidePage(cfg, 2)
	assert.True(t, ok)
	assert.Equal(t, 6, next)
}

func TestStepForwardAndBackward(t *testing.T) {
	cfg := sampleDeck()

	page := 1
	visited := []int{page}
	for i := 0; i < 10; i++ {
		page = StepForward(cfg, page)
		visited = append(visited, page)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 6, 6, 6, 6, 6}, visited)

	assert.Equal(t, 5, StepBackward(cfg, 6))
	assert.Equal(t, 1, StepBackward(cfg, 1))
}

func TestStepSkipsHiddenPages(t *testing.T) {
	cfg := Resolve(&models.PdfpcConfig{
		PdfpcFormat: 2,
		Pages:       []models.PageOverride{{Idx: 2, Hidden: ptr(true)}},
	}, []string{"1", "1", "2", "3", "3", "3"})

	assert.Equal(t, 4, StepForward(cfg, 2))
	assert.Equal(t, 2, StepBackward(cfg, 4))
	// A hidden current page moves to the nearest visible page
	assert.Equal(t, 4, StepForward(cfg, 3))
	assert.Equal(t, 2, StepBackward(cfg, 3))
	assert.Equal(t, 6, StepForward(cfg, 6))
}

func TestStepNilConfig(t *testing.T) {
	assert.Equal(t, 3, StepForward(nil, 3))
	assert.Equal(t, 1, StepBackward(nil, 3))
}

func TestOverlayNeighboursAndCounter(t *testing.T) {
	cfg := sampleDeck()

	prev, next := OverlayNeighbours(cfg, 5)
	assert.Equal(t, 4, prev)
	assert.Equal(t, 6, next)

	prev, next = OverlayNeighbours(cfg, 3)
	assert.Zero(t, prev)
	assert.Zero(t, next)

	current, total := SlideCounter(cfg, 5)
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, total)

	assert.Equal(t, 1, FirstPage(cfg))
	assert.Equal(t, 1, FirstPage(nil))
}

func TestFindPage(t *testing.T) {
	cfg := sampleDeck()
	p, ok := FindPage(cfg, 4)
	assert.True(t, ok)
	assert.Equal(t, "3", p.Label)

	_, ok = FindPage(cfg, 42)
	assert.False(t, ok)
}
