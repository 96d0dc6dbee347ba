package presenter

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-presenter/internal/models"
	"pdf-presenter/internal/pdfpc"
	"pdf-presenter/internal/timer"
)

var t0 = time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type recordingPusher struct {
	mu    sync.Mutex
	pages []int
	err   error
}

func (r *recordingPusher) PushPage(pageNumber int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, pageNumber)
	return r.err
}

func (r *recordingPusher) Pages() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.pages...)
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newPresenter(t *testing.T, cfg *models.ResolvedConfig) (*Presenter, *recordingPusher, *fakeClock) {
	t.Helper()
	pusher := &recordingPusher{}
	clock := &fakeClock{now: t0}
	return New(cfg, pusher, quietLogger(), WithClock(clock.Now)), pusher, clock
}

func TestPresenter_StepsThroughOverlays(t *testing.T) {
	p, pusher, _ := newPresenter(t, pdfpc.Resolve(nil, []string{"1", "1", "2", "3", "3", "3"}))

	assert.Equal(t, 1, p.Prev(), "retreating before the first page is a no-op")
	for want := 2; want <= 6; want++ {
		assert.Equal(t, want, p.Next())
	}
	assert.Equal(t, 6, p.Next(), "advancing past the last page is a no-op")
	assert.Equal(t, 5, p.Prev())

	assert.Equal(t, []int{2, 3, 4, 5, 6, 5}, pusher.Pages())
}

func TestPresenter_SlideJumpsSkipOverlays(t *testing.T) {
	p, _, _ := newPresenter(t, pdfpc.Resolve(nil, []string{"1", "1", "1", "2", "2"}))

	require.True(t, p.GoTo(2))
	assert.Equal(t, 5, p.NextSlide(), "lands on the last overlay of the next slide")
	assert.Equal(t, 5, p.NextSlide(), "no slide after the last one")
	assert.Equal(t, 3, p.PrevSlide())
	assert.Equal(t, 3, p.PrevSlide(), "no slide before the first one")
}

func TestPresenter_GoToRejectsHiddenAndUnknownPages(t *testing.T) {
	cfg := pdfpc.Resolve(&models.PdfpcConfig{
		PdfpcFormat: 2,
		Pages:       []models.PageOverride{{Idx: 1, Hidden: ptr(true)}},
	}, []string{"1", "2", "3"})
	p, pusher, _ := newPresenter(t, cfg)

	assert.False(t, p.GoTo(2))
	assert.False(t, p.GoTo(9))
	assert.Empty(t, pusher.Pages())
	assert.Equal(t, 3, p.Next(), "hidden pages are skipped")
}

func TestPresenter_NavigationStartsTimer(t *testing.T) {
	p, _, clock := newPresenter(t, pdfpc.Resolve(nil, []string{"1", "2", "3"}))

	assert.Equal(t, timer.PhaseIdle, p.Snapshot().Timer.Phase)
	clock.Advance(time.Minute)
	p.Next()
	assert.Equal(t, timer.PhaseRunning, p.Snapshot().Timer.Phase)

	clock.Advance(30 * time.Second)
	assert.Equal(t, 30*time.Second, p.Snapshot().Timer.TalkTime)

	// Going back to the first page and forward again does not restart it
	p.Prev()
	clock.Advance(30 * time.Second)
	p.Next()
	assert.Equal(t, time.Minute, p.Snapshot().Timer.TalkTime)
}

func TestPresenter_ToggleTimer(t *testing.T) {
	p, _, clock := newPresenter(t, pdfpc.Resolve(nil, []string{"1", "2"}))

	assert.Equal(t, timer.PhaseRunning, p.ToggleTimer())
	clock.Advance(10 * time.Second)
	assert.Equal(t, timer.PhasePaused, p.ToggleTimer())
	clock.Advance(time.Hour)
	assert.Equal(t, 10*time.Second, p.Snapshot().Timer.TalkTime)
}

func TestPresenter_ResetTimer(t *testing.T) {
	p, _, clock := newPresenter(t, pdfpc.Resolve(nil, []string{"1", "2"}))

	p.ToggleTimer()
	clock.Advance(time.Minute)
	assert.Equal(t, timer.PhaseIdle, p.ResetTimer(), "reset on the first page goes idle")

	p.Next()
	clock.Advance(time.Minute)
	assert.Equal(t, timer.PhasePaused, p.ResetTimer(), "reset mid-deck stays started")
	assert.Zero(t, p.Snapshot().Timer.TalkTime)
}

func TestPresenter_FrozenHoldsAudience(t *testing.T) {
	p, pusher, _ := newPresenter(t, pdfpc.Resolve(nil, []string{"1", "2", "3", "4"}))

	p.SetFrozen(true)
	p.Next()
	p.Next()
	snap := p.Snapshot()
	assert.True(t, snap.Frozen)
	assert.Equal(t, 3, snap.PageNumber)
	assert.Equal(t, 1, snap.AudiencePage)
	assert.Empty(t, pusher.Pages())

	p.SetFrozen(false)
	assert.Equal(t, []int{3}, pusher.Pages(), "unfreezing catches the audience up")
	assert.Equal(t, 3, p.Snapshot().AudiencePage)

	p.SetFrozen(false)
	assert.Equal(t, []int{3}, pusher.Pages())
}

func TestPresenter_PushFailureKeepsNavigating(t *testing.T) {
	p, pusher, _ := newPresenter(t, pdfpc.Resolve(nil, []string{"1", "2", "3"}))
	pusher.err = errors.New("channel closed")

	assert.Equal(t, 2, p.Next())
	assert.Equal(t, 3, p.Next())
	assert.Equal(t, []int{2, 3}, pusher.Pages())
}

func TestPresenter_NilPusher(t *testing.T) {
	p := New(pdfpc.Resolve(nil, []string{"1", "2"}), nil, quietLogger())
	assert.Equal(t, 2, p.Next())
	assert.Equal(t, 2, p.Snapshot().AudiencePage)
}

func TestPresenter_ReloadMovesOffHiddenPage(t *testing.T) {
	labels := []string{"1", "2", "3"}
	p, pusher, _ := newPresenter(t, pdfpc.Resolve(nil, labels))
	p.Next()

	hidden := pdfpc.Resolve(&models.PdfpcConfig{
		PdfpcFormat: 2,
		Pages:       []models.PageOverride{{Idx: 1, Hidden: ptr(true)}},
	}, labels)
	p.Reload(hidden)

	assert.Same(t, hidden, p.Config())
	assert.Equal(t, 3, p.Snapshot().PageNumber)
	assert.Equal(t, []int{2, 3}, pusher.Pages())
}

func TestPresenter_Snapshot(t *testing.T) {
	cfg := pdfpc.Resolve(&models.PdfpcConfig{
		PdfpcFormat: 2,
		Pages:       []models.PageOverride{{Idx: 1, Note: ptr("second build")}},
	}, []string{"A", "A", "A", "B"})
	p, _, _ := newPresenter(t, cfg)
	require.True(t, p.GoTo(2))

	snap := p.Snapshot()
	assert.Equal(t, "A", snap.Label)
	assert.Equal(t, 1, snap.Slide)
	assert.Equal(t, 2, snap.TotalSlides)
	assert.Equal(t, 1, snap.PrevOverlay)
	assert.Equal(t, 3, snap.NextOverlay)
	assert.Equal(t, 4, snap.NextSlidePage)
	assert.Equal(t, "second build", snap.Note)

	require.True(t, p.GoTo(4))
	snap = p.Snapshot()
	assert.Zero(t, snap.NextSlidePage)
	assert.Equal(t, uint32(1), p.SavedSlide())
}

func ptr[T any](v T) *T { return &v }
