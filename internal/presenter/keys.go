package presenter

import (
	"math"
	"time"
)

// Action is a navigation request from a key or the wheel
type Action int

const (
	ActionNone Action = iota
	ActionNext
	ActionPrev
)

// KeyAction maps a key name to an action
func KeyAction(key string) Action {
	switch key {
	case "ArrowRight", " ", "PageDown":
		return ActionNext
	case "ArrowLeft", "PageUp":
		return ActionPrev
	}
	return ActionNone
}

const (
	wheelThreshold = 40
	wheelIdleReset = 250 * time.Millisecond
)

// WheelAccumulator turns wheel deltas into navigation actions. Deltas add up
// along the dominant axis and trigger once the sum crosses the threshold.
type WheelAccumulator struct {
	sum  float64
	last time.Time
}

// Add records one wheel event
func (w *WheelAccumulator) Add(now time.Time, deltaX, deltaY float64) Action {
	if now.Sub(w.last) > wheelIdleReset {
		w.sum = 0
	}
	w.last = now

	delta := deltaY
	if math.Abs(deltaX) > math.Abs(deltaY) {
		delta = deltaX
	}
	w.sum += delta

	switch {
	case w.sum >= wheelThreshold:
		w.sum = 0
		return ActionNext
	case w.sum <= -wheelThreshold:
		w.sum = 0
		return ActionPrev
	}
	return ActionNone
}
