// Package timer tracks talk time for the presenter: a pause/resume state
// machine plus the schedule and pace colour derived from the pdfpc config.
package timer

import "time"

// Phase is the coarse state of the timer
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhasePaused  Phase = "paused"
)

// State is the timer state. The zero value is not usable; start from New.
// Start is non-zero exactly when IsRunning is true.
type State struct {
	IsRunning   bool
	HasStarted  bool
	Start       time.Time
	Accumulated time.Duration
	// Anchor is the reference instant the HH:MM schedule is resolved against
	Anchor time.Time
}

// New returns an idle timer anchored at now
func New(now time.Time) State {
	return State{Anchor: now}
}

// Phase reports idle, running or paused
func (s State) Phase() Phase {
	switch {
	case s.IsRunning:
		return PhaseRunning
	case s.HasStarted:
		return PhasePaused
	default:
		return PhaseIdle
	}
}

// Toggle pauses a running timer and starts or resumes a stopped one
func (s State) Toggle(now time.Time) State {
	if s.IsRunning {
		s.Accumulated += now.Sub(s.Start)
		s.IsRunning = false
		s.Start = time.Time{}
		return s
	}

	if !s.HasStarted {
		return s.begin(now)
	}

	s.IsRunning = true
	s.Start = now
	return s
}

// AutoStart starts an idle timer and leaves every other state untouched
func (s State) AutoStart(now time.Time) State {
	if s.HasStarted {
		return s
	}
	return s.begin(now)
}

// Navigated is the single transition fired by a page change. Moving onto any
// page after the first starts an idle timer.
func (s State) Navigated(now time.Time, pageNumber int) State {
	if pageNumber <= 1 {
		return s
	}
	return s.AutoStart(now)
}

// Reset clears the elapsed time, stops the timer and re-anchors the schedule
// at now. hasStartedAfterReset decides between a paused timer that keeps
// following the wall-clock schedule (reset in the middle of the deck) and a
// fully idle one that auto-starts again on the next page change.
func (s State) Reset(now time.Time, hasStartedAfterReset bool) State {
	return State{
		HasStarted: hasStartedAfterReset,
		Anchor:     now,
	}
}

// Elapsed is the accumulated talk time including the running stretch
func (s State) Elapsed(now time.Time) time.Duration {
	if s.IsRunning && !s.Start.IsZero() {
		return s.Accumulated + now.Sub(s.Start)
	}
	return s.Accumulated
}

func (s State) begin(now time.Time) State {
	s.HasStarted = true
	s.IsRunning = true
	s.Start = now
	s.Anchor = now
	return s
}
