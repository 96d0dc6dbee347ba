package timer

import (
	"fmt"
	"time"

	"pdf-presenter/internal/models"
	"pdf-presenter/internal/pdfpc"
)

// Color is the pace colour of the timer display
type Color string

const (
	ColorNormal   Color = "normal"
	ColorPretalk  Color = "pretalk"
	ColorTooFast  Color = "too-fast"
	ColorTooSlow  Color = "too-slow"
	ColorOvertime Color = "overtime"
)

// PaceThreshold is how far talk time may drift from the expected time for the
// current slide before the display turns too-fast or too-slow.
const PaceThreshold = 60 * time.Second

// View is what the presenter shows for the timer at one instant
type View struct {
	Display     time.Duration
	DisplayText string
	ClockText   string
	Color       Color
	IsRunning   bool
	Phase       Phase
	Schedule    Schedule
	TalkTime    time.Duration
	Expected    time.Duration
}

// BuildView derives the display for the given page at now
func BuildView(cfg *models.ResolvedConfig, pageNumber int, now time.Time, s State) View {
	schedule := ResolveSchedule(cfg, s.Anchor)
	elapsed := s.Elapsed(now)

	talkTime := elapsed
	if s.HasStarted && schedule.HasStart() {
		talkTime = now.Sub(schedule.Start)
	}
	if talkTime < 0 {
		talkTime = 0
	}

	preTalk := s.HasStarted && schedule.HasStart() && now.Before(schedule.Start)

	var display time.Duration
	switch {
	case preTalk:
		display = -schedule.Start.Sub(now)
	case schedule.Duration > 0:
		display = schedule.Duration - talkTime
	default:
		display = talkTime
	}

	expected := expectedTime(cfg, pageNumber, schedule.Duration)

	return View{
		Display:     display,
		DisplayText: FormatDuration(display),
		ClockText:   now.Format("15:04"),
		Color:       paceColor(preTalk, schedule.Duration, talkTime, expected),
		IsRunning:   s.IsRunning,
		Phase:       s.Phase(),
		Schedule:    schedule,
		TalkTime:    talkTime,
		Expected:    expected,
	}
}

// expectedTime is how much of the talk should have passed by the middle of
// the current slide, counting slides up to endSlide.
func expectedTime(cfg *models.ResolvedConfig, pageNumber int, duration time.Duration) time.Duration {
	current, _ := pdfpc.SlideIndex(cfg, pageNumber)

	slideCount := 1
	if cfg != nil {
		slideCount = len(cfg.Pages)
	}
	last := slideCount - 1
	if cfg != nil && cfg.EndSlide != nil && int(*cfg.EndSlide) < last {
		last = int(*cfg.EndSlide)
	}
	if last < 0 {
		last = 0
	}
	if current > last {
		current = last
	}

	progress := (float64(current) + 0.5) / float64(last+1)
	return time.Duration(float64(duration) * progress)
}

func paceColor(preTalk bool, duration, talkTime, expected time.Duration) Color {
	if preTalk {
		return ColorPretalk
	}
	if duration <= 0 {
		return ColorNormal
	}
	if talkTime >= duration {
		return ColorOvertime
	}
	if talkTime > expected+PaceThreshold {
		return ColorTooSlow
	}
	if talkTime < expected-PaceThreshold {
		return ColorTooFast
	}
	return ColorNormal
}

// FormatDuration renders d as H:MM:SS with a leading minus when negative
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%s%d:%02d:%02d", sign, total/3600, (total%3600)/60, total%60)
}
