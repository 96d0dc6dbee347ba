package timer

import (
	"strconv"
	"strings"
	"time"

	"pdf-presenter/internal/models"
)

// Schedule is the talk window derived from the config. It is never stored;
// it is recomputed from the config and the timer anchor on every read.
type Schedule struct {
	Start    time.Time // zero when not scheduled
	End      time.Time // zero when not scheduled
	Duration time.Duration
}

// HasStart reports whether a wall-clock start time applies
func (s Schedule) HasStart() bool { return !s.Start.IsZero() }

// ResolveSchedule works out start, end and duration relative to anchor.
// When both times are configured the duration is their distance and any
// explicit duration is ignored; when only one is given the other follows from
// the duration.
func ResolveSchedule(cfg *models.ResolvedConfig, anchor time.Time) Schedule {
	var duration time.Duration
	var startText, endText string
	if cfg != nil {
		if cfg.Duration != nil {
			duration = time.Duration(*cfg.Duration) * time.Minute
		}
		if cfg.StartTime != nil {
			startText = *cfg.StartTime
		}
		if cfg.EndTime != nil {
			endText = *cfg.EndTime
		}
	}

	if startText == "" && endText == "" {
		return Schedule{Duration: duration}
	}

	base := anchor.Truncate(time.Minute)
	var start, end time.Time
	if startText != "" {
		start = atClock(base, startText)
	}
	if endText != "" {
		end = atClock(base, endText)
	}

	switch {
	case !start.IsZero() && !end.IsZero():
		end = sameDayClock(start, endText)
		if !end.After(start) {
			end = end.AddDate(0, 0, 1)
		}
		duration = end.Sub(start)
	case start.IsZero() && !end.IsZero():
		start = end.Add(-duration)
	case !start.IsZero() && end.IsZero() && duration > 0:
		end = start.Add(duration)
	}

	return Schedule{Start: start, End: end, Duration: duration}
}

// atClock returns the first HH:MM at or after anchor
func atClock(anchor time.Time, hhmm string) time.Time {
	t := sameDayClock(anchor, hhmm)
	if t.Before(anchor) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func sameDayClock(day time.Time, hhmm string) time.Time {
	hour, minute := parseHHMM(hhmm)
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, day.Location())
}

// parseHHMM expects input already validated against the HH:MM pattern
func parseHHMM(hhmm string) (int, int) {
	h, m, _ := strings.Cut(hhmm, ":")
	hour, _ := strconv.Atoi(h)
	minute, _ := strconv.Atoi(m)
	return hour, minute
}
