package presenter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyAction(t *testing.T) {
	tests := map[string]Action{
		"ArrowRight": ActionNext,
		" ":          ActionNext,
		"PageDown":   ActionNext,
		"ArrowLeft":  ActionPrev,
		"PageUp":     ActionPrev,
		"f":          ActionNone,
		"ArrowDown":  ActionNone,
	}
	for key, want := range tests {
		assert.Equal(t, want, KeyAction(key), "key %q", key)
	}
}

func TestWheelAccumulator(t *testing.T) {
	t.Run("accumulates to threshold", func(t *testing.T) {
		var w WheelAccumulator
		assert.Equal(t, ActionNone, w.Add(t0, 0, 25))
		assert.Equal(t, ActionNext, w.Add(t0.Add(50*time.Millisecond), 0, 15))
		assert.Equal(t, ActionNone, w.Add(t0.Add(100*time.Millisecond), 0, 39), "sum restarts after an action")
	})

	t.Run("idle resets", func(t *testing.T) {
		var w WheelAccumulator
		w.Add(t0, 0, 30)
		assert.Equal(t, ActionNone, w.Add(t0.Add(300*time.Millisecond), 0, 30))
	})

	t.Run("dominant axis", func(t *testing.T) {
		var w WheelAccumulator
		assert.Equal(t, ActionPrev, w.Add(t0, -45, 10))
	})
}
