package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimer_CountsDownToEnded(t *testing.T) {
	timer := NewTimer(3)
	assert.True(t, timer.Running())
	assert.Equal(t, 3, timer.Remaining)

	assert.Equal(t, TickResult{TimeRemaining: 2, Ended: false}, timer.Tick())
	assert.Equal(t, TickResult{TimeRemaining: 1, Ended: false}, timer.Tick())
	assert.Equal(t, TickResult{TimeRemaining: 0, Ended: true}, timer.Tick())
	assert.Equal(t, StatusEnded, timer.Status)

	// Terminal until reset
	assert.Equal(t, TickResult{TimeRemaining: 0, Ended: true}, timer.Tick())
	assert.False(t, timer.Running())
}

func TestTimer_Reset(t *testing.T) {
	timer := NewTimer(2)
	timer.Tick()
	timer.Tick()
	assert.False(t, timer.Running())

	timer.Reset()
	assert.True(t, timer.Running())
	assert.Equal(t, 2, timer.Remaining)
}

func TestTimer_ZeroDurationStartsEnded(t *testing.T) {
	timer := NewTimer(0)
	assert.False(t, timer.Running())
	assert.Equal(t, 0, timer.Remaining)
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{120, "02:00"},
		{65, "01:05"},
		{9, "00:09"},
		{0, "00:00"},
		{-4, "00:00"},
		{3600, "60:00"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, FormatTime(test.seconds), "FormatTime(%d)", test.seconds)
	}
}
