package engine

import "fmt"

// Timer is the session countdown. It starts running with Duration seconds
// left and ends, for good, when Remaining reaches zero.
type Timer struct {
	Duration  int    `json:"duration"`
	Remaining int    `json:"remaining"`
	Status    Status `json:"status"`
}

// NewTimer creates a running timer
func NewTimer(duration int) *Timer {
	t := &Timer{Duration: duration}
	t.Reset()
	return t
}

// Tick advances the countdown by one second. Ticks after the timer ended
// are ignored.
func (t *Timer) Tick() TickResult {
	if t.Status == StatusEnded {
		return TickResult{TimeRemaining: t.Remaining, Ended: true}
	}

	t.Remaining--
	if t.Remaining <= 0 {
		t.Remaining = 0
		t.Status = StatusEnded
	}

	return TickResult{TimeRemaining: t.Remaining, Ended: t.Status == StatusEnded}
}

// Reset re-enters the running state with the full duration
func (t *Timer) Reset() {
	t.Remaining = t.Duration
	t.Status = StatusRunning
	if t.Remaining <= 0 {
		t.Remaining = 0
		t.Status = StatusEnded
	}
}

// Running reports whether the countdown is still going
func (t *Timer) Running() bool {
	return t.Status == StatusRunning
}

// FormatTime renders seconds as MM:SS
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
