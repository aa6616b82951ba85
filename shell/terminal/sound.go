package terminal

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

// Sound plays feedback for game events
type Sound interface {
	PlayClear(apples int)
	Close()
}

// Silent is a Sound that does nothing
type Silent struct{}

func (Silent) PlayClear(int) {}
func (Silent) Close()        {}

// Beeper plays short sine tones through the default audio device
type Beeper struct {
	sampleRate beep.SampleRate
}

// NewBeeper initializes the speaker. Callers fall back to Silent on error,
// the game runs fine without audio.
func NewBeeper() (*Beeper, error) {
	sampleRate := beep.SampleRate(44100)
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &Beeper{sampleRate: sampleRate}, nil
}

// PlayClear plays a tone that rises with the number of apples cleared
func (b *Beeper) PlayClear(apples int) {
	freq := 660 + 55*min(apples, 12)
	sine, err := generators.SineTone(b.sampleRate, float64(freq))
	if err != nil {
		return
	}
	speaker.Play(beep.Take(b.sampleRate.N(60*time.Millisecond), sine))
}

// Close releases the audio device
func (b *Beeper) Close() {
	speaker.Close()
}
