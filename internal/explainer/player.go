// Package explainer drives the narrated slide deck: slide navigation,
// play/pause, mute, and per-word speech progress. The narrator is a
// non-reentrant singleton, so every transition cancels before speaking.
package explainer

import (
	"fmt"
	"sync"
	"time"

	"github.com/naviya/naviya/internal/api"
)

// advancePause is the beat between a slide's narration ending and the
// automatic advance to the next slide.
const advancePause = 800 * time.Millisecond

// ValidateDeck checks that slide numbers are 1-based and strictly
// increasing.
func ValidateDeck(slides []api.Slide) error {
	if len(slides) == 0 {
		return fmt.Errorf("empty explainer deck")
	}
	prev := 0
	for _, s := range slides {
		if s.SlideNumber <= prev {
			return fmt.Errorf("slide numbers must be strictly increasing, got %d after %d", s.SlideNumber, prev)
		}
		prev = s.SlideNumber
	}
	if slides[0].SlideNumber != 1 {
		return fmt.Errorf("deck must start at slide 1, got %d", slides[0].SlideNumber)
	}
	return nil
}

// Player owns playback state for one deck.
type Player struct {
	slides   []api.Slide
	narrator Narrator
	// onChange notifies the owning view after any state change so it
	// can repaint. Called without the lock held. May be nil.
	onChange func()

	mu           sync.Mutex
	current      int // 0-based slide index
	playing      bool
	muted        bool
	progress     int // word index within the current narration
	utterance    int // generation counter; stale callbacks are ignored
	pendingTimer *time.Timer
	closed       bool
}

// NewPlayer validates the deck and builds a stopped player at slide 1.
func NewPlayer(slides []api.Slide, narrator Narrator, onChange func()) (*Player, error) {
	if err := ValidateDeck(slides); err != nil {
		return nil, err
	}
	if narrator == nil {
		narrator = NewPacedNarrator()
	}
	return &Player{slides: slides, narrator: narrator, onChange: onChange}, nil
}

// Slide returns the current slide.
func (p *Player) Slide() api.Slide {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slides[p.current]
}

// Index returns the 0-based slide index and the deck length.
func (p *Player) Index() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, len(p.slides)
}

// Playing reports playback state.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Muted reports mute state.
func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// Progress returns the word index the narration has reached.
func (p *Player) Progress() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

// Play starts (or resumes) narration of the current slide.
func (p *Player) Play() {
	p.mu.Lock()
	if p.closed || p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = true
	p.mu.Unlock()
	p.speakCurrent()
}

// Pause stops playback. No boundary event mutates progress afterwards:
// the utterance generation is bumped so stale callbacks are dropped.
func (p *Player) Pause() {
	p.mu.Lock()
	p.playing = false
	p.utterance++
	p.stopTimerLocked()
	p.mu.Unlock()
	p.narrator.Cancel()
	p.notify()
}

// TogglePlay flips between Play and Pause.
func (p *Player) TogglePlay() {
	if p.Playing() {
		p.Pause()
	} else {
		p.Play()
	}
}

// ToggleMute flips the mute flag. Muting cancels audio but playback
// and auto-advance continue via the paced timing.
func (p *Player) ToggleMute() {
	p.mu.Lock()
	p.muted = !p.muted
	p.mu.Unlock()
	p.notify()
}

// Next advances one slide, cancelling in-flight speech first.
func (p *Player) Next() { p.seek(+1) }

// Prev goes back one slide, cancelling in-flight speech first.
func (p *Player) Prev() { p.seek(-1) }

// seek moves by delta and re-speaks when playing.
func (p *Player) seek(delta int) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	target := p.current + delta
	if target < 0 || target >= len(p.slides) {
		p.mu.Unlock()
		return
	}
	p.current = target
	p.progress = 0
	p.utterance++
	p.stopTimerLocked()
	playing := p.playing
	p.mu.Unlock()

	p.narrator.Cancel()
	p.notify()
	if playing {
		p.speakCurrent()
	}
}

// Close cancels all pending speech and timers. The player is dead.
func (p *Player) Close() {
	p.mu.Lock()
	p.closed = true
	p.playing = false
	p.utterance++
	p.stopTimerLocked()
	p.mu.Unlock()
	p.narrator.Cancel()
}

// speakCurrent enqueues the current slide's narration.
func (p *Player) speakCurrent() {
	p.mu.Lock()
	if p.closed || !p.playing {
		p.mu.Unlock()
		return
	}
	gen := p.utterance
	text := p.slides[p.current].Narration
	p.progress = 0
	p.mu.Unlock()

	p.narrator.Cancel()
	p.narrator.Speak(text,
		func(word int) {
			p.mu.Lock()
			if gen != p.utterance || !p.playing {
				p.mu.Unlock()
				return
			}
			p.progress = word
			p.mu.Unlock()
			p.notify()
		},
		func() {
			p.onNarrationEnd(gen)
		},
	)
}

// onNarrationEnd schedules the auto-advance or stops at the last slide.
func (p *Player) onNarrationEnd(gen int) {
	p.mu.Lock()
	if gen != p.utterance || !p.playing || p.closed {
		p.mu.Unlock()
		return
	}
	if p.current >= len(p.slides)-1 {
		p.playing = false
		p.mu.Unlock()
		p.notify()
		return
	}
	p.stopTimerLocked()
	p.pendingTimer = time.AfterFunc(advancePause, func() {
		p.mu.Lock()
		stale := gen != p.utterance || !p.playing || p.closed
		p.mu.Unlock()
		if !stale {
			p.seek(+1)
		}
	})
	p.mu.Unlock()
}

func (p *Player) stopTimerLocked() {
	if p.pendingTimer != nil {
		p.pendingTimer.Stop()
		p.pendingTimer = nil
	}
}

func (p *Player) notify() {
	if p.onChange != nil {
		p.onChange()
	}
}
