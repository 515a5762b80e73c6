package explainer

import (
	"sync"
	"testing"
	"time"

	"github.com/naviya/naviya/internal/api"
)

// scriptedNarrator records utterances and lets the test fire word and
// end callbacks by hand.
type scriptedNarrator struct {
	mu      sync.Mutex
	spoken  []string
	cancels int
	onWord  func(int)
	onEnd   func()
}

func (n *scriptedNarrator) Speak(text string, onWord func(int), onEnd func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.spoken = append(n.spoken, text)
	n.onWord = onWord
	n.onEnd = onEnd
}

func (n *scriptedNarrator) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancels++
}

func (n *scriptedNarrator) fireWord(i int) {
	n.mu.Lock()
	f := n.onWord
	n.mu.Unlock()
	if f != nil {
		f(i)
	}
}

func (n *scriptedNarrator) fireEnd() {
	n.mu.Lock()
	f := n.onEnd
	n.mu.Unlock()
	if f != nil {
		f()
	}
}

func (n *scriptedNarrator) utterances() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.spoken))
	copy(out, n.spoken)
	return out
}

func deck(n int) []api.Slide {
	out := make([]api.Slide, n)
	for i := range out {
		out[i] = api.Slide{
			SlideNumber: i + 1,
			Title:       "Slide",
			Narration:   "alpha beta gamma",
		}
	}
	return out
}

func TestValidateDeck(t *testing.T) {
	if err := ValidateDeck(nil); err == nil {
		t.Error("empty deck should be rejected")
	}
	if err := ValidateDeck([]api.Slide{{SlideNumber: 2}}); err == nil {
		t.Error("deck must start at slide 1")
	}
	if err := ValidateDeck([]api.Slide{{SlideNumber: 1}, {SlideNumber: 1}}); err == nil {
		t.Error("slide numbers must be strictly increasing")
	}
	if err := ValidateDeck(deck(3)); err != nil {
		t.Errorf("valid deck rejected: %v", err)
	}
}

func TestPlaySpeaksCurrentSlide(t *testing.T) {
	n := &scriptedNarrator{}
	p, err := NewPlayer(deck(3), n, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if p.Playing() {
		t.Fatal("player must start paused")
	}
	p.Play()
	if !p.Playing() {
		t.Fatal("Play did not start playback")
	}
	if got := n.utterances(); len(got) != 1 || got[0] != "alpha beta gamma" {
		t.Errorf("utterances = %v", got)
	}

	n.fireWord(2)
	if p.Progress() != 2 {
		t.Errorf("Progress = %d, want 2", p.Progress())
	}
}

func TestPauseDropsStaleBoundaries(t *testing.T) {
	n := &scriptedNarrator{}
	p, err := NewPlayer(deck(2), n, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	p.Play()
	n.fireWord(1)
	p.Pause()

	// A boundary from the cancelled utterance arrives late.
	n.fireWord(2)
	if p.Progress() != 1 {
		t.Errorf("Progress = %d after stale boundary, want 1", p.Progress())
	}

	// A stale end event must not schedule an advance either.
	n.fireEnd()
	time.Sleep(advancePause + 100*time.Millisecond)
	if idx, _ := p.Index(); idx != 0 {
		t.Errorf("slide advanced after pause, index = %d", idx)
	}
}

func TestAutoAdvanceAfterNarrationEnds(t *testing.T) {
	n := &scriptedNarrator{}
	p, err := NewPlayer(deck(2), n, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	p.Play()
	n.fireEnd()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if idx, _ := p.Index(); idx == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if idx, _ := p.Index(); idx != 1 {
		t.Fatalf("auto-advance did not move to slide 2")
	}
	// The new slide is spoken automatically.
	if got := n.utterances(); len(got) != 2 {
		t.Errorf("utterances = %d, want 2", len(got))
	}
}

func TestPlaybackStopsAtLastSlide(t *testing.T) {
	n := &scriptedNarrator{}
	p, err := NewPlayer(deck(1), n, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	p.Play()
	n.fireEnd()
	if p.Playing() {
		t.Error("playback should stop after the last slide's narration")
	}
	if idx, total := p.Index(); idx != 0 || total != 1 {
		t.Errorf("Index = %d/%d, want 0/1", idx, total)
	}
}

func TestSeekBoundsAndRespeak(t *testing.T) {
	n := &scriptedNarrator{}
	p, err := NewPlayer(deck(3), n, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	p.Prev() // at first slide: no-op
	if idx, _ := p.Index(); idx != 0 {
		t.Errorf("Prev at start moved to %d", idx)
	}

	p.Play()
	n.fireWord(2)
	p.Next()
	if idx, _ := p.Index(); idx != 1 {
		t.Errorf("Next moved to %d, want 1", idx)
	}
	if p.Progress() != 0 {
		t.Errorf("Progress = %d after seek, want reset to 0", p.Progress())
	}
	if got := n.utterances(); len(got) != 2 {
		t.Errorf("seek while playing should re-speak, utterances = %d", len(got))
	}

	p.Next()
	p.Next() // past the end: no-op
	if idx, _ := p.Index(); idx != 2 {
		t.Errorf("Next past end moved to %d", idx)
	}
}

func TestMuteKeepsPlaying(t *testing.T) {
	n := &scriptedNarrator{}
	p, err := NewPlayer(deck(2), n, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	p.Play()
	p.ToggleMute()
	if !p.Muted() {
		t.Error("mute flag not set")
	}
	if !p.Playing() {
		t.Error("mute must not pause playback")
	}
}

func TestCloseSilencesEverything(t *testing.T) {
	n := &scriptedNarrator{}
	p, err := NewPlayer(deck(2), n, nil)
	if err != nil {
		t.Fatal(err)
	}
	p.Play()
	p.Close()

	n.fireWord(1)
	if p.Progress() != 0 {
		t.Errorf("Progress mutated after close")
	}
	p.Play()
	if p.Playing() {
		t.Error("closed player must not restart")
	}
}
