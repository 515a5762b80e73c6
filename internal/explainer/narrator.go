package explainer

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Narrator speaks one utterance at a time and reports word boundaries.
// The engine behind it is a singleton, non-reentrant resource: Speak
// implies cancelling whatever was in flight. The player calls Speak
// and Cancel from its update loop and from advance timers, so
// implementations must be safe for concurrent use.
type Narrator interface {
	// Speak starts the utterance. onWord fires with the 0-based index
	// of each word boundary; onEnd fires once when the utterance
	// finishes naturally (not when cancelled).
	Speak(text string, onWord func(index int), onEnd func())
	// Cancel stops the current utterance; its onEnd never fires.
	Cancel()
}

// PacedNarrator emits word boundaries on a fixed cadence without any
// audio backend. It stands in when no speech engine is available so
// slide timing and progress still work, just silently.
type PacedNarrator struct {
	WordsPerMinute int

	// Speak and Cancel arrive from the update loop and from
	// auto-advance timers concurrently.
	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewPacedNarrator returns a silent narrator at a spoken-word cadence.
func NewPacedNarrator() *PacedNarrator {
	return &PacedNarrator{WordsPerMinute: 160}
}

// Speak paces through the words of text.
func (n *PacedNarrator) Speak(text string, onWord func(int), onEnd func()) {
	words := strings.Fields(text)
	if len(words) == 0 {
		n.Cancel()
		if onEnd != nil {
			onEnd()
		}
		return
	}

	wpm := n.WordsPerMinute
	if wpm <= 0 {
		wpm = 160
	}
	interval := time.Minute / time.Duration(wpm)

	ctx, cancel := context.WithCancel(context.Background())
	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
	}
	n.cancel = cancel
	n.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for i := range words {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if onWord != nil {
					onWord(i)
				}
			}
		}
		select {
		case <-ctx.Done():
		default:
			if onEnd != nil {
				onEnd()
			}
		}
	}()
}

// Cancel stops the in-flight utterance.
func (n *PacedNarrator) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
}
