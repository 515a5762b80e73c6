// Package onboarding is the per-user guided-tour state machine. The
// record is persisted in the local store under onboarding/<userID> and
// survives restarts; a missing record means a first-time user.
package onboarding

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/naviya/naviya/internal/store"
)

// Step identifies one tour stop.
type Step string

// Canonical step order. CurrentStep is always the first of these absent
// from CompletedSteps, or empty when the tour is done.
const (
	StepResume     Step = "resume"
	StepCareerGoal Step = "career-goal"
	StepAgents     Step = "agents"
	StepRoadmap    Step = "roadmap"
)

// Steps returns the canonical order.
func Steps() []Step {
	return []Step{StepResume, StepCareerGoal, StepAgents, StepRoadmap}
}

// Record is the persisted tour state for one user.
type Record struct {
	Started        bool       `json:"started"`
	Completed      bool       `json:"completed"`
	Dismissed      bool       `json:"dismissed"`
	ShowWelcome    bool       `json:"showWelcome"`
	CurrentStep    Step       `json:"currentStep"`
	CompletedSteps []Step     `json:"completedSteps"`
	SkippedSteps   []Step     `json:"skippedSteps"`
	ShownTooltips  []string   `json:"shownTooltips"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// firstTimeDefaults is the record for a user with nothing saved.
func firstTimeDefaults() Record {
	return Record{ShowWelcome: true}
}

// returningDefaults keeps the guide inactive when no user id is known.
func returningDefaults() Record {
	return Record{}
}

// Guide owns the tour for one user and persists every transition.
type Guide struct {
	store  *store.Store
	userID string
	rec    Record
	now    func() time.Time
}

// Load hydrates the guide for userID from the store. An empty id gives
// returning-user defaults with no persistence.
func Load(s *store.Store, userID string) (*Guide, error) {
	g := &Guide{store: s, userID: userID, now: time.Now}

	if userID == "" {
		g.rec = returningDefaults()
		return g, nil
	}

	raw, ok, err := s.Get(store.KeyOnboardingPrefix + userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		g.rec = firstTimeDefaults()
		return g, nil
	}

	// Merge the saved object over first-time defaults so fields added
	// after the record was written pick up their defaults.
	rec := firstTimeDefaults()
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("parse onboarding record: %w", err)
	}
	g.rec = rec
	g.normalize()
	return g, nil
}

// Record returns a copy of the current record.
func (g *Guide) Record() Record {
	rec := g.rec
	rec.CompletedSteps = slices.Clone(g.rec.CompletedSteps)
	rec.SkippedSteps = slices.Clone(g.rec.SkippedSteps)
	rec.ShownTooltips = slices.Clone(g.rec.ShownTooltips)
	return rec
}

// FirstTime reports whether the welcome card should show.
func (g *Guide) FirstTime() bool {
	return g.rec.ShowWelcome && !g.rec.Started
}

// Running reports whether the tour panel is active.
func (g *Guide) Running() bool {
	return g.rec.Started && !g.rec.Dismissed && !g.rec.Completed
}

// StartGuide moves firstTime to running at the first step.
func (g *Guide) StartGuide() error {
	if g.rec.Started {
		return nil
	}
	now := g.now()
	g.rec.Started = true
	g.rec.ShowWelcome = false
	g.rec.StartedAt = &now
	g.rec.CurrentStep = g.nextStep()
	return g.save()
}

// DismissGuide hides the panel; the user may reopen later.
func (g *Guide) DismissGuide() error {
	g.rec.Dismissed = true
	g.rec.CurrentStep = ""
	return g.save()
}

// ReopenGuide resumes a dismissed tour at the first incomplete step.
func (g *Guide) ReopenGuide() error {
	g.rec.Dismissed = false
	g.rec.CurrentStep = g.nextStep()
	return g.save()
}

// CompleteStep records the step and advances. Completing the last step
// completes the tour. Repeat completions are no-ops.
func (g *Guide) CompleteStep(step Step) error {
	if !slices.Contains(Steps(), step) {
		return fmt.Errorf("unknown onboarding step %q", step)
	}
	if !slices.Contains(g.rec.CompletedSteps, step) {
		g.rec.CompletedSteps = append(g.rec.CompletedSteps, step)
	}
	g.advance()
	return g.save()
}

// SkipStep marks the step skipped and completed: progression advances
// identically, but analytics can tell the difference. Idempotent.
func (g *Guide) SkipStep(step Step) error {
	if !slices.Contains(Steps(), step) {
		return fmt.Errorf("unknown onboarding step %q", step)
	}
	if !slices.Contains(g.rec.SkippedSteps, step) {
		g.rec.SkippedSteps = append(g.rec.SkippedSteps, step)
	}
	if !slices.Contains(g.rec.CompletedSteps, step) {
		g.rec.CompletedSteps = append(g.rec.CompletedSteps, step)
	}
	g.advance()
	return g.save()
}

// MarkTooltipShown records a once-per-user contextual nudge.
func (g *Guide) MarkTooltipShown(id string) error {
	if slices.Contains(g.rec.ShownTooltips, id) {
		return nil
	}
	g.rec.ShownTooltips = append(g.rec.ShownTooltips, id)
	return g.save()
}

// TooltipShown reports whether the nudge already fired for this user.
func (g *Guide) TooltipShown(id string) bool {
	return slices.Contains(g.rec.ShownTooltips, id)
}

// Reset purges the record, returning the user to first-time state.
func (g *Guide) Reset() error {
	g.rec = firstTimeDefaults()
	if g.userID == "" {
		return nil
	}
	return g.store.Delete(store.KeyOnboardingPrefix + g.userID)
}

// advance recomputes CurrentStep and the completed terminal state.
func (g *Guide) advance() {
	next := g.nextStep()
	if next == "" {
		if !g.rec.Completed {
			now := g.now()
			g.rec.Completed = true
			g.rec.CompletedAt = &now
		}
		g.rec.CurrentStep = ""
		return
	}
	g.rec.Completed = false
	if g.rec.Dismissed {
		g.rec.CurrentStep = ""
		return
	}
	g.rec.CurrentStep = next
}

// nextStep is the first canonical step not yet completed.
func (g *Guide) nextStep() Step {
	for _, s := range Steps() {
		if !slices.Contains(g.rec.CompletedSteps, s) {
			return s
		}
	}
	return ""
}

// normalize repairs invariants on load (older records may predate the
// completed/currentStep coupling).
func (g *Guide) normalize() {
	if g.nextStep() == "" {
		g.rec.Completed = true
		g.rec.CurrentStep = ""
	} else if g.rec.Completed {
		g.rec.Completed = false
	}
	if g.rec.Dismissed || g.rec.Completed {
		g.rec.CurrentStep = ""
	} else if g.rec.Started {
		g.rec.CurrentStep = g.nextStep()
	}
}

// save persists the record; skipped when no user id is bound.
func (g *Guide) save() error {
	if g.userID == "" {
		return nil
	}
	raw, err := json.Marshal(g.rec)
	if err != nil {
		return fmt.Errorf("encode onboarding record: %w", err)
	}
	return g.store.Set(store.KeyOnboardingPrefix+g.userID, string(raw))
}
