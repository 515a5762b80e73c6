package onboarding

import (
	"slices"
	"testing"

	"github.com/naviya/naviya/internal/store"
)

func newTestGuide(t *testing.T) (*Guide, *store.Store) {
	t.Helper()
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	g, err := Load(s, "u1")
	if err != nil {
		t.Fatalf("load guide: %v", err)
	}
	return g, s
}

func TestFirstTimeUserSeesWelcome(t *testing.T) {
	g, _ := newTestGuide(t)
	if !g.FirstTime() {
		t.Error("fresh record should be first-time")
	}
	if g.Running() {
		t.Error("tour should not be running before start")
	}
}

func TestStartGuideBeginsAtFirstStep(t *testing.T) {
	g, _ := newTestGuide(t)
	if err := g.StartGuide(); err != nil {
		t.Fatal(err)
	}
	rec := g.Record()
	if rec.CurrentStep != StepResume {
		t.Errorf("CurrentStep = %q, want %q", rec.CurrentStep, StepResume)
	}
	if g.FirstTime() {
		t.Error("welcome card should be gone after start")
	}
	if !g.Running() {
		t.Error("tour should be running")
	}
	if rec.StartedAt == nil {
		t.Error("StartedAt not stamped")
	}
}

func TestCompleteStepsInOrder(t *testing.T) {
	g, _ := newTestGuide(t)
	g.StartGuide()

	order := Steps()
	for i, s := range order {
		if err := g.CompleteStep(s); err != nil {
			t.Fatalf("complete %q: %v", s, err)
		}
		rec := g.Record()
		if i < len(order)-1 {
			if rec.CurrentStep != order[i+1] {
				t.Errorf("after %q CurrentStep = %q, want %q", s, rec.CurrentStep, order[i+1])
			}
		}
	}

	rec := g.Record()
	if !rec.Completed || rec.CurrentStep != "" {
		t.Errorf("tour should be complete with no current step, got %+v", rec)
	}
	if rec.CompletedAt == nil {
		t.Error("CompletedAt not stamped")
	}
}

func TestCompleteStepIdempotent(t *testing.T) {
	g, _ := newTestGuide(t)
	g.StartGuide()

	g.CompleteStep(StepResume)
	g.CompleteStep(StepResume)

	rec := g.Record()
	count := 0
	for _, s := range rec.CompletedSteps {
		if s == StepResume {
			count++
		}
	}
	if count != 1 {
		t.Errorf("resume recorded %d times, want 1", count)
	}
}

func TestSkipMarksBothLists(t *testing.T) {
	g, _ := newTestGuide(t)
	g.StartGuide()

	if err := g.SkipStep(StepResume); err != nil {
		t.Fatal(err)
	}
	if err := g.SkipStep(StepResume); err != nil {
		t.Fatal(err)
	}

	rec := g.Record()
	if !slices.Contains(rec.SkippedSteps, StepResume) {
		t.Error("skip not recorded in SkippedSteps")
	}
	if !slices.Contains(rec.CompletedSteps, StepResume) {
		t.Error("skip must also advance progression via CompletedSteps")
	}
	if len(rec.SkippedSteps) != 1 || len(rec.CompletedSteps) != 1 {
		t.Errorf("skip not idempotent: %+v", rec)
	}
	if rec.CurrentStep != StepCareerGoal {
		t.Errorf("CurrentStep = %q, want %q", rec.CurrentStep, StepCareerGoal)
	}
}

func TestUnknownStepRejected(t *testing.T) {
	g, _ := newTestGuide(t)
	g.StartGuide()
	if err := g.CompleteStep("bogus"); err == nil {
		t.Error("unknown step should be rejected")
	}
	if err := g.SkipStep("bogus"); err == nil {
		t.Error("unknown step should be rejected")
	}
}

func TestDismissAndReopen(t *testing.T) {
	g, _ := newTestGuide(t)
	g.StartGuide()
	g.CompleteStep(StepResume)

	if err := g.DismissGuide(); err != nil {
		t.Fatal(err)
	}
	if g.Running() {
		t.Error("dismissed tour should not be running")
	}

	// Completing work while dismissed still advances the record.
	g.CompleteStep(StepCareerGoal)
	if rec := g.Record(); rec.CurrentStep != "" {
		t.Errorf("dismissed tour should carry no current step, got %q", rec.CurrentStep)
	}

	if err := g.ReopenGuide(); err != nil {
		t.Fatal(err)
	}
	if rec := g.Record(); rec.CurrentStep != StepAgents {
		t.Errorf("reopen should resume at first incomplete step, got %q", rec.CurrentStep)
	}
}

func TestPersistsAcrossLoads(t *testing.T) {
	g, s := newTestGuide(t)
	g.StartGuide()
	g.CompleteStep(StepResume)
	g.MarkTooltipShown("roadmap-hint")

	g2, err := Load(s, "u1")
	if err != nil {
		t.Fatal(err)
	}
	rec := g2.Record()
	if !slices.Contains(rec.CompletedSteps, StepResume) {
		t.Error("completed steps lost across load")
	}
	if rec.CurrentStep != StepCareerGoal {
		t.Errorf("CurrentStep = %q after reload, want %q", rec.CurrentStep, StepCareerGoal)
	}
	if !g2.TooltipShown("roadmap-hint") {
		t.Error("tooltip record lost across load")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// A minimal record written by an older build: missing fields take
	// first-time defaults, and invariants are repaired.
	s.Set(store.KeyOnboardingPrefix+"u1", `{"started":true,"completedSteps":["resume","career-goal","agents","roadmap"]}`)

	g, err := Load(s, "u1")
	if err != nil {
		t.Fatal(err)
	}
	rec := g.Record()
	if !rec.Completed {
		t.Error("all steps done should normalize to completed")
	}
	if rec.CurrentStep != "" {
		t.Errorf("completed tour should carry no current step, got %q", rec.CurrentStep)
	}
}

func TestEmptyUserIDNeverPersists(t *testing.T) {
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	g, err := Load(s, "")
	if err != nil {
		t.Fatal(err)
	}
	if g.FirstTime() {
		t.Error("anonymous guide should use returning-user defaults")
	}
	if err := g.StartGuide(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(store.KeyOnboardingPrefix); ok {
		t.Error("anonymous guide must not write to the store")
	}
}

func TestReset(t *testing.T) {
	g, s := newTestGuide(t)
	g.StartGuide()
	g.CompleteStep(StepResume)

	if err := g.Reset(); err != nil {
		t.Fatal(err)
	}
	if !g.FirstTime() {
		t.Error("reset should return to first-time state")
	}
	if _, ok, _ := s.Get(store.KeyOnboardingPrefix + "u1"); ok {
		t.Error("reset should delete the stored record")
	}
}
