// Package dashboard maintains the per-user progression state that
// gates every feature in the client. It merges a REST snapshot with a
// realtime change stream and exposes pure access predicates.
package dashboard

import (
	"time"

	"github.com/naviya/naviya/internal/features"
)

// State is the unlock-lattice record for one user. The backend is
// authoritative for the readiness flags; the client never derives them
// from other signals.
type State struct {
	UserID       string  `json:"user_id"`
	CurrentPhase string  `json:"current_phase"`
	Domain       *string `json:"domain"`

	MentorReady    bool `json:"mentor_ready"`
	ResumeReady    bool `json:"resume_ready"`
	RoadmapReady   bool `json:"roadmap_ready"`
	SkillEvalReady bool `json:"skill_eval_ready"`
	InterviewReady bool `json:"interview_ready"`

	FeaturesUnlocked   int        `json:"features_unlocked"`
	LastUpdatedByAgent *string    `json:"last_updated_by_agent"`
	UpdatedAt          *time.Time `json:"updated_at"`
}

// DefaultState is the record adopted for a user the backend has never
// seen: only the mentor is open and the phase is onboarding.
func DefaultState(userID string) *State {
	return &State{
		UserID:       userID,
		CurrentPhase: "onboarding",
		MentorReady:  true,
	}
}

// FlagFor returns the readiness flag backing the given feature.
// Unknown features are locked.
func (s *State) FlagFor(f features.Key) bool {
	switch f {
	case features.Mentor:
		return s.MentorReady
	case features.ResumeAnalysis:
		return s.ResumeReady
	case features.Roadmap:
		return s.RoadmapReady
	case features.SkillAssessment:
		return s.SkillEvalReady
	case features.MockInterview:
		return s.InterviewReady
	default:
		return false
	}
}

// CountUnlocked recomputes the derived features_unlocked count: the
// four flags that count toward 4-of-5 progression. Mentor is always on
// and excluded.
func (s *State) CountUnlocked() int {
	n := 0
	for _, on := range []bool{s.ResumeReady, s.RoadmapReady, s.SkillEvalReady, s.InterviewReady} {
		if on {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so listeners can hold previous/current
// pairs without aliasing the engine's record.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	if s.Domain != nil {
		d := *s.Domain
		out.Domain = &d
	}
	if s.LastUpdatedByAgent != nil {
		a := *s.LastUpdatedByAgent
		out.LastUpdatedByAgent = &a
	}
	if s.UpdatedAt != nil {
		t := *s.UpdatedAt
		out.UpdatedAt = &t
	}
	return &out
}
