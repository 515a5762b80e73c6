// Package features defines the closed set of gated product features
// and their presentation metadata. The mapping from feature to
// readiness flag is fixed; the dashboard engine supplies the flags.
package features

// Key identifies one gated feature.
type Key string

// The five features, in fixed presentation order.
const (
	Mentor          Key = "mentor"
	ResumeAnalysis  Key = "resume_analysis"
	Roadmap         Key = "roadmap"
	SkillAssessment Key = "skill_assessment"
	MockInterview   Key = "mock_interview"
)

// Feature carries the presentation metadata for one key.
type Feature struct {
	Key        Key
	Title      string
	Flag       string // backing readiness flag name in the state record
	LockReason string // shown on the lock panel when gated
}

var registry = []Feature{
	{Mentor, "AI Mentor", "mentor_ready", ""},
	{ResumeAnalysis, "Resume Analysis", "resume_ready", "Upload your resume first"},
	{Roadmap, "Skill Roadmap", "roadmap_ready", "Generate a roadmap from your career goal first"},
	{SkillAssessment, "Skill Assessment", "skill_eval_ready", "Complete your skill-gap analysis first"},
	{MockInterview, "Mock Interview", "interview_ready", "Finish a roadmap milestone to unlock interviews"},
}

// All returns the features in presentation order.
func All() []Feature {
	out := make([]Feature, len(registry))
	copy(out, registry)
	return out
}

// Keys returns the feature keys in presentation order.
func Keys() []Key {
	out := make([]Key, len(registry))
	for i, f := range registry {
		out[i] = f.Key
	}
	return out
}

// Lookup returns the feature for key.
func Lookup(key Key) (Feature, bool) {
	for _, f := range registry {
		if f.Key == key {
			return f, true
		}
	}
	return Feature{}, false
}
