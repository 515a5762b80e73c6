package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/naviya/naviya/internal/features"
	"github.com/naviya/naviya/internal/onboarding"
	"github.com/naviya/naviya/internal/telemetry"
)

// MinWidth is the minimum terminal width for the full layout.
const MinWidth = 60

// render draws the complete dashboard view.
func (m *Model) render() string {
	if m.Width == 0 || m.Height == 0 {
		return "Loading..."
	}
	if m.Width < MinWidth {
		return "naviya dashboard (resize for full view)\n"
	}
	if m.ShowHelp {
		return m.renderHelp()
	}

	sections := []string{
		m.renderHeader(),
		m.renderFeatures(),
		m.renderActivity(),
	}
	if m.ChatOpen {
		sections = append(sections, m.renderChat())
	}
	if toasts := m.renderToasts(); toasts != "" {
		sections = append(sections, toasts)
	}
	sections = append(sections, m.renderFooter())

	base := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.Guide != nil && (m.Guide.FirstTime() || m.Guide.Running()) {
		overlay := m.renderTour()
		return lipgloss.JoinVertical(lipgloss.Left, base, overlay)
	}
	return base
}

// renderHeader shows who is signed in and where they are in the lattice.
func (m *Model) renderHeader() string {
	st := m.Engine.State()

	name := m.User.Name
	if name == "" {
		name = m.User.Email
	}
	if name == "" {
		name = m.User.ID
	}

	var right string
	switch {
	case m.Engine.Loading():
		right = m.Palette.Dim.Render("loading…")
	case m.Engine.Err() != "":
		right = lipgloss.NewStyle().Foreground(m.Palette.Danger).Render("offline — showing last known state")
	case st != nil:
		right = m.Palette.Dim.Render(fmt.Sprintf("phase: %s · %d/4 unlocked", st.CurrentPhase, st.FeaturesUnlocked))
	}

	line := m.Palette.Title.Render("NAVIYA") + "  " + name
	if m.flash != "" {
		line += "  " + lipgloss.NewStyle().Foreground(m.Palette.Success).Render(m.flash)
	}
	gap := m.Width - lipgloss.Width(line) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return line + strings.Repeat(" ", gap) + right
}

// renderFeatures draws the unlock lattice in presentation order.
func (m *Model) renderFeatures() string {
	var rows []string
	for _, f := range features.All() {
		if m.Engine.CanAccess(f.Key) {
			rows = append(rows, m.Palette.Unlocked.Render("● "+f.Title))
			continue
		}
		line := m.Palette.Locked.Render("○ " + f.Title)
		if f.LockReason != "" {
			line += " " + m.Palette.Dim.Render("— "+f.LockReason)
		}
		rows = append(rows, line)
	}
	body := strings.Join(rows, "\n")
	return m.Palette.Panel.Width(m.Width - 2).Render(
		m.Palette.Title.Render("Features") + "\n" + body)
}

// renderActivity draws the recent agent activity feed.
func (m *Model) renderActivity() string {
	limit := 6
	var rows []string
	for i, a := range m.Activities {
		if i >= limit {
			break
		}
		rows = append(rows, fmt.Sprintf("%s %s  %s",
			m.Palette.Dim.Render(shortTime(a.CreatedAt)),
			m.Palette.Title.Render(a.AgentName),
			a.Summary))
	}
	if len(rows) == 0 {
		rows = append(rows, m.Palette.Dim.Render("No agent activity yet."))
	}
	return m.Palette.Panel.Width(m.Width - 2).Render(
		m.Palette.Title.Render("Agent activity") + "\n" + strings.Join(rows, "\n"))
}

// renderToasts draws the telemetry cards with their countdown.
func (m *Model) renderToasts() string {
	if len(m.Toasts) == 0 {
		return ""
	}
	var cards []string
	for _, t := range m.Toasts {
		cards = append(cards, m.renderToast(t))
	}
	return lipgloss.JoinVertical(lipgloss.Right, cards...)
}

func (m *Model) renderToast(t telemetry.Trace) string {
	status := t.Status
	style := m.Palette.Dim
	if status == "error" {
		style = lipgloss.NewStyle().Foreground(m.Palette.Danger)
	}
	head := fmt.Sprintf("%s · %s", t.Agent, t.Label)
	meta := fmt.Sprintf("%s %.0fms · %d tok", t.Model, t.LatencyMs, t.TotalTokens)
	remaining, _ := t.Remaining(time.Now(), telemetry.TTL)
	bar := countdownBar(remaining, telemetry.TTL, 20)
	return m.Palette.Toast.Render(strings.Join([]string{
		m.Palette.Title.Render(head),
		style.Render(status) + " " + m.Palette.Dim.Render(meta),
		m.Palette.Dim.Render(bar),
	}, "\n"))
}

// countdownBar renders the remaining fraction of the toast lifetime.
func countdownBar(remaining, total time.Duration, width int) string {
	if total <= 0 {
		return ""
	}
	filled := int(float64(width) * float64(remaining) / float64(total))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
}

// renderTour draws the welcome card or the current tour step.
func (m *Model) renderTour() string {
	if m.Guide.FirstTime() {
		return m.Palette.Panel.Width(m.Width-2).Render(strings.Join([]string{
			m.Palette.Title.Render("Welcome to NAVIYA"),
			"A quick tour will walk you through your first steps.",
			m.Palette.Dim.Render("[enter] start tour    [esc] not now"),
		}, "\n"))
	}

	rec := m.Guide.Record()
	steps := onboarding.Steps()
	var dots []string
	for _, s := range steps {
		switch {
		case contains(rec.CompletedSteps, s):
			dots = append(dots, m.Palette.Unlocked.Render("[x]"))
		case s == rec.CurrentStep:
			dots = append(dots, m.Palette.Title.Render("[>]"))
		default:
			dots = append(dots, m.Palette.Dim.Render("[ ]"))
		}
	}

	return m.Palette.Panel.Width(m.Width-2).Render(strings.Join([]string{
		m.Palette.Title.Render("Getting started: ") + stepTitle(rec.CurrentStep),
		stepHint(rec.CurrentStep),
		strings.Join(dots, " "),
		m.Palette.Dim.Render("[enter] done    [s] skip    [esc] hide tour"),
	}, "\n"))
}

func (m *Model) renderHelp() string {
	rows := []string{
		m.Palette.Title.Render("naviya dashboard keys"),
		"",
		"  r        refresh state",
		"  c        chat with your mentor",
		"  t        toggle theme",
		"  o        reopen tour",
		"  x        dismiss oldest toast",
		"  ?        toggle this help",
		"  q        quit",
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderFooter() string {
	return m.Palette.Dim.Render("r refresh · c mentor · t theme · ? help · q quit")
}

func stepTitle(s onboarding.Step) string {
	switch s {
	case onboarding.StepResume:
		return "Upload your resume"
	case onboarding.StepCareerGoal:
		return "Set a career goal"
	case onboarding.StepAgents:
		return "Meet your agents"
	case onboarding.StepRoadmap:
		return "Explore your roadmap"
	default:
		return ""
	}
}

func stepHint(s onboarding.Step) string {
	switch s {
	case onboarding.StepResume:
		return "Run `naviya resume upload <file>` to unlock analysis."
	case onboarding.StepCareerGoal:
		return "Run `naviya skills gap <role>` to set your target."
	case onboarding.StepAgents:
		return "Watch the agent activity panel as analyses complete."
	case onboarding.StepRoadmap:
		return "Run `naviya roadmap generate` once your goal is set."
	default:
		return ""
	}
}

func contains(list []onboarding.Step, s onboarding.Step) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// shortTime trims a backend timestamp to something feed-sized.
func shortTime(ts string) string {
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.Local().Format("15:04")
	}
	if len(ts) > 16 {
		return ts[11:16]
	}
	return ts
}
