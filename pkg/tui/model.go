// Package tui is the interactive dashboard: the feature lattice, the
// agent activity feed, telemetry toasts and the onboarding tour, all
// driven by the dashboard engine's state.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naviya/naviya/internal/api"
	"github.com/naviya/naviya/internal/dashboard"
	"github.com/naviya/naviya/internal/events"
	"github.com/naviya/naviya/internal/features"
	"github.com/naviya/naviya/internal/heartbeat"
	"github.com/naviya/naviya/internal/onboarding"
	"github.com/naviya/naviya/internal/session"
	"github.com/naviya/naviya/internal/telemetry"
	"github.com/naviya/naviya/internal/theme"
)

// refreshInterval paces the activity feed and toast countdown redraws.
const refreshInterval = time.Second

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	Engine *dashboard.Engine
	Client *api.Client
	Bus    *telemetry.Bus
	Guide  *onboarding.Guide
	HB     *heartbeat.Monitor
	User   session.Identity

	Width  int
	Height int

	Palette theme.Palette
	Mode    theme.Mode

	Activities []api.Activity
	Toasts     []telemetry.Trace
	ShowHelp   bool
	Err        error

	ChatOpen  bool
	ChatBusy  bool
	ChatInput textinput.Model
	ChatLog   []api.ChatTurn

	updates chan events.StateUpdate
	unsub   func()
	flash   string // one-line banner after a realtime transition
	flashAt time.Time
}

// TickMsg triggers the periodic redraw and data refresh.
type TickMsg time.Time

// activitiesMsg carries a refreshed activity feed.
type activitiesMsg struct {
	items []api.Activity
	err   error
}

// stateUpdatedMsg forwards a dashboard-state-updated broadcast into
// the update loop.
type stateUpdatedMsg events.StateUpdate

// NewModel wires the dashboard model and subscribes to state updates.
func NewModel(engine *dashboard.Engine, client *api.Client, bus *telemetry.Bus,
	guide *onboarding.Guide, hb *heartbeat.Monitor, user session.Identity, mode theme.Mode) *Model {

	m := &Model{
		Engine:  engine,
		Client:  client,
		Bus:     bus,
		Guide:   guide,
		HB:      hb,
		User:    user,
		Mode:    mode,
		Palette: theme.PaletteFor(mode),
		updates: make(chan events.StateUpdate, 8),
	}
	m.unsub = events.Default().Subscribe(events.TopicDashboardStateUpdated, func(payload any) {
		if u, ok := payload.(events.StateUpdate); ok {
			select {
			case m.updates <- u:
			default:
			}
		}
	})
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchActivities(),
		m.scheduleTick(),
		m.waitForUpdate(),
	)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.HB != nil {
			m.HB.RecordInput()
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.HB != nil {
			m.HB.RecordInput()
		}
		return m, nil

	case tea.FocusMsg:
		if m.HB != nil {
			m.HB.SetVisible(true)
		}
		return m, nil

	case tea.BlurMsg:
		if m.HB != nil {
			m.HB.SetVisible(false)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case TickMsg:
		m.Toasts = m.Bus.Tick()
		if time.Since(m.flashAt) > 5*time.Second {
			m.flash = ""
		}
		return m, tea.Batch(m.fetchActivities(), m.scheduleTick())

	case activitiesMsg:
		if msg.err == nil {
			m.Activities = msg.items
		}
		return m, nil

	case stateUpdatedMsg:
		if msg.ChangedBy != "" {
			m.flash = msg.ChangedBy + " updated your progress"
			m.flashAt = time.Now()
		}
		return m, m.waitForUpdate()

	case mentorReplyMsg:
		m.ChatBusy = false
		if msg.err != nil {
			m.ChatLog = append(m.ChatLog, api.ChatTurn{Role: "assistant", Content: "(mentor unavailable: " + msg.err.Error() + ")"})
		} else {
			m.ChatLog = append(m.ChatLog, api.ChatTurn{Role: "assistant", Content: msg.reply})
		}
		return m, nil
	}

	// Forward everything else to the chat input so the cursor blinks.
	if m.ChatOpen {
		var cmd tea.Cmd
		m.ChatInput, cmd = m.ChatInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey processes key input.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ChatOpen {
		return m.handleChatKey(msg)
	}

	// Tour keys take precedence while the welcome card or tour is up.
	if m.Guide != nil && (m.Guide.FirstTime() || m.Guide.Running()) {
		if handled, cmd := m.handleTourKey(msg); handled {
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r":
		return m, func() tea.Msg {
			m.Engine.Refresh(context.Background())
			return nil
		}

	case "t":
		if m.Mode == theme.Dark {
			m.Mode = theme.Light
		} else {
			m.Mode = theme.Dark
		}
		m.Palette = theme.PaletteFor(m.Mode)
		return m, nil

	case "c":
		if m.Engine.CanAccess(features.Mentor) {
			return m, m.openChat()
		}
		return m, nil

	case "o":
		if m.Guide != nil && !m.Guide.Running() && !m.Guide.Record().Completed {
			_ = m.Guide.ReopenGuide()
		}
		return m, nil

	case "x":
		if len(m.Toasts) > 0 {
			m.Bus.Dismiss(m.Toasts[0].ID)
			m.Toasts = m.Bus.Traces()
		}
		return m, nil

	case "?":
		m.ShowHelp = !m.ShowHelp
		return m, nil
	}

	return m, nil
}

// handleTourKey maps keys for the onboarding overlay.
func (m *Model) handleTourKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	rec := m.Guide.Record()
	switch msg.String() {
	case "enter":
		if m.Guide.FirstTime() {
			_ = m.Guide.StartGuide()
			return true, nil
		}
		if rec.CurrentStep != "" {
			_ = m.Guide.CompleteStep(rec.CurrentStep)
			return true, nil
		}
	case "s":
		if rec.CurrentStep != "" {
			_ = m.Guide.SkipStep(rec.CurrentStep)
			return true, nil
		}
	case "esc", "d":
		if m.Guide.FirstTime() {
			_ = m.Guide.StartGuide()
			_ = m.Guide.DismissGuide()
			return true, nil
		}
		if m.Guide.Running() {
			_ = m.Guide.DismissGuide()
			return true, nil
		}
	}
	return false, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	return m.render()
}

// Close detaches the model from the event bus.
func (m *Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

func (m *Model) scheduleTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *Model) fetchActivities() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		items, err := m.Client.AgentActivities(ctx, m.User.ID)
		return activitiesMsg{items: items, err: err}
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.updates
		if !ok {
			return nil
		}
		return stateUpdatedMsg(u)
	}
}
