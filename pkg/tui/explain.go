package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naviya/naviya/internal/api"
	"github.com/naviya/naviya/internal/explainer"
	"github.com/naviya/naviya/internal/theme"
)

// playerChangedMsg signals a narration or navigation change from the
// player's callback goroutines.
type playerChangedMsg struct{}

// ExplainModel is the Bubble Tea model for the explainer player.
type ExplainModel struct {
	Player  *explainer.Player
	Topic   string
	Palette theme.Palette

	Width  int
	Height int

	changes chan struct{}
	done    bool
}

// NewExplainModel builds the player over a validated deck and starts
// it paused on slide 1.
func NewExplainModel(slides []api.Slide, narrator explainer.Narrator, topic string, mode theme.Mode) (*ExplainModel, error) {
	m := &ExplainModel{
		Topic:   topic,
		Palette: theme.PaletteFor(mode),
		changes: make(chan struct{}, 8),
	}
	p, err := explainer.NewPlayer(slides, narrator, func() {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	m.Player = p
	return m, nil
}

// Init implements tea.Model. Playback starts immediately.
func (m *ExplainModel) Init() tea.Cmd {
	m.Player.Play()
	return m.waitForChange()
}

// Update implements tea.Model.
func (m *ExplainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.done = true
			m.Player.Close()
			return m, tea.Quit
		case "p":
			m.Player.TogglePlay()
		case "m":
			m.Player.ToggleMute()
		case " ", "right", "l", "n":
			m.Player.Next()
		case "left", "h", "b":
			m.Player.Prev()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case playerChangedMsg:
		return m, m.waitForChange()
	}
	return m, nil
}

// View implements tea.Model.
func (m *ExplainModel) View() string {
	if m.done {
		return ""
	}

	slide := m.Player.Slide()
	idx, total := m.Player.Index()
	pal := m.Palette

	var b strings.Builder
	b.WriteString(pal.Title.Render(fmt.Sprintf("Explainer · %s", m.Topic)))
	b.WriteString(pal.Dim.Render(fmt.Sprintf("  slide %d/%d", idx+1, total)))
	b.WriteString("\n\n")

	var body strings.Builder
	body.WriteString(pal.Title.Render(slide.Title))
	body.WriteString("\n")
	if slide.Subtitle != "" {
		body.WriteString(pal.Dim.Render(slide.Subtitle))
		body.WriteString("\n")
	}
	for _, sec := range slide.Sections {
		body.WriteString("\n")
		body.WriteString(lipgloss.NewStyle().Bold(true).Render(sec.Heading))
		body.WriteString("\n")
		for _, bullet := range sec.Bullets {
			body.WriteString("  • " + bullet + "\n")
		}
	}
	if slide.KeyTakeaway != "" {
		body.WriteString("\n" + pal.Unlocked.Render("→ "+slide.KeyTakeaway) + "\n")
	}
	b.WriteString(pal.Panel.Render(body.String()))
	b.WriteString("\n\n")

	b.WriteString(m.renderNarration(slide))
	b.WriteString("\n\n")
	b.WriteString(pal.Dim.Render(m.statusLine()))
	return b.String()
}

// renderNarration highlights the words narration has already spoken.
func (m *ExplainModel) renderNarration(slide api.Slide) string {
	words := strings.Fields(slide.Narration)
	if len(words) == 0 {
		return ""
	}
	spoken := m.Player.Progress()
	if spoken > len(words) {
		spoken = len(words)
	}
	pal := m.Palette
	parts := make([]string, 0, 2)
	if spoken > 0 {
		parts = append(parts, pal.Unlocked.Render(strings.Join(words[:spoken], " ")))
	}
	if spoken < len(words) {
		parts = append(parts, pal.Dim.Render(strings.Join(words[spoken:], " ")))
	}
	return strings.Join(parts, " ")
}

func (m *ExplainModel) statusLine() string {
	state := "paused"
	if m.Player.Playing() {
		state = "playing"
	}
	mute := ""
	if m.Player.Muted() {
		mute = " · muted"
	}
	return fmt.Sprintf("%s%s  ·  space/→ next · p play/pause · m mute · q quit", state, mute)
}

func (m *ExplainModel) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.changes
		return playerChangedMsg{}
	}
}
