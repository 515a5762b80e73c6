package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naviya/naviya/internal/api"
)

// chatHistoryLimit caps how many prior turns ride along on each request.
const chatHistoryLimit = 10

// mentorReplyMsg carries the mentor's answer back into the update loop.
type mentorReplyMsg struct {
	reply string
	err   error
}

// openChat focuses the mentor input pane.
func (m *Model) openChat() tea.Cmd {
	ti := textinput.New()
	ti.Placeholder = "Ask your mentor"
	ti.Prompt = "> "
	ti.Width = 60
	ti.CharLimit = 500
	ti.Focus()
	m.ChatInput = ti
	m.ChatOpen = true
	return textinput.Blink
}

// handleChatKey processes key input while the chat pane is open.
func (m *Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ChatOpen = false
		m.ChatInput.Blur()
		return m, nil

	case "enter":
		text := strings.TrimSpace(m.ChatInput.Value())
		if text == "" || m.ChatBusy {
			return m, nil
		}
		m.ChatLog = append(m.ChatLog, api.ChatTurn{Role: "user", Content: text})
		m.ChatBusy = true
		m.ChatInput.SetValue("")
		return m, m.sendMentorMessage(text)
	}

	var cmd tea.Cmd
	m.ChatInput, cmd = m.ChatInput.Update(msg)
	return m, cmd
}

func (m *Model) sendMentorMessage(text string) tea.Cmd {
	history := m.ChatLog
	if len(history) > chatHistoryLimit {
		history = history[len(history)-chatHistoryLimit:]
	}
	req := api.MentorChatRequest{
		UserID:  m.User.ID,
		Message: text,
		History: history,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		resp, err := m.Client.MentorChat(ctx, req)
		if err != nil {
			return mentorReplyMsg{err: err}
		}
		return mentorReplyMsg{reply: resp.Reply}
	}
}

// renderChat draws the mentor conversation pane.
func (m *Model) renderChat() string {
	var rows []string
	start := 0
	if len(m.ChatLog) > 6 {
		start = len(m.ChatLog) - 6
	}
	for _, turn := range m.ChatLog[start:] {
		label := m.Palette.Title.Render("you")
		if turn.Role == "assistant" {
			label = m.Palette.Unlocked.Render("mentor")
		}
		rows = append(rows, label+"  "+turn.Content)
	}
	if m.ChatBusy {
		rows = append(rows, m.Palette.Dim.Render("mentor is thinking…"))
	}
	rows = append(rows, m.ChatInput.View())
	rows = append(rows, m.Palette.Dim.Render("[enter] send    [esc] close"))
	return m.Palette.Panel.Width(m.Width - 2).Render(
		m.Palette.Title.Render("AI Mentor") + "\n" + strings.Join(rows, "\n"))
}
