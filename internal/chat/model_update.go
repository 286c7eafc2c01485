package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// offlineTimeout bounds the presence flip on shutdown.
const offlineTimeout = 3 * time.Second

// refreshMsg asks for a repaint after the engine mutated the state.
type refreshMsg struct{}

// statusMsg replaces the status line.
type statusMsg struct {
	text string
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case refreshMsg:
		// State already changed under its lock; repaint happens on return.
	case statusMsg:
		m.status = msg.text
	}
	return m, nil
}
