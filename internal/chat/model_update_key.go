package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ravel-chat/ravel/internal/modes"
)

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}
	for _, k := range translateKey(msg) {
		if !m.ctrl.Handle(k) {
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// translateKey maps a terminal key message onto the controller's key type.
// Pasted text arrives as one KeyRunes message and fans out to one key per
// rune; keys the controller has no name for are dropped.
func translateKey(msg tea.KeyMsg) []modes.Key {
	switch msg.Type {
	case tea.KeyRunes:
		out := make([]modes.Key, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			out = append(out, modes.Rune(r))
		}
		return out
	case tea.KeySpace:
		return []modes.Key{modes.Rune(' ')}
	case tea.KeyEnter:
		return []modes.Key{modes.Enter}
	case tea.KeyEsc:
		return []modes.Key{modes.Esc}
	case tea.KeyBackspace:
		return []modes.Key{modes.Backspace}
	case tea.KeyLeft:
		return []modes.Key{modes.Left}
	case tea.KeyRight:
		return []modes.Key{modes.Right}
	case tea.KeyUp:
		return []modes.Key{modes.Up}
	case tea.KeyDown:
		return []modes.Key{modes.Down}
	case tea.KeyCtrlD:
		return []modes.Key{modes.CtrlD}
	}
	return nil
}
