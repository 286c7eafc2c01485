package chat

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ravel-chat/ravel/internal/modes"
	"github.com/ravel-chat/ravel/internal/textbuf"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want []modes.Key
	}{
		{"single rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'i'}}, []modes.Key{modes.Rune('i')}},
		{"pasted text fans out", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("héllo")},
			[]modes.Key{modes.Rune('h'), modes.Rune('é'), modes.Rune('l'), modes.Rune('l'), modes.Rune('o')}},
		{"space", tea.KeyMsg{Type: tea.KeySpace}, []modes.Key{modes.Rune(' ')}},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, []modes.Key{modes.Enter}},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, []modes.Key{modes.Esc}},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, []modes.Key{modes.Backspace}},
		{"arrows", tea.KeyMsg{Type: tea.KeyUp}, []modes.Key{modes.Up}},
		{"ctrl+d", tea.KeyMsg{Type: tea.KeyCtrlD}, []modes.Key{modes.CtrlD}},
		{"unnamed key dropped", tea.KeyMsg{Type: tea.KeyTab}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateKey(tt.msg)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d keys, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("key %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRenderBufferCursor(t *testing.T) {
	buf := textbuf.New("héllo")
	buf.MoveLeft()
	buf.MoveLeft()
	out := renderBuffer(&buf, true)
	if out == "héllo" {
		t.Fatal("focused buffer must paint a cursor")
	}
	if renderBuffer(&buf, false) != "héllo" {
		t.Fatal("unfocused buffer renders plain text")
	}
}
