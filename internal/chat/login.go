package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ravel-chat/ravel/internal/auth"
	"github.com/ravel-chat/ravel/internal/client"
	"github.com/ravel-chat/ravel/internal/textbuf"
)

var (
	loginTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	loginErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	loginDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	loginMaskRune   = '•'
)

// ErrLoginAborted reports that the user quit the negotiation.
var ErrLoginAborted = errors.New("login aborted")

// RunLogin walks the server's login steps interactively and returns the
// minted session. The negotiator is driven synchronously from the update
// loop; each step transition is one short remote call.
func RunLogin(ctx context.Context, api client.AuthAPI) (*client.Session, error) {
	neg := auth.New(api)
	if err := neg.Begin(ctx); err != nil {
		return nil, err
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := &loginModel{ctx: ctx, neg: neg, spin: sp}
	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return nil, err
	}
	if m.aborted {
		return nil, ErrLoginAborted
	}
	if neg.Session() == nil {
		return nil, errors.New("login ended without a session")
	}
	return neg.Session(), nil
}

type loginModel struct {
	ctx     context.Context
	neg     *auth.Negotiator
	spin    spinner.Model
	errLine string
	aborted bool
}

func (m *loginModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m *loginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *loginModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.aborted = true
		return m, tea.Quit
	}
	m.errLine = ""
	switch {
	case m.neg.Choice() != nil:
		m.choiceKey(msg)
	case m.neg.Form() != nil:
		m.formKey(msg)
	case m.neg.Waiting() != nil:
		m.waitKey(msg)
	}
	if m.neg.Done() {
		return m, tea.Quit
	}
	return m, nil
}

func (m *loginModel) choiceKey(msg tea.KeyMsg) {
	c := m.neg.Choice()
	switch {
	case keyIs(msg, 'j') || msg.Type == tea.KeyDown:
		if c.Sel < len(c.Options)-1 {
			c.Sel++
		}
	case keyIs(msg, 'k') || msg.Type == tea.KeyUp:
		if c.Sel > 0 {
			c.Sel--
		}
	case msg.Type == tea.KeyEnter:
		m.step(m.neg.SubmitChoice(m.ctx))
	case keyIs(msg, 'b'):
		m.step(m.neg.Back(m.ctx))
	case keyIs(msg, 'q') || msg.Type == tea.KeyEsc:
		m.aborted = true
		m.neg.Abort()
	}
}

func (m *loginModel) formKey(msg tea.KeyMsg) {
	f := m.neg.Form()
	if f.Editing {
		m.formEditKey(msg, f)
		return
	}
	switch {
	case keyIs(msg, 'j') || msg.Type == tea.KeyDown:
		f.SelectNext()
	case keyIs(msg, 'k') || msg.Type == tea.KeyUp:
		f.SelectPrev()
	case msg.Type == tea.KeyEnter || keyIs(msg, 'i'):
		f.Editing = true
	case keyIs(msg, 's'):
		m.step(m.neg.SubmitForm(m.ctx))
	case keyIs(msg, 'b'):
		m.step(m.neg.Back(m.ctx))
	case keyIs(msg, 'q') || msg.Type == tea.KeyEsc:
		m.aborted = true
		m.neg.Abort()
	}
}

func (m *loginModel) formEditKey(msg tea.KeyMsg, f *auth.Form) {
	buf := f.SelectedBuffer()
	switch msg.Type {
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			buf.Insert(r)
		}
	case tea.KeySpace:
		buf.Insert(' ')
	case tea.KeyBackspace:
		buf.Backspace()
	case tea.KeyLeft:
		buf.MoveLeft()
	case tea.KeyRight:
		buf.MoveRight()
	case tea.KeyEsc:
		f.Editing = false
	case tea.KeyEnter:
		// Move on; submitting happens from navigation with s.
		f.Editing = false
		if !f.SelectNext() {
			m.step(m.neg.SubmitForm(m.ctx))
		} else {
			f.Editing = true
		}
	}
}

func (m *loginModel) waitKey(msg tea.KeyMsg) {
	switch {
	case keyIs(msg, 'b'):
		m.step(m.neg.Back(m.ctx))
	case keyIs(msg, 'q') || msg.Type == tea.KeyEsc:
		m.aborted = true
		m.neg.Abort()
	}
}

// step records a transition error on the error line. Validation failures keep
// the form on screen; anything else also stays put per the step protocol.
func (m *loginModel) step(err error) {
	if err != nil {
		m.errLine = err.Error()
	}
}

func keyIs(msg tea.KeyMsg, r rune) bool {
	return msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && msg.Runes[0] == r
}

func (m *loginModel) View() string {
	var b strings.Builder
	switch {
	case m.neg.Choice() != nil:
		c := m.neg.Choice()
		b.WriteString(loginTitleStyle.Render(c.Title) + "\n\n")
		for i, opt := range c.Options {
			marker := "  "
			if i == c.Sel {
				marker = "> "
			}
			b.WriteString(marker + opt + "\n")
		}
		b.WriteString("\n" + m.hints("j/k select · enter confirm"))
	case m.neg.Form() != nil:
		b.WriteString(m.viewForm())
	case m.neg.Waiting() != nil:
		w := m.neg.Waiting()
		b.WriteString(loginTitleStyle.Render(w.Title) + "\n\n")
		b.WriteString(m.spin.View() + " " + w.Description + "\n\n")
		b.WriteString(m.hints(""))
	default:
		return ""
	}
	if m.errLine != "" {
		b.WriteString("\n" + loginErrStyle.Render(m.errLine))
	}
	return b.String() + "\n"
}

func (m *loginModel) viewForm() string {
	f := m.neg.Form()
	var b strings.Builder
	b.WriteString(loginTitleStyle.Render(f.Title) + "\n\n")
	for i := range f.Fields {
		fld := &f.Fields[i]
		b.WriteString(formLine(fld.Spec.Name, &fld.Buf, masked(fld.Spec.Kind),
			f.FieldSel == i && !f.ConfirmSel, f.Editing))
		if fld.HasConfirm() {
			b.WriteString(formLine("confirm "+fld.Spec.Name, &fld.Confirm, true,
				f.FieldSel == i && f.ConfirmSel, f.Editing))
		}
	}
	hint := "j/k field · enter edit · s submit"
	if f.Editing {
		hint = "esc done · enter next field"
	}
	b.WriteString("\n" + m.hints(hint))
	return b.String()
}

func formLine(label string, buf *textbuf.Buffer, mask, selected, editing bool) string {
	value := buf.String()
	if mask {
		value = strings.Repeat(string(loginMaskRune), len([]rune(value)))
	}
	marker := "  "
	if selected {
		marker = "> "
		if editing {
			if mask {
				// Cursor sits at the end of the masked run.
				value += cursorStyle.Render(" ")
			} else {
				value = renderBuffer(buf, true)
			}
		}
	}
	return fmt.Sprintf("%s%-18s %s\n", marker, label+":", value)
}

func masked(kind client.FieldKind) bool {
	return kind == client.FieldPassword || kind == client.FieldNewPassword
}

func (m *loginModel) hints(extra string) string {
	parts := []string{}
	if extra != "" {
		parts = append(parts, extra)
	}
	if m.neg.CanGoBack() {
		parts = append(parts, "b back")
	}
	parts = append(parts, "q quit")
	return loginDimStyle.Render(strings.Join(parts, " · "))
}
