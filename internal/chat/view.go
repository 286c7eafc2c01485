package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/ravel-chat/ravel/internal/store"
	"github.com/ravel-chat/ravel/internal/textbuf"
	"github.com/ravel-chat/ravel/internal/types"
)

const sidebarWidth = 22

var (
	sidebarStyle   = lipgloss.NewStyle().Width(sidebarWidth).BorderStyle(lipgloss.NormalBorder()).BorderRight(true)
	headingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	selectionStyle = lipgloss.NewStyle().Reverse(true)
	currentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	authorStyle    = lipgloss.NewStyle().Bold(true)
	botStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	timeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	editedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	statusStyle    = lipgloss.NewStyle().Reverse(true)
	modeStyle      = lipgloss.NewStyle().Bold(true).Reverse(true)
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	cursorStyle    = lipgloss.NewStyle().Reverse(true)
)

// View implements tea.Model. It reads the shared state under a read lock
// acquired fresh for this frame and never held across anything blocking.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}
	m.state.RLock()
	defer m.state.RUnlock()

	mainWidth := m.width - sidebarWidth - 1
	if mainWidth < 10 {
		mainWidth = 10
	}
	bodyHeight := m.height - 2 // input line and status line

	sidebar := m.renderSidebar(bodyHeight)
	messages := m.renderMessages(mainWidth, bodyHeight)
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, messages)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body),
		m.renderInputLine(),
		m.renderStatusLine(),
	)
}

func (m *Model) renderSidebar(height int) string {
	s := m.state
	var b strings.Builder
	b.WriteString(headingStyle.Render("guilds") + "\n")
	for i, gid := range s.GuildIDs {
		g := s.Guilds[gid]
		name := fmt.Sprintf("guild-%d", gid)
		if g != nil && g.Name != "" {
			name = g.Name
		}
		name = runewidth.Truncate(name, sidebarWidth-3, "…")
		line := "  " + name
		if s.CurrentGuild != nil && *s.CurrentGuild == gid {
			line = currentStyle.Render("» " + name)
		}
		if (s.Mode == store.ModeGuildSelect || s.Mode == store.ModeGuildLeaveConfirm) &&
			s.GuildSel != nil && *s.GuildSel == i {
			line = selectionStyle.Render("  " + name)
		}
		b.WriteString(line + "\n")
	}

	if g := s.CurrentGuildRef(); g != nil {
		b.WriteString("\n" + headingStyle.Render("channels") + "\n")
		for i, cid := range g.ChannelIDs {
			ch := g.Channels[cid]
			name := runewidth.Truncate("#"+ch.Name, sidebarWidth-3, "…")
			line := "  " + name
			if g.CurrentChannel != nil && *g.CurrentChannel == cid {
				line = currentStyle.Render("» " + name)
			}
			if s.Mode == store.ModeChannelSelect && g.ChannelSel != nil && *g.ChannelSel == i {
				line = selectionStyle.Render("  " + name)
			}
			b.WriteString(line + "\n")
		}
	}
	return sidebarStyle.Height(height).MaxHeight(height).Render(b.String())
}

func (m *Model) renderMessages(width, height int) string {
	ch := m.state.CurrentChannelRef()
	if ch == nil {
		return lipgloss.NewStyle().Width(width).Render("\n  no channel open. g picks a guild, c a channel")
	}
	// The scroll offset hides that many messages below the viewport bottom.
	visible := ch.MessageIDs[:len(ch.MessageIDs)-ch.ScrollOffset]
	var lines []string
	for i, mid := range visible {
		msg := ch.Messages[mid]
		if msg == nil {
			continue
		}
		selected := m.state.Mode == store.ModeScroll && i == len(visible)-1 && ch.ScrollOffset < len(ch.MessageIDs)
		lines = append(lines, m.renderMessage(msg, width, selected))
	}
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderMessage(msg *types.Message, width int, selected bool) string {
	name := m.displayName(msg)
	nameStyle := authorStyle
	if member := m.state.Member(msg.AuthorID); member != nil && member.IsBot {
		nameStyle = botStyle
	}
	body, ok := msg.Text()
	if !ok {
		body = "[unsupported content]"
	}
	line := timeStyle.Render(msg.CreatedAt.Format("15:04")) + " " +
		nameStyle.Render(name) + " " + body
	if msg.EditedAt != nil {
		line += " " + editedStyle.Render("(edited)")
	}
	line = ansi.Truncate(line, width, "…")
	if selected {
		line = selectionStyle.Render(ansi.Strip(line))
	}
	return line
}

func (m *Model) renderInputLine() string {
	s := m.state
	switch s.Mode {
	case store.ModeCommand:
		return promptStyle.Render(":") + renderBuffer(&s.CmdInput, true)
	case store.ModeDeleteConfirm:
		return promptStyle.Render("delete message? y/n")
	case store.ModeGuildLeaveConfirm:
		return promptStyle.Render("leave guild? y/n")
	default:
		prompt := "> "
		if s.Editing != nil {
			prompt = "edit> "
		}
		focused := s.Mode == store.ModeInsert || s.Mode == store.ModeNormal
		return promptStyle.Render(prompt) + renderBuffer(&s.Input, focused)
	}
}

// renderBuffer paints buffer text with a block cursor at the byte offset.
func renderBuffer(buf *textbuf.Buffer, focused bool) string {
	text := buf.String()
	if !focused {
		return text
	}
	off := buf.ByteOffset()
	if off >= len(text) {
		return text + cursorStyle.Render(" ")
	}
	_, size := utf8.DecodeRuneInString(text[off:])
	return text[:off] + cursorStyle.Render(text[off:off+size]) + text[off+size:]
}

func (m *Model) renderStatusLine() string {
	s := m.state
	left := modeStyle.Render(" "+s.Mode.String()+" ") + " " + m.serverName
	right := m.status
	gap := m.width - ansi.StringWidth(left) - ansi.StringWidth(right) - 1
	if gap < 1 {
		right = ansi.Truncate(right, maxInt(0, m.width-ansi.StringWidth(left)-2), "…")
		gap = 1
	}
	return statusStyle.Render(left + strings.Repeat(" ", gap) + right + " ")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
