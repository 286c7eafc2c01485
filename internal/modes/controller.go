// Package modes is the modal key-dispatch state machine. Each key press maps,
// against the current mode only, to a local mutation (cursor move, buffer
// edit, mode transition) or an outbound intent placed on the bounded queue.
package modes

import (
	"strings"

	"github.com/ravel-chat/ravel/internal/store"
	"github.com/ravel-chat/ravel/internal/types"
)

// Controller dispatches keys against the shared state. It takes the state's
// write lock for the duration of one key press and emits any resulting
// intents after releasing it.
type Controller struct {
	state   *store.State
	intents chan<- types.Intent
}

// New returns a controller over state emitting on intents.
func New(state *store.State, intents chan<- types.Intent) *Controller {
	return &Controller{state: state, intents: intents}
}

// Handle applies one key press. It reports false when the press asked the
// application to quit.
func (c *Controller) Handle(k Key) bool {
	c.state.Lock()
	var out []types.Intent
	quit := false
	switch c.state.Mode {
	case store.ModeNormal:
		out, quit = c.normal(k)
	case store.ModeInsert:
		out = c.insert(k)
	case store.ModeCommand:
		out, quit = c.command(k)
	case store.ModeScroll:
		out = c.scroll(k)
	case store.ModeDeleteConfirm:
		out = c.deleteConfirm(k)
	case store.ModeGuildSelect:
		out = c.guildSelect(k)
	case store.ModeChannelSelect:
		out = c.channelSelect(k)
	case store.ModeGuildLeaveConfirm:
		out = c.guildLeaveConfirm(k)
	}
	c.state.Unlock()
	for _, in := range out {
		select {
		case c.intents <- in:
		default:
		}
	}
	return !quit
}

func (c *Controller) normal(k Key) ([]types.Intent, bool) {
	s := c.state
	switch {
	case k.Kind == KindRune && k.Rune == 'i':
		s.Mode = store.ModeInsert
	case k.Kind == KindRune && k.Rune == 's':
		s.Mode = store.ModeScroll
	case k.Kind == KindRune && k.Rune == 'g':
		s.Mode = store.ModeGuildSelect
	case k.Kind == KindRune && k.Rune == 'c':
		s.Mode = store.ModeChannelSelect
	case k.Kind == KindRune && k.Rune == ':':
		s.CmdInput.Take()
		s.Mode = store.ModeCommand
	case k.Kind == KindRune && k.Rune == 'h', k.Kind == KindLeft:
		s.Input.MoveLeft()
	case k.Kind == KindRune && k.Rune == 'l', k.Kind == KindRight:
		s.Input.MoveRight()
	case k.Kind == KindEnter:
		return c.submitInput(), false
	case k.Kind == KindEsc:
		if s.Editing != nil {
			c.cancelEdit()
		}
	}
	return nil, false
}

func (c *Controller) insert(k Key) []types.Intent {
	s := c.state
	switch k.Kind {
	case KindRune:
		s.Input.Insert(k.Rune)
	case KindBackspace:
		s.Input.Backspace()
	case KindLeft:
		s.Input.MoveLeft()
	case KindRight:
		s.Input.MoveRight()
	case KindEsc:
		s.Mode = store.ModeNormal
	case KindEnter:
		return c.submitInput()
	}
	return nil
}

// submitInput turns the message buffer into a Send intent, or an Edit intent
// when an edit is in progress. An empty buffer or no open channel submits
// nothing.
func (c *Controller) submitInput() []types.Intent {
	s := c.state
	ch := s.CurrentChannelRef()
	if ch == nil || s.Input.Len() == 0 {
		return nil
	}
	text := s.Input.Take()
	if s.Editing != nil {
		ed := s.Editing
		s.Editing = nil
		s.Input = ed.Saved
		s.Mode = store.ModeScroll
		return []types.Intent{types.EditMessageIntent{
			GuildID:   ch.GuildID,
			ChannelID: ch.ID,
			MessageID: ed.MessageID,
			NewText:   text,
		}}
	}
	return []types.Intent{types.SendMessageIntent{
		GuildID:   ch.GuildID,
		ChannelID: ch.ID,
		Text:      text,
	}}
}

// cancelEdit abandons an in-progress edit, restoring the buffer contents and
// cursor saved when the edit began.
func (c *Controller) cancelEdit() {
	s := c.state
	s.Input = s.Editing.Saved
	s.Editing = nil
	s.Mode = store.ModeScroll
}

func (c *Controller) command(k Key) ([]types.Intent, bool) {
	s := c.state
	switch k.Kind {
	case KindRune:
		s.CmdInput.Insert(k.Rune)
	case KindLeft:
		s.CmdInput.MoveLeft()
	case KindRight:
		s.CmdInput.MoveRight()
	case KindBackspace:
		if s.CmdInput.Len() == 0 {
			s.Mode = store.ModeNormal
			return nil, false
		}
		s.CmdInput.Backspace()
	case KindEsc:
		s.Mode = store.ModeNormal
	case KindEnter:
		line := s.CmdInput.Take()
		s.Mode = store.ModeNormal
		return c.dispatchCommand(line)
	}
	return nil, false
}

// dispatchCommand parses a `:` command line. Unrecognized commands are
// silently ignored.
func (c *Controller) dispatchCommand(line string) ([]types.Intent, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false
	}
	switch fields[0] {
	case "q", "quit":
		return []types.Intent{types.QuitIntent{}}, true
	case "join":
		if len(fields) == 2 {
			return []types.Intent{types.JoinGuildIntent{Invite: fields[1]}}, false
		}
	}
	return nil, false
}

func (c *Controller) scroll(k Key) []types.Intent {
	s := c.state
	ch := s.CurrentChannelRef()
	switch {
	case k.Kind == KindRune && k.Rune == 'k', k.Kind == KindUp:
		return scrollUp(ch)
	case k.Kind == KindRune && k.Rune == 'j', k.Kind == KindDown:
		if ch != nil && ch.ScrollOffset > 0 {
			ch.ScrollOffset--
		}
	case k.Kind == KindRune && k.Rune == 'd':
		s.Mode = store.ModeDeleteConfirm
	case k.Kind == KindCtrlD:
		return c.deleteSelected(ch)
	case k.Kind == KindRune && k.Rune == 'e':
		c.beginEdit(ch)
	case k.Kind == KindEsc:
		s.Mode = store.ModeNormal
	}
	return nil
}

// scrollUp moves the scroll cursor one message toward the oldest. Stepping
// past the oldest loaded message parks the offset at the list length and asks
// for one more page of history, exactly once per boundary crossing.
func scrollUp(ch *store.Channel) []types.Intent {
	if ch == nil || ch.ScrollOffset >= len(ch.MessageIDs) {
		return nil
	}
	ch.ScrollOffset++
	if ch.ScrollOffset == len(ch.MessageIDs) {
		if oldest, ok := ch.OldestMessageID(); ok {
			return []types.Intent{types.GetMoreMessagesIntent{
				GuildID:   ch.GuildID,
				ChannelID: ch.ID,
				BeforeID:  oldest,
			}}
		}
	}
	return nil
}

// deleteSelected emits an immediate delete for the scroll-selected message,
// only when the current user authored it.
func (c *Controller) deleteSelected(ch *store.Channel) []types.Intent {
	m := ch.SelectedMessage()
	if m == nil || m.AuthorID != c.state.UserID {
		return nil
	}
	return []types.Intent{types.DeleteMessageIntent{
		GuildID:   ch.GuildID,
		ChannelID: ch.ID,
		MessageID: m.ID,
	}}
}

// beginEdit swaps the selected message's text into the input buffer, saving
// the previous contents and cursor for restoration, and switches to Insert.
// Messages by other users, and non-text messages, do not start an edit.
func (c *Controller) beginEdit(ch *store.Channel) {
	s := c.state
	m := ch.SelectedMessage()
	if m == nil || m.AuthorID != s.UserID {
		return
	}
	text, ok := m.Text()
	if !ok {
		return
	}
	saved := s.Input
	s.Input.Set(text)
	s.Editing = &store.EditState{MessageID: m.ID, Saved: saved}
	s.Mode = store.ModeInsert
}

func (c *Controller) deleteConfirm(k Key) []types.Intent {
	s := c.state
	s.Mode = store.ModeScroll
	if k.Kind != KindRune || k.Rune != 'y' {
		return nil
	}
	// Ownership is re-checked at confirmation time.
	return c.deleteSelected(s.CurrentChannelRef())
}

func (c *Controller) guildSelect(k Key) []types.Intent {
	s := c.state
	switch {
	case k.Kind == KindRune && k.Rune == 'j', k.Kind == KindDown:
		s.GuildSel = moveSel(s.GuildSel, len(s.GuildIDs), +1)
	case k.Kind == KindRune && k.Rune == 'k', k.Kind == KindUp:
		s.GuildSel = moveSel(s.GuildSel, len(s.GuildIDs), -1)
	case k.Kind == KindEnter:
		if s.GuildSel == nil {
			return nil
		}
		gid := s.GuildIDs[*s.GuildSel]
		s.CurrentGuild = &gid
		s.Mode = store.ModeChannelSelect
		if g := s.Guild(gid); g != nil && len(g.ChannelIDs) == 0 {
			return []types.Intent{types.FetchChannelsIntent{GuildID: gid}}
		}
	case k.Kind == KindRune && k.Rune == 'l':
		if s.GuildSel != nil {
			s.Mode = store.ModeGuildLeaveConfirm
		}
	case k.Kind == KindEsc:
		s.Mode = store.ModeNormal
	}
	return nil
}

func (c *Controller) channelSelect(k Key) []types.Intent {
	s := c.state
	g := s.CurrentGuildRef()
	switch {
	case k.Kind == KindRune && k.Rune == 'j', k.Kind == KindDown:
		if g != nil {
			g.ChannelSel = moveSel(g.ChannelSel, len(g.ChannelIDs), +1)
		}
	case k.Kind == KindRune && k.Rune == 'k', k.Kind == KindUp:
		if g != nil {
			g.ChannelSel = moveSel(g.ChannelSel, len(g.ChannelIDs), -1)
		}
	case k.Kind == KindEnter:
		if g == nil || g.ChannelSel == nil {
			return nil
		}
		cid := g.ChannelIDs[*g.ChannelSel]
		g.CurrentChannel = &cid
		s.Mode = store.ModeNormal
		if ch := g.Channels[cid]; ch != nil && len(ch.MessageIDs) == 0 {
			return []types.Intent{types.FetchMessagesIntent{GuildID: g.ID, ChannelID: cid}}
		}
	case k.Kind == KindEsc:
		s.Mode = store.ModeNormal
	}
	return nil
}

func (c *Controller) guildLeaveConfirm(k Key) []types.Intent {
	s := c.state
	s.Mode = store.ModeGuildSelect
	if k.Kind != KindRune || k.Rune != 'y' {
		return nil
	}
	if s.GuildSel == nil || *s.GuildSel >= len(s.GuildIDs) {
		return nil
	}
	return []types.Intent{types.LeaveGuildIntent{GuildID: s.GuildIDs[*s.GuildSel]}}
}

// moveSel steps a selection index by delta, clamped to [0, n). The first move
// with no prior selection lands on the first (down) or last (up) entry; moves
// on an empty list leave the selection absent.
func moveSel(sel *int, n, delta int) *int {
	if n == 0 {
		return nil
	}
	if sel == nil {
		i := 0
		if delta < 0 {
			i = n - 1
		}
		return &i
	}
	i := *sel + delta
	if i < 0 || i >= n {
		return sel
	}
	return &i
}
