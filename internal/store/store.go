// Package store holds the local mirror of remote chat entities: guilds,
// channels, messages and members, plus the session-level cursors and input
// buffers. It is a data container; all mutation goes through the sync engine
// and the mode controller, which hold the embedded lock while they work.
package store

import (
	"sync"

	"github.com/ravel-chat/ravel/internal/textbuf"
	"github.com/ravel-chat/ravel/internal/types"
)

// Mode is the active UI mode of the modal key controller.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeCommand
	ModeScroll
	ModeDeleteConfirm
	ModeGuildSelect
	ModeChannelSelect
	ModeGuildLeaveConfirm
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeInsert:
		return "INSERT"
	case ModeCommand:
		return "COMMAND"
	case ModeScroll:
		return "SCROLL"
	case ModeDeleteConfirm:
		return "DELETE?"
	case ModeGuildSelect:
		return "GUILDS"
	case ModeChannelSelect:
		return "CHANNELS"
	case ModeGuildLeaveConfirm:
		return "LEAVE?"
	}
	return "?"
}

// EditState tracks an in-progress message edit: which message, and the input
// buffer contents saved when the edit began, restored on cancel.
type EditState struct {
	MessageID uint64
	Saved     textbuf.Buffer
}

// Channel mirrors one remote channel. MessageIDs and Messages are one logical
// structure with two access paths and are kept in lock-step; MessageIDs is in
// arrival/backfill order, oldest first.
type Channel struct {
	ID           uint64
	GuildID      uint64
	Name         string
	MessageIDs   []uint64
	Messages     map[uint64]*types.Message
	ScrollOffset int // messages hidden below the viewport bottom
}

// Guild mirrors one remote guild and owns its channels.
type Guild struct {
	ID             uint64
	Name           string
	ChannelIDs     []uint64
	Channels       map[uint64]*Channel
	ChannelSel     *int    // cursor in the channel-select pane
	CurrentChannel *uint64 // channel open in the message pane
}

// State is the session root shared by every loop. Readers take RLock, writers
// take Lock; neither holds it across a blocking call.
type State struct {
	sync.RWMutex

	GuildIDs     []uint64
	GuildSel     *int
	CurrentGuild *uint64
	Guilds       map[uint64]*Guild
	Members      map[uint64]*types.Member

	UserID uint64
	Mode   Mode

	Input    textbuf.Buffer // message box
	CmdInput textbuf.Buffer // command prompt
	Editing  *EditState
}

// New returns an empty mirror for the given account.
func New(userID uint64) *State {
	return &State{
		Guilds:  make(map[uint64]*Guild),
		Members: make(map[uint64]*types.Member),
		UserID:  userID,
	}
}

// Guild returns the guild with the given id, or nil.
func (s *State) Guild(id uint64) *Guild {
	return s.Guilds[id]
}

// Channel resolves (guild, channel), returning nil if either is untracked.
func (s *State) Channel(guildID, channelID uint64) *Channel {
	g := s.Guilds[guildID]
	if g == nil {
		return nil
	}
	return g.Channels[channelID]
}

// CurrentGuildRef chases the current-guild pointer. Absent pointers produce
// nil, never a fault.
func (s *State) CurrentGuildRef() *Guild {
	if s.CurrentGuild == nil {
		return nil
	}
	return s.Guilds[*s.CurrentGuild]
}

// CurrentChannelRef resolves the current channel of the current guild.
func (s *State) CurrentChannelRef() *Channel {
	g := s.CurrentGuildRef()
	if g == nil || g.CurrentChannel == nil {
		return nil
	}
	return g.Channels[*g.CurrentChannel]
}

// AddGuild tracks a guild id, returning the existing entry on redundant adds.
func (s *State) AddGuild(id uint64) *Guild {
	if g := s.Guilds[id]; g != nil {
		return g
	}
	g := &Guild{ID: id, Channels: make(map[uint64]*Channel)}
	s.Guilds[id] = g
	s.GuildIDs = append(s.GuildIDs, id)
	return g
}

// RemoveGuild drops a guild from the list and map. If it was the current or
// selected guild, both pointers are cleared in the same step; the selection
// is never remapped to another guild.
func (s *State) RemoveGuild(id uint64) {
	if _, ok := s.Guilds[id]; !ok {
		return
	}
	delete(s.Guilds, id)
	for i, gid := range s.GuildIDs {
		if gid == id {
			if s.GuildSel != nil {
				switch {
				case *s.GuildSel == i:
					// The selected guild itself went away: selection becomes
					// absent, never remapped to a neighbor.
					s.GuildSel = nil
				case *s.GuildSel > i:
					// Keep the selection on the same guild after the shift.
					sel := *s.GuildSel - 1
					s.GuildSel = &sel
				}
			}
			s.GuildIDs = append(s.GuildIDs[:i], s.GuildIDs[i+1:]...)
			break
		}
	}
	if s.CurrentGuild != nil && *s.CurrentGuild == id {
		s.CurrentGuild = nil
	}
	if s.GuildSel != nil && *s.GuildSel >= len(s.GuildIDs) {
		s.GuildSel = nil
	}
}

// AddChannel tracks a channel in a guild, returning the existing entry on
// redundant adds and nil if the guild is untracked.
func (g *Guild) AddChannel(id uint64, name string) *Channel {
	if g == nil {
		return nil
	}
	if c := g.Channels[id]; c != nil {
		return c
	}
	c := &Channel{ID: id, GuildID: g.ID, Name: name, Messages: make(map[uint64]*types.Message)}
	g.Channels[id] = c
	g.ChannelIDs = append(g.ChannelIDs, id)
	return c
}

// AppendMessage adds a newly arrived message at the end of the channel,
// skipping ids already tracked.
func (c *Channel) AppendMessage(m *types.Message) {
	if c == nil || m == nil {
		return
	}
	if _, ok := c.Messages[m.ID]; ok {
		return
	}
	c.Messages[m.ID] = m
	c.MessageIDs = append(c.MessageIDs, m.ID)
}

// InsertMessages inserts a backfilled page at the given position, preserving
// existing order. Ids already tracked are skipped.
func (c *Channel) InsertMessages(at int, msgs []*types.Message) {
	if c == nil || len(msgs) == 0 {
		return
	}
	if at < 0 {
		at = 0
	}
	if at > len(c.MessageIDs) {
		at = len(c.MessageIDs)
	}
	fresh := make([]uint64, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		if _, ok := c.Messages[m.ID]; ok {
			continue
		}
		c.Messages[m.ID] = m
		fresh = append(fresh, m.ID)
	}
	if len(fresh) == 0 {
		return
	}
	ids := make([]uint64, 0, len(c.MessageIDs)+len(fresh))
	ids = append(ids, c.MessageIDs[:at]...)
	ids = append(ids, fresh...)
	ids = append(ids, c.MessageIDs[at:]...)
	c.MessageIDs = ids
}

// DeleteMessage removes a message from both the map and the ordered list,
// clamping the scroll offset down so it stays below the list length. Unknown
// ids are a no-op; the return reports whether anything was removed.
func (c *Channel) DeleteMessage(id uint64) bool {
	if c == nil {
		return false
	}
	if _, ok := c.Messages[id]; !ok {
		return false
	}
	delete(c.Messages, id)
	for i, mid := range c.MessageIDs {
		if mid == id {
			c.MessageIDs = append(c.MessageIDs[:i], c.MessageIDs[i+1:]...)
			break
		}
	}
	c.ClampScroll()
	return true
}

// ClampScroll forces the scroll offset back into range after the message list
// shrank. It clamps down, never up; an empty list leaves the offset inert at
// zero.
func (c *Channel) ClampScroll() {
	if len(c.MessageIDs) == 0 {
		c.ScrollOffset = 0
		return
	}
	if c.ScrollOffset >= len(c.MessageIDs) {
		c.ScrollOffset = len(c.MessageIDs) - 1
	}
	if c.ScrollOffset < 0 {
		c.ScrollOffset = 0
	}
}

// OldestMessageID returns the id of the oldest loaded message, used as the
// pagination cursor. The second return is false on an empty channel.
func (c *Channel) OldestMessageID() (uint64, bool) {
	if c == nil || len(c.MessageIDs) == 0 {
		return 0, false
	}
	return c.MessageIDs[0], true
}

// SelectedMessage returns the message at the scroll cursor (the one at the
// viewport bottom), or nil when the offset points past the whole list.
func (c *Channel) SelectedMessage() *types.Message {
	if c == nil {
		return nil
	}
	i := len(c.MessageIDs) - 1 - c.ScrollOffset
	if i < 0 || i >= len(c.MessageIDs) {
		return nil
	}
	return c.Messages[c.MessageIDs[i]]
}

// Member returns the member with the given id, or nil.
func (s *State) Member(id uint64) *types.Member {
	return s.Members[id]
}

// PutMember tracks or replaces a member profile.
func (s *State) PutMember(m *types.Member) {
	if m == nil {
		return
	}
	s.Members[m.ID] = m
}
