// Package syncer reconciles the local entity mirror with inbound push events
// and fetch results. Mutations degrade to no-ops on missing targets so that
// out-of-order delivery and unrecognized variants never fail the stream.
package syncer

import (
	"github.com/ravel-chat/ravel/internal/store"
	"github.com/ravel-chat/ravel/internal/types"
)

// Engine applies events and fetch results to the state. Follow-up intents
// (resolving unknown authors) go onto the bounded intent queue; sends are
// best-effort and a full queue drops the intent.
type Engine struct {
	state   *store.State
	intents chan<- types.Intent
}

// New returns an engine mutating state and emitting on intents. A nil intents
// channel disables emission.
func New(state *store.State, intents chan<- types.Intent) *Engine {
	return &Engine{state: state, intents: intents}
}

func (e *Engine) emit(intents []types.Intent) {
	if e.intents == nil {
		return
	}
	for _, in := range intents {
		select {
		case e.intents <- in:
		default:
			// Queue full: the remote effect is simply not attempted.
		}
	}
}

// ApplyEvent applies one push event. Events referencing untracked targets are
// discarded; event kinds this client does not materialize are accepted and
// ignored.
func (e *Engine) ApplyEvent(ev types.Event) {
	e.state.Lock()
	var followups []types.Intent
	switch ev := ev.(type) {
	case types.MessageCreated:
		followups = e.messageCreated(ev)
	case types.MessageEdited:
		e.messageEdited(ev)
	case types.MessageDeleted:
		e.messageDeleted(ev)
	case types.GuildRemovedFromList:
		e.state.RemoveGuild(ev.GuildID)
	case types.GuildAddedToList:
		e.state.AddGuild(ev.GuildID)
	case types.ProfileUpdated:
		e.profileUpdated(ev)
	default:
		// Recognized by the protocol, not materialized by this client.
	}
	e.state.Unlock()
	e.emit(followups)
}

func (e *Engine) messageCreated(ev types.MessageCreated) []types.Intent {
	ch := e.state.Channel(ev.GuildID, ev.ChannelID)
	if ch == nil {
		// Channel not yet tracked; drop silently.
		return nil
	}
	m := ev.Message
	ch.AppendMessage(&m)
	if e.state.Member(m.AuthorID) == nil {
		return []types.Intent{types.FetchProfileIntent{UserID: m.AuthorID}}
	}
	return nil
}

func (e *Engine) messageEdited(ev types.MessageEdited) {
	ch := e.state.Channel(ev.GuildID, ev.ChannelID)
	if ch == nil {
		return
	}
	m := ch.Messages[ev.MessageID]
	if m == nil {
		return
	}
	if _, ok := m.Content.(types.TextContent); !ok {
		// Non-text content stays untouched, forward compatible with
		// content kinds this client does not edit.
		return
	}
	m.Content = types.TextContent{Text: ev.NewText}
	at := ev.EditedAt
	m.EditedAt = &at
}

func (e *Engine) messageDeleted(ev types.MessageDeleted) {
	ch := e.state.Channel(ev.GuildID, ev.ChannelID)
	if ch == nil {
		return
	}
	ch.DeleteMessage(ev.MessageID)
}

func (e *Engine) profileUpdated(ev types.ProfileUpdated) {
	m := e.state.Member(ev.UserID)
	if m == nil {
		return
	}
	if ev.NewName != nil {
		m.Name = *ev.NewName
	}
	if ev.NewIsBot != nil {
		m.IsBot = *ev.NewIsBot
	}
}

// ApplyGuildList appends newly seen guilds from a guild-list fetch, skipping
// ones already present.
func (e *Engine) ApplyGuildList(entries []types.GuildEntry) {
	e.state.Lock()
	defer e.state.Unlock()
	for _, ent := range entries {
		e.state.AddGuild(ent.ID)
	}
}

// ApplyGuildName records a guild's name from a guild-details fetch.
func (e *Engine) ApplyGuildName(guildID uint64, name string) {
	e.state.Lock()
	defer e.state.Unlock()
	g := e.state.Guild(guildID)
	if g == nil {
		return
	}
	g.Name = name
}

// ApplyChannelList appends newly seen channels from a channel-list fetch.
func (e *Engine) ApplyChannelList(guildID uint64, entries []types.ChannelEntry) {
	e.state.Lock()
	defer e.state.Unlock()
	g := e.state.Guild(guildID)
	if g == nil {
		return
	}
	for _, ent := range entries {
		g.AddChannel(ent.ID, ent.Name)
	}
}

// ApplyMessagePage applies one page of channel history. Pages fetched with a
// "before" cursor lead with the boundary message already held locally; that
// duplicate is skipped. prepend inserts the page ahead of the loaded history
// (older messages); otherwise the page appends. Messages by unresolved
// authors each produce a profile-fetch intent.
func (e *Engine) ApplyMessagePage(guildID, channelID uint64, msgs []types.Message, prepend bool) {
	e.state.Lock()
	ch := e.state.Channel(guildID, channelID)
	if ch == nil {
		e.state.Unlock()
		return
	}
	page := make([]*types.Message, 0, len(msgs))
	seen := make(map[uint64]bool)
	var followups []types.Intent
	for i := range msgs {
		m := msgs[i]
		if _, tracked := ch.Messages[m.ID]; tracked {
			// Boundary duplicate on a "before" page, or a redundant fetch.
			continue
		}
		page = append(page, &msgs[i])
		if e.state.Member(m.AuthorID) == nil && !seen[m.AuthorID] {
			seen[m.AuthorID] = true
			followups = append(followups, types.FetchProfileIntent{UserID: m.AuthorID})
		}
	}
	at := len(ch.MessageIDs)
	if prepend {
		at = 0
	}
	ch.InsertMessages(at, page)
	e.state.Unlock()
	e.emit(followups)
}

// ApplyProfile records a resolved member profile, updating in place if the
// member is already tracked.
func (e *Engine) ApplyProfile(m types.Member) {
	e.state.Lock()
	defer e.state.Unlock()
	if cur := e.state.Member(m.ID); cur != nil {
		*cur = m
		return
	}
	cp := m
	e.state.PutMember(&cp)
}
