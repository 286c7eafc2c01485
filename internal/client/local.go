package client

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ravel-chat/ravel/internal/types"
)

// PageSize is how many messages a history fetch returns at most.
const PageSize = 25

// Local is an in-memory homeserver. It backs `ravel --local` (a single-user
// scratch server) and the package tests; it implements both API and AuthAPI
// and reproduces the protocol's paging quirk of repeating the "before"
// boundary message as the first entry of a page.
type Local struct {
	mu      sync.Mutex
	nextID  uint64
	guilds  map[uint64]*localGuild
	order   []uint64
	members map[uint64]types.Member
	invites map[string]uint64
	auths   map[string]*localAuth
	subs    map[chan types.Event]struct{}
}

type localGuild struct {
	info     GuildInfo
	channels []localChannel
}

type localChannel struct {
	entry    types.ChannelEntry
	messages []types.Message // oldest first
}

type localAuth struct {
	step int // index into the canned step sequence
}

// NewLocal returns an empty local homeserver.
func NewLocal() *Local {
	return &Local{
		nextID:  1000,
		guilds:  make(map[uint64]*localGuild),
		members: make(map[uint64]types.Member),
		invites: make(map[string]uint64),
		auths:   make(map[string]*localAuth),
		subs:    make(map[chan types.Event]struct{}),
	}
}

func (l *Local) id() uint64 {
	l.nextID++
	return l.nextID
}

// Seed creates a guild with the given channels and returns its id and an
// invite code for it.
func (l *Local) Seed(guildName string, channelNames ...string) (uint64, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	gid := l.id()
	g := &localGuild{info: GuildInfo{ID: gid, Name: guildName}}
	for _, name := range channelNames {
		g.channels = append(g.channels, localChannel{entry: types.ChannelEntry{ID: l.id(), Name: name}})
	}
	l.guilds[gid] = g
	l.order = append(l.order, gid)
	invite := fmt.Sprintf("inv-%d", gid)
	l.invites[invite] = gid
	return gid, invite
}

// SeedMember registers a member profile.
func (l *Local) SeedMember(m types.Member) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.members[m.ID] = m
}

// Post injects a message as the given author and broadcasts it, as if another
// client had sent it.
func (l *Local) Post(guildID, channelID, authorID uint64, text string) uint64 {
	l.mu.Lock()
	m := types.Message{
		ID:        l.id(),
		AuthorID:  authorID,
		Content:   types.TextContent{Text: text},
		CreatedAt: time.Now(),
	}
	l.appendMessage(guildID, channelID, m)
	l.mu.Unlock()
	l.broadcast(types.MessageCreated{GuildID: guildID, ChannelID: channelID, Message: m})
	return m.ID
}

func (l *Local) appendMessage(guildID, channelID uint64, m types.Message) {
	g := l.guilds[guildID]
	if g == nil {
		return
	}
	for i := range g.channels {
		if g.channels[i].entry.ID == channelID {
			g.channels[i].messages = append(g.channels[i].messages, m)
			return
		}
	}
}

func (l *Local) channel(guildID, channelID uint64) *localChannel {
	g := l.guilds[guildID]
	if g == nil {
		return nil
	}
	for i := range g.channels {
		if g.channels[i].entry.ID == channelID {
			return &g.channels[i]
		}
	}
	return nil
}

func (l *Local) broadcast(ev types.Event) {
	l.mu.Lock()
	subs := make([]chan types.Event, 0, len(l.subs))
	for ch := range l.subs {
		subs = append(subs, ch)
	}
	l.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (l *Local) GuildList(ctx context.Context) ([]types.GuildEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.GuildEntry, 0, len(l.order))
	for _, gid := range l.order {
		out = append(out, types.GuildEntry{ID: gid, Homeserver: "local"})
	}
	return out, nil
}

func (l *Local) Guild(ctx context.Context, guildID uint64) (GuildInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	g := l.guilds[guildID]
	if g == nil {
		return GuildInfo{}, fmt.Errorf("guild %d: not found", guildID)
	}
	return g.info, nil
}

func (l *Local) GuildChannels(ctx context.Context, guildID uint64) ([]types.ChannelEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	g := l.guilds[guildID]
	if g == nil {
		return nil, fmt.Errorf("guild %d: not found", guildID)
	}
	out := make([]types.ChannelEntry, 0, len(g.channels))
	for _, ch := range g.channels {
		out = append(out, ch.entry)
	}
	return out, nil
}

func (l *Local) ChannelMessages(ctx context.Context, guildID, channelID, beforeID uint64) ([]types.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := l.channel(guildID, channelID)
	if ch == nil {
		return nil, fmt.Errorf("channel %d/%d: not found", guildID, channelID)
	}
	msgs := ch.messages
	end := len(msgs)
	if beforeID != 0 {
		end = sort.Search(len(msgs), func(i int) bool { return msgs[i].ID >= beforeID })
		if end < len(msgs) && msgs[end].ID == beforeID {
			end++ // boundary message leads the page
		}
	}
	start := end - PageSize
	if start < 0 {
		start = 0
	}
	page := make([]types.Message, end-start)
	copy(page, msgs[start:end])
	if beforeID != 0 {
		// Oldest-first slice, but a "before" page leads with the boundary.
		for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
			page[i], page[j] = page[j], page[i]
		}
	}
	return page, nil
}

func (l *Local) SendMessage(ctx context.Context, guildID, channelID uint64, text, echoID string) error {
	l.mu.Lock()
	if l.channel(guildID, channelID) == nil {
		l.mu.Unlock()
		return fmt.Errorf("channel %d/%d: not found", guildID, channelID)
	}
	m := types.Message{
		ID:        l.id(),
		AuthorID:  localUserID,
		Content:   types.TextContent{Text: text},
		CreatedAt: time.Now(),
	}
	l.appendMessage(guildID, channelID, m)
	l.mu.Unlock()
	l.broadcast(types.MessageCreated{GuildID: guildID, ChannelID: channelID, Message: m, EchoID: echoID})
	return nil
}

func (l *Local) UpdateMessageText(ctx context.Context, guildID, channelID, messageID uint64, text string) error {
	now := time.Now()
	l.mu.Lock()
	ch := l.channel(guildID, channelID)
	if ch == nil {
		l.mu.Unlock()
		return fmt.Errorf("channel %d/%d: not found", guildID, channelID)
	}
	found := false
	for i := range ch.messages {
		if ch.messages[i].ID == messageID {
			ch.messages[i].Content = types.TextContent{Text: text}
			ch.messages[i].EditedAt = &now
			found = true
			break
		}
	}
	l.mu.Unlock()
	if !found {
		return fmt.Errorf("message %d: not found", messageID)
	}
	l.broadcast(types.MessageEdited{GuildID: guildID, ChannelID: channelID, MessageID: messageID, NewText: text, EditedAt: now})
	return nil
}

func (l *Local) DeleteMessage(ctx context.Context, guildID, channelID, messageID uint64) error {
	l.mu.Lock()
	ch := l.channel(guildID, channelID)
	if ch == nil {
		l.mu.Unlock()
		return fmt.Errorf("channel %d/%d: not found", guildID, channelID)
	}
	for i := range ch.messages {
		if ch.messages[i].ID == messageID {
			ch.messages = append(ch.messages[:i], ch.messages[i+1:]...)
			break
		}
	}
	l.mu.Unlock()
	l.broadcast(types.MessageDeleted{GuildID: guildID, ChannelID: channelID, MessageID: messageID})
	return nil
}

func (l *Local) Profile(ctx context.Context, userID uint64) (types.Member, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.members[userID]; ok {
		return m, nil
	}
	return types.Member{}, fmt.Errorf("user %d: not found", userID)
}

func (l *Local) UpdateProfile(ctx context.Context, up ProfileUpdate) error {
	l.mu.Lock()
	m := l.members[localUserID]
	m.ID = localUserID
	if up.NewIsBot != nil {
		m.IsBot = *up.NewIsBot
	}
	l.members[localUserID] = m
	l.mu.Unlock()
	return nil
}

func (l *Local) JoinGuild(ctx context.Context, invite string) (uint64, error) {
	l.mu.Lock()
	gid, ok := l.invites[invite]
	l.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("invite %q: not found", invite)
	}
	l.broadcast(types.GuildAddedToList{GuildID: gid, Homeserver: "local"})
	return gid, nil
}

func (l *Local) LeaveGuild(ctx context.Context, guildID uint64) error {
	l.mu.Lock()
	if _, ok := l.guilds[guildID]; !ok {
		l.mu.Unlock()
		return fmt.Errorf("guild %d: not found", guildID)
	}
	for i, gid := range l.order {
		if gid == guildID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	l.mu.Unlock()
	l.broadcast(types.GuildRemovedFromList{GuildID: guildID})
	return nil
}

func (l *Local) EventLoop(ctx context.Context, sources []EventSource, handler EventHandler) error {
	ch := make(chan types.Event, 64)
	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		delete(l.subs, ch)
		l.mu.Unlock()
	}()

	wantGuild := make(map[uint64]bool)
	wantAll := false
	for _, src := range sources {
		switch src.Kind {
		case SourceHomeserver, SourceAction:
			wantAll = true
		case SourceGuild:
			wantGuild[src.GuildID] = true
		}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-ch:
			if gid, scoped := eventGuild(ev); scoped && !wantGuild[gid] && !wantAll {
				continue
			}
			stop, err := handler(ev)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
	}
}

// eventGuild reports the guild an event is scoped to, if any.
func eventGuild(ev types.Event) (uint64, bool) {
	switch ev := ev.(type) {
	case types.MessageCreated:
		return ev.GuildID, true
	case types.MessageEdited:
		return ev.GuildID, true
	case types.MessageDeleted:
		return ev.GuildID, true
	case types.Typing:
		return ev.GuildID, true
	}
	return 0, false
}

// localUserID is the single account the local homeserver serves.
const localUserID uint64 = 1

// BeginAuth starts the canned local negotiation: a login/register choice, a
// credentials form, then a session.
func (l *Local) BeginAuth(ctx context.Context) (string, error) {
	id := uuid.NewString()
	l.mu.Lock()
	l.auths[id] = &localAuth{}
	l.mu.Unlock()
	return id, nil
}

var localSteps = []AuthStep{
	{Choice: &ChoiceStep{Title: "local homeserver", Options: []string{"login", "register"}}},
	{CanGoBack: true, Form: &FormStep{Title: "credentials", Fields: []FormFieldSpec{
		{Name: "email", Kind: FieldEmail},
		{Name: "password", Kind: FieldPassword},
	}}},
}

func (l *Local) NextAuthStep(ctx context.Context, authID string, resp AuthResponse) (*AuthStep, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a := l.auths[authID]
	if a == nil {
		return nil, fmt.Errorf("auth %q: not found", authID)
	}
	if resp.Choice != nil || resp.Form != nil {
		a.step++
	}
	if a.step < len(localSteps) {
		step := localSteps[a.step]
		return &step, nil
	}
	delete(l.auths, authID)
	return &AuthStep{Session: &Session{UserID: localUserID, Token: uuid.NewString()}}, nil
}

func (l *Local) PrevAuthStep(ctx context.Context, authID string) (*AuthStep, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a := l.auths[authID]
	if a == nil {
		return nil, fmt.Errorf("auth %q: not found", authID)
	}
	if a.step == 0 {
		return nil, fmt.Errorf("auth %q: no previous step", authID)
	}
	a.step--
	step := localSteps[a.step]
	return &step, nil
}
