// Package client defines the capability surface this application consumes
// from a homeserver: one request/response primitive per remote operation, an
// event-loop subscription, and the step-based authentication primitives. The
// wire protocol behind these interfaces is supplied by the embedding binary;
// this package also ships an in-memory implementation used by tests and by
// local mode.
package client

import (
	"context"

	"github.com/ravel-chat/ravel/internal/types"
)

// Session identifies an authenticated account.
type Session struct {
	UserID uint64
	Token  string
}

// GuildInfo is the result of a guild-details fetch.
type GuildInfo struct {
	ID   uint64
	Name string
}

// ProfileUpdate patches the caller's own profile; nil fields are untouched.
type ProfileUpdate struct {
	NewStatus *types.UserStatus
	NewIsBot  *bool
}

// EventSourceKind discriminates EventSource.
type EventSourceKind int

const (
	SourceHomeserver EventSourceKind = iota
	SourceAction
	SourceGuild
)

// EventSource names one stream to subscribe to.
type EventSource struct {
	Kind    EventSourceKind
	GuildID uint64 // set for SourceGuild
}

// GuildSources builds the standard subscription set: homeserver-wide,
// account actions, and one source per guild.
func GuildSources(guildIDs []uint64) []EventSource {
	out := []EventSource{{Kind: SourceHomeserver}, {Kind: SourceAction}}
	for _, id := range guildIDs {
		out = append(out, EventSource{Kind: SourceGuild, GuildID: id})
	}
	return out
}

// EventHandler receives inbound events in delivery order. Returning stop=true
// ends the subscription.
type EventHandler func(ev types.Event) (stop bool, err error)

// API is the request/response surface of an authenticated homeserver
// connection. Implementations own the transport; callers never hold the
// shared state lock across one of these calls.
type API interface {
	GuildList(ctx context.Context) ([]types.GuildEntry, error)
	Guild(ctx context.Context, guildID uint64) (GuildInfo, error)
	GuildChannels(ctx context.Context, guildID uint64) ([]types.ChannelEntry, error)

	// ChannelMessages fetches one page of history. A zero beforeID asks for
	// the newest page; otherwise the page ends at beforeID, which is
	// repeated as the page's first entry.
	ChannelMessages(ctx context.Context, guildID, channelID, beforeID uint64) ([]types.Message, error)

	SendMessage(ctx context.Context, guildID, channelID uint64, text, echoID string) error
	UpdateMessageText(ctx context.Context, guildID, channelID, messageID uint64, text string) error
	DeleteMessage(ctx context.Context, guildID, channelID, messageID uint64) error

	Profile(ctx context.Context, userID uint64) (types.Member, error)
	UpdateProfile(ctx context.Context, up ProfileUpdate) error

	JoinGuild(ctx context.Context, invite string) (uint64, error)
	LeaveGuild(ctx context.Context, guildID uint64) error

	// EventLoop blocks, delivering events from the given sources to handler
	// until the handler stops it or ctx is cancelled.
	EventLoop(ctx context.Context, sources []EventSource, handler EventHandler) error
}
