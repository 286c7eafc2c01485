package types

import "time"

// UserStatus represents a member's presence as reported to the homeserver.
type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusOffline UserStatus = "offline"
)

// Member represents a user as seen from some guild context.
type Member struct {
	ID    uint64
	Name  string
	IsBot bool
}

// Message represents a single chat message inside a channel.
//
// Identity is the (guild, channel, message) triple; ids are only ever looked
// up inside an already-resolved channel, so Message itself carries no
// guild/channel back-pointers.
type Message struct {
	ID        uint64
	AuthorID  uint64
	Override  *string // per-message username override, if any
	Content   MessageContent
	CreatedAt time.Time
	EditedAt  *time.Time
}

// MessageContent is the message payload variant. Only text is materialized;
// other kinds the server may send are carried opaquely so the client stays
// forward compatible.
type MessageContent interface {
	isContent()
}

// TextContent is plain message text.
type TextContent struct {
	Text string
}

// UnknownContent is a content kind this client does not model.
type UnknownContent struct {
	Kind string
}

func (TextContent) isContent()    {}
func (UnknownContent) isContent() {}

// Text returns the message text and whether the content is textual.
func (m *Message) Text() (string, bool) {
	tc, ok := m.Content.(TextContent)
	if !ok {
		return "", false
	}
	return tc.Text, true
}

// GuildEntry is one row of the guild list fetch.
type GuildEntry struct {
	ID         uint64
	Homeserver string
}

// ChannelEntry is one row of a guild's channel list fetch.
type ChannelEntry struct {
	ID   uint64
	Name string
}
