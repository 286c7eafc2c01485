package types

// Intent is a request for a remote effect, queued by the mode controller or
// the sync engine and consumed by the command processor. The queue is bounded
// and sends are best-effort: a dropped intent means the remote effect is
// simply not attempted.
type Intent interface {
	isIntent()
}

// SendMessageIntent posts the composed text to a channel. The echo id sent
// with it is attached by the command processor.
type SendMessageIntent struct {
	GuildID   uint64
	ChannelID uint64
	Text      string
}

// EditMessageIntent replaces a message's text.
type EditMessageIntent struct {
	GuildID   uint64
	ChannelID uint64
	MessageID uint64
	NewText   string
}

// DeleteMessageIntent deletes an own message.
type DeleteMessageIntent struct {
	GuildID   uint64
	ChannelID uint64
	MessageID uint64
}

// GetMoreMessagesIntent asks for one page of history older than BeforeID.
type GetMoreMessagesIntent struct {
	GuildID   uint64
	ChannelID uint64
	BeforeID  uint64
}

// FetchMessagesIntent asks for the first page of a channel's history.
type FetchMessagesIntent struct {
	GuildID   uint64
	ChannelID uint64
}

// FetchChannelsIntent asks for a guild's channel list.
type FetchChannelsIntent struct {
	GuildID uint64
}

// FetchProfileIntent resolves an unknown author id.
type FetchProfileIntent struct {
	UserID uint64
}

// JoinGuildIntent joins a guild by invite code.
type JoinGuildIntent struct {
	Invite string
}

// LeaveGuildIntent leaves a guild.
type LeaveGuildIntent struct {
	GuildID uint64
}

// QuitIntent asks the application to shut down.
type QuitIntent struct{}

func (SendMessageIntent) isIntent()     {}
func (EditMessageIntent) isIntent()     {}
func (DeleteMessageIntent) isIntent()   {}
func (GetMoreMessagesIntent) isIntent() {}
func (FetchMessagesIntent) isIntent()   {}
func (FetchChannelsIntent) isIntent()   {}
func (FetchProfileIntent) isIntent()    {}
func (JoinGuildIntent) isIntent()       {}
func (LeaveGuildIntent) isIntent()      {}
func (QuitIntent) isIntent()            {}
