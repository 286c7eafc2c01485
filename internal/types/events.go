package types

import "time"

// Event is an inbound push event from the homeserver stream.
//
// Every variant the protocol can deliver has a concrete type here, whether or
// not the client materializes it; the sync engine handles the materialized
// subset and discards the rest without error.
type Event interface {
	// Kind names the protocol tag, for logging and coverage tests.
	Kind() string
}

// MessageCreated delivers a newly sent message.
type MessageCreated struct {
	GuildID   uint64
	ChannelID uint64
	Message   Message
	EchoID    string // echoes the sender-supplied id, if any
}

// MessageEdited delivers an in-place text edit.
type MessageEdited struct {
	GuildID   uint64
	ChannelID uint64
	MessageID uint64
	NewText   string
	EditedAt  time.Time
}

// MessageDeleted removes a message.
type MessageDeleted struct {
	GuildID   uint64
	ChannelID uint64
	MessageID uint64
}

// GuildRemovedFromList signals the account is no longer in a guild.
type GuildRemovedFromList struct {
	GuildID uint64
}

// GuildAddedToList signals the account joined a guild.
type GuildAddedToList struct {
	GuildID    uint64
	Homeserver string
}

// ProfileUpdated patches a user's profile; nil fields were not changed.
type ProfileUpdated struct {
	UserID   uint64
	NewName  *string
	NewIsBot *bool
}

// GuildUpdated carries guild metadata changes. Not materialized.
type GuildUpdated struct {
	GuildID uint64
	NewName *string
}

// ChannelCreated announces a new channel. Not materialized.
type ChannelCreated struct {
	GuildID   uint64
	ChannelID uint64
	Name      string
}

// ChannelDeleted removes a channel. Not materialized.
type ChannelDeleted struct {
	GuildID   uint64
	ChannelID uint64
}

// MemberJoined announces a guild join. Not materialized.
type MemberJoined struct {
	GuildID  uint64
	MemberID uint64
}

// MemberLeft announces a guild leave. Not materialized.
type MemberLeft struct {
	GuildID  uint64
	MemberID uint64
}

// Typing is a typing indicator. Not materialized.
type Typing struct {
	GuildID   uint64
	ChannelID uint64
	UserID    uint64
}

// ActionPerformed reports an embedded-action click. Not materialized.
type ActionPerformed struct {
	GuildID   uint64
	ChannelID uint64
	MessageID uint64
	ActionID  string
}

func (MessageCreated) Kind() string       { return "message_sent" }
func (MessageEdited) Kind() string        { return "message_updated" }
func (MessageDeleted) Kind() string       { return "message_deleted" }
func (GuildRemovedFromList) Kind() string { return "guild_removed_from_list" }
func (GuildAddedToList) Kind() string     { return "guild_added_to_list" }
func (ProfileUpdated) Kind() string       { return "profile_updated" }
func (GuildUpdated) Kind() string         { return "edited_guild" }
func (ChannelCreated) Kind() string       { return "created_channel" }
func (ChannelDeleted) Kind() string       { return "deleted_channel" }
func (MemberJoined) Kind() string         { return "joined_member" }
func (MemberLeft) Kind() string           { return "left_member" }
func (Typing) Kind() string               { return "typing" }
func (ActionPerformed) Kind() string      { return "action_performed" }
