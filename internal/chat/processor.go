package chat

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/ravel-chat/ravel/internal/types"
)

// processIntents is the command-processing loop: it drains the intent queue,
// performs the remote call with no lock held, and feeds the result back into
// the sync engine. Failed calls degrade to a status-line note; the engine
// itself only ever sees already-resolved results.
func (m *Model) processIntents(ctx context.Context, p *tea.Program) {
	for {
		select {
		case <-ctx.Done():
			return
		case in := <-m.intents:
			if _, ok := in.(types.QuitIntent); ok {
				p.Quit()
				return
			}
			if err := m.dispatch(ctx, in); err != nil {
				debugLog(fmt.Sprintf("intent %T: %v", in, err))
				p.Send(statusMsg{text: err.Error()})
				continue
			}
			p.Send(refreshMsg{})
		}
	}
}

func (m *Model) dispatch(ctx context.Context, in types.Intent) error {
	switch in := in.(type) {
	case types.SendMessageIntent:
		return m.api.SendMessage(ctx, in.GuildID, in.ChannelID, in.Text, uuid.NewString())

	case types.EditMessageIntent:
		return m.api.UpdateMessageText(ctx, in.GuildID, in.ChannelID, in.MessageID, in.NewText)

	case types.DeleteMessageIntent:
		return m.api.DeleteMessage(ctx, in.GuildID, in.ChannelID, in.MessageID)

	case types.FetchMessagesIntent:
		msgs, err := m.api.ChannelMessages(ctx, in.GuildID, in.ChannelID, 0)
		if err != nil {
			return err
		}
		m.engine.ApplyMessagePage(in.GuildID, in.ChannelID, msgs, false)
		return nil

	case types.GetMoreMessagesIntent:
		msgs, err := m.api.ChannelMessages(ctx, in.GuildID, in.ChannelID, in.BeforeID)
		if err != nil {
			return err
		}
		// A "before" page arrives boundary-first then newest-to-oldest;
		// the engine wants oldest-first for a prepend.
		for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
			msgs[i], msgs[j] = msgs[j], msgs[i]
		}
		m.engine.ApplyMessagePage(in.GuildID, in.ChannelID, msgs, true)
		return nil

	case types.FetchChannelsIntent:
		entries, err := m.api.GuildChannels(ctx, in.GuildID)
		if err != nil {
			return err
		}
		m.engine.ApplyChannelList(in.GuildID, entries)
		return nil

	case types.FetchProfileIntent:
		member, err := m.api.Profile(ctx, in.UserID)
		if err != nil {
			return err
		}
		m.engine.ApplyProfile(member)
		return nil

	case types.JoinGuildIntent:
		gid, err := m.api.JoinGuild(ctx, in.Invite)
		if err != nil {
			return err
		}
		// The membership event also arrives on the stream; applying here
		// too is idempotent and covers servers that scope the event to the
		// guild we are not yet subscribed to.
		m.engine.ApplyEvent(types.GuildAddedToList{GuildID: gid})
		if info, err := m.api.Guild(ctx, gid); err == nil {
			m.engine.ApplyGuildName(info.ID, info.Name)
		}
		m.resubscribe()
		return nil

	case types.LeaveGuildIntent:
		if err := m.api.LeaveGuild(ctx, in.GuildID); err != nil {
			return err
		}
		m.engine.ApplyEvent(types.GuildRemovedFromList{GuildID: in.GuildID})
		m.resubscribe()
		return nil
	}
	return nil
}
