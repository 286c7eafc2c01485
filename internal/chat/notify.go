package chat

import (
	"strconv"
	"strings"

	"github.com/gen2brain/beeep"

	"github.com/ravel-chat/ravel/internal/types"
)

// maybeNotify raises a desktop notification for inbound messages that
// mention the current user by name. Best effort: notification failures are
// swallowed.
func (m *Model) maybeNotify(ev types.Event) {
	mc, ok := ev.(types.MessageCreated)
	if !ok || mc.Message.AuthorID == m.state.UserID {
		return
	}
	name := m.selfName()
	if name == "" {
		return
	}
	text, ok := mc.Message.Text()
	if !ok || !strings.Contains(text, "@"+name) {
		return
	}
	author := m.authorName(&mc.Message)
	go func() {
		_ = beeep.Notify("ravel", author+": "+text, "")
	}()
}

// authorName resolves a message's display name under a fresh read lock.
func (m *Model) authorName(msg *types.Message) string {
	m.state.RLock()
	defer m.state.RUnlock()
	return m.displayName(msg)
}

// displayName resolves a message's display name: the per-message override if
// set, then the member profile, then the raw id. Caller holds the state lock.
func (m *Model) displayName(msg *types.Message) string {
	if msg.Override != nil && *msg.Override != "" {
		return *msg.Override
	}
	if member := m.state.Member(msg.AuthorID); member != nil && member.Name != "" {
		return member.Name
	}
	return "user-" + strconv.FormatUint(msg.AuthorID, 10)
}
