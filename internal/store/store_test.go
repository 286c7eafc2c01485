package store

import (
	"testing"
	"time"

	"github.com/ravel-chat/ravel/internal/types"
)

func msg(id, author uint64, text string) *types.Message {
	return &types.Message{
		ID:        id,
		AuthorID:  author,
		Content:   types.TextContent{Text: text},
		CreatedAt: time.Unix(int64(id), 0),
	}
}

func checkChannelInvariants(t *testing.T, c *Channel) {
	t.Helper()
	if len(c.MessageIDs) != len(c.Messages) {
		t.Fatalf("list has %d ids, map has %d entries", len(c.MessageIDs), len(c.Messages))
	}
	for _, id := range c.MessageIDs {
		if c.Messages[id] == nil {
			t.Fatalf("id %d in list but not in map", id)
		}
	}
	if len(c.MessageIDs) == 0 {
		if c.ScrollOffset != 0 {
			t.Fatalf("empty channel has scroll offset %d", c.ScrollOffset)
		}
	} else if c.ScrollOffset >= len(c.MessageIDs) {
		t.Fatalf("scroll offset %d with %d messages", c.ScrollOffset, len(c.MessageIDs))
	}
}

func TestDeleteMessageRemovesExactlyOne(t *testing.T) {
	s := New(1)
	g := s.AddGuild(10)
	c := g.AddChannel(20, "general")
	for i := uint64(1); i <= 3; i++ {
		c.AppendMessage(msg(i, 1, "m"))
	}

	if !c.DeleteMessage(2) {
		t.Fatal("expected delete of existing id to report removal")
	}
	checkChannelInvariants(t, c)
	if len(c.MessageIDs) != 2 || c.MessageIDs[0] != 1 || c.MessageIDs[1] != 3 {
		t.Fatalf("ids after delete = %v", c.MessageIDs)
	}

	// Deleting a non-existent id leaves the store unchanged.
	if c.DeleteMessage(99) {
		t.Fatal("delete of unknown id reported removal")
	}
	checkChannelInvariants(t, c)
	if len(c.MessageIDs) != 2 {
		t.Fatalf("ids after no-op delete = %v", c.MessageIDs)
	}
}

func TestDeleteClampsScrollOffset(t *testing.T) {
	s := New(1)
	c := s.AddGuild(10).AddChannel(20, "general")
	for i := uint64(1); i <= 3; i++ {
		c.AppendMessage(msg(i, 1, "m"))
	}
	c.ScrollOffset = 2

	c.DeleteMessage(1)
	checkChannelInvariants(t, c)
	if c.ScrollOffset != 1 {
		t.Fatalf("scroll offset = %d, want 1", c.ScrollOffset)
	}

	c.DeleteMessage(2)
	c.DeleteMessage(3)
	checkChannelInvariants(t, c)
	if c.ScrollOffset != 0 {
		t.Fatalf("scroll offset on empty channel = %d", c.ScrollOffset)
	}
}

func TestAppendSkipsDuplicates(t *testing.T) {
	s := New(1)
	c := s.AddGuild(10).AddChannel(20, "general")
	c.AppendMessage(msg(5, 1, "a"))
	c.AppendMessage(msg(5, 1, "a again"))
	checkChannelInvariants(t, c)
	if len(c.MessageIDs) != 1 {
		t.Fatalf("duplicate append tracked twice: %v", c.MessageIDs)
	}
	if text, _ := c.Messages[5].Text(); text != "a" {
		t.Fatalf("duplicate append replaced message: %q", text)
	}
}

func TestInsertMessagesPrependsPreservingOrder(t *testing.T) {
	s := New(1)
	c := s.AddGuild(10).AddChannel(20, "general")
	c.AppendMessage(msg(10, 1, "newest"))
	c.InsertMessages(0, []*types.Message{msg(7, 1, "old"), msg(8, 1, "older"), msg(9, 1, "boundary-ish")})
	checkChannelInvariants(t, c)
	want := []uint64{7, 8, 9, 10}
	for i, id := range want {
		if c.MessageIDs[i] != id {
			t.Fatalf("ids = %v, want %v", c.MessageIDs, want)
		}
	}
}

func TestRemoveGuildClearsSelectionAndCurrent(t *testing.T) {
	s := New(1)
	s.AddGuild(1).Name = "A"
	s.AddGuild(2).Name = "B"
	sel := 1
	s.GuildSel = &sel
	cur := uint64(2)
	s.CurrentGuild = &cur

	s.RemoveGuild(2)
	if s.CurrentGuild != nil {
		t.Fatal("current guild not cleared")
	}
	if s.GuildSel != nil {
		t.Fatal("guild selection not cleared")
	}
	if len(s.GuildIDs) != 1 || s.GuildIDs[0] != 1 {
		t.Fatalf("guild list = %v, want [1]", s.GuildIDs)
	}
	if s.Guild(2) != nil {
		t.Fatal("removed guild still in map")
	}
}

func TestRemoveEarlierGuildShiftsSelection(t *testing.T) {
	s := New(1)
	s.AddGuild(1)
	s.AddGuild(2)
	s.AddGuild(3)
	sel := 2 // guild 3
	s.GuildSel = &sel

	s.RemoveGuild(1)
	if s.GuildSel == nil || *s.GuildSel != 1 {
		t.Fatalf("selection = %v, want index 1 (still guild 3)", s.GuildSel)
	}
	if s.GuildIDs[*s.GuildSel] != 3 {
		t.Fatalf("selection points at guild %d, want 3", s.GuildIDs[*s.GuildSel])
	}
}

func TestCurrentChannelNavigationIsNilSafe(t *testing.T) {
	s := New(1)
	if s.CurrentGuildRef() != nil || s.CurrentChannelRef() != nil {
		t.Fatal("empty state resolved a current guild/channel")
	}
	g := s.AddGuild(10)
	cur := uint64(10)
	s.CurrentGuild = &cur
	if s.CurrentChannelRef() != nil {
		t.Fatal("guild without open channel resolved a channel")
	}
	g.AddChannel(20, "general")
	cc := uint64(20)
	g.CurrentChannel = &cc
	if got := s.CurrentChannelRef(); got == nil || got.ID != 20 {
		t.Fatalf("resolved channel = %v", got)
	}
	// A dangling pointer resolves to nil rather than faulting.
	cc = 999
	if s.CurrentChannelRef() != nil {
		t.Fatal("dangling channel pointer resolved")
	}
}

func TestSelectedMessageFollowsScrollOffset(t *testing.T) {
	s := New(1)
	c := s.AddGuild(10).AddChannel(20, "general")
	for i := uint64(1); i <= 3; i++ {
		c.AppendMessage(msg(i, 1, "m"))
	}
	if m := c.SelectedMessage(); m == nil || m.ID != 3 {
		t.Fatalf("offset 0 selects %v, want newest (3)", m)
	}
	c.ScrollOffset = 2
	if m := c.SelectedMessage(); m == nil || m.ID != 1 {
		t.Fatalf("offset 2 selects %v, want oldest (1)", m)
	}
	c.ScrollOffset = 3
	if m := c.SelectedMessage(); m != nil {
		t.Fatalf("offset past list selected %v, want nil", m)
	}
}
