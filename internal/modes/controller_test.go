package modes

import (
	"testing"
	"time"

	"github.com/ravel-chat/ravel/internal/store"
	"github.com/ravel-chat/ravel/internal/types"
)

const selfID = 1

func newFixture() (*store.State, *Controller, chan types.Intent) {
	st := store.New(selfID)
	intents := make(chan types.Intent, 16)
	return st, New(st, intents), intents
}

// openChannel tracks guild 10 / channel 20 with n messages (ids 1..n,
// alternating self and other authorship unless own is set) and opens it.
func openChannel(st *store.State, n int, own bool) *store.Channel {
	g := st.AddGuild(10)
	ch := g.AddChannel(20, "general")
	for i := 1; i <= n; i++ {
		author := uint64(selfID)
		if !own && i%2 == 0 {
			author = 2
		}
		ch.AppendMessage(&types.Message{
			ID:        uint64(i),
			AuthorID:  author,
			Content:   types.TextContent{Text: "m"},
			CreatedAt: time.Unix(int64(i), 0),
		})
	}
	gid, cid := uint64(10), uint64(20)
	st.CurrentGuild = &gid
	g.CurrentChannel = &cid
	return ch
}

func drain(ch chan types.Intent) []types.Intent {
	var out []types.Intent
	for {
		select {
		case in := <-ch:
			out = append(out, in)
		default:
			return out
		}
	}
}

func press(t *testing.T, c *Controller, keys ...Key) {
	t.Helper()
	for _, k := range keys {
		if !c.Handle(k) {
			t.Fatalf("key %+v requested quit", k)
		}
	}
}

func TestModeTransitionsFromNormal(t *testing.T) {
	cases := []struct {
		key  Key
		want store.Mode
	}{
		{Rune('i'), store.ModeInsert},
		{Rune('s'), store.ModeScroll},
		{Rune('g'), store.ModeGuildSelect},
		{Rune('c'), store.ModeChannelSelect},
		{Rune(':'), store.ModeCommand},
	}
	for _, tc := range cases {
		st, c, _ := newFixture()
		press(t, c, tc.key)
		if st.Mode != tc.want {
			t.Errorf("key %q: mode = %v, want %v", tc.key.Rune, st.Mode, tc.want)
		}
	}
}

func TestInsertComposeAndSend(t *testing.T) {
	st, c, intents := newFixture()
	openChannel(st, 0, true)
	press(t, c, Rune('i'))
	for _, r := range "héllo" {
		press(t, c, Rune(r))
	}
	press(t, c, Enter)
	got := drain(intents)
	if len(got) != 1 {
		t.Fatalf("intents = %v, want one send", got)
	}
	send, ok := got[0].(types.SendMessageIntent)
	if !ok || send.Text != "héllo" || send.GuildID != 10 || send.ChannelID != 20 {
		t.Fatalf("send intent = %#v", got[0])
	}
	if st.Input.Len() != 0 {
		t.Fatalf("buffer not emptied on submit: %q", st.Input.String())
	}
}

func TestEmptySubmitIsNoOp(t *testing.T) {
	st, c, intents := newFixture()
	openChannel(st, 0, true)
	press(t, c, Enter)
	if got := drain(intents); len(got) != 0 {
		t.Fatalf("empty submit produced %v", got)
	}
	if st.Mode != store.ModeNormal {
		t.Fatalf("mode = %v", st.Mode)
	}
}

func TestCommandQuit(t *testing.T) {
	_, c, intents := newFixture()
	press(t, c, Rune(':'), Rune('q'))
	if c.Handle(Enter) {
		t.Fatal("`:q` did not request quit")
	}
	got := drain(intents)
	if len(got) != 1 {
		t.Fatalf("intents = %v", got)
	}
	if _, ok := got[0].(types.QuitIntent); !ok {
		t.Fatalf("intent = %#v, want QuitIntent", got[0])
	}
}

func TestCommandJoinAndUnknown(t *testing.T) {
	st, c, intents := newFixture()
	press(t, c, Rune(':'))
	for _, r := range "join abc123" {
		press(t, c, Rune(r))
	}
	press(t, c, Enter)
	got := drain(intents)
	if len(got) != 1 {
		t.Fatalf("intents = %v", got)
	}
	if j, ok := got[0].(types.JoinGuildIntent); !ok || j.Invite != "abc123" {
		t.Fatalf("intent = %#v", got[0])
	}
	if st.Mode != store.ModeNormal {
		t.Fatalf("mode after dispatch = %v", st.Mode)
	}

	// Unrecognized commands are silently ignored.
	press(t, c, Rune(':'))
	for _, r := range "frobnicate" {
		press(t, c, Rune(r))
	}
	press(t, c, Enter)
	if got := drain(intents); len(got) != 0 {
		t.Fatalf("unknown command produced %v", got)
	}
}

func TestCommandBackspaceOnEmptyReturnsToNormal(t *testing.T) {
	st, c, _ := newFixture()
	press(t, c, Rune(':'), Rune('x'), Backspace)
	if st.Mode != store.ModeCommand {
		t.Fatal("backspace on non-empty buffer left command mode")
	}
	press(t, c, Backspace)
	if st.Mode != store.ModeNormal {
		t.Fatalf("mode = %v, want Normal", st.Mode)
	}
}

func TestScrollPagingEmitsGetMoreOnce(t *testing.T) {
	st, c, intents := newFixture()
	ch := openChannel(st, 3, true)
	press(t, c, Rune('s'))

	press(t, c, Rune('k'), Rune('k'))
	if ch.ScrollOffset != 2 {
		t.Fatalf("offset = %d after two scroll-ups", ch.ScrollOffset)
	}
	if got := drain(intents); len(got) != 0 {
		t.Fatalf("paging intent before the boundary: %v", got)
	}

	press(t, c, Rune('k'))
	if ch.ScrollOffset != 3 {
		t.Fatalf("offset = %d after third scroll-up, want 3", ch.ScrollOffset)
	}
	got := drain(intents)
	if len(got) != 1 {
		t.Fatalf("intents = %v, want one GetMoreMessages", got)
	}
	more, ok := got[0].(types.GetMoreMessagesIntent)
	if !ok || more.BeforeID != 1 || more.GuildID != 10 || more.ChannelID != 20 {
		t.Fatalf("paging intent = %#v, want BeforeID 1", got[0])
	}

	// A fourth scroll-up is a no-op with no duplicate intent.
	press(t, c, Rune('k'))
	if ch.ScrollOffset != 3 {
		t.Fatalf("offset moved past boundary: %d", ch.ScrollOffset)
	}
	if got := drain(intents); len(got) != 0 {
		t.Fatalf("duplicate paging intent: %v", got)
	}
}

func TestScrollDownClampsAtZero(t *testing.T) {
	st, c, _ := newFixture()
	ch := openChannel(st, 2, true)
	press(t, c, Rune('s'), Rune('j'))
	if ch.ScrollOffset != 0 {
		t.Fatalf("offset = %d, want 0", ch.ScrollOffset)
	}
}

func TestEditOwnershipGate(t *testing.T) {
	st, c, _ := newFixture()
	ch := openChannel(st, 2, false) // message 2 (newest) authored by user 2
	press(t, c, Rune('s'), Rune('e'))
	if st.Mode != store.ModeScroll || st.Editing != nil {
		t.Fatal("edit began on another user's message")
	}

	// Scroll to message 1 (own) and edit.
	press(t, c, Rune('k'), Rune('e'))
	if st.Mode != store.ModeInsert {
		t.Fatalf("mode = %v, want Insert", st.Mode)
	}
	if st.Editing == nil || st.Editing.MessageID != 1 {
		t.Fatalf("editing = %+v", st.Editing)
	}
	if st.Input.String() != "m" {
		t.Fatalf("input = %q, want message text", st.Input.String())
	}
	_ = ch
}

func TestEditSubmitAndCancelRestoreBuffer(t *testing.T) {
	st, c, intents := newFixture()
	openChannel(st, 1, true)

	// Half-composed text is saved when the edit begins.
	press(t, c, Rune('i'))
	for _, r := range "draft" {
		press(t, c, Rune(r))
	}
	press(t, c, Esc, Rune('s'), Rune('e'))
	if st.Input.String() != "m" {
		t.Fatalf("input = %q after edit begin", st.Input.String())
	}
	for _, r := range "2" {
		press(t, c, Rune(r))
	}
	press(t, c, Enter)
	got := drain(intents)
	if len(got) != 1 {
		t.Fatalf("intents = %v", got)
	}
	edit, ok := got[0].(types.EditMessageIntent)
	if !ok || edit.MessageID != 1 || edit.NewText != "m2" {
		t.Fatalf("edit intent = %#v", got[0])
	}
	if st.Input.String() != "draft" {
		t.Fatalf("saved buffer not restored after submit: %q", st.Input.String())
	}
	if st.Mode != store.ModeScroll || st.Editing != nil {
		t.Fatalf("mode=%v editing=%v after edit submit", st.Mode, st.Editing)
	}

	// Cancel path: begin another edit, then Esc twice (Insert -> Normal,
	// then cancel) restores the saved buffer.
	press(t, c, Rune('e'))
	press(t, c, Esc) // back to Normal, edit still pending
	if st.Editing == nil {
		t.Fatal("leaving Insert cleared the pending edit")
	}
	press(t, c, Esc) // cancel
	if st.Editing != nil || st.Mode != store.ModeScroll {
		t.Fatalf("cancel left editing=%v mode=%v", st.Editing, st.Mode)
	}
	if st.Input.String() != "draft" {
		t.Fatalf("saved buffer not restored on cancel: %q", st.Input.String())
	}
}

func TestDeleteConfirmFlow(t *testing.T) {
	st, c, intents := newFixture()
	openChannel(st, 1, true)
	press(t, c, Rune('s'), Rune('d'))
	if st.Mode != store.ModeDeleteConfirm {
		t.Fatalf("mode = %v", st.Mode)
	}

	// Any key other than y aborts.
	press(t, c, Rune('n'))
	if st.Mode != store.ModeScroll {
		t.Fatalf("mode = %v after abort", st.Mode)
	}
	if got := drain(intents); len(got) != 0 {
		t.Fatalf("abort emitted %v", got)
	}

	press(t, c, Rune('d'), Rune('y'))
	got := drain(intents)
	if len(got) != 1 {
		t.Fatalf("intents = %v", got)
	}
	del, ok := got[0].(types.DeleteMessageIntent)
	if !ok || del.MessageID != 1 {
		t.Fatalf("delete intent = %#v", got[0])
	}
	if st.Mode != store.ModeScroll {
		t.Fatalf("mode = %v after confirm", st.Mode)
	}
}

func TestImmediateDeleteRequiresOwnership(t *testing.T) {
	st, c, intents := newFixture()
	openChannel(st, 2, false) // newest authored by user 2
	press(t, c, Rune('s'), CtrlD)
	if got := drain(intents); len(got) != 0 {
		t.Fatalf("deleted another user's message: %v", got)
	}
	press(t, c, Rune('k'), CtrlD) // own message
	got := drain(intents)
	if len(got) != 1 {
		t.Fatalf("intents = %v", got)
	}
	if del := got[0].(types.DeleteMessageIntent); del.MessageID != 1 {
		t.Fatalf("delete intent = %#v", del)
	}
}

func TestGuildSelectNavigation(t *testing.T) {
	st, c, intents := newFixture()
	st.AddGuild(1)
	st.AddGuild(2)
	press(t, c, Rune('g'))

	// First j lands on the first guild; k from nothing lands on the last.
	press(t, c, Rune('j'))
	if st.GuildSel == nil || *st.GuildSel != 0 {
		t.Fatalf("selection = %v, want 0", st.GuildSel)
	}
	press(t, c, Rune('j'), Rune('j')) // clamped at the end
	if *st.GuildSel != 1 {
		t.Fatalf("selection = %d, want 1 (clamped)", *st.GuildSel)
	}
	press(t, c, Rune('k'), Rune('k'), Rune('k'))
	if *st.GuildSel != 0 {
		t.Fatalf("selection = %d, want 0 (clamped)", *st.GuildSel)
	}

	press(t, c, Enter)
	if st.CurrentGuild == nil || *st.CurrentGuild != 1 {
		t.Fatalf("current guild = %v, want 1", st.CurrentGuild)
	}
	if st.Mode != store.ModeChannelSelect {
		t.Fatalf("mode = %v, want ChannelSelect", st.Mode)
	}
	// Channel list not yet loaded, so a fetch goes out.
	got := drain(intents)
	if len(got) != 1 {
		t.Fatalf("intents = %v", got)
	}
	if fc := got[0].(types.FetchChannelsIntent); fc.GuildID != 1 {
		t.Fatalf("fetch channels for %d, want 1", fc.GuildID)
	}
}

func TestGuildSelectEmptyListIsNoOp(t *testing.T) {
	st, c, intents := newFixture()
	press(t, c, Rune('g'), Rune('j'), Rune('k'), Enter)
	if st.GuildSel != nil || st.CurrentGuild != nil {
		t.Fatal("selection materialized on an empty guild list")
	}
	if st.Mode != store.ModeGuildSelect {
		t.Fatalf("mode = %v", st.Mode)
	}
	if got := drain(intents); len(got) != 0 {
		t.Fatalf("intents on empty list: %v", got)
	}
}

func TestChannelSelectOpensAndFetchesFirstPage(t *testing.T) {
	st, c, intents := newFixture()
	g := st.AddGuild(1)
	g.AddChannel(5, "general")
	g.AddChannel(6, "random")
	press(t, c, Rune('g'), Rune('j'), Enter)
	drain(intents) // channel list already loaded, so nothing here
	if st.Mode != store.ModeChannelSelect {
		t.Fatalf("mode = %v", st.Mode)
	}

	press(t, c, Rune('j'), Rune('j'), Enter) // select channel 6
	if g.CurrentChannel == nil || *g.CurrentChannel != 6 {
		t.Fatalf("current channel = %v, want 6", g.CurrentChannel)
	}
	if st.Mode != store.ModeNormal {
		t.Fatalf("mode = %v, want Normal", st.Mode)
	}
	got := drain(intents)
	if len(got) != 1 {
		t.Fatalf("intents = %v", got)
	}
	fm, ok := got[0].(types.FetchMessagesIntent)
	if !ok || fm.GuildID != 1 || fm.ChannelID != 6 {
		t.Fatalf("fetch messages intent = %#v", got[0])
	}
}

func TestGuildLeaveConfirm(t *testing.T) {
	st, c, intents := newFixture()
	st.AddGuild(1)
	press(t, c, Rune('g'), Rune('j'), Rune('l'))
	if st.Mode != store.ModeGuildLeaveConfirm {
		t.Fatalf("mode = %v", st.Mode)
	}
	press(t, c, Rune('n'))
	if st.Mode != store.ModeGuildSelect {
		t.Fatalf("mode = %v after abort", st.Mode)
	}
	if got := drain(intents); len(got) != 0 {
		t.Fatalf("abort emitted %v", got)
	}

	press(t, c, Rune('l'), Rune('y'))
	got := drain(intents)
	if len(got) != 1 {
		t.Fatalf("intents = %v", got)
	}
	if lv := got[0].(types.LeaveGuildIntent); lv.GuildID != 1 {
		t.Fatalf("leave intent = %#v", lv)
	}
	if st.Mode != store.ModeGuildSelect {
		t.Fatalf("mode = %v after confirm", st.Mode)
	}
}

func TestNormalCursorKeys(t *testing.T) {
	st, c, _ := newFixture()
	st.Input.Set("ab")
	press(t, c, Rune('h'))
	if st.Input.ByteOffset() != 1 {
		t.Fatalf("offset = %d after h", st.Input.ByteOffset())
	}
	press(t, c, Rune('l'))
	if st.Input.ByteOffset() != 2 {
		t.Fatalf("offset = %d after l", st.Input.ByteOffset())
	}
	press(t, c, Left, Left, Left)
	if st.Input.ByteOffset() != 0 {
		t.Fatalf("offset = %d after lefts", st.Input.ByteOffset())
	}
}
