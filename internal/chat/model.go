// Package chat wires the state engine to the terminal: a bubbletea model
// owns the render and keyboard loops, a command processor drains the intent
// queue, and an event goroutine feeds the inbound stream into the sync
// engine. All of them share one state object behind its reader/writer lock,
// and none of them holds it across a blocking call.
package chat

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ravel-chat/ravel/internal/client"
	"github.com/ravel-chat/ravel/internal/modes"
	"github.com/ravel-chat/ravel/internal/store"
	"github.com/ravel-chat/ravel/internal/syncer"
	"github.com/ravel-chat/ravel/internal/types"
)

// intentQueueCap bounds the intent queue; producers drop on overflow rather
// than block the UI.
const intentQueueCap = 64

// Options configure the chat session.
type Options struct {
	API        client.API
	Session    client.Session
	ServerName string
	Debug      bool
}

// Model is the chat UI. It reads the shared state under RLock in View and
// mutates it only through the mode controller and sync engine.
type Model struct {
	api     client.API
	state   *store.State
	engine  *syncer.Engine
	ctrl    *modes.Controller
	intents chan types.Intent
	resub   chan struct{}

	serverName string
	width      int
	height     int
	status     string
	quitting   bool
}

// Run starts the chat session and blocks until it ends. The terminal is
// restored unconditionally, error paths included; presence is flipped to
// offline on the way out.
func Run(ctx context.Context, opts Options) error {
	if opts.Debug {
		debugEnabled = true
	}
	st := store.New(opts.Session.UserID)
	intents := make(chan types.Intent, intentQueueCap)
	m := &Model{
		api:        opts.API,
		state:      st,
		engine:     syncer.New(st, intents),
		ctrl:       modes.New(st, intents),
		intents:    intents,
		resub:      make(chan struct{}, 1),
		serverName: opts.ServerName,
		status:     "connecting",
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	go m.bootstrap(ctx, program)
	go m.processIntents(ctx, program)
	go m.receiveEvents(ctx, program)

	_, err := program.Run()
	cancel()
	m.goOffline()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("chat session: %w", err)
	}
	return nil
}

// bootstrap announces presence and pulls the initial guild list; everything
// after that is driven by intents and events.
func (m *Model) bootstrap(ctx context.Context, p *tea.Program) {
	online := types.StatusOnline
	if err := m.api.UpdateProfile(ctx, client.ProfileUpdate{NewStatus: &online}); err != nil {
		debugLog("bootstrap: update profile: " + err.Error())
	}

	if me, err := m.api.Profile(ctx, m.state.UserID); err == nil {
		m.engine.ApplyProfile(me)
	}

	entries, err := m.api.GuildList(ctx)
	if err != nil {
		p.Send(statusMsg{text: "guild list: " + err.Error()})
		return
	}
	m.engine.ApplyGuildList(entries)
	for _, ent := range entries {
		info, err := m.api.Guild(ctx, ent.ID)
		if err != nil {
			debugLog(fmt.Sprintf("bootstrap: guild %d: %v", ent.ID, err))
			continue
		}
		m.engine.ApplyGuildName(info.ID, info.Name)
	}
	m.resubscribe()
	p.Send(statusMsg{text: "connected"})
}

// goOffline flips presence on shutdown with its own short-lived context; the
// session context is already cancelled by the time this runs.
func (m *Model) goOffline() {
	ctx, cancel := context.WithTimeout(context.Background(), offlineTimeout)
	defer cancel()
	offline := types.StatusOffline
	if err := m.api.UpdateProfile(ctx, client.ProfileUpdate{NewStatus: &offline}); err != nil {
		debugLog("shutdown: update profile: " + err.Error())
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// selfName returns the current user's display name, if resolved yet.
func (m *Model) selfName() string {
	m.state.RLock()
	defer m.state.RUnlock()
	if me := m.state.Member(m.state.UserID); me != nil {
		return me.Name
	}
	return ""
}
