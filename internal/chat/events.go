package chat

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ravel-chat/ravel/internal/client"
	"github.com/ravel-chat/ravel/internal/types"
)

// resubDelay throttles reconnects after an event-loop failure.
const resubDelay = time.Second

// resubscribe wakes the event loop to rebuild its source set (guild
// membership changed, or the first guild list arrived). Buffered send so
// producers never block.
func (m *Model) resubscribe() {
	select {
	case m.resub <- struct{}{}:
	default:
	}
}

// receiveEvents runs the inbound-event loop: subscribe to the homeserver,
// account-action and per-guild sources, apply each event through the sync
// engine, and repaint. The subscription is torn down and rebuilt whenever
// resubscribe fires; the handler stops the loop once the session context is
// cancelled.
func (m *Model) receiveEvents(ctx context.Context, p *tea.Program) {
	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
			return
		case <-m.resub:
		}

		loopCtx, cancel := context.WithCancel(ctx)
		watcherDone := make(chan struct{})
		go func() {
			select {
			case <-m.resub:
				// Tear down and rebuild with fresh sources; put the
				// signal back for the outer loop.
				m.resubscribe()
				cancel()
			case <-watcherDone:
			}
		}()

		m.state.RLock()
		sources := client.GuildSources(append([]uint64(nil), m.state.GuildIDs...))
		m.state.RUnlock()

		err := m.api.EventLoop(loopCtx, sources, func(ev types.Event) (bool, error) {
			if ctx.Err() != nil {
				return true, nil
			}
			m.engine.ApplyEvent(ev)
			m.maybeNotify(ev)
			p.Send(refreshMsg{})
			return false, nil
		})
		cancel()
		close(watcherDone)
		if err != nil && ctx.Err() == nil && !errors.Is(err, context.Canceled) {
			debugLog("event loop: " + err.Error())
			time.Sleep(resubDelay)
			m.resubscribe()
		}
	}
}
