package client

import (
	"firechat/internal/store"
)

// startRoomListener registers the subscription for the active room. Called
// from the run loop after the initial page has been applied; the actual
// registration happens on a worker.
func (s *Session) startRoomListener(channel, roomID, token string) {
	q := store.Query{
		Collection: collectionMessages,
		Filter:     &store.Filter{Field: fieldRoomID, Op: "==", Value: roomID},
		Limit:      s.roomWindow,
	}

	s.submit(func() {
		cancel, err := s.store.Subscribe(s.subCtx, q, func(snap store.Snapshot) {
			s.tryPost(&event{RoomSnapshot: &roomSnapshot{token: token, snap: snap}})
		})
		if err != nil {
			// Degraded: the room stays usable without live updates until
			// the next switch retries.
			s.log.Error().Err(err).Str("room", roomID).Msg("room subscription failed, live updates disabled")
			return
		}
		if !s.tryPost(&event{RoomListenerUp: &roomListenerUp{token: token, cancel: cancel}}) {
			cancel()
		}
	})
}

// handleRoomSnapshot merges a delivery from the room subscription into the
// view: stale generations are discarded, the first snapshot after a one-shot
// history load is suppressed once, and the remaining additions are sorted by
// timestamp and deduplicated against the displayed set.
func (s *Session) handleRoomSnapshot(ev *roomSnapshot) {
	if ev.token != s.roomToken {
		s.log.Debug().Msg("discarding snapshot from cancelled room subscription")
		return
	}
	if s.suppressInitial {
		s.suppressInitial = false
		return
	}

	msgs := addedMessages(ev.snap)
	if len(msgs) == 0 {
		return
	}
	sortMessagesByTime(msgs)
	s.appendNew(s.currentChannel, msgs)
}
