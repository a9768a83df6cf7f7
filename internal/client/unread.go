package client

import (
	"firechat/internal/store"
)

// startGlobalListener subscribes to all messages for the whole session so
// inbound DM traffic is detected for rooms that are not open.
func (s *Session) startGlobalListener() {
	s.submit(func() {
		cancel, err := s.store.Subscribe(s.subCtx, store.Query{Collection: collectionMessages}, func(snap store.Snapshot) {
			s.tryPost(&event{GlobalSnapshot: &globalSnapshot{snap: snap}})
		})
		if err != nil {
			s.log.Error().Err(err).Msg("global subscription failed, unread detection disabled")
			return
		}
		if !s.tryPost(&event{GlobalListenerUp: &globalListenerUp{cancel: cancel}}) {
			cancel()
		}
	})
}

// handleGlobalSnapshot inspects every added message session-wide. DM traffic
// addressed to the local user registers unknown rooms and, when the room is
// not the active one, marks it unread and raises a notification.
func (s *Session) handleGlobalSnapshot(ev *globalSnapshot) {
	if !s.globalPrimed {
		// The first delivery replays the existing backlog; it is state,
		// not inbound traffic.
		s.globalPrimed = true
		return
	}

	for _, msg := range addedMessages(ev.snap) {
		if !IsDMRoom(msg.RoomID) {
			continue
		}
		if msg.Sender == s.username {
			continue
		}
		other, ok := ParseDMRoom(msg.RoomID, s.username)
		if !ok {
			continue
		}

		if _, known := s.dmRooms[other]; !known {
			s.dmRooms[other] = msg.RoomID
			s.renderRoomList()
		}

		if other == s.currentChannel {
			continue
		}

		s.unread[other] = struct{}{}
		s.renderRoomList()
		s.notify("New direct message", "From: "+msg.Sender)
	}
}

// notify raises a best-effort desktop notification off the run loop.
func (s *Session) notify(title, body string) {
	if s.notifier == nil {
		return
	}
	if s.submit(func() { s.notifier.Notify(title, body) }) {
		s.stats.Incr(statNotifications)
	}
}
