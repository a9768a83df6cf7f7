package client

import (
	"context"
	"fmt"

	"firechat/internal/store"
)

func (s *Session) handleDeleteHistory(req *deleteHistoryRequest) {
	if req.channel == "" {
		req.channel = s.currentChannel
	}
	if req.channel == LobbyChannel {
		req.reply <- deleteResult{err: ErrLobbyProtected}
		return
	}

	roomID, ok := s.dmRooms[req.channel]
	if !ok {
		var err error
		roomID, err = DMRoomID(s.username, req.channel)
		if err != nil {
			req.reply <- deleteResult{err: err}
			return
		}
	}

	ok = s.submit(func() {
		count, err := deleteRoomMessages(req.ctx, s.store, roomID)
		req.reply <- deleteResult{count: count, err: err}
		if err != nil {
			return
		}
		s.tryPost(&event{HistoryDeleted: &historyDeleted{
			channel:    req.channel,
			removeRoom: req.removeRoom,
		}})
	})
	if !ok {
		req.reply <- deleteResult{err: ErrBusy}
	}
}

// deleteRoomMessages removes every message of a room, committing full
// store-limit sized chunks before continuing.
func deleteRoomMessages(ctx context.Context, st store.Store, roomID string) (int, error) {
	docs, err := st.GetAll(ctx, store.Query{
		Collection: collectionMessages,
		Filter:     &store.Filter{Field: fieldRoomID, Op: "==", Value: roomID},
	})
	if err != nil {
		return 0, fmt.Errorf("list messages for %s: %w", roomID, err)
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}

	deleted := 0
	for start := 0; start < len(ids); start += store.MaxBatchDelete {
		end := min(start+store.MaxBatchDelete, len(ids))
		if err := st.BatchDelete(ctx, collectionMessages, ids[start:end]); err != nil {
			return deleted, fmt.Errorf("delete messages for %s: %w", roomID, err)
		}
		deleted += end - start
	}
	return deleted, nil
}

// handleHistoryDeleted clears local state for a room whose history was
// removed from the store.
func (s *Session) handleHistoryDeleted(ev *historyDeleted) {
	delete(s.unread, ev.channel)
	delete(s.caches, ev.channel)
	delete(s.cursors, ev.channel)
	if ev.removeRoom {
		delete(s.dmRooms, ev.channel)
	}

	if ev.channel == s.currentChannel {
		if ev.removeRoom {
			s.handleSwitch(&switchRequest{channel: LobbyChannel})
			return
		}
		s.displayed = make(map[string]struct{})
		s.ui.ClearHistory()
	}

	s.renderRoomList()
}
