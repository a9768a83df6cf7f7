package client

import (
	"firechat/internal/store"
	"firechat/internal/types"
)

// startInitialLoad fetches the newest page for a freshly-opened room. The
// page arrives as a historyPage event; the room subscription is started only
// after the page has been applied, so the two cannot race.
func (s *Session) startInitialLoad(channel, roomID, token string) {
	q := s.pageQuery(roomID, nil)
	s.fetchPage(channel, roomID, token, q, true)
}

func (s *Session) handleLoadOlder(req *loadOlderRequest) {
	channel := s.currentChannel
	cursor := s.cursors[channel]
	if cursor == nil {
		// Either no page was loaded yet or there is nothing older.
		req.reply <- nil
		return
	}

	roomID, err := s.activeRoomID()
	if err != nil {
		req.reply <- err
		return
	}

	if !s.fetchPage(channel, roomID, s.roomToken, s.pageQuery(roomID, cursor), false) {
		req.reply <- ErrBusy
		return
	}
	req.reply <- nil
}

// pageQuery builds a newest-first page query, optionally positioned strictly
// after a cursor document.
func (s *Session) pageQuery(roomID string, cursor *store.Document) store.Query {
	return store.Query{
		Collection: collectionMessages,
		Filter:     &store.Filter{Field: fieldRoomID, Op: "==", Value: roomID},
		OrderBy:    &store.Order{Field: fieldTimestamp, Desc: true},
		Limit:      s.pageSize,
		StartAfter: cursor,
	}
}

func (s *Session) fetchPage(channel, roomID, token string, q store.Query, initial bool) bool {
	return s.submit(func() {
		ctx, cancel := s.opCtx(nil)
		defer cancel()

		docs, err := s.store.GetAll(ctx, q)
		s.tryPost(&event{HistoryPage: &historyPage{
			channel: channel,
			roomID:  roomID,
			token:   token,
			initial: initial,
			docs:    docs,
			err:     err,
		}})
	})
}

// handleHistoryPage applies a fetched page. Pages for a stale subscription
// generation or a no-longer-active channel are discarded.
func (s *Session) handleHistoryPage(p *historyPage) {
	if p.token != s.roomToken || p.channel != s.currentChannel {
		s.log.Debug().Str("channel", p.channel).Msg("discarding stale history page")
		return
	}

	if p.err != nil {
		s.log.Error().Err(p.err).Str("room", p.roomID).Msg("history load failed")
		if p.initial {
			// Fall back to listener-only population: without the one-shot
			// load the subscription's initial snapshot must render.
			s.startRoomListener(p.channel, p.roomID, p.token)
		}
		return
	}

	// Pages are fetched newest-first; reverse for ascending display order.
	msgs := make([]types.Message, 0, len(p.docs))
	for i := len(p.docs) - 1; i >= 0; i-- {
		msgs = append(msgs, messageFromDoc(p.docs[i]))
	}

	if p.initial {
		s.caches[p.channel] = msgs
		s.setCursor(p.channel, p.docs)
		s.rerenderCache(p.channel)

		s.suppressInitial = true
		s.startRoomListener(p.channel, p.roomID, p.token)
	} else {
		if len(p.docs) == 0 {
			// No older messages exist; drop the cursor so further loads
			// are no-ops.
			s.cursors[p.channel] = nil
			return
		}

		cached := make(map[string]struct{}, len(s.caches[p.channel]))
		for _, m := range s.caches[p.channel] {
			cached[m.ID] = struct{}{}
		}
		older := msgs[:0]
		for _, m := range msgs {
			if _, ok := cached[m.ID]; ok {
				continue
			}
			older = append(older, m)
		}

		s.caches[p.channel] = append(older, s.caches[p.channel]...)
		s.setCursor(p.channel, p.docs)
		s.rerenderCache(p.channel)
	}

	s.stats.Incr(statPagesLoaded)
}

// setCursor points the channel's cursor at the oldest fetched document (the
// last one of a newest-first page).
func (s *Session) setCursor(channel string, docs []store.Document) {
	if len(docs) == 0 {
		s.cursors[channel] = nil
		return
	}
	oldest := docs[len(docs)-1]
	s.cursors[channel] = &oldest
}

// rerenderCache replaces the visible history with the channel's cache and
// rebuilds the dedup set from it. Page loads always redraw in full to avoid
// partial-state bugs from interleaved live updates.
func (s *Session) rerenderCache(channel string) {
	cache := s.caches[channel]

	s.displayed = make(map[string]struct{}, len(cache))
	for _, m := range cache {
		if m.ID != "" {
			s.displayed[m.ID] = struct{}{}
		}
	}

	s.ui.ClearHistory()
	s.ui.RenderMessages(cache)
}
