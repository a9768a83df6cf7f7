// Package client implements the realtime chat session engine: room and
// channel multiplexing, subscription lifecycle, message deduplication and
// ordering, backward pagination, presence, and cross-room unread detection.
//
// All session state is owned by a single run loop. Subscription callbacks
// and worker goroutines never touch state directly; they hand results to the
// loop through the event channel.
package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/teris-io/shortid"
	"golang.org/x/sync/errgroup"

	"firechat/internal/config"
	"firechat/internal/stats"
	"firechat/internal/store"
	"firechat/internal/types"
)

const (
	eventQueueSize = 256
	maxWorkers     = 8
)

// SwitchHook is invoked on the run loop right after a channel switch has
// been committed.
type SwitchHook func(channel, roomID string)

type Session struct {
	log      zerolog.Logger
	store    store.Store
	ui       RenderSurface
	notifier Notifier
	stats    stats.StatsProvider

	username          string
	pageSize          int
	roomWindow        int
	opTimeout         time.Duration
	presence          *PresenceTracker
	sid               *shortid.Shortid
	workers           *errgroup.Group
	events            chan *event
	stop              chan struct{}
	done              chan struct{}
	closeOnce         sync.Once
	subCtx            context.Context
	cancelSubs        context.CancelFunc

	// Everything below is owned by the run loop.
	currentChannel  string
	dmRooms         map[string]string
	unread          map[string]struct{}
	displayed       map[string]struct{}
	caches          map[string][]types.Message
	cursors         map[string]*store.Document
	roomToken       string
	suppressInitial bool
	globalPrimed    bool
	cancelRoom      store.CancelFunc
	cancelGlobal    store.CancelFunc
	switchHooks     []SwitchHook
}

func NewSession(logger zerolog.Logger, st store.Store, ui RenderSurface, notifier Notifier, sp stats.StatsProvider, cfg *config.Config, username string) (*Session, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if username == "" {
		return nil, errEmptyUsername
	}

	sid, err := shortid.New(1, shortid.DefaultABC, uint64(time.Now().UnixNano()))
	if err != nil {
		return nil, fmt.Errorf("init token generator: %w", err)
	}

	workers := &errgroup.Group{}
	workers.SetLimit(maxWorkers)

	subCtx, cancelSubs := context.WithCancel(context.Background())

	s := &Session{
		log:        logger.With().Str("component", "session").Str("user", username).Logger(),
		store:      st,
		ui:         ui,
		notifier:   notifier,
		stats:      sp,
		username:   username,
		pageSize:   cfg.PageSize,
		roomWindow: cfg.RoomWindow,
		opTimeout:  cfg.OpTimeout,
		presence:   NewPresenceTracker(logger, st, username, cfg.HeartbeatInterval, cfg.OpTimeout),
		sid:        sid,
		workers:    workers,
		events:     make(chan *event, eventQueueSize),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		subCtx:     subCtx,
		cancelSubs: cancelSubs,
		dmRooms:    make(map[string]string),
		unread:     make(map[string]struct{}),
		displayed:  make(map[string]struct{}),
		caches:     make(map[string][]types.Message),
		cursors:    make(map[string]*store.Document),
	}

	// Pagination attaches to channel switches through the hook list.
	s.switchHooks = append(s.switchHooks, func(channel, roomID string) {
		s.startInitialLoad(channel, roomID, s.roomToken)
	})

	for _, m := range []string{statMessagesRendered, statMessagesSent, statPagesLoaded, statNotifications} {
		sp.RegisterMetric(m)
	}

	return s, nil
}

const (
	statMessagesRendered = "MessagesRendered"
	statMessagesSent     = "MessagesSent"
	statPagesLoaded      = "PagesLoaded"
	statNotifications    = "NotificationsSent"
)

// Run starts the session: presence, the global unread listener and the
// lobby, then serves events until Close. Run must be called exactly once,
// typically as "go sess.Run()".
func (s *Session) Run() {
	s.log.Info().Msg("starting session")

	s.startGlobalListener()

	s.submit(func() {
		ctx, cancel := s.opCtx(context.Background())
		defer cancel()
		if err := s.presence.GoOnline(ctx); err != nil {
			s.log.Error().Err(err).Msg("going online failed, presence degraded")
		}
	})
	s.presence.StartHeartbeat()
	s.presence.StartRoster(s.subCtx, s.emitRoster)
	s.submit(func() {
		ctx, cancel := s.opCtx(context.Background())
		defer cancel()
		s.presence.FetchRosterOnce(ctx, s.emitRoster)
	})

	s.handleSwitch(&switchRequest{channel: LobbyChannel})

	for {
		select {
		case ev := <-s.events:
			s.handleEvent(ev)
		case <-s.stop:
			s.log.Info().Msg("session loop exiting")
			close(s.done)
			return
		}
	}
}

func (s *Session) handleEvent(ev *event) {
	switch {
	case ev.Switch != nil:
		s.handleSwitch(ev.Switch)
	case ev.Send != nil:
		s.handleSend(ev.Send)
	case ev.LoadOlder != nil:
		s.handleLoadOlder(ev.LoadOlder)
	case ev.DeleteHistory != nil:
		s.handleDeleteHistory(ev.DeleteHistory)
	case ev.Teardown != nil:
		s.handleTeardown(ev.Teardown)
	case ev.HistoryPage != nil:
		s.handleHistoryPage(ev.HistoryPage)
	case ev.HistoryDeleted != nil:
		s.handleHistoryDeleted(ev.HistoryDeleted)
	case ev.RoomSnapshot != nil:
		s.handleRoomSnapshot(ev.RoomSnapshot)
	case ev.RoomListenerUp != nil:
		s.handleRoomListenerUp(ev.RoomListenerUp)
	case ev.GlobalSnapshot != nil:
		s.handleGlobalSnapshot(ev.GlobalSnapshot)
	case ev.GlobalListenerUp != nil:
		s.handleGlobalListenerUp(ev.GlobalListenerUp)
	case ev.LocalMessage != nil:
		s.handleLocalMessage(ev.LocalMessage)
	case ev.Roster != nil:
		s.ui.RenderOnlineUsers(ev.Roster.users)
	}
}

// SwitchChannel makes channel the active room: "lobby" or another user's
// name for a DM. Switching to the already-active channel is a no-op.
func (s *Session) SwitchChannel(channel string) error {
	req := &switchRequest{channel: channel, reply: make(chan error, 1)}
	if !s.post(&event{Switch: req}) {
		return ErrSessionClosed
	}
	return <-req.reply
}

// Send writes a message to the active room. The message is rendered locally
// only after the store confirms the write and assigns an id; on failure
// nothing is displayed and the error is returned.
func (s *Session) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	req := &sendRequest{ctx: ctx, text: text, reply: make(chan error, 1)}
	if !s.post(&event{Send: req}) {
		return ErrSessionClosed
	}
	return <-req.reply
}

// LoadOlder fetches the next older page of the active room's history. When
// no cursor is present nothing older is fetched.
func (s *Session) LoadOlder() error {
	req := &loadOlderRequest{reply: make(chan error, 1)}
	if !s.post(&event{LoadOlder: req}) {
		return ErrSessionClosed
	}
	return <-req.reply
}

// DeleteRoomHistory deletes every message of the channel's DM room in
// store-limit sized batches and returns the number deleted. An empty
// channel targets the active conversation.
func (s *Session) DeleteRoomHistory(ctx context.Context, channel string) (int, error) {
	return s.deleteHistory(ctx, channel, false)
}

// DeleteRoomAndHistory deletes the room's history and removes the DM from
// the known-room set; when it is the active room the session returns to the
// lobby.
func (s *Session) DeleteRoomAndHistory(ctx context.Context, channel string) (int, error) {
	return s.deleteHistory(ctx, channel, true)
}

func (s *Session) deleteHistory(ctx context.Context, channel string, removeRoom bool) (int, error) {
	req := &deleteHistoryRequest{
		ctx:        ctx,
		channel:    channel,
		removeRoom: removeRoom,
		reply:      make(chan deleteResult, 1),
	}
	if !s.post(&event{DeleteHistory: req}) {
		return 0, ErrSessionClosed
	}
	res := <-req.reply
	return res.count, res.err
}

// Teardown cancels the room and global subscriptions and stops the
// heartbeat. With cleanExit the local user's presence record is deleted as
// well. Safe to call multiple times; the run loop keeps serving afterwards.
func (s *Session) Teardown(cleanExit bool) {
	req := &teardownRequest{cleanExit: cleanExit, done: make(chan struct{})}
	if !s.post(&event{Teardown: req}) {
		return
	}
	<-req.done
}

// Close stops the run loop and waits for in-flight workers to finish.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancelSubs()
		close(s.stop)
	})
	<-s.done
	s.workers.Wait()
}

func (s *Session) handleSwitch(req *switchRequest) {
	reply := func(err error) {
		if req.reply != nil {
			req.reply <- err
		}
	}

	channel := req.channel
	if channel == "" {
		reply(errEmptyUsername)
		return
	}
	if channel != LobbyChannel && channel == s.username {
		reply(ErrSelfDM)
		return
	}
	if channel == s.currentChannel {
		reply(nil)
		return
	}

	roomID := LobbyRoomID
	if channel != LobbyChannel {
		id, ok := s.dmRooms[channel]
		if !ok {
			var err error
			id, err = DMRoomID(s.username, channel)
			if err != nil {
				reply(err)
				return
			}
			s.dmRooms[channel] = id
		}
		roomID = id
	}

	s.cancelRoomListener()
	s.roomToken = s.newToken()
	s.suppressInitial = false
	s.displayed = make(map[string]struct{})
	delete(s.unread, channel)
	s.currentChannel = channel

	s.ui.ClearHistory()
	s.ui.MarkRoomTitle(channelTitle(channel))
	s.renderRoomList()

	for _, hook := range s.switchHooks {
		hook(channel, roomID)
	}

	s.log.Info().Str("channel", channel).Str("room", roomID).Msg("switched channel")
	reply(nil)
}

func (s *Session) handleSend(req *sendRequest) {
	roomID, err := s.activeRoomID()
	if err != nil {
		req.reply <- err
		return
	}
	token := s.roomToken

	data := map[string]any{
		fieldRoomID:    roomID,
		fieldUsername:  s.username,
		fieldText:      req.text,
		fieldTimestamp: store.ServerTimestamp,
	}

	ok := s.submit(func() {
		ctx, cancel := s.opCtx(req.ctx)
		defer cancel()

		doc, err := s.store.Add(ctx, collectionMessages, data)
		if err != nil {
			req.reply <- fmt.Errorf("send message: %w", err)
			return
		}
		req.reply <- nil
		s.stats.Incr(statMessagesSent)

		s.tryPost(&event{LocalMessage: &localMessage{
			token: token,
			msg: types.Message{
				ID:        doc.ID,
				RoomID:    roomID,
				Sender:    s.username,
				Text:      req.text,
				Timestamp: time.Now().UTC(),
			},
		}})
	})
	if !ok {
		req.reply <- ErrBusy
	}
}

func (s *Session) handleLocalMessage(ev *localMessage) {
	if ev.token != s.roomToken {
		// The user switched rooms while the write was in flight.
		s.log.Debug().Str("id", ev.msg.ID).Msg("discarding confirmed message for previous room")
		return
	}
	s.appendNew(s.currentChannel, []types.Message{ev.msg})
}

func (s *Session) handleTeardown(req *teardownRequest) {
	s.log.Info().Bool("clean_exit", req.cleanExit).Msg("tearing down listeners")

	s.cancelRoomListener()
	if s.cancelGlobal != nil {
		s.cancelGlobal()
		s.cancelGlobal = nil
	}
	s.presence.StopRoster()
	// The heartbeat must stop before going offline or the delete is skipped.
	s.presence.StopHeartbeat()

	if !req.cleanExit {
		close(req.done)
		return
	}

	ok := s.submit(func() {
		defer close(req.done)
		ctx, cancel := s.opCtx(context.Background())
		defer cancel()
		if err := s.presence.GoOffline(ctx); err != nil {
			s.log.Error().Err(err).Msg("removing presence on exit failed")
		}
	})
	if !ok {
		close(req.done)
	}
}

func (s *Session) handleRoomListenerUp(ev *roomListenerUp) {
	if ev.token != s.roomToken {
		// A switch happened while the subscription was being registered.
		ev.cancel()
		return
	}
	s.cancelRoom = ev.cancel
}

func (s *Session) handleGlobalListenerUp(ev *globalListenerUp) {
	if s.cancelGlobal != nil {
		ev.cancel()
		return
	}
	s.cancelGlobal = ev.cancel
}

func (s *Session) cancelRoomListener() {
	if s.cancelRoom != nil {
		s.cancelRoom()
		s.cancelRoom = nil
	}
}

// activeRoomID resolves the room id of the active channel.
func (s *Session) activeRoomID() (string, error) {
	if s.currentChannel == LobbyChannel {
		return LobbyRoomID, nil
	}
	id, ok := s.dmRooms[s.currentChannel]
	if !ok {
		return "", fmt.Errorf("no room known for channel %q", s.currentChannel)
	}
	return id, nil
}

// appendNew renders messages not displayed yet and records them in the
// dedup set and the channel cache.
func (s *Session) appendNew(channel string, msgs []types.Message) {
	fresh := make([]types.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.ID != "" {
			if _, seen := s.displayed[m.ID]; seen {
				continue
			}
			s.displayed[m.ID] = struct{}{}
		}
		fresh = append(fresh, m)
		s.stats.Incr(statMessagesRendered)
	}
	if len(fresh) == 0 {
		return
	}

	s.caches[channel] = append(s.caches[channel], fresh...)
	s.ui.RenderMessages(fresh)
}

func (s *Session) renderRoomList() {
	rooms := make([]types.Room, 0, len(s.dmRooms)+1)
	rooms = append(rooms, lobbyRoom())

	partners := make([]string, 0, len(s.dmRooms))
	for partner := range s.dmRooms {
		partners = append(partners, partner)
	}
	sortCaseInsensitive(partners)
	for _, partner := range partners {
		rooms = append(rooms, dmRoom(s.dmRooms[partner], s.username, partner))
	}

	unread := make(map[string]struct{}, len(s.unread))
	for ch := range s.unread {
		unread[ch] = struct{}{}
	}

	s.ui.RenderRoomList(rooms, s.currentChannel, unread)
}

func (s *Session) emitRoster(users []string) {
	s.tryPost(&event{Roster: &rosterUpdate{users: users}})
}

func (s *Session) newToken() string {
	token, err := s.sid.Generate()
	if err != nil {
		// shortid only fails on clock anomalies; fall back to a time tag.
		return fmt.Sprintf("tok-%d", time.Now().UnixNano())
	}
	return token
}

// opCtx derives a fail-fast context for a single store operation.
func (s *Session) opCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, s.opTimeout)
}

// submit runs fn on the bounded worker pool. It reports false when the pool
// is saturated; callers degrade instead of blocking the run loop.
func (s *Session) submit(fn func()) bool {
	ok := s.workers.TryGo(func() error {
		fn()
		return nil
	})
	if !ok {
		s.log.Warn().Msg("worker pool saturated, operation dropped")
	}
	return ok
}

// post enqueues an event, blocking until the loop accepts it. Returns false
// once the session is closed. The stop channel is checked first: the event
// queue is buffered, so a send could still succeed after the loop exited.
func (s *Session) post(ev *event) bool {
	select {
	case <-s.stop:
		return false
	default:
	}
	select {
	case s.events <- ev:
		return true
	case <-s.stop:
		return false
	}
}

// tryPost enqueues an event without blocking. Subscription callbacks use it
// so a stalled loop cannot back up into the store's delivery goroutines.
func (s *Session) tryPost(ev *event) bool {
	select {
	case <-s.stop:
		return false
	default:
	}
	select {
	case s.events <- ev:
		return true
	default:
		s.log.Warn().Msg("event queue full, dropping event")
		return false
	}
}
