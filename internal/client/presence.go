package client

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"firechat/internal/store"
)

// PresenceTracker maintains the local user's online record and the live
// roster of online users. The online record is a document keyed by username
// that the heartbeat re-upserts on a fixed schedule.
type PresenceTracker struct {
	log       zerolog.Logger
	store     store.Store
	username  string
	interval  time.Duration
	opTimeout time.Duration

	mu           sync.Mutex
	running      bool
	stopChan     chan struct{}
	cancelRoster store.CancelFunc
}

func NewPresenceTracker(logger zerolog.Logger, st store.Store, username string, interval, opTimeout time.Duration) *PresenceTracker {
	return &PresenceTracker{
		log:       logger.With().Str("component", "presence").Logger(),
		store:     st,
		username:  username,
		interval:  interval,
		opTimeout: opTimeout,
	}
}

// GoOnline upserts the local user's presence record with a server-assigned
// last_seen. Called once on login and on every heartbeat tick.
func (p *PresenceTracker) GoOnline(ctx context.Context) error {
	data := map[string]any{
		fieldUsername: p.username,
		fieldLastSeen: store.ServerTimestamp,
	}
	if err := p.store.Set(ctx, collectionPresence, p.username, data); err != nil {
		return fmt.Errorf("update presence: %w", err)
	}
	return nil
}

// GoOffline deletes the local user's presence record, but only when the
// heartbeat has been stopped first. A running heartbeat would re-create the
// record on its next tick, so the delete is skipped instead.
func (p *PresenceTracker) GoOffline(ctx context.Context) error {
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()

	if running {
		p.log.Debug().Msg("heartbeat still running, presence record kept")
		return nil
	}

	if err := p.store.Delete(ctx, collectionPresence, p.username); err != nil {
		return fmt.Errorf("delete presence: %w", err)
	}
	return nil
}

// StartHeartbeat begins re-upserting the presence record every interval.
// Starting an already-running heartbeat is a no-op.
func (p *PresenceTracker) StartHeartbeat() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	p.running = true
	p.stopChan = make(chan struct{})

	go p.heartbeatLoop(p.stopChan)
	p.log.Debug().Dur("interval", p.interval).Msg("heartbeat started")
}

// StopHeartbeat stops the heartbeat. Safe to call repeatedly.
func (p *PresenceTracker) StopHeartbeat() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.running = false
	close(p.stopChan)
	p.log.Debug().Msg("heartbeat stopped")
}

// HeartbeatRunning reports whether the heartbeat loop is active.
func (p *PresenceTracker) HeartbeatRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *PresenceTracker) heartbeatLoop(stop chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), p.opTimeout)
			err := p.GoOnline(ctx)
			cancel()
			if err != nil {
				p.log.Warn().Err(err).Msg("heartbeat upsert failed")
			}
		case <-stop:
			return
		}
	}
}

// StartRoster subscribes to the presence collection and emits the sorted
// online-user list on every change. On failure the roster is simply
// unavailable; the session stays usable.
func (p *PresenceTracker) StartRoster(ctx context.Context, emit func([]string)) {
	cancel, err := p.store.Subscribe(ctx, store.Query{Collection: collectionPresence}, func(snap store.Snapshot) {
		emit(rosterFromDocs(snap.Docs))
	})
	if err != nil {
		p.log.Error().Err(err).Msg("roster subscription failed, online list disabled")
		return
	}

	p.mu.Lock()
	p.cancelRoster = cancel
	p.mu.Unlock()
}

// FetchRosterOnce reads the presence collection once so the roster is
// populated without waiting for the first subscription push.
func (p *PresenceTracker) FetchRosterOnce(ctx context.Context, emit func([]string)) {
	docs, err := p.store.GetAll(ctx, store.Query{Collection: collectionPresence})
	if err != nil {
		p.log.Warn().Err(err).Msg("one-shot roster fetch failed")
		return
	}
	emit(rosterFromDocs(docs))
}

// StopRoster cancels the roster subscription. Safe to call repeatedly.
func (p *PresenceTracker) StopRoster() {
	p.mu.Lock()
	cancel := p.cancelRoster
	p.cancelRoster = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// rosterFromDocs extracts usernames and sorts them case-insensitively.
func rosterFromDocs(docs []store.Document) []string {
	users := make([]string, 0, len(docs))
	for _, d := range docs {
		if name, ok := d.Data[fieldUsername].(string); ok && name != "" {
			users = append(users, name)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return strings.ToLower(users[i]) < strings.ToLower(users[j])
	})
	return users
}
