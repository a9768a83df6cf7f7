package client

import (
	"context"

	"firechat/internal/store"
	"firechat/internal/types"
)

// event is the single hand-off type between worker goroutines, subscription
// callbacks and the session run loop. Exactly one field is set.
type event struct {
	Switch           *switchRequest
	Send             *sendRequest
	LoadOlder        *loadOlderRequest
	DeleteHistory    *deleteHistoryRequest
	Teardown         *teardownRequest
	HistoryPage      *historyPage
	HistoryDeleted   *historyDeleted
	RoomSnapshot     *roomSnapshot
	RoomListenerUp   *roomListenerUp
	GlobalSnapshot   *globalSnapshot
	GlobalListenerUp *globalListenerUp
	LocalMessage     *localMessage
	Roster           *rosterUpdate
}

type switchRequest struct {
	channel string
	reply   chan error
}

type sendRequest struct {
	ctx   context.Context
	text  string
	reply chan error
}

type loadOlderRequest struct {
	reply chan error
}

type deleteHistoryRequest struct {
	ctx        context.Context
	channel    string
	removeRoom bool
	reply      chan deleteResult
}

type deleteResult struct {
	count int
	err   error
}

type teardownRequest struct {
	cleanExit bool
	done      chan struct{}
}

// historyPage is the result of a one-shot page fetch. docs are in the
// fetched (newest-first) order; the run loop reverses them for display.
type historyPage struct {
	channel string
	roomID  string
	token   string
	initial bool
	docs    []store.Document
	err     error
}

type historyDeleted struct {
	channel    string
	removeRoom bool
}

// roomSnapshot carries a delivery from the active room's subscription. token
// identifies the subscription generation; deliveries from a cancelled
// generation are discarded by the run loop.
type roomSnapshot struct {
	token string
	snap  store.Snapshot
}

type roomListenerUp struct {
	token  string
	cancel store.CancelFunc
}

type globalSnapshot struct {
	snap store.Snapshot
}

type globalListenerUp struct {
	cancel store.CancelFunc
}

// localMessage is an optimistic insert of the local user's own message,
// posted only after the store confirmed the write and assigned an id.
type localMessage struct {
	token string
	msg   types.Message
}

type rosterUpdate struct {
	users []string
}
