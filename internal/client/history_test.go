package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"firechat/internal/store"
	"firechat/internal/types"
)

func TestDeleteRoomMessages(t *testing.T) {
	t.Run("chunks at the store batch limit", func(t *testing.T) {
		docs := make([]store.Document, 1000)
		for i := range docs {
			docs[i] = store.Document{ID: fmt.Sprintf("m%d", i)}
		}

		st := &store.MockStore{}
		st.On("GetAll", mock.Anything, mock.Anything).Return(docs, nil).Once()

		var chunkSizes []int
		st.On("BatchDelete", mock.Anything, collectionMessages, mock.Anything).
			Return(nil).
			Run(func(args mock.Arguments) {
				chunkSizes = append(chunkSizes, len(args.Get(2).([]string)))
			})

		count, err := deleteRoomMessages(context.Background(), st, "dm_alice_bob")
		require.NoError(t, err)
		assert.Equal(t, 1000, count)
		assert.Equal(t, []int{400, 400, 200}, chunkSizes)
	})

	t.Run("empty room", func(t *testing.T) {
		st := &store.MockStore{}
		st.On("GetAll", mock.Anything, mock.Anything).Return([]store.Document{}, nil).Once()

		count, err := deleteRoomMessages(context.Background(), st, "dm_alice_bob")
		require.NoError(t, err)
		assert.Zero(t, count)
		st.AssertNotCalled(t, "BatchDelete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("partial failure reports deleted count", func(t *testing.T) {
		docs := make([]store.Document, 500)
		for i := range docs {
			docs[i] = store.Document{ID: fmt.Sprintf("m%d", i)}
		}

		st := &store.MockStore{}
		st.On("GetAll", mock.Anything, mock.Anything).Return(docs, nil).Once()
		st.On("BatchDelete", mock.Anything, collectionMessages, mock.Anything).Return(nil).Once()
		st.On("BatchDelete", mock.Anything, collectionMessages, mock.Anything).Return(errors.New("rpc failed")).Once()

		count, err := deleteRoomMessages(context.Background(), st, "dm_alice_bob")
		assert.Error(t, err)
		assert.Equal(t, 400, count, "expected committed chunks counted before the failure")
	})
}

func TestHandleDeleteHistory(t *testing.T) {
	t.Run("lobby protected", func(t *testing.T) {
		sess, _, _ := newTestSession(t, &store.MockStore{})
		sess.currentChannel = LobbyChannel

		reply := make(chan deleteResult, 1)
		sess.handleDeleteHistory(&deleteHistoryRequest{ctx: context.Background(), channel: LobbyChannel, reply: reply})
		assert.ErrorIs(t, (<-reply).err, ErrLobbyProtected)
	})

	t.Run("empty channel targets active conversation", func(t *testing.T) {
		st := &store.MockStore{}
		st.On("GetAll", mock.Anything, mock.MatchedBy(func(q store.Query) bool {
			return q.Filter != nil && q.Filter.Value == "dm_alice_bob"
		})).Return([]store.Document{{ID: "m1"}}, nil).Once()
		st.On("BatchDelete", mock.Anything, collectionMessages, []string{"m1"}).Return(nil).Once()

		sess, _, _ := newTestSession(t, st)
		sess.currentChannel = "bob"
		sess.dmRooms["bob"] = "dm_alice_bob"

		reply := make(chan deleteResult, 1)
		sess.handleDeleteHistory(&deleteHistoryRequest{ctx: context.Background(), reply: reply})

		res := <-reply
		require.NoError(t, res.err)
		assert.Equal(t, 1, res.count)

		ev := nextEvent(t, sess)
		require.NotNil(t, ev.HistoryDeleted)
		assert.Equal(t, "bob", ev.HistoryDeleted.channel)
		st.AssertExpectations(t)
	})

	t.Run("unknown channel derives the room id", func(t *testing.T) {
		st := &store.MockStore{}
		st.On("GetAll", mock.Anything, mock.MatchedBy(func(q store.Query) bool {
			return q.Filter != nil && q.Filter.Value == "dm_alice_carol"
		})).Return([]store.Document{}, nil).Once()

		sess, _, _ := newTestSession(t, st)
		sess.currentChannel = LobbyChannel

		reply := make(chan deleteResult, 1)
		sess.handleDeleteHistory(&deleteHistoryRequest{ctx: context.Background(), channel: "carol", reply: reply})

		res := <-reply
		require.NoError(t, res.err)
		assert.Zero(t, res.count)
	})
}

func TestHandleHistoryDeleted(t *testing.T) {
	t.Run("inactive room state cleared", func(t *testing.T) {
		sess, ui, _ := newTestSession(t, &store.MockStore{})
		sess.currentChannel = LobbyChannel
		sess.dmRooms["bob"] = "dm_alice_bob"
		sess.unread["bob"] = struct{}{}
		sess.caches["bob"] = []types.Message{{ID: "m1"}}
		cursor := store.Document{ID: "m1"}
		sess.cursors["bob"] = &cursor

		sess.handleHistoryDeleted(&historyDeleted{channel: "bob"})

		assert.NotContains(t, sess.unread, "bob")
		assert.NotContains(t, sess.caches, "bob")
		assert.NotContains(t, sess.cursors, "bob")
		assert.Contains(t, sess.dmRooms, "bob", "expected the room kept without removeRoom")
		assert.Zero(t, ui.clears, "expected no redraw for an inactive room")
	})

	t.Run("active room redraws empty", func(t *testing.T) {
		sess, ui, _ := newTestSession(t, &store.MockStore{})
		sess.currentChannel = "bob"
		sess.dmRooms["bob"] = "dm_alice_bob"
		sess.displayed["m1"] = struct{}{}

		sess.handleHistoryDeleted(&historyDeleted{channel: "bob"})

		assert.Empty(t, sess.displayed)
		assert.Equal(t, 1, ui.clears)
		assert.Equal(t, "bob", sess.currentChannel)
	})

	t.Run("removing the active room returns to the lobby", func(t *testing.T) {
		st := &store.MockStore{}
		st.On("GetAll", mock.Anything, mock.Anything).Return([]store.Document{}, nil)

		sess, _, _ := newTestSession(t, st)
		sess.currentChannel = "bob"
		sess.dmRooms["bob"] = "dm_alice_bob"

		sess.handleHistoryDeleted(&historyDeleted{channel: "bob", removeRoom: true})

		assert.Equal(t, LobbyChannel, sess.currentChannel)
		assert.NotContains(t, sess.dmRooms, "bob")
	})
}
