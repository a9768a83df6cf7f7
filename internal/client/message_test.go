package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"firechat/internal/store"
	"firechat/internal/types"
)

func TestMessageFromDoc(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	doc := store.Document{
		ID: "m1",
		Data: map[string]any{
			fieldRoomID:    "dm_alice_bob",
			fieldUsername:  "bob",
			fieldText:      "hello",
			fieldTimestamp: ts,
		},
	}

	msg := messageFromDoc(doc)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "dm_alice_bob", msg.RoomID)
	assert.Equal(t, "bob", msg.Sender)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, ts, msg.Timestamp)
}

func TestTimestampValue(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tcases := []struct {
		name     string
		value    any
		expected time.Time
	}{
		{name: "time value", value: ts, expected: ts},
		{name: "time pointer", value: &ts, expected: ts},
		{name: "nil time pointer", value: (*time.Time)(nil), expected: time.Time{}},
		{name: "rfc3339 string", value: "2024-06-01T12:00:00Z", expected: ts},
		{name: "unparseable string", value: "yesterday", expected: time.Time{}},
		{name: "missing", value: nil, expected: time.Time{}},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.expected.Equal(timestampValue(tc.value)))
		})
	}
}

func TestSortMessagesByTime(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	msgs := []types.Message{
		{ID: "c", Timestamp: base.Add(2 * time.Second)},
		{ID: "a", Timestamp: base},
		{ID: "pending1"},
		{ID: "pending2"},
		{ID: "b", Timestamp: base.Add(time.Second)},
	}

	sortMessagesByTime(msgs)

	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	// Zero timestamps sort first, equal ones keep delivery order.
	assert.Equal(t, []string{"pending1", "pending2", "a", "b", "c"}, ids)
}

func TestAddedMessages(t *testing.T) {
	snap := store.Snapshot{
		Changes: []store.Change{
			{Kind: store.ChangeAdded, Doc: store.Document{ID: "m1", Data: map[string]any{fieldText: "one"}}},
			{Kind: store.ChangeModified, Doc: store.Document{ID: "m2", Data: map[string]any{fieldText: "edited"}}},
			{Kind: store.ChangeRemoved, Doc: store.Document{ID: "m3"}},
			{Kind: store.ChangeAdded, Doc: store.Document{ID: "m4", Data: map[string]any{fieldText: "two"}}},
		},
	}

	msgs := addedMessages(snap)
	assert.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m4", msgs[1].ID)
}
