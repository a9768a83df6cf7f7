package client

import (
	"sort"
	"time"

	"firechat/internal/store"
	"firechat/internal/types"
)

const (
	collectionMessages = "messages"
	collectionPresence = "presence"

	fieldRoomID    = "room_id"
	fieldUsername  = "username"
	fieldText      = "text"
	fieldTimestamp = "timestamp"
	fieldLastSeen  = "last_seen"
)

// messageFromDoc maps a stored document onto a Message. A missing or
// unparseable timestamp becomes the zero time, which sorts earliest.
func messageFromDoc(doc store.Document) types.Message {
	msg := types.Message{ID: doc.ID}
	if v, ok := doc.Data[fieldRoomID].(string); ok {
		msg.RoomID = v
	}
	if v, ok := doc.Data[fieldUsername].(string); ok {
		msg.Sender = v
	}
	if v, ok := doc.Data[fieldText].(string); ok {
		msg.Text = v
	}
	msg.Timestamp = timestampValue(doc.Data[fieldTimestamp])
	return msg
}

func timestampValue(v any) time.Time {
	switch ts := v.(type) {
	case time.Time:
		return ts
	case *time.Time:
		if ts != nil {
			return *ts
		}
	case string:
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}

// sortMessagesByTime orders a batch ascending by timestamp. The sort is
// stable so messages with equal (or missing) timestamps keep delivery order.
func sortMessagesByTime(msgs []types.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}

// addedMessages extracts the added documents from a snapshot in delivery
// order. Other change kinds are not consumed by this client.
func addedMessages(snap store.Snapshot) []types.Message {
	var msgs []types.Message
	for _, ch := range snap.Changes {
		if ch.Kind != store.ChangeAdded {
			continue
		}
		msgs = append(msgs, messageFromDoc(ch.Doc))
	}
	return msgs
}
