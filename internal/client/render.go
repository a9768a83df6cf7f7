package client

import "firechat/internal/types"

// RenderSurface is the rendering contract the engine pushes to. All calls
// happen on the session's run loop; implementations decide how to display.
type RenderSurface interface {
	// RenderMessages appends an ordered batch to the visible history.
	RenderMessages(msgs []types.Message)
	// ClearHistory discards the visible history of the active room.
	ClearHistory()
	// RenderOnlineUsers replaces the online roster.
	RenderOnlineUsers(users []string)
	// RenderRoomList replaces the room list. unread holds channel names.
	RenderRoomList(rooms []types.Room, active string, unread map[string]struct{})
	// MarkRoomTitle updates the active room's title.
	MarkRoomTitle(title string)
}

// Notifier raises an out-of-band user notification. Best-effort:
// implementations swallow failures and must not block for long.
type Notifier interface {
	Notify(title, body string)
}
