// Package term renders the chat session as plain lines on a terminal.
package term

import (
	"fmt"
	"io"
	"sync"

	"firechat/internal/types"
)

// Terminal implements the engine's render surface over a single writer.
// The engine serializes render calls, but user input echoes on the same
// terminal, so writes are guarded anyway.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	username string
}

func NewTerminal(out io.Writer, username string) *Terminal {
	return &Terminal{out: out, username: username}
}

func (t *Terminal) RenderMessages(msgs []types.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, m := range msgs {
		stamp := "--:--"
		if !m.Timestamp.IsZero() {
			stamp = m.Timestamp.Local().Format("15:04")
		}
		fmt.Fprintf(t.out, "[%s] %s: %s\n", stamp, m.Sender, m.Text)
	}
}

func (t *Terminal) ClearHistory() {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintln(t.out, "--- cleared ---")
}

func (t *Terminal) RenderOnlineUsers(users []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "online (%d):", len(users))
	for _, u := range users {
		fmt.Fprintf(t.out, " %s", u)
	}
	fmt.Fprintln(t.out)
}

func (t *Terminal) RenderRoomList(rooms []types.Room, active string, unread map[string]struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprint(t.out, "rooms:")
	for _, r := range rooms {
		channel, title := t.channelFor(r)
		marker := ""
		if channel == active {
			marker = "*"
		}
		if _, ok := unread[channel]; ok {
			marker += "!"
		}
		fmt.Fprintf(t.out, " %s%s", title, marker)
	}
	fmt.Fprintln(t.out)
}

func (t *Terminal) MarkRoomTitle(title string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "=== %s ===\n", title)
}

func (t *Terminal) channelFor(r types.Room) (channel, title string) {
	if r.Kind == types.RoomKindLobby {
		return r.ID, "#" + r.ID
	}
	for _, p := range r.Participants {
		if p != t.username {
			return p, "@" + p
		}
	}
	return r.ID, "@" + r.ID
}
