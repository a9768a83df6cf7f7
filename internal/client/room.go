package client

import (
	"slices"
	"strings"

	"firechat/internal/types"
)

const (
	// LobbyChannel is the channel name of the shared lobby room.
	LobbyChannel = "lobby"
	// LobbyRoomID is the fixed room id of the lobby.
	LobbyRoomID = "lobby"

	dmRoomPrefix = "dm_"
)

// DMRoomID derives the canonical room id for a DM between two users. The
// derivation is symmetric: DMRoomID(a, b) == DMRoomID(b, a). A user cannot
// open a DM with themself.
func DMRoomID(a, b string) (string, error) {
	if a == "" || b == "" {
		return "", errEmptyUsername
	}
	if a == b {
		return "", ErrSelfDM
	}

	participants := []string{a, b}
	slices.Sort(participants)
	return dmRoomPrefix + strings.Join(participants, "_"), nil
}

// IsDMRoom reports whether roomID names a DM room.
func IsDMRoom(roomID string) bool {
	return strings.HasPrefix(roomID, dmRoomPrefix)
}

// ParseDMRoom extracts the other participant from a DM room id. It returns
// false when roomID is not a DM room or self is not one of its participants.
func ParseDMRoom(roomID, self string) (string, bool) {
	if !IsDMRoom(roomID) || self == "" {
		return "", false
	}

	participants := strings.Split(strings.TrimPrefix(roomID, dmRoomPrefix), "_")
	if !slices.Contains(participants, self) {
		return "", false
	}
	for _, p := range participants {
		if p != self && p != "" {
			return p, true
		}
	}
	return "", false
}

func dmRoom(roomID string, a, b string) types.Room {
	participants := []string{a, b}
	slices.Sort(participants)
	return types.Room{ID: roomID, Kind: types.RoomKindDM, Participants: participants}
}

func lobbyRoom() types.Room {
	return types.Room{ID: LobbyRoomID, Kind: types.RoomKindLobby}
}

// channelTitle renders the display title for a channel: "#lobby" for the
// lobby, "@user" for a DM.
func channelTitle(channel string) string {
	if channel == LobbyChannel {
		return "#" + LobbyChannel
	}
	return "@" + channel
}

func sortCaseInsensitive(names []string) {
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
}
