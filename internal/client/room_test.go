package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDMRoomID(t *testing.T) {
	tcases := []struct {
		name     string
		a, b     string
		expected string
		err      error
	}{
		{
			name:     "sorted participants",
			a:        "alice",
			b:        "bob",
			expected: "dm_alice_bob",
		},
		{
			name:     "symmetric",
			a:        "bob",
			b:        "alice",
			expected: "dm_alice_bob",
		},
		{
			name: "self dm rejected",
			a:    "alice",
			b:    "alice",
			err:  ErrSelfDM,
		},
		{
			name: "empty username rejected",
			a:    "alice",
			b:    "",
			err:  errEmptyUsername,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := DMRoomID(tc.a, tc.b)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestIsDMRoom(t *testing.T) {
	assert.True(t, IsDMRoom("dm_alice_bob"))
	assert.False(t, IsDMRoom(LobbyRoomID))
	assert.False(t, IsDMRoom(""))
}

func TestParseDMRoom(t *testing.T) {
	tcases := []struct {
		name   string
		roomID string
		self   string
		other  string
		ok     bool
	}{
		{
			name:   "self first",
			roomID: "dm_alice_bob",
			self:   "alice",
			other:  "bob",
			ok:     true,
		},
		{
			name:   "self second",
			roomID: "dm_alice_bob",
			self:   "bob",
			other:  "alice",
			ok:     true,
		},
		{
			name:   "not a participant",
			roomID: "dm_alice_bob",
			self:   "carol",
			ok:     false,
		},
		{
			name:   "not a dm room",
			roomID: LobbyRoomID,
			self:   "alice",
			ok:     false,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			other, ok := ParseDMRoom(tc.roomID, tc.self)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.other, other)
		})
	}
}

func TestChannelTitle(t *testing.T) {
	assert.Equal(t, "#lobby", channelTitle(LobbyChannel))
	assert.Equal(t, "@bob", channelTitle("bob"))
}

func TestSortCaseInsensitive(t *testing.T) {
	names := []string{"Zoe", "alice", "Bob"}
	sortCaseInsensitive(names)
	assert.Equal(t, []string{"alice", "Bob", "Zoe"}, names)
}
