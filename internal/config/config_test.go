package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	var (
		project   = "chat-project"
		creds     = "/tmp/creds.json"
		heartbeat = 15 * time.Second
		opTimeout = 10 * time.Second
	)

	tcases := []struct {
		name       string
		projectID  string
		pageSize   int
		roomWindow int
		heartbeat  time.Duration
		opTimeout  time.Duration
		err        bool
	}{
		{
			name:       "valid config",
			projectID:  project,
			pageSize:   DefaultPageSize,
			roomWindow: DefaultRoomWindow,
			heartbeat:  heartbeat,
			opTimeout:  opTimeout,
			err:        false,
		},
		{
			name:       "empty project id",
			projectID:  "",
			pageSize:   DefaultPageSize,
			roomWindow: DefaultRoomWindow,
			heartbeat:  heartbeat,
			opTimeout:  opTimeout,
			err:        true,
		},
		{
			name:       "zero page size",
			projectID:  project,
			pageSize:   0,
			roomWindow: DefaultRoomWindow,
			heartbeat:  heartbeat,
			opTimeout:  opTimeout,
			err:        true,
		},
		{
			name:       "negative room window",
			projectID:  project,
			pageSize:   DefaultPageSize,
			roomWindow: -1,
			heartbeat:  heartbeat,
			opTimeout:  opTimeout,
			err:        true,
		},
		{
			name:       "zero heartbeat interval",
			projectID:  project,
			pageSize:   DefaultPageSize,
			roomWindow: DefaultRoomWindow,
			heartbeat:  0,
			opTimeout:  opTimeout,
			err:        true,
		},
		{
			name:       "zero operation timeout",
			projectID:  project,
			pageSize:   DefaultPageSize,
			roomWindow: DefaultRoomWindow,
			heartbeat:  heartbeat,
			opTimeout:  0,
			err:        true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			config, err := NewConfig(tc.projectID, creds, tc.pageSize, tc.roomWindow, tc.heartbeat, tc.opTimeout, "")
			if tc.err {
				assert.Error(t, err, "expected error for config: %s", tc.name)
				return
			}
			assert.NoError(t, err, "expected no error for config: %s", tc.name)

			assert.Equal(t, tc.projectID, config.ProjectID, "expected project id to match")
			assert.Equal(t, creds, config.CredentialsFile, "expected credentials file to match")
			assert.Equal(t, tc.pageSize, config.PageSize, "expected page size to match")
			assert.Equal(t, tc.roomWindow, config.RoomWindow, "expected room window to match")
			assert.Equal(t, tc.heartbeat, config.HeartbeatInterval, "expected heartbeat interval to match")
			assert.Equal(t, tc.opTimeout, config.OpTimeout, "expected operation timeout to match")
		})
	}
}
