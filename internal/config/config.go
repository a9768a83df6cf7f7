package config

import (
	"fmt"
	"time"
)

const (
	DefaultPageSize          = 50
	DefaultRoomWindow        = 100
	DefaultHeartbeatInterval = 15 * time.Second
	DefaultOpTimeout         = 10 * time.Second
)

type Config struct {
	ProjectID         string
	CredentialsFile   string
	PageSize          int
	RoomWindow        int
	HeartbeatInterval time.Duration
	OpTimeout         time.Duration
	DebugAddr         string
}

func NewConfig(projectID, credentialsFile string, pageSize, roomWindow int, heartbeat, opTimeout time.Duration, debugAddr string) (*Config, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id cannot be empty")
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	if roomWindow <= 0 {
		return nil, fmt.Errorf("room window must be positive, got %d", roomWindow)
	}
	if heartbeat <= 0 {
		return nil, fmt.Errorf("heartbeat interval must be positive, got %s", heartbeat)
	}
	if opTimeout <= 0 {
		return nil, fmt.Errorf("operation timeout must be positive, got %s", opTimeout)
	}

	return &Config{
		ProjectID:         projectID,
		CredentialsFile:   credentialsFile,
		PageSize:          pageSize,
		RoomWindow:        roomWindow,
		HeartbeatInterval: heartbeat,
		OpTimeout:         opTimeout,
		DebugAddr:         debugAddr,
	}, nil
}
