package client

import "errors"

var (
	// ErrSelfDM is returned when a user tries to open a direct message
	// with themself.
	ErrSelfDM = errors.New("cannot open a direct message with yourself")
	// ErrLobbyProtected is returned for destructive operations on the lobby.
	ErrLobbyProtected = errors.New("the lobby cannot be deleted")
	// ErrSessionClosed is returned by calls made after Close.
	ErrSessionClosed = errors.New("session is closed")
	// ErrBusy is returned when the worker pool cannot take another task.
	ErrBusy = errors.New("too many operations in flight, try again")

	errEmptyUsername = errors.New("username cannot be empty")
)
