package store

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by every operation of an Unavailable store.
var ErrUnavailable = errors.New("document store unavailable")

// Unavailable is the Store used when the backing store failed to
// initialize. Every operation fails with ErrUnavailable and no subscription
// ever starts, so the session stays interactive with realtime features off.
type Unavailable struct{}

func (Unavailable) GetAll(ctx context.Context, q Query) ([]Document, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Subscribe(ctx context.Context, q Query, fn func(Snapshot)) (CancelFunc, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Add(ctx context.Context, collection string, data map[string]any) (Document, error) {
	return Document{}, ErrUnavailable
}

func (Unavailable) Set(ctx context.Context, collection, id string, data map[string]any) error {
	return ErrUnavailable
}

func (Unavailable) Delete(ctx context.Context, collection, id string) error {
	return ErrUnavailable
}

func (Unavailable) BatchDelete(ctx context.Context, collection string, ids []string) error {
	return ErrUnavailable
}
