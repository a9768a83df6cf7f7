package store

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetAll(ctx context.Context, q Query) ([]Document, error) {
	args := m.Called(ctx, q)
	if docs, ok := args.Get(0).([]Document); ok {
		return docs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Subscribe(ctx context.Context, q Query, fn func(Snapshot)) (CancelFunc, error) {
	args := m.Called(ctx, q, fn)
	if cancel, ok := args.Get(0).(CancelFunc); ok {
		return cancel, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Add(ctx context.Context, collection string, data map[string]any) (Document, error) {
	args := m.Called(ctx, collection, data)
	return args.Get(0).(Document), args.Error(1)
}

func (m *MockStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	args := m.Called(ctx, collection, id, data)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, collection, id string) error {
	args := m.Called(ctx, collection, id)
	return args.Error(0)
}

func (m *MockStore) BatchDelete(ctx context.Context, collection string, ids []string) error {
	args := m.Called(ctx, collection, ids)
	return args.Error(0)
}
