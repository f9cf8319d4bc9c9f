package repository

import (
	"context"
	"errors"
	"sync"
)

var ErrMockCache = errors.New("mock cache failure")

// MockCache is a map-backed cache that can be told to fail.
type MockCache struct {
	mu       sync.Mutex
	Data     map[string]string
	FailGet  bool
	FailSet  bool
	GetCalls int
	SetCalls int
}

func NewMockCache() *MockCache {
	return &MockCache{
		Data: make(map[string]string),
	}
}

func (m *MockCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls++
	if m.FailGet {
		return "", false, ErrMockCache
	}
	val, ok := m.Data[key]
	return val, ok, nil
}

func (m *MockCache) Set(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls++
	if m.FailSet {
		return ErrMockCache
	}
	m.Data[key] = value
	return nil
}
