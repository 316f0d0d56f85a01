// Package kv defines the string-keyed storage contract shared by the
// review store, the theme selection, and the pool cache. Durable
// persistence is provided by the SQLite-backed implementation in
// internal/store; Memory backs tests.
package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Store is durable string-keyed storage. Values are opaque strings
// (JSON in practice). There is no cross-key atomicity guarantee.
type Store interface {
	// Get returns the value for key. ok is false if the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys returns all stored keys beginning with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Memory is an in-memory Store for tests and ephemeral runs.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
