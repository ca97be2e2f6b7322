package kv

import (
	"context"
	"sync"
)

// Memory is an in-process Store. Values are copied on the way in and out.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, partition, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[partition][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Put(_ context.Context, partition, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.data[partition]
	if !ok {
		p = make(map[string][]byte)
		m.data[partition] = p
	}
	p[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Close() error { return nil }
