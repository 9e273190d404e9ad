package storage

import (
	"context"
	"sync"
)

type Memory struct {
	data map[string][]byte
	mx   sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string][]byte),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mx.RLock()
	defer m.mx.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mx.Lock()
	defer m.mx.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mx.Lock()
	defer m.mx.Unlock()

	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
