package contentstore

import (
	"context"
	"fmt"
	"sync"

	"credanchor/pkg/platform/sentinel"
)

// Memory is the in-process backend used for development and tests.
type Memory struct {
	mu     sync.RWMutex
	blocks map[string][]byte

	// FailPuts and FailGets force transport-style failures for tests.
	FailPuts bool
	FailGets bool
}

func NewMemory() *Memory {
	return &Memory{blocks: make(map[string][]byte)}
}

func (m *Memory) Put(_ context.Context, data []byte) (string, error) {
	reference, err := Reference(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPuts {
		return "", fmt.Errorf("memory store: put: %w", sentinel.ErrUnavailable)
	}
	if _, ok := m.blocks[reference]; !ok {
		m.blocks[reference] = append([]byte(nil), data...)
	}
	return reference, nil
}

func (m *Memory) Get(_ context.Context, reference string) ([]byte, error) {
	if _, err := ParseReference(reference); err != nil {
		return nil, fmt.Errorf("memory store: %w", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailGets {
		return nil, fmt.Errorf("memory store: get: %w", sentinel.ErrUnavailable)
	}
	data, ok := m.blocks[reference]
	if !ok {
		return nil, fmt.Errorf("memory store: %s: %w", reference, sentinel.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Has(_ context.Context, reference string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blocks[reference]
	return ok
}
