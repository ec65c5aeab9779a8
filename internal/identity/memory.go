package identity

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Gateway for tests and identity-less deployments.
type Memory struct {
	mu   sync.Mutex
	next int
	ids  map[string]string

	// FailWith, when set, makes every call return it as IdentityUnavailable.
	FailWith error
}

func NewMemory() *Memory {
	return &Memory{ids: make(map[string]string)}
}

func (m *Memory) GetOrCreateIdentity(ctx context.Context, email string) (string, error) {
	if m.FailWith != nil {
		return "", unavailable("backend", m.FailWith)
	}
	if err := ctx.Err(); err != nil {
		return "", unavailable("context", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.ids[email]; ok {
		return id, nil
	}
	m.next++
	id := fmt.Sprintf("user_%04d", m.next)
	m.ids[email] = id
	return id, nil
}
