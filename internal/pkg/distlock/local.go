package distlock

import (
	"context"
	"sync"
)

// LocalLocks is an in-process lock table keyed by lock name. Locks on
// different keys never contend.
type LocalLocks struct {
	mu     sync.Mutex
	owners map[string]string
}

// NewLocalLocks creates an empty lock table.
func NewLocalLocks() *LocalLocks {
	return &LocalLocks{owners: make(map[string]string)}
}

// NewLock returns an unacquired lock for key.
func (t *LocalLocks) NewLock(key string) DistLock {
	return &localLock{table: t, key: key, token: ownerToken()}
}

// Held reports whether key is currently locked.
func (t *LocalLocks) Held(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.owners[key]
	return ok
}

type localLock struct {
	table *LocalLocks
	key   string
	token string
}

func (l *localLock) Acquire(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.table.mu.Lock()
	defer l.table.mu.Unlock()
	if _, held := l.table.owners[l.key]; held {
		return false, nil
	}
	l.table.owners[l.key] = l.token
	return true, nil
}

func (l *localLock) Release(context.Context) error {
	l.table.mu.Lock()
	defer l.table.mu.Unlock()
	if l.table.owners[l.key] == l.token {
		delete(l.table.owners, l.key)
	}
	return nil
}
