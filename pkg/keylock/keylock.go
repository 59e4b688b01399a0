package keylock

import (
	"context"
	"sync"
)

// KeyLock provides per-key mutual exclusion. Writers against the same key
// are serialized; writers against different keys never contend.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{} // capacity 1, holds the lock token
	refs int
}

// New creates a new KeyLock
func New() *KeyLock {
	return &KeyLock{locks: make(map[string]*entry)}
}

// Acquire blocks until the lock for key is held or ctx is done. On success
// it returns a release function that must be called exactly once.
func (k *KeyLock) Acquire(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return func() {
			<-e.ch
			k.put(key, e)
		}, nil
	case <-ctx.Done():
		k.put(key, e)
		return nil, ctx.Err()
	}
}

// put drops one reference and evicts the entry once nobody waits on it
func (k *KeyLock) put(key string, e *entry) {
	k.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
}
