package service

import (
	"sync"
	"sync/atomic"

	"github.com/moby/locker"
)

// KeyLocks hands out one mutex per string key. Idle keys are dropped by locker.
type KeyLocks struct {
	locks *locker.Locker
	held  atomic.Int64
}

func NewKeyLocks() *KeyLocks {
	return &KeyLocks{locks: locker.New()}
}

// Lock blocks until key is free and returns the matching unlock function.
// Calling the returned function more than once is a no-op.
func (k *KeyLocks) Lock(key string) func() {
	k.held.Add(1)
	k.locks.Lock(key)

	var once sync.Once
	return func() {
		once.Do(func() {
			k.locks.Unlock(key)
			k.held.Add(-1)
		})
	}
}

// Held counts callers holding or waiting on a key.
func (k *KeyLocks) Held() int {
	return int(k.held.Load())
}
