package ui

import (
	"sync/atomic"

	"github.com/prefsync/prefsync/internal/client/sync"
)

// StatusKey is the controller's mirror of the engine status, kept for
// predicate evaluation. It always equals the last status the controller
// processed, the controller writes it before doing any badge or
// notification work.
type StatusKey struct {
	v atomic.Value
}

func NewStatusKey() *StatusKey {
	k := &StatusKey{}
	k.v.Store(sync.StatusUninitialized)
	return k
}

func (k *StatusKey) Get() sync.Status {
	return k.v.Load().(sync.Status)
}

func (k *StatusKey) set(status sync.Status) {
	k.v.Store(status)
}
