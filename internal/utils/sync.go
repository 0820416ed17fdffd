package utils

import (
	"sync"
)

// OptionalMutex is a mutex that can be switched off for structures whose consumer has
// promised to confine them to a single goroutine.
type OptionalMutex struct {
	Mutex    sync.Mutex
	UseMutex bool
}

func (m *OptionalMutex) Lock() {
	if m.UseMutex {
		m.Mutex.Lock()
	}
}

func (m *OptionalMutex) Unlock() {
	if m.UseMutex {
		m.Mutex.Unlock()
	}
}
