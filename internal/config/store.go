package config

import (
	"sync"
	"time"
)

// Store holds the active configuration. Reads are cheap and safe from
// any goroutine; the watcher updates the hot-reloadable parts through
// UpdateLocking.
type Store struct {
	mu     sync.RWMutex
	config Config
}

// NewStore creates a store seeded with the given configuration.
func NewStore(config Config) *Store {
	return &Store{config: config}
}

// Get returns a copy of the current configuration.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// LockTimeout returns the current default lock acquisition bound.
func (s *Store) LockTimeout() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Locking.DefaultTimeout.Std()
}

// BuildLockTimeout returns the current bound for build and push locks.
func (s *Store) BuildLockTimeout() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Locking.BuildTimeout.Std()
}

// UpdateLocking replaces the lock timeouts. Only locking settings are
// hot-reloadable; transport and cluster settings require a restart.
func (s *Store) UpdateLocking(locking LockingConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Locking = locking
}
