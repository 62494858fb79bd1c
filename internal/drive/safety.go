package drive

import (
	"sync"
	"time"
)

// safety is the motor watchdog. It is read from a different goroutine than
// the one driving, so it carries its own lock.
type safety struct {
	lock       sync.Mutex
	enabled    bool
	expiration time.Duration
	lastFeed   time.Time

	now func() time.Time
}

func newSafety(expiration time.Duration, enabled bool) *safety {
	return &safety{
		enabled:    enabled,
		expiration: expiration,
		lastFeed:   time.Now(),
		now:        time.Now,
	}
}

func (s *safety) feed() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.lastFeed = s.now()
}

func (s *safety) setEnabled(enabled bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.enabled = enabled
}

func (s *safety) isEnabled() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.enabled
}

func (s *safety) setExpiration(expiration time.Duration) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.expiration = expiration
}

func (s *safety) getExpiration() time.Duration {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.expiration
}

func (s *safety) isAlive() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return !s.enabled || s.now().Sub(s.lastFeed) <= s.expiration
}

func (s *safety) expired() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.enabled && s.now().Sub(s.lastFeed) > s.expiration
}
