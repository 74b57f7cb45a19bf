// Package ratelimit gates story generation to one request per user per
// rolling window. State is in-memory and process-lifetime only: it resets on
// restart, which is acceptable at this system's scale.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

type attempt struct {
	count       int
	lastRequest time.Time
}

// Limiter tracks generation attempts per user. Only authenticated users are
// metered; anonymous calls never reach it. The mutex covers the whole
// check-and-set so two near-simultaneous requests from one user cannot both
// pass.
type Limiter struct {
	mu     sync.Mutex
	window time.Duration
	users  map[int64]attempt
	now    func() time.Time
}

// New builds a Limiter with the given rolling window (24h in production).
func New(window time.Duration) *Limiter {
	return &Limiter{
		window: window,
		users:  map[int64]attempt{},
		now:    time.Now,
	}
}

// Allow records an attempt for the user and reports whether it may proceed.
// When rejected, hoursRemaining is the cooldown left, rounded up to whole
// hours. An elapsed window resets the count to this attempt.
func (l *Limiter) Allow(userID int64) (allowed bool, hoursRemaining int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	prev, ok := l.users[userID]
	if !ok {
		l.users[userID] = attempt{count: 1, lastRequest: now}
		return true, 0
	}

	elapsed := now.Sub(prev.lastRequest)
	if elapsed < l.window && prev.count >= 1 {
		remaining := l.window - elapsed
		return false, int(math.Ceil(remaining.Hours()))
	}

	l.users[userID] = attempt{count: 1, lastRequest: now}
	return true, 0
}
