package domain

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrNoKeysAvailable is returned when the ring holds no usable API key.
var ErrNoKeysAvailable = errors.New("no API key configured for the active provider")

// KeyRing rotates over the API keys configured for one provider.
// A rate-limited key is benched for a cooldown period, but the last
// active key is never benched: with a single key the caller simply waits.
type KeyRing struct {
	mu       sync.Mutex
	keys     []string
	benched  map[string]time.Time
	next     int
	cooldown time.Duration
	now      func() time.Time
}

// ParseKeys splits a comma-separated apiKey value, dropping blanks and
// duplicates while keeping order.
func ParseKeys(raw string) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// NewKeyRing creates a ring over keys. A zero cooldown keeps benched keys
// out until Restore is called.
func NewKeyRing(keys []string, cooldown time.Duration) *KeyRing {
	return &KeyRing{
		keys:     append([]string(nil), keys...),
		benched:  make(map[string]time.Time),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Next returns the next usable key in round-robin order.
func (r *KeyRing) Next() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reviveLocked()
	if len(r.keys) == 0 {
		return "", ErrNoKeysAvailable
	}
	for i := 0; i < len(r.keys); i++ {
		k := r.keys[(r.next+i)%len(r.keys)]
		if _, out := r.benched[k]; !out {
			r.next = (r.next + i + 1) % len(r.keys)
			return k, nil
		}
	}
	// unreachable while Bench keeps one key active
	return "", ErrNoKeysAvailable
}

// Bench takes key out of rotation. It reports whether the key was benched.
func (r *KeyRing) Bench(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, out := r.benched[key]; out || !r.containsLocked(key) {
		return false
	}
	if r.activeLocked() <= 1 {
		return false
	}
	r.benched[key] = r.now()
	return true
}

// Restore puts every benched key back into rotation.
func (r *KeyRing) Restore() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.benched)
}

// Active returns the number of keys currently in rotation.
func (r *KeyRing) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviveLocked()
	return r.activeLocked()
}

// Len returns the number of managed keys.
func (r *KeyRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

func (r *KeyRing) activeLocked() int {
	return len(r.keys) - len(r.benched)
}

func (r *KeyRing) containsLocked(key string) bool {
	for _, k := range r.keys {
		if k == key {
			return true
		}
	}
	return false
}

func (r *KeyRing) reviveLocked() {
	if r.cooldown == 0 {
		return
	}
	now := r.now()
	for k, at := range r.benched {
		if now.Sub(at) >= r.cooldown {
			delete(r.benched, k)
		}
	}
}
