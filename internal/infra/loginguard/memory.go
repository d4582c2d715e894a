// Package loginguard tracks failed credential attempts per source IP
// over a sliding window.
package loginguard

import (
	"sync"
	"time"
)

const (
	// DefaultWindow matches the login policy: only failures from the
	// last 15 minutes count.
	DefaultWindow = 15 * time.Minute

	defaultMaxIPs = 10000
)

// MemoryTracker keeps one window per IP. The map is guarded by its own
// mutex and every window by another, so traffic from unrelated IPs never
// serializes on a single lock.
type MemoryTracker struct {
	mu      sync.Mutex
	entries map[string]*window
	window  time.Duration
	now     func() time.Time
	maxIPs  int
}

type window struct {
	mu     sync.Mutex
	stamps []time.Time
}

type MemoryTrackerConfig struct {
	Window time.Duration
	Now    func() time.Time
	MaxIPs int
}

func NewMemoryTracker(cfg MemoryTrackerConfig) *MemoryTracker {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxIPs <= 0 {
		cfg.MaxIPs = defaultMaxIPs
	}
	return &MemoryTracker{
		entries: make(map[string]*window),
		window:  cfg.Window,
		now:     cfg.Now,
		maxIPs:  cfg.MaxIPs,
	}
}

// RecordFailure evicts stale attempts for the IP, appends one at now,
// and returns the resulting count.
func (t *MemoryTracker) RecordFailure(ip string) int {
	w := t.get(ip, true)
	now := t.now()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.evict(now, t.window)
	w.stamps = append(w.stamps, now)
	return len(w.stamps)
}

// Count returns the number of failures still inside the window without
// recording a new one.
func (t *MemoryTracker) Count(ip string) int {
	w := t.get(ip, false)
	if w == nil {
		return 0
	}
	now := t.now()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.evict(now, t.window)
	return len(w.stamps)
}

// Clear drops the IP's window entirely. Called on successful login.
func (t *MemoryTracker) Clear(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, ip)
}

func (t *MemoryTracker) get(ip string, create bool) *window {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.entries[ip]
	if !ok && create {
		if len(t.entries) >= t.maxIPs {
			t.gc(t.now())
		}
		w = &window{}
		t.entries[ip] = w
	}
	return w
}

// gc removes IPs whose every attempt has aged out. Caller holds t.mu.
func (t *MemoryTracker) gc(now time.Time) {
	cutoff := now.Add(-t.window)
	for ip, w := range t.entries {
		w.mu.Lock()
		live := len(w.stamps) > 0 && w.stamps[len(w.stamps)-1].After(cutoff)
		w.mu.Unlock()
		if !live {
			delete(t.entries, ip)
		}
	}
}

func (w *window) evict(now time.Time, span time.Duration) {
	cutoff := now.Add(-span)
	kept := w.stamps[:0]
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.stamps = kept
}
