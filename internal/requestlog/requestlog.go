// Package requestlog keeps the most recent bodies posted to the echo
// endpoint in memory, so they can be read back without digging through
// server logs. Entries live in a fixed-size ring buffer and are gone after a
// restart.
package requestlog

import (
	"sync"
	"time"
)

// Entry is one recorded request.
type Entry struct {
	Time       time.Time `json:"time"`
	RemoteAddr string    `json:"remote_addr"`
	Body       string    `json:"body"`
	Truncated  bool      `json:"truncated,omitempty"`
}

// Log is a bounded, concurrency-safe buffer of recent entries. Once the
// capacity is reached, each new entry evicts the oldest one.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	next    int
}

// New returns a Log holding at most capacity entries. Capacity must be
// positive; the server validates that at boot.
func New(capacity int) *Log {
	if capacity <= 0 {
		panic("requestlog: capacity must be positive")
	}
	return &Log{entries: make([]Entry, 0, capacity)}
}

// Add records an entry, evicting the oldest one if the log is full.
func (l *Log) Add(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) < cap(l.entries) {
		l.entries = append(l.entries, e)
		return
	}
	l.entries[l.next] = e
	l.next = (l.next + 1) % cap(l.entries)
}

// Recent returns a copy of the held entries, newest first.
func (l *Log) Recent() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, 0, len(l.entries))
	for i := len(l.entries) - 1; i >= 0; i-- {
		out = append(out, l.entries[(l.next+i)%len(l.entries)])
	}
	return out
}

// Len reports how many entries are currently held.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
