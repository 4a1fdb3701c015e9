// Package notify keeps the transient notifications shown to the user
// (renames, selections, task results, validation failures).
package notify

import (
	"fmt"
	"sync"
	"time"
)

// Level classifies a notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// DefaultLimit is the number of notifications retained when none is configured.
const DefaultLimit = 50

// Notification is a single transient message.
type Notification struct {
	ID      int    `json:"id"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
	At      string `json:"at"`
}

// Feed retains the most recent notifications and fans new ones out to
// subscribers.
type Feed struct {
	mu     sync.Mutex
	limit  int
	nextID int
	items  []Notification
	subs   map[int]func(Notification)
	subSeq int
	now    func() time.Time
}

// NewFeed creates a feed retaining up to limit notifications.
// A non-positive limit uses DefaultLimit.
func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Feed{
		limit: limit,
		subs:  make(map[int]func(Notification)),
		now:   time.Now,
	}
}

// Info posts an informational notification.
func (f *Feed) Info(format string, args ...interface{}) Notification {
	return f.post(LevelInfo, fmt.Sprintf(format, args...))
}

// Error posts an error notification.
func (f *Feed) Error(format string, args ...interface{}) Notification {
	return f.post(LevelError, fmt.Sprintf(format, args...))
}

func (f *Feed) post(level Level, msg string) Notification {
	f.mu.Lock()
	f.nextID++
	n := Notification{
		ID:      f.nextID,
		Level:   level,
		Message: msg,
		At:      f.now().UTC().Format(time.RFC3339),
	}
	f.items = append(f.items, n)
	if len(f.items) > f.limit {
		f.items = f.items[len(f.items)-f.limit:]
	}
	subs := make([]func(Notification), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
	return n
}

// Recent returns the retained notifications, oldest first.
func (f *Feed) Recent() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Latest returns the newest notification, if any.
func (f *Feed) Latest() (Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == 0 {
		return Notification{}, false
	}
	return f.items[len(f.items)-1], true
}

// Subscribe registers fn for every future notification and returns a
// function that removes it.
func (f *Feed) Subscribe(fn func(Notification)) (unsubscribe func()) {
	f.mu.Lock()
	f.subSeq++
	id := f.subSeq
	f.subs[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}
