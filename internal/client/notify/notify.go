// Package notify is an in-memory notification bus for UI-facing
// consumers. Notifications are kept newest first, carry a read flag,
// and can be observed live through channel subscriptions. Nothing is
// persisted; the bus exists for the lifetime of the process.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity classifies a notification for display purposes.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Notification is a single message on the bus.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// Bus holds notifications in memory, newest first. Safe for concurrent
// use. Subscriber channels are buffered and non-blocking: a slow
// consumer drops messages rather than stalling publishers.
type Bus struct {
	mu      sync.Mutex
	items   []Notification
	subs    map[int]chan Notification
	nextSub int

	autoRead time.Duration
	now      func() time.Time
}

// Option customizes a Bus.
type Option func(*Bus)

// WithAutoRead marks unread notifications as read after d. Zero (the
// default) disables auto-expiry.
func WithAutoRead(d time.Duration) Option {
	return func(b *Bus) { b.autoRead = d }
}

// NewBus returns an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subs: make(map[int]chan Notification),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish adds a notification and fans it out to subscribers. It
// returns the stored notification, including its generated id.
func (b *Bus) Publish(message string, severity Severity) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		Timestamp: b.now(),
	}

	b.mu.Lock()
	b.items = append([]Notification{n}, b.items...)
	for _, ch := range b.subs {
		select {
		case ch <- n:
		default:
		}
	}
	b.mu.Unlock()

	if b.autoRead > 0 {
		id := n.ID
		time.AfterFunc(b.autoRead, func() { b.MarkRead(id) })
	}
	return n
}

// Notifications returns a snapshot of all notifications, newest first.
func (b *Bus) Notifications() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notification, len(b.items))
	copy(out, b.items)
	return out
}

// Unread returns the number of unread notifications.
func (b *Bus) Unread() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, it := range b.items {
		if !it.Read {
			n++
		}
	}
	return n
}

// MarkRead flags the notification with the given id as read. It
// reports whether the id was found.
func (b *Bus) MarkRead(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].ID == id {
			b.items[i].Read = true
			return true
		}
	}
	return false
}

// MarkAllRead flags every notification as read.
func (b *Bus) MarkAllRead() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		b.items[i].Read = true
	}
}

// Dismiss removes the notification with the given id. It reports
// whether the id was found.
func (b *Bus) Dismiss(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// DismissAll removes every notification.
func (b *Bus) DismissAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
}

// Subscribe returns a channel that receives notifications published
// after the call, plus a cancel function that closes the channel and
// detaches the subscriber. The channel is buffered; messages are
// dropped rather than blocking Publish if the buffer fills.
func (b *Bus) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, 16)

	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}
