// Package notify is the client's single transient message slot. A new
// message replaces the current one; each message expires on its own timer.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultTTL = 3 * time.Second

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

func (k Kind) Valid() bool {
	switch k {
	case KindInfo, KindSuccess, KindError:
		return true
	}
	return false
}

type Notification struct {
	ID        uuid.UUID
	Message   string
	Kind      Kind
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Notifier is what form controllers depend on.
type Notifier interface {
	Notify(msg string, kind Kind) Notification
}

type Option func(*Channel)

// WithTTL sets how long a notification stays visible. Non-positive values
// keep the default.
func WithTTL(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// Channel holds at most one notification. Subscribers receive the new
// current value, or nil when the slot empties.
type Channel struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	current *Notification
	timer   *time.Timer
	subs    map[int]func(*Notification)
	nextSub int
}

var _ Notifier = (*Channel)(nil)

func NewChannel(opts ...Option) *Channel {
	c := &Channel{
		ttl:  DefaultTTL,
		now:  time.Now,
		subs: make(map[int]func(*Notification)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify replaces the current notification. An unknown kind is a
// programming error and panics.
func (c *Channel) Notify(msg string, kind Kind) Notification {
	if !kind.Valid() {
		panic(fmt.Sprintf("notify: invalid kind %q", string(kind)))
	}

	now := c.now()
	n := Notification{
		ID:        uuid.New(),
		Message:   msg,
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}

	c.mu.Lock()
	c.stopLocked()
	c.current = &n
	c.timer = time.AfterFunc(c.ttl, func() { c.expire(n.ID) })
	subs := c.subscribersLocked()
	c.mu.Unlock()

	publish(&n, subs)
	return n
}

// Dismiss empties the slot immediately.
func (c *Channel) Dismiss() {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return
	}
	c.stopLocked()
	c.current = nil
	subs := c.subscribersLocked()
	c.mu.Unlock()

	publish(nil, subs)
}

func (c *Channel) Current() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Notification{}, false
	}
	return *c.current, true
}

func (c *Channel) Subscribe(fn func(*Notification)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// expire runs on the timer goroutine. A timer that lost the race against
// a newer Notify or Dismiss no longer finds its notification and does
// nothing.
func (c *Channel) expire(id uuid.UUID) {
	c.mu.Lock()
	if c.current == nil || c.current.ID != id {
		c.mu.Unlock()
		return
	}
	c.current = nil
	c.timer = nil
	subs := c.subscribersLocked()
	c.mu.Unlock()

	publish(nil, subs)
}

func (c *Channel) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Channel) subscribersLocked() []func(*Notification) {
	out := make([]func(*Notification), 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}

func publish(n *Notification, subs []func(*Notification)) {
	for _, fn := range subs {
		if n == nil {
			fn(nil)
			continue
		}
		cp := *n
		fn(&cp)
	}
}
