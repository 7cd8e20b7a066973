// Package events is an in-process change feed. Use cases publish after a
// write commits; subscribers such as the websocket hub fan it out.
package events

import (
	"context"
	"sync"
	"time"

	"learnmap/internal/pkg/logger"
)

type Kind string

const (
	SkillCreated      Kind = "skill.created"
	SkillUpdated      Kind = "skill.updated"
	SkillDeleted      Kind = "skill.deleted"
	DependencyAdded   Kind = "skill.dependency_added"
	DependencyRemoved Kind = "skill.dependency_removed"
	ResourceCreated   Kind = "resource.created"
	ResourceUpdated   Kind = "resource.updated"
	ResourceDeleted   Kind = "resource.deleted"
)

type Event struct {
	Kind     Kind      `json:"type"`
	UserID   string    `json:"-"`
	EntityID string    `json:"id"`
	Payload  any       `json:"data,omitempty"`
	At       time.Time `json:"timestamp"`
}

type Handler func(ctx context.Context, e Event)

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Bus delivers every event to every subscriber synchronously, in
// subscription order. Handlers must not block.
type Bus struct {
	mu   sync.RWMutex
	subs []subscription
	next uint64
}

type subscription struct {
	id uint64
	h  Handler
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h and returns a func that removes it. Calling the
// returned func more than once is harmless.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	id := b.next
	b.subs = append(b.subs, subscription{id: id, h: h})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		deliver(ctx, s.h, e)
	}
}

func deliver(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Component(ctx, "events").WithField("type", e.Kind).Errorf("subscriber panic: %v", r)
		}
	}()
	h(ctx, e)
}

func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Discard is a Publisher that drops everything.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
