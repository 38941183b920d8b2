// Package nop provides the publisher used when turn events are disabled.
package nop

import (
	"context"
	"sync/atomic"

	"github.com/papercomputeco/skillstream/pkg/eventstream"
)

// Publisher validates turn events and discards them. It counts what it
// accepted so callers and tests can see that events flowed.
type Publisher struct {
	accepted atomic.Int64
	closed   atomic.Bool
}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishTurn validates input and otherwise does nothing.
func (p *Publisher) PublishTurn(_ context.Context, event *eventstream.TurnCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}
	if p.closed.Load() {
		return eventstream.ErrPublisherClosed
	}

	p.accepted.Add(1)
	return nil
}

// Accepted returns how many events PublishTurn accepted.
func (p *Publisher) Accepted() int64 {
	return p.accepted.Load()
}

// Close marks the publisher closed.
func (p *Publisher) Close() error {
	p.closed.Store(true)
	return nil
}
