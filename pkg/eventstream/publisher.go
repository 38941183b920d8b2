// Package eventstream defines the turn events skillstream emits after each
// chat turn and the Publisher interface backends implement.
package eventstream

import "context"

// Publisher publishes turn events to an event stream backend.
type Publisher interface {
	PublishTurn(ctx context.Context, event *TurnCompletedEvent) error
	Close() error
}
