// Package worker provides an asynchronous worker pool that publishes turn
// events through an eventstream.Publisher.
//
// The pool decouples publishing from the chat loop so a slow or unreachable
// broker never delays the next prompt.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/papercomputeco/skillstream/pkg/eventstream"
	"github.com/papercomputeco/skillstream/pkg/logger"
)

var (
	defaultNumWorkers     uint = 2
	defaultJobQueueSize   uint = 64
	defaultPublishTimeout      = 15 * time.Second
)

// Config is the configuration options for the worker pool.
type Config struct {
	// Publisher receives every enqueued event. Required.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 64).
	QueueSize uint

	// PublishTimeout bounds each publish (defaults to 15s).
	PublishTimeout time.Duration

	Logger *slog.Logger
}

// Pool publishes turn events asynchronously.
type Pool struct {
	config *Config
	queue  chan *eventstream.TurnCompletedEvent
	wg     sync.WaitGroup
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Publisher == nil {
		return nil, errors.New("worker pool requires a publisher")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.PublishTimeout <= 0 {
		c.PublishTimeout = defaultPublishTimeout
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan *eventstream.TurnCompletedEvent, c.QueueSize),
		logger: logger.OrNop(c.Logger),
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits an event for publishing. It never blocks: when the queue
// is full the event is dropped and false is returned.
func (p *Pool) Enqueue(event *eventstream.TurnCompletedEvent) bool {
	if event == nil {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("turn event not queued, pool closed", "event_id", event.EventID)
		return false
	}

	select {
	case p.queue <- event:
		p.logger.Debug("turn event queued",
			"event_id", event.EventID,
			"service", event.Source.Service,
		)
		return true
	default:
		p.logger.Error("turn event not queued, queue full, event dropped",
			"event_id", event.EventID,
			"service", event.Source.Service,
		)
		return false
	}
}

// Close stops accepting events, waits for queued events to be published and
// then closes the publisher.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	return p.config.Publisher.Close()
}

// worker is the inner worker thread that continuously pulls events off the queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("publish worker started", "worker_id", id)

	for event := range p.queue {
		p.publish(event)
	}

	p.logger.Debug("publish worker stopped", "worker_id", id)
}

func (p *Pool) publish(event *eventstream.TurnCompletedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.PublishTimeout)
	defer cancel()

	if err := p.config.Publisher.PublishTurn(ctx, event); err != nil {
		p.logger.Error("async turn event publish failed",
			"event_id", event.EventID,
			"error", err,
		)
		return
	}

	p.logger.Debug("turn event published", "event_id", event.EventID)
}
