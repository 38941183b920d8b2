package worker_test

import (
	"bytes"
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillstream/pkg/eventstream"
	"github.com/papercomputeco/skillstream/pkg/eventstream/nop"
	"github.com/papercomputeco/skillstream/pkg/eventstream/worker"
	"github.com/papercomputeco/skillstream/pkg/logger"
)

// gatedPublisher blocks every publish until release is closed.
type gatedPublisher struct {
	release chan struct{}

	mu        sync.Mutex
	published []string
	closed    bool
	err       error
}

func (g *gatedPublisher) PublishTurn(_ context.Context, event *eventstream.TurnCompletedEvent) error {
	<-g.release
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.published = append(g.published, event.EventID)
	return nil
}

func (g *gatedPublisher) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

func (g *gatedPublisher) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.published)
}

func newEvent() *eventstream.TurnCompletedEvent {
	return eventstream.NewTurnCompletedEvent(eventstream.EventSource{Service: "career"}, eventstream.TurnRequestMeta{}, eventstream.Turn{Prompt: "hi"})
}

var _ = Describe("Pool", func() {
	It("requires a publisher", func() {
		_, err := worker.NewPool(&worker.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("publishes enqueued events and drains on Close", func() {
		pub := nop.NewPublisher()
		pool, err := worker.NewPool(&worker.Config{Publisher: pub})
		Expect(err).NotTo(HaveOccurred())

		for range 10 {
			Expect(pool.Enqueue(newEvent())).To(BeTrue())
		}
		Expect(pool.Close()).To(Succeed())
		Expect(pub.Accepted()).To(BeEquivalentTo(10))
	})

	It("drops events when the queue is full", func() {
		var logs bytes.Buffer
		pub := &gatedPublisher{release: make(chan struct{})}
		pool, err := worker.NewPool(&worker.Config{
			Publisher:  pub,
			NumWorkers: 1,
			QueueSize:  1,
			Logger:     logger.New(logger.WithWriter(&logs)),
		})
		Expect(err).NotTo(HaveOccurred())

		// The first event is taken by the worker and blocks there, the second
		// fills the queue.
		Expect(pool.Enqueue(newEvent())).To(BeTrue())
		Eventually(func() bool { return pool.Enqueue(newEvent()) }).Should(BeTrue())
		Expect(pool.Enqueue(newEvent())).To(BeFalse())

		close(pub.release)
		Expect(pool.Close()).To(Succeed())
		Expect(pub.count()).To(Equal(2))
		Expect(logs.String()).To(ContainSubstring("queue full"))
	})

	It("rejects events after Close and closes the publisher once", func() {
		pub := &gatedPublisher{release: make(chan struct{})}
		close(pub.release)
		pool, err := worker.NewPool(&worker.Config{Publisher: pub})
		Expect(err).NotTo(HaveOccurred())

		Expect(pool.Close()).To(Succeed())
		Expect(pool.Close()).To(Succeed())
		Expect(pub.closed).To(BeTrue())
		Expect(pool.Enqueue(newEvent())).To(BeFalse())
	})

	It("ignores nil events", func() {
		pool, err := worker.NewPool(&worker.Config{Publisher: nop.NewPublisher()})
		Expect(err).NotTo(HaveOccurred())
		Expect(pool.Enqueue(nil)).To(BeFalse())
		Expect(pool.Close()).To(Succeed())
	})

	It("logs publish failures without stopping", func() {
		var logs bytes.Buffer
		pub := &gatedPublisher{release: make(chan struct{}), err: errors.New("broker down")}
		close(pub.release)
		pool, err := worker.NewPool(&worker.Config{Publisher: pub, Logger: logger.New(logger.WithWriter(&logs))})
		Expect(err).NotTo(HaveOccurred())

		Expect(pool.Enqueue(newEvent())).To(BeTrue())
		Expect(pool.Enqueue(newEvent())).To(BeTrue())
		Expect(pool.Close()).To(Succeed())
		Expect(logs.String()).To(ContainSubstring("broker down"))
	})
})
