package nop_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillstream/pkg/eventstream"
	"github.com/papercomputeco/skillstream/pkg/eventstream/nop"
)

var _ = Describe("Publisher", func() {
	var p *nop.Publisher

	BeforeEach(func() {
		p = nop.NewPublisher()
	})

	It("returns ErrNilTurnEvent for nil events", func() {
		Expect(p.PublishTurn(context.Background(), nil)).To(MatchError(eventstream.ErrNilTurnEvent))
		Expect(p.Accepted()).To(BeZero())
	})

	It("accepts and counts non-nil events", func() {
		event := eventstream.NewTurnCompletedEvent(eventstream.EventSource{Service: "career"}, eventstream.TurnRequestMeta{}, eventstream.Turn{Prompt: "hi"})
		Expect(p.PublishTurn(context.Background(), event)).To(Succeed())
		Expect(p.PublishTurn(context.Background(), event)).To(Succeed())
		Expect(p.Accepted()).To(BeEquivalentTo(2))
	})

	It("rejects events after Close", func() {
		Expect(p.Close()).To(Succeed())
		err := p.PublishTurn(context.Background(), &eventstream.TurnCompletedEvent{})
		Expect(err).To(MatchError(eventstream.ErrPublisherClosed))
	})
})
