// Package eventstreamutils is the eventstream utility package
package eventstreamutils

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/skillstream/pkg/eventstream"
	"github.com/papercomputeco/skillstream/pkg/eventstream/kafka"
	"github.com/papercomputeco/skillstream/pkg/eventstream/nop"
)

const (
	ProviderNone  = "none"
	ProviderKafka = "kafka"
)

type NewPublisherOpts struct {
	ProviderType string
	Brokers      []string
	Topic        string
	ClientID     string
	Logger       *slog.Logger
}

// NewPublisher returns the publisher for o.ProviderType. An empty provider
// disables events.
func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(o.ProviderType)) {
	case "", ProviderNone:
		return nop.NewPublisher(), nil
	case ProviderKafka:
		return kafka.NewPublisher(kafka.Config{
			Brokers:  o.Brokers,
			Topic:    o.Topic,
			ClientID: o.ClientID,
			Logger:   o.Logger,
		})
	default:
		return nil, fmt.Errorf("unsupported event provider: %s", o.ProviderType)
	}
}
