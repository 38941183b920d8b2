package kafka

// NewPublisherWithWriter exposes the writer seam to the external tests.
func NewPublisherWithWriter(w messageWriter, cfg Config) *Publisher {
	return newPublisher(w, cfg)
}
