package chatstream

import (
	"strings"
	"sync"
)

// Transcript collects the outcome of one stream.
type Transcript struct {
	mu sync.Mutex

	tokens     []string
	completion Payload
	err        error
}

// Handlers returns handlers that record into t and then forward to next.
func (t *Transcript) Handlers(next Handlers) Handlers {
	return Handlers{
		OnToken: func(content string) {
			t.mu.Lock()
			t.tokens = append(t.tokens, content)
			t.mu.Unlock()
			if next.OnToken != nil {
				next.OnToken(content)
			}
		},
		OnComplete: func(p Payload) {
			t.mu.Lock()
			t.completion = p
			t.mu.Unlock()
			if next.OnComplete != nil {
				next.OnComplete(p)
			}
		},
		OnError: func(err error) {
			t.mu.Lock()
			t.err = err
			t.mu.Unlock()
			if next.OnError != nil {
				next.OnError(err)
			}
		},
	}
}

// Tokens returns a copy of the streamed fragments in arrival order.
func (t *Transcript) Tokens() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.tokens...)
}

// Content returns the streamed fragments joined together.
func (t *Transcript) Content() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.tokens, "")
}

// Completion returns the completion payload, or nil if none arrived.
func (t *Transcript) Completion() Payload {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completion
}

// Err returns the error reported for the stream, if any.
func (t *Transcript) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Completed reports whether the stream finished with a completion and no
// error.
func (t *Transcript) Completed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completion != nil && t.err == nil
}
