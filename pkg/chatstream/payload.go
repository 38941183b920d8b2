package chatstream

import (
	"encoding/json"
	"errors"
	"strings"
)

// Kind is the dispatch decision for one payload.
type Kind int

const (
	// KindUnknown payloads match no known shape and are dropped.
	KindUnknown Kind = iota
	KindToken
	KindComplete
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindToken:
		return "token"
	case KindComplete:
		return "complete"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// completionKeys mark a payload as the end-of-turn record when no explicit
// label names it.
var completionKeys = []string{"conversationId", "messageId", "intent"}

// Payload is one decoded JSON object from a data line.
type Payload map[string]any

var errNotObject = errors.New("payload is not a JSON object")

func decodePayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errNotObject
	}
	return p, nil
}

// Has reports whether key is present with a non-null value.
func (p Payload) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// String returns the value at key when it is a JSON string.
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Bool returns the value at key when it is a JSON boolean.
func (p Payload) Bool(key string) bool {
	b, _ := p[key].(bool)
	return b
}

func (p Payload) ConversationID() string { return p.String("conversationId") }
func (p Payload) MessageID() string      { return p.String("messageId") }
func (p Payload) Intent() string         { return p.String("intent") }

// Blocked reports whether the worker's guardrail refused the message.
func (p Payload) Blocked() bool { return p.Bool("blocked") }

// set reports whether key holds a value a worker would treat as present:
// not null, not false, not the empty string.
func (p Payload) set(key string) bool {
	switch v := p[key].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	default:
		return true
	}
}

func (p Payload) isCompletion() bool {
	for _, key := range completionKeys {
		if p.set(key) {
			return true
		}
	}
	return p.Bool("done") || p.Blocked()
}

// Classify decides how a payload is dispatched. An explicit label of token,
// done, complete or error wins. Any other label, or none, falls back to the
// payload's shape with the priority error, completion, token.
func Classify(label string, p Payload) Kind {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "token":
		return KindToken
	case "done", "complete":
		return KindComplete
	case "error":
		return KindError
	}

	switch {
	case p.set("error"):
		return KindError
	case p.isCompletion():
		return KindComplete
	case p.set("content"):
		return KindToken
	default:
		return KindUnknown
	}
}
