// Package api provides a mock worker server that emulates the career
// assistant and course tutor streaming endpoints for local development.
package api

import (
	"log/slog"
	"time"
)

// Dialect selects how the mock frames its streams.
type Dialect string

const (
	// DialectTyped labels every record with an "event:" line.
	DialectTyped Dialect = "typed"

	// DialectInferred sends bare "data:" lines and leaves classification to
	// the payload shape.
	DialectInferred Dialect = "inferred"
)

// Config is the mock worker configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8787")
	ListenAddr string

	// Dialect is the stream framing, DialectTyped when empty.
	Dialect Dialect

	// Reply is the text streamed back for every chat turn. "{message}" is
	// replaced with the user's message.
	Reply string

	// RequireAuth rejects chat and tutor requests without a bearer token.
	RequireAuth bool

	// TokenDelay is the pause between streamed tokens.
	TokenDelay time.Duration

	Logger *slog.Logger
}
