// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// line reader for the chat and tutor worker streams. It frames an upstream
// byte stream into event records while optionally teeing the raw lines to a
// second writer for debugging.
//
// The workers emit a simplified subset of the SSE format: an optional
// "event: <type>" line followed by a single "data: <json>" line, or bare
// "data: <json>" lines. Each data line is one record.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event represents a single framed record: one "data:" line plus the type
// label from the "event:" line that preceded it, if any.
type Event struct {
	// Type is the label from the most recent "event:" field not yet consumed
	// by a data line. Empty when the data line had no label.
	Type string

	// Data is the raw value of the "data:" field, with a single leading space
	// stripped. It is expected (but not guaranteed) to be JSON.
	Data string
}
