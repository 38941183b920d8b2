package sse

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

const (
	initialBufferSize = 64 * 1024
	maxLineSize       = 1024 * 1024
)

// Reader frames SSE records from a source io.Reader. Chunk boundaries in the
// source are invisible to callers: bytes are buffered until a full line is
// available, so a line (or a multi-byte character) split across two reads is
// reassembled before it is parsed.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌─────────────────────────────┐
// │  Reader.Next()   │──▶│ tee io.Writer (optional)    │
// └──────────────────┘   └─────────────────────────────┘
// │
// ▼
// ┌──────────────────┐
// │      Event       │
// └──────────────────┘
//
// A Reader is not safe for concurrent use.
type Reader struct {
	scanner *bufio.Scanner
	tee     io.Writer

	// pendingType is the label of the last "event:" line that has not yet
	// been consumed by a "data:" line.
	pendingType string
}

// Option configures a Reader created with NewReader.
type Option func(*Reader)

// WithTee copies every consumed line, followed by "\n", to w.
func WithTee(w io.Writer) Option {
	return func(r *Reader) {
		r.tee = w
	}
}

// NewReader returns a Reader that frames SSE records from src.
func NewReader(src io.Reader, opts ...Option) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, initialBufferSize), maxLineSize)
	scanner.Split(scanTerminatedLines)

	r := &Reader{scanner: scanner}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Next returns the next framed record. It blocks until a complete "data:"
// line is available. Next returns nil, nil when the source is exhausted.
func (r *Reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		raw := r.scanner.Text()

		if r.tee != nil {
			if _, err := io.WriteString(r.tee, raw+"\n"); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSuffix(raw, "\r")
		if line == "" {
			continue
		}

		// Lines starting with ':' are comments (keep-alives).
		if strings.HasPrefix(line, ":") {
			continue
		}

		if ev := r.parseLine(line); ev != nil {
			return ev, nil
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	return nil, nil
}

// PendingType reports the event label waiting for its data line, if any.
func (r *Reader) PendingType() string {
	return r.pendingType
}

// parseLine processes a single non-empty, non-comment line. It returns an
// Event when the line is a data field and nil otherwise.
//
// A line has the form "field:value" where the first space after the colon
// is optional and stripped if present.
func (r *Reader) parseLine(line string) *Event {
	field, value, ok := strings.Cut(line, ":")
	if ok {
		value = strings.TrimPrefix(value, " ")
	} else {
		// A line with no colon is a field name with an empty value.
		field = line
	}

	switch field {
	case "event":
		r.pendingType = strings.TrimSpace(value)
	case "data":
		ev := &Event{Type: r.pendingType, Data: value}
		r.pendingType = ""
		return ev
	default:
		// "id", "retry" and unknown fields are ignored.
	}

	return nil
}

// scanTerminatedLines is a bufio.SplitFunc like bufio.ScanLines except that
// a final fragment with no terminating newline is dropped rather than
// returned: the workers always terminate their lines, so an unterminated tail
// means the stream was cut mid-line. The returned token keeps any trailing
// '\r' so the tee sees the exact bytes.
func scanTerminatedLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}

	if atEOF {
		return len(data), nil, nil
	}

	// Request more data.
	return 0, nil, nil
}
