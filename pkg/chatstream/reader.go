// Package chatstream consumes the streaming responses of the career and
// tutor chat workers and turns them into token, completion and error
// callbacks.
//
// Two framings are accepted on the wire. Typed streams label every data
// line with a preceding "event:" line:
//
//	event: token
//	data: {"content":"Hel"}
//
//	event: done
//	data: {"conversationId":"c1"}
//
// Inferred streams send bare data lines and the kind is read from the JSON
// shape (see Classify).
package chatstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/papercomputeco/skillstream/pkg/logger"
	"github.com/papercomputeco/skillstream/pkg/sse"
)

const (
	tracerName = "github.com/papercomputeco/skillstream/pkg/chatstream"

	// maxErrorBody caps how much of a non-2xx body is read for its message.
	maxErrorBody = 1 << 20

	doneSentinel = "[DONE]"
)

// Handlers receive the outcome of one stream. Every field is optional.
type Handlers struct {
	// OnToken is called once per streamed text fragment, in arrival order.
	OnToken func(content string)

	// OnComplete is called at most once with the end-of-turn payload.
	OnComplete func(payload Payload)

	// OnError is called at most once. Nothing fires after it.
	OnError func(err error)
}

// Reader consumes chat worker responses. A Reader holds configuration only,
// so one Reader may consume several responses concurrently.
type Reader struct {
	logger *slog.Logger
	tee    io.Writer
	tracer trace.Tracer
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used for skipped lines and stream summaries.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = l
	}
}

// WithTee copies every raw line read from the stream to w. Writes to w must
// be safe if the Reader is shared.
func WithTee(w io.Writer) Option {
	return func(r *Reader) {
		r.tee = w
	}
}

// WithTracer overrides the tracer. Defaults to the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Reader) {
		r.tracer = t
	}
}

// NewReader returns a Reader configured by opts.
func NewReader(opts ...Option) *Reader {
	r := &Reader{}
	for _, opt := range opts {
		opt(r)
	}

	r.logger = logger.OrNop(r.logger)
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}

	return r
}

// Do sends req with ctx and consumes the response. A failure to send is
// reported through h.OnError.
func (r *Reader) Do(ctx context.Context, c *http.Client, req *http.Request, h Handlers) {
	if c == nil {
		c = http.DefaultClient
	}

	resp, err := c.Do(req.WithContext(ctx))
	if err != nil {
		s := &stream{handlers: h}
		s.fail(&Error{Kind: KindTransport, Message: err.Error(), Err: err})
		return
	}

	r.Consume(ctx, resp, h)
}

// Consume reads resp until the stream ends, fails, or ctx is done, invoking
// h along the way. It never returns an error: every failure is reported
// through h.OnError. The response body is closed before Consume returns.
func (r *Reader) Consume(ctx context.Context, resp *http.Response, h Handlers) {
	ctx, span := r.tracer.Start(ctx, "chatstream.consume")
	defer span.End()

	s := &stream{reader: r, handlers: h}
	defer s.record(span)

	if resp == nil {
		s.fail(ErrNoStream)
		return
	}

	hasBody := resp.Body != nil && resp.Body != http.NoBody
	if hasBody {
		defer resp.Body.Close()
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.fail(statusError(resp, hasBody))
		return
	}

	if !hasBody {
		s.fail(ErrNoStream)
		return
	}

	if isJSON(resp.Header.Get("Content-Type")) {
		s.single(resp.Body)
		return
	}

	s.run(ctx, resp.Body)
}

// stream is the per-call state of Consume.
type stream struct {
	reader   *Reader
	handlers Handlers

	tokens    int
	completed bool
	failed    bool
}

func (s *stream) run(ctx context.Context, body io.ReadCloser) {
	// Closing the body unblocks a pending read when ctx is done.
	var interrupted atomic.Bool
	stop := context.AfterFunc(ctx, func() {
		interrupted.Store(true)
		body.Close()
	})
	defer stop()

	var opts []sse.Option
	if s.reader.tee != nil {
		opts = append(opts, sse.WithTee(s.reader.tee))
	}
	rd := sse.NewReader(body, opts...)

	for {
		if err := ctx.Err(); err != nil {
			s.fail(transportError(err))
			return
		}

		ev, err := rd.Next()
		if interrupted.Load() {
			s.fail(transportError(ctx.Err()))
			return
		}
		if err != nil {
			s.fail(transportError(err))
			return
		}
		if ev == nil {
			if label := rd.PendingType(); label != "" {
				s.reader.logger.Debug("stream ended with an unpaired event label", "event", label)
			}
			return
		}

		if !s.handle(ev.Type, ev.Data) {
			return
		}
	}
}

// single handles a 2xx JSON response that carries one payload instead of a
// stream, such as a guardrail refusal.
func (s *stream) single(body io.Reader) {
	data, err := io.ReadAll(body)
	if err != nil {
		s.fail(transportError(err))
		return
	}
	s.handle("", string(data))
}

// handle decodes and dispatches one data line. It returns false when the
// stream must stop.
func (s *stream) handle(label, data string) bool {
	data = strings.TrimSpace(data)
	if data == "" || data == doneSentinel {
		return true
	}

	p, err := decodePayload([]byte(data))
	if err != nil {
		if label != "" {
			s.reader.logger.Warn("skipping malformed stream payload", "event", label, "error", err)
		} else {
			s.reader.logger.Debug("skipping malformed stream payload", "error", err)
		}
		return true
	}

	return s.dispatch(Classify(label, p), p)
}

func (s *stream) dispatch(kind Kind, p Payload) bool {
	switch kind {
	case KindToken:
		s.tokens++
		if s.handlers.OnToken != nil {
			s.handlers.OnToken(p.String("content"))
		}

	case KindComplete:
		if s.completed {
			s.reader.logger.Debug("dropping repeated completion payload")
			return true
		}
		s.completed = true
		if s.handlers.OnComplete != nil {
			s.handlers.OnComplete(p)
		}

	case KindError:
		msg := p.String("error")
		if msg == "" {
			msg = remoteFallback
		}
		s.fail(&Error{Kind: KindRemote, Message: msg})
		return false

	default:
		s.reader.logger.Debug("dropping unrecognized stream payload", "keys", len(p))
	}

	return true
}

func (s *stream) fail(err error) {
	if s.failed {
		return
	}
	s.failed = true
	if s.handlers.OnError != nil {
		s.handlers.OnError(err)
	}
}

func (s *stream) record(span trace.Span) {
	span.SetAttributes(
		attribute.Int("stream.tokens", s.tokens),
		attribute.Bool("stream.completed", s.completed),
		attribute.Bool("stream.error", s.failed),
	)
	if s.failed {
		span.SetStatus(codes.Error, "stream failed")
	}
}

func statusError(resp *http.Response, hasBody bool) *Error {
	e := &Error{Kind: KindStatus, Status: resp.StatusCode}

	if hasBody {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var body struct {
			Error any `json:"error"`
		}
		if json.Unmarshal(bytes.TrimSpace(data), &body) == nil {
			if msg, ok := body.Error.(string); ok {
				e.Message = msg
			}
		}
	}

	if e.Message == "" {
		e.Message = statusFallback(resp.StatusCode)
	}

	return e
}

func transportError(err error) *Error {
	if err == nil {
		err = context.Canceled
	}
	return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

// IsStatus reports whether err is a non-2xx response error with the given
// status code.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindStatus && e.Status == status
}
