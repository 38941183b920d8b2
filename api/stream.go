package api

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	eventToken = "token"
	eventDone  = "done"
	eventError = "error"
)

// reply is one scripted stream: tokens, then either a completion or an error.
type reply struct {
	tokens     []string
	completion map[string]any
	failure    string
}

// tokenize splits text into word tokens that keep their trailing space, so
// joining the tokens yields text again.
func tokenize(text string) []string {
	return strings.SplitAfter(text, " ")
}

// stream writes r as an SSE response in the configured dialect.
func (s *Server) stream(c *fiber.Ctx, r reply) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// io.Pipe gives per-chunk flushing: fasthttp writes each chunk to the
	// socket as soon as the pipe reader returns it.
	pr, pw := io.Pipe()
	go s.writeReply(pw, r)

	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

func (s *Server) writeReply(pw *io.PipeWriter, r reply) {
	defer pw.Close()

	for i, token := range r.tokens {
		if token == "" {
			continue
		}
		if i > 0 && s.config.TokenDelay > 0 {
			time.Sleep(s.config.TokenDelay)
		}
		if err := s.writeFrame(pw, eventToken, map[string]any{"content": token}); err != nil {
			s.logger.Debug("client went away mid-stream", "error", err)
			return
		}
	}

	var err error
	if r.failure != "" {
		err = s.writeFrame(pw, eventError, map[string]any{"error": r.failure})
	} else {
		err = s.writeFrame(pw, eventDone, r.completion)
	}
	if err != nil {
		s.logger.Debug("client went away before the end of the stream", "error", err)
	}
}

// writeFrame writes one record. The typed dialect labels it with an event
// line; the inferred dialect sends the data line alone.
func (s *Server) writeFrame(w io.Writer, event string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", event, err)
	}

	if s.config.Dialect == DialectInferred {
		_, err = fmt.Fprintf(w, "data: %s\n\n", data)
		return err
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
