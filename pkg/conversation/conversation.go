// Package conversation runs chat turns against a streaming worker for the
// interactive CLI commands.
package conversation

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/skillstream/pkg/chatstream"
	"github.com/papercomputeco/skillstream/pkg/cliui"
	"github.com/papercomputeco/skillstream/pkg/dotdir"
	"github.com/papercomputeco/skillstream/pkg/eventstream"
	"github.com/papercomputeco/skillstream/pkg/eventstream/worker"
	"github.com/papercomputeco/skillstream/pkg/logger"
)

const (
	commandExit = "/exit"
	commandNew  = "/new"
)

// SendFunc sends one message, continuing conversationID when it is not
// empty, and streams the reply through h.
type SendFunc func(ctx context.Context, conversationID, message string, h chatstream.Handlers)

// Runner drives a conversation with one worker. Only Send and Out are
// required.
type Runner struct {
	// Service names the worker ("career" or "tutor") in prompts and events.
	Service string

	// Source and Path describe the worker in emitted turn events.
	Source eventstream.EventSource
	Path   string

	Send SendFunc
	Out  io.Writer

	// Render buffers the reply and prints it as rendered markdown.
	Render bool
	Width  int
	// Style is the glamour style for rendered replies. Empty detects one.
	Style string

	// Events receives one turn event per finished turn when set.
	Events *worker.Pool

	// Sessions remembers the conversation id under SessionKey when set.
	Sessions   *dotdir.Sessions
	SessionKey string

	Logger *slog.Logger

	mu             sync.Mutex
	conversationID string
}

// Resume loads the remembered conversation id from the session file.
// It reports whether there was one.
func (r *Runner) Resume() (bool, error) {
	if r.Sessions == nil || r.SessionKey == "" {
		return false, nil
	}

	session, err := r.Sessions.Load(r.SessionKey)
	if err != nil {
		return false, fmt.Errorf("loading session: %w", err)
	}
	if session == nil || session.ConversationID == "" {
		return false, nil
	}

	r.setConversationID(session.ConversationID)
	return true, nil
}

// ConversationID returns the id sent with the next turn.
func (r *Runner) ConversationID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conversationID
}

// Reset forgets the current conversation, including the session file entry.
func (r *Runner) Reset() error {
	r.setConversationID("")

	if r.Sessions == nil || r.SessionKey == "" {
		return nil
	}
	if err := r.Sessions.Clear(r.SessionKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// RunTurn sends message and writes the reply to Out. The returned transcript
// is never nil; the error is the one the stream reported, if any.
func (r *Runner) RunTurn(ctx context.Context, message string) (*chatstream.Transcript, error) {
	log := logger.OrNop(r.Logger)
	transcript := &chatstream.Transcript{}

	out := r.Out
	if out == nil {
		out = io.Discard
	}

	var live chatstream.Handlers
	if !r.Render {
		live.OnToken = func(content string) {
			fmt.Fprint(out, ansi.Strip(content))
		}
	}

	started := time.Now()
	r.Send(ctx, r.ConversationID(), message, transcript.Handlers(live))
	completed := time.Now()

	if r.Render && transcript.Content() != "" {
		rendered, err := cliui.RenderMarkdown(transcript.Content(), r.Width, r.Style)
		if err != nil {
			log.Debug("markdown render failed", "error", err)
		}
		fmt.Fprint(out, rendered)
	}
	if !r.Render && transcript.Content() != "" {
		fmt.Fprintln(out)
	}

	if completion := transcript.Completion(); completion != nil {
		if completion.Blocked() {
			if msg := completion.String("message"); msg != "" {
				fmt.Fprintln(out, ansi.Strip(msg))
			}
			fmt.Fprintf(out, "%s\n", cliui.DimStyle.Render("(message blocked by the worker's guardrail)"))
		}
		if id := completion.ConversationID(); id != "" {
			r.remember(id, log)
		}
	}

	r.emit(message, transcript, started, completed, log)

	log.Debug("turn finished",
		"service", r.Service,
		"tokens", len(transcript.Tokens()),
		"completed", transcript.Completed(),
		"duration", completed.Sub(started),
	)

	return transcript, transcript.Err()
}

// Loop reads messages from in, one per line, until EOF, "/exit" or ctx is
// done. "/new" starts a fresh conversation. Failed turns are reported on Out
// and the loop continues.
//
// Lines are read on a separate goroutine so a cancelled ctx returns at once
// even while in is blocked. That goroutine exits with its next read.
func (r *Runner) Loop(ctx context.Context, in io.Reader) error {
	out := r.Out
	if out == nil {
		out = io.Discard
	}

	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(in, done)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(out, cliui.Prompt(r.Service))

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		case line, ok = <-lines:
		}
		if !ok {
			break
		}

		input := strings.TrimSpace(line)
		switch input {
		case "":
			continue
		case commandExit:
			return nil
		case commandNew:
			if err := r.Reset(); err != nil {
				fmt.Fprintf(out, "  %s %v\n", cliui.FailMark, err)
				continue
			}
			fmt.Fprintf(out, "  %s %s\n", cliui.SuccessMark, cliui.DimStyle.Render("New conversation"))
			continue
		}

		if _, err := r.RunTurn(ctx, input); err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "  %s %s\n", cliui.FailMark, cliui.ErrorStyle.Render(err.Error()))
		}
		fmt.Fprintln(out)
	}

	if err := <-readErr; err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// readLines scans in on its own goroutine. lines is closed at EOF or on a
// read error, after the error (nil at EOF) is sent on the buffered errc.
// Closing done stops delivery.
func readLines(in io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}

func (r *Runner) setConversationID(id string) {
	r.mu.Lock()
	r.conversationID = id
	r.mu.Unlock()
}

func (r *Runner) remember(id string, log *slog.Logger) {
	r.setConversationID(id)

	if r.Sessions == nil || r.SessionKey == "" {
		return
	}
	if err := r.Sessions.Save(r.SessionKey, id); err != nil {
		log.Warn("could not save session", "key", r.SessionKey, "error", err)
	}
}

func (r *Runner) emit(prompt string, t *chatstream.Transcript, started, completed time.Time, log *slog.Logger) {
	if r.Events == nil {
		return
	}

	source := r.Source
	if source.Service == "" {
		source.Service = r.Service
	}

	turn := eventstream.Turn{
		ConversationID: r.ConversationID(),
		Prompt:         prompt,
		Response:       t.Content(),
	}
	if completion := t.Completion(); completion != nil {
		turn.MessageID = completion.MessageID()
		turn.Intent = completion.Intent()
		turn.Blocked = completion.Blocked()
	}

	meta := eventstream.TurnRequestMeta{
		Path:        r.Path,
		StartedAt:   started.UTC(),
		CompletedAt: completed.UTC(),
		TokenCount:  len(t.Tokens()),
		HTTPStatus:  http.StatusOK,
	}
	if err := t.Err(); err != nil {
		turn.Error = err.Error()
		meta.HTTPStatus = statusOf(err)
	}

	if !r.Events.Enqueue(eventstream.NewTurnCompletedEvent(source, meta, turn)) {
		log.Debug("turn event dropped", "service", source.Service)
	}
}

// statusOf returns the HTTP status an error carries, or 0 when the request
// never got a response status. A remote error arrived inside a 200 stream.
func statusOf(err error) int {
	var serr *chatstream.Error
	if !errors.As(err, &serr) {
		return 0
	}

	switch serr.Kind {
	case chatstream.KindStatus:
		return serr.Status
	case chatstream.KindRemote:
		return http.StatusOK
	default:
		return 0
	}
}
